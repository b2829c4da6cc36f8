package dashboard

// State enumerates the states of the dashboard resolution state machine
type State string

const (
	// StateIdle means no resolution has been attempted yet
	StateIdle State = "idle"
	// StateLoading means a resolution attempt is in flight
	StateLoading State = "loading"
	// StateReady means a valid embeddable dashboard URL has been resolved
	StateReady State = "ready"
	// StateUnconfigured means the county has no usable dashboard URL set.
	// This is a valid resolved state, not an error.
	StateUnconfigured State = "unconfigured"
	// StateEmbedBlocked means a URL was resolved but the render surface could not embed it.
	// This is a valid resolved state, not an error.
	StateEmbedBlocked State = "embed_blocked"
	// StateError means the resolution attempt itself failed
	StateError State = "error"
)

// Resolution represents the outcome of a dashboard resolution attempt.
// Exactly one state is active at a time for the active county selection.
type Resolution struct {
	State        State  `json:"state"`
	CountyID     string `json:"county_id,omitempty"`
	CountyName   string `json:"county_name,omitempty"`
	DashboardURL string `json:"dashboard_url,omitempty"`
	Message      string `json:"message,omitempty"`
}
