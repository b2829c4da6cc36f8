package county

// County represents a tenant county registered at the backend
type County struct {
	ID            string `json:"county_id"`
	Name          string `json:"county_name"`
	LoginUsername string `json:"login_username"`
	DashboardURL  string `json:"dashboard_url"`
	LastModified  string `json:"modified"`
}

// List represents one page of the backend's county listing
type List struct {
	Counties   []*County
	Search     string
	Page       int
	PageSize   int
	TotalPages int
}

// Create is used to create a new county
type Create struct {
	ID            string
	Name          string
	LoginUsername string
	LoginPassword string
	DashboardURL  string
}

// Update is used to update an existing county.
// Nil fields are left untouched; a nil password keeps the current one.
type Update struct {
	Name          *string
	LoginUsername *string
	LoginPassword *string
	DashboardURL  *string
}
