package dashboard

import (
	"context"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/upstream"
	"net/url"
	"sync"
)

// Fetcher defines the gateway operation the resolver relies on
type Fetcher interface {
	// GetDashboard fetches the dashboard record for the given county.
	// An empty countyID lets the backend resolve the county bound to the session token.
	GetDashboard(ctx context.Context, countyID string) (*upstream.DashboardRecord, error)
}

// Resolver implements the dashboard resolution state machine.
// Overlapping resolution attempts are tagged with a sequence number; a completion
// whose sequence is no longer current is discarded so that the displayed state
// always reflects the newest selection (last-write-wins).
type Resolver struct {
	fetcher  Fetcher
	sessions *session.Store
	category string

	mtx     sync.Mutex
	seq     uint64
	current Resolution
}

// New creates a new dashboard resolver resolving the default dashboard category
func New(fetcher Fetcher, sessions *session.Store) *Resolver {
	return &Resolver{
		fetcher:  fetcher,
		sessions: sessions,
		category: upstream.DefaultCategory,
		current: Resolution{
			State: StateIdle,
		},
	}
}

// Current returns a snapshot of the active resolution state
func (resolver *Resolver) Current() Resolution {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	return resolver.current
}

// Reset discards the active resolution state (i.e. after a logout)
func (resolver *Resolver) Reset() {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()
	resolver.seq++
	resolver.current = Resolution{
		State: StateIdle,
	}
}

// Resolve runs a full resolution attempt for the given county.
// The state transitions to Loading synchronously before any network I/O, so a
// caller never observes an undefined gap. Re-invoking with the same county id
// re-runs the full fetch and resets any embed-blocked latch.
func (resolver *Resolver) Resolve(ctx context.Context, countyID string) Resolution {
	resolver.mtx.Lock()
	resolver.seq++
	seq := resolver.seq
	resolver.current = Resolution{
		State:    StateLoading,
		CountyID: countyID,
	}
	resolver.mtx.Unlock()

	record, err := resolver.fetcher.GetDashboard(ctx, countyID)

	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()

	// A newer resolution attempt superseded this one while it was in flight
	if seq != resolver.seq {
		return resolver.current
	}

	next := Resolution{
		CountyID: countyID,
	}
	if err != nil {
		next.State = StateError
		next.Message = upstream.UserMessage(err)
	} else {
		next.CountyName = record.CountyName
		embedURL := record.URL(resolver.category)
		if validEmbedURL(embedURL) {
			next.State = StateReady
			next.DashboardURL = embedURL
		} else {
			next.State = StateUnconfigured
		}
	}
	resolver.current = next

	if next.State == StateReady && next.CountyName != "" {
		if ses := resolver.sessions.Current(); ses != nil && !ses.IsSuperUser {
			_ = resolver.sessions.UpdateCountyName(ctx, next.CountyName)
		}
	}
	return next
}

// ReportEmbedBlocked records that the render surface could not embed the resolved URL.
// Only a Ready resolution transitions; the signal is latched until the next resolution
// attempt and never re-triggers a fetch.
func (resolver *Resolver) ReportEmbedBlocked() Resolution {
	resolver.mtx.Lock()
	defer resolver.mtx.Unlock()

	if resolver.current.State == StateReady {
		resolver.current.State = StateEmbedBlocked
	}
	return resolver.current
}

// validEmbedURL reports whether the given string is a syntactically valid absolute
// http(s) URL. Anything else renders the county's dashboard unconfigured.
func validEmbedURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
