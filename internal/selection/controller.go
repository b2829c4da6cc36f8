package selection

import (
	"context"
	"errors"
	"github.com/countyhealth/portal/internal/county"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/upstream"
	"sync"
)

// DefaultPageSize matches the page size the county management surface requests
const DefaultPageSize = 20

// ErrNotSuperUser is raised when a county-switching or list operation is invoked
// on a session that is permanently bound to a single county
var ErrNotSuperUser = errors.New("county selection requires a super-admin session")

// Gateway defines the upstream operations the controller relies on
type Gateway interface {
	GetAllCounties(ctx context.Context, search string, page, pageSize int) (*county.List, error)
}

// Resolver defines the dashboard resolution surface the controller drives
type Resolver interface {
	Resolve(ctx context.Context, countyID string) dashboard.Resolution
	Current() dashboard.Resolution
	Reset()
}

// Controller manages the county list and the active county selection.
// Super-admin sessions may switch between counties; regular sessions are bound
// permanently to their own county.
type Controller struct {
	gateway  Gateway
	resolver Resolver
	sessions *session.Store

	mtx       sync.Mutex
	superUser bool
	active    string
	search    string
	page      int
	list      *county.List
}

// NewController creates a new county selection controller
func NewController(gateway Gateway, resolver Resolver, sessions *session.Store) *Controller {
	return &Controller{
		gateway:  gateway,
		resolver: resolver,
		sessions: sessions,
		page:     1,
	}
}

// Initialize binds the controller to the current session and runs the first resolution.
// Regular sessions are fixed to their own county. Super-admin sessions load the first
// county page and auto-select its first entry if none is selected yet.
// Failures surface as an Error resolution, matching every other resolution outcome.
func (controller *Controller) Initialize(ctx context.Context) dashboard.Resolution {
	ses := controller.sessions.Current()
	if ses == nil {
		controller.Reset()
		return controller.resolver.Current()
	}

	controller.mtx.Lock()
	controller.superUser = ses.IsSuperUser

	if !ses.IsSuperUser {
		controller.active = ses.CountyID
		controller.mtx.Unlock()
		// The backend resolves the county bound to the session token itself
		return controller.resolver.Resolve(ctx, "")
	}
	controller.mtx.Unlock()

	list, err := controller.gateway.GetAllCounties(ctx, "", 1, DefaultPageSize)
	if err != nil {
		return dashboard.Resolution{
			State:   dashboard.StateError,
			Message: upstream.UserMessage(err),
		}
	}

	controller.mtx.Lock()
	controller.list = list
	controller.search = ""
	controller.page = 1
	if controller.active == "" && len(list.Counties) > 0 {
		controller.active = list.Counties[0].ID
	}
	active := controller.active
	controller.mtx.Unlock()

	if active == "" {
		return controller.resolver.Current()
	}
	return controller.resolver.Resolve(ctx, active)
}

// Select switches the active county selection and re-resolves its dashboard.
// Selecting the county that is already active is a no-op (no redundant fetch).
func (controller *Controller) Select(ctx context.Context, countyID string) (dashboard.Resolution, error) {
	controller.mtx.Lock()
	if !controller.superUser {
		controller.mtx.Unlock()
		return controller.resolver.Current(), ErrNotSuperUser
	}
	if countyID == controller.active {
		controller.mtx.Unlock()
		return controller.resolver.Current(), nil
	}
	controller.active = countyID
	controller.mtx.Unlock()

	return controller.resolver.Resolve(ctx, countyID), nil
}

// Retry re-runs the full resolution for the active selection
func (controller *Controller) Retry(ctx context.Context) dashboard.Resolution {
	controller.mtx.Lock()
	superUser := controller.superUser
	active := controller.active
	controller.mtx.Unlock()

	if !superUser {
		return controller.resolver.Resolve(ctx, "")
	}
	if active == "" {
		return controller.resolver.Current()
	}
	return controller.resolver.Resolve(ctx, active)
}

// Search refetches the county list with a new search term.
// The page resets to 1 whenever the term changes; the dashboard selection is untouched.
func (controller *Controller) Search(ctx context.Context, term string) (*county.List, error) {
	controller.mtx.Lock()
	if !controller.superUser {
		controller.mtx.Unlock()
		return nil, ErrNotSuperUser
	}
	page := controller.page
	if term != controller.search {
		page = 1
	}
	controller.mtx.Unlock()

	return controller.loadList(ctx, term, page)
}

// ChangePage refetches the county list on another page of the current search.
// The dashboard selection is untouched.
func (controller *Controller) ChangePage(ctx context.Context, page int) (*county.List, error) {
	controller.mtx.Lock()
	if !controller.superUser {
		controller.mtx.Unlock()
		return nil, ErrNotSuperUser
	}
	term := controller.search
	controller.mtx.Unlock()

	if page < 1 {
		page = 1
	}
	return controller.loadList(ctx, term, page)
}

// Refresh refetches the county list with the active parameters.
// Stale lists must be refreshed explicitly after any create/update/delete.
func (controller *Controller) Refresh(ctx context.Context) (*county.List, error) {
	controller.mtx.Lock()
	if !controller.superUser {
		controller.mtx.Unlock()
		return nil, ErrNotSuperUser
	}
	term := controller.search
	page := controller.page
	controller.mtx.Unlock()

	return controller.loadList(ctx, term, page)
}

func (controller *Controller) loadList(ctx context.Context, term string, page int) (*county.List, error) {
	list, err := controller.gateway.GetAllCounties(ctx, term, page, DefaultPageSize)
	if err != nil {
		return nil, err
	}

	controller.mtx.Lock()
	controller.list = list
	controller.search = term
	controller.page = list.Page
	controller.mtx.Unlock()
	return list, nil
}

// Active returns the id of the active county selection
func (controller *Controller) Active() string {
	controller.mtx.Lock()
	defer controller.mtx.Unlock()
	return controller.active
}

// SearchTerm returns the active county list search term
func (controller *Controller) SearchTerm() string {
	controller.mtx.Lock()
	defer controller.mtx.Unlock()
	return controller.search
}

// List returns the last fetched county list, or nil if none was fetched yet
func (controller *Controller) List() *county.List {
	controller.mtx.Lock()
	defer controller.mtx.Unlock()
	return controller.list
}

// Reset discards all selection state (i.e. after a logout)
func (controller *Controller) Reset() {
	controller.mtx.Lock()
	controller.superUser = false
	controller.active = ""
	controller.search = ""
	controller.page = 1
	controller.list = nil
	controller.mtx.Unlock()

	controller.resolver.Reset()
}
