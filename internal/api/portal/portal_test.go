package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/county"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/selection"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/session/storage/inmem"
	"github.com/countyhealth/portal/internal/upstream"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	service *Service
	router  chi.Router
}

// newStubBackend fakes the countyhealth backend with two known accounts and two counties
func newStubBackend(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(writer http.ResponseWriter, request *http.Request) {
		method := request.URL.Path[len("/api/method/countyhealth_backend.api."):]
		respond := func(message any) {
			require.NoError(t, json.NewEncoder(writer).Encode(map[string]any{"message": message}))
		}

		switch method {
		case "login":
			creds := map[string]string{}
			require.NoError(t, json.NewDecoder(request.Body).Decode(&creds))
			switch {
			case creds["username"] == "admin" && creds["password"] == "hunter22":
				respond(&session.Session{Token: "tok-admin", IsSuperUser: true})
			case creds["username"] == "nairobi_user" && creds["password"] == "hunter22":
				respond(&session.Session{Token: "tok-nairobi", CountyID: "nairobi", CountyName: "Nairobi"})
			default:
				json.NewEncoder(writer).Encode(map[string]any{"exception": "Incorrect password"})
			}
		case "logout":
			respond(map[string]any{})
		case "get_dashboard":
			countyID := request.URL.Query().Get("county_id")
			if countyID == "" {
				countyID = "nairobi"
			}
			respond(map[string]any{
				"county_name": countyID,
				"dashboards":  map[string]string{"default": "https://dashboards.example.org/" + countyID},
			})
		case "get_all_counties":
			respond(map[string]any{
				"counties": []*county.County{
					{ID: "nairobi", Name: "Nairobi"},
					{ID: "mombasa", Name: "Mombasa"},
				},
				"total_pages": 1,
			})
		case "get_county_details":
			respond(&county.County{
				ID:            request.URL.Query().Get("county_id"),
				Name:          "Nairobi",
				LoginUsername: "nairobi_user",
				DashboardURL:  "https://dashboards.example.org/nairobi",
			})
		case "create_county", "update_county":
			respond(&county.County{ID: "nakuru", Name: "Nakuru"})
		case "delete_county":
			respond(map[string]any{})
		default:
			t.Errorf("unexpected backend method '%s'", method)
		}
	}
}

func newTestEnv(t *testing.T, backend http.HandlerFunc) *testEnv {
	t.Helper()

	backendServer := httptest.NewServer(backend)
	t.Cleanup(backendServer.Close)

	driver, err := inmem.New()
	require.NoError(t, err)

	sessions := session.NewStore(driver)
	gateway := upstream.NewClient(backendServer.URL, 5*time.Second, sessions)
	t.Cleanup(gateway.Close)
	resolver := dashboard.New(gateway, sessions)
	controller := selection.NewController(gateway, resolver, sessions)

	service := &Service{
		Sessions:   sessions,
		Gateway:    gateway,
		Resolver:   resolver,
		Controller: controller,
		writer: &schema.Writer{
			InternalErrorHook: func(err error) {
				t.Logf("internal error: %v", err)
			},
		},
	}

	router := chi.NewRouter()
	service.registerEndpoints(router)
	return &testEnv{
		service: service,
		router:  router,
	}
}

func (env *testEnv) request(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func (env *testEnv) login(t *testing.T, username string) {
	t.Helper()
	recorder := env.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
}

func parseJSON(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func TestEndpointsRequireSession(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	targets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/v1/auth/session"},
		{http.MethodGet, "/v1/dashboard"},
		{http.MethodPost, "/v1/dashboard/retry"},
		{http.MethodPost, "/v1/dashboard/embed_blocked"},
		{http.MethodGet, "/v1/counties"},
	}
	for _, target := range targets {
		recorder := env.request(t, target.method, target.target, nil)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "%s %s", target.method, target.target)
	}
}

func TestCountyManagementRequiresSuperAdmin(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "nairobi_user")

	targets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/v1/counties"},
		{http.MethodPost, "/v1/counties"},
		{http.MethodGet, "/v1/counties/nairobi"},
		{http.MethodPatch, "/v1/counties/nairobi"},
		{http.MethodDelete, "/v1/counties/nairobi"},
		{http.MethodPost, "/v1/dashboard/select"},
	}
	for _, target := range targets {
		recorder := env.request(t, target.method, target.target, nil)
		assert.Equal(t, http.StatusForbidden, recorder.Code, "%s %s", target.method, target.target)
	}
}

func TestEndpointLoginCountyUser(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	recorder := env.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "nairobi_user",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointLoginResponse{}
	parseJSON(t, recorder, response)
	require.NotNil(t, response.Session)
	assert.Equal(t, "tok-nairobi", response.Session.Token)
	assert.False(t, response.Session.IsSuperUser)
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
	assert.Equal(t, "https://dashboards.example.org/nairobi", response.Resolution.DashboardURL)

	require.NotNil(t, env.service.Sessions.Current())
}

func TestEndpointLoginSuperAdmin(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	recorder := env.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointLoginResponse{}
	parseJSON(t, recorder, response)
	require.NotNil(t, response.Session)
	assert.True(t, response.Session.IsSuperUser)

	// The first county of the listing is selected automatically
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
	assert.Equal(t, "nairobi", response.Resolution.CountyID)
}

func TestEndpointLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	recorder := env.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	response := &schema.ErrorResponse{}
	parseJSON(t, recorder, response)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "auth.invalidCredentials", response.Errors[0].Type)
	assert.Equal(t, "Invalid username or password", response.Errors[0].Message)
	assert.Nil(t, env.service.Sessions.Current())
}

func TestEndpointLoginValidation(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	recorder := env.request(t, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestEndpointLogout(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "nairobi_user")

	recorder := env.request(t, http.MethodPost, "/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Nil(t, env.service.Sessions.Current())
	assert.Equal(t, dashboard.StateIdle, env.service.Resolver.Current().State)

	// The session is gone, subsequent calls are unauthorized
	recorder = env.request(t, http.MethodGet, "/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestEndpointGetSession(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "nairobi_user")

	recorder := env.request(t, http.MethodGet, "/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	ses := &session.Session{}
	parseJSON(t, recorder, ses)
	assert.Equal(t, "tok-nairobi", ses.Token)
	assert.Equal(t, "nairobi", ses.CountyID)
}

func TestEndpointGetDashboardInitializesOnce(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))

	// Simulate a restored session: the store holds a session but nothing resolved yet
	require.NoError(t, env.service.Sessions.Save(context.Background(), &session.Session{
		Token:    "tok-nairobi",
		CountyID: "nairobi",
	}))

	recorder := env.request(t, http.MethodGet, "/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointDashboardResponse{}
	parseJSON(t, recorder, response)
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
	assert.Empty(t, response.Counties, "county users never receive the county listing")
}

func TestEndpointSelectCounty(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodPost, "/v1/dashboard/select", map[string]string{
		"county_id": "mombasa",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointDashboardResponse{}
	parseJSON(t, recorder, response)
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
	assert.Equal(t, "mombasa", response.Resolution.CountyID)
	assert.NotEmpty(t, response.Counties, "super-admins receive the county listing for the switcher")
}

func TestEndpointSelectCountyValidation(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodPost, "/v1/dashboard/select", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestEndpointRetryDashboard(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "nairobi_user")

	recorder := env.request(t, http.MethodPost, "/v1/dashboard/retry", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointDashboardResponse{}
	parseJSON(t, recorder, response)
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
}

func TestEndpointReportEmbedBlocked(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "nairobi_user")

	recorder := env.request(t, http.MethodPost, "/v1/dashboard/embed_blocked", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &endpointDashboardResponse{}
	parseJSON(t, recorder, response)
	assert.Equal(t, dashboard.StateEmbedBlocked, response.Resolution.State)

	// A retry re-resolves and leaves the blocked state behind
	recorder = env.request(t, http.MethodPost, "/v1/dashboard/retry", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	parseJSON(t, recorder, response)
	assert.Equal(t, dashboard.StateReady, response.Resolution.State)
}

func TestEndpointGetCounties(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodGet, "/v1/counties?search=nai", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &schema.PaginatedResponse[*county.County]{}
	parseJSON(t, recorder, response)
	require.NotNil(t, response.Pagination)
	assert.Equal(t, 1, response.Pagination.Page)
	assert.Equal(t, "nai", response.Pagination.Search)
	assert.Equal(t, 2, response.Pagination.IncludedCount)
	assert.Len(t, response.Data, 2)
}

func TestEndpointGetCountiesValidation(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodGet, "/v1/counties?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestEndpointCreateCounty(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodPost, "/v1/counties", map[string]string{
		"name":           "nakuru",
		"county_name":    "Nakuru",
		"login_username": "nakuru_user",
		"login_password": "hunter22",
		"dashboard_url":  "https://dashboards.example.org/nakuru",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	obj := &county.County{}
	parseJSON(t, recorder, obj)
	assert.Equal(t, "nakuru", obj.ID)
}

func TestEndpointCreateCountyValidation(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodPost, "/v1/counties", map[string]string{
		"name":           "n",
		"county_name":    "Nakuru",
		"login_username": "Nakuru User",
		"login_password": "short",
		"dashboard_url":  "dashboards.example.org",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	response := &schema.ErrorResponse{}
	parseJSON(t, recorder, response)
	assert.Len(t, response.Errors, 4)
}

func TestEndpointGetCounty(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodGet, "/v1/counties/nairobi", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	obj := &county.County{}
	parseJSON(t, recorder, obj)
	assert.Equal(t, "nairobi", obj.ID)
	assert.Equal(t, "nairobi_user", obj.LoginUsername)
}

func TestEndpointEditCounty(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodPatch, "/v1/counties/nakuru", map[string]string{
		"county_name": "Nakuru",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestEndpointDeleteCounty(t *testing.T) {
	env := newTestEnv(t, newStubBackend(t))
	env.login(t, "admin")

	recorder := env.request(t, http.MethodDelete, "/v1/counties/nakuru", nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestEndpointsSurfaceBackendUnavailability(t *testing.T) {
	backendDown := false
	env := newTestEnv(t, func(writer http.ResponseWriter, request *http.Request) {
		if backendDown {
			writer.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		newStubBackend(t)(writer, request)
	})
	env.login(t, "admin")
	backendDown = true

	recorder := env.request(t, http.MethodGet, "/v1/counties/nairobi", nil)
	require.Equal(t, http.StatusBadGateway, recorder.Code)

	response := &schema.ErrorResponse{}
	parseJSON(t, recorder, response)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, "backend.requestFailed", response.Errors[0].Type)
	assert.Equal(t, "connection error", response.Errors[0].Message)
}
