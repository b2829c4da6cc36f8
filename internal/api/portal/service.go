package portal

import (
	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/config"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/function"
	"github.com/countyhealth/portal/internal/selection"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/upstream"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"net/http"
)

// Service represents the browser-facing portal API service
type Service struct {
	server *http.Server

	Config     *config.Config
	Sessions   *session.Store
	Gateway    *upstream.Client
	Resolver   *dashboard.Resolver
	Controller *selection.Controller

	writer *schema.Writer
}

// Startup starts up the portal API
func (service *Service) Startup() error {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the portal API experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{service.Config.PortalAPIAllowedOrigin},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	service.registerEndpoints(router)

	// Start up the server
	server := &http.Server{
		Addr:    service.Config.PortalAPIListenAddress,
		Handler: router,
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown shuts down the portal API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

func (service *Service) registerEndpoints(router chi.Router) {
	// Register the authentication endpoints
	router.Post("/v1/auth/login", service.EndpointLogin)
	router.Post("/v1/auth/logout", service.EndpointLogout)
	router.Get("/v1/auth/session", function.Nest[http.HandlerFunc](
		service.EndpointGetSession,
		service.MiddlewareRequireSession,
	))

	// Register the dashboard resolution endpoints
	router.Get("/v1/dashboard", function.Nest[http.HandlerFunc](
		service.EndpointGetDashboard,
		service.MiddlewareRequireSession,
	))
	router.Post("/v1/dashboard/select", function.Nest[http.HandlerFunc](
		service.EndpointSelectCounty,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
	router.Post("/v1/dashboard/retry", function.Nest[http.HandlerFunc](
		service.EndpointRetryDashboard,
		service.MiddlewareRequireSession,
	))
	router.Post("/v1/dashboard/embed_blocked", function.Nest[http.HandlerFunc](
		service.EndpointReportEmbedBlocked,
		service.MiddlewareRequireSession,
	))

	// Register the county management endpoints
	router.Get("/v1/counties", function.Nest[http.HandlerFunc](
		service.EndpointGetCounties,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
	router.Post("/v1/counties", function.Nest[http.HandlerFunc](
		service.EndpointCreateCounty,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
	router.Get("/v1/counties/{id}", function.Nest[http.HandlerFunc](
		service.EndpointGetCounty,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
	router.Patch("/v1/counties/{id}", function.Nest[http.HandlerFunc](
		service.EndpointEditCounty,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
	router.Delete("/v1/counties/{id}", function.Nest[http.HandlerFunc](
		service.EndpointDeleteCounty,
		service.MiddlewareRequireSession,
		service.MiddlewareRequireSuperAdmin,
	))
}
