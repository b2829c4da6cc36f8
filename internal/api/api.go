package api

import (
	"errors"
	"github.com/countyhealth/portal/internal/api/portal"
	"github.com/countyhealth/portal/internal/config"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/selection"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/upstream"
	"net/http"
)

// Service represents the portal API service
type Service struct {
	Config     *config.Config
	Sessions   *session.Store
	Gateway    *upstream.Client
	Resolver   *dashboard.Resolver
	Controller *selection.Controller

	portal *portal.Service
}

// Startup starts up the portal API
func (service *Service) Startup(errs chan<- error) {
	portalService := &portal.Service{
		Config:     service.Config,
		Sessions:   service.Sessions,
		Gateway:    service.Gateway,
		Resolver:   service.Resolver,
		Controller: service.Controller,
	}
	service.portal = portalService
	go func() {
		if err := portalService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the portal API
func (service *Service) Shutdown() {
	if service.portal != nil {
		service.portal.Shutdown()
		service.portal = nil
	}
}
