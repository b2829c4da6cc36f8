package portal

import (
	"errors"
	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/county"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/selection"
	"net/http"
)

type endpointDashboardResponse struct {
	Resolution dashboard.Resolution `json:"resolution"`

	// Counties backs the county switcher; only present for super-admin sessions
	Counties []*county.County `json:"counties,omitempty"`
}

func (service *Service) dashboardResponse(resolution dashboard.Resolution) *endpointDashboardResponse {
	response := &endpointDashboardResponse{
		Resolution: resolution,
	}
	if ses := service.Sessions.Current(); ses != nil && ses.IsSuperUser {
		if list := service.Controller.List(); list != nil {
			response.Counties = list.Counties
		}
	}
	return response
}

// EndpointGetDashboard handles the 'GET /v1/dashboard' endpoint.
// The first call after a session restore runs the initial resolution.
func (service *Service) EndpointGetDashboard(writer http.ResponseWriter, request *http.Request) {
	resolution := service.Resolver.Current()
	if resolution.State == dashboard.StateIdle {
		resolution = service.Controller.Initialize(request.Context())
	}
	service.writer.WriteJSON(writer, service.dashboardResponse(resolution))
}

type endpointSelectCountyRequestPayload struct {
	CountyID *string `json:"county_id" required:"true"`
}

// EndpointSelectCounty handles the 'POST /v1/dashboard/select' endpoint
func (service *Service) EndpointSelectCounty(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointSelectCountyRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	resolution, err := service.Controller.Select(request.Context(), *payload.CountyID)
	if err != nil {
		if errors.Is(err, selection.ErrNotSuperUser) {
			service.writer.WriteErrors(writer, http.StatusForbidden, schema.ErrForbidden)
			return
		}
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, service.dashboardResponse(resolution))
}

// EndpointRetryDashboard handles the 'POST /v1/dashboard/retry' endpoint
func (service *Service) EndpointRetryDashboard(writer http.ResponseWriter, request *http.Request) {
	resolution := service.Controller.Retry(request.Context())
	service.writer.WriteJSON(writer, service.dashboardResponse(resolution))
}

// EndpointReportEmbedBlocked handles the 'POST /v1/dashboard/embed_blocked' endpoint.
// The render surface reports that it could not embed the resolved dashboard URL.
func (service *Service) EndpointReportEmbedBlocked(writer http.ResponseWriter, _ *http.Request) {
	resolution := service.Resolver.ReportEmbedBlocked()
	service.writer.WriteJSON(writer, service.dashboardResponse(resolution))
}
