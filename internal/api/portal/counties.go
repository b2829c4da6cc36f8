package portal

import (
	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/api/validation"
	"github.com/countyhealth/portal/internal/county"
	"github.com/go-chi/chi/v5"
	"math"
	"net/http"
)

// EndpointGetCounties handles the 'GET /v1/counties?search={string?}&page={number?:1}' endpoint.
// A changed search term resets the listing to its first page. Re-requesting the
// current parameters refetches the list, which is how stale lists are refreshed
// after a create/update/delete.
func (service *Service) EndpointGetCounties(writer http.ResponseWriter, request *http.Request) {
	var validationErrs []*schema.Error

	term, validationErr := validation.QueryString(request, "search", false, "")
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	page, validationErr := validation.QueryNumber(request, "page", false, 1, 1, math.MaxInt32)
	if validationErr != nil {
		validationErrs = append(validationErrs, validationErr)
	}

	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	var list *county.List
	var err error
	if term != service.Controller.SearchTerm() {
		list, err = service.Controller.Search(request.Context(), term)
	} else {
		list, err = service.Controller.ChangePage(request.Context(), int(page))
	}
	if err != nil {
		service.writeGatewayError(writer, err)
		return
	}

	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(list.Page, list.PageSize, list.TotalPages, list.Search, list.Counties))
}

type endpointCreateCountyRequestPayload struct {
	ID            *string `json:"name" required:"true" minlen:"2" pattern:"^[a-zA-Z0-9-_]+$"`
	Name          *string `json:"county_name" required:"true" minlen:"2"`
	LoginUsername *string `json:"login_username" required:"true" minlen:"3" pattern:"^[a-z0-9_]+$"`
	LoginPassword *string `json:"login_password" required:"true" minlen:"6"`
	DashboardURL  *string `json:"dashboard_url" required:"true" pattern:"^https?://"`
}

// EndpointCreateCounty handles the 'POST /v1/counties' endpoint
func (service *Service) EndpointCreateCounty(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointCreateCountyRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := service.Gateway.CreateCounty(request.Context(), &county.Create{
		ID:            *payload.ID,
		Name:          *payload.Name,
		LoginUsername: *payload.LoginUsername,
		LoginPassword: *payload.LoginPassword,
		DashboardURL:  *payload.DashboardURL,
	})
	if err != nil {
		service.writeGatewayError(writer, err)
		return
	}
	service.writer.WriteJSONCode(writer, http.StatusCreated, obj)
}

// EndpointGetCounty handles the 'GET /v1/counties/{id}' endpoint.
// It returns the full county record, used to prefill the edit form.
func (service *Service) EndpointGetCounty(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	obj, err := service.Gateway.GetCountyDetails(request.Context(), id)
	if err != nil {
		service.writeGatewayError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, obj)
}

type endpointEditCountyRequestPayload struct {
	Name          *string `json:"county_name" minlen:"2"`
	LoginUsername *string `json:"login_username" minlen:"3" pattern:"^[a-z0-9_]+$"`
	LoginPassword *string `json:"login_password" minlen:"6"`
	DashboardURL  *string `json:"dashboard_url" pattern:"^https?://"`
}

// EndpointEditCounty handles the 'PATCH /v1/counties/{id}' endpoint.
// Absent fields stay untouched; an absent password keeps the current one.
func (service *Service) EndpointEditCounty(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	payload, validationErrs, err := schema.UnmarshalBody[endpointEditCountyRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	obj, err := service.Gateway.UpdateCounty(request.Context(), id, &county.Update{
		Name:          payload.Name,
		LoginUsername: payload.LoginUsername,
		LoginPassword: payload.LoginPassword,
		DashboardURL:  payload.DashboardURL,
	})
	if err != nil {
		service.writeGatewayError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, obj)
}

// EndpointDeleteCounty handles the 'DELETE /v1/counties/{id}' endpoint
func (service *Service) EndpointDeleteCounty(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	if err := service.Gateway.DeleteCounty(request.Context(), id); err != nil {
		service.writeGatewayError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}
