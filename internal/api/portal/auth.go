package portal

import (
	"errors"
	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/dashboard"
	"github.com/countyhealth/portal/internal/session"
	"github.com/countyhealth/portal/internal/upstream"
	"net/http"
)

var errInvalidCredentials = func(message string) *schema.Error {
	return &schema.Error{
		Type:    "auth.invalidCredentials",
		Message: message,
		Details: map[string]any{},
	}
}

type endpointLoginRequestPayload struct {
	Username *string `json:"username" required:"true"`
	Password *string `json:"password" required:"true"`
}

type endpointLoginResponse struct {
	Session    *session.Session     `json:"session"`
	Resolution dashboard.Resolution `json:"resolution"`
}

// EndpointLogin handles the 'POST /v1/auth/login' endpoint
func (service *Service) EndpointLogin(writer http.ResponseWriter, request *http.Request) {
	payload, validationErrs, err := schema.UnmarshalBody[endpointLoginRequestPayload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(validationErrs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErrs...)
		return
	}

	identity, err := service.Gateway.Login(request.Context(), *payload.Username, *payload.Password)
	if err != nil {
		var appErr *upstream.ApplicationError
		if errors.As(err, &appErr) {
			service.writer.WriteErrors(writer, http.StatusUnauthorized, errInvalidCredentials(appErr.Message))
			return
		}
		service.writeGatewayError(writer, err)
		return
	}

	// A fresh identity invalidates all prior selection state
	service.Controller.Reset()
	resolution := service.Controller.Initialize(request.Context())

	service.writer.WriteJSON(writer, &endpointLoginResponse{
		Session:    identity,
		Resolution: resolution,
	})
}

// EndpointLogout handles the 'POST /v1/auth/logout' endpoint.
// Logging out always succeeds locally, regardless of the backend outcome.
func (service *Service) EndpointLogout(writer http.ResponseWriter, request *http.Request) {
	service.Gateway.Logout(request.Context())
	service.Controller.Reset()
	writer.WriteHeader(http.StatusNoContent)
}

// EndpointGetSession handles the 'GET /v1/auth/session' endpoint
func (service *Service) EndpointGetSession(writer http.ResponseWriter, _ *http.Request) {
	service.writer.WriteJSON(writer, service.Sessions.Current())
}
