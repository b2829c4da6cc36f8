package portal

import (
	"errors"
	"github.com/countyhealth/portal/internal/api/schema"
	"github.com/countyhealth/portal/internal/upstream"
	"net/http"
)

var (
	errBackendApplication = func(message string) *schema.Error {
		return &schema.Error{
			Type:    "backend.application",
			Message: message,
			Details: map[string]any{},
		}
	}
	errBackendUnreachable = &schema.Error{
		Type:    "backend.requestFailed",
		Message: "connection error",
		Details: map[string]any{},
	}
)

// writeGatewayError translates an error raised by the upstream gateway into a portal API response
func (service *Service) writeGatewayError(writer http.ResponseWriter, err error) {
	if errors.Is(err, upstream.ErrUnauthenticated) {
		service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
		return
	}

	var appErr *upstream.ApplicationError
	if errors.As(err, &appErr) {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errBackendApplication(appErr.Message))
		return
	}

	var reqErr *upstream.RequestFailedError
	if errors.As(err, &reqErr) {
		service.writer.WriteErrors(writer, http.StatusBadGateway, errBackendUnreachable)
		return
	}

	service.writer.WriteInternalError(writer, err)
}
