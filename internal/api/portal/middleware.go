package portal

import (
	"github.com/countyhealth/portal/internal/api/schema"
	"net/http"
)

// MiddlewareRequireSession makes sure a valid operator session exists before the endpoint runs
func (service *Service) MiddlewareRequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		if service.Sessions.CurrentToken() == "" {
			service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrUnauthorized)
			return
		}
		next(writer, request)
	}
}

// MiddlewareRequireSuperAdmin makes sure the current session carries the super-admin role
func (service *Service) MiddlewareRequireSuperAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		ses := service.Sessions.Current()
		if ses == nil || !ses.IsSuperUser {
			service.writer.WriteErrors(writer, http.StatusForbidden, schema.ErrForbidden)
			return
		}
		next(writer, request)
	}
}
