package upstream

import "errors"

// ErrUnauthenticated is raised when an operation requiring authentication is invoked
// while no valid session token is stored. It is raised before any network call is made.
var ErrUnauthenticated = errors.New("not authenticated")

// RequestFailedError represents a transport-level failure (non-2xx status, unreachable
// backend or a malformed response body). The user-facing text never echoes transport detail.
type RequestFailedError struct {
	Reason error
}

func (err *RequestFailedError) Error() string {
	return "connection error"
}

func (err *RequestFailedError) Unwrap() error {
	return err.Reason
}

// ApplicationError represents a business-rule failure the backend reported explicitly.
// It takes precedence over the transport outcome: an HTTP success envelope carrying an
// error marker still yields an ApplicationError.
type ApplicationError struct {
	Message string
}

func (err *ApplicationError) Error() string {
	return err.Message
}

// UserMessage returns the user-facing text of an error raised by the gateway
func UserMessage(err error) string {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Not authenticated"
	}
	return err.Error()
}
