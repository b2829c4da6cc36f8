package upstream

import (
	"context"
	"errors"
	"github.com/countyhealth/portal/internal/session"
	"net/http"
)

// loginFailedMessage is the only credential failure text ever shown to the caller.
// The backend detail is deliberately discarded to avoid leaking account enumeration info.
const loginFailedMessage = "Invalid username or password"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the backend.
// On success, the returned identity is persisted to the session store and returned.
func (client *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	identity := new(session.Session)
	err := client.call(ctx, http.MethodPost, "login", nil, &loginRequest{
		Username: username,
		Password: password,
	}, identity, false)
	if err != nil {
		var appErr *ApplicationError
		if errors.As(err, &appErr) {
			return nil, &ApplicationError{Message: loginFailedMessage}
		}
		return nil, err
	}
	if !identity.Valid() {
		return nil, &ApplicationError{Message: loginFailedMessage}
	}

	if err := client.sessions.Save(ctx, identity); err != nil {
		return nil, err
	}
	return identity.Copy(), nil
}

// Logout notifies the backend on a best-effort basis and clears the local session.
// It never fails: the local session is gone afterwards regardless of the network outcome.
func (client *Client) Logout(ctx context.Context) {
	if client.sessions.CurrentToken() != "" {
		_ = client.call(ctx, http.MethodPost, "logout", nil, nil, nil, true)
	}
	_ = client.sessions.Clear(ctx)
	client.details.Clear()
}
