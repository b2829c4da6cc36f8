package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/countyhealth/portal/internal/county"
	"github.com/countyhealth/portal/internal/hashmap"
	"github.com/countyhealth/portal/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// methodPathPrefix is the RPC path prefix the backend exposes its methods under
const methodPathPrefix = "/api/method/countyhealth_backend.api."

var (
	detailsCacheLifetime = 5 * time.Minute
	detailsCacheCleanup  = 30 * time.Second
)

// Client is the single chokepoint for all calls against the countyhealth backend API.
// It attaches the current session token, normalizes transport failures into
// RequestFailedError and surfaces backend-reported failures as ApplicationError.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store

	// session-scoped memo of full county records, used to prefill edit forms.
	// Invalidated on every create/update/delete.
	details *hashmap.ExpiringMap[string, *county.County]
}

// NewClient creates a new gateway client for the backend reachable at baseURL
func NewClient(baseURL string, timeout time.Duration, sessions *session.Store) *Client {
	details := hashmap.NewExpiring[string, *county.County](detailsCacheLifetime)
	details.ScheduleCleanupTask(detailsCacheCleanup)

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		sessions: sessions,
		details:  details,
	}
}

// Close stops the background tasks owned by the client
func (client *Client) Close() {
	client.details.StopCleanupTask()
}

// envelope represents the response wrapper the backend uses for every method.
// Payloads live under 'message'; the presence of any of the failure markers is
// authoritative even when the HTTP status is nominally successful.
type envelope struct {
	Message   json.RawMessage `json:"message"`
	Exc       string          `json:"exc"`
	Exception string          `json:"exception"`
	Exe       string          `json:"exe"`
}

func (env *envelope) failed() bool {
	return env.Exc != "" || env.Exception != "" || env.Exe != ""
}

func (env *envelope) errorMessage(fallback string) string {
	// 'exc' carries a raw backend traceback; never show it to the user
	if env.Exception != "" {
		return env.Exception
	}
	if env.Exe != "" {
		return env.Exe
	}
	return fallback
}

// call performs a single backend method call.
// If authed is set, the current session token is attached as a query parameter;
// a missing token fails with ErrUnauthenticated before any network call is made.
func (client *Client) call(ctx context.Context, httpMethod, apiMethod string, query url.Values, body, out any, authed bool) error {
	if query == nil {
		query = url.Values{}
	}
	if authed {
		token := client.sessions.CurrentToken()
		if token == "" {
			return ErrUnauthenticated
		}
		query.Set("token", token)
	}

	endpoint := client.baseURL + methodPathPrefix + apiMethod
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &RequestFailedError{Reason: err}
		}
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, reader)
	if err != nil {
		return &RequestFailedError{Reason: err}
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	request.Header.Set("X-Request-ID", requestID)

	response, err := client.http.Do(request)
	if err != nil {
		log.Debug().Str("method", apiMethod).Str("request_id", requestID).Err(err).Msg("backend request failed")
		return &RequestFailedError{Reason: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return &RequestFailedError{Reason: err}
	}

	// A definitive rejection of the token means the session is no longer valid
	if authed && (response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden) {
		log.Info().Str("method", apiMethod).Int("status", response.StatusCode).Msg("backend rejected the session token; clearing the stored session")
		_ = client.sessions.Clear(ctx)
		return &RequestFailedError{Reason: fmt.Errorf("unexpected status code %d", response.StatusCode)}
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		log.Debug().Str("method", apiMethod).Str("request_id", requestID).Int("status", response.StatusCode).Msg("backend returned a non-2xx status")
		return &RequestFailedError{Reason: fmt.Errorf("unexpected status code %d", response.StatusCode)}
	}

	env := new(envelope)
	if err := json.Unmarshal(raw, env); err != nil {
		return &RequestFailedError{Reason: err}
	}
	if env.failed() {
		return &ApplicationError{Message: env.errorMessage("The backend reported an error.")}
	}

	if out != nil {
		if env.Message == nil {
			return &ApplicationError{Message: "Invalid response from server"}
		}
		if err := json.Unmarshal(env.Message, out); err != nil {
			return &RequestFailedError{Reason: err}
		}
	}
	return nil
}
