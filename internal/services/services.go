// package services implements the HTTP clients for the Spotify accounts and Web API endpoints
package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Scopes requested at authorization. Reading the source library and writing the destination library are both needed
// because a single login may be used for either slot.
var Scopes = []string{"user-library-read", "user-library-modify"}

const (
	// PageSize is the number of saved tracks requested per page.
	PageSize = 50
	// BatchSize is the maximum number of ids accepted by a single save request.
	BatchSize = 50

	maxErrorBody = 4 << 10
)

// NewHTTPClient returns an [http.Client] that bounds every request, including the token exchange, by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// APIError is a non-2xx response from the Web API.
//
// It matches [shared.ErrAPI] with [errors.Is].
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("spotify API error: %s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPI
}

// Temporary reports whether the status is worth retrying (rate limited or a server error).
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// newAPIError drains up to maxErrorBody bytes of the response body into an [APIError].
func newAPIError(method, endpoint string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}

// AsAPIError unwraps err into an [*APIError] when there is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// savedTracksPage is one page of GET /me/tracks.
type savedTracksPage struct {
	Items  []savedTrack `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Next   *string      `json:"next"`
}

type savedTrack struct {
	AddedAt string `json:"added_at"`
	Track   track  `json:"track"`
}

type track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []artist `json:"artists"`
	Album   album    `json:"album"`
	URI     string   `json:"uri"`
}

type artist struct {
	Name string `json:"name"`
}

type album struct {
	Name string `json:"name"`
}

// item flattens the artists to their names and copies album and URI verbatim.
func (t track) item() models.Item {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return models.Item{ID: t.ID, Name: t.Name, Artists: names, Album: t.Album.Name, URI: t.URI}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
