package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Request is a call received by [FakeSpotify].
type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
}

// FakeSpotify is an in-memory stand-in for the accounts service (/api/token) and the saved tracks endpoints
// of the Web API (/v1/me/tracks). Each bearer token owns its own library.
type FakeSpotify struct {
	Server *httptest.Server

	// Fail, when set, returns a status code to reply with instead of handling the request (0 means handle it).
	Fail func(r *http.Request) int

	mu        sync.Mutex
	libraries map[string][]string
	requests  []Request
}

// NewFakeSpotify starts a FakeSpotify that is closed when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{libraries: make(map[string][]string)}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", f.handleToken)
	mux.HandleFunc("/v1/me/tracks", f.handleTracks)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.Fail != nil {
			if status := f.Fail(r); status != 0 {
				http.Error(w, `{"error":{"status":`+strconv.Itoa(status)+`}}`, status)
				return
			}
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the Web API base to configure clients with.
func (f *FakeSpotify) BaseURL() string { return f.Server.URL + "/v1" }

// TokenURL is the accounts service token endpoint.
func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/api/token" }

// AuthURL is the accounts service authorize endpoint. FakeSpotify never serves it.
func (f *FakeSpotify) AuthURL() string { return f.Server.URL + "/authorize" }

// TokenFor returns the access token the fake issues for an authorization code.
func TokenFor(code string) string { return "access-" + code }

// SetLibrary replaces the saved track ids of the account behind token.
func (f *FakeSpotify) SetLibrary(token string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.libraries[token] = append([]string(nil), ids...)
}

// Library returns the saved track ids of the account behind token.
func (f *FakeSpotify) Library(token string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.libraries[token]...)
}

// Requests returns every request received so far.
func (f *FakeSpotify) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Count returns the number of requests received with method (any method when empty).
func (f *FakeSpotify) Count(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if method == "" || r.Method == method {
			n++
		}
	}
	return n
}

func (f *FakeSpotify) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
	})
}

func (f *FakeSpotify) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}

	code := r.PostForm.Get("code")
	if code == "" || code == "bad" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  TokenFor(code),
		"refresh_token": "refresh-" + code,
		"token_type":    "Bearer",
		"expires_in":    3600,
	})
}

func (f *FakeSpotify) handleTracks(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no token"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.listTracks(w, r, token)
	case http.MethodPut:
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		if len(ids) > 50 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many ids"})
			return
		}
		f.mu.Lock()
		f.libraries[token] = append(f.libraries[token], ids...)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeSpotify) listTracks(w http.ResponseWriter, r *http.Request, token string) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	library := f.Library(token)
	end := min(offset+limit, len(library))
	start := min(offset, end)

	items := make([]map[string]any, 0, end-start)
	for _, id := range library[start:end] {
		items = append(items, map[string]any{
			"added_at": "2024-01-01T00:00:00Z",
			"track":    FakeTrack(id),
		})
	}

	var next any
	if end < len(library) {
		next = fmt.Sprintf("%s/v1/me/tracks?offset=%d&limit=%d", f.Server.URL, end, limit)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":  items,
		"total":  len(library),
		"limit":  limit,
		"offset": offset,
		"next":   next,
	})
}

// FakeTrack is the track object served for id.
func FakeTrack(id string) map[string]any {
	return map[string]any{
		"id":      id,
		"name":    "Song " + id,
		"artists": []map[string]string{{"name": "Artist " + id}, {"name": "Featured " + id}},
		"album":   map[string]string{"name": "Album " + id},
		"uri":     "spotify:track:" + id,
	}
}

// TrackIDs returns n ids named prefix0..prefixN-1.
func TrackIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
