package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"sync"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// ExchangeFunc completes authentication of slot with an authorization code. [tasks.Session.ExchangeCode] fits.
type ExchangeFunc func(ctx context.Context, slot models.Slot, code string) error

// CallbackResult is the outcome of the OAuth redirect.
type CallbackResult struct {
	Slot models.Slot
	Err  error
}

// CallbackHandler receives the OAuth redirect, at /callback unless [CallbackHandler.WithPath] says otherwise.
//
// The state parameter is the slot name. It is validated against the slot enumeration (and the expected slots,
// when given) before the code is exchanged, since it carries no cryptographic binding.
// Only the first request is processed; later ones get 400.
type CallbackHandler struct {
	exchange ExchangeFunc
	expected []models.Slot
	path     string
	results  chan CallbackResult
	once     sync.Once

	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackHandler creates a handler that accepts any of expected, or either slot when none are given.
func NewCallbackHandler(exchange ExchangeFunc, expected ...models.Slot) *CallbackHandler {
	if len(expected) == 0 {
		expected = models.Slots
	}
	return &CallbackHandler{
		exchange: exchange,
		expected: expected,
		path:     "/callback",
		results:  make(chan CallbackResult, 1),
	}
}

// WithPath serves the callback at path, which must match the path of the redirect URI.
func (h *CallbackHandler) WithPath(path string) *CallbackHandler {
	if path != "" {
		h.path = path
	}
	return h
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	q := r.URL.Query()
	slot, err := shared.ParseSlot(q.Get("state"))
	if err == nil && !slices.Contains(h.expected, slot) {
		err = fmt.Errorf("%w: unexpected state %q", shared.ErrInvalidSlot, slot)
	}
	if err != nil {
		h.fail(w, http.StatusBadRequest, CallbackResult{Err: fmt.Errorf("%w: %w", shared.ErrAuth, err)})
		return
	}

	code := q.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: authorization denied: %s %s", shared.ErrAuth, q.Get("error"), q.Get("error_description"))
		h.fail(w, http.StatusBadRequest, CallbackResult{Slot: slot, Err: err})
		return
	}

	if err := h.exchange(r.Context(), slot, code); err != nil {
		h.fail(w, http.StatusInternalServerError, CallbackResult{Slot: slot, Err: err})
		return
	}

	h.Send(CallbackResult{Slot: slot})
	renderPage(w, http.StatusOK, page{
		Title:   "Authorization Successful",
		Heading: "✓ Authorization Successful",
		Message: fmt.Sprintf("The %s account is connected. You can close this window and return to the terminal.", slot),
		Color:   "#1DB954",
	})
}

func (h *CallbackHandler) fail(w http.ResponseWriter, status int, result CallbackResult) {
	h.Send(result)
	renderPage(w, status, page{
		Title:   "Authorization Failed",
		Heading: "✗ Authorization Failed",
		Message: result.Err.Error(),
		Color:   "#E22134",
	})
}

// Send publishes the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns the result channel.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

type page struct {
	Title   string
	Heading string
	Message string
	Color   string
}

var pageTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Heading}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}
