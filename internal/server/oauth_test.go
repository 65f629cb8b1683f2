package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

type exchangeCall struct {
	slot models.Slot
	code string
}

func recordingExchange(calls *[]exchangeCall, err error) ExchangeFunc {
	return func(_ context.Context, slot models.Slot, code string) error {
		*calls = append(*calls, exchangeCall{slot: slot, code: code})
		return err
	}
}

func TestCallbackHandler(t *testing.T) {
	t.Run("Exchanges Code For State Slot", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=to&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(calls) != 1 || calls[0].slot != models.To || calls[0].code != "abc" {
			t.Errorf("unexpected exchange calls %+v", calls)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}

		result := <-h.Result()
		if result.Err != nil || result.Slot != models.To {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("Rejects Unknown State", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=sideways&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(calls) != 0 {
			t.Error("code should not be exchanged for an unknown state")
		}

		result := <-h.Result()
		if !errors.Is(result.Err, shared.ErrInvalidSlot) {
			t.Errorf("expected ErrInvalidSlot, got %v", result.Err)
		}
	})

	t.Run("Rejects Unexpected Slot", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, nil), models.From)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=to&code=abc", nil))

		if rec.Code != http.StatusBadRequest || len(calls) != 0 {
			t.Errorf("expected 400 without exchange, got %d with %d calls", rec.Code, len(calls))
		}
		if result := <-h.Result(); !errors.Is(result.Err, shared.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", result.Err)
		}
	})

	t.Run("Authorization Denied", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=from&error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Err, shared.ErrAuth) || !strings.Contains(result.Err.Error(), "access_denied") {
			t.Errorf("expected denial error, got %v", result.Err)
		}
		if result.Slot != models.From {
			t.Errorf("expected from slot, got %s", result.Slot)
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, shared.ErrStorage))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=from&code=abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", result.Err)
		}
	})

	t.Run("Second Hit Rejected", func(t *testing.T) {
		var calls []exchangeCall
		h := NewCallbackHandler(recordingExchange(&calls, nil))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=from&code=abc", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=from&code=def", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(calls) != 1 {
			t.Errorf("expected a single exchange, got %d", len(calls))
		}

		var results int
		for range h.Result() {
			results++
		}
		if results != 1 {
			t.Errorf("expected exactly one result, got %d", results)
		}
	})
}
