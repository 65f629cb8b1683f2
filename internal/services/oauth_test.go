package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
)

func testCredentials() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://127.0.0.1:8888/callback",
	}
}

func TestAuthenticator(t *testing.T) {
	api := shared.DefaultConfig().API

	t.Run("AuthorizeURL", func(t *testing.T) {
		auth := NewAuthenticator(testCredentials(), api, nil, nil)

		raw, err := auth.AuthorizeURL(models.To)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", raw, err)
		}
		if u.Host != "accounts.spotify.com" || u.Path != "/authorize" {
			t.Errorf("unexpected authorize endpoint %s", raw)
		}

		q := u.Query()
		expected := map[string]string{
			"state":         "to",
			"response_type": "code",
			"client_id":     "test_client_id",
			"redirect_uri":  "http://127.0.0.1:8888/callback",
			"scope":         "user-library-read user-library-modify",
		}
		for k, v := range expected {
			if q.Get(k) != v {
				t.Errorf("expected %s=%q, got %q", k, v, q.Get(k))
			}
		}
	})

	t.Run("AuthorizeURL Does Not Need Secret", func(t *testing.T) {
		creds := testCredentials()
		creds.ClientSecret = ""

		if _, err := NewAuthenticator(creds, api, nil, nil).AuthorizeURL(models.From); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("AuthorizeURL Missing Config", func(t *testing.T) {
		for _, field := range []string{"client_id", "redirect_uri"} {
			creds := testCredentials()
			if field == "client_id" {
				creds.ClientID = ""
			} else {
				creds.RedirectURI = ""
			}

			_, err := NewAuthenticator(creds, api, nil, nil).AuthorizeURL(models.From)
			if !errors.Is(err, shared.ErrConfig) {
				t.Errorf("missing %s: expected ErrConfig, got %v", field, err)
			}
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		var form url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			form = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
		}))
		defer srv.Close()

		auth := NewAuthenticator(testCredentials(), shared.APIConfig{TokenURL: srv.URL}, srv.Client(), nil)
		cred, err := auth.Exchange(context.Background(), "the-code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cred.AccessToken != "at" || cred.RefreshToken != "rt" {
			t.Errorf("unexpected credential %+v", cred)
		}

		expected := map[string]string{
			"grant_type":    "authorization_code",
			"code":          "the-code",
			"redirect_uri":  "http://127.0.0.1:8888/callback",
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}
		for k, v := range expected {
			if form.Get(k) != v {
				t.Errorf("expected form %s=%q, got %q", k, v, form.Get(k))
			}
		}
	})

	t.Run("Exchange Without Refresh Token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"only-access","token_type":"Bearer"}`))
		}))
		defer srv.Close()

		auth := NewAuthenticator(testCredentials(), shared.APIConfig{TokenURL: srv.URL}, srv.Client(), nil)
		cred, err := auth.Exchange(context.Background(), "code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cred.AccessToken != "only-access" || cred.HasRefreshToken() {
			t.Errorf("unexpected credential %+v", cred)
		}
	})

	t.Run("Exchange Failures", func(t *testing.T) {
		tc := []struct {
			name    string
			status  int
			payload string
		}{
			{name: "rejected", status: http.StatusBadRequest, payload: `{"error":"invalid_grant"}`},
			{name: "server error", status: http.StatusInternalServerError, payload: `oops`},
			{name: "missing access token", status: http.StatusOK, payload: `{"token_type":"Bearer"}`},
			{name: "malformed", status: http.StatusOK, payload: `{"access_token":`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.payload))
				}))
				defer srv.Close()

				auth := NewAuthenticator(testCredentials(), shared.APIConfig{TokenURL: srv.URL}, srv.Client(), nil)
				if _, err := auth.Exchange(context.Background(), "code"); !errors.Is(err, shared.ErrAuth) {
					t.Errorf("expected ErrAuth, got %v", err)
				}
			})
		}
	})

	t.Run("Exchange Network Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.FailingTransport(nil, errors.New("refused"), func(*http.Request) bool { return true })}
		auth := NewAuthenticator(testCredentials(), api, client, nil)

		if _, err := auth.Exchange(context.Background(), "code"); !errors.Is(err, shared.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("Exchange Empty Code", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		auth := NewAuthenticator(testCredentials(), shared.APIConfig{TokenURL: fake.TokenURL()}, nil, nil)

		if _, err := auth.Exchange(context.Background(), "  "); !errors.Is(err, shared.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
		if fake.Count("") != 0 {
			t.Errorf("expected no request, got %d", fake.Count(""))
		}
	})

	t.Run("Exchange Missing Secret", func(t *testing.T) {
		creds := testCredentials()
		creds.ClientSecret = ""

		if _, err := NewAuthenticator(creds, api, nil, nil).Exchange(context.Background(), "code"); !errors.Is(err, shared.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})
}
