package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"golang.org/x/oauth2"
)

// Authenticator builds authorize URLs and exchanges authorization codes at the accounts service.
//
// The slot name is sent verbatim as the OAuth state so the callback can be routed back to the right slot.
// It is not a nonce; callers validate it with [shared.ParseSlot].
type Authenticator struct {
	creds    shared.SpotifyConfig
	endpoint oauth2.Endpoint
	client   *http.Client
	logger   *log.Logger
}

// NewAuthenticator creates an Authenticator. A nil client falls back to [http.DefaultClient].
func NewAuthenticator(creds shared.SpotifyConfig, api shared.APIConfig, client *http.Client, logger *log.Logger) *Authenticator {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = discardLogger()
	}

	return &Authenticator{
		creds: creds,
		endpoint: oauth2.Endpoint{
			AuthURL:   api.AuthURL,
			TokenURL:  api.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		client: client,
		logger: logger,
	}
}

func (a *Authenticator) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.creds.ClientID,
		ClientSecret: a.creds.ClientSecret,
		RedirectURL:  a.creds.RedirectURI,
		Scopes:       Scopes,
		Endpoint:     a.endpoint,
	}
}

// AuthorizeURL returns the URL the user visits to grant access for slot.
func (a *Authenticator) AuthorizeURL(slot models.Slot) (string, error) {
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %d", shared.ErrInvalidSlot, slot)
	}
	if missing := a.creds.Missing(false); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing spotify %s", shared.ErrConfig, strings.Join(missing, ", "))
	}

	return a.config().AuthCodeURL(slot.String()), nil
}

// Exchange trades an authorization code for a [models.Credential] with a single form-encoded POST.
//
// A response without a refresh token is accepted. Failures are not retried.
func (a *Authenticator) Exchange(ctx context.Context, code string) (models.Credential, error) {
	if missing := a.creds.Missing(true); len(missing) > 0 {
		return models.Credential{}, fmt.Errorf("%w: missing spotify %s", shared.ErrConfig, strings.Join(missing, ", "))
	}
	if strings.TrimSpace(code) == "" {
		return models.Credential{}, fmt.Errorf("%w: empty authorization code", shared.ErrAuth)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	token, err := a.config().Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			a.logger.Debug("token exchange rejected", "status", rerr.Response.StatusCode, "error_code", rerr.ErrorCode)
			return models.Credential{}, fmt.Errorf("%w: token endpoint returned status %d: %s",
				shared.ErrAuth, rerr.Response.StatusCode, strings.TrimSpace(string(rerr.Body)))
		}
		return models.Credential{}, fmt.Errorf("%w: %v", shared.ErrAuth, err)
	}

	if token.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("%w: token response missing access_token", shared.ErrAuth)
	}

	a.logger.Debug("exchanged authorization code", "refresh_token", token.RefreshToken != "")
	return models.Credential{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}, nil
}
