package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/server"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the authorize URL of a slot for manual login.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	slot, err := shared.ParseSlot(cmd.String("slot"))
	if err != nil {
		return err
	}

	session, err := r.Session()
	if err != nil {
		return err
	}

	url, err := session.AuthorizeURL(slot)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", url)
}

// AuthExchange completes a manual login with the code from the redirect.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	slot, err := shared.ParseSlot(cmd.String("slot"))
	if err != nil {
		return err
	}

	session, err := r.Session()
	if err != nil {
		return err
	}

	if err := session.ExchangeCode(ctx, slot, cmd.String("code")); err != nil {
		return err
	}

	r.writePlain("✓ %s slot authenticated\n", slot)
	r.writePlain("✓ Token saved to %s\n", r.store.Path(slot))
	return nil
}

// AuthLogin performs the OAuth2 authorization code flow for a slot.
//
// Validates the credentials, starts the local callback server at the address and path of the redirect URI,
// opens the browser at the authorize URL and waits for the redirect.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	slot, err := shared.ParseSlot(cmd.String("slot"))
	if err != nil {
		return err
	}

	session, err := r.Session()
	if err != nil {
		return err
	}

	if err := r.config.Validate(); err != nil {
		return err
	}
	addr, path, err := r.config.CallbackAddr()
	if err != nil {
		return err
	}

	authURL, err := session.AuthorizeURL(slot)
	if err != nil {
		return err
	}

	handler := server.NewCallbackHandler(session.ExchangeCode, slot).WithPath(path)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	srv, err := server.Start(addr, router)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()
	r.logger.Infof("started OAuth callback server for %s at %v", slot, srv.Addr())

	r.writePlain("→ Opening browser to authorize the %s slot...\n", slot)
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.callbackTimeout)

	timeout := time.NewTimer(r.callbackTimeout)
	defer timeout.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-srv.Errors():
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, r.callbackTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Err != nil {
		return fmt.Errorf("authorization failed: %w", result.Err)
	}

	r.writePlainln("✓ %s slot authenticated", result.Slot)
	r.writePlain("✓ Token saved to %s\n", r.store.Path(result.Slot))
	return nil
}

type slotStatus struct {
	Slot      string `json:"slot"`
	LoggedIn  bool   `json:"logged_in"`
	TokenPath string `json:"token_path"`
}

// AuthStatus reports which slots have a stored token.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.Session()
	if err != nil {
		return err
	}

	saved, err := session.LoadSavedSlots()
	if err != nil {
		return err
	}

	statuses := make([]slotStatus, 0, len(models.Slots))
	for _, slot := range models.Slots {
		statuses = append(statuses, slotStatus{Slot: slot.String(), LoggedIn: saved[slot], TokenPath: r.store.Path(slot)})
	}

	if cmd.Bool("json") {
		return r.writeJSON(statuses, false)
	}

	for _, s := range statuses {
		if s.LoggedIn {
			r.writePlain("%-4s ✓ logged in (%s)\n", s.Slot, s.TokenPath)
		} else {
			r.writePlain("%-4s ✗ not logged in\n", s.Slot)
		}
	}
	return nil
}

// AuthLogout forgets a slot and deletes its stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	slot, err := shared.ParseSlot(cmd.String("slot"))
	if err != nil {
		return err
	}

	session, err := r.Session()
	if err != nil {
		return err
	}

	if err := session.Clear(slot); err != nil {
		return err
	}
	return r.writePlain("✓ %s slot logged out\n", slot)
}
