package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive two-panel terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if config == nil {
		config = shared.DefaultConfig()
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join(config.StorageDir(), "logs", "tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	session, err := r.Session()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, session, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
