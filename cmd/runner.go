package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// envFiles are loaded into the process environment before the credentials are resolved.
var envFiles = []string{".env"}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config          *shared.Config
	configPath      string
	httpClient      *http.Client
	logger          *log.Logger
	output          io.Writer
	openBrowser     func(url string) error
	callbackTimeout time.Duration
	allowSelfSync   bool

	once       sync.Once
	session    *tasks.Session
	sessionErr error
	store      *repositories.TokenStore
	journal    *repositories.Journal
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config          *shared.Config // Resolved from --config and the environment when nil
	ConfigPath      string
	HTTPClient      *http.Client
	Logger          *log.Logger
	Output          io.Writer
	OpenBrowser     func(url string) error
	CallbackTimeout time.Duration
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = 2 * time.Minute
	}

	return &Runner{
		config:          opts.Config,
		configPath:      opts.ConfigPath,
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
		output:          opts.Output,
		openBrowser:     opts.OpenBrowser,
		callbackTimeout: opts.CallbackTimeout,
	}
}

// Configure resolves the configuration from the --config flag, the env file and the environment.
//
// Runs before every command. A Runner created with a Config keeps it.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.config != nil {
		return ctx, nil
	}

	config, err := shared.ResolveConfig(r.configPath, envFiles...)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("configuration resolved", "path", r.configPath, "storage", config.StorageDir())
	return ctx, nil
}

// Session builds the [tasks.Session] on first use and restores stored logins into it.
// A failed restore is returned on every call.
//
// The journal is optional: when its database cannot be opened transfers still run unrecorded.
func (r *Runner) Session() (*tasks.Session, error) {
	r.once.Do(func() {
		if r.config == nil {
			r.config = shared.DefaultConfig()
		}
		if r.httpClient == nil {
			r.httpClient = services.NewHTTPClient(r.config.HTTP.Timeout())
		}

		r.store = repositories.NewTokenStore(r.config.StorageDir())

		if db, dbErr := shared.OpenJournalDatabase(r.config.DatabasePath()); dbErr != nil {
			r.logger.Warn("transfer journal unavailable", "path", r.config.DatabasePath(), "error", dbErr)
		} else {
			r.db = db
			r.journal = repositories.NewJournal(db)
		}

		opts := tasks.SessionOpts{
			Auth: services.NewAuthenticator(r.config.Credentials.Spotify, r.config.API, r.httpClient, r.logger),
			Library: services.NewLibraryClient(services.LibraryOpts{
				BaseURL:    r.config.API.BaseURL,
				HTTPClient: r.httpClient,
				RateLimit:  r.config.HTTP.RateLimit,
				Retry: services.RetryPolicy{
					MaxAttempts: r.config.HTTP.MaxAttempts,
					Backoff:     services.ExponentialBackoff(r.config.HTTP.Backoff(), 30*time.Second),
				},
				Logger: r.logger,
			}),
			Store:         r.store,
			Logger:        r.logger,
			AllowSelfSync: r.allowSelfSync,
		}
		if r.journal != nil {
			opts.Journal = r.journal
		}

		r.session = tasks.NewSession(opts)
		if _, err := r.session.Restore(); err != nil {
			r.sessionErr = fmt.Errorf("restore saved logins: %w", err)
		}
	})
	if r.sessionErr != nil {
		return nil, r.sessionErr
	}
	if r.session == nil {
		return nil, fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	return r.session, nil
}

// SetLogger replaces the logger used by commands and, when built afterwards, by the session.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the journal database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, libraryCommand, transferCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// progressPrinter prints updates from the returned channel until wait is called.
func (r *Runner) progressPrinter() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.FetchLibrary:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteLibrary:
				r.writePlain("   %s\n", update.Message)
			case tasks.TransferDone:
				r.writePlain("✓ %s\n", update.Message)
			}
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
