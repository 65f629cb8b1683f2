package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	tu "github.com/desertthunder/likesync/internal/testing"
)

type testEnv struct {
	config *shared.Config
	fake   *tu.FakeSpotify
	output *bytes.Buffer
	runner *Runner
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func newTestConfig(t *testing.T, fake *tu.FakeSpotify) *shared.Config {
	t.Helper()
	port := freePort(t)

	config := shared.DefaultConfig()
	config.Credentials.Spotify = shared.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  fmt.Sprintf("http://127.0.0.1:%d/callback", port),
	}
	config.API = shared.APIConfig{BaseURL: fake.BaseURL(), AuthURL: fake.AuthURL(), TokenURL: fake.TokenURL()}
	config.Storage.Dir = filepath.Join(t.TempDir(), ".likesync")
	config.Server = shared.ServerConfig{Host: "127.0.0.1", Port: port}
	return config
}

func newTestEnv(t *testing.T, config *shared.Config, fake *tu.FakeSpotify, opts RunnerOpts) *testEnv {
	t.Helper()
	output := &bytes.Buffer{}

	opts.Config = config
	opts.Output = output
	opts.Logger = shared.NewLogger(io.Discard)
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = func(string) error { return errors.New("no browser in tests") }
	}

	runner := NewRunner(opts)
	t.Cleanup(func() { runner.Close() })
	return &testEnv{config: config, fake: fake, output: output, runner: runner}
}

func (e *testEnv) run(args ...string) error {
	e.output.Reset()
	return newApp(e.runner).Run(context.Background(), append([]string{"likesync"}, args...))
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := e.run(args...); err != nil {
		t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return e.output.String()
}

// callbackBrowser follows the authorize URL straight to the redirect URI with code.
func callbackBrowser(t *testing.T, code string) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()
		callback := fmt.Sprintf("%s?state=%s&code=%s", q.Get("redirect_uri"), url.QueryEscape(q.Get("state")), code)

		resp, err := http.Get(callback)
		if err != nil {
			t.Errorf("callback request failed: %v", err)
			return nil
		}
		resp.Body.Close()
		return nil
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with zero callback timeout uses two minutes", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.callbackTimeout != 2*time.Minute {
				t.Errorf("expected 2m callback timeout, got %s", runner.callbackTimeout)
			}
		})

		t.Run("keeps provided config", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: "/test/path/config.toml"})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make([]string, 0, len(commands))
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names = append(names, cmd.Name)
		}

		if got := strings.Join(names, ","); got != "setup,auth,library,transfer,tui" {
			t.Errorf("unexpected commands %s", got)
		}
	})

	t.Run("exportFormatName", func(t *testing.T) {
		tc := []struct{ format, output, want string }{
			{"csv", "", "csv"},
			{"", "", ""},
			{"", "songs.md", "md"},
			{"txt", "songs.md", "txt"},
			{"", "songs", "json"},
		}
		for _, tt := range tc {
			if got := exportFormatName(tt.format, tt.output); got != tt.want {
				t.Errorf("exportFormatName(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
			}
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("setup config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		env := newTestEnv(t, shared.DefaultConfig(), nil, RunnerOpts{})

		out := env.mustRun(t, "--config", path, "setup", "config")
		if !strings.Contains(out, "✓ Config written to "+path) {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, path)

		if err := env.run("--config", path, "setup", "config"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument on second run, got %v", err)
		}
	})

	t.Run("setup database", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Storage.Dir = filepath.Join(t.TempDir(), ".likesync")
		env := newTestEnv(t, config, nil, RunnerOpts{})

		out := env.mustRun(t, "setup", "database")
		if !strings.Contains(out, "Journal database ready") {
			t.Errorf("unexpected output %q", out)
		}
		tu.AssertFileExists(t, config.DatabasePath())

		out = env.mustRun(t, "setup", "database", "--rollback")
		if !strings.Contains(out, "Rolled back") {
			t.Errorf("unexpected output %q", out)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		out := env.mustRun(t, "auth", "url", "--slot", "to")
		if !strings.HasPrefix(out, fake.AuthURL()) || !strings.Contains(out, "state=to") {
			t.Errorf("unexpected authorize URL %q", out)
		}
	})

	t.Run("invalid slot", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		if err := env.run("auth", "url", "--slot", "sideways"); !errors.Is(err, shared.ErrInvalidSlot) {
			t.Errorf("expected ErrInvalidSlot, got %v", err)
		}
	})

	t.Run("exchange and status", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		out := env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		if !strings.Contains(out, "✓ from slot authenticated") {
			t.Errorf("unexpected output %q", out)
		}
		if got := strings.TrimSpace(tu.MustReadFile(t, filepath.Join(env.config.StorageDir(), "from_token.txt"))); got != tu.TokenFor("alice") {
			t.Errorf("expected stored token %q, got %q", tu.TokenFor("alice"), got)
		}

		out = env.mustRun(t, "auth", "status")
		if !strings.Contains(out, "from ✓ logged in") || !strings.Contains(out, "to   ✗ not logged in") {
			t.Errorf("unexpected status output %q", out)
		}
	})

	t.Run("exchange rejected code", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		if err := env.run("auth", "exchange", "--slot", "from", "--code", "bad"); !errors.Is(err, shared.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("exchange without credentials", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		config := newTestConfig(t, fake)
		config.Credentials.Spotify.ClientSecret = ""
		env := newTestEnv(t, config, fake, RunnerOpts{})

		if err := env.run("auth", "exchange", "--slot", "from", "--code", "alice"); !errors.Is(err, shared.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
		if fake.Count(http.MethodPost) != 0 {
			t.Error("expected no token request")
		}
	})

	t.Run("login through callback server", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{OpenBrowser: callbackBrowser(t, "bob")})

		out := env.mustRun(t, "auth", "login", "--slot", "to")
		if !strings.Contains(out, "✓ to slot authenticated") {
			t.Errorf("unexpected output %q", out)
		}
		if !env.runner.session.Snapshot(models.To).Authenticated {
			t.Error("expected to slot to be authenticated")
		}
	})

	t.Run("login listens where the redirect uri points", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		config := newTestConfig(t, fake)
		config.Credentials.Spotify.RedirectURI = fmt.Sprintf("http://127.0.0.1:%d/spotify/callback", freePort(t))
		config.Server.Port = 1
		env := newTestEnv(t, config, fake, RunnerOpts{OpenBrowser: callbackBrowser(t, "bob")})

		out := env.mustRun(t, "auth", "login", "--slot", "to")
		if !strings.Contains(out, "✓ to slot authenticated") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("login requires credentials", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		config := newTestConfig(t, fake)
		config.Credentials.Spotify.ClientSecret = ""
		browserOpened := false
		env := newTestEnv(t, config, fake, RunnerOpts{OpenBrowser: func(string) error {
			browserOpened = true
			return nil
		}})

		err := env.run("auth", "login", "--slot", "from")
		if !errors.Is(err, shared.ErrConfig) || !strings.Contains(err.Error(), "client_secret") {
			t.Errorf("expected ErrConfig naming client_secret, got %v", err)
		}
		if browserOpened {
			t.Error("expected no browser before credentials are valid")
		}
	})

	t.Run("login times out", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{
			OpenBrowser:     func(string) error { return nil },
			CallbackTimeout: 50 * time.Millisecond,
		})

		if err := env.run("auth", "login", "--slot", "from"); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("logout", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")

		out := env.mustRun(t, "auth", "logout", "--slot", "from")
		if !strings.Contains(out, "✓ from slot logged out") {
			t.Errorf("unexpected output %q", out)
		}
		if _, err := os.Stat(filepath.Join(env.config.StorageDir(), "from_token.txt")); !os.IsNotExist(err) {
			t.Errorf("expected token file to be removed, got %v", err)
		}

		if err := env.run("auth", "logout", "--slot", "from"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage when nothing is stored, got %v", err)
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	setup := func(t *testing.T) *testEnv {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		fake.SetLibrary(tu.TokenFor("alice"), tu.TrackIDs("a", 3)...)
		return env
	}

	t.Run("plain", func(t *testing.T) {
		env := setup(t)

		out := env.mustRun(t, "library", "fetch", "--slot", "from")
		if !strings.Contains(out, "Found 3 liked songs in from:") {
			t.Errorf("unexpected output %q", out)
		}
		if !strings.Contains(out, "   Album: ") {
			t.Errorf("expected album lines, got %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		env := setup(t)

		out := env.mustRun(t, "library", "fetch", "--slot", "from", "--json")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if last := lines[len(lines)-1]; !strings.HasPrefix(last, `[{"id":`) {
			t.Errorf("expected JSON array, got %q", out)
		}
	})

	t.Run("export by extension", func(t *testing.T) {
		env := setup(t)
		path := filepath.Join(t.TempDir(), "songs.csv")

		out := env.mustRun(t, "library", "fetch", "--slot", "from", "--output", path)
		if !strings.Contains(out, "✓ Library exported to "+path) {
			t.Errorf("unexpected output %q", out)
		}
		if content := tu.MustReadFile(t, path); !strings.HasPrefix(content, "ID,Name,Artists,Album,URI") {
			t.Errorf("expected CSV export, got %q", content)
		}
	})

	t.Run("query", func(t *testing.T) {
		env := setup(t)

		out := env.mustRun(t, "library", "fetch", "--slot", "from", "--query", "song a1")
		if !strings.Contains(out, "Found 1 liked songs in from:") || !strings.Contains(out, "Song a1") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		env := setup(t)

		if err := env.run("library", "fetch", "--slot", "from", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if env.fake.Count(http.MethodGet) != 0 {
			t.Error("expected no fetch for an unknown format")
		}
	})

	t.Run("unauthenticated slot", func(t *testing.T) {
		env := setup(t)

		if err := env.run("library", "fetch", "--slot", "to"); !errors.Is(err, shared.ErrPrecondition) {
			t.Errorf("expected ErrPrecondition, got %v", err)
		}
	})
}

func TestTransferCommands(t *testing.T) {
	t.Run("run then history and show", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		env.mustRun(t, "auth", "exchange", "--slot", "to", "--code", "bob")
		ids := tu.TrackIDs("a", 120)
		fake.SetLibrary(tu.TokenFor("alice"), ids...)

		out := env.mustRun(t, "transfer", "run")
		for _, want := range []string{"Fetched 120 liked songs", "Transfer Complete!", "Liked songs saved: 120", "Batches: 3"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got:\n%s", want, out)
			}
		}
		if got := fake.Library(tu.TokenFor("bob")); len(got) != len(ids) {
			t.Errorf("expected %d saved songs, got %d", len(ids), len(got))
		}

		out = env.mustRun(t, "transfer", "history")
		if !strings.Contains(out, "Found 1 transfers") || !strings.Contains(out, "completed") {
			t.Errorf("unexpected history output:\n%s", out)
		}

		transfers, err := env.runner.journal.List(1)
		if err != nil || len(transfers) != 1 {
			t.Fatalf("expected one journaled transfer, got %v, %v", transfers, err)
		}

		out = env.mustRun(t, "transfer", "show", transfers[0].ID)
		if !strings.Contains(out, "[3/3] ✓ 20 songs") {
			t.Errorf("unexpected show output:\n%s", out)
		}
	})

	t.Run("partial transfer points at the journal", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		env.mustRun(t, "auth", "exchange", "--slot", "to", "--code", "bob")
		fake.SetLibrary(tu.TokenFor("alice"), tu.TrackIDs("a", 120)...)

		var puts atomic.Int32
		fake.Fail = func(r *http.Request) int {
			if r.Method == http.MethodPut && puts.Add(1) == 2 {
				return http.StatusBadGateway
			}
			return 0
		}

		err := env.run("transfer", "run")
		if !errors.Is(err, shared.ErrWrite) {
			t.Fatalf("expected ErrWrite, got %v", err)
		}

		transfers, lerr := env.runner.journal.List(1)
		if lerr != nil || len(transfers) != 1 {
			t.Fatalf("expected one journaled transfer, got %v, %v", transfers, lerr)
		}
		id := transfers[0].ID
		if !strings.Contains(err.Error(), id) {
			t.Errorf("expected error to name transfer %s, got %v", id, err)
		}
		if out := env.output.String(); !strings.Contains(out, "1 of 3 batches saved") || !strings.Contains(out, "transfer show "+id) {
			t.Errorf("expected a transfer show hint, got:\n%s", out)
		}
	})

	t.Run("later process reuses stored logins", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		config := newTestConfig(t, fake)

		first := newTestEnv(t, config, fake, RunnerOpts{})
		first.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		first.mustRun(t, "auth", "exchange", "--slot", "to", "--code", "bob")
		first.runner.Close()

		fake.SetLibrary(tu.TokenFor("alice"), "a1", "a2")
		second := newTestEnv(t, config, fake, RunnerOpts{})
		second.mustRun(t, "transfer", "run")

		if got := fake.Library(tu.TokenFor("bob")); len(got) != 2 {
			t.Errorf("expected 2 saved songs, got %v", got)
		}
	})

	t.Run("requires both logins", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")

		if err := env.run("transfer", "run"); !errors.Is(err, shared.ErrPrecondition) {
			t.Errorf("expected ErrPrecondition, got %v", err)
		}
		if fake.Count(http.MethodGet) != 0 || fake.Count(http.MethodPut) != 0 {
			t.Error("expected no library requests")
		}
	})

	t.Run("refuses the same account twice", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})
		env.mustRun(t, "auth", "exchange", "--slot", "from", "--code", "alice")
		env.mustRun(t, "auth", "exchange", "--slot", "to", "--code", "alice")
		fake.SetLibrary(tu.TokenFor("alice"), "a1")

		if err := env.run("transfer", "run"); !errors.Is(err, shared.ErrPrecondition) {
			t.Errorf("expected ErrPrecondition, got %v", err)
		}
		if fake.Count(http.MethodPut) != 0 {
			t.Error("expected no write requests")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		if out := env.mustRun(t, "transfer", "history"); !strings.Contains(out, "No transfers recorded") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("show requires id", func(t *testing.T) {
		fake := tu.NewFakeSpotify(t)
		env := newTestEnv(t, newTestConfig(t, fake), fake, RunnerOpts{})

		if err := env.run("transfer", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestRunnerSession(t *testing.T) {
	t.Run("restore failure is returned on every call", func(t *testing.T) {
		dir := t.TempDir()
		notDir := filepath.Join(dir, "storage")
		if err := os.WriteFile(notDir, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		config := shared.DefaultConfig()
		config.Storage.Dir = notDir
		config.Storage.Database = filepath.Join(dir, "likesync.db")
		env := newTestEnv(t, config, nil, RunnerOpts{})

		for i := range 2 {
			session, err := env.runner.Session()
			if !errors.Is(err, shared.ErrStorage) {
				t.Errorf("call %d: expected ErrStorage, got %v", i+1, err)
			}
			if session != nil {
				t.Errorf("call %d: expected no session", i+1)
			}
		}
	})
}
