package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// AppName names the per-user state directory (~/.likesync).
const AppName = "likesync"

// Environment variables that override the [SpotifyConfig] fields.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	HTTP        HTTPConfig        `toml:"http"`
	Storage     StorageConfig     `toml:"storage"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// APIConfig holds the upstream endpoints. Tests point these at an [httptest.Server].
type APIConfig struct {
	BaseURL  string `toml:"base_url"`
	AuthURL  string `toml:"auth_url"`
	TokenURL string `toml:"token_url"`
}

// HTTPConfig controls timeouts, rate limiting and retries for upstream calls.
type HTTPConfig struct {
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
	MaxAttempts    int     `toml:"max_attempts"`
	BackoffMS      int     `toml:"backoff_ms"`
}

// StorageConfig locates the token files and the transfer journal.
type StorageConfig struct {
	Dir      string `toml:"dir"`
	Database string `toml:"database"`
}

// ServerConfig contains settings for the local OAuth callback listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig builds the effective configuration: the file at path when it exists (defaults otherwise),
// then variables from the env files, then the process environment.
//
// Missing env files are ignored. A config file that exists but cannot be parsed is an error.
func ResolveConfig(path string, envFiles ...string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// LoadEnvFiles loads each env file into the process environment without overriding variables that are already set.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: load env file %s: %v", ErrConfig, p, err)
		}
	}
	return nil
}

// ApplyEnv overrides the Spotify credentials with any non-empty environment values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, field := range map[string]*string{
		EnvClientID:     &c.Credentials.Spotify.ClientID,
		EnvClientSecret: &c.Credentials.Spotify.ClientSecret,
		EnvRedirectURI:  &c.Credentials.Spotify.RedirectURI,
	} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

// Missing lists the required Spotify settings that are empty.
func (s SpotifyConfig) Missing(secret bool) []string {
	var missing []string
	if s.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if secret && s.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if s.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	return missing
}

// Validate returns [ErrConfig] naming every required credential that is absent.
func (c *Config) Validate() error {
	if missing := c.Credentials.Spotify.Missing(true); len(missing) > 0 {
		return fmt.Errorf("%w: missing spotify %s (set in config.toml or %s/%s/%s)",
			ErrConfig, strings.Join(missing, ", "), EnvClientID, EnvClientSecret, EnvRedirectURI)
	}
	return nil
}

// Timeout is the per-request HTTP timeout, 30 seconds unless configured.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// Backoff is the base retry delay.
func (h HTTPConfig) Backoff() time.Duration {
	if h.BackoffMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(h.BackoffMS) * time.Millisecond
}

// StorageDir returns the token directory, defaulting to ~/.likesync.
func (c *Config) StorageDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "." + AppName
	}
	return filepath.Join(home, "."+AppName)
}

// DatabasePath returns the journal database path, defaulting to <storage dir>/likesync.db.
func (c *Config) DatabasePath() string {
	if c.Storage.Database != "" {
		return c.Storage.Database
	}
	return filepath.Join(c.StorageDir(), AppName+".db")
}

// DefaultCallbackPath is served when the redirect URI carries no path.
const DefaultCallbackPath = "/callback"

// ServerAddr is the [server] host:port, used when the redirect URI names no host or port.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CallbackAddr derives the listen address and route of the OAuth callback server from the redirect URI,
// so Spotify redirects to where the listener is.
//
// Only plain http redirect URIs can be served locally; anything else is [ErrConfig].
func (c *Config) CallbackAddr() (addr, path string, err error) {
	raw := c.Credentials.Spotify.RedirectURI
	if raw == "" {
		return c.ServerAddr(), DefaultCallbackPath, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid redirect_uri %q: %v", ErrConfig, raw, err)
	}
	if u.Scheme != "http" {
		return "", "", fmt.Errorf("%w: redirect_uri %q must use http to be served by the local callback server", ErrConfig, raw)
	}

	host, port := u.Hostname(), u.Port()
	if host == "" {
		host = c.Server.Host
	}
	if port == "" {
		port = strconv.Itoa(c.Server.Port)
	}

	path = u.Path
	if path == "" {
		path = DefaultCallbackPath
	}
	return net.JoinHostPort(host, port), path, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
