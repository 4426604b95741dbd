package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Providers ProvidersConfig `toml:"providers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	LogLevel          string   `toml:"log_level"`
	JWTSecret         string   `toml:"jwt_secret"`
	FrontendURL       string   `toml:"frontend_url"`
	AllowedOrigins    []string `toml:"allowed_origins"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Burst             int      `toml:"burst"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ProvidersConfig contains upstream provider credentials and the shared per-call timeout.
type ProvidersConfig struct {
	TimeoutSeconds int            `toml:"timeout_seconds"`
	Spotify        OAuthConfig    `toml:"spotify"`
	Google         OAuthConfig    `toml:"google"`
	JioSaavn       JioSaavnConfig `toml:"jiosaavn"`
}

// Timeout returns the per-call upstream timeout, defaulting to 5 seconds.
func (p ProvidersConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// OAuthConfig contains OAuth2 client credentials for one provider.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether both client id and secret are set.
func (o OAuthConfig) Configured() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// JioSaavnConfig contains the base URL of the public JioSaavn API.
type JioSaavnConfig struct {
	BaseURL string `toml:"base_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// envOverrides maps environment variable names onto config fields.
func envOverrides(c *Config) map[string]*string {
	return map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Providers.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Providers.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":  &c.Providers.Spotify.RedirectURI,
		"GOOGLE_CLIENT_ID":      &c.Providers.Google.ClientID,
		"GOOGLE_CLIENT_SECRET":  &c.Providers.Google.ClientSecret,
		"GOOGLE_REDIRECT_URI":   &c.Providers.Google.RedirectURI,
		"JWT_SECRET_KEY":        &c.Server.JWTSecret,
		"DATABASE_PATH":         &c.Database.Path,
		"FRONTEND_URL":          &c.Server.FrontendURL,
		"LOG_LEVEL":             &c.Server.LogLevel,
	}
}

// ApplyEnv loads the given dotenv files (missing files are ignored) and overrides config values with any non-empty environment variables.
//
// Variables already present in the process environment take precedence over dotenv files.
func ApplyEnv(c *Config, files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}

	for key, field := range envOverrides(c) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
	return nil
}
