package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/NassimMahmoudi/mcp-server/internal/domain"
)

const DefaultRepoServerURL = "https://qsc.quasiris.de/api/v1/search/quasiris/qsc-documentation-nam"

var (
	ErrInvalidTimeout = errors.New("REPO_REQUEST_TIMEOUT must be a positive number of seconds")
	ErrInvalidLimit   = errors.New("SEARCH_DEFAULT_LIMIT must be non-negative")
	ErrInvalidPath    = errors.New("MCP_PATH must start with /")
	ErrMissingAddr    = errors.New("MCP_ADDR is required")
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Repo   RepoConfig
	Server ServerConfig
	Search SearchConfig
	Log    LogConfig
}

type RepoConfig struct {
	// empty disables fetching entirely
	URL     string
	Timeout time.Duration
}

type ServerConfig struct {
	Name            string
	Version         string
	Addr            string
	Path            string
	ShutdownTimeout time.Duration
}

type SearchConfig struct {
	DefaultLimit int
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the environment. A .env file in the working directory is
// applied first if present; real env vars win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Repo: RepoConfig{
			URL:     strings.TrimSpace(getEnvOrDefault("REPO_SERVER_URL", DefaultRepoServerURL)),
			Timeout: getEnvSecondsOrDefault("REPO_REQUEST_TIMEOUT", 10*time.Second),
		},
		Server: ServerConfig{
			Name:            getEnvOrDefault("MCP_SERVER_NAME", "SearchServer"),
			Version:         getEnvOrDefault("MCP_SERVER_VERSION", "v1.0.0"),
			Addr:            getEnvOrDefault("MCP_ADDR", "0.0.0.0:8080"),
			Path:            getEnvOrDefault("MCP_PATH", "/mcp"),
			ShutdownTimeout: time.Duration(getEnvIntOrDefault("SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		},
		Search: SearchConfig{
			DefaultLimit: getEnvIntOrDefault("SEARCH_DEFAULT_LIMIT", domain.DefaultLimit),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Repo.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Search.DefaultLimit < 0 {
		return ErrInvalidLimit
	}
	if c.Server.Addr == "" {
		return ErrMissingAddr
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return ErrInvalidPath
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvSecondsOrDefault accepts fractional seconds, e.g. "2.5".
// Unparseable values become 0 so Validate rejects them.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
