// ABOUTME: Configuration loader for the iris client
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/markalston/iris/internal/store"
)

// Provider names accepted by IRIS_PROVIDER
const (
	ProviderMock     = "mock"
	ProviderSupabase = "supabase"
)

// DefaultEnvFile is loaded from the working directory when present
const DefaultEnvFile = ".env"

type Config struct {
	// Remote provider
	Provider        string // mock or supabase (default: mock)
	SupabaseURL     string
	SupabaseAnonKey string
	RequestTimeout  time.Duration // per remote call (default 30s)
	RetryMax        int           // retries on transport errors and 5xx (default 3)
	RateLimit       float64       // requests per second, 0 = unlimited (default 10)
	CacheTTL        time.Duration // doctor/profile cache (default 300s)
	ResetRedirect   string        // deep link in password reset e-mails

	// Local state
	ConfigDir string // session store and log file (default: XDG config dir)
	LiveGate  bool   // re-gate navigation after login/logout (default: false)
}

// Load reads and validates configuration. envFiles are loaded first without
// overriding variables already set; with no arguments DefaultEnvFile is tried.
func Load(envFiles ...string) (*Config, error) {
	cfg, err := Read(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply overrides first
func Read(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Provider:        strings.ToLower(getEnv("IRIS_PROVIDER", ProviderMock)),
		SupabaseURL:     ensureScheme(strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		RequestTimeout:  time.Duration(getEnvInt("IRIS_REQUEST_TIMEOUT", 30)) * time.Second,
		RetryMax:        getEnvInt("IRIS_RETRY_MAX", 3),
		RateLimit:       getEnvFloat("IRIS_RATE_LIMIT", 10),
		CacheTTL:        time.Duration(getEnvInt("IRIS_CACHE_TTL", 300)) * time.Second,
		ResetRedirect:   getEnv("IRIS_RESET_REDIRECT", "com.example.irisapp://reset-password"),

		ConfigDir: getEnv("IRIS_CONFIG_DIR", store.DefaultDir()),
		LiveGate:  getEnvBool("IRIS_LIVE_GATE", false),
	}
	return cfg, nil
}

// Validate checks field combinations. It is re-run after flag overrides.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
	case ProviderSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required when IRIS_PROVIDER=supabase")
		}
		if c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY is required when IRIS_PROVIDER=supabase")
		}
	default:
		return fmt.Errorf("IRIS_PROVIDER must be %q or %q, got %q", ProviderMock, ProviderSupabase, c.Provider)
	}

	if c.ConfigDir == "" {
		return fmt.Errorf("cannot determine config directory; set IRIS_CONFIG_DIR")
	}
	if c.RequestTimeout < time.Second || c.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("IRIS_REQUEST_TIMEOUT must be between 1 and 300 seconds, got %s", c.RequestTimeout)
	}
	if c.RetryMax < 0 || c.RetryMax > 10 {
		return fmt.Errorf("IRIS_RETRY_MAX must be between 0 and 10, got %d", c.RetryMax)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("IRIS_RATE_LIMIT must not be negative, got %g", c.RateLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("IRIS_CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
