// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Auth     AuthConfig
	Admin    AdminConfig
	Sources  SourcesConfig
	Mirror   MirrorConfig
	Pipeline PipelineConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration. The catalog database, search
// index, and response cache all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens, hex encoded.
	// Loaded or generated at startup, never configured inline.
	AccessTokenKey      string
	AccessTokenDuration time.Duration
}

// AdminConfig holds the bootstrap administrator account.
// The password is injected from the environment, never stored in code.
type AdminConfig struct {
	Username string
	Password string
}

// SourcesConfig holds the external book-metadata API endpoints.
// Base URLs are overridable so tests can point adapters at local servers.
type SourcesConfig struct {
	GoogleBaseURL      string
	OpenLibraryBaseURL string
	OpenAlexBaseURL    string
}

// MirrorConfig holds the secondary hosted store configuration.
// When URL is empty the mirror is disabled and sync is skipped.
type MirrorConfig struct {
	URL    string
	APIKey string
}

// PipelineConfig holds search pipeline tuning.
type PipelineConfig struct {
	// DefaultLimit is the result count used when the caller provides none.
	DefaultLimit int
	// AdapterTimeout bounds each outbound source call so one slow API
	// cannot stall the whole aggregate.
	AdapterTimeout time.Duration
	// CacheTTL is how long aggregated external results are cached.
	CacheTTL time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	accessTokenDuration := flag.String("access-token-duration", "", "Admin access token lifetime (e.g., 12h)")
	mirrorURL := flag.String("mirror-url", "", "Secondary store base URL (empty disables mirroring)")
	adapterTimeout := flag.String("adapter-timeout", "", "Per-source outbound call timeout (default: 5s)")
	cacheTTL := flag.String("cache-ttl", "", "External result cache TTL (default: 15m)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "BiblioIntel Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Admin: AdminConfig{
			Username: getConfigValue("", "ADMIN_USERNAME", "admin"),
			Password: getConfigValue("", "ADMIN_PASSWORD", ""),
		},
		Sources: SourcesConfig{
			GoogleBaseURL:      getConfigValue("", "GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1"),
			OpenLibraryBaseURL: getConfigValue("", "OPENLIBRARY_URL", "https://openlibrary.org"),
			OpenAlexBaseURL:    getConfigValue("", "OPENALEX_URL", "https://api.openalex.org"),
		},
		Mirror: MirrorConfig{
			URL:    getConfigValue(*mirrorURL, "MIRROR_URL", ""),
			APIKey: getConfigValue("", "MIRROR_API_KEY", ""),
		},
		Pipeline: PipelineConfig{
			DefaultLimit: getIntConfigValue("", "PIPELINE_DEFAULT_LIMIT", 20),
		},
	}

	// Parse durations.
	var err error
	cfg.Auth.AccessTokenDuration, err = parseDurationValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "12h")
	if err != nil {
		return nil, err
	}
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.AdapterTimeout, err = parseDurationValue(*adapterTimeout, "ADAPTER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.CacheTTL, err = parseDurationValue(*cacheTTL, "CACHE_TTL", "15m")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Pipeline.DefaultLimit <= 0 {
		return fmt.Errorf("invalid pipeline default limit: %d", c.Pipeline.DefaultLimit)
	}

	if c.Mirror.URL != "" && c.Mirror.APIKey == "" {
		return errors.New("MIRROR_API_KEY is required when MIRROR_URL is set")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute,
// defaulting to ~/BiblioIntel/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "BiblioIntel", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
