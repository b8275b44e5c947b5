package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:    AppConfig{Environment: "development"},
			Logger: LoggerConfig{Level: "info"},
			Data:   DataConfig{BasePath: "/tmp/bibliointel"},
			Pipeline: PipelineConfig{
				DefaultLimit:   20,
				AdapterTimeout: 5 * time.Second,
				CacheTTL:       15 * time.Minute,
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("invalid environment", func(t *testing.T) {
		cfg := base()
		cfg.App.Environment = "testing"
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := base()
		cfg.Logger.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty data path", func(t *testing.T) {
		cfg := base()
		cfg.Data.BasePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("mirror url without api key", func(t *testing.T) {
		cfg := base()
		cfg.Mirror.URL = "https://example.supabase.co"
		assert.Error(t, cfg.Validate())

		cfg.Mirror.APIKey = "key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive default limit", func(t *testing.T) {
		cfg := base()
		cfg.Pipeline.DefaultLimit = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestExpandPath(t *testing.T) {
	t.Run("empty uses default", func(t *testing.T) {
		got, err := expandPath("", "/default/path")
		require.NoError(t, err)
		assert.Equal(t, "/default/path", got)
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := expandPath("~/catalog", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "catalog"), got)
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		got, err := expandPath("data", "")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("BIBLIOINTEL_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "BIBLIOINTEL_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "BIBLIOINTEL_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "BIBLIOINTEL_UNSET_KEY", "default"))
}

func TestParseDurationValue(t *testing.T) {
	d, err := parseDurationValue("", "BIBLIOINTEL_UNSET_DURATION", "5s")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	t.Setenv("BIBLIOINTEL_BAD_DURATION", "not-a-duration")
	_, err = parseDurationValue("", "BIBLIOINTEL_BAD_DURATION", "5s")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nBIBLIOINTEL_ENVFILE_KEY=hello\nQUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("BIBLIOINTEL_ENVFILE_KEY", "")
	os.Unsetenv("BIBLIOINTEL_ENVFILE_KEY")
	t.Cleanup(func() {
		os.Unsetenv("BIBLIOINTEL_ENVFILE_KEY")
		os.Unsetenv("QUOTED")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("BIBLIOINTEL_ENVFILE_KEY"))
	assert.Equal(t, "world", os.Getenv("QUOTED"))
}
