package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence"
)

var configKeys = []string{
	"APP_NAME", "APP_ENV",
	"GRADEBOOK_LABEL_POLICY", "GRADEBOOK_STORE_DRIVER", "GRADEBOOK_DATA_FILE", "GRADEBOOK_STORE_TIMEOUT",
	"DATABASE_URL", "REDIS_URL", "REDIS_KEY_PREFIX", "MONGODB_URL", "MONGODB_DATABASE",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every key the config reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gradebook", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, student.PolicyTiered, cfg.Policy())
	assert.Equal(t, "json", cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.DataFile)
	assert.Equal(t, "students.json", cfg.DataFile())
	assert.Equal(t, 30*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("GRADEBOOK_LABEL_POLICY", "pass_fail")
	t.Setenv("GRADEBOOK_STORE_DRIVER", "redis")
	t.Setenv("GRADEBOOK_STORE_TIMEOUT", "5s")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("REDIS_KEY_PREFIX", "class-a")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, student.PolicyPassFail, cfg.Policy())

	opts := cfg.StoreOptions()
	assert.Equal(t, persistence.DriverRedis, opts.Driver)
	assert.Equal(t, "redis://cache:6379/1", opts.Redis.URL)
	assert.Equal(t, "class-a", opts.Redis.KeyPrefix)
	assert.Equal(t, 5*time.Second, opts.Timeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "GRADEBOOK_STORE_DRIVER=sqlite\nGRADEBOOK_DATA_FILE=roster.db\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// Values already in the environment take precedence over the file.
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "roster.db", cfg.Storage.DataFile)
	assert.Equal(t, "error", cfg.Observability.LogLevel)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Storage.Driver)
}

func TestLoad_ParseError(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRADEBOOK_STORE_TIMEOUT", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		App:           AppConfig{Name: "gradebook", Environment: "staging"},
		Grading:       GradingConfig{LabelPolicy: "curve"},
		Storage:       StorageConfig{Driver: "csv", DataFile: "x"},
		Observability: ObservabilityConfig{LogLevel: "loud", LogFormat: "yaml"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "APP_ENV")
	assert.Contains(t, msg, "GRADEBOOK_LABEL_POLICY")
	assert.Contains(t, msg, "GRADEBOOK_STORE_DRIVER")
	assert.Contains(t, msg, "LOG_LEVEL")
	assert.Contains(t, msg, "LOG_FORMAT")
}

func TestStoreOptions_DataFilePerDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"json", "students.json"},
		{"lines", "students.txt"},
		{"sqlite", "students.db"},
		{"bbolt", "students.bolt"},
		{"postgres", ""},
		{"redis", ""},
		{"mongodb", ""},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GRADEBOOK_STORE_DRIVER", tt.driver)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.StoreOptions().DataFile)
		})
	}
}

func TestStoreOptions_ExplicitDataFileWins(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: "lines", DataFile: " roster.txt "}}
	assert.Equal(t, "roster.txt", cfg.StoreOptions().DataFile)

	cfg.Storage.DataFile = "  "
	assert.Equal(t, "students.txt", cfg.StoreOptions().DataFile)
}
