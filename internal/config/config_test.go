package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "LOG_LEVEL", "STORE_BACKEND", "STORE_BUDGET_BYTES", "DATABASE_URL", "STORE_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "opsdash_datasets", cfg.Store.Key)
	assert.Equal(t, 4<<20, cfg.Store.BudgetBytes)
	assert.Equal(t, 100, cfg.Store.PersistMaxRows)
	assert.Equal(t, 3, cfg.Store.PersistMaxSamples)
	assert.Equal(t, 50, cfg.Store.AddMaxRows)
	assert.Equal(t, 2, cfg.Store.AddMaxSamples)
	assert.Equal(t, 2, cfg.Store.MinimalInsights)
	assert.Equal(t, int64(50<<20), cfg.Import.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "FILE")
	t.Setenv("STORE_DIR", "/var/lib/opsdash")
	t.Setenv("STORE_BUDGET_BYTES", "1024")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("PERSIST_MAX_ROWS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/opsdash", cfg.Store.Dir)
	assert.Equal(t, 1024, cfg.Store.BudgetBytes)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100, cfg.Store.PersistMaxRows)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{"unknown backend", map[string]string{"STORE_BACKEND": "redis"}},
		{"zero budget", map[string]string{"STORE_BUDGET_BYTES": "-5"}},
		{"negative row cap", map[string]string{"ADD_MAX_ROWS": "-1"}},
		{"negative persist samples", map[string]string{"PERSIST_MAX_SAMPLES": "-1"}},
		{"negative add samples", map[string]string{"ADD_MAX_SAMPLES": "-2"}},
		{"negative minimal insights", map[string]string{"MINIMAL_INSIGHTS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
