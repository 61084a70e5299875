package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ID", "storefront-test")
}

func TestLoadConfig_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "storefront-test", cfg.App.ID)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Gemini.Enabled)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, cfg.Gemini, cfg.Generation())
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "simulated", cfg.Importer.Source)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("GEMINI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "key-1234567890")
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "file::memory:?cache=shared")
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("APP_SERVER_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Gemini.Enabled)
	assert.Equal(t, "key-1234567890", cfg.Gemini.APIKey)
	assert.Equal(t, "sql", cfg.Store.Backend)
	assert.Equal(t, "sqlite", cfg.Store.SQL.Driver)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Store.SQL.DSN)
	assert.Equal(t, "s3cret", cfg.Admin.Token)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestLoadConfig_OpenRouterProvider(t *testing.T) {
	validEnv(t)
	t.Setenv("AI_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_ENABLED", "true")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-123456789")

	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	gen := cfg.Generation()
	assert.True(t, gen.Enabled)
	assert.Equal(t, "sk-or-123456789", gen.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", gen.BaseURL)
	assert.False(t, cfg.Gemini.Enabled)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "APP_ID=from-dotenv\nIMPORT_SOURCE=shopify\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("APP_ID")
		os.Unsetenv("IMPORT_SOURCE")
	})

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.App.ID)
	assert.Equal(t, "shopify", cfg.Importer.Source)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing app id",
			env:     map[string]string{"APP_ID": ""},
			wantErr: "app id is required",
		},
		{
			name:    "gemini enabled without key",
			env:     map[string]string{"APP_ID": "x", "GEMINI_ENABLED": "true", "GEMINI_API_KEY": ""},
			wantErr: "gemini api key is required",
		},
		{
			name:    "openrouter enabled without key",
			env:     map[string]string{"APP_ID": "x", "AI_PROVIDER": "openrouter", "OPENROUTER_ENABLED": "true"},
			wantErr: "openrouter api key is required",
		},
		{
			name:    "unknown ai provider",
			env:     map[string]string{"APP_ID": "x", "AI_PROVIDER": "bard"},
			wantErr: "unknown ai provider",
		},
		{
			name:    "unknown store backend",
			env:     map[string]string{"APP_ID": "x", "STORE_BACKEND": "firestore"},
			wantErr: "unknown store backend",
		},
		{
			name:    "unknown sql driver",
			env:     map[string]string{"APP_ID": "x", "STORE_BACKEND": "sql", "STORE_SQL_DRIVER": "mysql"},
			wantErr: "unknown sql driver",
		},
		{
			name:    "unknown cache backend",
			env:     map[string]string{"APP_ID": "x", "CACHE_BACKEND": "memcached"},
			wantErr: "unknown cache backend",
		},
		{
			name:    "unknown import source",
			env:     map[string]string{"APP_ID": "x", "IMPORT_SOURCE": "etsy"},
			wantErr: "unknown import source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfigFrom(t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "abcd...wxyz", MaskAPIKey("abcdefghijklmnopqrstuvwxyz"))
}
