package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"APP_CONFIG", "PORT", "LOG_LEVEL", "STORAGE_DRIVER", "STORAGE_PATH", "DATABASE_URL",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PREFIX", "S3_PATH_STYLE", "DATA_KEY", "VISITED_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, "./data/board.json", cfg.StoragePath)
	assert.Equal(t, "myTaskApp", cfg.DataKey)
	assert.Equal(t, "hasVisited", cfg.VisitedKey)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "board.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9000"
storage_driver = "sqlite"
data_key = "projects"
`), 0o600))
	t.Setenv("APP_CONFIG", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env wins over file")
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "./data/board.db", cfg.StoragePath)
	assert.Equal(t, "projects", cfg.DataKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "redis"}},
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3"}},
		{"same keys", map[string]string{"DATA_KEY": "k", "VISITED_KEY": "k"}},
		{"bad path style", map[string]string{"S3_PATH_STYLE": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	_, err := Load()

	assert.Error(t, err)
}
