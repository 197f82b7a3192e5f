package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
service_name = "inventory-service"
version = "1.0.0"

[database]
driver = "sqlite"

[http]
port = 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "inventory-service", cfg.ServiceName)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	// 未显式配置的字段取默认值
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing service name", func(t *testing.T) {
		path := writeConfig(t, `
[database]
driver = "sqlite"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("mysql requires dsn", func(t *testing.T) {
		path := writeConfig(t, `
service_name = "inventory-service"

[database]
driver = "mysql"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("pagination bounds", func(t *testing.T) {
		path := writeConfig(t, `
service_name = "inventory-service"

[database]
driver = "sqlite"

[pagination]
default_page_size = 50
max_page_size = 20
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
