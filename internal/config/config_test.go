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
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads minimal config", func(t *testing.T) {
		path := writeConfig(t, `{
			"base_dir": "/tmp/crystal",
			"customers": ["Acme Ltd", "Globex"]
		}`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "/tmp/crystal", cfg.Storage.BaseDir)
		assert.Equal(t, []string{"Acme Ltd", "Globex"}, cfg.Customers)
		// Defaults
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "json", cfg.Logger.Format)
	})

	t.Run("server section overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `{
			"base_dir": "/tmp/crystal",
			"customers": ["Acme Ltd"],
			"server": {"host": "127.0.0.1", "port": 9090}
		}`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("missing base_dir rejected", func(t *testing.T) {
		path := writeConfig(t, `{"customers": ["Acme Ltd"]}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_dir is required")
	})

	t.Run("empty customer list rejected", func(t *testing.T) {
		path := writeConfig(t, `{"base_dir": "/tmp/crystal", "customers": []}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one customer")
	})

	t.Run("blank customer name rejected", func(t *testing.T) {
		path := writeConfig(t, `{"base_dir": "/tmp/crystal", "customers": ["Acme Ltd", ""]}`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
