package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, AdapterNeo4J, cfg.Adapter)
		assert.Equal(t, "bolt://127.0.0.1:7687", cfg.BoltURI)
		assert.Equal(t, "neo4j", cfg.Username)
		assert.Equal(t, "neo4jneo4j", cfg.Password)
		assert.Equal(t, "neo4j", cfg.DatabaseName)
		assert.True(t, cfg.UseDocker)
		assert.Equal(t, 30, cfg.ConnectRetries)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PROVINSPECTOR_ADAPTER", "memgraph")
		t.Setenv("PROVINSPECTOR_BOLT_URI", "bolt://graph:7687")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, AdapterMemgraph, cfg.Adapter)
		assert.Equal(t, "bolt://graph:7687", cfg.BoltURI)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "provinspector.yaml")
		content := "adapter: memgraph\nbolt:\n  uri: bolt://example:7687\nlog:\n  level: debug\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, AdapterMemgraph, cfg.Adapter)
		assert.Equal(t, "bolt://example:7687", cfg.BoltURI)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("unknown adapter is rejected", func(t *testing.T) {
		t.Setenv("PROVINSPECTOR_ADAPTER", "dgraph")

		_, err := Load("")
		assert.Error(t, err)
	})
}
