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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	path := writeConfig(t, `
databases:
  mongodb:
    address: mongodb://db:27017
knowledge:
  factCacheCapacity: 16
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.Databases.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Databases.MongoDB.Address)
	assert.Equal(t, DefaultDatabase, cfg.Databases.MongoDB.Database)
	assert.Equal(t, DefaultKnowledgeCollection, cfg.Databases.MongoDB.KnowledgeCollection)
	assert.Equal(t, DefaultEntityCollection, cfg.Databases.MongoDB.EntityCollection)
	require.NotNil(t, cfg.Knowledge.MatchThreshold)
	assert.Equal(t, float64(DefaultMatchThreshold), cfg.Knowledge.Threshold())
	assert.Equal(t, DefaultFallbackMessage, cfg.Knowledge.FallbackMessage)
	assert.Equal(t, 16, cfg.Knowledge.FactCacheCapacity)
	assert.Equal(t, DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_ExplicitZeroThresholdIsKept(t *testing.T) {
	path := writeConfig(t, `
databases:
  driver: memory
knowledge:
  matchThreshold: 0
  factCacheTTL: 30s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, float64(0), cfg.Knowledge.Threshold())
	assert.Equal(t, "30s", cfg.Knowledge.FactCacheTTL)
}

func TestKnowledgeConfig_Threshold(t *testing.T) {
	assert.Equal(t, float64(DefaultMatchThreshold), KnowledgeConfig{}.Threshold())
	custom := 85.5
	assert.Equal(t, 85.5, KnowledgeConfig{MatchThreshold: &custom}.Threshold())
}

func TestLoadConfig_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: info
databases:
  mongodb:
    address: mongodb://from-yaml:27017
`)
	t.Setenv("MONGO_URI", "mongodb://from-env:27017")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://from-env:27017", cfg.Databases.MongoDB.Address)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Databases.Kafka.Brokers)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Databases.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "mongo without address", yaml: "databases:\n  driver: mongodb\n"},
		{name: "unknown driver", yaml: "databases:\n  driver: cassandra\n"},
		{name: "threshold out of range", yaml: "databases:\n  driver: memory\nknowledge:\n  matchThreshold: 100\n"},
		{name: "negative threshold", yaml: "databases:\n  driver: memory\nknowledge:\n  matchThreshold: -1\n"},
		{name: "bad fact cache ttl", yaml: "databases:\n  driver: memory\nknowledge:\n  factCacheTTL: soon\n"},
		{name: "bad duration", yaml: "databases:\n  driver: memory\nserver:\n  requestTimeout: soon\n"},
		{name: "redis without address", yaml: "databases:\n  driver: memory\n  redis:\n    enabled: true\n"},
		{name: "malformed yaml", yaml: "databases: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = ParseDuration("1m")
	require.NoError(t, err)
	assert.Equal(t, "1m0s", d.String())
}
