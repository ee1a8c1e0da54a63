package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.NotNil(t, config)

	// Verify default values are set
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, 10, config.Redis.PoolSize)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestLoadConfigTenancyDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "nodeguard.io", config.Tenancy.BaseDomain)
	assert.True(t, config.Tenancy.CacheLookup)
}

func TestLoadConfigEventSourceDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	// Event sources are opt-in; the API serves without them.
	assert.False(t, config.Kafka.Enabled)
	assert.False(t, config.Poller.Enabled)

	assert.Equal(t, "security.events", config.Kafka.SecurityTopic)
	assert.Equal(t, "workflow.test", config.Kafka.WorkflowTopic)
	assert.Equal(t, "nodeguard", config.Kafka.GroupPrefix)
	assert.Equal(t, "latest", config.Kafka.AutoOffsetReset)
	assert.Equal(t, 30, config.Poller.IntervalSeconds)
	assert.Equal(t, "http://localhost:3011/api/v1", config.Executor.BaseURL)
}
