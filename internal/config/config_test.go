package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiration)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Notification.FlushInterval)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres needs password", map[string]string{"JWT_SECRET_KEY": "secret"}, "DB_PASSWORD"},
		{"jwt secret", map[string]string{"STORAGE_DRIVER": "memory"}, "JWT_SECRET_KEY"},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite", "JWT_SECRET_KEY": "secret"}, "STORAGE_DRIVER"},
		{"bad port", map[string]string{"APP_PORT": "http", "JWT_SECRET_KEY": "secret"}, "APP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"STORAGE_DRIVER", "JWT_SECRET_KEY", "DB_PASSWORD", "APP_PORT"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
