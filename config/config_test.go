package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "database:\n  user: postgres\n"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, DefaultServiceName, cfg.HTTP.ServiceName)
	assert.Equal(t, int64(10), cfg.Notification.ThresholdMinutes)
	assert.Equal(t, DefaultETAEndpoint, cfg.ETA.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.ETA.Timeout())
	assert.Equal(t, time.Minute, cfg.ETA.CacheTTL())
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "postgres", cfg.Database.User)
}

func TestLoadConfig_FileValues(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
notification:
  threshold_minutes: 5
redis:
  addr: localhost:6379
kafka:
  brokers: [localhost:9092]
  bus_location_topic: positions
`))

	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Notification.ThresholdMinutes)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "positions", cfg.Kafka.BusLocationTopic)
	assert.Equal(t, "bus-reminder-group", cfg.Kafka.GroupID)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NOTIFICATION_THRESHOLD_MINUTES", "7")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DATABASE_PORT", "6432")

	cfg, err := LoadConfig(writeConfig(t, "notification:\n  threshold_minutes: 5\n"))

	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Notification.ThresholdMinutes)
	assert.Equal(t, "secret", cfg.Twilio.AuthToken)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 6432, cfg.Database.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "negative threshold", body: "notification:\n  threshold_minutes: -1\n"},
		{name: "bad endpoint", body: "eta:\n  endpoint: not a url\n"},
		{name: "empty database name", body: "database:\n  name: \"\"\n"},
		{name: "not yaml", body: "http: [unclosed"},
		{name: "unbounded eta timeout", body: "eta:\n  timeout_seconds: 0\n"},
		{name: "lock without expiry", body: "lock:\n  ttl_seconds: 0\n"},
		{name: "zero lock wait", body: "lock:\n  wait_timeout_seconds: 0\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestDatabaseConfig_URL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "bus", Password: "p@ss", Name: "bus_reminder", SSLMode: "disable"}

	assert.Equal(t, "pgx5://bus:p%40ss@db:5432/bus_reminder?sslmode=disable", d.URL("pgx5"))
	assert.Equal(t, "host=db port=5432 user=bus password=p@ss dbname=bus_reminder sslmode=disable", d.DSN())
}
