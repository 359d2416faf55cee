package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "explore-events", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, HitTransportHTTP, cfg.Stats.HitTransport)
	assert.Equal(t, "stats.hits", cfg.Stats.HitTopic)
	assert.Zero(t, cfg.Stats.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.Idempotency.TTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("STATS_SERVER_URL", "http://stats:9090/")
	t.Setenv("STATS_HIT_TRANSPORT", "KAFKA")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://stats:9090", cfg.Stats.ServerURL)
	assert.Equal(t, HitTransportKafka, cfg.Stats.HitTransport)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "explore-events"},
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Host: "localhost", DBName: "events_db"},
			Stats:    StatsConfig{ServerURL: "http://localhost:9090", HitTransport: HitTransportHTTP},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing db", func(c *Config) { c.Database.DBName = "" }, true},
		{"missing stats url", func(c *Config) { c.Stats.ServerURL = "" }, true},
		{"unknown transport", func(c *Config) { c.Stats.HitTransport = "grpc" }, true},
		{"kafka without brokers", func(c *Config) { c.Stats.HitTransport = HitTransportKafka }, true},
		{"kafka with brokers", func(c *Config) {
			c.Stats.HitTransport = HitTransportKafka
			c.Kafka.Brokers = []string{"localhost:9092"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_URL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "events", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/events?sslmode=disable", d.URL())
}
