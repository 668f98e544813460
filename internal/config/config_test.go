package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("POSTGRES_USER", "commandes")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "commandes")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("STORE_POLL_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "commandes", cfg.DBUser)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 5433, cfg.DBPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.StorePollInterval)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.Equal(t, "order_events", cfg.KafkaTopic)

	assert.Equal(t,
		"host=db.internal port=5433 user=commandes password=secret dbname=commandes sslmode=disable",
		cfg.DSN())
}

func TestLoadRequiresDatabaseIdentity(t *testing.T) {
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_DB", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))

	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("SOME_DURATION", time.Second))

	assert.Equal(t, "fallback", getEnv("UNSET_KEY_FOR_TEST", "fallback"))
}
