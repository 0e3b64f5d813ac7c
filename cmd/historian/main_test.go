package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/cache"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistorianServiceReadsEnv(t *testing.T) {
	t.Setenv("HISTORIAN_BATCH_SIZE", "7")
	t.Setenv("HISTORIAN_FLUSH_MS", "250")
	t.Setenv("GAME_INACTIVITY_TIMEOUT_SEC", "oops")
	t.Setenv("HISTORIAN_QUEUE_NAME", "test_actions")

	logger, _ := test.NewNullLogger()
	hs := NewHistorianService(logger)
	defer hs.redisClient.Close()

	assert.Equal(t, 7, hs.batchSize)
	assert.Equal(t, 250*time.Millisecond, hs.flushDelay)
	assert.Equal(t, 600*time.Second, hs.inactivity, "bad values fall back to the default")
	assert.Equal(t, "test_actions", hs.queueName)
}

func TestAppendToBatch(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hs := NewHistorianService(logger)
	defer hs.redisClient.Close()
	hs.batchSize = 10

	gameID := uuid.New()
	raw, err := json.Marshal(cache.GameActionRecord{
		GameID:        gameID,
		ActionIndex:   3,
		Actor:         "marie",
		ActionType:    "swap_item",
		ActionPayload: map[string]interface{}{"partner": "gundla"},
		Timestamp:     time.Now().UnixMilli(),
	})
	require.NoError(t, err)

	var record cache.GameActionRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	hs.appendToBatch(context.Background(), record)

	require.Len(t, hs.batch, 1)
	row := hs.batch[0]
	assert.Equal(t, gameID, row.GameID)
	assert.Equal(t, 3, row.ActionIndex)
	assert.Equal(t, "marie", row.Actor)
	assert.Equal(t, "gundla", row.Payload["partner"])
}

// TODO: cover readRedisLoop and the inactivity sweep against a live Redis + Postgres.
