// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for game action logs.
var DefaultQueueName = "kutschfahrt_actions"

// snapshotKeyPrefix namespaces the per-game state snapshots.
const snapshotKeyPrefix = "kutschfahrt:game:"

// GameActionRecord holds the minimal info needed by the historian service.
// Actor is the seat identifier; it is empty for table-level records such as game end.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	Actor         string                 `json:"actor"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	if _, err := loadSnapshotCodec(); err != nil {
		return err
	}

	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// QueueName returns the historian queue name, honoring HISTORIAN_QUEUE_NAME.
func QueueName() string {
	return getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}

	queueName := QueueName()
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// snapshotCodec holds the shared zstd encoder and decoder for snapshots.
// EncodeAll and DecodeAll may be called on them concurrently.
type snapshotCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// loadSnapshotCodec builds the codec once and reports the same error to every caller.
var loadSnapshotCodec = sync.OnceValues(func() (*snapshotCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &snapshotCodec{enc: enc, dec: dec}, nil
})

func compressSnapshot(data []byte) ([]byte, error) {
	codec, err := loadSnapshotCodec()
	if err != nil {
		return nil, err
	}
	return codec.enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func decompressSnapshot(data []byte) ([]byte, error) {
	codec, err := loadSnapshotCodec()
	if err != nil {
		return nil, err
	}
	return codec.dec.DecodeAll(data, nil)
}

// StoreGameSnapshot saves the latest serialized state of a game.
// SNAPSHOT_TTL (a Go duration, default 24h) bounds how long an idle table survives.
func StoreGameSnapshot(ctx context.Context, gameID uuid.UUID, data []byte) error {
	ttl, err := time.ParseDuration(getEnv("SNAPSHOT_TTL", "24h"))
	if err != nil {
		ttl = 24 * time.Hour
	}
	packed, err := compressSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to compress snapshot for game %s: %w", gameID, err)
	}
	if err := Rdb.Set(ctx, snapshotKeyPrefix+gameID.String(), packed, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot for game %s: %w", gameID, err)
	}
	return nil
}

// LoadGameSnapshot returns the latest serialized state of a game.
func LoadGameSnapshot(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	raw, err := Rdb.Get(ctx, snapshotKeyPrefix+gameID.String()).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for game %s: %w", gameID, err)
	}
	data, err := decompressSnapshot(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt snapshot for game %s: %w", gameID, err)
	}
	return data, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
