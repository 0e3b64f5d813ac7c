// cmd/historian is an asynchronous service that pops game actions from the
// Redis queue and persists them to PostgreSQL in batches.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/cache"
	"github.com/jason-s-yu/kutschfahrt/internal/database"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// HistorianService encapsulates the Redis + DB logic for capturing game actions
// and marking games abandoned when a certain inactivity threshold is reached.
type HistorianService struct {
	redisClient  *redis.Client
	queueName    string
	batchSize    int
	flushDelay   time.Duration
	inactivity   time.Duration
	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []database.ActionRow

	logger *logrus.Logger
}

// NewHistorianService constructs a HistorianService instance from environment variables or defaults.
func NewHistorianService(logger *logrus.Logger) *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	inactivitySec := getEnvInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)

	rdb := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		DB:   getEnvInt("REDIS_DB", 0),
	})

	return &HistorianService{
		redisClient: rdb,
		queueName:   cache.QueueName(),
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		inactivity:  time.Duration(inactivitySec) * time.Second,
		batch:       make([]database.ActionRow, 0, batchSize),
		logger:      logger,
	}
}

// Run starts the queue reader, the periodic flusher and the inactivity sweep,
// and blocks until ctx is cancelled. The pending batch is flushed on the way out.
func (hs *HistorianService) Run(ctx context.Context) error {
	if err := database.ConnectDB(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); hs.readRedisLoop(ctx) }()
	go func() { defer wg.Done(); hs.flushLoop(ctx) }()
	go func() { defer wg.Done(); hs.inactivityLoop(ctx) }()

	hs.logger.Info("kutschfahrt-historian service started")
	<-ctx.Done()
	wg.Wait()
	hs.flushBatchToDB(context.Background())
	hs.logger.Info("kutschfahrt-historian shut down")
	return nil
}

// readRedisLoop continuously uses BLPop to retrieve records from the queue.
func (hs *HistorianService) readRedisLoop(ctx context.Context) {
	for ctx.Err() == nil {
		res, err := hs.redisClient.BLPop(ctx, 3*time.Second, hs.queueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				hs.logger.Errorf("BLPop: %v", err)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var record cache.GameActionRecord
		if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
			hs.logger.Warnf("invalid action record: %v", err)
			continue
		}
		hs.lastActivity.Store(record.GameID, time.Now())
		if record.ActionType == "game_end" {
			hs.lastActivity.Delete(record.GameID)
		}
		hs.appendToBatch(ctx, record)
	}
}

func (hs *HistorianService) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.flushBatchToDB(ctx)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (hs *HistorianService) appendToBatch(ctx context.Context, record cache.GameActionRecord) {
	hs.batchMu.Lock()
	hs.batch = append(hs.batch, database.ActionRow{
		GameID:      record.GameID,
		ActionIndex: record.ActionIndex,
		Actor:       record.Actor,
		ActionType:  record.ActionType,
		Payload:     record.ActionPayload,
	})
	full := len(hs.batch) >= hs.batchSize
	hs.batchMu.Unlock()

	if full {
		hs.flushBatchToDB(ctx)
	}
}

// flushBatchToDB writes the current batch in a single transaction.
func (hs *HistorianService) flushBatchToDB(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	batchCopy := make([]database.ActionRow, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]
	hs.batchMu.Unlock()

	if err := database.InsertGameActions(ctx, batchCopy); err != nil {
		hs.logger.Errorf("flushBatchToDB: %v", err)
		return
	}
	hs.logger.Debugf("Flushed %d actions to DB.", len(batchCopy))
}

// inactivityLoop periodically marks games abandoned once they have been idle
// beyond the configured threshold.
func (hs *HistorianService) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			hs.lastActivity.Range(func(key, val interface{}) bool {
				gameID, ok1 := key.(uuid.UUID)
				last, ok2 := val.(time.Time)
				if ok1 && ok2 && now.Sub(last) > hs.inactivity {
					if err := database.MarkGameAbandoned(ctx, gameID); err != nil {
						hs.logger.Warnf("failed to mark game %v abandoned: %v", gameID, err)
					} else {
						hs.logger.Infof("Marked game %v as 'abandoned' due to inactivity.", gameID)
					}
					hs.lastActivity.Delete(gameID)
				}
				return true
			})
		}
	}
}

func main() {
	logger := logrus.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := NewHistorianService(logger)
	if err := hs.Run(ctx); err != nil {
		logger.Fatalf("historian: %v", err)
	}
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
