// internal/handlers/game_server.go
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/auth"
	"github.com/jason-s-yu/kutschfahrt/internal/game"
	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/sirupsen/logrus"
)

// GameServer is a high-level struct that holds a reference to a GameStore
// and creates new tables from seeds.
type GameServer struct {
	GameStore *game.GameStore
	Logger    *logrus.Logger

	// StoreSnapshotFn, if set, replaces the Redis snapshot writer of new tables.
	StoreSnapshotFn func(ctx context.Context, id uuid.UUID, data []byte) error
}

func NewGameServer(logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GameServer{
		GameStore: game.NewGameStore(),
		Logger:    logger,
	}
}

// CreatedGame is returned to whoever seeds a table: the game ID plus one token per seat.
type CreatedGame struct {
	GameID uuid.UUID         `json:"game_id"`
	Tokens map[string]string `json:"tokens"`
}

// CreateGame validates the seed, registers the table and issues seat tokens.
func (gs *GameServer) CreateGame(seed game.Seed) (*game.KutschfahrtGame, CreatedGame, error) {
	g, err := game.NewKutschfahrtGame(seed, gs.Logger)
	if err != nil {
		return nil, CreatedGame{}, err
	}

	out := CreatedGame{GameID: g.ID, Tokens: make(map[string]string, len(seed.Seats))}
	for _, player := range g.State.Seats {
		token, err := auth.CreateJWT(g.ID, player)
		if err != nil {
			return nil, CreatedGame{}, fmt.Errorf("issue token for %s: %w", player, err)
		}
		out.Tokens[player] = token
	}

	g.OnGameEnd = func(gameID uuid.UUID, winner models.Faction) {
		gs.Logger.WithFields(logrus.Fields{"game_id": gameID, "winner": winner}).Info("table finished")
	}
	if gs.StoreSnapshotFn != nil {
		g.StoreSnapshotFn = gs.StoreSnapshotFn
	}
	gs.GameStore.AddGame(g)
	g.PersistInitialGameState()
	g.PersistSnapshot()

	gs.Logger.WithFields(logrus.Fields{"game_id": g.ID, "seats": len(g.State.Seats)}).Info("table created")
	return g, out, nil
}

// lookupGame finds a table in memory or restores it from its snapshot.
func (gs *GameServer) lookupGame(ctx context.Context, id uuid.UUID) (*game.KutschfahrtGame, error) {
	return gs.GameStore.Restore(ctx, id, gs.Logger)
}
