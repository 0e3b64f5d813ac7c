package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/cache"
	"github.com/sirupsen/logrus"
)

// GameStore keeps every live table in memory. Each table is independent; the
// store's lock only guards the map itself.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*KutschfahrtGame
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID]*KutschfahrtGame),
	}
}

func (s *GameStore) AddGame(game *KutschfahrtGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game
}

func (s *GameStore) GetGame(id uuid.UUID) (*KutschfahrtGame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, exists := s.games[id]
	return g, exists
}

func (s *GameStore) DeleteGame(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}

// ListGameIDs returns the IDs of all tables in a stable order.
func (s *GameStore) ListGameIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Restore returns the table with the given ID, loading its last snapshot from
// Redis if it is not in memory.
func (s *GameStore) Restore(ctx context.Context, id uuid.UUID, logger *logrus.Logger) (*KutschfahrtGame, error) {
	if g, ok := s.GetGame(id); ok {
		return g, nil
	}
	if cache.Rdb == nil {
		return nil, fmt.Errorf("game %s not found", id)
	}
	data, err := cache.LoadGameSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for game %s: %w", id, err)
	}
	g, err := GameFromSnapshot(id, data, logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another caller may have restored it meanwhile
	if existing, ok := s.games[id]; ok {
		return existing, nil
	}
	s.games[id] = g
	return g, nil
}

// GameFromSnapshot rebuilds a table from the JSON written by persistSnapshot.
func GameFromSnapshot(id uuid.UUID, data []byte, logger *logrus.Logger) (*KutschfahrtGame, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.State == nil {
		return nil, fmt.Errorf("decode snapshot: missing state")
	}
	g := NewGameFromState(id, snap.State, snap.Rules, logger)
	g.actionIndex = snap.ActionIndex
	return g, nil
}
