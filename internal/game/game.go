// internal/game/game.go
package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/cache"
	"github.com/jason-s-yu/kutschfahrt/internal/database"
	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc is invoked once a table has a winner.
type OnGameEndFunc func(gameID uuid.UUID, winner models.Faction)

// GameEventType is an enum-like type for broadcasting game events.
type GameEventType string

const (
	EventGameAction            GameEventType = "game_action"             // Public notification that a move was applied
	EventPrivateActionRejected GameEventType = "private_action_rejected" // Private notification that the sender's move was refused
	EventPrivateSyncState      GameEventType = "private_sync_state"      // Private perspective push
	EventGameEnd               GameEventType = "game_end"                // Public notification game has ended + winner
)

// GameEvent holds data about an event that can be broadcast to the clients in a consistent format.
// Public events never carry item identifiers.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Actor   string                 `json:"actor,omitempty"`
	Action  string                 `json:"action,omitempty"`
	Message string                 `json:"message,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *Perspective           `json:"state,omitempty"`
}

// KutschfahrtGame is one live table: the canonical State plus everything needed
// to serialize moves against it and tell the players what happened.
type KutschfahrtGame struct {
	ID     uuid.UUID
	State  *State
	Engine *Engine

	GameOver    bool
	actionIndex int
	conns       map[string]*websocket.Conn
	lastSeen    map[string]time.Time

	// Mu serializes every call against State.
	Mu sync.Mutex

	// BroadcastFn is used to send events to all players. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(player string, ev GameEvent)

	// OnGameEnd is invoked at game end.
	OnGameEnd OnGameEndFunc

	// StoreSnapshotFn persists a serialized Snapshot. Defaults to Redis.
	StoreSnapshotFn func(ctx context.Context, id uuid.UUID, data []byte) error

	// snapshotMu orders snapshot writes; snapshotVersion is the ActionIndex of
	// the newest stored snapshot, -1 before the first.
	snapshotMu      sync.Mutex
	snapshotVersion int

	logger *logrus.Entry
}

// NewKutschfahrtGame builds a table from a seed with a fresh ID.
func NewKutschfahrtGame(seed Seed, logger *logrus.Logger) (*KutschfahrtGame, error) {
	state, err := seed.NewState()
	if err != nil {
		return nil, err
	}
	rules, err := seed.TableRules()
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return NewGameFromState(id, state, rules, logger), nil
}

// NewGameFromState wraps an existing state, e.g. one restored from a snapshot.
func NewGameFromState(id uuid.UUID, state *State, rules Rules, logger *logrus.Logger) *KutschfahrtGame {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithField("game_id", id)
	return &KutschfahrtGame{
		ID:       id,
		State:    state,
		Engine:   NewEngine(rules, DefaultTriggers(), entry),
		GameOver: state.Concluded(),
		conns:    make(map[string]*websocket.Conn),
		lastSeen: make(map[string]time.Time),

		StoreSnapshotFn: storeSnapshotInRedis,
		snapshotVersion: -1,

		logger: entry,
	}
}

// HasPlayer reports whether player is seated at this table.
func (g *KutschfahrtGame) HasPlayer(player string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.State.Seated(player)
}

// Perspective returns player's view of the table.
func (g *KutschfahrtGame) Perspective(player string) Perspective {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return BuildPerspective(g.State, player)
}

// HandlePlayerAction parses and applies one move, then notifies the table.
// NOTE: Lock is assumed to be HELD by the caller.
func (g *KutschfahrtGame) HandlePlayerAction(actor string, action models.GameAction) error {
	if g.GameOver {
		g.rejectAction(actor, action.ActionType, ErrGameOver)
		return ErrGameOver
	}

	a, err := ParseAction(action)
	if err != nil {
		g.rejectAction(actor, action.ActionType, err)
		return err
	}
	if err := g.Engine.ApplyAction(g.State, actor, a); err != nil {
		g.rejectAction(actor, action.ActionType, err)
		return err
	}

	g.lastSeen[actor] = time.Now()
	g.logAction(actor, a.Kind(), Payload(a))

	g.fireEvent(GameEvent{Type: EventGameAction, Actor: actor, Action: a.Kind()})
	g.broadcastSyncStateToAll()

	if g.State.Concluded() {
		g.endGame()
	}
	g.persistSnapshot()
	return nil
}

// rejectAction tells the sender why their move was refused.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) rejectAction(actor, actionType string, err error) {
	g.logger.WithFields(logrus.Fields{"actor": actor, "action": actionType}).Debugf("rejecting action: %v", err)
	g.fireEventToPlayer(actor, GameEvent{
		Type:    EventPrivateActionRejected,
		Action:  actionType,
		Message: err.Error(),
	})
}

// HandleReconnect registers the player's connection and sends them their view.
func (g *KutschfahrtGame) HandleReconnect(player string, conn *websocket.Conn) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.conns[player] = conn
	g.lastSeen[player] = time.Now()
	g.logger.WithField("player", player).Info("player connected")
	g.sendSyncState(player)
}

// HandleDisconnect forgets the player's connection. The seat stays; the table
// simply waits for them.
func (g *KutschfahrtGame) HandleDisconnect(player string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	delete(g.conns, player)
	g.logger.WithField("player", player).Info("player disconnected")
}

// Conns returns a copy of the currently registered connections.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) Conns() map[string]*websocket.Conn {
	out := make(map[string]*websocket.Conn, len(g.conns))
	for p, c := range g.conns {
		out[p] = c
	}
	return out
}

// Conn returns the connection registered for player, if any.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) Conn(player string) *websocket.Conn {
	return g.conns[player]
}

// fireEvent is a helper to broadcast to all players if BroadcastFn is set.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer is a helper to send an event to one player if BroadcastToPlayerFn is set.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) fireEventToPlayer(player string, ev GameEvent) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(player, ev)
	}
}

// sendSyncState pushes player's current perspective to them.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) sendSyncState(player string) {
	p := BuildPerspective(g.State, player)
	g.fireEventToPlayer(player, GameEvent{Type: EventPrivateSyncState, State: &p})
}

// broadcastSyncStateToAll pushes every seated player their own perspective.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) broadcastSyncStateToAll() {
	for _, player := range g.State.Seats {
		g.sendSyncState(player)
	}
}

// endGame marks the table finished, announces the winner and records the result.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) endGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	winner := g.State.Winner
	g.logger.WithField("winner", winner).Info("game over")

	g.logAction("", "game_end", map[string]interface{}{"winner": string(winner)})
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: map[string]interface{}{"winner": winner}})
	g.persistFinalGameState()

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner)
	}
}

// PersistInitialGameState stores the seeded table so a finished game can be replayed.
func (g *KutschfahrtGame) PersistInitialGameState() {
	if database.DB == nil {
		return
	}
	data, err := json.Marshal(g.State)
	if err != nil {
		g.logger.Warnf("failed to marshal initial state: %v", err)
		return
	}
	go func(id uuid.UUID, seats []string, data []byte) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.CreateGameRecord(ctx, id, seats, data); err != nil {
			g.logger.Warnf("failed to store initial state: %v", err)
		}
	}(g.ID, append([]string(nil), g.State.Seats...), data)
}

// persistFinalGameState saves the concluded state and winner to the database.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) persistFinalGameState() {
	if database.DB == nil {
		return
	}
	data, err := json.Marshal(g.State)
	if err != nil {
		g.logger.Warnf("failed to marshal final state: %v", err)
		return
	}
	snapshot := map[string]interface{}{
		"state":  json.RawMessage(data),
		"winner": g.State.Winner,
	}
	go func(id uuid.UUID, winner string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.StoreFinalGameStateInDB(ctx, id, winner, snapshot); err != nil {
			g.logger.Warnf("failed to store final state: %v", err)
		}
	}(g.ID, string(g.State.Winner))
}

// PersistSnapshot stores the table as it stands, e.g. right after it is created.
func (g *KutschfahrtGame) PersistSnapshot() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.persistSnapshot()
}

// snapshot captures the table for persistence.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) snapshot() Snapshot {
	return Snapshot{State: g.State, Rules: g.Engine.Rules, ActionIndex: g.actionIndex}
}

// persistSnapshot writes the current state out so the table survives a restart.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) persistSnapshot() {
	if g.StoreSnapshotFn == nil {
		return
	}
	snap := g.snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		g.logger.Warnf("failed to marshal snapshot: %v", err)
		return
	}
	go g.writeSnapshot(g.StoreSnapshotFn, snap.ActionIndex, data)
}

// writeSnapshot stores data unless a snapshot at least as new is already
// stored. Writes from consecutive moves may start in any order; this keeps a
// slow older write from replacing a newer one.
func (g *KutschfahrtGame) writeSnapshot(store func(context.Context, uuid.UUID, []byte) error, version int, data []byte) {
	g.snapshotMu.Lock()
	defer g.snapshotMu.Unlock()
	if version <= g.snapshotVersion {
		g.logger.Debugf("skipping stale snapshot %d, %d already stored", version, g.snapshotVersion)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store(ctx, g.ID, data); err != nil {
		g.logger.Warnf("failed to store snapshot %d: %v", version, err)
		return
	}
	g.snapshotVersion = version
}

// storeSnapshotInRedis is the default StoreSnapshotFn; it does nothing when
// Redis is not connected.
func storeSnapshotInRedis(ctx context.Context, id uuid.UUID, data []byte) error {
	if cache.Rdb == nil {
		return nil
	}
	return cache.StoreGameSnapshot(ctx, id, data)
}

// logAction sends the action details to the historian service via Redis.
// Assumes lock is held by caller.
func (g *KutschfahrtGame) logAction(actor, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		Actor:         actor,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			g.logger.Warnf("failed to publish action %d: %v", rec.ActionIndex, err)
		}
	}(record)
}

// Snapshot is the persisted form of a live table. ActionIndex is the number
// of history records already published, so a restored table keeps numbering
// where it stopped.
type Snapshot struct {
	State       *State `json:"state"`
	Rules       Rules  `json:"rules"`
	ActionIndex int    `json:"action_index"`
}
