// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ActionRow is one persisted game action, as written by the historian.
type ActionRow struct {
	GameID      uuid.UUID
	ActionIndex int
	Actor       string
	ActionType  string
	Payload     map[string]interface{}
}

// CreateGameRecord inserts the game row with its seat order and seeded state.
func CreateGameRecord(ctx context.Context, gameID uuid.UUID, seats []string, initialState []byte) error {
	q := `
		INSERT INTO games (id, status, seats, initial_game_state, start_time)
		VALUES ($1, 'in_progress', $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET seats = EXCLUDED.seats, initial_game_state = EXCLUDED.initial_game_state
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID, seats, initialState)
		return e
	})
}

// StoreFinalGameStateInDB records the winner and the concluded state, and marks the game completed.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, winner string, finalSnapshot map[string]interface{}) error {
	jsonData, err := json.Marshal(finalSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal final snapshot: %w", err)
	}
	query := `
		UPDATE games
		SET final_game_state = $1, winner = $2, status = 'completed', end_time = NOW()
		WHERE id = $3
	`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, query, jsonData, winner, gameID)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing final game state in DB: %w", err)
	}
	return nil
}

// InsertGameActions writes a batch of actions in one transaction. Games that
// have no row yet get a placeholder so the foreign key holds.
func InsertGameActions(ctx context.Context, rows []ActionRow) error {
	if len(rows) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, r := range rows {
			if err := insertGameActionTx(ctx, tx, r); err != nil {
				return fmt.Errorf("insert action %d of game %s: %w", r.ActionIndex, r.GameID, err)
			}
		}
		return nil
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, r ActionRow) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, r.GameID); err != nil {
		return err
	}

	payload := r.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (game_id, action_index, actor, action_type, action_payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ, r.GameID, r.ActionIndex, r.Actor, r.ActionType, jsonPayload)
	return err
}

// MarkGameAbandoned marks a game as 'abandoned' if it was still 'in_progress'.
func MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) error {
	q := `
		UPDATE games
		SET status = 'abandoned', end_time = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
}
