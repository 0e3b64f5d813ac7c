// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jason-s-yu/kutschfahrt/internal/game"
	"github.com/jason-s-yu/kutschfahrt/internal/models"
)

// CreateGameHandler seeds a new table from a JSON body and returns its ID and seat tokens.
// POST /game/create
func CreateGameHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var seed game.Seed
		if err := decodeValidated(seedSchema, body, &seed); err != nil {
			http.Error(w, "invalid seed body: "+err.Error(), http.StatusBadRequest)
			return
		}
		_, created, err := gs.CreateGame(seed)
		if err != nil {
			gs.Logger.Warnf("rejected seed: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, created)
	}
}

// ListGamesHandler returns the IDs of all live tables.
// GET /game/list
func ListGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"games": gs.GameStore.ListGameIDs(),
		})
	}
}

// PerspectiveHandler returns the caller's view of a table.
// GET /game/perspective/{game_id}
func PerspectiveHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := gameIDFromPath(r, "/game/perspective/")
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		player, err := authenticateSeat(r, gameID)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		g, err := gs.lookupGame(r.Context(), gameID)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, g.Perspective(player))
	}
}

// ActionHandler applies one move submitted over plain HTTP and returns the
// caller's updated view.
// POST /game/action/{game_id}
func ActionHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		gameID, err := gameIDFromPath(r, "/game/action/")
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		player, err := authenticateSeat(r, gameID)
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		g, err := gs.lookupGame(r.Context(), gameID)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		var action models.GameAction
		if err := decodeValidated(actionSchema, body, &action); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		g.Mu.Lock()
		err = g.HandlePlayerAction(player, action)
		var view game.Perspective
		if err == nil {
			view = game.BuildPerspective(g.State, player)
		}
		g.Mu.Unlock()

		if err != nil {
			writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
