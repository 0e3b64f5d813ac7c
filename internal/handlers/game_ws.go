// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/game"
	"github.com/jason-s-yu/kutschfahrt/internal/middleware"
	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/sirupsen/logrus"
)

// GameMessage represents the structure for incoming WebSocket messages during the game.
type GameMessage struct {
	Type string `json:"type"` // "action" or "ping"

	// ActionType and Payload mirror models.GameAction for "action" messages.
	ActionType string                 `json:"action_type,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific table.
// It authenticates the seat token, registers the connection, and then starts
// the read loop to handle incoming moves.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := gameIDFromPath(r, "/game/ws/")
		if err != nil {
			http.Error(w, "Missing or invalid game_id in path (/game/ws/{game_id})", http.StatusBadRequest)
			return
		}
		g, err := gs.lookupGame(r.Context(), gameID)
		if err != nil {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}

		player, err := authenticateSeat(r, gameID)
		if err != nil {
			logger.Warnf("Seat authentication failed for game %s: %v", gameID, err)
			c.Close(InvalidAuthTokenError, "Authentication failed.")
			return
		}
		if !g.HasPlayer(player) {
			logger.Warnf("Player %s has no seat in game %s. Closing connection.", player, gameID)
			c.Close(NotSeatedError, "You are not seated at this table.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path, gameID, player)

		g.Mu.Lock()
		if g.BroadcastFn == nil {
			g.BroadcastFn = createBroadcastFunc(g, logger)
		}
		if g.BroadcastToPlayerFn == nil {
			g.BroadcastToPlayerFn = createBroadcastToPlayerFunc(g, logger)
		}
		g.Mu.Unlock()

		g.HandleReconnect(player, c)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		err = readGameMessages(ctx, c, g, player, logger)

		g.HandleDisconnect(player)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, gameID, player, err)
	}
}

// createBroadcastFunc returns a function suitable for KutschfahrtGame.BroadcastFn.
// It is called while the game lock is held, so it only snapshots the
// connections and leaves the writes to a goroutine.
func createBroadcastFunc(g *game.KutschfahrtGame, logger *logrus.Logger) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		conns := g.Conns()
		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal broadcast event (%s) for game %s: %v", ev.Type, g.ID, err)
			return
		}
		go func(conns map[string]*websocket.Conn, data []byte, gameID uuid.UUID) {
			for player, conn := range conns {
				if err := writeWithTimeout(conn, data); err != nil {
					logger.Warnf("Failed to write broadcast message to player %s in game %s: %v", player, gameID, err)
				}
			}
		}(conns, msgBytes, g.ID)
	}
}

// createBroadcastToPlayerFunc returns a function suitable for KutschfahrtGame.BroadcastToPlayerFn.
// Also called while the game lock is held.
func createBroadcastToPlayerFunc(g *game.KutschfahrtGame, logger *logrus.Logger) func(player string, ev game.GameEvent) {
	return func(player string, ev game.GameEvent) {
		conn := g.Conn(player)
		if conn == nil {
			return
		}
		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal private event (%s) for player %s in game %s: %v", ev.Type, player, g.ID, err)
			return
		}
		go func(conn *websocket.Conn, data []byte, gameID uuid.UUID) {
			if err := writeWithTimeout(conn, data); err != nil {
				logger.Warnf("Failed to write private message to player %s in game %s: %v", player, gameID, err)
			}
		}(conn, msgBytes, g.ID)
	}
}

func writeWithTimeout(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

// readGameMessages reads moves from one player's connection and applies them
// under the game lock until the connection closes or ctx is cancelled.
// It returns nil on a normal closure.
func readGameMessages(ctx context.Context, c *websocket.Conn, g *game.KutschfahrtGame, player string, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from %s in game %s. Ignoring.", msgType, player, g.ID)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from %s in game %s: %v", player, g.ID, err)
			sendWsError(c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "action":
			if err := validateJSON(actionSchema, data); err != nil {
				sendWsError(c, fmt.Sprintf("Invalid action: %v", err))
				continue
			}
			g.Mu.Lock()
			err := g.HandlePlayerAction(player, models.GameAction{ActionType: msg.ActionType, Payload: msg.Payload})
			g.Mu.Unlock()
			if err != nil {
				logger.Debugf("Action %s from %s in game %s rejected: %v", msg.ActionType, player, g.ID, err)
			}

		case "ping":
			sendWsMessage(c, map[string]string{"type": "pong"})

		default:
			logger.Warnf("Unknown message type '%s' from %s in game %s.", msg.Type, player, g.ID)
			sendWsError(c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	if err := writeWithTimeout(c, msgBytes); err != nil {
		logrus.Debugf("Error writing WebSocket message: %v", err)
	}
}

// sendWsError sends a structured error message to the client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
