// internal/handlers/game_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kutschfahrt/internal/auth"
	"github.com/jason-s-yu/kutschfahrt/internal/game"
	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedBody = `{
	"seats": ["gundla", "sarah", "marie"],
	"item_stack": ["gloves"],
	"players": {
		"gundla": {"faction": "orden", "job": "clairvoyant", "items": ["key"]},
		"sarah": {"faction": "bruderschaft", "job": "duelist", "items": ["dagger"]},
		"marie": {"faction": "orden", "job": "diplomat", "items": ["black_pearl"]}
	}
}`

func newTestServer(t *testing.T) *GameServer {
	t.Helper()
	require.NoError(t, auth.Init()) // ephemeral keys, no DB needed
	logger, _ := test.NewNullLogger()
	return NewGameServer(logger)
}

// createTable seeds a table through the HTTP handler and returns its tokens.
func createTable(t *testing.T, gs *GameServer) CreatedGame {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/game/create", bytes.NewBufferString(seedBody))
	w := httptest.NewRecorder()
	CreateGameHandler(gs).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created CreatedGame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEqual(t, uuid.Nil, created.GameID)
	require.Len(t, created.Tokens, 3)
	return created
}

func postAction(gs *GameServer, gameID uuid.UUID, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/game/action/"+gameID.String(), bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ActionHandler(gs).ServeHTTP(w, req)
	return w
}

func TestCreateGame(t *testing.T) {
	gs := newTestServer(t)
	snapshots := make(chan uuid.UUID, 4)
	gs.StoreSnapshotFn = func(_ context.Context, id uuid.UUID, data []byte) error {
		var snap game.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return err
		}
		if snap.ActionIndex == 0 && snap.State != nil {
			snapshots <- id
		}
		return nil
	}
	created := createTable(t, gs)

	// a table with no moves yet can already be restored
	select {
	case id := <-snapshots:
		assert.Equal(t, created.GameID, id)
	case <-time.After(time.Second):
		t.Fatal("initial snapshot was not stored")
	}

	_, ok := gs.GameStore.GetGame(created.GameID)
	assert.True(t, ok)

	claims, err := auth.AuthenticateJWT(created.Tokens["sarah"])
	require.NoError(t, err)
	assert.Equal(t, auth.SeatClaims{GameID: created.GameID, Player: "sarah"}, claims)

	w := httptest.NewRecorder()
	ListGamesHandler(gs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/list", nil))
	assert.Contains(t, w.Body.String(), created.GameID.String())
}

func TestCreateGameRejectsBadSeed(t *testing.T) {
	gs := newTestServer(t)

	for _, body := range []string{`{"seats": ["a", "b"]}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/game/create", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		CreateGameHandler(gs).ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, gs.GameStore.ListGameIDs())

	w := httptest.NewRecorder()
	CreateGameHandler(gs).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/game/create", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPerspectiveHandler(t *testing.T) {
	gs := newTestServer(t)
	created := createTable(t, gs)

	req := httptest.NewRequest(http.MethodGet, "/game/perspective/"+created.GameID.String(), nil)
	req.Header.Set("Cookie", "auth_token="+created.Tokens["marie"])
	w := httptest.NewRecorder()
	PerspectiveHandler(gs).ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view game.Perspective
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Players["marie"].Player)
	assert.Equal(t, []models.Item{models.ItemBlackPearl}, view.Players["marie"].Items)
	assert.Nil(t, view.Players["sarah"].Player)
	assert.NotContains(t, w.Body.String(), "dagger")

	// a token for another table does not open this one
	other := createTable(t, gs)
	req = httptest.NewRequest(http.MethodGet, "/game/perspective/"+created.GameID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+other.Tokens["marie"])
	w = httptest.NewRecorder()
	PerspectiveHandler(gs).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/game/perspective/not-a-uuid", nil)
	w = httptest.NewRecorder()
	PerspectiveHandler(gs).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionHandler(t *testing.T) {
	gs := newTestServer(t)
	created := createTable(t, gs)
	id := created.GameID

	w := postAction(gs, id, created.Tokens["sarah"], `{"action_type": "pass"}`)
	assert.Equal(t, http.StatusForbidden, w.Code, "not sarah's turn")

	w = postAction(gs, id, created.Tokens["gundla"], `{"action_type": "juggle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postAction(gs, id, created.Tokens["gundla"], `{"action_type": "swap_item", "payload": {"item": "dagger", "partner": "sarah"}}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postAction(gs, id, created.Tokens["gundla"], `{"action_type": "pass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view game.Perspective
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "marie", view.Turn.Player)

	w = postAction(gs, id, created.Tokens["marie"], `{"action_type": "announce_victory", "payload": {"other_players": ["gundla"]}}`)
	assert.Equal(t, http.StatusConflict, w.Code, "black pearl blocks marie")

	w = postAction(gs, id, created.Tokens["marie"], `{"action_type": "pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = postAction(gs, id, created.Tokens["sarah"], `{"action_type": "announce_victory"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, models.FactionOrden, view.Winner)

	w = postAction(gs, id, created.Tokens["gundla"], `{"action_type": "pass"}`)
	assert.Equal(t, http.StatusGone, w.Code)
}
