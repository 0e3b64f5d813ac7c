package game

import (
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateJSONKeepsPendingAction(t *testing.T) {
	s := newTestState()
	s.Turn.Action = &AttackResolution{
		Attacker: "gundla",
		Victim:   "marie",
		Votes:    []Support{SupportAttack, SupportDefend},
		Passed:   map[string]bool{"sarah": true, "gundla": true},
		Buffs:    []Buff{{Player: "zacharias", Item: models.ItemKey}},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"attack"`)
	assert.Contains(t, string(data), `"passed":["gundla","sarah"]`)

	var got State
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s, &got)

	s.Turn.Action = &SwapOffer{Offerer: "gundla", Item: models.ItemKey, Partner: "sarah"}
	data, err = json.Marshal(s)
	require.NoError(t, err)
	got = State{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, s.Turn, got.Turn)
}

func TestTurnJSONRejectsUnknownKind(t *testing.T) {
	var turn Turn
	err := json.Unmarshal([]byte(`{"player":"gundla","action":{"kind":"duel"}}`), &turn)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"player":"gundla"}`), &turn))
	assert.Equal(t, Turn{Player: "gundla"}, turn)
}

func TestCloneIsDeep(t *testing.T) {
	s := newTestState()
	s.Turn.Action = &AttackResolution{Attacker: "gundla", Victim: "sarah", Votes: []Support{}, Passed: map[string]bool{}, Buffs: []Buff{}}
	c := s.Clone()
	require.Equal(t, s, c)

	c.Players["gundla"].Items[0] = models.ItemCoat
	c.Seats[0] = "otto"
	c.ItemStack[0] = models.ItemTome
	c.Turn.Action.(*AttackResolution).Passed["sarah"] = true

	assert.Equal(t, newTestState().Players, s.Players)
	assert.Equal(t, "gundla", s.Seats[0])
	assert.Equal(t, models.ItemGloves, s.ItemStack[0])
	assert.Empty(t, s.Turn.Action.(*AttackResolution).Passed)
}
