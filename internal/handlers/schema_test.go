package handlers

import (
	"testing"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionSchema(t *testing.T) {
	var ga models.GameAction
	require.NoError(t, decodeValidated(actionSchema, []byte(`{"action_type":"swap_item","payload":{"item":"key","partner":"marie"}}`), &ga))
	assert.Equal(t, "swap_item", ga.ActionType)
	assert.Equal(t, "marie", ga.Payload["partner"])

	// WebSocket frames carry an extra type field
	assert.NoError(t, validateJSON(actionSchema, []byte(`{"type":"action","action_type":"pass"}`)))

	for _, raw := range []string{
		`{}`,
		`{"action_type":"juggle"}`,
		`{"action_type":"attack","payload":["sarah"]}`,
		`[1, 2]`,
		`nope`,
	} {
		assert.Error(t, validateJSON(actionSchema, []byte(raw)), raw)
	}
}

func TestSeedSchema(t *testing.T) {
	assert.NoError(t, validateJSON(seedSchema, []byte(seedBody)))

	for _, raw := range []string{
		`{"seats":["a","b","c"]}`,
		`{"seats":["a",""],"players":{}}`,
		`{"seats":["a"],"players":{"a":{"faction":"pirates"}}}`,
		`{"seats":["a"],"players":{"a":{"job":"duelist"}}}`,
	} {
		assert.Error(t, validateJSON(seedSchema, []byte(raw)), raw)
	}
}
