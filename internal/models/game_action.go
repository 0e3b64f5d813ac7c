package models

// GameAction captures a player's in-game move as it arrives on the wire.
// The game package turns it into a typed action before the rules see it.
type GameAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
