package handlers

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Wire shapes accepted from clients. They only check structure; the game
// package still owns every rule.
const (
	seedSchemaJSON = `{
  "type": "object",
  "required": ["seats", "players"],
  "properties": {
    "seats": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "item_stack": {"type": "array", "items": {"type": "string"}},
    "starting_player": {"type": "string"},
    "rules": {"type": "object"},
    "players": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["faction"],
        "properties": {
          "faction": {"enum": ["orden", "bruderschaft"]},
          "job": {"type": "string"},
          "items": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

	actionSchemaJSON = `{
  "type": "object",
  "required": ["action_type"],
  "properties": {
    "action_type": {
      "enum": ["pass", "announce_victory", "swap_item", "attack", "deny_swap",
               "accept_swap", "attack_support", "attack_item_job", "attack_item_job_pass"]
    },
    "payload": {"type": "object"}
  }
}`
)

var (
	seedSchema   = jsonschema.MustCompileString("seed.schema.json", seedSchemaJSON)
	actionSchema = jsonschema.MustCompileString("action.schema.json", actionSchemaJSON)
)

// validateJSON checks raw against schema.
func validateJSON(schema *jsonschema.Schema, raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}

// decodeValidated checks raw against schema, then decodes it into out.
func decodeValidated(schema *jsonschema.Schema, raw []byte, out interface{}) error {
	if err := validateJSON(schema, raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
