// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
)

// Rules holds the table settings the engine consults.
type Rules struct {
	VictoryThreshold int         `json:"victoryThreshold"` // minimum combined victory items for a valid announcement
	RequireOddTotal  bool        `json:"requireOddTotal"`  // additionally require an odd combined total
	BlockingItem     models.Item `json:"blockingItem"`     // holding this item forbids announcing victory
}

// DefaultRules returns the standard table settings.
func DefaultRules() Rules {
	return Rules{
		VictoryThreshold: 3,
		RequireOddTotal:  false,
		BlockingItem:     models.ItemBlackPearl,
	}
}

// Update will update the rules with the new values provided.
// Keys that are missing or nil are ignored and the old value persists.
func (rules *Rules) Update(newRules map[string]interface{}) error {
	if val, exists := newRules["victoryThreshold"]; exists && val != nil {
		var n int
		switch v := val.(type) {
		case float64: // JSON numbers decode as float64
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for victoryThreshold")
		}
		if n < 1 {
			return fmt.Errorf("victoryThreshold must be positive")
		}
		rules.VictoryThreshold = n
	}
	if val, exists := newRules["requireOddTotal"]; exists && val != nil {
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("invalid type for requireOddTotal")
		}
		rules.RequireOddTotal = b
	}
	if val, exists := newRules["blockingItem"]; exists && val != nil {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("invalid type for blockingItem")
		}
		rules.BlockingItem = models.Item(s)
	}
	return nil
}

// ParseRules applies a map of overrides on top of current. Current is left untouched.
func ParseRules(overrides map[string]interface{}, current Rules) (Rules, error) {
	rules := current
	err := rules.Update(overrides)
	return rules, err
}
