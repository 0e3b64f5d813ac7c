package game

import (
	"testing"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCountItems(t *testing.T) {
	s := newTestState()

	assert.Equal(t, 1, CountItems(s, "marie", models.ItemKey))
	assert.Equal(t, 0, CountItems(s, "sarah", models.ItemChalice))
	assert.Equal(t, 0, CountItems(s, "nobody", models.ItemKey))

	s.ItemStack = nil
	assert.Equal(t, 2, CountItems(s, "marie", models.ItemKey), "briefcase counts once the stack is empty")
	assert.Equal(t, 1, CountItems(s, "gundla", models.ItemKey))
}

func TestValidateVictory(t *testing.T) {
	rules := DefaultRules()

	t.Run("every participant needs the faction and an item", func(t *testing.T) {
		s := newTestState()
		assert.False(t, ValidateVictory(s, rules, "gundla", []string{"marie", "zacharias"}))
		assert.False(t, ValidateVictory(s, rules, "sarah", nil), "no chalice held")
		assert.False(t, ValidateVictory(s, rules, "nobody", nil))
	})

	t.Run("threshold", func(t *testing.T) {
		s := newTestState()
		assert.False(t, ValidateVictory(s, rules, "gundla", []string{"marie"}))
		s.ItemStack = []models.Item{}
		assert.True(t, ValidateVictory(s, rules, "gundla", []string{"marie"}))
	})

	t.Run("odd total", func(t *testing.T) {
		s := newTestState()
		odd := rules
		odd.RequireOddTotal = true
		odd.VictoryThreshold = 2
		assert.False(t, ValidateVictory(s, odd, "gundla", []string{"marie"}))
		s.ItemStack = []models.Item{}
		assert.True(t, ValidateVictory(s, odd, "gundla", []string{"marie"}))
	})

	t.Run("chalice side", func(t *testing.T) {
		s := newTestState()
		s.Players["sarah"].Items = append(s.Players["sarah"].Items, models.ItemChalice, models.ItemChalice)
		s.Players["zacharias"].Items = []models.Item{models.ItemChalice}
		assert.True(t, ValidateVictory(s, rules, "sarah", []string{"zacharias"}))
	})
}
