package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPlayer(t *testing.T) {
	seats := []string{"A", "B", "C", "D"}

	assert.Equal(t, "D", NextPlayer(seats, "A"))
	assert.Equal(t, "C", NextPlayer(seats, "D"))
	assert.Equal(t, "A", NextPlayer(seats, "B"))
	assert.Equal(t, "", NextPlayer(seats, "E"))

	// every seat is visited once before the order repeats
	seen := map[string]bool{}
	p := "A"
	for range seats {
		seen[p] = true
		p = NextPlayer(seats, p)
	}
	assert.Len(t, seen, len(seats))
	assert.Equal(t, "A", p)
}

func TestAttackSupportList(t *testing.T) {
	seats := []string{"gundla", "sarah", "marie", "zacharias"}

	tests := []struct {
		attacker, defender string
		want               []string
	}{
		{"sarah", "marie", []string{"zacharias", "gundla"}},
		{"sarah", "zacharias", []string{"marie", "gundla"}},
		{"zacharias", "sarah", []string{"gundla", "marie"}},
		{"gundla", "marie", []string{"sarah", "zacharias"}},
	}
	for _, tt := range tests {
		got := AttackSupportList(seats, tt.attacker, tt.defender)
		assert.Equal(t, tt.want, got, "%s attacks %s", tt.attacker, tt.defender)
		assert.Len(t, got, len(seats)-2)
	}

	assert.Nil(t, AttackSupportList(seats, "nobody", "sarah"))

	abcd := []string{"A", "B", "C", "D"}
	assert.Equal(t, []string{"C", "A"}, AttackSupportList(abcd, "B", "D"))
	assert.Equal(t, []string{"D", "A"}, AttackSupportList(abcd, "C", "B"))
}
