package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeedYAML = `
seats: [gundla, sarah, marie]
starting_player: marie
item_stack: [gloves, coat]
rules:
  victoryThreshold: 2
players:
  gundla:
    faction: orden
    job: clairvoyant
    items: [key]
  sarah:
    faction: bruderschaft
    job: duelist
    items: [chalice, dagger]
  marie:
    faction: orden
    job: diplomat
`

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeedYAML), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)

	s, err := seed.NewState()
	require.NoError(t, err)
	assert.Equal(t, []string{"gundla", "sarah", "marie"}, s.Seats)
	assert.Equal(t, "marie", s.Turn.Player)
	assert.Equal(t, []models.Item{models.ItemGloves, models.ItemCoat}, s.ItemStack)
	assert.Equal(t, models.JobDuelist, s.Players["sarah"].Job)
	assert.NotNil(t, s.Players["marie"].Items)
	assert.Empty(t, s.Players["marie"].Items)

	rules, err := seed.TableRules()
	require.NoError(t, err)
	assert.Equal(t, 2, rules.VictoryThreshold)
	assert.Equal(t, models.ItemBlackPearl, rules.BlockingItem)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedDefaultsStartingPlayer(t *testing.T) {
	s, err := newTestSeed().NewState()
	require.NoError(t, err)
	assert.Equal(t, "gundla", s.Turn.Player)
	assert.Equal(t, newTestState(), s)
}

func TestSeedValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Seed)
	}{
		{"too few seats", func(s *Seed) { s.Seats = s.Seats[:2] }},
		{"duplicate seat", func(s *Seed) { s.Seats[1] = "gundla" }},
		{"empty seat", func(s *Seed) { s.Seats[1] = "" }},
		{"seat without record", func(s *Seed) { s.Seats[3] = "otto" }},
		{"extra record", func(s *Seed) { s.Players["otto"] = models.Player{Faction: models.FactionOrden} }},
		{"unknown faction", func(s *Seed) { s.Players["sarah"] = models.Player{Faction: "pirates"} }},
		{"starting player not seated", func(s *Seed) { s.StartingPlayer = "otto" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := newTestSeed()
			tt.mutate(&seed)
			_, err := seed.NewState()
			assert.ErrorIs(t, err, ErrInvalidSeed)
		})
	}

	_, err := ParseSeedYAML([]byte("seats: [a, b"))
	assert.Error(t, err)
}
