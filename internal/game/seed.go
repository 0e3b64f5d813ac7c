// internal/game/seed.go
package game

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSeed is returned when a seed cannot produce a playable table.
var ErrInvalidSeed = errors.New("invalid seed")

// MinSeats is the smallest table a seed may describe.
const MinSeats = 3

// Seed describes a table before the first move. The item stack is taken as
// given; shuffling is the seeder's job.
type Seed struct {
	Seats          []string                 `json:"seats" yaml:"seats"`
	Players        map[string]models.Player `json:"players" yaml:"players"`
	ItemStack      []models.Item            `json:"item_stack" yaml:"item_stack"`
	StartingPlayer string                   `json:"starting_player,omitempty" yaml:"starting_player,omitempty"`
	Rules          map[string]interface{}   `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// LoadSeedFile reads a YAML seed from disk.
func LoadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	return ParseSeedYAML(raw)
}

// ParseSeedYAML decodes a YAML seed.
func ParseSeedYAML(raw []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("seed yaml: %w", err)
	}
	return seed, nil
}

// NewState validates the seed and builds the initial, idle state.
func (seed Seed) NewState() (*State, error) {
	if len(seed.Seats) < MinSeats {
		return nil, fmt.Errorf("%w: need at least %d seats, got %d", ErrInvalidSeed, MinSeats, len(seed.Seats))
	}
	seen := make(map[string]bool, len(seed.Seats))
	for _, id := range seed.Seats {
		if id == "" {
			return nil, fmt.Errorf("%w: empty seat id", ErrInvalidSeed)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate seat %q", ErrInvalidSeed, id)
		}
		seen[id] = true
		p, ok := seed.Players[id]
		if !ok {
			return nil, fmt.Errorf("%w: seat %q has no player record", ErrInvalidSeed, id)
		}
		if !p.Faction.Valid() {
			return nil, fmt.Errorf("%w: player %q has unknown faction %q", ErrInvalidSeed, id, p.Faction)
		}
	}
	if len(seed.Players) != len(seed.Seats) {
		return nil, fmt.Errorf("%w: %d player records for %d seats", ErrInvalidSeed, len(seed.Players), len(seed.Seats))
	}

	start := seed.StartingPlayer
	if start == "" {
		start = seed.Seats[0]
	}
	if !slices.Contains(seed.Seats, start) {
		return nil, fmt.Errorf("%w: starting player %q is not seated", ErrInvalidSeed, start)
	}

	s := &State{
		Seats:     slices.Clone(seed.Seats),
		Players:   make(map[string]*models.Player, len(seed.Players)),
		ItemStack: slices.Clone(seed.ItemStack),
		Turn:      Turn{Player: start},
	}
	if s.ItemStack == nil {
		s.ItemStack = []models.Item{}
	}
	for id, p := range seed.Players {
		s.Players[id] = p.Clone()
		if s.Players[id].Items == nil {
			s.Players[id].Items = []models.Item{}
		}
	}
	return s, nil
}

// TableRules applies the seed's rule overrides on top of DefaultRules.
func (seed Seed) TableRules() (Rules, error) {
	return ParseRules(seed.Rules, DefaultRules())
}
