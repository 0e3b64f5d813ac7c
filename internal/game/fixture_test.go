package game

import (
	"testing"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// newTestState builds the four-seat table used throughout these tests.
// gundla is to move and gloves is the only item left on the stack.
func newTestState() *State {
	return &State{
		Seats: []string{"gundla", "sarah", "marie", "zacharias"},
		Players: map[string]*models.Player{
			"gundla": {
				Faction: models.FactionOrden,
				Job:     models.JobClairvoyant,
				Items:   []models.Item{models.ItemSextant, models.ItemKey},
			},
			"sarah": {
				Faction: models.FactionBruderschaft,
				Job:     models.JobDuelist,
				Items:   []models.Item{models.ItemDagger, models.ItemWhip},
			},
			"marie": {
				Faction: models.FactionOrden,
				Job:     models.JobDiplomat,
				Items:   []models.Item{models.ItemBlackPearl, models.ItemKey, models.ItemBriefcaseKey},
			},
			"zacharias": {
				Faction: models.FactionBruderschaft,
				Job:     models.JobBodyguard,
				Items:   []models.Item{models.ItemKey},
			},
		},
		ItemStack: []models.Item{models.ItemGloves},
		Turn:      Turn{Player: "gundla"},
	}
}

func newTestSeed() Seed {
	s := newTestState()
	players := make(map[string]models.Player, len(s.Players))
	for id, p := range s.Players {
		players[id] = *p
	}
	return Seed{Seats: s.Seats, Players: players, ItemStack: s.ItemStack}
}

// newTestEngine returns an engine with the default rules and triggers whose log
// output is captured by the returned hook.
func newTestEngine(t *testing.T) (*Engine, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewEngine(DefaultRules(), DefaultTriggers(), logrus.NewEntry(logger)), hook
}
