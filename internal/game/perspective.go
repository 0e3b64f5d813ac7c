// internal/game/perspective.go
package game

import (
	"slices"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
)

// PlayerView is one player's record as seen by the viewer. The viewer's own
// entry carries the full record; everyone else only shows an item count.
type PlayerView struct {
	*models.Player
	ItemCount *int `json:"item_count,omitempty"`
}

// PerspectiveTurn is the visible part of the turn slot.
type PerspectiveTurn struct {
	Player string     `json:"player,omitempty"`
	Action *SwapOffer `json:"action,omitempty"`
}

// Perspective is what one player is allowed to know about the table.
type Perspective struct {
	Seats     []string              `json:"seats"`
	Players   map[string]PlayerView `json:"players"`
	ItemStack int                   `json:"item_stack"`
	Turn      PerspectiveTurn       `json:"turn"`
	Winner    models.Faction        `json:"winner,omitempty"`
}

// BuildPerspective derives viewer's view of s. It never mutates s and the
// result shares no memory with it.
func BuildPerspective(s *State, viewer string) Perspective {
	p := Perspective{
		Seats:     slices.Clone(s.Seats),
		Players:   make(map[string]PlayerView, len(s.Players)),
		ItemStack: len(s.ItemStack),
		Turn:      PerspectiveTurn{Player: s.Turn.Player},
		Winner:    s.Winner,
	}
	for id, pl := range s.Players {
		if id == viewer {
			p.Players[id] = PlayerView{Player: pl.Clone()}
			continue
		}
		n := len(pl.Items)
		p.Players[id] = PlayerView{ItemCount: &n}
	}
	// only the partner of a swap offer may see it
	if offer, ok := s.Turn.Action.(*SwapOffer); ok && offer.Partner == viewer {
		c := *offer
		p.Turn.Action = &c
	}
	return p
}
