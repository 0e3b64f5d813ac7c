package models

import "slices"

// Faction is one of the two hidden teams at the table.
type Faction string

const (
	FactionOrden        Faction = "orden"
	FactionBruderschaft Faction = "bruderschaft"
)

// Opposite returns the other faction. An unknown faction maps to itself.
func (f Faction) Opposite() Faction {
	switch f {
	case FactionOrden:
		return FactionBruderschaft
	case FactionBruderschaft:
		return FactionOrden
	}
	return f
}

// Valid reports whether f is one of the two known factions.
func (f Faction) Valid() bool {
	return f == FactionOrden || f == FactionBruderschaft
}

// Player is the secret record of one seated player.
type Player struct {
	Faction Faction `json:"faction" yaml:"faction"`
	Job     Job     `json:"job" yaml:"job"`
	Items   []Item  `json:"items" yaml:"items"`
}

// Clone returns a deep copy so callers never alias the inventory slice.
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	c.Items = slices.Clone(p.Items)
	return &c
}

// Count returns how many copies of item the player holds.
func (p *Player) Count(item Item) int {
	n := 0
	for _, it := range p.Items {
		if it == item {
			n++
		}
	}
	return n
}

// Has reports whether the player holds at least one copy of item.
func (p *Player) Has(item Item) bool {
	for _, it := range p.Items {
		if it == item {
			return true
		}
	}
	return false
}

// RemoveItem drops one copy of item from the inventory.
// Returns false and leaves the inventory untouched if the item is not held.
func (p *Player) RemoveItem(item Item) bool {
	for i, it := range p.Items {
		if it == item {
			p.Items = append(p.Items[:i], p.Items[i+1:]...)
			return true
		}
	}
	return false
}
