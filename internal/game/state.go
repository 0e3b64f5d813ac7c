// internal/game/state.go
package game

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
)

// State is the full, secret state of one table. The engine is its only writer.
type State struct {
	Seats     []string                  `json:"seats"`
	Players   map[string]*models.Player `json:"players"`
	ItemStack []models.Item             `json:"item_stack"` // top of the stack is the last element
	Turn      Turn                      `json:"turn"`
	Winner    models.Faction            `json:"winner,omitempty"`
}

// Turn says who acts next and which multi-step action, if any, is open.
// An empty Player means the game has concluded; a nil Action means the table is idle.
type Turn struct {
	Player string        `json:"player,omitempty"`
	Action PendingAction `json:"action,omitempty"`
}

// PendingAction is a multi-step action occupying the turn slot.
// The only implementations are *SwapOffer and *AttackResolution.
type PendingAction interface {
	pendingKind() string
	clone() PendingAction
}

// SwapOffer waits for Partner to accept or deny Item from Offerer.
type SwapOffer struct {
	Offerer string      `json:"offerer"`
	Item    models.Item `json:"item"`
	Partner string      `json:"partner"`
}

// Support is a bystander's vote in an accusation.
type Support string

const (
	SupportAttack  Support = "attack"
	SupportDefend  Support = "defend"
	SupportAbstain Support = "abstain"
)

// Valid reports whether s is a known vote.
func (s Support) Valid() bool {
	return s == SupportAttack || s == SupportDefend || s == SupportAbstain
}

// Buff records one item or job played into a fight. Exactly one of Item and Job is set.
type Buff struct {
	Player string      `json:"player"`
	Item   models.Item `json:"item,omitempty"`
	Job    models.Job  `json:"job,omitempty"`
}

// AttackResolution tracks an accusation from voting through the item/job rounds.
type AttackResolution struct {
	Attacker string          `json:"attacker"`
	Victim   string          `json:"victim"`
	Votes    []Support       `json:"votes"`
	Passed   map[string]bool `json:"-"`
	Buffs    []Buff          `json:"buffs"`
}

func (*SwapOffer) pendingKind() string        { return "swap_item" }
func (*AttackResolution) pendingKind() string { return "attack" }

func (o *SwapOffer) clone() PendingAction {
	c := *o
	return &c
}

func (a *AttackResolution) clone() PendingAction {
	c := *a
	c.Votes = slices.Clone(a.Votes)
	c.Buffs = slices.Clone(a.Buffs)
	c.Passed = maps.Clone(a.Passed)
	return &c
}

// attackResolutionJSON carries Passed as a sorted list so snapshots are stable.
type attackResolutionJSON struct {
	Attacker string    `json:"attacker"`
	Victim   string    `json:"victim"`
	Votes    []Support `json:"votes"`
	Passed   []string  `json:"passed"`
	Buffs    []Buff    `json:"buffs"`
}

func (a *AttackResolution) MarshalJSON() ([]byte, error) {
	passed := make([]string, 0, len(a.Passed))
	for p, ok := range a.Passed {
		if ok {
			passed = append(passed, p)
		}
	}
	sort.Strings(passed)
	return json.Marshal(attackResolutionJSON{
		Attacker: a.Attacker,
		Victim:   a.Victim,
		Votes:    a.Votes,
		Passed:   passed,
		Buffs:    a.Buffs,
	})
}

func (a *AttackResolution) UnmarshalJSON(data []byte) error {
	var raw attackResolutionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Attacker = raw.Attacker
	a.Victim = raw.Victim
	a.Votes = raw.Votes
	a.Buffs = raw.Buffs
	a.Passed = make(map[string]bool, len(raw.Passed))
	for _, p := range raw.Passed {
		a.Passed[p] = true
	}
	return nil
}

// turnJSON is the wire form of Turn; the pending action is tagged by kind.
type turnJSON struct {
	Player string          `json:"player,omitempty"`
	Action json.RawMessage `json:"action,omitempty"`
}

type pendingEnvelope struct {
	Kind string `json:"kind"`
}

func (t Turn) MarshalJSON() ([]byte, error) {
	out := turnJSON{Player: t.Player}
	if t.Action != nil {
		body, err := json.Marshal(t.Action)
		if err != nil {
			return nil, err
		}
		// splice the kind tag into the action object
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		fields["kind"], _ = json.Marshal(t.Action.pendingKind())
		if out.Action, err = json.Marshal(fields); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw turnJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Player = raw.Player
	t.Action = nil
	if len(raw.Action) == 0 || string(raw.Action) == "null" {
		return nil
	}
	var env pendingEnvelope
	if err := json.Unmarshal(raw.Action, &env); err != nil {
		return err
	}
	switch env.Kind {
	case "swap_item":
		var o SwapOffer
		if err := json.Unmarshal(raw.Action, &o); err != nil {
			return err
		}
		t.Action = &o
	case "attack":
		var a AttackResolution
		if err := json.Unmarshal(raw.Action, &a); err != nil {
			return err
		}
		t.Action = &a
	default:
		return fmt.Errorf("unknown pending action kind %q", env.Kind)
	}
	return nil
}

// Concluded reports whether the game is over.
func (s *State) Concluded() bool {
	return s.Turn.Player == ""
}

// Seated reports whether player holds a seat at this table.
func (s *State) Seated(player string) bool {
	return slices.Contains(s.Seats, player)
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	c := &State{
		Seats:     slices.Clone(s.Seats),
		Players:   make(map[string]*models.Player, len(s.Players)),
		ItemStack: slices.Clone(s.ItemStack),
		Turn:      Turn{Player: s.Turn.Player},
		Winner:    s.Winner,
	}
	for id, p := range s.Players {
		c.Players[id] = p.Clone()
	}
	if s.Turn.Action != nil {
		c.Turn.Action = s.Turn.Action.clone()
	}
	return c
}

// popStack removes and returns the top of the item stack.
func (s *State) popStack() (models.Item, bool) {
	n := len(s.ItemStack)
	if n == 0 {
		return "", false
	}
	item := s.ItemStack[n-1]
	s.ItemStack = s.ItemStack[:n-1]
	return item, true
}
