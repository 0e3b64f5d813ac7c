package game

import "github.com/jason-s-yu/kutschfahrt/internal/models"

// TriggerFunc reacts to item changing hands. It runs after the ownership change
// has been applied to the inventories.
type TriggerFunc func(s *State, oldOwner, newOwner string)

// TriggerRegistry maps items to the reaction fired when they change owner.
// Items without an entry do nothing.
type TriggerRegistry struct {
	triggers map[models.Item]TriggerFunc
}

// NewTriggerRegistry returns an empty registry.
func NewTriggerRegistry() *TriggerRegistry {
	return &TriggerRegistry{triggers: make(map[models.Item]TriggerFunc)}
}

// DefaultTriggers returns the registry used by a standard table: both
// briefcases compensate their previous holder from the item stack.
func DefaultTriggers() *TriggerRegistry {
	r := NewTriggerRegistry()
	r.Register(models.ItemBriefcaseKey, briefcaseTrigger)
	r.Register(models.ItemBriefcaseChalice, briefcaseTrigger)
	return r
}

// Register installs fn for item, replacing any previous trigger.
func (r *TriggerRegistry) Register(item models.Item, fn TriggerFunc) {
	r.triggers[item] = fn
}

// Fire runs the trigger for item, if any.
func (r *TriggerRegistry) Fire(s *State, item models.Item, oldOwner, newOwner string) {
	if r == nil {
		return
	}
	if fn, ok := r.triggers[item]; ok {
		fn(s, oldOwner, newOwner)
	}
}

// briefcaseTrigger moves the top of the item stack to the briefcase's previous owner.
func briefcaseTrigger(s *State, oldOwner, _ string) {
	p := s.Players[oldOwner]
	if p == nil {
		return
	}
	if item, ok := s.popStack(); ok {
		p.Items = append(p.Items, item)
	}
}
