// internal/game/actions.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/kutschfahrt/internal/models"
)

// Action type names as they appear in models.GameAction.ActionType.
const (
	ActionPass              = "pass"
	ActionAnnounceVictory   = "announce_victory"
	ActionSwapItem          = "swap_item"
	ActionAttack            = "attack"
	ActionDenySwap          = "deny_swap"
	ActionAcceptSwap        = "accept_swap"
	ActionAttackSupport     = "attack_support"
	ActionAttackItemJob     = "attack_item_job"
	ActionAttackItemJobPass = "attack_item_job_pass"
)

// Action is one move submitted by a player. The set of implementations is closed;
// each carries only the fields its move needs.
type Action interface {
	Kind() string
}

type Pass struct{}

type AnnounceVictory struct {
	Teammates []string
}

type SwapItem struct {
	Item    models.Item
	Partner string
}

type Attack struct {
	Victim string
}

type DenySwap struct{}

type AcceptSwap struct {
	Item models.Item
}

type AttackSupportVote struct {
	Vote Support
}

// AttackItemJob plays an item or a job into the current fight. Exactly one is set.
type AttackItemJob struct {
	Item models.Item
	Job  models.Job
}

type AttackItemJobPass struct{}

func (Pass) Kind() string              { return ActionPass }
func (AnnounceVictory) Kind() string   { return ActionAnnounceVictory }
func (SwapItem) Kind() string          { return ActionSwapItem }
func (Attack) Kind() string            { return ActionAttack }
func (DenySwap) Kind() string          { return ActionDenySwap }
func (AcceptSwap) Kind() string        { return ActionAcceptSwap }
func (AttackSupportVote) Kind() string { return ActionAttackSupport }
func (AttackItemJob) Kind() string     { return ActionAttackItemJob }
func (AttackItemJobPass) Kind() string { return ActionAttackItemJobPass }

// ParseAction converts a wire envelope into a typed Action.
// Unknown action types and missing or mistyped fields yield ErrMalformedAction.
func ParseAction(ga models.GameAction) (Action, error) {
	p := ga.Payload
	switch ga.ActionType {
	case ActionPass:
		return Pass{}, nil
	case ActionAnnounceVictory:
		teammates, err := stringList(p, "other_players")
		if err != nil {
			return nil, err
		}
		return AnnounceVictory{Teammates: teammates}, nil
	case ActionSwapItem:
		item, err := requireString(p, "item")
		if err != nil {
			return nil, err
		}
		partner, err := requireString(p, "partner")
		if err != nil {
			return nil, err
		}
		return SwapItem{Item: models.Item(item), Partner: partner}, nil
	case ActionAttack:
		victim, err := requireString(p, "victim")
		if err != nil {
			return nil, err
		}
		return Attack{Victim: victim}, nil
	case ActionDenySwap:
		return DenySwap{}, nil
	case ActionAcceptSwap:
		item, err := requireString(p, "item")
		if err != nil {
			return nil, err
		}
		return AcceptSwap{Item: models.Item(item)}, nil
	case ActionAttackSupport:
		vote, err := requireString(p, "vote")
		if err != nil {
			return nil, err
		}
		if !Support(vote).Valid() {
			return nil, fmt.Errorf("%w: unknown vote %q", ErrMalformedAction, vote)
		}
		return AttackSupportVote{Vote: Support(vote)}, nil
	case ActionAttackItemJob:
		item, hasItem := p["item"].(string)
		job, hasJob := p["job"].(string)
		hasItem = hasItem && item != ""
		hasJob = hasJob && job != ""
		if hasItem == hasJob {
			return nil, fmt.Errorf("%w: attack_item_job needs exactly one of item or job", ErrMalformedAction)
		}
		return AttackItemJob{Item: models.Item(item), Job: models.Job(job)}, nil
	case ActionAttackItemJobPass:
		return AttackItemJobPass{}, nil
	}
	return nil, fmt.Errorf("%w: unknown action type %q", ErrMalformedAction, ga.ActionType)
}

// Payload encodes a typed action back into the wire form used by models.GameAction.
func Payload(a Action) map[string]interface{} {
	switch v := a.(type) {
	case AnnounceVictory:
		others := make([]interface{}, len(v.Teammates))
		for i, t := range v.Teammates {
			others[i] = t
		}
		return map[string]interface{}{"other_players": others}
	case SwapItem:
		return map[string]interface{}{"item": string(v.Item), "partner": v.Partner}
	case Attack:
		return map[string]interface{}{"victim": v.Victim}
	case AcceptSwap:
		return map[string]interface{}{"item": string(v.Item)}
	case AttackSupportVote:
		return map[string]interface{}{"vote": string(v.Vote)}
	case AttackItemJob:
		if v.Job != "" {
			return map[string]interface{}{"job": string(v.Job)}
		}
		return map[string]interface{}{"item": string(v.Item)}
	}
	return map[string]interface{}{}
}

func requireString(p map[string]interface{}, key string) (string, error) {
	v, ok := p[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedAction, key)
	}
	return v, nil
}

// stringList accepts both []string and the []interface{} that encoding/json produces.
func stringList(p map[string]interface{}, key string) ([]string, error) {
	switch v := p[key].(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must hold player ids", ErrMalformedAction, key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s must be a list", ErrMalformedAction, key)
}
