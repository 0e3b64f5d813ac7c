// internal/game/engine.go
package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Engine validates and applies actions against a State. It holds no per-game
// data of its own and performs no locking; callers serialize calls per State.
type Engine struct {
	Rules    Rules
	Triggers *TriggerRegistry
	Logger   *logrus.Entry
}

// NewEngine builds an engine. A nil registry means no item triggers, a nil
// logger falls back to the logrus standard logger.
func NewEngine(rules Rules, triggers *TriggerRegistry, logger *logrus.Entry) *Engine {
	if triggers == nil {
		triggers = NewTriggerRegistry()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{Rules: rules, Triggers: triggers, Logger: logger}
}

// ApplyAction applies action a, submitted by actor, to s. On success s has been
// mutated; on error s is exactly as it was before the call.
func (e *Engine) ApplyAction(s *State, actor string, a Action) error {
	log := e.Logger.WithFields(logrus.Fields{"actor": actor, "action": kindOf(a)})

	var err error
	switch {
	case a == nil:
		err = ErrMalformedAction
	case s.Concluded():
		err = ErrGameOver
	default:
		switch pending := s.Turn.Action.(type) {
		case nil:
			err = e.applyIdle(s, actor, a)
		case *SwapOffer:
			err = e.applySwap(s, pending, actor, a)
		case *AttackResolution:
			err = e.applyAttack(s, pending, actor, a, log)
		default:
			err = ErrInvalidActionForState
		}
	}
	if err != nil {
		log.WithError(err).Warn("action rejected")
		return err
	}
	log.WithField("next", s.Turn.Player).Debug("action applied")
	return nil
}

// applyIdle handles the top-level moves of the player whose turn it is.
func (e *Engine) applyIdle(s *State, actor string, a Action) error {
	if actor != s.Turn.Player {
		return ErrWrongActor
	}
	player := s.Players[actor]
	if player == nil {
		return ErrWrongActor
	}

	switch v := a.(type) {
	case Pass:
		s.Turn.Player = NextPlayer(s.Seats, actor)

	case AnnounceVictory:
		if e.Rules.BlockingItem != "" && player.Has(e.Rules.BlockingItem) {
			return ErrBlockedByProtection
		}
		if err := e.checkTeammates(s, actor, v.Teammates); err != nil {
			return err
		}
		winner := player.Faction
		if !ValidateVictory(s, e.Rules, actor, v.Teammates) {
			winner = winner.Opposite()
		}
		s.Winner = winner
		s.Turn = Turn{}
		e.Logger.WithFields(logrus.Fields{"announcer": actor, "winner": winner}).Info("victory announced")

	case SwapItem:
		if !player.Has(v.Item) {
			return fmt.Errorf("%w: %s", ErrItemNotOwned, v.Item)
		}
		if v.Partner == actor || !s.Seated(v.Partner) {
			return ErrInvalidTarget
		}
		s.Turn.Action = &SwapOffer{Offerer: actor, Item: v.Item, Partner: v.Partner}

	case Attack:
		if v.Victim == actor || !s.Seated(v.Victim) {
			return ErrInvalidTarget
		}
		s.Turn.Action = &AttackResolution{
			Attacker: actor,
			Victim:   v.Victim,
			Votes:    []Support{},
			Passed:   map[string]bool{},
			Buffs:    []Buff{},
		}

	default:
		return ErrInvalidActionForState
	}
	return nil
}

// checkTeammates rejects unseated, repeated or self-named teammates.
func (e *Engine) checkTeammates(s *State, announcer string, teammates []string) error {
	seen := map[string]bool{announcer: true}
	for _, t := range teammates {
		if seen[t] || !s.Seated(t) {
			return fmt.Errorf("%w: %q", ErrInvalidTarget, t)
		}
		seen[t] = true
	}
	return nil
}

// applySwap handles the partner's answer to an open swap offer.
func (e *Engine) applySwap(s *State, offer *SwapOffer, actor string, a Action) error {
	if actor != offer.Partner {
		return ErrWrongActor
	}

	switch v := a.(type) {
	case DenySwap:
		// TODO: apply the revenge consequence once its rules are settled.
		s.Turn = Turn{Player: NextPlayer(s.Seats, offer.Offerer)}

	case AcceptSwap:
		offerer, partner := s.Players[offer.Offerer], s.Players[actor]
		if offerer == nil || partner == nil {
			return ErrInvalidTarget
		}
		if !partner.Has(v.Item) {
			return fmt.Errorf("%w: %s", ErrItemNotOwned, v.Item)
		}
		if !offerer.Has(offer.Item) {
			return fmt.Errorf("%w: %s", ErrItemNotOwned, offer.Item)
		}

		offerer.RemoveItem(offer.Item)
		partner.Items = append(partner.Items, offer.Item)
		partner.RemoveItem(v.Item)
		offerer.Items = append(offerer.Items, v.Item)

		e.Triggers.Fire(s, offer.Item, offer.Offerer, actor)
		e.Triggers.Fire(s, v.Item, actor, offer.Offerer)

		s.Turn = Turn{Player: NextPlayer(s.Seats, offer.Offerer)}

	default:
		return ErrInvalidActionForState
	}
	return nil
}

// applyAttack handles the voting round and the item/job rounds of an accusation.
// Passes are accepted at any point, including while votes are still being
// cast; a player who passes again is already counted and the second pass
// changes nothing. Any item or job play clears the recorded passes.
func (e *Engine) applyAttack(s *State, ar *AttackResolution, actor string, a Action, log *logrus.Entry) error {
	supporters := AttackSupportList(s.Seats, ar.Attacker, ar.Victim)
	votesComplete := len(ar.Votes) >= len(supporters)

	switch v := a.(type) {
	case AttackSupportVote:
		if votesComplete {
			return ErrOutOfOrderVote
		}
		if actor != supporters[len(ar.Votes)] {
			return fmt.Errorf("%w: %w", ErrOutOfOrderVote, ErrWrongActor)
		}
		ar.Votes = append(ar.Votes, v.Vote)

	case AttackItemJob:
		player := s.Players[actor]
		if player == nil || !s.Seated(actor) {
			return ErrWrongActor
		}
		if !votesComplete {
			return fmt.Errorf("%w: voting still open", ErrInvalidActionForState)
		}
		buff := Buff{Player: actor}
		switch {
		case v.Job != "":
			if player.Job != v.Job {
				return fmt.Errorf("%w: %s", ErrJobNotHeld, v.Job)
			}
			buff.Job = v.Job
		case v.Item != "":
			if !player.Has(v.Item) {
				return fmt.Errorf("%w: %s", ErrItemNotOwned, v.Item)
			}
			buff.Item = v.Item
		default:
			return ErrMalformedAction
		}
		// TODO: apply the buff's effect on the fight once buff scoring is defined.
		clear(ar.Passed)
		ar.Buffs = append(ar.Buffs, buff)

	case AttackItemJobPass:
		if !s.Seated(actor) {
			return ErrWrongActor
		}
		if ar.Passed == nil {
			ar.Passed = map[string]bool{}
		}
		ar.Passed[actor] = true
		if len(ar.Passed) == len(s.Seats) {
			log.WithFields(logrus.Fields{
				"attacker": ar.Attacker,
				"victim":   ar.Victim,
				"votes":    tally(ar.Votes),
				"buffs":    len(ar.Buffs),
			}).Info("accusation resolved")
			s.Turn = Turn{Player: NextPlayer(s.Seats, ar.Attacker)}
		}

	default:
		return ErrInvalidActionForState
	}
	return nil
}

func tally(votes []Support) map[Support]int {
	t := make(map[Support]int, 3)
	for _, v := range votes {
		t[v]++
	}
	return t
}

func kindOf(a Action) string {
	if a == nil {
		return ""
	}
	return a.Kind()
}
