package game

import (
	"errors"
	"fmt"
)

// Rejections returned by Engine.ApplyAction. A rejected action never mutates state.
var (
	ErrWrongActor            = errors.New("not your turn")
	ErrInvalidActionForState = errors.New("invalid action in this context")
	ErrItemNotOwned          = errors.New("item not owned")
	ErrBlockedByProtection   = errors.New("victory blocked by protected item")
	ErrOutOfOrderVote        = errors.New("vote out of order")
	ErrInvalidTarget         = errors.New("invalid target player")
	ErrJobNotHeld            = errors.New("not your job")

	ErrGameOver        = fmt.Errorf("%w: game is over", ErrInvalidActionForState)
	ErrMalformedAction = fmt.Errorf("%w: malformed action", ErrInvalidActionForState)
)
