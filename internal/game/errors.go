package game

import (
	"errors"
	"fmt"
)

// ErrIllegalAction matches every *IllegalActionError.
var ErrIllegalAction = errors.New("illegal action")

// Reason names the precondition an action violated.
type Reason string

const (
	ReasonGameOver          Reason = "game_over"
	ReasonUnknownPlayer     Reason = "unknown_player"
	ReasonEliminated        Reason = "player_eliminated"
	ReasonUnknownAction     Reason = "unknown_action"
	ReasonWrongPhase        Reason = "wrong_phase"
	ReasonPhaseEnded        Reason = "phase_already_ended"
	ReasonCardNotFound      Reason = "card_not_found"
	ReasonNotPlayable       Reason = "card_not_playable"
	ReasonInsufficientPO    Reason = "insufficient_po"
	ReasonInsufficientLife  Reason = "insufficient_health"
	ReasonBoardFull         Reason = "board_full"
	ReasonPlayReplaceMix    Reason = "play_and_replace_exclusive"
	ReasonNotEvolvable      Reason = "not_evolvable"
	ReasonNoWeaponAccess    Reason = "no_weapon_access"
	ReasonAlreadyEquipped   Reason = "already_equipped"
	ReasonNoConditional     Reason = "no_conditional_ability"
	ReasonAlreadyCommitted  Reason = "already_committed"
	ReasonInvalidAmount     Reason = "invalid_amount"
	ReasonResourceExhausted Reason = "resource_exhausted"
)

// IllegalActionError is a rejected action. The state it was validated against is
// unchanged. Err carries an underlying cause such as *market.ExhaustedResourceError.
type IllegalActionError struct {
	Player  string
	Action  ActionKind
	Reason  Reason
	Details string
	Err     error
}

func (e *IllegalActionError) Error() string {
	msg := fmt.Sprintf("%s: player %s cannot %s: %s", ErrIllegalAction, e.Player, e.Action, e.Reason)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *IllegalActionError) Is(target error) bool {
	return target == ErrIllegalAction
}

func (e *IllegalActionError) Unwrap() error {
	return e.Err
}

func illegal(player string, a Action, reason Reason, format string, args ...any) *IllegalActionError {
	return &IllegalActionError{
		Player:  player,
		Action:  a.Kind,
		Reason:  reason,
		Details: fmt.Sprintf(format, args...),
	}
}

// StateInvariantViolation signals an engine bug. It is raised with panic and must
// never be recovered and ignored.
type StateInvariantViolation struct {
	Invariant string
	Detail    string
}

func (v *StateInvariantViolation) Error() string {
	return fmt.Sprintf("state invariant %q violated: %s", v.Invariant, v.Detail)
}
