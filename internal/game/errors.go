package game

import "errors"

// Rule violations. Every one of them is returned before the engine mutates
// any state.
var (
	ErrInsufficientMana = errors.New("insufficient mana")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrUnknownCard      = errors.New("unknown card")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrDeckEmpty        = errors.New("deck is empty")
	ErrHandFull         = errors.New("hand is full")
	ErrInvalidTarget    = errors.New("invalid target")
	ErrCannotAttack     = errors.New("creature cannot attack")
	ErrTaunt            = errors.New("a taunt creature must be attacked first")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownIntent    = errors.New("unknown intent")
	ErrUnknownRole      = errors.New("unknown role")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInsufficientMana, "insufficient_mana"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrUnknownCard, "unknown_card"},
	{ErrCardNotInHand, "card_not_in_hand"},
	{ErrDeckEmpty, "deck_empty"},
	{ErrHandFull, "hand_full"},
	{ErrInvalidTarget, "invalid_target"},
	{ErrCannotAttack, "cannot_attack"},
	{ErrTaunt, "taunt"},
	{ErrGameOver, "game_over"},
	{ErrUnknownIntent, "unknown_intent"},
	{ErrUnknownRole, "unknown_role"},
}

// ErrorCode returns the stable wire code for a rule violation, or "" if err
// is not one.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}
