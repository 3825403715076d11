package poker

import "errors"

// Action-legality errors. These are recoverable: the offending action is
// rejected, the table state is left unchanged, and the failure is reported
// through ActionResult.
var (
	// ErrInvalidAmount is returned for a negative or malformed bet amount.
	ErrInvalidAmount = errors.New("bet amount cannot be negative")

	// ErrCannotUnderbet is returned when a player bets below the current
	// table bet while holding enough chips to match it.
	ErrCannotUnderbet = errors.New("bet does not match the current table bet")

	// ErrRaiseTooSmall is returned when a raise is less than double the
	// current table bet and is not a forced all-in.
	ErrRaiseTooSmall = errors.New("raise must be at least double the current bet")

	// ErrNotYourTurn is returned when an action arrives for a seat that is
	// not the one awaiting action.
	ErrNotYourTurn = errors.New("not this seat's turn to act")

	// ErrRoundClosed is returned for actions submitted after the betting
	// round has closed.
	ErrRoundClosed = errors.New("betting round is closed")
)

// Fatal errors. These indicate a chip-accounting or dealing bug; the hand
// aborts and the table is flagged for manual reconciliation.
var (
	// ErrEmptyDeck is returned when a draw exceeds the remaining cards.
	// With at most 8 players and a 52-card deck this should never happen.
	ErrEmptyDeck = errors.New("not enough cards left in the deck")

	// ErrPotImbalance is returned when the sum of all pots no longer
	// matches the chips contributed by the players this hand.
	ErrPotImbalance = errors.New("pot total does not match player contributions")

	// ErrHandAborted is returned for any action submitted to a table that
	// is awaiting manual reconciliation.
	ErrHandAborted = errors.New("hand aborted pending reconciliation")
)
