package poker

import (
	"fmt"

	"github.com/decred/slog"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
)

// ActionResult reports the outcome of a submitted action. Legality
// failures are recoverable: Success is false, Err carries the sentinel
// classifying the rejection, and the table state is unchanged.
type ActionResult struct {
	Success bool
	Message string
	Err     error
}

func accepted(format string, args ...interface{}) ActionResult {
	return ActionResult{Success: true, Message: fmt.Sprintf(format, args...)}
}

func rejected(err error, format string, args ...interface{}) ActionResult {
	return ActionResult{Success: false, Message: fmt.Sprintf(format, args...), Err: err}
}

// BettingRound sequences action among active players for one street. It is
// a two-state machine: awaiting action from one seat, or closed. The round
// closes when every non-folded, non-all-in player's street bet matches the
// table bet and each has acted at least once since the last raise; a raise
// re-opens action for every such player after the raiser, in seat order
// wrapping around, until action returns to the raiser.
//
// BettingRound is not safe for concurrent use; the owning table serializes
// access.
type BettingRound struct {
	log     slog.Logger
	players []*Player
	ledger  ledger.Ledger
	pot     *PotManager

	tableBet     int64 // highest street bet; never decreases within the street
	lastRaiser   int   // seat of the last aggressor, -1 if none
	current      int   // seat awaiting action, -1 once closed
	toAct        []bool
	closed       bool
	actionsTaken int
}

// NewBettingRound starts a street with action on the first player able to
// act at or after startSeat. Blinds already posted are carried in via the
// players' street bets and tableBet.
func NewBettingRound(players []*Player, lgr ledger.Ledger, pot *PotManager, tableBet int64, startSeat int, log slog.Logger) *BettingRound {
	if log == nil {
		log = slog.Disabled
	}
	br := &BettingRound{
		log:        log,
		players:    players,
		ledger:     lgr,
		pot:        pot,
		tableBet:   tableBet,
		lastRaiser: -1,
		toAct:      make([]bool, len(players)),
	}
	for i, p := range players {
		br.toAct[i] = p.CanAct()
	}
	br.current = br.nextActor(startSeat)
	if br.current < 0 {
		br.close()
	}
	return br
}

// Closed reports whether the street's action is complete.
func (br *BettingRound) Closed() bool { return br.closed }

// Current returns the seat awaiting action, or -1 when the round is closed.
func (br *BettingRound) Current() int { return br.current }

// TableBet returns the current bet to match.
func (br *BettingRound) TableBet() int64 { return br.tableBet }

// Fold folds the current player.
func (br *BettingRound) Fold(seat int) (ActionResult, error) {
	if res, ok := br.turnCheck(seat); !ok {
		return res, nil
	}
	p := br.players[seat]
	p.Folded = true
	br.finishAction(seat, false)
	return accepted("%s folds", p.Name), nil
}

// Check passes the action without betting. It is legal only when the
// player already matches the table bet.
func (br *BettingRound) Check(seat int) (ActionResult, error) {
	if res, ok := br.turnCheck(seat); !ok {
		return res, nil
	}
	p := br.players[seat]
	if p.StreetBet != br.tableBet {
		return rejected(ErrCannotUnderbet, "%s cannot check, the bet to match is %d", p.Name, br.tableBet), nil
	}
	br.finishAction(seat, false)
	return accepted("%s checks", p.Name), nil
}

// Call matches the table bet, going all-in for less when the player's
// stack does not cover the difference.
func (br *BettingRound) Call(seat int) (ActionResult, error) {
	if res, ok := br.turnCheck(seat); !ok {
		return res, nil
	}
	p := br.players[seat]
	stack, err := br.ledger.Balance(p.Account)
	if err != nil {
		return ActionResult{}, err
	}
	target := br.tableBet
	if target > p.StreetBet+stack {
		target = p.StreetBet + stack
	}
	return br.bet(seat, target, stack)
}

// Raise sets the player's total street bet to amount, which must be at
// least double the table bet unless it is a forced all-in.
func (br *BettingRound) Raise(seat int, amount int64) (ActionResult, error) {
	if res, ok := br.turnCheck(seat); !ok {
		return res, nil
	}
	p := br.players[seat]
	stack, err := br.ledger.Balance(p.Account)
	if err != nil {
		return ActionResult{}, err
	}
	return br.bet(seat, amount, stack)
}

func (br *BettingRound) turnCheck(seat int) (ActionResult, bool) {
	if br.closed {
		return rejected(ErrRoundClosed, "the betting round is over"), false
	}
	if seat != br.current {
		return rejected(ErrNotYourTurn, "seat %d is not up, action is on seat %d", seat, br.current), false
	}
	return ActionResult{}, true
}

// bet applies the legality ladder for a total street bet of amount. The
// ladder mirrors the original game's single bet entrypoint: a matching
// amount is a check, a zero increment short of the table bet is a fold,
// and an increment equal to the stack is a forced all-in exempt from the
// minimum-raise rule.
func (br *BettingRound) bet(seat int, amount, stack int64) (ActionResult, error) {
	p := br.players[seat]

	if p.Folded {
		return accepted("%s has already folded", p.Name), nil
	}

	incr := amount - p.StreetBet

	if amount == p.StreetBet && p.StreetBet == br.tableBet {
		br.finishAction(seat, false)
		return accepted("%s checks", p.Name), nil
	}

	if incr == 0 {
		p.Folded = true
		br.finishAction(seat, false)
		return accepted("%s folds", p.Name), nil
	}

	if amount < 0 {
		return rejected(ErrInvalidAmount, "%s, the amount cannot be negative", p.Name), nil
	}

	if incr == stack {
		if err := br.commit(p, incr); err != nil {
			return ActionResult{}, err
		}
		p.AllIn = true
		raised := amount > br.tableBet
		if raised {
			br.tableBet = amount
		}
		br.finishAction(seat, raised)
		return accepted("%s is all in for %d", p.Name, p.StreetBet), nil
	}

	if incr > stack {
		return rejected(ledger.ErrInsufficientFunds, "%s cannot cover %d, stack is %d", p.Name, incr, stack), nil
	}

	if amount < br.tableBet {
		return rejected(ErrCannotUnderbet, "%s, %d does not match the current bet of %d; fold or match", p.Name, amount, br.tableBet), nil
	}

	raised := amount > br.tableBet
	if raised && amount < 2*br.tableBet {
		return rejected(ErrRaiseTooSmall, "%s, a raise must be at least %d", p.Name, 2*br.tableBet), nil
	}

	if err := br.commit(p, incr); err != nil {
		return ActionResult{}, err
	}
	if raised {
		br.tableBet = amount
	}
	br.finishAction(seat, raised)
	if raised {
		return accepted("%s raises to %d", p.Name, p.StreetBet), nil
	}
	return accepted("%s calls %d", p.Name, p.StreetBet), nil
}

// commit debits the ledger and moves the chips into the pot. A ledger
// rejection here is fatal: the stack was just read under the table lock,
// so a failed debit means the books are wrong.
func (br *BettingRound) commit(p *Player, incr int64) error {
	if err := br.ledger.ApplyDelta(p.Account, -incr); err != nil {
		return fmt.Errorf("debit seat %d: %w", p.Seat, err)
	}
	br.pot.AddBet(p.Seat, incr)
	p.StreetBet += incr
	p.HandBet += incr
	return nil
}

// finishAction marks the seat as having acted and advances to the next
// actor. A raise re-opens action for every other player still able to act.
func (br *BettingRound) finishAction(seat int, raised bool) {
	br.actionsTaken++
	br.toAct[seat] = false
	if raised {
		br.lastRaiser = seat
		for i, p := range br.players {
			if i != seat && p.CanAct() {
				br.toAct[i] = true
			}
		}
		br.log.Debugf("seat %d raises to %d, action re-opened", seat, br.tableBet)
	}
	br.current = br.nextActor(seat + 1)
	if br.current < 0 {
		br.close()
	}
}

// nextActor returns the first seat at or after from (wrapping) that still
// owes an action, or -1 if none remain. The round also ends the instant
// fewer than two players are left in the hand.
func (br *BettingRound) nextActor(from int) int {
	inHand := 0
	for _, p := range br.players {
		if p.InHand() {
			inHand++
		}
	}
	if inHand < 2 {
		return -1
	}
	n := len(br.players)
	for off := 0; off < n; off++ {
		seat := ((from + off) % n + n) % n
		if br.toAct[seat] && br.players[seat].CanAct() {
			return seat
		}
	}
	return -1
}

func (br *BettingRound) close() {
	br.closed = true
	br.current = -1
	br.log.Debugf("street closed at table bet %d after %d actions", br.tableBet, br.actionsTaken)
}

// uncontested reports whether at most one player remains unfolded.
func (br *BettingRound) uncontested() bool {
	inHand := 0
	for _, p := range br.players {
		if p.InHand() {
			inHand++
		}
	}
	return inHand <= 1
}
