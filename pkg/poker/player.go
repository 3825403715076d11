package poker

import (
	"fmt"
)

// SeatRole is the per-hand role of a seat. The original encoded dealer and
// blind roles as independent booleans, which allowed contradictory
// combinations; a single enum cannot.
type SeatRole int

const (
	RoleNone SeatRole = iota
	RoleDealer
	RoleSmallBlind
	RoleBigBlind
)

// String returns the display name of the role.
func (r SeatRole) String() string {
	switch r {
	case RoleDealer:
		return "dealer"
	case RoleSmallBlind:
		return "small blind"
	case RoleBigBlind:
		return "big blind"
	default:
		return "none"
	}
}

// Player is the per-seat state at a table. A player is owned by exactly one
// table and persists across hands; per-hand fields are reset by
// ResetForNewHand. Chips live in the external ledger under Account — the
// engine never holds a balance of its own.
//
// Folded and AllIn are independent: an all-in player is out of future
// betting but stays eligible for showdown and for pots up to their
// contribution cap. The original conflated the two, which cost all-in
// players their showdown; that behavior is deliberately not preserved.
type Player struct {
	Seat    int    // seat index, unique and contiguous among seated players
	Account string // ledger account holding this player's chips
	Name    string

	Hand      []Card // two hole cards once dealt
	StreetBet int64  // chips bet on the current street
	HandBet   int64  // cumulative chips bet this hand

	Folded    bool
	AllIn     bool
	SittingIn bool
	Role      SeatRole

	// Populated during showdown, nil otherwise.
	HandRank *HandRank
}

// NewPlayer creates a player for the given seat and ledger account.
func NewPlayer(seat int, account, name string) *Player {
	return &Player{
		Seat:      seat,
		Account:   account,
		Name:      name,
		Hand:      make([]Card, 0, 2),
		SittingIn: true,
	}
}

// ResetForNewHand clears the per-hand fields, leaving seat, account and
// sitting-in status untouched.
func (p *Player) ResetForNewHand() {
	p.Hand = make([]Card, 0, 2)
	p.StreetBet = 0
	p.HandBet = 0
	p.Folded = false
	p.AllIn = false
	p.Role = RoleNone
	p.HandRank = nil
}

// CanAct reports whether the player can take a betting action: seated in
// the hand, not folded and not all-in.
func (p *Player) CanAct() bool {
	return p.SittingIn && !p.Folded && !p.AllIn
}

// InHand reports whether the player is still eligible for the pot: seated
// and not folded. All-in players remain in hand.
func (p *Player) InHand() bool {
	return p.SittingIn && !p.Folded
}

// HandString returns the player's hole cards for logs, e.g. "A♠ K♦".
func (p *Player) HandString() string {
	if len(p.Hand) == 0 {
		return "no cards"
	}
	out := ""
	for i, card := range p.Hand {
		if i > 0 {
			out += " "
		}
		out += card.String()
	}
	return out
}

// String returns a one-line summary of the player's state.
func (p *Player) String() string {
	state := "active"
	switch {
	case p.Folded:
		state = "folded"
	case p.AllIn:
		state = "all-in"
	}
	return fmt.Sprintf("seat %d (%s): street=%d hand=%d %s", p.Seat, p.Name, p.StreetBet, p.HandBet, state)
}
