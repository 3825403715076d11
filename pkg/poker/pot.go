package poker

import (
	"fmt"

	"github.com/decred/slog"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
)

// Pot is an amount of chips plus the seats eligible to win it. Eligibility
// narrows as side pots are carved off for all-ins; the main pot always
// comes first.
type Pot struct {
	Amount   int64
	Eligible []bool // seat-aligned mask
}

// NewPot creates an empty pot for n seats.
func NewPot(n int) *Pot {
	return &Pot{Eligible: make([]bool, n)}
}

// MakeEligible marks a seat as eligible to win this pot.
func (p *Pot) MakeEligible(seat int) { p.Eligible[seat] = true }

// IsEligible reports whether a seat is eligible to win this pot.
func (p *Pot) IsEligible(seat int) bool { return p.Eligible[seat] }

// BuildPots partitions contributed chips into a main pot and side pots
// given each seat's total contribution and fold status. It is a pure
// function so the side-pot math is testable in isolation.
//
// Distinct contribution levels are taken ascending; each level's slice is
// (level - previous) times the number of seats that contributed at least
// that much, and its eligibility is the non-folded seats among them. Chips
// above the highest level (an uncalled overage) form a final slice owned by
// the one seat that contributed them.
func BuildPots(contribs []int64, folded []bool) []*Pot {
	n := len(contribs)

	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		if contribs[i] > 0 {
			seen[contribs[i]] = true
		}
	}
	if len(seen) == 0 {
		return []*Pot{NewPot(n)}
	}

	levels := make([]int64, 0, len(seen))
	for lvl := range seen {
		levels = append(levels, lvl)
	}
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			if levels[i] > levels[j] {
				levels[i], levels[j] = levels[j], levels[i]
			}
		}
	}

	pots := make([]*Pot, 0, len(levels))
	prev := int64(0)
	for _, lvl := range levels {
		pot := NewPot(n)
		for i := 0; i < n; i++ {
			if contribs[i] >= lvl && !folded[i] {
				pot.Eligible[i] = true
			}
			if contribs[i] > prev {
				c := contribs[i]
				if c > lvl {
					c = lvl
				}
				pot.Amount += c - prev
			}
		}
		pots = append(pots, pot)
		prev = lvl
	}

	// Merge a slice into its predecessor when the eligible sets are equal;
	// distinct fold-levels otherwise produce redundant pots.
	merged := pots[:1]
	for _, pot := range pots[1:] {
		last := merged[len(merged)-1]
		if sameEligibility(last.Eligible, pot.Eligible) {
			last.Amount += pot.Amount
			continue
		}
		merged = append(merged, pot)
	}
	return merged
}

func sameEligibility(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PotResult records the outcome of one pot at settlement.
type PotResult struct {
	Amount  int64
	Winners []int // seats, in payout order
}

// ShowdownResult is the settlement of a whole hand.
type ShowdownResult struct {
	TotalPot int64
	Pots     []PotResult
}

// PotManager tracks chips contributed per seat, carves pots at showdown and
// distributes winnings. It credits winners only through the external
// ledger; it never touches balances directly.
type PotManager struct {
	log        slog.Logger
	ledger     ledger.Ledger
	streetBets []int64 // contribution per seat on the current street
	handBets   []int64 // contribution per seat across the whole hand
}

// NewPotManager creates a pot manager for n seats.
func NewPotManager(n int, lgr ledger.Ledger, log slog.Logger) *PotManager {
	if log == nil {
		log = slog.Disabled
	}
	return &PotManager{
		log:        log,
		ledger:     lgr,
		streetBets: make([]int64, n),
		handBets:   make([]int64, n),
	}
}

// AddBet records chips moved from a seat into the pot.
func (pm *PotManager) AddBet(seat int, amount int64) {
	pm.streetBets[seat] += amount
	pm.handBets[seat] += amount
}

// ResetStreetBets clears per-street contributions at street close.
func (pm *PotManager) ResetStreetBets() {
	for i := range pm.streetBets {
		pm.streetBets[i] = 0
	}
}

// StreetBet returns a seat's contribution on the current street.
func (pm *PotManager) StreetBet(seat int) int64 { return pm.streetBets[seat] }

// HandBet returns a seat's total contribution this hand.
func (pm *PotManager) HandBet(seat int) int64 { return pm.handBets[seat] }

// Total returns all chips moved into the pot this hand.
func (pm *PotManager) Total() int64 {
	var total int64
	for _, b := range pm.handBets {
		total += b
	}
	return total
}

// ReturnUncalled refunds the uncalled portion of the street's highest bet
// to the seat that made it. A bet is uncalled when it exceeds every other
// seat's street contribution, which happens when the rest fold or are
// all-in short.
func (pm *PotManager) ReturnUncalled(players []*Player) error {
	var hi, second int64
	hiSeat := -1
	for seat, bet := range pm.streetBets {
		if bet > hi {
			second = hi
			hi = bet
			hiSeat = seat
		} else if bet > second {
			second = bet
		}
	}
	if hiSeat < 0 || hi == second {
		return nil
	}

	uncalled := hi - second
	if err := pm.ledger.ApplyDelta(players[hiSeat].Account, uncalled); err != nil {
		return fmt.Errorf("refund uncalled bet: %w", err)
	}
	pm.streetBets[hiSeat] -= uncalled
	pm.handBets[hiSeat] -= uncalled
	players[hiSeat].StreetBet -= uncalled
	players[hiSeat].HandBet -= uncalled
	pm.log.Debugf("returned uncalled %d to seat %d", uncalled, hiSeat)
	return nil
}

// BuildHandPots carves main and side pots from this hand's contributions,
// verifying that no chips were lost or invented along the way.
func (pm *PotManager) BuildHandPots(players []*Player) ([]*Pot, error) {
	folded := make([]bool, len(players))
	for i, p := range players {
		folded[i] = !p.InHand()
	}
	pots := BuildPots(pm.handBets, folded)

	var sum int64
	for _, pot := range pots {
		sum += pot.Amount
	}
	if sum != pm.Total() {
		return nil, fmt.Errorf("pots sum to %d, contributions to %d: %w", sum, pm.Total(), ErrPotImbalance)
	}
	return pots, nil
}

// Distribute settles every pot from main to last side pot. Within each pot
// the best hand rank among eligible, non-folded seats wins; ties split the
// pot evenly with any odd chips going to the earliest eligible winner after
// the dealer. Credits are applied through the ledger.
func (pm *PotManager) Distribute(pots []*Pot, players []*Player, dealer int) (*ShowdownResult, error) {
	result := &ShowdownResult{}

	for pi, pot := range pots {
		if pot.Amount == 0 {
			continue
		}
		result.TotalPot += pot.Amount

		var winners []int
		var best *HandRank
		for off := 1; off <= len(players); off++ {
			seat := (dealer + off) % len(players)
			p := players[seat]
			if !pot.IsEligible(seat) || !p.InHand() {
				continue
			}
			if p.HandRank == nil {
				return nil, fmt.Errorf("pot %d: seat %d reached settlement without a hand rank", pi, seat)
			}
			switch {
			case best == nil || CompareHands(*p.HandRank, *best) > 0:
				best = p.HandRank
				winners = []int{seat}
			case CompareHands(*p.HandRank, *best) == 0:
				winners = append(winners, seat)
			}
		}
		if len(winners) == 0 {
			return nil, fmt.Errorf("pot %d of %d has no eligible winner: %w", pi, pot.Amount, ErrPotImbalance)
		}

		share := pot.Amount / int64(len(winners))
		rem := pot.Amount % int64(len(winners))
		for i, seat := range winners {
			amount := share
			// Winners are visited in seat order after the dealer, so odd
			// chips land on the earliest such seat.
			if int64(i) < rem {
				amount++
			}
			if err := pm.ledger.ApplyDelta(players[seat].Account, amount); err != nil {
				return nil, fmt.Errorf("credit seat %d: %w", seat, err)
			}
			pm.log.Debugf("pot %d: seat %d wins %d", pi, seat, amount)
		}
		result.Pots = append(result.Pots, PotResult{Amount: pot.Amount, Winners: winners})
	}

	return result, nil
}
