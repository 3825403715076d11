package poker

// SeatSnapshot is a copy of one seat's visible state.
type SeatSnapshot struct {
	Seat      int       `json:"seat"`
	Name      string    `json:"name"`
	Account   string    `json:"account"`
	Stack     int64     `json:"stack"`
	Hand      []Card    `json:"hand,omitempty"`
	StreetBet int64     `json:"streetBet"`
	HandBet   int64     `json:"handBet"`
	Folded    bool      `json:"folded"`
	AllIn     bool      `json:"allIn"`
	SittingIn bool      `json:"sittingIn"`
	Role      string    `json:"role"`
	HandRank  *HandRank `json:"handRank,omitempty"`
}

// TableSnapshot is a point-in-time copy of the whole table, safe to hand to
// callers: it shares no memory with live table state.
type TableSnapshot struct {
	ID                  string          `json:"id"`
	Round               int             `json:"round"`
	Phase               string          `json:"phase"`
	State               string          `json:"state"`
	Dealer              int             `json:"dealer"`
	CurrentSeat         int             `json:"currentSeat"`
	CurrentBet          int64           `json:"currentBet"`
	PotTotal            int64           `json:"potTotal"`
	Community           []Card          `json:"community"`
	Seats               []SeatSnapshot  `json:"seats"`
	LastShowdown        *ShowdownResult `json:"lastShowdown,omitempty"`
	NeedsReconciliation bool            `json:"needsReconciliation"`
}

// Snapshot projects the table into a detached snapshot. Stacks are read
// from the ledger under the table lock, so the snapshot is internally
// consistent even while other seats are submitting actions.
func (t *Table) Snapshot() (*TableSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := &TableSnapshot{
		ID:                  t.cfg.ID,
		Round:               t.round,
		Phase:               t.phase.String(),
		State:               t.stateString(),
		Dealer:              t.dealer,
		CurrentSeat:         -1,
		NeedsReconciliation: t.needsReconciliation,
	}
	if t.betting != nil {
		snap.CurrentSeat = t.betting.Current()
		snap.CurrentBet = t.betting.TableBet()
	}
	if t.pot != nil {
		snap.PotTotal = t.pot.Total()
	}
	snap.Community = append([]Card{}, t.deck.Community()...)
	if t.lastShowdown != nil {
		sd := *t.lastShowdown
		sd.Pots = append([]PotResult{}, t.lastShowdown.Pots...)
		snap.LastShowdown = &sd
	}

	for _, p := range t.players {
		stack, err := t.ledger.Balance(p.Account)
		if err != nil {
			return nil, err
		}
		seat := SeatSnapshot{
			Seat:      p.Seat,
			Name:      p.Name,
			Account:   p.Account,
			Stack:     stack,
			Hand:      append([]Card{}, p.Hand...),
			StreetBet: p.StreetBet,
			HandBet:   p.HandBet,
			Folded:    p.Folded,
			AllIn:     p.AllIn,
			SittingIn: p.SittingIn,
			Role:      p.Role.String(),
		}
		if p.HandRank != nil {
			hr := *p.HandRank
			hr.Tiebreaks = append([]int{}, p.HandRank.Tiebreaks...)
			seat.HandRank = &hr
		}
		snap.Seats = append(snap.Seats, seat)
	}
	return snap, nil
}
