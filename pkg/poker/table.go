package poker

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
	"github.com/tenacioustuna22/PokerWebsite/pkg/statemachine"
)

// Phase is the stage of the current hand.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandComplete
)

// String returns the display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhasePreFlop:
		return "PRE_FLOP"
	case PhaseFlop:
		return "FLOP"
	case PhaseTurn:
		return "TURN"
	case PhaseRiver:
		return "RIVER"
	case PhaseShowdown:
		return "SHOWDOWN"
	case PhaseHandComplete:
		return "HAND_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// ActionKind is the kind of action a seat may submit.
type ActionKind int

const (
	ActionFold ActionKind = iota
	ActionCheck
	ActionCall
	ActionRaise // bet or raise; amount is the total street bet
)

// String returns the display name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionRaise:
		return "raise"
	default:
		return "unknown"
	}
}

// TableConfig holds configuration for a new table.
type TableConfig struct {
	ID         string
	Log        slog.Logger
	SmallBlind int64
	BigBlind   int64
	MinPlayers int
	MaxPlayers int
	Seed       int64 // optional seed for deterministic hands
}

// TableStateFn is a table lifecycle state following Rob Pike's pattern.
type TableStateFn = statemachine.StateFn[Table]

// Lifecycle state functions. Each performs its check and returns the next
// state (themselves, absent an external Dispatch).

func tableStateWaitingForPlayers(t *Table) TableStateFn {
	if len(t.sittingIn()) >= t.cfg.MinPlayers {
		return tableStateReady
	}
	return tableStateWaitingForPlayers
}

func tableStateReady(t *Table) TableStateFn {
	return tableStateReady
}

func tableStateHandInProgress(t *Table) TableStateFn {
	return tableStateHandInProgress
}

func tableStateHandComplete(t *Table) TableStateFn {
	return tableStateHandComplete
}

// Table owns the deck, seats, pots and betting round for one poker table
// and drives the hand sequence: post blinds, deal, betting rounds,
// showdown, payout, rotate. Exactly one action is processed at a time; the
// table mutex serializes every mutation so concurrent submissions from
// different seats cannot race on pot or bet state. Independent tables
// share nothing but the ledger.
type Table struct {
	mu  sync.Mutex
	log slog.Logger
	cfg TableConfig

	ledger  ledger.Ledger
	rng     *rand.Rand
	deck    *Deck
	players []*Player
	pot     *PotManager
	betting *BettingRound

	dealer int
	phase  Phase
	round  int // hand counter

	lastShowdown *ShowdownResult

	// Set when chip accounting can no longer be trusted; the table then
	// refuses all actions until manually reconciled.
	needsReconciliation bool

	state *statemachine.StateMachine[Table]
}

// NewTable creates a table backed by the given ledger.
func NewTable(cfg TableConfig, lgr ledger.Ledger) (*Table, error) {
	if cfg.SmallBlind <= 0 || cfg.BigBlind <= cfg.SmallBlind {
		return nil, fmt.Errorf("invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}
	if cfg.MinPlayers < 2 {
		cfg.MinPlayers = 2
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 8
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	t := &Table{
		log:    cfg.Log,
		cfg:    cfg,
		ledger: lgr,
		rng:    rng,
		deck:   NewDeck(rng),
		dealer: -1,
		phase:  PhaseWaiting,
	}
	t.state = statemachine.New(t, tableStateWaitingForPlayers)
	return t, nil
}

// StateString returns the table's lifecycle state name.
func (t *Table) StateString() string {
	return t.stateString()
}

func (t *Table) stateString() string {
	current := t.state.Current()
	if current == nil {
		return "TERMINATED"
	}
	switch fmt.Sprintf("%p", current) {
	case fmt.Sprintf("%p", tableStateWaitingForPlayers):
		return "WAITING_FOR_PLAYERS"
	case fmt.Sprintf("%p", tableStateReady):
		return "READY"
	case fmt.Sprintf("%p", tableStateHandInProgress):
		return "HAND_IN_PROGRESS"
	case fmt.Sprintf("%p", tableStateHandComplete):
		return "HAND_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// AddPlayer seats a new player backed by a ledger account. Players may not
// join mid-hand.
func (t *Table) AddPlayer(account, name string) (*Player, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseWaiting && t.phase != PhaseHandComplete {
		return nil, fmt.Errorf("cannot join while a hand is in progress")
	}
	if len(t.players) >= t.cfg.MaxPlayers {
		return nil, fmt.Errorf("table is full")
	}
	for _, p := range t.players {
		if p.Account == account {
			return nil, fmt.Errorf("account %s already seated", account)
		}
	}
	if _, err := t.ledger.Balance(account); err != nil {
		return nil, fmt.Errorf("seat account %s: %w", account, err)
	}

	p := NewPlayer(len(t.players), account, name)
	t.players = append(t.players, p)
	t.state.Dispatch(t.state.Current())
	t.log.Debugf("seated %s at seat %d on table %s", name, p.Seat, t.cfg.ID)
	return p, nil
}

// sittingIn returns players who are sitting in. Callers hold the lock.
func (t *Table) sittingIn() []*Player {
	var in []*Player
	for _, p := range t.players {
		if p.SittingIn {
			in = append(in, p)
		}
	}
	return in
}

// nextSittingIn returns the first sitting-in seat strictly after from,
// wrapping. Callers hold the lock.
func (t *Table) nextSittingIn(from int) int {
	n := len(t.players)
	for off := 1; off <= n; off++ {
		seat := (from + off) % n
		if t.players[seat].SittingIn {
			return seat
		}
	}
	return -1
}

// StartHand begins a new hand: per-hand player state is reset, the dealer
// and blinds rotate, a fresh shuffled deck deals the hole cards, blinds
// are posted and the preflop betting round opens left of the big blind.
func (t *Table) StartHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.needsReconciliation {
		return ErrHandAborted
	}
	if t.phase != PhaseWaiting && t.phase != PhaseHandComplete {
		return fmt.Errorf("hand already in progress")
	}

	// Busted players sit out; they keep their seat but take no cards.
	for _, p := range t.players {
		bal, err := t.ledger.Balance(p.Account)
		if err != nil {
			return fmt.Errorf("read stack for seat %d: %w", p.Seat, err)
		}
		p.SittingIn = bal > 0
	}
	active := t.sittingIn()
	if len(active) < 2 {
		return fmt.Errorf("not enough players with chips to start a hand")
	}

	for _, p := range t.players {
		p.ResetForNewHand()
	}

	t.round++
	t.lastShowdown = nil
	t.deck.Shuffle()
	t.pot = NewPotManager(len(t.players), t.ledger, t.log)

	// Rotate the dealer to the next sitting-in seat; small blind is the
	// seat after, big blind the seat after that. Heads-up the dealer
	// posts the small blind.
	t.dealer = t.nextSittingIn(t.dealer)
	sb := t.nextSittingIn(t.dealer)
	if len(active) == 2 {
		sb = t.dealer
	}
	bb := t.nextSittingIn(sb)

	t.players[t.dealer].Role = RoleDealer
	t.players[sb].Role = RoleSmallBlind
	t.players[bb].Role = RoleBigBlind

	if err := t.deck.DealHole(active); err != nil {
		return t.abortHand(err)
	}

	sbPosted, err := t.postBlind(t.players[sb], t.cfg.SmallBlind)
	if err != nil {
		return t.abortHand(err)
	}
	bbPosted, err := t.postBlind(t.players[bb], t.cfg.BigBlind)
	if err != nil {
		return t.abortHand(err)
	}

	// A big blind all-in for less than the small blind's posting must
	// not open the street below a live bet already on the table.
	openBet := bbPosted
	if sbPosted > openBet {
		openBet = sbPosted
	}

	t.phase = PhasePreFlop
	t.betting = NewBettingRound(t.players, t.ledger, t.pot, openBet, (bb+1)%len(t.players), t.log)
	t.state.Dispatch(tableStateHandInProgress)

	t.log.Infof("table %s: hand %d, dealer seat %d, blinds %d/%d",
		t.cfg.ID, t.round, t.dealer, t.cfg.SmallBlind, t.cfg.BigBlind)

	// Blinds can leave every stack all-in before any action; run the
	// board out immediately in that case.
	if t.betting.Closed() {
		if err := t.progress(); err != nil {
			return t.abortHand(err)
		}
	}
	return nil
}

// postBlind posts a forced bet and returns the amount actually posted. A
// blind consuming the whole stack is an all-in, including the exact-stack
// case, so the seat is never asked to act again this hand.
func (t *Table) postBlind(p *Player, amount int64) (int64, error) {
	stack, err := t.ledger.Balance(p.Account)
	if err != nil {
		return 0, err
	}
	if amount >= stack {
		amount = stack
		p.AllIn = true
		t.log.Debugf("seat %d all-in posting blind: %d", p.Seat, amount)
	}
	if err := t.ledger.ApplyDelta(p.Account, -amount); err != nil {
		return 0, fmt.Errorf("post blind for seat %d: %w", p.Seat, err)
	}
	t.pot.AddBet(p.Seat, amount)
	p.StreetBet += amount
	p.HandBet += amount
	return amount, nil
}

// SubmitAction is the sole mutation entrypoint into a running hand. Action
// legality failures are reported in the ActionResult with the table left
// unchanged; a non-nil error means the hand aborted on a fatal
// chip-accounting failure.
func (t *Table) SubmitAction(seat int, kind ActionKind, amount int64) (ActionResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.needsReconciliation {
		return ActionResult{}, ErrHandAborted
	}
	if seat < 0 || seat >= len(t.players) {
		return rejected(ErrNotYourTurn, "no such seat %d", seat), nil
	}
	if t.betting == nil || t.betting.Closed() {
		return rejected(ErrRoundClosed, "no betting round in progress"), nil
	}

	var res ActionResult
	var err error
	switch kind {
	case ActionFold:
		res, err = t.betting.Fold(seat)
	case ActionCheck:
		res, err = t.betting.Check(seat)
	case ActionCall:
		res, err = t.betting.Call(seat)
	case ActionRaise:
		res, err = t.betting.Raise(seat, amount)
	default:
		return rejected(ErrInvalidAmount, "unknown action"), nil
	}
	if err != nil {
		return ActionResult{}, t.abortHand(err)
	}
	if !res.Success {
		return res, nil
	}
	t.log.Debugf("table %s: %s", t.cfg.ID, res.Message)

	if err := t.progress(); err != nil {
		return ActionResult{}, t.abortHand(err)
	}
	return res, nil
}

// progress advances the hand after an accepted action: settling an
// uncontested pot, closing streets, dealing the next card(s) and running
// the showdown. When everyone left is all-in each new street's betting
// round closes immediately, so the board runs out to a full showdown.
func (t *Table) progress() error {
	for {
		if t.betting.uncontested() {
			return t.settleUncontested()
		}
		if !t.betting.Closed() {
			return nil
		}

		if err := t.pot.ReturnUncalled(t.players); err != nil {
			return err
		}
		if err := t.checkPotInvariant(); err != nil {
			return err
		}
		t.pot.ResetStreetBets()
		for _, p := range t.players {
			p.StreetBet = 0
		}

		switch t.phase {
		case PhasePreFlop:
			if err := t.deck.DealFlop(); err != nil {
				return err
			}
			t.phase = PhaseFlop
		case PhaseFlop:
			if err := t.deck.DealTurn(); err != nil {
				return err
			}
			t.phase = PhaseTurn
		case PhaseTurn:
			if err := t.deck.DealRiver(); err != nil {
				return err
			}
			t.phase = PhaseRiver
		case PhaseRiver:
			return t.showdown()
		default:
			return fmt.Errorf("street close in phase %s", t.phase)
		}
		t.log.Debugf("table %s: %s %v", t.cfg.ID, t.phase, t.deck.Community())

		// Postflop action starts left of the dealer.
		t.betting = NewBettingRound(t.players, t.ledger, t.pot, 0, (t.dealer+1)%len(t.players), t.log)
	}
}

// checkPotInvariant cross-checks the pot manager's tally against the
// players' own: every chip debited this hand must be accounted for.
func (t *Table) checkPotInvariant() error {
	var contributed int64
	for _, p := range t.players {
		contributed += p.HandBet
	}
	if contributed != t.pot.Total() {
		return fmt.Errorf("players contributed %d, pot holds %d: %w", contributed, t.pot.Total(), ErrPotImbalance)
	}
	return nil
}

// settleUncontested pays the whole pot to the sole remaining player with
// no showdown evaluation.
func (t *Table) settleUncontested() error {
	if err := t.pot.ReturnUncalled(t.players); err != nil {
		return err
	}
	if err := t.checkPotInvariant(); err != nil {
		return err
	}

	var winner *Player
	for _, p := range t.players {
		if p.InHand() {
			winner = p
			break
		}
	}
	if winner == nil {
		return fmt.Errorf("no player left in hand: %w", ErrPotImbalance)
	}

	total := t.pot.Total()
	if err := t.ledger.ApplyDelta(winner.Account, total); err != nil {
		return fmt.Errorf("credit uncontested pot: %w", err)
	}
	t.lastShowdown = &ShowdownResult{
		TotalPot: total,
		Pots:     []PotResult{{Amount: total, Winners: []int{winner.Seat}}},
	}
	t.finishHand()
	t.log.Infof("table %s: seat %d wins %d uncontested", t.cfg.ID, winner.Seat, total)
	return nil
}

// showdown scores every player still in the hand, carves the pots and
// distributes them through the ledger.
func (t *Table) showdown() error {
	t.phase = PhaseShowdown
	community := t.deck.Community()

	for _, p := range t.players {
		if !p.InHand() {
			continue
		}
		cards := append(append([]Card{}, p.Hand...), community...)
		rank := EvaluateBest(cards)
		p.HandRank = &rank
		t.log.Debugf("table %s: seat %d shows %s (%s)", t.cfg.ID, p.Seat, p.HandString(), rank.Category)
	}

	pots, err := t.pot.BuildHandPots(t.players)
	if err != nil {
		return err
	}
	result, err := t.pot.Distribute(pots, t.players, t.dealer)
	if err != nil {
		return err
	}
	t.lastShowdown = result
	t.finishHand()
	t.log.Infof("table %s: showdown settled %d across %d pot(s)", t.cfg.ID, result.TotalPot, len(result.Pots))
	return nil
}

func (t *Table) finishHand() {
	t.phase = PhaseHandComplete
	t.betting = nil
	t.state.Dispatch(tableStateHandComplete)
}

// abortHand flags the table for manual reconciliation. Chip accounting can
// no longer be trusted, so continuing silently would compound the damage.
func (t *Table) abortHand(err error) error {
	t.needsReconciliation = true
	t.betting = nil
	t.log.Errorf("table %s: hand %d aborted: %v", t.cfg.ID, t.round, err)
	return fmt.Errorf("%w: %v", ErrHandAborted, err)
}

// Round returns the current hand number.
func (t *Table) Round() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.round
}

// Phase returns the current hand phase.
func (t *Table) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// CurrentSeat returns the seat whose action it is, or -1.
func (t *Table) CurrentSeat() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.betting == nil {
		return -1
	}
	return t.betting.Current()
}

// CurrentBet returns the street's bet to match, or zero outside a street.
func (t *Table) CurrentBet() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.betting == nil {
		return 0
	}
	return t.betting.TableBet()
}

// LastShowdown returns the most recent hand settlement, if any.
func (t *Table) LastShowdown() *ShowdownResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastShowdown
}

// NeedsReconciliation reports whether the table aborted on an accounting
// failure and awaits manual repair.
func (t *Table) NeedsReconciliation() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.needsReconciliation
}
