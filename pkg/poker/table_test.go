package poker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
)

// newTestTable seats players with the given buy-ins on a deterministic
// table with 5/10 blinds.
func newTestTable(t *testing.T, buyIns []int64, seed int64) (*Table, *ledger.MemLedger) {
	t.Helper()
	lgr := ledger.NewMemLedger()
	table, err := NewTable(TableConfig{
		ID:         "test",
		SmallBlind: 5,
		BigBlind:   10,
		MaxPlayers: len(buyIns),
		Seed:       seed,
	}, lgr)
	require.NoError(t, err)

	for i, buyIn := range buyIns {
		account := fmt.Sprintf("p%d", i)
		require.NoError(t, lgr.CreateAccount(account, buyIn))
		_, err := table.AddPlayer(account, fmt.Sprintf("Player %d", i))
		require.NoError(t, err)
	}
	return table, lgr
}

// playToCompletion drives the hand with every actor calling (or checking
// when there is nothing to match).
func playToCompletion(t *testing.T, table *Table) {
	t.Helper()
	for table.Phase() != PhaseHandComplete {
		seat := table.CurrentSeat()
		require.GreaterOrEqual(t, seat, 0, "hand stalled in phase %s", table.Phase())
		res, err := table.SubmitAction(seat, ActionCall, 0)
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)
	}
}

func totalChips(t *testing.T, lgr ledger.Ledger, n int) int64 {
	t.Helper()
	var sum int64
	for i := 0; i < n; i++ {
		sum += mustBalance(t, lgr, fmt.Sprintf("p%d", i))
	}
	return sum
}

func TestStartHandDealsAndPostsBlinds(t *testing.T) {
	table, lgr := newTestTable(t, []int64{1000, 1000, 1000}, 1)
	require.NoError(t, table.StartHand())

	snap, err := table.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "PRE_FLOP", snap.Phase)
	assert.Equal(t, 0, snap.Dealer)
	assert.Equal(t, "dealer", snap.Seats[0].Role)
	assert.Equal(t, "small blind", snap.Seats[1].Role)
	assert.Equal(t, "big blind", snap.Seats[2].Role)

	// First to act preflop is left of the big blind.
	assert.Equal(t, 0, snap.CurrentSeat)
	assert.Equal(t, int64(10), snap.CurrentBet)
	assert.Equal(t, int64(15), snap.PotTotal)

	assert.Equal(t, int64(1000), mustBalance(t, lgr, "p0"))
	assert.Equal(t, int64(995), mustBalance(t, lgr, "p1"))
	assert.Equal(t, int64(990), mustBalance(t, lgr, "p2"))
	for _, seat := range snap.Seats {
		assert.Len(t, seat.Hand, 2)
	}
	assert.Empty(t, snap.Community)
}

func TestFullHandReachesShowdown(t *testing.T) {
	table, lgr := newTestTable(t, []int64{1000, 1000, 1000}, 2)
	require.NoError(t, table.StartHand())
	playToCompletion(t, table)

	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "HAND_COMPLETE", snap.Phase)
	assert.Len(t, snap.Community, 5)

	sd := snap.LastShowdown
	require.NotNil(t, sd)
	// Everyone called the big blind and checked down.
	assert.Equal(t, int64(30), sd.TotalPot)
	require.NotEmpty(t, sd.Pots)

	// No chips created or destroyed.
	assert.Equal(t, int64(3000), totalChips(t, lgr, 3))
}

func TestUncontestedWinSkipsEvaluation(t *testing.T) {
	table, lgr := newTestTable(t, []int64{1000, 1000}, 3)
	require.NoError(t, table.StartHand())

	// Heads-up: the dealer posts the small blind and acts first.
	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "small blind", snap.Seats[0].Role)
	assert.Equal(t, "big blind", snap.Seats[1].Role)
	require.Equal(t, 0, snap.CurrentSeat)

	res, err := table.SubmitAction(0, ActionFold, 0)
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, PhaseHandComplete, table.Phase())
	sd := table.LastShowdown()
	require.NotNil(t, sd)
	require.Len(t, sd.Pots, 1)
	assert.Equal(t, []int{1}, sd.Pots[0].Winners)

	// The uncalled half of the blind came back; no hands were scored.
	assert.Equal(t, int64(995), mustBalance(t, lgr, "p0"))
	assert.Equal(t, int64(1005), mustBalance(t, lgr, "p1"))
	snap, err = table.Snapshot()
	require.NoError(t, err)
	for _, seat := range snap.Seats {
		assert.Nil(t, seat.HandRank)
	}
}

func TestBlindsRotateBetweenHands(t *testing.T) {
	table, _ := newTestTable(t, []int64{1000, 1000, 1000}, 4)

	require.NoError(t, table.StartHand())
	res, err := table.SubmitAction(0, ActionFold, 0)
	require.NoError(t, err)
	require.True(t, res.Success)
	res, err = table.SubmitAction(1, ActionFold, 0)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, PhaseHandComplete, table.Phase())

	require.NoError(t, table.StartHand())
	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Dealer)
	assert.Equal(t, "dealer", snap.Seats[1].Role)
	assert.Equal(t, "small blind", snap.Seats[2].Role)
	assert.Equal(t, "big blind", snap.Seats[0].Role)
	assert.Equal(t, 2, table.Round())
}

func TestAllInHandsRunOutTheBoard(t *testing.T) {
	table, lgr := newTestTable(t, []int64{100, 60, 30}, 5)
	require.NoError(t, table.StartHand())

	// Dealer shoves, both blinds call all-in short. No further actions
	// are possible, so the board must run out to showdown on its own.
	res, err := table.SubmitAction(0, ActionRaise, 100)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	res, err = table.SubmitAction(1, ActionCall, 0)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	res, err = table.SubmitAction(2, ActionCall, 0)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "HAND_COMPLETE", snap.Phase)
	assert.Len(t, snap.Community, 5)

	sd := snap.LastShowdown
	require.NotNil(t, sd)
	// Seat 0's uncalled 40 came back, leaving 60+60+30 in play.
	assert.Equal(t, int64(150), sd.TotalPot)
	assert.Equal(t, int64(190), totalChips(t, lgr, 3))
}

func TestBlindForWholeStackIsAllIn(t *testing.T) {
	// Heads-up with the big blind holding exactly the blind amount: the
	// posting consumes the whole stack and must be an all-in, not a live
	// bet a later raise could fold out.
	table, lgr := newTestTable(t, []int64{1000, 10}, 13)
	require.NoError(t, table.StartHand())

	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Seats[1].AllIn)
	assert.Zero(t, snap.Seats[1].Stack)
	assert.Equal(t, int64(10), snap.Seats[1].StreetBet)

	res, err := table.SubmitAction(0, ActionRaise, 30)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	playToCompletion(t, table)

	snap, err = table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "HAND_COMPLETE", snap.Phase)
	assert.False(t, snap.Seats[1].Folded, "all-in big blind must reach showdown")
	assert.NotNil(t, snap.LastShowdown)
	assert.Equal(t, int64(1010), totalChips(t, lgr, 2))
}

func TestShortBigBlindDoesNotLowerOpenBet(t *testing.T) {
	// The big blind can only post 3 of the 10; the small blind's 5 is
	// already live, so the street opens at 5, not 3.
	table, lgr := newTestTable(t, []int64{1000, 3}, 14)
	require.NoError(t, table.StartHand())

	assert.Equal(t, int64(5), table.CurrentBet())
	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.Seats[1].AllIn)

	// The small blind already matches the open bet: the action is a
	// check, never a negative-increment "call" crediting chips back.
	res, err := table.SubmitAction(0, ActionCall, 0)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Contains(t, res.Message, "checks")

	// Street close refunded the uncalled 2 and the board ran out.
	assert.Equal(t, int64(997), mustBalance(t, lgr, "p0"))
	playToCompletion(t, table)

	sd := table.LastShowdown()
	require.NotNil(t, sd)
	assert.Equal(t, int64(6), sd.TotalPot)
	assert.Equal(t, int64(1003), totalChips(t, lgr, 2))
}

func TestSubmitActionTurnEnforcement(t *testing.T) {
	table, _ := newTestTable(t, []int64{1000, 1000, 1000}, 6)
	require.NoError(t, table.StartHand())

	res, err := table.SubmitAction(2, ActionCall, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = table.SubmitAction(-1, ActionCall, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = table.SubmitAction(7, ActionCall, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestActionsRejectedBetweenHands(t *testing.T) {
	table, _ := newTestTable(t, []int64{1000, 1000}, 7)
	res, err := table.SubmitAction(0, ActionCheck, 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestAddPlayerValidation(t *testing.T) {
	lgr := ledger.NewMemLedger()
	table, err := NewTable(TableConfig{ID: "t", SmallBlind: 5, BigBlind: 10, MaxPlayers: 2}, lgr)
	require.NoError(t, err)

	_, err = table.AddPlayer("ghost", "Ghost")
	assert.Error(t, err, "unknown ledger account")

	require.NoError(t, lgr.CreateAccount("a", 100))
	require.NoError(t, lgr.CreateAccount("b", 100))
	require.NoError(t, lgr.CreateAccount("c", 100))

	_, err = table.AddPlayer("a", "A")
	require.NoError(t, err)
	_, err = table.AddPlayer("a", "A again")
	assert.Error(t, err, "duplicate account")

	_, err = table.AddPlayer("b", "B")
	require.NoError(t, err)
	_, err = table.AddPlayer("c", "C")
	assert.Error(t, err, "table full")

	require.NoError(t, table.StartHand())
	_, err = table.AddPlayer("c", "C")
	assert.Error(t, err, "mid-hand join")
}

func TestBustedPlayersSitOut(t *testing.T) {
	table, lgr := newTestTable(t, []int64{1000, 1000, 1000}, 8)
	// Empty seat 1's account before the hand starts.
	require.NoError(t, lgr.ApplyDelta("p1", -1000))

	require.NoError(t, table.StartHand())
	snap, err := table.Snapshot()
	require.NoError(t, err)

	assert.False(t, snap.Seats[1].SittingIn)
	assert.Empty(t, snap.Seats[1].Hand)
	// The remaining two play heads-up.
	assert.Equal(t, "small blind", snap.Seats[0].Role)
	assert.Equal(t, "big blind", snap.Seats[2].Role)
}

func TestStartHandNeedsTwoFundedPlayers(t *testing.T) {
	table, lgr := newTestTable(t, []int64{1000, 1000}, 9)
	require.NoError(t, lgr.ApplyDelta("p1", -1000))
	assert.Error(t, table.StartHand())
}

func TestInvalidBlindsRejected(t *testing.T) {
	lgr := ledger.NewMemLedger()
	_, err := NewTable(TableConfig{ID: "t", SmallBlind: 10, BigBlind: 10}, lgr)
	assert.Error(t, err)
	_, err = NewTable(TableConfig{ID: "t", SmallBlind: 0, BigBlind: 10}, lgr)
	assert.Error(t, err)
}

func TestChipConservationOverManyHands(t *testing.T) {
	table, lgr := newTestTable(t, []int64{500, 500, 500, 500}, 10)

	for hand := 0; hand < 20; hand++ {
		if err := table.StartHand(); err != nil {
			// Fewer than two funded players left.
			break
		}
		playToCompletion(t, table)
		require.Equal(t, int64(2000), totalChips(t, lgr, 4), "hand %d", hand)
	}
}

func TestSnapshotWhileHandInProgress(t *testing.T) {
	table, _ := newTestTable(t, []int64{1000, 1000, 1000}, 11)
	require.NoError(t, table.StartHand())

	// Readers may snapshot concurrently with actions.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_, err := table.Snapshot()
			assert.NoError(t, err)
		}
	}()

	playToCompletion(t, table)
	close(stop)
	wg.Wait()

	snap, err := table.Snapshot()
	require.NoError(t, err)
	assert.False(t, snap.NeedsReconciliation)
}

func TestManagerRoutesActions(t *testing.T) {
	lgr := ledger.NewMemLedger()
	mgr := NewManager(lgr, nil)

	_, err := mgr.CreateTable(TableConfig{SmallBlind: 5, BigBlind: 10})
	assert.Error(t, err, "id required")

	cfg := TableConfig{ID: "t1", SmallBlind: 5, BigBlind: 10, Seed: 12}
	table, err := mgr.CreateTable(cfg)
	require.NoError(t, err)
	_, err = mgr.CreateTable(cfg)
	assert.Error(t, err, "duplicate id")

	got, err := mgr.GetTable("t1")
	require.NoError(t, err)
	assert.Same(t, table, got)
	_, err = mgr.GetTable("nope")
	assert.Error(t, err)

	for i := 0; i < 2; i++ {
		account := fmt.Sprintf("p%d", i)
		require.NoError(t, lgr.CreateAccount(account, 1000))
		_, err = table.AddPlayer(account, account)
		require.NoError(t, err)
	}
	require.NoError(t, table.StartHand())

	res, err := mgr.SubmitAction("t1", table.CurrentSeat(), ActionCall, 0)
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)
	_, err = mgr.SubmitAction("nope", 0, ActionCall, 0)
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{"t1"}, mgr.Tables())
	assert.Error(t, mgr.RemoveTable("t1"), "mid-hand")
	playToCompletion(t, table)
	require.NoError(t, mgr.RemoveTable("t1"))
	assert.Error(t, mgr.RemoveTable("t1"))
}
