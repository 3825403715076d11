package poker

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenacioustuna22/PokerWebsite/pkg/ledger"
)

func TestBuildPotsLayeredAllIns(t *testing.T) {
	// Three all-ins at 50, 150 and 300: main pot 150 for everyone, a 200
	// side pot for the top two, and the 150 overage only its owner can win.
	contribs := []int64{50, 150, 300}
	folded := []bool{false, false, false}

	pots := BuildPots(contribs, folded)
	require.Len(t, pots, 3, spew.Sdump(pots))

	assert.Equal(t, int64(150), pots[0].Amount)
	assert.Equal(t, []bool{true, true, true}, pots[0].Eligible)

	assert.Equal(t, int64(200), pots[1].Amount)
	assert.Equal(t, []bool{false, true, true}, pots[1].Eligible)

	assert.Equal(t, int64(150), pots[2].Amount)
	assert.Equal(t, []bool{false, false, true}, pots[2].Eligible)
}

func TestBuildPotsFoldedChipsStayIn(t *testing.T) {
	// A folded seat's chips remain in the pot but the seat is never
	// eligible; equal eligibility collapses into a single pot.
	contribs := []int64{100, 100, 40}
	folded := []bool{false, false, true}

	pots := BuildPots(contribs, folded)
	require.Len(t, pots, 1, spew.Sdump(pots))
	assert.Equal(t, int64(240), pots[0].Amount)
	assert.Equal(t, []bool{true, true, false}, pots[0].Eligible)
}

func TestBuildPotsNoContributions(t *testing.T) {
	pots := BuildPots([]int64{0, 0}, []bool{false, false})
	require.Len(t, pots, 1)
	assert.Zero(t, pots[0].Amount)
}

func TestBuildPotsConserveChips(t *testing.T) {
	cases := [][]int64{
		{10, 20, 30, 40},
		{100, 100, 100},
		{5, 0, 5, 250},
		{1, 2, 3, 4, 5, 6},
	}
	for _, contribs := range cases {
		pots := BuildPots(contribs, make([]bool, len(contribs)))
		var total, potSum int64
		for _, c := range contribs {
			total += c
		}
		for _, p := range pots {
			potSum += p.Amount
		}
		assert.Equal(t, total, potSum, "contribs %v", contribs)
	}
}

// newTestPot funds n accounts and stages the given hand contributions.
func newTestPot(t *testing.T, contribs []int64) (*PotManager, []*Player, *ledger.MemLedger) {
	t.Helper()
	lgr := ledger.NewMemLedger()
	players := make([]*Player, len(contribs))
	pm := NewPotManager(len(contribs), lgr, nil)
	for i, c := range contribs {
		account := string(rune('a' + i))
		require.NoError(t, lgr.CreateAccount(account, 0))
		players[i] = NewPlayer(i, account, "P"+account)
		pm.AddBet(i, c)
		players[i].StreetBet = c
		players[i].HandBet = c
	}
	return pm, players, lgr
}

func TestReturnUncalledBet(t *testing.T) {
	pm, players, lgr := newTestPot(t, []int64{100, 40})
	players[1].Folded = true

	require.NoError(t, pm.ReturnUncalled(players))
	assert.Equal(t, int64(60), mustBalance(t, lgr, "a"))
	assert.Equal(t, int64(40), players[0].StreetBet)
	assert.Equal(t, int64(40), players[0].HandBet)
	assert.Equal(t, int64(80), pm.Total())
}

func TestReturnUncalledNoopWhenMatched(t *testing.T) {
	pm, players, lgr := newTestPot(t, []int64{100, 100})
	require.NoError(t, pm.ReturnUncalled(players))
	assert.Equal(t, int64(0), mustBalance(t, lgr, "a"))
	assert.Equal(t, int64(200), pm.Total())
}

func TestDistributeSingleWinner(t *testing.T) {
	pm, players, lgr := newTestPot(t, []int64{50, 50, 50})
	players[0].HandRank = &HandRank{Category: OnePair, Tiebreaks: []int{10, 14, 8, 3}}
	players[1].HandRank = &HandRank{Category: Flush, Tiebreaks: []int{13, 11, 8, 5, 2}}
	players[2].HandRank = &HandRank{Category: HighCard, Tiebreaks: []int{14, 12, 9, 5, 3}}

	pots, err := pm.BuildHandPots(players)
	require.NoError(t, err)
	result, err := pm.Distribute(pots, players, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(150), result.TotalPot)
	require.Len(t, result.Pots, 1)
	assert.Equal(t, []int{1}, result.Pots[0].Winners)
	assert.Equal(t, int64(150), mustBalance(t, lgr, "b"))
}

func TestDistributeOddChipGoesLeftOfDealer(t *testing.T) {
	pm, players, lgr := newTestPot(t, []int64{33, 33, 35})
	rank := HandRank{Category: Straight, Tiebreaks: []int{9}}
	players[0].HandRank = &rank
	players[2].HandRank = &rank
	players[1].HandRank = &HandRank{Category: HighCard, Tiebreaks: []int{13, 10, 8, 6, 2}}

	// Seat 2's overage comes back before the pots are built.
	require.NoError(t, pm.ReturnUncalled(players))
	pots, err := pm.BuildHandPots(players)
	require.NoError(t, err)

	// 99 chips split between tied seats 0 and 2 with the dealer at 1: the
	// first winner after the dealer is seat 2, which takes the odd chip.
	result, err := pm.Distribute(pots, players, 1)
	require.NoError(t, err)

	require.Len(t, result.Pots, 1)
	assert.ElementsMatch(t, []int{0, 2}, result.Pots[0].Winners)
	assert.Equal(t, int64(49), mustBalance(t, lgr, "a"))
	assert.Equal(t, int64(50+2), mustBalance(t, lgr, "c"))
}

func TestDistributeSidePots(t *testing.T) {
	// Seat 0 is all-in short with the best hand: it wins only the main
	// pot, the side pot goes to the better of the remaining two.
	pm, players, lgr := newTestPot(t, []int64{40, 100, 100})
	players[0].AllIn = true
	players[0].HandRank = &HandRank{Category: FullHouse, Tiebreaks: []int{9, 4}}
	players[1].HandRank = &HandRank{Category: TwoPair, Tiebreaks: []int{12, 4, 9}}
	players[2].HandRank = &HandRank{Category: OnePair, Tiebreaks: []int{8, 14, 11, 3}}

	pots, err := pm.BuildHandPots(players)
	require.NoError(t, err)
	require.Len(t, pots, 2)

	result, err := pm.Distribute(pots, players, 2)
	require.NoError(t, err)

	require.Len(t, result.Pots, 2)
	assert.Equal(t, int64(120), result.Pots[0].Amount)
	assert.Equal(t, []int{0}, result.Pots[0].Winners)
	assert.Equal(t, int64(120), result.Pots[1].Amount)
	assert.Equal(t, []int{1}, result.Pots[1].Winners)

	assert.Equal(t, int64(120), mustBalance(t, lgr, "a"))
	assert.Equal(t, int64(120), mustBalance(t, lgr, "b"))
	assert.Equal(t, int64(0), mustBalance(t, lgr, "c"))
}

func TestDistributeRequiresRankedWinners(t *testing.T) {
	pm, players, _ := newTestPot(t, []int64{50, 50})
	players[0].HandRank = &HandRank{Category: HighCard, Tiebreaks: []int{14, 12, 9, 5, 3}}
	// Seat 1 never got scored.

	pots, err := pm.BuildHandPots(players)
	require.NoError(t, err)
	_, err = pm.Distribute(pots, players, 0)
	assert.Error(t, err)
}
