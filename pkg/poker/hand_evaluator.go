package poker

import (
	"sort"
)

// Category is the class of a 5-card poker hand. Lower is better: 1 is a
// straight flush, 9 is high card.
type Category int

const (
	StraightFlush Category = iota + 1
	FourOfAKind
	FullHouse
	Flush
	Straight
	ThreeOfAKind
	TwoPair
	OnePair
	HighCard
)

// String returns the display name of the category.
func (c Category) String() string {
	switch c {
	case StraightFlush:
		return "Straight Flush"
	case FourOfAKind:
		return "Four of a Kind"
	case FullHouse:
		return "Full House"
	case Flush:
		return "Flush"
	case Straight:
		return "Straight"
	case ThreeOfAKind:
		return "Three of a Kind"
	case TwoPair:
		return "Two Pair"
	case OnePair:
		return "One Pair"
	case HighCard:
		return "High Card"
	default:
		return "Unknown"
	}
}

// HandRank is a comparable score for a hand: a category plus a tiebreaker
// list in descending significance (e.g. Full House -> [trip rank, pair
// rank]; Flush -> all five ranks descending). It is used only for
// comparison and never persisted.
type HandRank struct {
	Category  Category
	Tiebreaks []int
}

// CompareHands compares two hand ranks and returns 1 if a beats b, -1 if b
// beats a and 0 on a tie. Lower category wins; equal categories compare
// tiebreaker lists element by element, larger element winning. The ordering
// is a strict weak ordering, so it is safe for sorting and grouping winners.
func CompareHands(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Tiebreaks) && i < len(b.Tiebreaks); i++ {
		if a.Tiebreaks[i] != b.Tiebreaks[i] {
			if a.Tiebreaks[i] > b.Tiebreaks[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// valueToInt converts a card Value to its rank, ace high (2..14).
func valueToInt(value Value) int {
	switch value {
	case Ace:
		return 14
	case King:
		return 13
	case Queen:
		return 12
	case Jack:
		return 11
	case Ten:
		return 10
	case Nine:
		return 9
	case Eight:
		return 8
	case Seven:
		return 7
	case Six:
		return 6
	case Five:
		return 5
	case Four:
		return 4
	case Three:
		return 3
	case Two:
		return 2
	default:
		return 0
	}
}

// Evaluate5 scores exactly five cards.
func Evaluate5(cards []Card) HandRank {
	if len(cards) != 5 {
		panic("poker: Evaluate5 requires exactly 5 cards")
	}

	vals := make([]int, 5)
	freq := make(map[int]int, 5)
	suits := make(map[Suit]bool, 4)
	for i, c := range cards {
		vals[i] = valueToInt(c.value)
		freq[vals[i]]++
		suits[c.suit] = true
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))

	isFlush := len(suits) == 1

	isStraight := true
	for i := 0; i < 4; i++ {
		if vals[i] != vals[i+1]+1 {
			isStraight = false
			break
		}
	}
	top := vals[0]
	// The wheel: A-2-3-4-5 is a straight whose top card is the five.
	if !isStraight && vals[0] == 14 && vals[1] == 5 && vals[2] == 4 && vals[3] == 3 && vals[4] == 2 {
		isStraight = true
		top = 5
	}

	// Rank groups ordered by multiplicity, then rank, both descending.
	type group struct {
		rank  int
		count int
	}
	groups := make([]group, 0, len(freq))
	for r, n := range freq {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case isStraight && isFlush:
		return HandRank{Category: StraightFlush, Tiebreaks: []int{top}}
	case groups[0].count == 4:
		return HandRank{Category: FourOfAKind, Tiebreaks: []int{groups[0].rank, groups[1].rank}}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Tiebreaks: []int{groups[0].rank, groups[1].rank}}
	case isFlush:
		return HandRank{Category: Flush, Tiebreaks: vals}
	case isStraight:
		return HandRank{Category: Straight, Tiebreaks: []int{top}}
	case groups[0].count == 3:
		return HandRank{Category: ThreeOfAKind, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRank{Category: TwoPair, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case groups[0].count == 2:
		return HandRank{Category: OnePair, Tiebreaks: []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}}
	default:
		return HandRank{Category: HighCard, Tiebreaks: vals}
	}
}

// EvaluateBest scores the best 5-card hand contained in cards (typically
// two hole cards plus five community cards). All C(7,5)=21 subsets are
// enumerated; at this scale brute force is simple and fast enough.
func EvaluateBest(cards []Card) HandRank {
	if len(cards) == 5 {
		return Evaluate5(cards)
	}
	if len(cards) < 5 {
		panic("poker: EvaluateBest requires at least 5 cards")
	}

	var best HandRank
	for _, combo := range combinations(cards, 5) {
		r := Evaluate5(combo)
		if best.Tiebreaks == nil || CompareHands(r, best) > 0 {
			best = r
		}
	}
	return best
}

// combinations generates all k-card subsets of cards.
func combinations(cards []Card, k int) [][]Card {
	var out [][]Card
	if k > len(cards) || k <= 0 {
		return out
	}

	var generate func(start int, current []Card)
	generate = func(start int, current []Card) {
		if len(current) == k {
			combo := make([]Card, k)
			copy(combo, current)
			out = append(out, combo)
			return
		}
		for i := start; i <= len(cards)-(k-len(current)); i++ {
			generate(i+1, append(current, cards[i]))
		}
	}

	generate(0, make([]Card, 0, k))
	return out
}
