package poker

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Value represents a card value
type Value string

const (
	Ace   Value = "A"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
	Ten   Value = "10"
	Jack  Value = "J"
	Queen Value = "Q"
	King  Value = "K"
)

// Card represents a playing card. Cards have no identity beyond their suit
// and value; equality is by value.
type Card struct {
	suit  Suit
	value Value
}

// NewCard creates a card with the given suit and value.
func NewCard(suit Suit, value Value) Card {
	return Card{suit: suit, value: value}
}

// String returns a string representation of the card, e.g. "A♠".
func (c Card) String() string {
	return string(c.value) + string(c.suit)
}

// GetSuit returns the card's suit.
func (c Card) GetSuit() Suit { return c.suit }

// GetValue returns the card's value.
func (c Card) GetValue() Value { return c.value }

// CardJSON is the wire form of a card.
type CardJSON struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler for Card.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(CardJSON{
		Suit:  string(c.suit),
		Value: string(c.value),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Card. Letter forms used by
// other poker tooling ("s", "T", ...) are accepted.
func (c *Card) UnmarshalJSON(data []byte) error {
	var cardJSON CardJSON
	if err := json.Unmarshal(data, &cardJSON); err != nil {
		return err
	}

	switch cardJSON.Suit {
	case "♠", "s", "S":
		c.suit = Spades
	case "♥", "h", "H":
		c.suit = Hearts
	case "♦", "d", "D":
		c.suit = Diamonds
	case "♣", "c", "C":
		c.suit = Clubs
	default:
		return fmt.Errorf("invalid suit: %s", cardJSON.Suit)
	}

	switch cardJSON.Value {
	case "A", "a":
		c.value = Ace
	case "K", "k":
		c.value = King
	case "Q", "q":
		c.value = Queen
	case "J", "j":
		c.value = Jack
	case "10", "T", "t":
		c.value = Ten
	case "9", "8", "7", "6", "5", "4", "3", "2":
		c.value = Value(cardJSON.Value)
	default:
		return fmt.Errorf("invalid value: %s", cardJSON.Value)
	}

	return nil
}

// Deck owns the 52-card shoe for one hand along with the revealed community
// cards and the burn pile. A card is in exactly one of {shoe, a player's
// hole cards, community, burned} at any time.
//
// Burn policy: one card is burned before each of the flop, turn and river.
// The original game defined a burn but never performed it; dealing here is
// faithful to live play instead.
type Deck struct {
	cards     []Card
	community []Card
	burned    []Card
	rng       *rand.Rand
}

// NewDeck creates a shuffled deck using the given random source. The source
// must not be nil: randomness is always injected so hands can be replayed
// deterministically under test.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Shuffle()
	return d
}

// Shuffle resets the deck to all 52 cards in a uniformly random order and
// clears the community cards and burn pile.
func (d *Deck) Shuffle() {
	d.cards = d.cards[:0]
	if d.cards == nil {
		d.cards = make([]Card, 0, 52)
	}
	d.community = nil
	d.burned = nil

	suits := []Suit{Spades, Hearts, Diamonds, Clubs}
	values := []Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
	for _, suit := range suits {
		for _, value := range values {
			d.cards = append(d.cards, Card{suit: suit, value: value})
		}
	}

	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top n cards. It fails with ErrEmptyDeck if n
// exceeds the remaining cards; given fixed player counts this indicates an
// internal invariant violation, not a user error.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, fmt.Errorf("draw %d of %d: %w", n, len(d.cards), ErrEmptyDeck)
	}
	drawn := make([]Card, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn, nil
}

// burn moves one card from the shoe to the burn pile.
func (d *Deck) burn() error {
	cards, err := d.Draw(1)
	if err != nil {
		return err
	}
	d.burned = append(d.burned, cards[0])
	return nil
}

// DealHole deals two hole cards to each player round-robin, clearing any
// prior hand first.
func (d *Deck) DealHole(players []*Player) error {
	for _, p := range players {
		p.Hand = p.Hand[:0]
	}
	for i := 0; i < 2; i++ {
		for _, p := range players {
			cards, err := d.Draw(1)
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, cards[0])
		}
	}
	return nil
}

// DealFlop burns one card and deals three community cards.
func (d *Deck) DealFlop() error { return d.dealStreet(3) }

// DealTurn burns one card and deals the fourth community card.
func (d *Deck) DealTurn() error { return d.dealStreet(1) }

// DealRiver burns one card and deals the fifth community card.
func (d *Deck) DealRiver() error { return d.dealStreet(1) }

func (d *Deck) dealStreet(n int) error {
	if err := d.burn(); err != nil {
		return err
	}
	cards, err := d.Draw(n)
	if err != nil {
		return err
	}
	d.community = append(d.community, cards...)
	return nil
}

// Community returns a copy of the revealed community cards (0..5).
func (d *Deck) Community() []Card {
	out := make([]Card, len(d.community))
	copy(out, d.community)
	return out
}

// Size returns the number of cards remaining in the shoe.
func (d *Deck) Size() int { return len(d.cards) }

// Burned returns the number of burned cards.
func (d *Deck) Burned() int { return len(d.burned) }
