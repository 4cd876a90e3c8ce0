package games

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// BlackjackTarget is the best possible hand total
	BlackjackTarget = 21
	// DealerStandsOn is the total at which the dealer stops drawing
	DealerStandsOn = 17
	// ShoeDecks is the number of 52-card decks in a blackjack shoe
	ShoeDecks = 4
)

var (
	ErrShoeEmpty    = errors.New("shoe has no cards left")
	ErrHandFinished = errors.New("hand is already finished")
	ErrInvalidHand  = errors.New("blackjack hand needs a shoe and a positive stake")
)

// Suit of a playing card
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

var suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank of a playing card, Ace = 1 through King = 13
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Card is a single playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// Value is the card's blackjack value with Aces counted high.
func (c Card) Value() int {
	switch {
	case c.Rank == Ace:
		return 11
	case c.Rank >= Jack:
		return 10
	default:
		return int(c.Rank)
	}
}

func (c Card) String() string {
	var rank string
	switch c.Rank {
	case Ace:
		rank = "A"
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	default:
		rank = fmt.Sprintf("%d", c.Rank)
	}
	return rank + string(c.Suit)
}

// HandValue scores a hand. Aces start at 11 and are reduced to 1 one at a
// time while the total is over 21.
func HandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.Rank == Ace {
			aces++
		}
	}
	for total > BlackjackTarget && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsBust reports whether the hand total is over 21
func IsBust(cards []Card) bool {
	return HandValue(cards) > BlackjackTarget
}

// DealerShouldDraw applies the house policy: draw below 17, no soft-17 rule.
func DealerShouldDraw(total int) bool {
	return total < DealerStandsOn
}

// FormatHand renders cards as "K♠ A♥ (21)"
func FormatHand(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " "), HandValue(cards))
}

// Shoe is an ordered stack of cards drawn from the front.
type Shoe struct {
	cards []Card
	next  int
}

// NewShoe returns decks full 52-card decks in a fixed, unshuffled order.
func NewShoe(decks int) *Shoe {
	cards := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, s := range suits {
			for r := Ace; r <= King; r++ {
				cards = append(cards, Card{Rank: r, Suit: s})
			}
		}
	}
	return &Shoe{cards: cards}
}

// ShoeOf returns a shoe that deals exactly the given cards in order.
func ShoeOf(cards ...Card) *Shoe {
	return &Shoe{cards: append([]Card(nil), cards...)}
}

// Shuffle reorders the undealt cards with the given shuffle function,
// typically (*rand.Rand).Shuffle.
func (s *Shoe) Shuffle(shuffle func(n int, swap func(i, j int))) {
	rest := s.cards[s.next:]
	shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
}

// Draw deals the next card
func (s *Shoe) Draw() (Card, error) {
	if s.next >= len(s.cards) {
		return Card{}, ErrShoeEmpty
	}
	c := s.cards[s.next]
	s.next++
	return c, nil
}

// Remaining is the number of undealt cards
func (s *Shoe) Remaining() int {
	return len(s.cards) - s.next
}

// BlackjackResult names how a hand ended
type BlackjackResult string

const (
	BlackjackPlayerBust BlackjackResult = "player_bust"
	BlackjackDealerBust BlackjackResult = "dealer_bust"
	BlackjackPlayerWin  BlackjackResult = "player_win"
	BlackjackDealerWin  BlackjackResult = "dealer_win"
	BlackjackPush       BlackjackResult = "push"
)

// ResolveBlackjack settles finished hands given both totals.
func ResolveBlackjack(stake int64, playerTotal, dealerTotal int) (BlackjackResult, Outcome) {
	switch {
	case playerTotal > BlackjackTarget:
		return BlackjackPlayerBust, houseWins()
	case dealerTotal > BlackjackTarget:
		return BlackjackDealerBust, playerWins(SeatFirst, 2*stake)
	case playerTotal > dealerTotal:
		return BlackjackPlayerWin, playerWins(SeatFirst, 2*stake)
	case dealerTotal > playerTotal:
		return BlackjackDealerWin, houseWins()
	default:
		return BlackjackPush, push()
	}
}

// BlackjackHand is one player's hand against the dealer. It is not safe for
// concurrent use; the session manager serializes access.
type BlackjackHand struct {
	Stake    int64
	Player   []Card
	Dealer   []Card
	Finished bool
	Result   BlackjackResult

	shoe *Shoe
}

// DealBlackjack deals two cards each, alternating player then dealer. A
// natural 21 ends the player's turn immediately and the dealer plays out.
func DealBlackjack(shoe *Shoe, stake int64) (*BlackjackHand, error) {
	if shoe == nil || stake <= 0 {
		return nil, ErrInvalidHand
	}

	h := &BlackjackHand{Stake: stake, shoe: shoe}
	for i := 0; i < 2; i++ {
		if err := h.drawTo(&h.Player); err != nil {
			return nil, err
		}
		if err := h.drawTo(&h.Dealer); err != nil {
			return nil, err
		}
	}

	if HandValue(h.Player) == BlackjackTarget {
		if err := h.Stand(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Hit draws a card for the player. Going over 21 finishes the hand as a loss
// and reaching exactly 21 stands automatically.
func (h *BlackjackHand) Hit() error {
	if h.Finished {
		return ErrHandFinished
	}
	if err := h.drawTo(&h.Player); err != nil {
		return err
	}

	if IsBust(h.Player) {
		h.finish(HandValue(h.Player), HandValue(h.Dealer))
		return nil
	}
	if HandValue(h.Player) == BlackjackTarget {
		return h.Stand()
	}
	return nil
}

// Stand ends the player's turn and plays the dealer's hand out.
func (h *BlackjackHand) Stand() error {
	if h.Finished {
		return ErrHandFinished
	}
	for DealerShouldDraw(HandValue(h.Dealer)) {
		if err := h.drawTo(&h.Dealer); err != nil {
			return err
		}
	}
	h.finish(HandValue(h.Player), HandValue(h.Dealer))
	return nil
}

// Outcome returns the settlement of a finished hand.
func (h *BlackjackHand) Outcome() (Outcome, error) {
	if !h.Finished {
		return Outcome{}, errors.New("hand is still in play")
	}
	_, outcome := ResolveBlackjack(h.Stake, HandValue(h.Player), HandValue(h.Dealer))
	return outcome, nil
}

// PlayerTotal is the current value of the player's hand
func (h *BlackjackHand) PlayerTotal() int {
	return HandValue(h.Player)
}

// DealerTotal is the current value of the dealer's hand
func (h *BlackjackHand) DealerTotal() int {
	return HandValue(h.Dealer)
}

func (h *BlackjackHand) drawTo(hand *[]Card) error {
	c, err := h.shoe.Draw()
	if err != nil {
		return err
	}
	*hand = append(*hand, c)
	return nil
}

func (h *BlackjackHand) finish(playerTotal, dealerTotal int) {
	h.Result, _ = ResolveBlackjack(h.Stake, playerTotal, dealerTotal)
	h.Finished = true
}

// Clone copies the hand for display. The clone shares the shoe and must not
// be played.
func (h *BlackjackHand) Clone() *BlackjackHand {
	c := *h
	c.Player = slices.Clone(h.Player)
	c.Dealer = slices.Clone(h.Dealer)
	return &c
}
