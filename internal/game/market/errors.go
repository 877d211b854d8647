package market

import (
	"errors"
	"fmt"
)

// Deck names one of the manager's draw piles.
type Deck string

const (
	DeckWeapons Deck = "weapons"
	DeckDemons  Deck = "demons"
)

// TierDeck names the cost-tier deck n (1..5).
func TierDeck(n int) Deck {
	return Deck(fmt.Sprintf("tier-%d", n))
}

var (
	// ErrExhausted matches any *ExhaustedResourceError.
	ErrExhausted = errors.New("deck exhausted")
	// ErrFinalTier is returned when a mix is requested on the last tier.
	ErrFinalTier = errors.New("final tier cannot be mixed")
)

// ExhaustedResourceError reports a draw or reveal from an empty deck. The manager
// never substitutes another deck.
type ExhaustedResourceError struct {
	Deck Deck
}

func (e *ExhaustedResourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExhausted, e.Deck)
}

func (e *ExhaustedResourceError) Is(target error) bool {
	return target == ErrExhausted
}
