package market

import (
	"fmt"
	"slices"
)

// Tiers is the number of cost-tier decks.
const Tiers = 5

// RNG is the randomness the manager draws from. *rand.Rand from math/rand/v2 satisfies it.
type RNG interface {
	IntN(n int) int
}

// Manager owns the five tier decks, the visible market window and the weapon and demon
// decks. The top of every deck is the end of its slice.
type Manager struct {
	tiers    [Tiers][]string
	window   []string
	weapons  []string
	demons   []string
	size     int
	current  int
	mixTurns []int
}

// MixResult describes one deck-mixing transformation.
type MixResult struct {
	From      int
	To        int
	Promoted  []string
	Discarded []string
}

// New builds a manager and shuffles every deck once. tiers[0] is the tier-1 deck.
func New(tiers [Tiers][]string, weapons, demons []string, size int, mixTurns []int, rng RNG) (*Manager, error) {
	if size <= 0 {
		return nil, fmt.Errorf("market size must be positive, got %d", size)
	}
	m := &Manager{
		weapons:  slices.Clone(weapons),
		demons:   slices.Clone(demons),
		size:     size,
		current:  1,
		mixTurns: slices.Clone(mixTurns),
	}
	for i := range tiers {
		m.tiers[i] = slices.Clone(tiers[i])
		shuffle(rng, m.tiers[i])
	}
	shuffle(rng, m.weapons)
	shuffle(rng, m.demons)
	return m, nil
}

func shuffle(rng RNG, s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func pop(deck *[]string) (string, bool) {
	n := len(*deck)
	if n == 0 {
		return "", false
	}
	top := (*deck)[n-1]
	*deck = (*deck)[:n-1]
	return top, true
}

// Refill tops the window up to its size from the current tier deck and returns the
// revealed instances. When the deck runs dry it returns what was revealed together
// with an *ExhaustedResourceError.
func (m *Manager) Refill() ([]string, error) {
	var revealed []string
	deck := &m.tiers[m.current-1]
	for len(m.window) < m.size {
		id, ok := pop(deck)
		if !ok {
			return revealed, &ExhaustedResourceError{Deck: TierDeck(m.current)}
		}
		m.window = append(m.window, id)
		revealed = append(revealed, id)
	}
	return revealed, nil
}

// Contains reports whether id is visible in the market window.
func (m *Manager) Contains(id string) bool {
	return slices.Contains(m.window, id)
}

// Take removes id from the window. It reports false when id is not on offer.
func (m *Manager) Take(id string) bool {
	i := slices.Index(m.window, id)
	if i < 0 {
		return false
	}
	m.window = slices.Delete(m.window, i, i+1)
	return true
}

// TopWeapon returns the next weapon without drawing it.
func (m *Manager) TopWeapon() (string, bool) {
	if len(m.weapons) == 0 {
		return "", false
	}
	return m.weapons[len(m.weapons)-1], true
}

// DrawWeapon draws the top of the weapon deck.
func (m *Manager) DrawWeapon() (string, error) {
	id, ok := pop(&m.weapons)
	if !ok {
		return "", &ExhaustedResourceError{Deck: DeckWeapons}
	}
	return id, nil
}

// DrawDemon draws the top of the demon deck.
func (m *Manager) DrawDemon() (string, error) {
	id, ok := pop(&m.demons)
	if !ok {
		return "", &ExhaustedResourceError{Deck: DeckDemons}
	}
	return id, nil
}

// ShouldMix reports whether the end of turn is a mixing checkpoint that still has a
// higher tier to feed.
func (m *Manager) ShouldMix(turn int) bool {
	return m.current < Tiers && slices.Contains(m.mixTurns, turn)
}

// Mix pools the current tier deck with the market window, shuffles the pool and cuts it
// at a uniformly random point. The head is merged into the next tier, which is then
// reshuffled. The tail is returned as Discarded and never comes back. The current tier
// advances, so the old tier is never drawn from again.
func (m *Manager) Mix(rng RNG) (MixResult, error) {
	if m.current >= Tiers {
		return MixResult{}, ErrFinalTier
	}
	from := m.current
	pool := append(slices.Clone(m.tiers[from-1]), m.window...)
	shuffle(rng, pool)
	cut := rng.IntN(len(pool) + 1)

	res := MixResult{
		From:      from,
		To:        from + 1,
		Promoted:  slices.Clone(pool[:cut]),
		Discarded: slices.Clone(pool[cut:]),
	}

	next := &m.tiers[from]
	*next = append(*next, res.Promoted...)
	shuffle(rng, *next)

	m.tiers[from-1] = nil
	m.window = nil
	m.current++
	return res, nil
}

// Clone returns an independent copy.
func (m *Manager) Clone() *Manager {
	c := &Manager{
		window:   slices.Clone(m.window),
		weapons:  slices.Clone(m.weapons),
		demons:   slices.Clone(m.demons),
		size:     m.size,
		current:  m.current,
		mixTurns: slices.Clone(m.mixTurns),
	}
	for i := range m.tiers {
		c.tiers[i] = slices.Clone(m.tiers[i])
	}
	return c
}

// CurrentTier returns the tier the window is revealed from.
func (m *Manager) CurrentTier() int { return m.current }

// Size returns the configured window size.
func (m *Manager) Size() int { return m.size }

// Window returns the visible market in reveal order.
func (m *Manager) Window() []string { return slices.Clone(m.window) }

// Deck returns a copy of tier deck n, bottom first. Out of range tiers are empty.
func (m *Manager) Deck(n int) []string {
	if n < 1 || n > Tiers {
		return nil
	}
	return slices.Clone(m.tiers[n-1])
}

// Weapons returns a copy of the weapon deck, bottom first.
func (m *Manager) Weapons() []string { return slices.Clone(m.weapons) }

// Demons returns a copy of the demon deck, bottom first.
func (m *Manager) Demons() []string { return slices.Clone(m.demons) }

// MixTurns returns the checkpoint turns.
func (m *Manager) MixTurns() []int { return slices.Clone(m.mixTurns) }
