package abilities

import (
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
)

// PassiveSet is the union of passive flags present on a board.
type PassiveSet uint8

var passiveBits = map[catalog.Passive]PassiveSet{
	catalog.PassiveNoBoardSlot:  1 << 0,
	catalog.PassiveNoDefense:    1 << 1,
	catalog.PassiveWeaponAccess: 1 << 2,
	catalog.PassiveDemonAccess:  1 << 3,
}

// Has reports whether p is in the set.
func (s PassiveSet) Has(p catalog.Passive) bool {
	bit, ok := passiveBits[p]
	return ok && s&bit != 0
}

func (s PassiveSet) with(p catalog.Passive) PassiveSet {
	return s | passiveBits[p]
}

// Diagnostic records a free-text clause that lenient resolution treated as zero.
type Diagnostic struct {
	Instance string
	CardID   string
	Clause   string
}

// Bundle is the aggregate bonus of one player's board. It is recomputed on demand and
// never stored on player state.
type Bundle struct {
	Attack      int
	Health      int
	Unblockable int
	Spell       int
	Currency    int
	Capacity    int
	SelfDamage  int
	Passives    PassiveSet
	Diagnostics []Diagnostic
}

// Apply accumulates one effect.
func (b *Bundle) Apply(e effects.Effect) {
	switch e.Kind {
	case effects.KindAttack:
		b.Attack += e.Amount
	case effects.KindHealth:
		b.Health += e.Amount
	case effects.KindUnblockable:
		b.Unblockable += e.Amount
	case effects.KindSpell:
		b.Spell += e.Amount
	case effects.KindCurrency:
		b.Currency += e.Amount
	case effects.KindCapacity:
		b.Capacity += e.Amount
	case effects.KindSelfDamage:
		b.SelfDamage += e.Amount
	}
}

// ApplyAll accumulates every effect in list.
func (b *Bundle) ApplyAll(list []effects.Effect) {
	for _, e := range list {
		b.Apply(e)
	}
}

// CountsTowardCapacity reports whether card occupies a board slot.
func CountsTowardCapacity(card catalog.Card) bool {
	return !card.Has(catalog.PassiveNoBoardSlot)
}

// CountsTowardDefense reports whether card's health defends its owner.
func CountsTowardDefense(card catalog.Card) bool {
	return !card.Has(catalog.PassiveNoDefense)
}
