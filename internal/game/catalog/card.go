package catalog

import (
	"errors"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
)

// Kind separates market creatures from the class-gated weapon and demon decks.
type Kind string

const (
	KindCreature Kind = "creature"
	KindWeapon   Kind = "weapon"
	KindDemon    Kind = "demon"
)

// Passive is a binary flag altering how the executor or combat treats a card.
type Passive string

const (
	// PassiveNoBoardSlot cards do not count toward board capacity.
	PassiveNoBoardSlot Passive = "no_board_slot"
	// PassiveNoDefense cards contribute no health to their owner's defense.
	PassiveNoDefense Passive = "no_defense"
	// PassiveWeaponAccess enables the equip action for its owner.
	PassiveWeaponAccess Passive = "weapon_access"
	// PassiveDemonAccess makes sacrifices summon the top demon into hand.
	PassiveDemonAccess Passive = "demon_access"
)

var knownPassives = map[Passive]bool{
	PassiveNoBoardSlot:  true,
	PassiveNoDefense:    true,
	PassiveWeaponAccess: true,
	PassiveDemonAccess:  true,
}

// Resource is what a conditional ability commitment is paid with.
type Resource string

const (
	ResourcePO     Resource = "po"
	ResourceHealth Resource = "health"
)

// ScalingTier is one (threshold, effect) pair of a scaling ability.
type ScalingTier struct {
	Threshold int              `yaml:"threshold"`
	Effects   []effects.Effect `yaml:"effects"`
}

// ScalingAbility scales with how many matching cards are on the board.
type ScalingAbility struct {
	Tiers []ScalingTier `yaml:"tiers"`
}

// Empty reports whether the ability has no tiers.
func (a ScalingAbility) Empty() bool {
	return len(a.Tiers) == 0
}

// Select returns the tier with the highest threshold met by count. Lower tiers are
// superseded, never added.
func (a ScalingAbility) Select(count int) (ScalingTier, bool) {
	var (
		best  ScalingTier
		found bool
	)
	for _, tier := range a.Tiers {
		if tier.Threshold <= count && (!found || tier.Threshold > best.Threshold) {
			best, found = tier, true
		}
	}
	return best, found
}

// ConditionalTier is one (cost, effect) pair of a conditional ability.
type ConditionalTier struct {
	Cost    int              `yaml:"cost"`
	Effects []effects.Effect `yaml:"effects"`
}

// ConditionalAbility is gated on a resource commitment declared by the owner.
type ConditionalAbility struct {
	Resource Resource          `yaml:"resource"`
	Tiers    []ConditionalTier `yaml:"tiers"`
}

// Empty reports whether the ability has no tiers.
func (a ConditionalAbility) Empty() bool {
	return len(a.Tiers) == 0
}

// Select returns the most expensive tier affordable with spend.
func (a ConditionalAbility) Select(spend int) (ConditionalTier, bool) {
	var (
		best  ConditionalTier
		found bool
	)
	for _, tier := range a.Tiers {
		if tier.Cost <= spend && (!found || tier.Cost > best.Cost) {
			best, found = tier, true
		}
	}
	return best, found
}

// Card is an immutable catalog entry. The engine references cards by ID and never
// mutates them.
type Card struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Kind          Kind               `yaml:"kind"`
	Cost          int                `yaml:"cost"`
	Level         int                `yaml:"level"`
	Family        string             `yaml:"family"`
	Class         string             `yaml:"class"`
	Attack        int                `yaml:"attack"`
	Health        int                `yaml:"health"`
	FamilyAbility ScalingAbility     `yaml:"family_ability"`
	ClassAbility  ScalingAbility     `yaml:"class_ability"`
	Conditional   ConditionalAbility `yaml:"conditional"`
	Passives      []Passive          `yaml:"passives"`
	Effect        string             `yaml:"effect"`
}

// Has reports whether the card carries passive p.
func (c Card) Has(p Passive) bool {
	for _, have := range c.Passives {
		if have == p {
			return true
		}
	}
	return false
}

// ErrNotFound is returned by providers for unknown ids or name/level pairs.
var ErrNotFound = errors.New("card not found")

// Provider is the read-only catalog handle injected into the engine.
type Provider interface {
	Lookup(id string) (Card, error)
	LookupByNameAndLevel(name string, level int) (Card, error)
	// Cards lists every entry in a stable order.
	Cards() []Card
}
