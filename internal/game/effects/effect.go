package effects

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which bundle accumulator an effect feeds.
type Kind string

const (
	KindAttack      Kind = "attack"
	KindHealth      Kind = "health"
	KindUnblockable Kind = "unblockable"
	KindSpell       Kind = "spell"
	KindCurrency    Kind = "currency"
	KindCapacity    Kind = "capacity"
	KindSelfDamage  Kind = "self_damage"
)

var knownKinds = map[Kind]bool{
	KindAttack:      true,
	KindHealth:      true,
	KindUnblockable: true,
	KindSpell:       true,
	KindCurrency:    true,
	KindCapacity:    true,
	KindSelfDamage:  true,
}

// Valid reports whether k is one of the known effect kinds.
func (k Kind) Valid() bool {
	return knownKinds[k]
}

// Effect is one structured numeric effect. Amount may be negative for penalties.
type Effect struct {
	Kind   Kind `yaml:"kind"`
	Amount int  `yaml:"amount"`
}

func (e Effect) String() string {
	return fmt.Sprintf("%s%+d", e.Kind, e.Amount)
}

// Mode selects how unmatched free-text clauses are handled.
type Mode int

const (
	// Strict fails resolution on the first unmatched clause.
	Strict Mode = iota
	// Lenient treats unmatched clauses as zero and reports them as diagnostics.
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("MODE_%d", int(m))
	}
}

// ParseMode converts a configured mode name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown effect mode %q", name)
	}
}

// ErrUnresolvedEffect matches every *UnresolvedEffectError via errors.Is.
var ErrUnresolvedEffect = errors.New("unresolved effect")

// UnresolvedEffectError reports a free-text clause absent from the pattern table.
type UnresolvedEffectError struct {
	CardID  string
	Text    string
	Clause  string
	Version string
}

func (e *UnresolvedEffectError) Error() string {
	if e.CardID != "" {
		return fmt.Sprintf("card %s: effect clause %q not in pattern table %s", e.CardID, e.Clause, e.Version)
	}
	return fmt.Sprintf("effect clause %q not in pattern table %s", e.Clause, e.Version)
}

func (e *UnresolvedEffectError) Is(target error) bool {
	return target == ErrUnresolvedEffect
}
