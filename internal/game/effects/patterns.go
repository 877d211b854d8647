package effects

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// VersionV1 is the first published pattern table.
const VersionV1 = "v1"

type pattern struct {
	name  string
	re    *regexp.Regexp
	build func(n int) []Effect
}

func amount(kind Kind, sign int) func(int) []Effect {
	return func(n int) []Effect {
		return []Effect{{Kind: kind, Amount: sign * n}}
	}
}

// Table maps normalised effect clauses onto structured effects. A Table is immutable
// after construction and safe for concurrent use.
type Table struct {
	version  string
	patterns []pattern
}

// DefaultTable returns the v1 table.
func DefaultTable() *Table {
	return &Table{
		version: VersionV1,
		patterns: []pattern{
			{"attack_bonus", regexp.MustCompile(`^\+(\d+) atq$`), amount(KindAttack, 1)},
			{"attack_penalty", regexp.MustCompile(`^-(\d+) atq$`), amount(KindAttack, -1)},
			{"health_bonus", regexp.MustCompile(`^\+(\d+) pv$`), amount(KindHealth, 1)},
			{"unblockable", regexp.MustCompile(`^(\d+) dégâts? imblocables?$`), amount(KindUnblockable, 1)},
			{"spell", regexp.MustCompile(`^(\d+) dégâts? magiques?$`), amount(KindSpell, 1)},
			{"currency", regexp.MustCompile(`^\+(\d+) po par tour$`), amount(KindCurrency, 1)},
			{"self_damage", regexp.MustCompile(`^perd (\d+) pv par tour$`), amount(KindSelfDamage, 1)},
			{"capacity", regexp.MustCompile(`^\+(\d+) places? sur le plateau$`), amount(KindCapacity, 1)},
			{"none", regexp.MustCompile(`^aucun effet$`), nil},
		},
	}
}

// Version identifies the table revision.
func (t *Table) Version() string {
	return t.version
}

// Outcome is the result of matching one clause. Matched is false for clauses absent
// from the table; such clauses never carry effects.
type Outcome struct {
	Clause  string
	Pattern string
	Effects []Effect
	Matched bool
}

// Normalize applies NFC composition, case folding and whitespace collapsing.
func Normalize(text string) string {
	folded := cases.Fold().String(norm.NFC.String(text))
	return strings.Join(strings.Fields(folded), " ")
}

// Parse splits text on ';' and matches every non-empty clause.
func (t *Table) Parse(text string) []Outcome {
	var outcomes []Outcome
	for _, raw := range strings.Split(text, ";") {
		clause := Normalize(raw)
		if clause == "" {
			continue
		}
		outcomes = append(outcomes, t.match(clause))
	}
	return outcomes
}

func (t *Table) match(clause string) Outcome {
	for _, p := range t.patterns {
		m := p.re.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		out := Outcome{Clause: clause, Pattern: p.name, Matched: true}
		if p.build == nil {
			return out
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Overflowing amounts are data errors, surfaced like any other miss.
			return Outcome{Clause: clause}
		}
		out.Effects = p.build(n)
		return out
	}
	return Outcome{Clause: clause}
}

// Resolve returns the effects of text. In Strict mode the first unmatched clause fails
// with *UnresolvedEffectError; in Lenient mode unmatched clauses are returned instead.
func (t *Table) Resolve(cardID, text string, mode Mode) ([]Effect, []string, error) {
	var (
		out       []Effect
		unmatched []string
	)
	for _, o := range t.Parse(text) {
		if !o.Matched {
			if mode == Strict {
				return nil, nil, &UnresolvedEffectError{CardID: cardID, Text: text, Clause: o.Clause, Version: t.version}
			}
			unmatched = append(unmatched, o.Clause)
			continue
		}
		out = append(out, o.Effects...)
	}
	return out, unmatched, nil
}
