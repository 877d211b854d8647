package catalog

import (
	"errors"
	"fmt"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
)

type nameLevel struct {
	name  string
	level int
}

// Memory is an in-memory Provider over a validated card list.
type Memory struct {
	byID        map[string]Card
	byNameLevel map[nameLevel]string
	order       []string
}

var _ Provider = (*Memory)(nil)

// NewMemory validates cards and indexes them. Every problem found is reported.
func NewMemory(cards []Card) (*Memory, error) {
	m := &Memory{
		byID:        make(map[string]Card, len(cards)),
		byNameLevel: make(map[nameLevel]string, len(cards)),
		order:       make([]string, 0, len(cards)),
	}

	var errs []error
	for _, card := range cards {
		if card.Kind == "" {
			card.Kind = KindCreature
		}
		if err := validateCard(card); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := m.byID[card.ID]; dup {
			errs = append(errs, &ValidationError{CardID: card.ID, Field: "id", Problem: "duplicate id"})
			continue
		}
		key := nameLevel{card.Name, card.Level}
		if other, dup := m.byNameLevel[key]; dup {
			errs = append(errs, &ValidationError{CardID: card.ID, Field: "name", Problem: fmt.Sprintf("name/level already used by %s", other)})
			continue
		}
		m.byID[card.ID] = card
		m.byNameLevel[key] = card.ID
		m.order = append(m.order, card.ID)
	}

	for _, id := range m.order {
		card := m.byID[id]
		if card.Kind != KindCreature || card.Level != 2 {
			continue
		}
		if _, ok := m.byNameLevel[nameLevel{card.Name, 1}]; !ok {
			errs = append(errs, &ValidationError{CardID: id, Field: "level", Problem: "level 2 card without a level 1 counterpart"})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Lookup returns the card with the given id.
func (m *Memory) Lookup(id string) (Card, error) {
	card, ok := m.byID[id]
	if !ok {
		return Card{}, fmt.Errorf("lookup %q: %w", id, ErrNotFound)
	}
	return card, nil
}

// LookupByNameAndLevel returns the card with the given evolution key and level.
func (m *Memory) LookupByNameAndLevel(name string, level int) (Card, error) {
	id, ok := m.byNameLevel[nameLevel{name, level}]
	if !ok {
		return Card{}, fmt.Errorf("lookup %q level %d: %w", name, level, ErrNotFound)
	}
	return m.byID[id], nil
}

// Cards returns the entries in load order.
func (m *Memory) Cards() []Card {
	out := make([]Card, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	return len(m.order)
}

// ValidationError describes one malformed catalog entry.
type ValidationError struct {
	CardID  string
	Field   string
	Problem string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("card %q: %s: %s", e.CardID, e.Field, e.Problem)
}

func validateCard(c Card) error {
	invalid := func(field, problem string) error {
		return &ValidationError{CardID: c.ID, Field: field, Problem: problem}
	}

	if c.ID == "" {
		return invalid("id", "empty id")
	}
	if c.Name == "" {
		return invalid("name", "empty name")
	}
	switch c.Kind {
	case KindCreature, KindWeapon, KindDemon:
	default:
		return invalid("kind", fmt.Sprintf("unknown kind %q", c.Kind))
	}
	if c.Cost < 1 || c.Cost > 5 {
		return invalid("cost", fmt.Sprintf("cost tier %d outside 1..5", c.Cost))
	}
	if c.Level != 1 && c.Level != 2 {
		return invalid("level", fmt.Sprintf("level %d is not 1 or 2", c.Level))
	}
	if c.Attack < 0 || c.Health < 0 {
		return invalid("stats", "negative attack or health")
	}
	for _, p := range c.Passives {
		if !knownPassives[p] {
			return invalid("passives", fmt.Sprintf("unknown passive %q", p))
		}
	}
	if err := validateScaling(c.FamilyAbility); err != "" {
		return invalid("family_ability", err)
	}
	if !c.FamilyAbility.Empty() && c.Family == "" {
		return invalid("family_ability", "family ability without a family")
	}
	if err := validateScaling(c.ClassAbility); err != "" {
		return invalid("class_ability", err)
	}
	if !c.ClassAbility.Empty() && c.Class == "" {
		return invalid("class_ability", "class ability without a class")
	}
	if err := validateConditional(c.Conditional); err != "" {
		return invalid("conditional", err)
	}
	return nil
}

func validateScaling(a ScalingAbility) string {
	prev := 0
	for i, tier := range a.Tiers {
		if tier.Threshold <= prev {
			return fmt.Sprintf("tier %d threshold %d not strictly increasing and positive", i, tier.Threshold)
		}
		if problem := validateEffects(tier.Effects); problem != "" {
			return fmt.Sprintf("tier %d: %s", i, problem)
		}
		prev = tier.Threshold
	}
	return ""
}

func validateConditional(a ConditionalAbility) string {
	if a.Empty() {
		return ""
	}
	switch a.Resource {
	case ResourcePO, ResourceHealth:
	default:
		return fmt.Sprintf("unknown resource %q", a.Resource)
	}
	prev := 0
	for i, tier := range a.Tiers {
		if tier.Cost <= prev {
			return fmt.Sprintf("tier %d cost %d not strictly increasing and positive", i, tier.Cost)
		}
		if problem := validateEffects(tier.Effects); problem != "" {
			return fmt.Sprintf("tier %d: %s", i, problem)
		}
		prev = tier.Cost
	}
	return ""
}

func validateEffects(list []effects.Effect) string {
	if len(list) == 0 {
		return "empty effect"
	}
	for _, e := range list {
		if !e.Kind.Valid() {
			return fmt.Sprintf("unknown effect kind %q", e.Kind)
		}
	}
	return ""
}
