package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capacity(n int) []effects.Effect {
	return []effects.Effect{{Kind: effects.KindCapacity, Amount: n}}
}

func TestScalingSelectHighestThresholdWins(t *testing.T) {
	ability := ScalingAbility{Tiers: []ScalingTier{
		{Threshold: 3, Effects: capacity(1)},
		{Threshold: 5, Effects: capacity(2)},
	}}

	_, ok := ability.Select(2)
	assert.False(t, ok)

	tier, ok := ability.Select(4)
	require.True(t, ok)
	assert.Equal(t, 3, tier.Threshold)

	tier, ok = ability.Select(5)
	require.True(t, ok)
	assert.Equal(t, capacity(2), tier.Effects)

	tier, ok = ability.Select(9)
	require.True(t, ok)
	assert.Equal(t, 5, tier.Threshold)
}

func TestConditionalSelectHighestAffordable(t *testing.T) {
	ability := ConditionalAbility{Resource: ResourcePO, Tiers: []ConditionalTier{
		{Cost: 1, Effects: capacity(1)},
		{Cost: 3, Effects: capacity(3)},
	}}

	_, ok := ability.Select(0)
	assert.False(t, ok)

	tier, ok := ability.Select(2)
	require.True(t, ok)
	assert.Equal(t, 1, tier.Cost)

	tier, ok = ability.Select(7)
	require.True(t, ok)
	assert.Equal(t, 3, tier.Cost)
}

func validCards() []Card {
	return []Card{
		{ID: "loup-1", Name: "Loup", Cost: 1, Level: 1, Family: "Bête", Attack: 2, Health: 1},
		{ID: "loup-2", Name: "Loup", Cost: 1, Level: 2, Family: "Bête", Attack: 4, Health: 3},
		{ID: "epee", Name: "Épée", Kind: KindWeapon, Cost: 2, Level: 1, Attack: 2},
	}
}

func TestNewMemoryLookups(t *testing.T) {
	m, err := NewMemory(validCards())
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	card, err := m.Lookup("loup-2")
	require.NoError(t, err)
	assert.Equal(t, 2, card.Level)
	assert.Equal(t, KindCreature, card.Kind)

	card, err = m.LookupByNameAndLevel("Loup", 1)
	require.NoError(t, err)
	assert.Equal(t, "loup-1", card.ID)

	_, err = m.Lookup("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = m.LookupByNameAndLevel("Loup", 3)
	assert.True(t, errors.Is(err, ErrNotFound))

	ids := make([]string, 0)
	for _, c := range m.Cards() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"loup-1", "loup-2", "epee"}, ids)
}

func TestNewMemoryRejectsMalformedDescriptors(t *testing.T) {
	cases := map[string]Card{
		"cost":      {ID: "a", Name: "A", Cost: 6, Level: 1},
		"level":     {ID: "b", Name: "B", Cost: 1, Level: 3},
		"kind":      {ID: "c", Name: "C", Kind: "spell", Cost: 1, Level: 1},
		"threshold": {ID: "d", Name: "D", Cost: 1, Level: 1, Family: "F", FamilyAbility: ScalingAbility{Tiers: []ScalingTier{{Threshold: 3, Effects: capacity(1)}, {Threshold: 3, Effects: capacity(2)}}}},
		"empty":     {ID: "e", Name: "E", Cost: 1, Level: 1, Class: "K", ClassAbility: ScalingAbility{Tiers: []ScalingTier{{Threshold: 2}}}},
		"resource":  {ID: "f", Name: "F", Cost: 1, Level: 1, Conditional: ConditionalAbility{Resource: "gold", Tiers: []ConditionalTier{{Cost: 1, Effects: capacity(1)}}}},
		"passive":   {ID: "g", Name: "G", Cost: 1, Level: 1, Passives: []Passive{"flying"}},
		"effect":    {ID: "h", Name: "H", Cost: 1, Level: 1, Family: "F", FamilyAbility: ScalingAbility{Tiers: []ScalingTier{{Threshold: 2, Effects: []effects.Effect{{Kind: "mana", Amount: 1}}}}}},
		"orphan":    {ID: "i", Name: "I", Cost: 1, Level: 2},
		"no family": {ID: "j", Name: "J", Cost: 1, Level: 1, FamilyAbility: ScalingAbility{Tiers: []ScalingTier{{Threshold: 2, Effects: capacity(1)}}}},
	}

	for name, card := range cases {
		_, err := NewMemory([]Card{card})
		require.Error(t, err, name)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, name)
	}
}

func TestNewMemoryRejectsDuplicates(t *testing.T) {
	cards := append(validCards(), Card{ID: "loup-1", Name: "Autre", Cost: 1, Level: 1})
	_, err := NewMemory(cards)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")

	cards = append(validCards(), Card{ID: "loup-bis", Name: "Loup", Cost: 1, Level: 1})
	_, err = NewMemory(cards)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name/level")
}

const sampleYAML = `
cards:
  - id: cyborg-1
    name: Cyborg
    cost: 2
    level: 1
    family: Machine
    class: Soldat
    attack: 3
    health: 2
    family_ability:
      tiers:
        - threshold: 3
          effects: [{kind: capacity, amount: 1}]
        - threshold: 5
          effects: [{kind: capacity, amount: 2}]
    conditional:
      resource: po
      tiers:
        - cost: 2
          effects: [{kind: attack, amount: 2}]
    passives: [weapon_access]
    effect: "+1 ATQ"
`

func TestLoadYAML(t *testing.T) {
	m, err := LoadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	card, err := m.Lookup("cyborg-1")
	require.NoError(t, err)
	assert.Equal(t, KindCreature, card.Kind)
	assert.Len(t, card.FamilyAbility.Tiers, 2)
	assert.Equal(t, ResourcePO, card.Conditional.Resource)
	assert.True(t, card.Has(PassiveWeaponAccess))
	assert.False(t, card.Has(PassiveDemonAccess))
	assert.Equal(t, "+1 ATQ", card.Effect)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("cards:\n  - id: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestSampleCatalog(t *testing.T) {
	m, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	table := effects.DefaultTable()
	for _, card := range m.Cards() {
		_, _, err := table.Resolve(card.ID, card.Effect, effects.Strict)
		assert.NoError(t, err, card.ID)
	}
	sword, err := m.LookupByNameAndLevel("Épée", 1)
	require.NoError(t, err)
	assert.Equal(t, KindWeapon, sword.Kind)
}
