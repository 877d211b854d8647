package abilities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fx(kind effects.Kind, n int) []effects.Effect {
	return []effects.Effect{{Kind: kind, Amount: n}}
}

var machineScaling = catalog.ScalingAbility{Tiers: []catalog.ScalingTier{
	{Threshold: 3, Effects: fx(effects.KindCapacity, 1)},
	{Threshold: 5, Effects: fx(effects.KindCapacity, 2)},
}}

func machine(level int) catalog.Card {
	return catalog.Card{
		ID: fmt.Sprintf("robot-%d", level), Name: "Robot", Cost: 1, Level: level,
		Family: "Machine", FamilyAbility: machineScaling,
	}
}

func board(cards ...catalog.Card) []Placed {
	out := make([]Placed, len(cards))
	for i, c := range cards {
		out[i] = Placed{Instance: fmt.Sprintf("i%d", i), Card: c}
	}
	return out
}

func repeat(card catalog.Card, n int) []catalog.Card {
	out := make([]catalog.Card, n)
	for i := range out {
		out[i] = card
	}
	return out
}

func TestFamilyScalingHighestThresholdWins(t *testing.T) {
	r := NewResolver(nil, effects.Strict)

	cases := map[int]int{2: 0, 3: 1, 4: 1, 5: 2, 7: 2}
	for count, want := range cases {
		b, err := r.Resolve(Context{Board: board(repeat(machine(1), count)...)})
		require.NoError(t, err)
		assert.Equal(t, want, b.Capacity, "%d machines", count)
	}
}

func TestScalingAppliedOncePerGroup(t *testing.T) {
	r := NewResolver(nil, effects.Strict)
	soldier := catalog.Card{
		ID: "soldat", Name: "Soldat", Cost: 1, Level: 1, Family: "Humain", Class: "Guerrier",
		ClassAbility: catalog.ScalingAbility{Tiers: []catalog.ScalingTier{{Threshold: 2, Effects: fx(effects.KindAttack, 3)}}},
	}
	cards := append(repeat(soldier, 3), repeat(machine(1), 3)...)

	b, err := r.Resolve(Context{Board: board(cards...)})
	require.NoError(t, err)
	assert.Equal(t, 3, b.Attack)
	assert.Equal(t, 1, b.Capacity)
}

func TestScalingPrefersLevelTwoDescriptor(t *testing.T) {
	r := NewResolver(nil, effects.Strict)
	strong := machine(2)
	strong.FamilyAbility = catalog.ScalingAbility{Tiers: []catalog.ScalingTier{{Threshold: 3, Effects: fx(effects.KindCapacity, 4)}}}

	b, err := r.Resolve(Context{Board: board(machine(1), strong, machine(1))})
	require.NoError(t, err)
	assert.Equal(t, 4, b.Capacity)
}

func TestConditionalNeedsCommitmentAndDoesNotStack(t *testing.T) {
	r := NewResolver(nil, effects.Strict)
	mage := catalog.Card{
		ID: "mage", Name: "Mage", Cost: 2, Level: 1,
		Conditional: catalog.ConditionalAbility{Resource: catalog.ResourcePO, Tiers: []catalog.ConditionalTier{
			{Cost: 1, Effects: fx(effects.KindSpell, 1)},
			{Cost: 3, Effects: fx(effects.KindSpell, 4)},
		}},
	}
	ctx := Context{Board: board(mage)}

	b, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Zero(t, b.Spell)

	for spend, want := range map[int]int{1: 1, 2: 1, 3: 4, 10: 4} {
		ctx.Commitments = map[string]int{"i0": spend}
		b, err = r.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, b.Spell, "spend %d", spend)
	}
}

func TestPassivesAndFreeText(t *testing.T) {
	r := NewResolver(nil, effects.Strict)
	ghost := catalog.Card{ID: "spectre", Name: "Spectre", Cost: 1, Level: 1,
		Passives: []catalog.Passive{catalog.PassiveNoBoardSlot}, Effect: "2 dégâts imblocables; Perd 1 PV par tour"}
	smith := catalog.Card{ID: "forgeron", Name: "Forgeron", Cost: 2, Level: 1,
		Passives: []catalog.Passive{catalog.PassiveWeaponAccess}, Effect: "+1 PO par tour"}

	b, err := r.Resolve(Context{Board: board(ghost, ghost, smith)})
	require.NoError(t, err)
	assert.Equal(t, 4, b.Unblockable)
	assert.Equal(t, 2, b.SelfDamage)
	assert.Equal(t, 1, b.Currency)
	assert.True(t, b.Passives.Has(catalog.PassiveNoBoardSlot))
	assert.True(t, b.Passives.Has(catalog.PassiveWeaponAccess))
	assert.False(t, b.Passives.Has(catalog.PassiveDemonAccess))
	assert.False(t, CountsTowardCapacity(ghost))
	assert.True(t, CountsTowardCapacity(smith))
}

func TestStrictModeSurfacesUnknownText(t *testing.T) {
	odd := catalog.Card{ID: "odd", Name: "Odd", Cost: 1, Level: 1, Effect: "Double les PO"}

	_, err := NewResolver(nil, effects.Strict).Resolve(Context{Board: board(odd)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, effects.ErrUnresolvedEffect))

	b, err := NewResolver(nil, effects.Lenient).Resolve(Context{Board: board(odd)})
	require.NoError(t, err)
	require.Len(t, b.Diagnostics, 1)
	assert.Equal(t, Diagnostic{Instance: "i0", CardID: "odd", Clause: "double les po"}, b.Diagnostics[0])
	assert.Zero(t, b.Attack+b.Currency+b.Spell)
}

func TestResolveIsRepeatable(t *testing.T) {
	r := NewResolver(nil, effects.Strict)
	ctx := Context{Board: board(repeat(machine(1), 5)...)}

	first, err := r.Resolve(ctx)
	require.NoError(t, err)
	second, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
