package abilities

import (
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
)

// Placed is a board card: the instance id and the catalog entry it references.
type Placed struct {
	Instance string
	Card     catalog.Card
}

// Context is everything resolution depends on. Commitments maps a board instance to
// the resource amount its owner declared for that card's conditional ability.
type Context struct {
	Board       []Placed
	Commitments map[string]int
}

// Resolver computes ability bundles. It holds no mutable state and is safe to call
// repeatedly, speculatively and from several goroutines.
type Resolver struct {
	table *effects.Table
	mode  effects.Mode
}

// NewResolver builds a resolver over table; a nil table means effects.DefaultTable().
func NewResolver(table *effects.Table, mode effects.Mode) *Resolver {
	if table == nil {
		table = effects.DefaultTable()
	}
	return &Resolver{table: table, mode: mode}
}

// Mode returns the free-text resolution mode.
func (r *Resolver) Mode() effects.Mode {
	return r.mode
}

// Table returns the pattern table in use.
func (r *Resolver) Table() *effects.Table {
	return r.table
}

// group tracks one family or class on the board.
type group struct {
	key   string
	count int
	// source is the highest-level board card of the group carrying a descriptor
	source *catalog.Card
}

type grouping struct {
	order  []string
	groups map[string]*group
}

func newGrouping() *grouping {
	return &grouping{groups: make(map[string]*group)}
}

func (g *grouping) add(key string, card catalog.Card, ability catalog.ScalingAbility) {
	if key == "" {
		return
	}
	grp, ok := g.groups[key]
	if !ok {
		grp = &group{key: key}
		g.groups[key] = grp
		g.order = append(g.order, key)
	}
	grp.count++
	if ability.Empty() {
		return
	}
	if grp.source == nil || card.Level > grp.source.Level {
		c := card
		grp.source = &c
	}
}

func (g *grouping) apply(b *Bundle, pick func(catalog.Card) catalog.ScalingAbility) {
	for _, key := range g.order {
		grp := g.groups[key]
		if grp.source == nil {
			continue
		}
		if tier, ok := pick(*grp.source).Select(grp.count); ok {
			b.ApplyAll(tier.Effects)
		}
	}
}

// Resolve combines family scaling, class scaling, conditional tiers, passive flags and
// free-text effects of the board into one bundle. In strict mode an unmatched effect
// clause fails with *effects.UnresolvedEffectError.
func (r *Resolver) Resolve(ctx Context) (Bundle, error) {
	var b Bundle

	families := newGrouping()
	classes := newGrouping()
	for _, p := range ctx.Board {
		families.add(p.Card.Family, p.Card, p.Card.FamilyAbility)
		classes.add(p.Card.Class, p.Card, p.Card.ClassAbility)
	}
	families.apply(&b, func(c catalog.Card) catalog.ScalingAbility { return c.FamilyAbility })
	classes.apply(&b, func(c catalog.Card) catalog.ScalingAbility { return c.ClassAbility })

	for _, p := range ctx.Board {
		if spend := ctx.Commitments[p.Instance]; spend > 0 && !p.Card.Conditional.Empty() {
			if tier, ok := p.Card.Conditional.Select(spend); ok {
				b.ApplyAll(tier.Effects)
			}
		}

		for _, passive := range p.Card.Passives {
			b.Passives = b.Passives.with(passive)
		}

		list, unmatched, err := r.table.Resolve(p.Card.ID, p.Card.Effect, r.mode)
		if err != nil {
			return Bundle{}, err
		}
		b.ApplyAll(list)
		for _, clause := range unmatched {
			b.Diagnostics = append(b.Diagnostics, Diagnostic{Instance: p.Instance, CardID: p.Card.ID, Clause: clause})
		}
	}

	return b, nil
}
