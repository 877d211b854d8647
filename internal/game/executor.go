package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/abilities"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/rules"
	"go.uber.org/zap"
)

// plan is a validated action with every reference resolved to an instance id.
type plan struct {
	action Action
	player string
	card   InstanceID
	target InstanceID
	group  []InstanceID
	// def is the card the action brings into play: the acquired or played card, the
	// equipped weapon, or the Level-2 result of an evolution.
	def    catalog.Card
	summon bool
}

var actionPhase = map[ActionKind]rules.Phase{
	ActionAcquire:   rules.PhaseMarket,
	ActionPlay:      rules.PhasePlay,
	ActionReplace:   rules.PhasePlay,
	ActionEvolve:    rules.PhasePlay,
	ActionEquip:     rules.PhasePlay,
	ActionSacrifice: rules.PhasePlay,
	ActionCommit:    rules.PhasePlay,
}

// validate checks every precondition of a without touching s.
func (e *Engine) validate(s *GameState, player string, a Action) (plan, error) {
	if s.outcome.Over {
		return plan{}, illegal(player, a, ReasonGameOver, "game is over")
	}
	p := s.player(player)
	if p == nil {
		return plan{}, illegal(player, a, ReasonUnknownPlayer, "not seated in game %s", s.gameID)
	}
	if p.Eliminated {
		return plan{}, illegal(player, a, ReasonEliminated, "")
	}

	phase := s.Phase()
	if a.Kind == ActionEndPhase {
		if !phase.PlayerDriven() {
			return plan{}, illegal(player, a, ReasonWrongPhase, "phase %s", phase)
		}
	} else {
		want, ok := actionPhase[a.Kind]
		if !ok {
			return plan{}, illegal(player, a, ReasonUnknownAction, "%q", a.Kind)
		}
		if phase != want {
			return plan{}, illegal(player, a, ReasonWrongPhase, "allowed in %s, current phase %s", want, phase)
		}
	}
	if s.turn.HasEnded(player) {
		return plan{}, illegal(player, a, ReasonPhaseEnded, "phase %s", phase)
	}

	pl := plan{action: a, player: player}
	var err error
	switch a.Kind {
	case ActionAcquire:
		err = e.validateAcquire(s, p, &pl)
	case ActionPlay:
		err = e.validatePlay(s, p, &pl)
	case ActionReplace:
		err = e.validateReplace(s, p, &pl)
	case ActionEvolve:
		err = e.validateEvolve(s, p, &pl)
	case ActionEquip:
		err = e.validateEquip(s, p, &pl)
	case ActionSacrifice:
		err = e.validateSacrifice(s, p, &pl)
	case ActionCommit:
		err = e.validateCommit(s, p, &pl)
	}
	if err != nil {
		return plan{}, err
	}
	return pl, nil
}

// resolveRef finds ref among candidates, skipping ids in taken.
func (e *Engine) resolveRef(s *GameState, candidates []InstanceID, ref CardRef, taken []InstanceID) (InstanceID, bool) {
	if ref.ID != "" && slices.Contains(candidates, ref.ID) && !slices.Contains(taken, ref.ID) {
		return ref.ID, true
	}
	if ref.Name == "" {
		return "", false
	}
	for _, id := range candidates {
		if slices.Contains(taken, id) {
			continue
		}
		c, err := e.cardOf(s, id)
		if err == nil && c.Name == ref.Name && c.Level == ref.Level {
			return id, true
		}
	}
	return "", false
}

func (e *Engine) validateAcquire(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	id, ok := e.resolveRef(s, s.MarketWindow(), a.Card, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not in the market", a.Card)
	}
	def, err := e.cardOf(s, id)
	if err != nil {
		return err
	}
	if def.Cost > p.PO {
		return illegal(p.ID, a, ReasonInsufficientPO, "costs %d, has %d", def.Cost, p.PO)
	}
	pl.card, pl.def = id, def
	return nil
}

func (e *Engine) validatePlay(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	id, ok := e.resolveRef(s, p.Hand, a.Card, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not in hand", a.Card)
	}
	def, err := e.cardOf(s, id)
	if err != nil {
		return err
	}
	if def.Kind == catalog.KindWeapon {
		return illegal(p.ID, a, ReasonNotPlayable, "weapons are equipped, not played")
	}
	if p.ReplacedThisPhase {
		return illegal(p.ID, a, ReasonPlayReplaceMix, "already replaced this phase")
	}
	if abilities.CountsTowardCapacity(def) {
		used, limit, err := e.capacity(s, p, p.Board)
		if err != nil {
			return err
		}
		if used+1 > limit {
			return illegal(p.ID, a, ReasonBoardFull, "%d of %d slots used", used, limit)
		}
	}
	pl.card, pl.def = id, def
	return nil
}

func (e *Engine) validateReplace(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	if p.PlayedThisPhase {
		return illegal(p.ID, a, ReasonPlayReplaceMix, "already played this phase")
	}
	if p.ReplacedThisPhase {
		return illegal(p.ID, a, ReasonPlayReplaceMix, "already replaced this phase")
	}
	id, ok := e.resolveRef(s, p.Hand, a.Card, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not in hand", a.Card)
	}
	target, ok := e.resolveRef(s, p.Board, a.Target, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not on the board", a.Target)
	}
	def, err := e.cardOf(s, id)
	if err != nil {
		return err
	}
	if def.Kind == catalog.KindWeapon {
		return illegal(p.ID, a, ReasonNotPlayable, "weapons are equipped, not played")
	}
	if abilities.CountsTowardCapacity(def) {
		rest, _ := removeID(slices.Clone(p.Board), target)
		used, limit, err := e.capacity(s, p, rest)
		if err != nil {
			return err
		}
		if used+1 > limit {
			return illegal(p.ID, a, ReasonBoardFull, "%d of %d slots used after removal", used, limit)
		}
	}
	pl.card, pl.target, pl.def = id, target, def
	return nil
}

func (e *Engine) validateEvolve(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	if len(a.Group) != 3 {
		return illegal(p.ID, a, ReasonNotEvolvable, "needs exactly 3 instances, got %d", len(a.Group))
	}
	owned := append(slices.Clone(p.Hand), p.Board...)
	var group []InstanceID
	for _, ref := range a.Group {
		id, ok := e.resolveRef(s, owned, ref, group)
		if !ok {
			return illegal(p.ID, a, ReasonCardNotFound, "%s is not in hand or on the board", ref)
		}
		group = append(group, id)
	}

	cardID := s.instances[group[0]].CardID
	for _, id := range group[1:] {
		if s.instances[id].CardID != cardID {
			return illegal(p.ID, a, ReasonNotEvolvable, "instances are not identical")
		}
	}
	base, err := e.cardOf(s, group[0])
	if err != nil {
		return err
	}
	if base.Level != 1 || base.Kind != catalog.KindCreature {
		return illegal(p.ID, a, ReasonNotEvolvable, "%s is not a Level-1 creature", base.ID)
	}
	evolved, err := e.catalog.LookupByNameAndLevel(base.Name, 2)
	if errors.Is(err, catalog.ErrNotFound) {
		return illegal(p.ID, a, ReasonNotEvolvable, "%s has no Level-2 form", base.Name)
	}
	if err != nil {
		return err
	}

	rest := slices.DeleteFunc(slices.Clone(p.Board), func(id InstanceID) bool {
		return slices.Contains(group, id)
	})
	if len(rest) < len(p.Board) && abilities.CountsTowardCapacity(evolved) {
		used, limit, err := e.capacity(s, p, rest)
		if err != nil {
			return err
		}
		if used+1 > limit {
			return illegal(p.ID, a, ReasonBoardFull, "%d of %d slots used after evolution", used, limit)
		}
	}
	pl.group, pl.def = group, evolved
	return nil
}

func (e *Engine) validateEquip(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	target, ok := e.resolveRef(s, p.Board, a.Target, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not on the board", a.Target)
	}
	b, err := e.bundleOf(s, p, p.Board)
	if err != nil {
		return err
	}
	if !b.Passives.Has(catalog.PassiveWeaponAccess) {
		return illegal(p.ID, a, ReasonNoWeaponAccess, "")
	}
	if _, ok := p.Weapons[target]; ok {
		return illegal(p.ID, a, ReasonAlreadyEquipped, "%s already carries a weapon", target)
	}
	top, ok := s.market.TopWeapon()
	if !ok {
		rejected := illegal(p.ID, a, ReasonResourceExhausted, "weapon deck is empty")
		rejected.Err = &market.ExhaustedResourceError{Deck: market.DeckWeapons}
		return rejected
	}
	weapon, err := e.cardOf(s, InstanceID(top))
	if err != nil {
		return err
	}
	if weapon.Cost > p.PO {
		return illegal(p.ID, a, ReasonInsufficientPO, "weapon costs %d, has %d", weapon.Cost, p.PO)
	}
	pl.target, pl.card, pl.def = target, InstanceID(top), weapon
	return nil
}

func (e *Engine) validateSacrifice(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	id, ok := e.resolveRef(s, append(slices.Clone(p.Board), p.Hand...), a.Card, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not in hand or on the board", a.Card)
	}
	b, err := e.bundleOf(s, p, p.Board)
	if err != nil {
		return err
	}
	pl.card = id
	pl.summon = b.Passives.Has(catalog.PassiveDemonAccess) && len(s.market.Demons()) > 0
	return nil
}

func (e *Engine) validateCommit(s *GameState, p *PlayerState, pl *plan) error {
	a := pl.action
	id, ok := e.resolveRef(s, p.Board, a.Card, nil)
	if !ok {
		return illegal(p.ID, a, ReasonCardNotFound, "%s is not on the board", a.Card)
	}
	def, err := e.cardOf(s, id)
	if err != nil {
		return err
	}
	if def.Conditional.Empty() {
		return illegal(p.ID, a, ReasonNoConditional, "%s", def.ID)
	}
	if _, ok := p.Commitments[id]; ok {
		return illegal(p.ID, a, ReasonAlreadyCommitted, "%s", id)
	}
	if _, ok := def.Conditional.Select(a.Amount); !ok {
		return illegal(p.ID, a, ReasonInvalidAmount, "%d buys no tier of %s", a.Amount, def.ID)
	}
	switch def.Conditional.Resource {
	case catalog.ResourceHealth:
		if a.Amount >= p.Health {
			return illegal(p.ID, a, ReasonInsufficientLife, "spending %d of %d health", a.Amount, p.Health)
		}
	default:
		if a.Amount > p.PO {
			return illegal(p.ID, a, ReasonInsufficientPO, "spending %d, has %d", a.Amount, p.PO)
		}
	}
	pl.card, pl.def = id, def
	return nil
}

// execute applies a validated plan to s, which must be a private clone.
func (e *Engine) execute(s *GameState, pl plan) error {
	p := s.player(pl.player)
	a := pl.action

	switch a.Kind {
	case ActionAcquire:
		s.market.Take(string(pl.card))
		p.Hand = append(p.Hand, pl.card)
		p.PO -= pl.def.Cost
		s.record(rules.Event{Type: rules.EventCardAcquired, PlayerID: p.ID, SourceID: string(pl.card), Amount: pl.def.Cost, Data: pl.def.ID})

	case ActionPlay:
		p.Hand, _ = removeID(p.Hand, pl.card)
		p.Board = append(p.Board, pl.card)
		p.PlayedThisPhase = true
		s.record(rules.Event{Type: rules.EventCardPlayed, PlayerID: p.ID, SourceID: string(pl.card), Data: pl.def.ID})

	case ActionReplace:
		slot := slices.Index(p.Board, pl.target)
		e.detach(s, p, pl.target)
		s.discard = append(s.discard, pl.target)
		p.Hand, _ = removeID(p.Hand, pl.card)
		p.Board = slices.Insert(p.Board, slot, pl.card)
		p.ReplacedThisPhase = true
		s.record(rules.Event{Type: rules.EventCardReplaced, PlayerID: p.ID, SourceID: string(pl.card), TargetID: string(pl.target), Data: pl.def.ID})

	case ActionEvolve:
		toBoard := false
		for i, id := range pl.group {
			if slices.Contains(p.Board, id) {
				toBoard = true
				e.detach(s, p, id)
			} else {
				p.Hand, _ = removeID(p.Hand, id)
			}
			if i == 0 {
				s.exile = append(s.exile, id)
			} else {
				s.discard = append(s.discard, id)
			}
		}
		evolved := s.mint(pl.def.ID)
		if toBoard {
			p.Board = append(p.Board, evolved)
		} else {
			p.Hand = append(p.Hand, evolved)
		}
		s.record(rules.Event{Type: rules.EventCardEvolved, PlayerID: p.ID, SourceID: string(evolved), TargetID: string(pl.group[0]), Amount: pl.def.Level, Data: pl.def.ID})

	case ActionEquip:
		drawn, err := s.market.DrawWeapon()
		if err != nil {
			return err
		}
		weapon := InstanceID(drawn)
		p.Weapons[pl.target] = weapon
		p.PO -= pl.def.Cost
		s.record(rules.Event{Type: rules.EventWeaponEquipped, PlayerID: p.ID, SourceID: string(weapon), TargetID: string(pl.target), Amount: pl.def.Cost, Data: pl.def.ID})

	case ActionSacrifice:
		if slices.Contains(p.Board, pl.card) {
			e.detach(s, p, pl.card)
		} else {
			p.Hand, _ = removeID(p.Hand, pl.card)
		}
		s.discard = append(s.discard, pl.card)
		s.record(rules.Event{Type: rules.EventCardSacrificed, PlayerID: p.ID, SourceID: string(pl.card)})
		if pl.summon {
			drawn, err := s.market.DrawDemon()
			if err != nil {
				return err
			}
			p.Hand = append(p.Hand, InstanceID(drawn))
			s.record(rules.Event{Type: rules.EventDemonDrawn, PlayerID: p.ID, SourceID: drawn, Data: s.instances[InstanceID(drawn)].CardID})
		}

	case ActionCommit:
		if pl.def.Conditional.Resource == catalog.ResourceHealth {
			p.Health -= a.Amount
		} else {
			p.PO -= a.Amount
		}
		p.Commitments[pl.card] = a.Amount
		s.record(rules.Event{Type: rules.EventResourceCommitted, PlayerID: p.ID, SourceID: string(pl.card), Amount: a.Amount, Data: string(pl.def.Conditional.Resource)})

	case ActionEndPhase:
		return e.endPhase(s, p.ID)

	default:
		return fmt.Errorf("unhandled action kind %q", a.Kind)
	}

	e.logger.Debug("action applied",
		zap.String("game_id", s.gameID),
		zap.String("player_id", p.ID),
		zap.String("action", a.String()),
	)
	return nil
}

// detach removes a board instance together with its weapon and commitment. The weapon
// goes to the discard; the caller decides where id goes.
func (e *Engine) detach(s *GameState, p *PlayerState, id InstanceID) {
	p.Board, _ = removeID(p.Board, id)
	if weapon, ok := p.Weapons[id]; ok {
		delete(p.Weapons, id)
		s.discard = append(s.discard, weapon)
	}
	delete(p.Commitments, id)
}
