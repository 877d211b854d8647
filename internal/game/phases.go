package game

import (
	"errors"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/abilities"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/combat"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/rules"
	"go.uber.org/zap"
)

// startMarket pays income and refills the market window. An exhausted tier deck is
// recorded and the window stays short.
func (e *Engine) startMarket(s *GameState) {
	for _, p := range s.players {
		if p.Eliminated {
			continue
		}
		p.PO += e.cfg.IncomePerTurn
		s.record(rules.Event{Type: rules.EventIncome, PlayerID: p.ID, Amount: e.cfg.IncomePerTurn})
	}

	revealed, err := s.market.Refill()
	if len(revealed) > 0 {
		s.record(rules.Event{Type: rules.EventMarketRevealed, Amount: len(revealed)})
	}
	var exhausted *market.ExhaustedResourceError
	if errors.As(err, &exhausted) {
		s.record(rules.Event{Type: rules.EventMarketExhausted, Data: string(exhausted.Deck)})
		e.logger.Info("market deck exhausted",
			zap.String("game_id", s.gameID),
			zap.String("deck", string(exhausted.Deck)),
			zap.Int("window", len(s.market.Window())),
		)
	}
}

func (e *Engine) advance(s *GameState) rules.Phase {
	phase := s.turn.AdvancePhase()
	s.record(rules.Event{Type: rules.EventPhaseChanged, Data: phase.String()})
	e.logger.Debug("phase changed",
		zap.String("game_id", s.gameID),
		zap.Int("turn", s.turn.TurnNumber()),
		zap.String("phase", phase.String()),
	)
	return phase
}

// endPhase marks player done. Once every active player is done the game moves on;
// ending Play runs Combat and End before returning.
func (e *Engine) endPhase(s *GameState, player string) error {
	s.turn.MarkEnded(player)
	s.record(rules.Event{Type: rules.EventPhaseEnded, PlayerID: player})
	if !s.turn.AllEnded(s.ActivePlayers()) {
		return nil
	}

	switch s.Phase() {
	case rules.PhaseMarket:
		e.advance(s)
		for _, p := range s.players {
			p.PlayedThisPhase = false
			p.ReplacedThisPhase = false
		}
		return nil
	case rules.PhasePlay:
		e.advance(s)
		if err := e.runCombat(s); err != nil {
			return err
		}
		e.advance(s)
		return e.runEnd(s)
	}
	return nil
}

func (e *Engine) combatant(s *GameState, p *PlayerState) (combat.Combatant, error) {
	b, err := e.bundleOf(s, p, p.Board)
	if err != nil {
		return combat.Combatant{}, err
	}
	c := combat.Combatant{Player: p.ID, Health: p.Health, Bundle: b}
	for _, id := range p.Board {
		def, err := e.cardOf(s, id)
		if err != nil {
			return combat.Combatant{}, err
		}
		c.BoardAttack += def.Attack
		if abilities.CountsTowardDefense(def) {
			c.BoardDefense += def.Health
		}
		if weapon, ok := p.Weapons[id]; ok {
			w, err := e.cardOf(s, weapon)
			if err != nil {
				return combat.Combatant{}, err
			}
			c.WeaponAttack += w.Attack
		}
	}
	return c, nil
}

// runCombat resolves the simultaneous combat step for every active player.
func (e *Engine) runCombat(s *GameState) error {
	var fighters []combat.Combatant
	for _, p := range s.players {
		if p.Eliminated {
			continue
		}
		c, err := e.combatant(s, p)
		if err != nil {
			return err
		}
		fighters = append(fighters, c)
	}

	rep := combat.Resolve(fighters)
	for _, h := range rep.Hits {
		if h.Total() > 0 {
			s.record(rules.Event{Type: rules.EventCombatDamage, PlayerID: h.Attacker, TargetID: h.Defender, Amount: h.Total()})
		}
	}
	for _, p := range s.players {
		if left, ok := rep.Remaining[p.ID]; ok {
			p.Health = left
		}
	}
	e.eliminate(s)
	return nil
}

// runEnd applies per-turn effects, checks for the end of the game, mixes decks at
// checkpoints and opens the next turn's Market phase.
func (e *Engine) runEnd(s *GameState) error {
	active := make([]*PlayerState, 0, len(s.players))
	bundles := make([]abilities.Bundle, 0, len(s.players))
	for _, p := range s.players {
		if p.Eliminated {
			continue
		}
		b, err := e.bundleOf(s, p, p.Board)
		if err != nil {
			return err
		}
		active = append(active, p)
		bundles = append(bundles, b)
	}

	for i, p := range active {
		b := bundles[i]
		if b.SelfDamage != 0 {
			p.Health -= b.SelfDamage
			s.record(rules.Event{Type: rules.EventSelfDamage, PlayerID: p.ID, Amount: b.SelfDamage})
		}
		if b.Currency != 0 {
			p.PO = max(0, p.PO+b.Currency)
			s.record(rules.Event{Type: rules.EventCurrencyGenerated, PlayerID: p.ID, Amount: b.Currency})
		}
		for _, d := range b.Diagnostics {
			s.record(rules.Event{Type: rules.EventEffectUnresolved, PlayerID: p.ID, SourceID: d.Instance, Data: d.Clause})
		}
	}
	e.eliminate(s)

	for _, p := range s.players {
		clear(p.Commitments)
		p.PlayedThisPhase = false
		p.ReplacedThisPhase = false
	}

	survivors := s.ActivePlayers()
	switch {
	case len(survivors) == 1:
		e.finish(s, survivors[0])
		return nil
	case len(survivors) == 0, s.turn.TurnNumber() >= e.cfg.MaxTurns:
		e.finish(s, "")
		return nil
	}

	if s.market.ShouldMix(s.turn.TurnNumber()) {
		res, err := s.market.Mix(s.rng)
		if err != nil {
			return err
		}
		s.discard = append(s.discard, toIDs(res.Discarded)...)
		s.record(rules.Event{Type: rules.EventDecksMixed, Amount: len(res.Promoted), Data: string(market.TierDeck(res.From))})
		e.logger.Info("decks mixed",
			zap.String("game_id", s.gameID),
			zap.Int("turn", s.turn.TurnNumber()),
			zap.Int("from_tier", res.From),
			zap.Int("promoted", len(res.Promoted)),
			zap.Int("discarded", len(res.Discarded)),
		)
	}

	e.advance(s)
	e.startMarket(s)
	return nil
}

func (e *Engine) eliminate(s *GameState) {
	for _, p := range s.players {
		if p.Eliminated || p.Health > 0 {
			continue
		}
		p.Eliminated = true
		s.record(rules.Event{Type: rules.EventPlayerEliminated, PlayerID: p.ID, Amount: p.Health})
		e.logger.Info("player eliminated",
			zap.String("game_id", s.gameID),
			zap.String("player_id", p.ID),
			zap.Int("turn", s.turn.TurnNumber()),
		)
	}
}

// finish ends the game. An empty winner is a draw.
func (e *Engine) finish(s *GameState, winner string) {
	s.outcome = Outcome{Over: true, Winner: winner, Draw: winner == ""}
	s.record(rules.Event{Type: rules.EventGameOver, PlayerID: winner})
	e.logger.Info("game over",
		zap.String("game_id", s.gameID),
		zap.String("winner", winner),
		zap.Bool("draw", winner == ""),
		zap.Int("turn", s.turn.TurnNumber()),
	)
}
