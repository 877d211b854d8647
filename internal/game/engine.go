package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/config"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/abilities"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/rules"
	"go.uber.org/zap"
)

// NotificationHandler receives every event produced by NewGame or Apply, in order,
// synchronously and before the call returns.
type NotificationHandler func(event rules.Event)

// Engine applies the rules to GameState values. It holds configuration and the
// injected catalog only; every mutation is scoped to a state clone, so one engine may
// drive many independent states from several goroutines.
type Engine struct {
	cfg      config.GameConfig
	catalog  catalog.Provider
	resolver *abilities.Resolver
	logger   *zap.Logger

	mu                  sync.RWMutex
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(cfg config.GameConfig, provider catalog.Provider, logger *zap.Logger) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("catalog provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	mode, err := effects.ParseMode(cfg.EffectMode)
	if err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		catalog:  provider,
		resolver: abilities.NewResolver(effects.DefaultTable(), mode),
		logger:   logger,
	}, nil
}

// SetNotificationHandler sets the handler for game events. nil removes it.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

func (e *Engine) notify(events []rules.Event) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler == nil {
		return
	}
	for _, evt := range events {
		handler(evt)
	}
}

// Config returns the rules constants the engine was built with.
func (e *Engine) Config() config.GameConfig {
	return e.cfg
}

// NewGame deals a fresh match. Every Level-1 creature gets CopiesPerCard instances in
// the tier deck of its cost; weapons and demons get the same number of copies in their
// own decks. Level-2 cards only enter play through evolution. An empty gameID is
// derived from the seed, so the same arguments always produce the same state.
func (e *Engine) NewGame(gameID string, players []string, seed uint64) (*GameState, error) {
	if n := len(players); n < e.cfg.PlayersMin || n > e.cfg.PlayersMax {
		return nil, fmt.Errorf("need %d to %d players, got %d", e.cfg.PlayersMin, e.cfg.PlayersMax, n)
	}
	seen := make(map[string]bool, len(players))
	for _, id := range players {
		if id == "" {
			return nil, errors.New("player id must not be empty")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate player id %q", id)
		}
		seen[id] = true
	}
	if gameID == "" {
		gameID = gameIDFromSeed(seed)
	}

	pcg := newPCG(seed)
	s := &GameState{
		gameID:    gameID,
		seed:      seed,
		instances: make(map[InstanceID]CardInstance),
		turn:      rules.NewTurnManager(players),
		pcg:       pcg,
		rng:       rand.New(pcg),
	}

	var (
		tiers   [market.Tiers][]string
		weapons []string
		demons  []string
	)
	for _, c := range e.catalog.Cards() {
		for range e.cfg.CopiesPerCard {
			switch c.Kind {
			case catalog.KindWeapon:
				weapons = append(weapons, string(s.mint(c.ID)))
			case catalog.KindDemon:
				demons = append(demons, string(s.mint(c.ID)))
			default:
				if c.Level != 1 {
					continue
				}
				tiers[c.Cost-1] = append(tiers[c.Cost-1], string(s.mint(c.ID)))
			}
		}
	}
	m, err := market.New(tiers, weapons, demons, e.cfg.MarketSize, e.cfg.MixTurns, s.rng)
	if err != nil {
		return nil, fmt.Errorf("build market: %w", err)
	}
	s.market = m

	for _, id := range players {
		s.players = append(s.players, &PlayerState{
			ID:          id,
			Health:      e.cfg.StartingHealth,
			PO:          e.cfg.StartingPO,
			Weapons:     make(map[InstanceID]InstanceID),
			Commitments: make(map[InstanceID]int),
		})
	}

	s.record(rules.Event{Type: rules.EventGameStarted, Amount: len(players), Data: gameID})
	e.logger.Info("game started",
		zap.String("game_id", gameID),
		zap.Uint64("seed", seed),
		zap.Int("players", len(players)),
		zap.Int("instances", len(s.instances)),
	)
	e.startMarket(s)

	e.checkInvariants(s)
	e.notify(s.events.Events())
	return s, nil
}

// Apply validates action for player against s and, when legal, returns the resulting
// state. s itself is never modified. Rejections are *IllegalActionError; a strict-mode
// free-text miss during resolution surfaces as *effects.UnresolvedEffectError.
func (e *Engine) Apply(s *GameState, player string, action Action) (*GameState, error) {
	p, err := e.validate(s, player, action)
	if err != nil {
		var rejected *IllegalActionError
		if errors.As(err, &rejected) {
			e.logger.Debug("action rejected",
				zap.String("game_id", s.gameID),
				zap.String("player_id", player),
				zap.String("action", action.String()),
				zap.String("reason", string(rejected.Reason)),
			)
		}
		return nil, err
	}

	next := s.Clone()
	mark := next.events.Len()
	if err := e.execute(next, p); err != nil {
		return nil, err
	}
	e.checkInvariants(next)
	e.notify(next.events.Since(mark))
	return next, nil
}

// LegalActions enumerates every action player may take in s. Each returned action is
// accepted by Apply. Eliminated players and finished games have none.
func (e *Engine) LegalActions(s *GameState, player string) []Action {
	p := s.player(player)
	if s.outcome.Over || p == nil || p.Eliminated || s.turn.HasEnded(player) {
		return nil
	}

	var candidates []Action
	switch s.Phase() {
	case rules.PhaseMarket:
		for _, id := range s.MarketWindow() {
			candidates = append(candidates, Action{Kind: ActionAcquire, Card: Ref(id)})
		}
	case rules.PhasePlay:
		candidates = e.playCandidates(s, p)
	}
	candidates = append(candidates, Action{Kind: ActionEndPhase})

	legal := candidates[:0]
	for _, a := range candidates {
		if _, err := e.validate(s, player, a); err == nil {
			legal = append(legal, a)
		}
	}
	return legal
}

func (e *Engine) playCandidates(s *GameState, p *PlayerState) []Action {
	var out []Action
	for _, h := range p.Hand {
		out = append(out, Action{Kind: ActionPlay, Card: Ref(h)})
		for _, b := range p.Board {
			out = append(out, Action{Kind: ActionReplace, Card: Ref(h), Target: Ref(b)})
		}
	}
	for _, b := range p.Board {
		out = append(out, Action{Kind: ActionEquip, Target: Ref(b)})
		if def, err := e.cardOf(s, b); err == nil {
			for _, tier := range def.Conditional.Tiers {
				out = append(out, Action{Kind: ActionCommit, Card: Ref(b), Amount: tier.Cost})
			}
		}
	}
	for _, id := range append(append([]InstanceID{}, p.Hand...), p.Board...) {
		out = append(out, Action{Kind: ActionSacrifice, Card: Ref(id)})
	}

	byCard := make(map[string][]InstanceID)
	var order []string
	for _, id := range append(append([]InstanceID{}, p.Hand...), p.Board...) {
		cardID := s.instances[id].CardID
		if _, ok := byCard[cardID]; !ok {
			order = append(order, cardID)
		}
		byCard[cardID] = append(byCard[cardID], id)
	}
	for _, cardID := range order {
		if ids := byCard[cardID]; len(ids) >= 3 {
			out = append(out, Action{Kind: ActionEvolve, Group: []CardRef{Ref(ids[0]), Ref(ids[1]), Ref(ids[2])}})
		}
	}
	return out
}

// IsTerminal reports whether the game is over.
func (e *Engine) IsTerminal(s *GameState) bool {
	return s.outcome.Over
}

// Winner returns the sole survivor. It reports false while the game runs and for draws.
func (e *Engine) Winner(s *GameState) (string, bool) {
	if !s.outcome.Over || s.outcome.Draw {
		return "", false
	}
	return s.outcome.Winner, true
}

// Snapshot returns an independent deep copy of s.
func (e *Engine) Snapshot(s *GameState) *GameState {
	return s.Clone()
}

// Bundle resolves the ability bundle of player's current board.
func (e *Engine) Bundle(s *GameState, player string) (abilities.Bundle, error) {
	p := s.player(player)
	if p == nil {
		return abilities.Bundle{}, fmt.Errorf("unknown player %q", player)
	}
	return e.bundleOf(s, p, p.Board)
}

func (e *Engine) cardOf(s *GameState, id InstanceID) (catalog.Card, error) {
	inst, ok := s.instances[id]
	if !ok {
		return catalog.Card{}, fmt.Errorf("instance %s: %w", id, catalog.ErrNotFound)
	}
	c, err := e.catalog.Lookup(inst.CardID)
	if err != nil {
		return catalog.Card{}, fmt.Errorf("instance %s: %w", id, err)
	}
	return c, nil
}

// bundleOf resolves p's abilities as if its board were board.
func (e *Engine) bundleOf(s *GameState, p *PlayerState, board []InstanceID) (abilities.Bundle, error) {
	ctx := abilities.Context{
		Board:       make([]abilities.Placed, 0, len(board)),
		Commitments: make(map[string]int, len(p.Commitments)),
	}
	for _, id := range board {
		c, err := e.cardOf(s, id)
		if err != nil {
			return abilities.Bundle{}, err
		}
		ctx.Board = append(ctx.Board, abilities.Placed{Instance: string(id), Card: c})
	}
	for id, amount := range p.Commitments {
		ctx.Commitments[string(id)] = amount
	}
	return e.resolver.Resolve(ctx)
}

// capacity returns the slots board occupies and the slots it allows.
func (e *Engine) capacity(s *GameState, p *PlayerState, board []InstanceID) (used, limit int, err error) {
	b, err := e.bundleOf(s, p, board)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range board {
		c, err := e.cardOf(s, id)
		if err != nil {
			return 0, 0, err
		}
		if abilities.CountsTowardCapacity(c) {
			used++
		}
	}
	return used, e.cfg.BoardCapacity + b.Capacity, nil
}

// record stamps turn and phase on evt and appends it to the log.
func (s *GameState) record(evt rules.Event) rules.Event {
	evt.Turn = s.turn.TurnNumber()
	evt.Phase = s.turn.CurrentPhase()
	return s.events.Append(evt)
}
