package game

import (
	"errors"
	"testing"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/config"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/catalog"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/effects"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func fx(kind effects.Kind, n int) []effects.Effect {
	return []effects.Effect{{Kind: kind, Amount: n}}
}

// testCards is a small catalog with one card per mechanic the engine handles.
func testCards() []catalog.Card {
	return []catalog.Card{
		{ID: "recrue", Name: "Recrue", Cost: 1, Level: 1, Family: "Humain", Attack: 2, Health: 2},
		{ID: "recrue-2", Name: "Recrue", Cost: 1, Level: 2, Family: "Humain", Attack: 5, Health: 5},
		{ID: "robot", Name: "Robot", Cost: 1, Level: 1, Family: "Machine", Attack: 1, Health: 1,
			FamilyAbility: catalog.ScalingAbility{Tiers: []catalog.ScalingTier{
				{Threshold: 3, Effects: fx(effects.KindCapacity, 1)},
				{Threshold: 5, Effects: fx(effects.KindCapacity, 2)},
			}}},
		{ID: "spectre", Name: "Spectre", Cost: 1, Level: 1, Attack: 0, Health: 0,
			Passives: []catalog.Passive{catalog.PassiveNoBoardSlot}, Effect: "2 dégâts imblocables"},
		{ID: "forgeron", Name: "Forgeron", Cost: 2, Level: 1, Class: "Forgeron", Attack: 1, Health: 3,
			Passives: []catalog.Passive{catalog.PassiveWeaponAccess}},
		{ID: "sorcier", Name: "Sorcier", Cost: 2, Level: 1, Class: "Mage", Attack: 0, Health: 2,
			Conditional: catalog.ConditionalAbility{Resource: catalog.ResourcePO, Tiers: []catalog.ConditionalTier{
				{Cost: 1, Effects: fx(effects.KindSpell, 1)},
				{Cost: 3, Effects: fx(effects.KindSpell, 4)},
			}}},
		{ID: "marchand", Name: "Marchand", Cost: 2, Level: 1, Attack: 0, Health: 1, Effect: "+2 PO par tour"},
		{ID: "mur", Name: "Mur", Cost: 2, Level: 1, Attack: 0, Health: 6},
		{ID: "invocateur", Name: "Invocateur", Cost: 3, Level: 1, Attack: 1, Health: 1,
			Passives: []catalog.Passive{catalog.PassiveDemonAccess}},
		{ID: "berserker", Name: "Berserker", Cost: 3, Level: 1, Attack: 3, Health: 2, Effect: "Perd 1 PV par tour",
			Conditional: catalog.ConditionalAbility{Resource: catalog.ResourceHealth, Tiers: []catalog.ConditionalTier{
				{Cost: 2, Effects: fx(effects.KindAttack, 5)},
			}}},
		{ID: "golem", Name: "Golem", Cost: 4, Level: 1, Attack: 4, Health: 4},
		{ID: "dragon", Name: "Dragon", Cost: 5, Level: 1, Attack: 9, Health: 9},
		{ID: "epee", Name: "Epee", Kind: catalog.KindWeapon, Cost: 2, Level: 1, Attack: 3},
		{ID: "diablotin", Name: "Diablotin", Kind: catalog.KindDemon, Cost: 1, Level: 1, Attack: 4, Health: 1},
	}
}

func testConfig() config.GameConfig {
	cfg := config.Default().Game
	cfg.StartingHealth = 30
	cfg.MaxTurns = 10
	return cfg
}

// Harness drives one game through the public engine API and lets tests place cards
// directly into zones.
type Harness struct {
	t      *testing.T
	engine *Engine
	state  *GameState
}

func NewHarness(t *testing.T, players ...string) *Harness {
	return NewHarnessWith(t, testConfig(), testCards(), players...)
}

func NewHarnessWith(t *testing.T, cfg config.GameConfig, cards []catalog.Card, players ...string) *Harness {
	t.Helper()
	if len(players) == 0 {
		players = []string{"alice", "bob"}
	}
	provider, err := catalog.NewMemory(cards)
	require.NoError(t, err)
	engine, err := NewEngine(cfg, provider, zaptest.NewLogger(t))
	require.NoError(t, err)
	state, err := engine.NewGame("test-game", players, 42)
	require.NoError(t, err)
	return &Harness{t: t, engine: engine, state: state}
}

// apply applies a legal action and advances the harness state.
func (h *Harness) apply(player string, a Action) *GameState {
	h.t.Helper()
	next, err := h.engine.Apply(h.state, player, a)
	require.NoError(h.t, err, "%s: %s", player, a)
	h.state = next
	return next
}

// reject applies an illegal action and returns the rejection.
func (h *Harness) reject(player string, a Action) *IllegalActionError {
	h.t.Helper()
	before := Checksum(h.state)
	next, err := h.engine.Apply(h.state, player, a)
	require.Error(h.t, err, "%s: %s", player, a)
	require.Nil(h.t, next)
	require.Equal(h.t, before, Checksum(h.state), "rejected action changed the state")

	var rejected *IllegalActionError
	require.True(h.t, errors.As(err, &rejected), "want *IllegalActionError, got %T: %v", err, err)
	require.ErrorIs(h.t, err, ErrIllegalAction)
	return rejected
}

func (h *Harness) player(id string) *PlayerState {
	h.t.Helper()
	p := h.state.player(id)
	require.NotNil(h.t, p, "player %s", id)
	return p
}

// give mints a fresh instance of cardID directly into player's hand or board.
func (h *Harness) give(player, cardID string, zone Zone) InstanceID {
	h.t.Helper()
	_, err := h.engine.catalog.Lookup(cardID)
	require.NoError(h.t, err)
	id := h.state.mint(cardID)
	p := h.player(player)
	switch zone {
	case ZoneHand:
		p.Hand = append(p.Hand, id)
	case ZoneBoard:
		p.Board = append(p.Board, id)
	default:
		h.t.Fatalf("give: unsupported zone %s", zone)
	}
	return id
}

func (h *Harness) setPO(player string, po int) {
	h.player(player).PO = po
}

// endAll ends the current phase for every active player.
func (h *Harness) endAll() {
	h.t.Helper()
	for _, id := range h.state.ActivePlayers() {
		if !h.state.HasEnded(id) {
			h.apply(id, Action{Kind: ActionEndPhase})
		}
		if h.state.Outcome().Over {
			return
		}
	}
}

// toPlay moves a game in its Market phase to Play.
func (h *Harness) toPlay() {
	h.t.Helper()
	h.endAll()
	require.Equal(h.t, "PLAY", h.state.Phase().String())
}

func (h *Harness) cardOf(id InstanceID) catalog.Card {
	h.t.Helper()
	c, err := h.engine.cardOf(h.state, id)
	require.NoError(h.t, err)
	return c
}
