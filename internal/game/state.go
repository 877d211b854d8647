package game

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/rules"
	"github.com/google/uuid"
)

// InstanceID identifies one physical card instance for the lifetime of a game.
type InstanceID string

// Zone is where an instance currently lives.
type Zone int

const (
	ZoneHand Zone = iota
	ZoneBoard
	ZoneEquipped
	ZoneMarket
	ZoneDeck
	ZoneWeaponDeck
	ZoneDemonDeck
	ZoneDiscard
	ZoneExile
)

var zoneNames = map[Zone]string{
	ZoneHand:       "HAND",
	ZoneBoard:      "BOARD",
	ZoneEquipped:   "EQUIPPED",
	ZoneMarket:     "MARKET",
	ZoneDeck:       "DECK",
	ZoneWeaponDeck: "WEAPON_DECK",
	ZoneDemonDeck:  "DEMON_DECK",
	ZoneDiscard:    "DISCARD",
	ZoneExile:      "EXILE",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// CardInstance is a placed copy of a catalog card.
type CardInstance struct {
	ID     InstanceID
	CardID string
}

// PlayerState is one seat. Consumers receive copies; only the engine mutates it.
type PlayerState struct {
	ID     string
	Health int
	PO     int
	Hand   []InstanceID
	Board  []InstanceID
	// Weapons maps a board instance to the weapon equipped on it.
	Weapons map[InstanceID]InstanceID
	// Commitments maps a board instance to the resource declared for its conditional
	// ability this turn.
	Commitments       map[InstanceID]int
	Eliminated        bool
	PlayedThisPhase   bool
	ReplacedThisPhase bool
}

func (p *PlayerState) clone() *PlayerState {
	c := *p
	c.Hand = slices.Clone(p.Hand)
	c.Board = slices.Clone(p.Board)
	c.Weapons = maps.Clone(p.Weapons)
	c.Commitments = maps.Clone(p.Commitments)
	if c.Weapons == nil {
		c.Weapons = make(map[InstanceID]InstanceID)
	}
	if c.Commitments == nil {
		c.Commitments = make(map[InstanceID]int)
	}
	return &c
}

// Outcome is the terminal result of a game.
type Outcome struct {
	Over   bool
	Winner string
	// Draw is set when the game ended without a single survivor, including reaching
	// the turn ceiling.
	Draw bool
}

// GameState is the single source of truth for one match. It is an arena of owned
// instances; zones hold instance ids. Clone never shares mutable substructure.
type GameState struct {
	gameID    string
	seed      uint64
	seq       int
	instances map[InstanceID]CardInstance
	players   []*PlayerState
	market    *market.Manager
	discard   []InstanceID
	exile     []InstanceID
	turn      *rules.TurnManager
	events    rules.EventLog
	pcg       *rand.PCG
	rng       *rand.Rand
	outcome   Outcome
}

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cartes-societe/instances"))

func gameIDFromSeed(seed uint64) string {
	return uuid.NewSHA1(idNamespace, fmt.Appendf(nil, "game|%d", seed)).String()
}

func newPCG(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// mint creates a new instance of cardID with a deterministic id.
func (s *GameState) mint(cardID string) InstanceID {
	s.seq++
	id := InstanceID(uuid.NewSHA1(idNamespace, fmt.Appendf(nil, "%s|%d", s.gameID, s.seq)).String())
	s.instances[id] = CardInstance{ID: id, CardID: cardID}
	return id
}

// Clone returns a fully independent deep copy, RNG state included.
func (s *GameState) Clone() *GameState {
	c := &GameState{
		gameID:    s.gameID,
		seed:      s.seed,
		seq:       s.seq,
		instances: maps.Clone(s.instances),
		players:   make([]*PlayerState, len(s.players)),
		market:    s.market.Clone(),
		discard:   slices.Clone(s.discard),
		exile:     slices.Clone(s.exile),
		turn:      s.turn.Clone(),
		events:    s.events.Clone(),
		outcome:   s.outcome,
	}
	for i, p := range s.players {
		c.players[i] = p.clone()
	}
	pcg := *s.pcg
	c.pcg = &pcg
	c.rng = rand.New(c.pcg)
	return c
}

// WithSeed returns a clone whose random stream is reseeded. Search collaborators use
// it to branch one position into differently seeded futures.
func (s *GameState) WithSeed(seed uint64) *GameState {
	c := s.Clone()
	c.seed = seed
	c.pcg = newPCG(seed)
	c.rng = rand.New(c.pcg)
	return c
}

// GameID returns the game identifier.
func (s *GameState) GameID() string { return s.gameID }

// Seed returns the seed the random stream was last initialised with.
func (s *GameState) Seed() uint64 { return s.seed }

// Turn returns the current turn number.
func (s *GameState) Turn() int { return s.turn.TurnNumber() }

// Phase returns the current phase.
func (s *GameState) Phase() rules.Phase { return s.turn.CurrentPhase() }

// HasEnded reports whether player has ended the current phase.
func (s *GameState) HasEnded(player string) bool { return s.turn.HasEnded(player) }

// Outcome returns the terminal result, if any.
func (s *GameState) Outcome() Outcome { return s.outcome }

// Players returns copies of every seat in seating order.
func (s *GameState) Players() []PlayerState {
	out := make([]PlayerState, len(s.players))
	for i, p := range s.players {
		out[i] = *p.clone()
	}
	return out
}

// Player returns a copy of one seat.
func (s *GameState) Player(id string) (PlayerState, bool) {
	p := s.player(id)
	if p == nil {
		return PlayerState{}, false
	}
	return *p.clone(), true
}

func (s *GameState) player(id string) *PlayerState {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers lists the ids of non-eliminated players in seating order.
func (s *GameState) ActivePlayers() []string {
	var out []string
	for _, p := range s.players {
		if !p.Eliminated {
			out = append(out, p.ID)
		}
	}
	return out
}

// Instance returns the arena entry for id.
func (s *GameState) Instance(id InstanceID) (CardInstance, bool) {
	inst, ok := s.instances[id]
	return inst, ok
}

// InstanceCount returns the size of the arena.
func (s *GameState) InstanceCount() int { return len(s.instances) }

// MarketWindow returns the visible market.
func (s *GameState) MarketWindow() []InstanceID { return toIDs(s.market.Window()) }

// MarketTier returns the tier the market currently reveals from.
func (s *GameState) MarketTier() int { return s.market.CurrentTier() }

// Deck returns tier deck n, bottom first.
func (s *GameState) Deck(n int) []InstanceID { return toIDs(s.market.Deck(n)) }

// WeaponDeck returns the weapon deck, bottom first.
func (s *GameState) WeaponDeck() []InstanceID { return toIDs(s.market.Weapons()) }

// DemonDeck returns the demon deck, bottom first.
func (s *GameState) DemonDeck() []InstanceID { return toIDs(s.market.Demons()) }

// Discard returns the shared discard pile.
func (s *GameState) Discard() []InstanceID { return slices.Clone(s.discard) }

// Exile returns the exile zone. Exiled instances never leave it.
func (s *GameState) Exile() []InstanceID { return slices.Clone(s.exile) }

// Events returns the event log.
func (s *GameState) Events() []rules.Event { return s.events.Events() }

// Locate returns the zone holding id and, for player zones, the owning player.
func (s *GameState) Locate(id InstanceID) (Zone, string, bool) {
	for _, p := range s.players {
		if slices.Contains(p.Hand, id) {
			return ZoneHand, p.ID, true
		}
		if slices.Contains(p.Board, id) {
			return ZoneBoard, p.ID, true
		}
		for _, w := range p.Weapons {
			if w == id {
				return ZoneEquipped, p.ID, true
			}
		}
	}
	sid := string(id)
	switch {
	case s.market.Contains(sid):
		return ZoneMarket, "", true
	case slices.Contains(s.discard, id):
		return ZoneDiscard, "", true
	case slices.Contains(s.exile, id):
		return ZoneExile, "", true
	case slices.Contains(s.market.Weapons(), sid):
		return ZoneWeaponDeck, "", true
	case slices.Contains(s.market.Demons(), sid):
		return ZoneDemonDeck, "", true
	}
	for n := 1; n <= market.Tiers; n++ {
		if slices.Contains(s.market.Deck(n), sid) {
			return ZoneDeck, "", true
		}
	}
	return 0, "", false
}

func toIDs(raw []string) []InstanceID {
	out := make([]InstanceID, len(raw))
	for i, r := range raw {
		out[i] = InstanceID(r)
	}
	return out
}

func removeID(list []InstanceID, id InstanceID) ([]InstanceID, bool) {
	i := slices.Index(list, id)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}
