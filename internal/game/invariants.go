package game

import (
	"fmt"
	"slices"
	"sort"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
	"go.uber.org/zap"
)

// CheckInvariants verifies the structural invariants of s and returns the first
// violation found, or nil.
func CheckInvariants(s *GameState) *StateInvariantViolation {
	seen := make(map[InstanceID]string, len(s.instances))
	var dup *StateInvariantViolation
	place := func(zone string, ids ...InstanceID) {
		for _, id := range ids {
			if dup != nil {
				return
			}
			if _, ok := s.instances[id]; !ok {
				dup = &StateInvariantViolation{Invariant: "zone_entry_in_arena", Detail: fmt.Sprintf("%s holds unknown instance %s", zone, id)}
				return
			}
			if prev, ok := seen[id]; ok {
				dup = &StateInvariantViolation{Invariant: "zone_exclusivity", Detail: fmt.Sprintf("%s is in both %s and %s", id, prev, zone)}
				return
			}
			seen[id] = zone
		}
	}

	for _, p := range s.players {
		place("hand:"+p.ID, p.Hand...)
		place("board:"+p.ID, p.Board...)
		for _, holder := range sortedKeys(p.Weapons) {
			if !slices.Contains(p.Board, holder) {
				return &StateInvariantViolation{Invariant: "weapon_on_board", Detail: fmt.Sprintf("weapon of %s equipped on %s which is not on the board", p.ID, holder)}
			}
			place("equipped:"+p.ID, p.Weapons[holder])
		}
		for id := range p.Commitments {
			if !slices.Contains(p.Board, id) {
				return &StateInvariantViolation{Invariant: "commitment_on_board", Detail: fmt.Sprintf("%s committed on %s which is not on the board", p.ID, id)}
			}
		}
		if p.PO < 0 {
			return &StateInvariantViolation{Invariant: "po_non_negative", Detail: fmt.Sprintf("%s has %d PO", p.ID, p.PO)}
		}
		if !p.Eliminated && p.Health <= 0 {
			return &StateInvariantViolation{Invariant: "active_health_positive", Detail: fmt.Sprintf("%s is active with %d health", p.ID, p.Health)}
		}
	}
	place("market", toIDs(s.market.Window())...)
	for n := 1; n <= market.Tiers; n++ {
		place(fmt.Sprintf("deck:%d", n), s.Deck(n)...)
	}
	place("weapon_deck", s.WeaponDeck()...)
	place("demon_deck", s.DemonDeck()...)
	place("discard", s.discard...)
	place("exile", s.exile...)
	if dup != nil {
		return dup
	}

	if len(seen) != len(s.instances) {
		for _, id := range sortedKeys(s.instances) {
			if _, ok := seen[id]; !ok {
				return &StateInvariantViolation{Invariant: "zone_exclusivity", Detail: fmt.Sprintf("%s is in no zone", id)}
			}
		}
	}
	return nil
}

// checkInvariants panics on a violation when checking is enabled. A violation is an
// engine bug; the simulation must stop.
func (e *Engine) checkInvariants(s *GameState) {
	if !e.cfg.CheckInvariants {
		return
	}
	if v := CheckInvariants(s); v != nil {
		e.logger.Error("state invariant violated",
			zap.String("game_id", s.gameID),
			zap.String("invariant", v.Invariant),
			zap.String("detail", v.Detail),
			zap.Int("turn", s.turn.TurnNumber()),
		)
		panic(v)
	}
}

func sortedKeys[V any](m map[InstanceID]V) []InstanceID {
	keys := make([]InstanceID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
