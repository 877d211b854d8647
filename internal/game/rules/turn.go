package rules

import (
	"fmt"
	"slices"
	"strings"
)

// Phase represents the four phases of a turn.
type Phase int

const (
	PhaseMarket Phase = iota
	PhasePlay
	PhaseCombat
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseMarket: "MARKET",
	PhasePlay:   "PLAY",
	PhaseCombat: "COMBAT",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// PlayerDriven reports whether players act in the phase. Combat and End resolve
// without player input.
func (p Phase) PlayerDriven() bool {
	return p == PhaseMarket || p == PhasePlay
}

var turnSequence = []Phase{PhaseMarket, PhasePlay, PhaseCombat, PhaseEnd}

// TurnManager tracks the turn number, the current phase and which players have
// ended the current phase.
type TurnManager struct {
	orderIndex int
	turnNumber int
	players    []string
	ended      map[string]bool
}

// NewTurnManager creates a turn manager at turn 1, Market phase.
func NewTurnManager(players []string) *TurnManager {
	seats := make([]string, 0, len(players))
	for _, p := range players {
		seats = append(seats, strings.TrimSpace(p))
	}
	return &TurnManager{
		turnNumber: 1,
		players:    seats,
		ended:      make(map[string]bool),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Players returns the seating order.
func (tm *TurnManager) Players() []string {
	return slices.Clone(tm.players)
}

// MarkEnded records that player has ended the current phase.
func (tm *TurnManager) MarkEnded(player string) {
	tm.ended[player] = true
}

// HasEnded reports whether player has ended the current phase.
func (tm *TurnManager) HasEnded(player string) bool {
	return tm.ended[player]
}

// AllEnded reports whether every listed player has ended the current phase.
func (tm *TurnManager) AllEnded(active []string) bool {
	for _, p := range active {
		if !tm.ended[p] {
			return false
		}
	}
	return true
}

// AdvancePhase moves to the next phase and clears the ended marks. After End the
// turn number is incremented and the turn restarts at Market.
func (tm *TurnManager) AdvancePhase() Phase {
	clear(tm.ended)
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
	}
	return tm.CurrentPhase()
}

// Clone returns an independent copy.
func (tm *TurnManager) Clone() *TurnManager {
	c := &TurnManager{
		orderIndex: tm.orderIndex,
		turnNumber: tm.turnNumber,
		players:    slices.Clone(tm.players),
		ended:      make(map[string]bool, len(tm.ended)),
	}
	for p, v := range tm.ended {
		c.ended[p] = v
	}
	return c
}
