package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/market"
)

// checksumVersion is bumped whenever the canonical rendering changes.
const checksumVersion = 1

// Checksum returns a SHA-256 over a canonical rendering of the whole state, including
// the random stream position. Two states with equal checksums continue identically
// under identical actions.
func Checksum(s *GameState) string {
	sum := sha256.Sum256([]byte(canonical(s)))
	return hex.EncodeToString(sum[:])
}

// canonical renders s independent of map iteration order. Zone order is kept where it
// carries meaning (deck tops, market reveal order, seating).
func canonical(s *GameState) string {
	var buf bytes.Buffer

	rngState, err := s.pcg.MarshalBinary()
	if err != nil {
		// PCG marshalling cannot fail; keep the rendering total anyway.
		rngState = []byte(err.Error())
	}
	buf.WriteString(fmt.Sprintf("V%d\n", checksumVersion))
	buf.WriteString(fmt.Sprintf("GAME:%s|%d|%d|%x\n", s.gameID, s.seed, s.seq, rngState))
	buf.WriteString(fmt.Sprintf("TURN:%d|%s\n", s.turn.TurnNumber(), s.turn.CurrentPhase()))
	buf.WriteString(fmt.Sprintf("OUTCOME:%t|%s|%t\n", s.outcome.Over, s.outcome.Winner, s.outcome.Draw))

	for _, p := range s.players {
		buf.WriteString(fmt.Sprintf("PLAYER:%s|%d|%d|%t|%t|%t|%t\n",
			p.ID,
			p.Health,
			p.PO,
			p.Eliminated,
			p.PlayedThisPhase,
			p.ReplacedThisPhase,
			s.turn.HasEnded(p.ID),
		))
		buf.WriteString("  HAND:" + joinIDs(p.Hand) + "\n")
		buf.WriteString("  BOARD:" + joinIDs(p.Board) + "\n")
		for _, holder := range sortedKeys(p.Weapons) {
			buf.WriteString(fmt.Sprintf("  WEAPON:%s=%s\n", holder, p.Weapons[holder]))
		}
		for _, id := range sortedKeys(p.Commitments) {
			buf.WriteString(fmt.Sprintf("  COMMIT:%s=%d\n", id, p.Commitments[id]))
		}
	}

	buf.WriteString(fmt.Sprintf("MARKET:%d|%s\n", s.market.CurrentTier(), joinIDs(s.MarketWindow())))
	for n := 1; n <= market.Tiers; n++ {
		buf.WriteString(fmt.Sprintf("DECK%d:%s\n", n, joinIDs(s.Deck(n))))
	}
	buf.WriteString("WEAPONS:" + joinIDs(s.WeaponDeck()) + "\n")
	buf.WriteString("DEMONS:" + joinIDs(s.DemonDeck()) + "\n")
	buf.WriteString("DISCARD:" + joinIDs(s.discard) + "\n")
	buf.WriteString("EXILE:" + joinIDs(s.exile) + "\n")

	for _, id := range sortedKeys(s.instances) {
		buf.WriteString(fmt.Sprintf("CARD:%s|%s\n", id, s.instances[id].CardID))
	}

	for _, e := range s.events.Events() {
		buf.WriteString(fmt.Sprintf("EVENT:%d|%d|%s|%s|%s|%s|%s|%d|%s\n",
			e.Seq, e.Turn, e.Phase, e.Type, e.PlayerID, e.SourceID, e.TargetID, e.Amount, e.Data))
	}

	return buf.String()
}

func joinIDs(ids []InstanceID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
