// Package combat computes simultaneous all-versus-all combat damage.
package combat

import "github.com/T-Ratnosaure/CartesSociete-sub000/internal/game/abilities"

// Combatant is the pre-combat snapshot of one active player.
type Combatant struct {
	Player       string
	Health       int
	BoardAttack  int
	WeaponAttack int
	// BoardDefense is the summed health of board cards that count toward defense.
	BoardDefense int
	Bundle       abilities.Bundle
}

// TotalAttack is board plus weapon plus bundle attack, never below zero.
func (c Combatant) TotalAttack() int {
	return max(0, c.BoardAttack+c.WeaponAttack+c.Bundle.Attack)
}

// Defense is the raw defense other players' blockable damage is measured against.
func (c Combatant) Defense() int {
	return c.BoardDefense + c.Bundle.Health
}

// Hit is the damage one attacker deals one defender.
type Hit struct {
	Attacker    string
	Defender    string
	Blockable   int
	Unblockable int
	Spell       int
}

// Total is the sum of the three damage classes.
func (h Hit) Total() int {
	return h.Blockable + h.Unblockable + h.Spell
}

// Report is the outcome of one combat step.
type Report struct {
	Hits       []Hit
	Received   map[string]int
	Remaining  map[string]int
	Eliminated []string
}

// Damage returns what attacker dealt defender.
func (r Report) Damage(attacker, defender string) int {
	for _, h := range r.Hits {
		if h.Attacker == attacker && h.Defender == defender {
			return h.Total()
		}
	}
	return 0
}

// Resolve computes every attacker-defender pair from the snapshot alone, then applies
// the summed damage to each defender at once. The order of combatants does not change
// any amount. Eliminated lists players whose remaining health is <= 0, in input order.
func Resolve(combatants []Combatant) Report {
	rep := Report{
		Received:  make(map[string]int, len(combatants)),
		Remaining: make(map[string]int, len(combatants)),
	}
	for _, att := range combatants {
		attack := att.TotalAttack()
		for _, def := range combatants {
			if def.Player == att.Player {
				continue
			}
			h := Hit{
				Attacker:    att.Player,
				Defender:    def.Player,
				Blockable:   max(0, attack-def.Defense()),
				Unblockable: att.Bundle.Unblockable,
				Spell:       att.Bundle.Spell,
			}
			rep.Hits = append(rep.Hits, h)
			rep.Received[def.Player] += h.Total()
		}
	}
	for _, c := range combatants {
		left := c.Health - rep.Received[c.Player]
		rep.Remaining[c.Player] = left
		if left <= 0 {
			rep.Eliminated = append(rep.Eliminated, c.Player)
		}
	}
	return rep
}
