package game

import (
	"fmt"
	"strings"
)

// ActionKind names one player action.
type ActionKind string

const (
	ActionAcquire   ActionKind = "acquire"
	ActionPlay      ActionKind = "play"
	ActionReplace   ActionKind = "replace"
	ActionEvolve    ActionKind = "evolve"
	ActionEquip     ActionKind = "equip"
	ActionSacrifice ActionKind = "sacrifice"
	ActionCommit    ActionKind = "commit"
	ActionEndPhase  ActionKind = "end_phase"
)

// CardRef points at an instance. ID is authoritative; when it is empty or unknown the
// first instance in the relevant zone whose card has the same name and level is used.
// The fallback lets actions recorded on one branch be replayed on an independently
// built one, at the cost of not distinguishing identical copies.
type CardRef struct {
	ID    InstanceID
	Name  string
	Level int
}

// Ref builds an id-only reference.
func Ref(id InstanceID) CardRef {
	return CardRef{ID: id}
}

// Zero reports whether the reference is empty.
func (r CardRef) Zero() bool {
	return r.ID == "" && r.Name == ""
}

func (r CardRef) String() string {
	switch {
	case r.ID != "":
		return string(r.ID)
	case r.Name != "":
		return fmt.Sprintf("%s/L%d", r.Name, r.Level)
	}
	return "-"
}

// Action is one player decision.
//
//	acquire    Card: market instance
//	play       Card: hand instance
//	replace    Card: hand instance, Target: board instance it replaces
//	evolve     Group: three identical Level-1 instances from hand or board; Group[0] is exiled
//	equip      Target: board instance receiving the top weapon
//	sacrifice  Card: hand or board instance
//	commit     Card: board instance with a conditional ability, Amount: resource spent
//	end_phase  no operands
type Action struct {
	Kind   ActionKind
	Card   CardRef
	Target CardRef
	Group  []CardRef
	Amount int
}

func (a Action) String() string {
	var b strings.Builder
	b.WriteString(string(a.Kind))
	if !a.Card.Zero() {
		fmt.Fprintf(&b, " card=%s", a.Card)
	}
	if !a.Target.Zero() {
		fmt.Fprintf(&b, " target=%s", a.Target)
	}
	if len(a.Group) > 0 {
		parts := make([]string, len(a.Group))
		for i, r := range a.Group {
			parts[i] = r.String()
		}
		fmt.Fprintf(&b, " group=[%s]", strings.Join(parts, ","))
	}
	if a.Amount != 0 {
		fmt.Fprintf(&b, " amount=%d", a.Amount)
	}
	return b.String()
}
