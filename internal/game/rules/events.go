package rules

import "slices"

// EventType indicates the category of a game event.
type EventType string

const (
	EventGameStarted       EventType = "GAME_STARTED"
	EventPhaseChanged      EventType = "PHASE_CHANGED"
	EventPhaseEnded        EventType = "PHASE_ENDED"
	EventIncome            EventType = "INCOME"
	EventMarketRevealed    EventType = "MARKET_REVEALED"
	EventMarketExhausted   EventType = "MARKET_EXHAUSTED"
	EventCardAcquired      EventType = "CARD_ACQUIRED"
	EventCardPlayed        EventType = "CARD_PLAYED"
	EventCardReplaced      EventType = "CARD_REPLACED"
	EventCardEvolved       EventType = "CARD_EVOLVED"
	EventWeaponEquipped    EventType = "WEAPON_EQUIPPED"
	EventCardSacrificed    EventType = "CARD_SACRIFICED"
	EventDemonDrawn        EventType = "DEMON_DRAWN"
	EventResourceCommitted EventType = "RESOURCE_COMMITTED"
	EventCombatDamage      EventType = "COMBAT_DAMAGE"
	EventSelfDamage        EventType = "SELF_DAMAGE"
	EventCurrencyGenerated EventType = "CURRENCY_GENERATED"
	EventPlayerEliminated  EventType = "PLAYER_ELIMINATED"
	EventDecksMixed        EventType = "DECKS_MIXED"
	EventEffectUnresolved  EventType = "EFFECT_UNRESOLVED"
	EventGameOver          EventType = "GAME_OVER"
)

// Event is one recorded state change. Events carry no wall-clock time so that two
// runs from the same seed produce identical logs.
type Event struct {
	Seq      int
	Turn     int
	Phase    Phase
	Type     EventType
	PlayerID string
	SourceID string
	TargetID string
	Amount   int
	Data     string
}

// Listener receives events synchronously as they are appended.
type Listener func(Event)

// EventLog is an append-only ordered event record.
type EventLog struct {
	events []Event
}

// Append stamps the next sequence number on e, stores it and returns it.
func (l *EventLog) Append(e Event) Event {
	e.Seq = len(l.events) + 1
	l.events = append(l.events, e)
	return e
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.events)
}

// Events returns a copy of every event in order.
func (l *EventLog) Events() []Event {
	return slices.Clone(l.events)
}

// Since returns the events with a sequence number greater than seq.
func (l *EventLog) Since(seq int) []Event {
	if seq < 0 {
		seq = 0
	}
	if seq >= len(l.events) {
		return nil
	}
	return slices.Clone(l.events[seq:])
}

// OfType returns the events of the given type in order.
func (l *EventLog) OfType(t EventType) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns an independent copy.
func (l EventLog) Clone() EventLog {
	return EventLog{events: slices.Clone(l.events)}
}
