package rules

import "testing"

func TestEventLogSequence(t *testing.T) {
	var log EventLog

	first := log.Append(Event{Type: EventGameStarted})
	second := log.Append(Event{Type: EventCardAcquired, PlayerID: "p1", Amount: 2})
	log.Append(Event{Type: EventCardAcquired, PlayerID: "p2", Amount: 1})

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("expected sequence 1,2 got %d,%d", first.Seq, second.Seq)
	}
	if log.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", log.Len())
	}
	if got := log.OfType(EventCardAcquired); len(got) != 2 || got[1].PlayerID != "p2" {
		t.Fatalf("unexpected filtered events %+v", got)
	}
	if got := log.Since(2); len(got) != 1 || got[0].Seq != 3 {
		t.Fatalf("unexpected tail %+v", got)
	}
	if got := log.Since(3); got != nil {
		t.Fatalf("expected empty tail, got %+v", got)
	}
}

func TestEventLogCloneIsIndependent(t *testing.T) {
	var log EventLog
	log.Append(Event{Type: EventGameStarted})

	c := log.Clone()
	c.Append(Event{Type: EventGameOver})

	if log.Len() != 1 {
		t.Fatalf("clone append leaked into original")
	}

	events := log.Events()
	events[0].Type = EventGameOver
	if log.Events()[0].Type != EventGameStarted {
		t.Fatalf("Events returned an alias")
	}
}
