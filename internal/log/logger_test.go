package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerSequencesEvents(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewTurnEvent(1, "streamer", 1, 1))
	l.Log(NewDrawEvent(1, "main", "streamer", "Fireball"))
	l.Log(NewDrawEvent(1, "main", "viewers", "Fire Imp"))

	if len(l.Events()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(l.Events()))
	}
	for i, e := range l.Events() {
		if e.Seq != i+1 {
			t.Errorf("event %d: expected seq %d, got %d", i, i+1, e.Seq)
		}
	}
	draws := l.EventsOfType(EventDraw)
	if len(draws) != 2 || draws[1].Card != "Fire Imp" {
		t.Errorf("unexpected draws: %+v", draws)
	}
	if l.LastEvent().Player != "viewers" {
		t.Errorf("unexpected last event %+v", l.LastEvent())
	}
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewPrefixedTextLogger(&buf, "[g1] ")
	l.Log(NewHeroDamageEvent(3, "main", "viewers", "Fireball", 2, 30, 29))
	l.Log(NewGiftEvent(3, "main", "ana", "🌹 rose", "viewers draw a card"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "[g1] T3 ") || !strings.Contains(lines[0], "2 absorbed by shield") {
		t.Errorf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[1], "ana sent 🌹 rose") {
		t.Errorf("unexpected line %q", lines[1])
	}
	if len(l.Events()) != 2 {
		t.Error("text logger should also keep events in memory")
	}
}

func TestFormatEventPadsPlayer(t *testing.T) {
	got := FormatEvent(GameEvent{Turn: 2, Player: "viewers", Details: "hello"})
	if got != "T2  viewers  | hello" {
		t.Errorf("unexpected format %q", got)
	}
	if msgs := Messages([]GameEvent{{Details: "a"}, {Details: "b"}}); len(msgs) != 2 || msgs[1] != "b" {
		t.Errorf("unexpected messages %v", msgs)
	}
}
