package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEventLogRejectsWhenStopped(t *testing.T) {
	el := NewEventLog()
	if el.EmitSimple(EventTypeTick, 1, "", nil) {
		t.Error("Expected emit to fail before Start")
	}
}

func TestEventLogWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	el.EmitSimple(EventTypeFighterJoin, 1, "f1", FighterJoinPayload{FighterID: "f1", Name: "ada", Archetype: "knight"})
	el.EmitSimple(EventTypeBlockBreak, 2, "f1", FighterPayload{FighterID: "f1"})
	el.Stop()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("Unmarshal %q: %v", scanner.Text(), err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTypeFighterJoin || events[1].Type != EventTypeBlockBreak {
		t.Errorf("Unexpected types: %s, %s", events[0].Type, events[1].Type)
	}
	if events[0].Sequence >= events[1].Sequence {
		t.Error("Expected increasing sequence numbers")
	}

	var join FighterJoinPayload
	if err := json.Unmarshal(events[0].Payload, &join); err != nil || join.Name != "ada" {
		t.Errorf("Expected decodable join payload, got %+v (%v)", join, err)
	}

	stats := el.Stats()
	if stats.Total != 2 || stats.Written != 2 || stats.Pending != 0 || stats.Running {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestEventLogPerActorLimit(t *testing.T) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	accepted := 0
	for i := 0; i < 50; i++ {
		if el.EmitSimple(EventTypeStrike, uint64(i), "chatty", nil) {
			accepted++
		}
	}
	if accepted >= 50 {
		t.Error("Expected the per-actor limiter to drop a burst")
	}
	if el.Stats().Dropped == 0 {
		t.Error("Expected dropped events to be counted")
	}

	if !el.EmitSimple(EventTypeStrike, 51, "quiet", nil) {
		t.Error("Other actors must not share the limiter")
	}
}

func TestEventLogWithoutRateLimit(t *testing.T) {
	el := NewEventLog(WithoutRateLimit())
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	for i := 0; i < 500; i++ {
		if !el.EmitSimple(EventTypeStrike, uint64(i), "scripted", nil) {
			t.Fatalf("Event %d rejected", i)
		}
	}
}

func TestEventLogOverflowDropsOldest(t *testing.T) {
	el := NewEventLog(WithoutRateLimit())
	if err := el.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer el.Stop()

	// stall the writer so nothing drains while we overflow
	el.fileMu.Lock()
	for i := 0; i < EventBufferSize+10; i++ {
		el.EmitSimple(EventTypeTick, uint64(i), "", nil)
	}
	stats := el.Stats()
	el.fileMu.Unlock()

	if stats.Pending != EventBufferSize {
		t.Errorf("Expected %d pending, got %d", EventBufferSize, stats.Pending)
	}
	if stats.Dropped != 10 {
		t.Errorf("Expected 10 dropped, got %d", stats.Dropped)
	}
}

func TestCleanupActorLimiters(t *testing.T) {
	el := NewEventLog()
	el.getActorLimiter("old")
	el.cleanupActorLimiters(time.Now().Add(time.Minute))

	if _, ok := el.actorLimiters.Load("old"); ok {
		t.Error("Expected stale limiter removed")
	}
}

func TestEventTypeText(t *testing.T) {
	for i := EventTypeUnknown; i < eventTypeCount; i++ {
		text, _ := i.MarshalText()
		var back EventType
		if err := back.UnmarshalText(text); err != nil || back != i {
			t.Errorf("Round trip of %s failed: %v", i, err)
		}
	}
	var bad EventType
	if err := bad.UnmarshalText([]byte("nope")); err == nil {
		t.Error("Expected error for unknown type name")
	}
}
