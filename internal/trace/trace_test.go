package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltersScopes(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	pass := Begin(ring, ScopePass, "wrap", 0)
	Point(ring, ScopeVariant, "variant:0", "skipped", pass.ID())
	Point(ring, ScopeNode, "point", "", pass.ID())
	pass.End("3 applied")

	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want begin and end of the pass", len(events))
	}
	if events[1].Kind != KindSpanEnd || events[1].Detail != "3 applied" {
		t.Fatalf("unexpected end event %+v", events[1])
	}
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("snapshot = %+v", events)
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)
	span := Begin(FromContext(ctx), ScopeVariant, "variant:1", 0).WithExtra("seed", "7")
	span.End("ok")
	out := buf.String()
	if !strings.Contains(out, "variant:1 (ok) {seed=7}") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFromContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()).Enabled() {
		t.Fatalf("default tracer is enabled")
	}
}

func TestParseLevelIgnoresCase(t *testing.T) {
	for in, want := range map[string]Level{"off": LevelOff, "Phase": LevelPhase, "DEBUG": LevelDebug} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestErrorLevelOnlyFillsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Begin(tr, ScopePass, "wrap", 0).End("")
	Point(tr, ScopeVariant, "variant:0", "", 0)
	if buf.Len() != 0 {
		t.Fatalf("stream wrote at error level: %q", buf.String())
	}
	var dump bytes.Buffer
	ok, err := DumpRing(tr, &dump, FormatNDJSON)
	if !ok || err != nil {
		t.Fatalf("DumpRing = %v, %v", ok, err)
	}
	if n := strings.Count(dump.String(), "\n"); n != 2 {
		t.Fatalf("dumped %d events, want the two pass events:\n%s", n, dump.String())
	}
	if ok, _ := DumpRing(Nop, &dump, FormatText); ok {
		t.Fatal("Nop has no ring")
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.Stop()
	h.Stop()
	n := len(ring.Snapshot())
	if n == 0 {
		t.Fatal("no heartbeats recorded")
	}
	time.Sleep(5 * time.Millisecond)
	if len(ring.Snapshot()) != n {
		t.Fatal("heartbeat kept running after Stop")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat started on a disabled tracer")
	}
}
