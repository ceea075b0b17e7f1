package observ

import (
	"errors"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("empty timer report = %+v", r)
	}
	idx := tm.Begin("parse")
	tm.End(idx, "1 file")
	tm.End(42, "ignored")
	err := tm.Measure("generate", func() (string, error) { return "", errors.New("boom") })
	if err == nil {
		t.Fatal("Measure dropped the error")
	}

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if r.Phases[0].Name != "parse" || r.Phases[0].Note != "1 file" {
		t.Errorf("phase 0 = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "error: boom" {
		t.Errorf("phase 1 note = %q", r.Phases[1].Note)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Errorf("total %.3f below a phase", r.TotalMS)
	}
}
