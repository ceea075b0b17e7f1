package diag

import (
	"strings"
	"testing"

	"glfuzz/internal/source"
)

func TestBagLimitAndErr(t *testing.T) {
	bag := NewBag(2)
	r := NewDedupReporter(&BagReporter{Bag: bag})

	sp := source.Span{Start: 3, End: 4}
	r.Report(SynExpectSemicolon, SevError, sp, "expected ';'", nil)
	r.Report(SynExpectSemicolon, SevError, sp, "expected ';'", nil)
	r.Report(LexBadNumber, SevWarning, source.Span{Start: 1, End: 2}, "odd number", nil)
	r.Report(LexUnknownChar, SevError, source.Span{Start: 9, End: 10}, "unknown char", nil)

	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (dedup + limit)", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Code != LexBadNumber {
		t.Errorf("Sort did not order by start: %v", bag.Items()[0].Code)
	}
	err := bag.Err()
	if err == nil || !strings.Contains(err.Error(), "SYN2002") {
		t.Fatalf("Err = %v", err)
	}
}

func TestFormat(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.frag", []byte("void main()\n{ int a }\n"))
	d := Diagnostic{
		Severity: SevError,
		Code:     SynExpectSemicolon,
		Message:  "expected ';'",
		Primary:  source.Span{File: id, Start: 19, End: 20},
	}
	got := Format(fs, d)
	want := "x.frag:2:8: ERROR SYN2002: expected ';'"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}
