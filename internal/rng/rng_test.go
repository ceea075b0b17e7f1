package rng

import "testing"

func TestRandDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.NextInt(1000), b.NextInt(1000); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}

func TestRandRanges(t *testing.T) {
	r := New(1)
	for i := 0; i < 1000; i++ {
		if v := r.NextPositiveInt(3); v < 1 || v > 3 {
			t.Fatalf("NextPositiveInt = %d", v)
		}
		if v := r.Range(2, 5); v < 2 || v > 5 {
			t.Fatalf("Range = %d", v)
		}
	}
	if r.Percent(0) {
		t.Fatalf("Percent(0) fired")
	}
	if !r.Percent(100) {
		t.Fatalf("Percent(100) did not fire")
	}
}

func TestFixedCycles(t *testing.T) {
	f := &Fixed{Values: []int{3, 0}}
	if f.NextInt(2) != 1 || f.NextInt(2) != 0 || f.NextInt(10) != 3 {
		t.Fatalf("unexpected sequence")
	}
}
