package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Kind{
		"discard": KwDiscard,
		"switch":  KwSwitch,
		"inout":   KwInout,
		"layout":  KwLayout,
		"true":    KwTrue,
	}
	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v, %v; want %v", lexeme, got, ok, want)
		}
	}

	// имена типов остаются идентификаторами
	for _, s := range []string{"float", "vec4", "mat3", "void", "Discard", "main"} {
		if _, ok := LookupKeyword(s); ok {
			t.Errorf("LookupKeyword(%q) unexpectedly ok", s)
		}
	}
}

func TestKindString(t *testing.T) {
	if XorXor.String() != "^^" || ShlAssign.String() != "<<=" {
		t.Errorf("unexpected names %q %q", XorXor, ShlAssign)
	}
	if !ShrAssign.IsAssign() || PlusPlus.IsAssign() {
		t.Errorf("IsAssign range is wrong")
	}
}
