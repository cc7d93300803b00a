package slug

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Молоко 3.2%", "moloko-3-2"},
		{"Привет мир", "privet-mir"},
		{"   ", ""},
		{"", ""},
		{"A--B  C", "a-b-c"},
		{"Hello, World!", "hello-world"},
		{"  --leading and trailing--  ", "leading-and-trailing"},
		{"snake_case_name", "snake-case-name"},
		{"Straße", "strasse"},
		{"already-a-slug", "already-a-slug"},
		{"%%%", ""},
		{"Rock & Roll", "rock-roll"},
		{"user@shop", "user-shop"},
		{"Don't stop", "don-t-stop"},
		{"under_score", "under-score"},
		{"Café crème", "cafe-creme"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent: %q → %q → %q", s, once, twice)
		}
	})
}

func TestNormalize_Alphabet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		out := Normalize(rapid.String().Draw(t, "s"))
		if strings.Contains(out, "--") {
			t.Fatalf("consecutive separators in %q", out)
		}
		if strings.HasPrefix(out, "-") || strings.HasSuffix(out, "-") {
			t.Fatalf("leading/trailing separator in %q", out)
		}
		for _, r := range out {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				t.Fatalf("unexpected rune %q in %q", r, out)
			}
		}
	})
}

func TestValid(t *testing.T) {
	if !Valid("moloko-3-2") {
		t.Fatal("normal slug reported invalid")
	}
	for _, s := range []string{"", "Moloko", "a--b", "-a", "a b"} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true", s)
		}
	}
}
