package slug

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// setOracle answers from a fixed set and records every probe.
type setOracle struct {
	taken map[string]bool
	calls []string
}

func (s *setOracle) exists(_ context.Context, c string) bool {
	s.calls = append(s.calls, c)
	return s.taken[c]
}

func TestResolveUnique_FreeBase(t *testing.T) {
	o := &setOracle{}
	got, err := ResolveUnique(context.Background(), "Молоко 3.2%", o.exists)
	require.NoError(t, err)
	assert.Equal(t, "moloko-3-2", got)
	assert.Equal(t, []string{"moloko-3-2"}, o.calls, "a free base needs exactly one probe")
}

func TestResolveUnique_SuffixOrder(t *testing.T) {
	o := &setOracle{taken: map[string]bool{"milk": true, "milk-2": true}}
	got, err := ResolveUnique(context.Background(), "Milk", o.exists)
	require.NoError(t, err)
	assert.Equal(t, "milk-3", got)
	assert.Equal(t, []string{"milk", "milk-2", "milk-3"}, o.calls)
}

func TestResolveUnique_EmptyUsesFallback(t *testing.T) {
	for _, name := range []string{"", "   ", "%%%"} {
		got, err := ResolveUnique(context.Background(), name, (&setOracle{}).exists)
		require.NoError(t, err)
		assert.Equal(t, Fallback, got, "name %q", name)
	}

	o := &setOracle{taken: map[string]bool{"slug": true}}
	got, err := ResolveUnique(context.Background(), "", o.exists)
	require.NoError(t, err)
	assert.Equal(t, "slug-2", got)
}

func TestResolveUnique_CapFallsBackToRandomSuffix(t *testing.T) {
	calls := 0
	always := func(context.Context, string) bool { calls++; return true }

	got, err := ResolveUnique(context.Background(), "Bread", always, WithMaxAttempts(5))
	require.NoError(t, err)
	assert.Equal(t, 5, calls)
	assert.True(t, strings.HasPrefix(got, "bread-"), got)
	assert.Len(t, strings.TrimPrefix(got, "bread-"), 8)
	assert.True(t, Valid(got), got)
}

func TestResolveUnique_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probes := 0
	exists := func(context.Context, string) bool {
		probes++
		if probes == 2 {
			cancel()
		}
		return true
	}
	_, err := ResolveUnique(ctx, "Cheese", exists)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, probes)
}

func TestResolveUnique_NeverReturnsTaken(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Zа-яА-Я0-9 ]{0,12}`).Draw(t, "name")
		base := Normalize(name)
		if base == "" {
			base = Fallback
		}
		// Occupy a random-length prefix of base, base-2, base-3, ….
		n := rapid.IntRange(0, 20).Draw(t, "occupied")
		taken := map[string]bool{}
		for i := 0; i < n; i++ {
			if i == 0 {
				taken[base] = true
			} else {
				taken[base+"-"+strconv.Itoa(i+1)] = true
			}
		}
		o := &setOracle{taken: taken}

		got, err := ResolveUnique(context.Background(), name, o.exists)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if taken[got] {
			t.Fatalf("resolved %q which the oracle reports taken", got)
		}
		if len(o.calls) != n+1 {
			t.Fatalf("probes = %d, want %d", len(o.calls), n+1)
		}
	})
}

func TestResolver_UnknownKind(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), KindProduct, "x", NoID)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = r.Check(context.Background(), KindCategory, "x", NoID)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
