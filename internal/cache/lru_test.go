package cache

import (
	"testing"
	"time"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](2, WithOnEvict(func(k string, _ int) { evicted = append(evicted, k) }))

	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatal("a missing")
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	now := time.Unix(0, 0)
	var evicted []string
	c := New[string, int](10,
		WithTTL[string, int](time.Minute),
		WithOnEvict(func(k string, _ int) { evicted = append(evicted, k) }))
	c.now = func() time.Time { return now }

	c.Add("idle", 1)
	c.Add("busy", 2)

	now = now.Add(50 * time.Second)
	c.Get("busy")
	now = now.Add(20 * time.Second)

	if _, ok := c.Get("idle"); ok {
		t.Fatal("idle entry should have expired")
	}
	if _, ok := c.Get("busy"); !ok {
		t.Fatal("touched entry expired early")
	}

	now = now.Add(2 * time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if len(evicted) != 2 {
		t.Fatalf("evicted = %v", evicted)
	}
}

func TestLRU_Remove(t *testing.T) {
	calls := 0
	c := New[int, string](4, WithOnEvict(func(int, string) { calls++ }))
	c.Add(1, "x")
	if !c.Remove(1) || c.Remove(1) {
		t.Fatal("Remove should report presence exactly once")
	}
	if calls != 1 {
		t.Fatalf("OnEvict calls = %d", calls)
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New[string, int](0)
}
