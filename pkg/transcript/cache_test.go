package transcript

import (
	"errors"
	"fmt"
	"testing"
)

func parsed(name string) *Parsed {
	return &Parsed{Metadata: map[string]string{"NAME": name}}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(3)
	c.Put("a", parsed("a"))
	c.Put("b", parsed("b"))
	c.Put("c", parsed("c"))

	// Touch "a" so "b" becomes the oldest.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	c.Put("d", parsed("d"))

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, id := range []string{"a", "c", "d"} {
		if _, ok := c.Get(id); !ok {
			t.Errorf("expected %s to survive", id)
		}
	}
}

func TestCacheCapacityBound(t *testing.T) {
	c := NewCache(4)
	for i := 0; i < 5; i++ {
		c.Put(fmt.Sprintf("t%d", i), parsed("x"))
	}
	if c.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", c.Len())
	}
	if _, ok := c.Get("t0"); ok {
		t.Error("expected oldest entry t0 to be evicted")
	}
}

func TestCachePutExistingDoesNotEvict(t *testing.T) {
	c := NewCache(2)
	c.Put("a", parsed("a"))
	c.Put("b", parsed("b"))
	c.Put("a", parsed("a2"))

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	got, ok := c.Get("a")
	if !ok || got.Metadata["NAME"] != "a2" {
		t.Errorf("expected overwrite of a, got %v", got)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to survive an overwrite insert")
	}
}

func TestGetOrComputeCachesOnlySuccess(t *testing.T) {
	c := NewCache(2)
	calls := 0

	compute := func(id string) (*Parsed, error) {
		calls++
		return parsed(id), nil
	}

	first, err := c.GetOrCompute("fr-004", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.GetOrCompute("fr-004", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}
	if first != second {
		t.Error("expected second call to be served from cache")
	}
}

func TestGetOrComputeFailureNotCached(t *testing.T) {
	c := NewCache(2)
	wantErr := errors.New("not found")
	failures := 0

	_, err := c.GetOrCompute("missing", func(string) (*Parsed, error) {
		failures++
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after failure, want 0", c.Len())
	}

	// A later successful compute must still run.
	_, err = c.GetOrCompute("missing", func(id string) (*Parsed, error) {
		return parsed(id), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
