package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newInstrumentedTestCache creates an instrumented cache with the given group and
// registers a cleanup that calls Close() at the end of the test.
func newInstrumentedTestCache(t *testing.T, group string) Cache {
	t.Helper()
	c := New(Options{Size: 10, Group: group})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestInstrumentedCache_HitsAndMisses(t *testing.T) {
	c := newInstrumentedTestCache(t, "test-hits")

	hits := testutil.ToFloat64(HitsTotal.WithLabelValues("test-hits"))
	misses := testutil.ToFloat64(MissesTotal.WithLabelValues("test-hits"))

	c.Set("k", "v")
	_, _ = c.Get("k")      // hit
	_, _ = c.Get("absent") // miss
	_ = c.Contains("k")    // not counted

	if got := testutil.ToFloat64(HitsTotal.WithLabelValues("test-hits")); got != hits+1 {
		t.Errorf("Expected hits to increment by 1, got diff %.0f", got-hits)
	}
	if got := testutil.ToFloat64(MissesTotal.WithLabelValues("test-hits")); got != misses+1 {
		t.Errorf("Expected misses to increment by 1, got diff %.0f", got-misses)
	}
}

func TestInstrumentedCache_Evictions(t *testing.T) {
	evicted := make([]string, 0)
	c := New(Options{Size: 2, Group: "test-evict", OnEvict: func(key, _ string) {
		evicted = append(evicted, key)
	}})
	defer c.Close()

	before := testutil.ToFloat64(EvictionsTotal.WithLabelValues("test-evict"))

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3") // evicts "a"

	if got := testutil.ToFloat64(EvictionsTotal.WithLabelValues("test-evict")); got != before+1 {
		t.Errorf("Expected evictions to increment by 1, got diff %.0f", got-before)
	}
	// Original OnEvict callback must still fire.
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected original OnEvict to fire for key 'a', got %v", evicted)
	}
}

func TestInstrumentedCache_EntriesLazy(t *testing.T) {
	reg := prometheus.NewRegistry()
	origReg := entriesReg
	entriesReg = reg
	t.Cleanup(func() { entriesReg = origReg })

	c := newInstrumentedTestCache(t, "test-entries")

	gatherEntries := func() float64 {
		mfs, _ := reg.Gather()
		for _, mf := range mfs {
			if mf.GetName() != "episodesubs_cache_entries" {
				continue
			}
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "cache" && lp.GetValue() == "test-entries" {
						return m.GetGauge().GetValue()
					}
				}
			}
		}
		return -1
	}

	if v := gatherEntries(); v != 0 {
		t.Fatalf("Expected 0 entries before Set, got %.0f", v)
	}

	c.Set("x", "1")
	c.Set("y", "")

	if v := gatherEntries(); v != 2 {
		t.Errorf("Expected 2 entries after two Sets, got %.0f", v)
	}
}

func TestInstrumentedCache_Close_UnregistersEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	origReg := entriesReg
	entriesReg = reg
	t.Cleanup(func() { entriesReg = origReg })

	c := New(Options{Group: "test-close"})

	entriesMu.Lock()
	_, registered := entriesCollectors["test-close"]
	entriesMu.Unlock()
	if !registered {
		t.Fatal("Expected entries collector to be registered after New()")
	}

	_ = c.Close()

	entriesMu.Lock()
	_, registered = entriesCollectors["test-close"]
	entriesMu.Unlock()
	if registered {
		t.Fatal("Expected entries collector to be unregistered after Close()")
	}
}
