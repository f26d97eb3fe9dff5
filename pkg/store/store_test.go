package store

import (
	"encoding/json"
	"testing"
	"time"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetDelete(t *testing.T) {
	s := New[widget]()

	s.Set("a", widget{Name: "alpha", Count: 1})
	s.Set("b", widget{Name: "beta", Count: 2})

	got, ok := s.Get("a")
	if !ok || got.Name != "alpha" {
		t.Fatalf("expected alpha, got %+v ok=%v", got, ok)
	}

	if !s.Delete("a") {
		t.Error("expected delete to report true for existing id")
	}
	if s.Delete("a") {
		t.Error("expected delete to report false for missing id")
	}
	if _, ok := s.Get("a"); ok {
		t.Error("expected a to be gone")
	}
	if s.Count() != 1 {
		t.Errorf("expected count 1, got %d", s.Count())
	}
}

func TestListInsertionOrder(t *testing.T) {
	s := New[widget]()
	s.Set("z", widget{Name: "last-key-first"})
	s.Set("a", widget{Name: "second"})
	s.Set("m", widget{Name: "third"})

	// Overwrite must not move z to the back.
	s.Set("z", widget{Name: "updated"})

	items := s.List()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Name != "updated" || items[1].Name != "second" || items[2].Name != "third" {
		t.Errorf("unexpected order: %+v", items)
	}
}

func TestFilter(t *testing.T) {
	s := New[widget]()
	s.Set("a", widget{Name: "keep", Count: 5})
	s.Set("b", widget{Name: "drop", Count: 0})
	s.Set("c", widget{Name: "keep", Count: 7})

	out := s.Filter(func(_ string, w widget) bool { return w.Count > 0 })
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].Count != 5 || out[1].Count != 7 {
		t.Errorf("unexpected filter result: %+v", out)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New[widget]()
	s.Set("a", widget{Name: "alpha", Count: 1})
	s.Set("b", widget{Name: "beta", Count: 2})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := New[widget]()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Count() != 2 {
		t.Fatalf("expected 2 items after round trip, got %d", restored.Count())
	}
	got, _ := restored.Get("b")
	if got.Name != "beta" {
		t.Errorf("expected beta, got %+v", got)
	}

	// LoadSnapshot sorts keys, so listing starts at "a".
	if restored.List()[0].Name != "alpha" {
		t.Errorf("expected alpha first, got %+v", restored.List())
	}
}

func TestReset(t *testing.T) {
	s := New[widget]()
	s.Set("a", widget{})
	s.Reset()
	if s.Count() != 0 {
		t.Errorf("expected empty store after reset, got %d", s.Count())
	}
}

func TestClockAdvance(t *testing.T) {
	c := NewClock()
	before := c.Now()
	c.Advance(48 * time.Hour)
	after := c.Now()

	diff := after.Sub(before)
	if diff < 47*time.Hour || diff > 49*time.Hour {
		t.Errorf("expected ~48h advance, got %v", diff)
	}

	c.Reset()
	if d := c.Now().Sub(time.Now()); d > time.Second || d < -time.Second {
		t.Errorf("expected reset clock near real time, off by %v", d)
	}
}
