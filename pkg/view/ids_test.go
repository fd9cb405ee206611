package view

import (
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestRandomIDs(t *testing.T) {
	src := NewRandomIDs()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := src.NextID()
		if !uuidPattern.MatchString(id) {
			t.Fatalf("NextID() = %q, not a v4 UUID", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestCounterIDs(t *testing.T) {
	src := NewCounterIDs("h")
	for _, want := range []string{"h1", "h2", "h3"} {
		if got := src.NextID(); got != want {
			t.Errorf("NextID() = %q, want %q", got, want)
		}
	}
	if src.Current() != 3 {
		t.Errorf("Current() = %d, want 3", src.Current())
	}
}
