package anchor

import (
	"testing"
	"time"
)

func TestRegister_SlugFromDisplayText(t *testing.T) {
	r := NewRegistry(nil)
	id := r.Register("Build Phase One", "")
	if id != "build-phase-one" {
		t.Fatalf("expected slug build-phase-one, got %q", id)
	}
	if _, ok := r.Lookup(id); !ok {
		t.Fatalf("registered id %q not resolvable", id)
	}
}

func TestRegister_RequestedIDWins(t *testing.T) {
	r := NewRegistry(nil)
	id := r.Register("Some Display Text", "custom-id")
	if id != "custom-id" {
		t.Fatalf("expected custom-id, got %q", id)
	}
}

func TestRegister_CollisionsResolveDeterministically(t *testing.T) {
	first := NewRegistry(nil)
	a1 := first.Register("retry", "")
	a2 := first.Register("retry", "")
	a3 := first.Register("retry", "")
	if a1 == a2 || a2 == a3 || a1 == a3 {
		t.Fatalf("expected three distinct ids, got %q %q %q", a1, a2, a3)
	}
	for _, id := range []string{a1, a2, a3} {
		if _, ok := first.Lookup(id); !ok {
			t.Errorf("id %q not resolvable", id)
		}
	}

	// Replaying the same registrations yields the same ids.
	second := NewRegistry(nil)
	if got := second.Register("retry", ""); got != a1 {
		t.Errorf("replay first: got %q, want %q", got, a1)
	}
	if got := second.Register("retry", ""); got != a2 {
		t.Errorf("replay second: got %q, want %q", got, a2)
	}
	if got := second.Register("retry", ""); got != a3 {
		t.Errorf("replay third: got %q, want %q", got, a3)
	}
}

func TestRegister_EmptyTextFallsBack(t *testing.T) {
	r := NewRegistry(nil)
	id := r.Register("", "")
	if id != "anchor" {
		t.Fatalf("expected fallback id anchor, got %q", id)
	}
}

func TestSeed_BlocksReuse(t *testing.T) {
	r := NewRegistry(nil)
	r.Seed("deploy")
	id := r.Register("deploy", "")
	if id == "deploy" {
		t.Fatal("seeded id was reissued")
	}
}

func TestRegister_RecordsCreationTime(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := NewRegistry(func() time.Time { return fixed })
	id := r.Register("timestamped", "")
	e, ok := r.Lookup(id)
	if !ok {
		t.Fatalf("id %q not resolvable", id)
	}
	if !e.Created.Equal(fixed) {
		t.Errorf("creation time: got %v, want %v", e.Created, fixed)
	}
}
