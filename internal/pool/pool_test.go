package pool

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gateFrom(complete map[string]bool) Gate {
	return func(d string) bool { return complete[d] }
}

func TestToggle_IncompleteIsNoop(t *testing.T) {
	p := New(gateFrom(map[string]bool{"Power": true}))
	p.Toggle("Power")
	before := p.Members()

	if p.Toggle("Cooling") {
		t.Error("incomplete domain must not be admitted")
	}
	if diff := cmp.Diff(before, p.Members()); diff != "" {
		t.Errorf("membership changed (-before +after):\n%s", diff)
	}
}

func TestToggle_SelfInverse(t *testing.T) {
	p := New(gateFrom(map[string]bool{"Power": true, "Cooling": true}))
	p.Toggle("Cooling")
	before := p.Members()

	if !p.Toggle("Power") {
		t.Error("first toggle should admit complete domain")
	}
	if p.Toggle("Power") {
		t.Error("second toggle should remove it")
	}
	if diff := cmp.Diff(before, p.Members()); diff != "" {
		t.Errorf("double toggle not self-inverse (-before +after):\n%s", diff)
	}
}

func TestToggle_RemovalHasNoPrecondition(t *testing.T) {
	complete := map[string]bool{"Power": true}
	p := New(gateFrom(complete))
	p.Toggle("Power")
	complete["Power"] = false

	if !p.Contains("Power") {
		t.Fatal("membership is not re-validated on its own")
	}
	if p.Toggle("Power") {
		t.Error("removal must succeed even when the domain is now incomplete")
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d, want 0", p.Len())
	}
}

func TestMembers_SnapshotIsCopy(t *testing.T) {
	p := New(gateFrom(map[string]bool{"B": true, "A": true}))
	p.Toggle("B")
	p.Toggle("A")
	snap := p.Members()
	if diff := cmp.Diff([]string{"A", "B"}, snap); diff != "" {
		t.Errorf("Members (-want +got):\n%s", diff)
	}
	snap[0] = "Z"
	if !p.Contains("A") || p.Contains("Z") {
		t.Error("mutating the snapshot must not affect the pool")
	}
}

func TestPrune(t *testing.T) {
	complete := map[string]bool{"A": true, "B": true, "C": true}
	p := New(gateFrom(complete))
	for _, d := range []string{"A", "B", "C"} {
		p.Toggle(d)
	}
	complete["A"] = false
	complete["C"] = false

	evicted := p.Prune()
	if diff := cmp.Diff([]string{"A", "C"}, evicted); diff != "" {
		t.Errorf("evicted (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B"}, p.Members()); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
}

func TestClearAndRemove(t *testing.T) {
	p := New(func(string) bool { return true })
	p.Toggle("A")
	p.Toggle("B")
	p.Remove("A")
	if p.Contains("A") {
		t.Error("Remove should drop A")
	}
	p.Remove("missing")
	p.Clear()
	if p.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", p.Len())
	}
}
