package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kokistudios/assess/internal/taxonomy"
)

func powerTaxonomy() *taxonomy.Taxonomy {
	return &taxonomy.Taxonomy{Domains: []taxonomy.Domain{{
		Name: "Power",
		Subsystems: []taxonomy.Subsystem{{
			Name:       "Feed",
			Components: []taxonomy.Component{{Name: "Feed", Fields: []string{"Voltage", "Amperage"}}},
		}},
	}}}
}

func path(field string) taxonomy.Path {
	return taxonomy.Path{Domain: "Power", Subsystem: "Feed", Component: "Feed", Field: field}
}

func TestSetGet(t *testing.T) {
	s := New(powerTaxonomy())
	if _, ok := s.Get(path("Voltage")); ok {
		t.Fatal("expected absent value before first write")
	}
	s.Set(path("Voltage"), "400V")
	v, ok := s.Get(path("Voltage"))
	if !ok || v != "400V" {
		t.Errorf("Get = %q, %v; want %q, true", v, ok, "400V")
	}
	s.Set(path("Voltage"), "230V")
	if v, _ := s.Get(path("Voltage")); v != "230V" {
		t.Errorf("overwrite: got %q, want %q", v, "230V")
	}
	if _, ok := s.Get(path("Amperage")); ok {
		t.Error("writing Voltage must not touch Amperage")
	}
}

func TestSet_UndeclaredPathPanics(t *testing.T) {
	s := New(powerTaxonomy())
	defer func() {
		if recover() == nil {
			t.Error("expected panic for undeclared path")
		}
	}()
	s.Set(path("Frequency"), "50Hz")
}

func TestSetChecked_UndeclaredPath(t *testing.T) {
	s := New(powerTaxonomy())
	err := s.SetChecked(path("Frequency"), "50Hz")
	if !errors.Is(err, ErrUnknownPath) {
		t.Errorf("err = %v, want ErrUnknownPath", err)
	}
}

func TestIsDomainComplete_EndToEnd(t *testing.T) {
	s := New(powerTaxonomy())
	s.Set(path("Voltage"), "400V")
	if s.IsDomainComplete("Power") {
		t.Error("Power should be incomplete with Amperage missing")
	}
	s.Set(path("Amperage"), "100A")
	if !s.IsDomainComplete("Power") {
		t.Error("Power should be complete once every field is set")
	}
}

func TestIsDomainComplete_BlankValues(t *testing.T) {
	s := New(powerTaxonomy())
	s.Set(path("Voltage"), "400V")
	s.Set(path("Amperage"), "  \t ")
	if s.IsDomainComplete("Power") {
		t.Error("whitespace-only value must count as missing")
	}
	if got := s.Missing("Power"); len(got) != 1 || got[0].Field != "Amperage" {
		t.Errorf("Missing = %v, want [Amperage]", got)
	}
}

func TestIsDomainComplete_UnknownDomain(t *testing.T) {
	s := New(powerTaxonomy())
	if s.IsDomainComplete("Cooling") {
		t.Error("unknown domain must not be complete")
	}
}

func TestIsDomainComplete_EveryField(t *testing.T) {
	tax := taxonomy.Default()
	d, _ := tax.Domain("Fire & Life-Safety")
	s := New(tax)
	paths := d.Paths()
	for i, p := range paths {
		if s.IsDomainComplete(d.Name) {
			t.Fatalf("complete after only %d of %d fields", i, len(paths))
		}
		s.Set(p, "x")
	}
	if !s.IsDomainComplete(d.Name) {
		t.Error("expected complete after filling every field")
	}
}

func TestFilled(t *testing.T) {
	s := New(powerTaxonomy())
	s.Set(path("Voltage"), "400V")
	filled, total := s.Filled("Power")
	if filled != 1 || total != 2 {
		t.Errorf("Filled = %d/%d, want 1/2", filled, total)
	}
}

func TestClear(t *testing.T) {
	tax := taxonomy.Default()
	s := New(tax)
	gen := taxonomy.Path{Domain: "Power Infrastructure", Subsystem: "Generator Sets", Component: "General", Field: "Generator Model"}
	ups := taxonomy.Path{Domain: "UPS & Battery Systems", Subsystem: "UPS & Battery", Component: "General", Field: "UPS Model"}
	s.Set(gen, "G1")
	s.Set(ups, "U1")

	s.ClearDomain("Power Infrastructure")
	if _, ok := s.Get(gen); ok {
		t.Error("ClearDomain should drop the domain's values")
	}
	if _, ok := s.Get(ups); !ok {
		t.Error("ClearDomain should keep other domains")
	}

	s.Clear()
	if _, ok := s.Get(ups); ok {
		t.Error("Clear should drop every value")
	}
}

func TestParseValues(t *testing.T) {
	s := New(powerTaxonomy())
	n, err := s.ParseValues([]byte("Power:\n  Feed:\n    Feed:\n      Voltage: 400V\n      Amperage: 100\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}
	if v, _ := s.Get(path("Amperage")); v != "100" {
		t.Errorf("Amperage = %q, want %q", v, "100")
	}
}

func TestParseValues_UnknownPathWritesNothing(t *testing.T) {
	s := New(powerTaxonomy())
	_, err := s.ParseValues([]byte("Power:\n  Feed:\n    Feed:\n      Voltage: 400V\n      Frequency: 50Hz\n"))
	if !errors.Is(err, ErrUnknownPath) {
		t.Fatalf("err = %v, want ErrUnknownPath", err)
	}
	if !strings.Contains(err.Error(), "Frequency") {
		t.Errorf("error should name the undeclared field, got %v", err)
	}
	if _, ok := s.Get(path("Voltage")); ok {
		t.Error("rejected document must not write any value")
	}
}

func TestMarshalValues_RoundTrip(t *testing.T) {
	tax := taxonomy.Default()
	s := New(tax)
	s.Set(taxonomy.Path{Domain: "Cooling Infrastructure", Subsystem: "Outdoor Unit", Component: "General", Field: "Condenser Type"}, "Air-cooled")
	s.Set(taxonomy.Path{Domain: "Cooling Infrastructure", Subsystem: "Indoor Unit", Component: "General", Field: "Cooling Type"}, "CRAC")

	data, err := s.MarshalValues()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Indoor Unit is declared before Outdoor Unit.
	if strings.Index(string(data), "Indoor Unit") > strings.Index(string(data), "Outdoor Unit") {
		t.Errorf("values not in taxonomy order:\n%s", data)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "values.yaml")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatal(err)
	}
	back := New(tax)
	if _, err := back.LoadValues(file); err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(s.Missing("Cooling Infrastructure"), back.Missing("Cooling Infrastructure")); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalValues_Empty(t *testing.T) {
	data, err := New(powerTaxonomy()).MarshalValues()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}\n" {
		t.Errorf("empty store = %q, want %q", data, "{}\n")
	}
}
