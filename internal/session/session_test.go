package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kokistudios/assess/internal/record"
	"github.com/kokistudios/assess/internal/taxonomy"
)

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.Parse([]byte(`
Power:
  Feed:
    Feed: [Voltage, Amperage]
  Generator:
    Genset: [Capacity]
Cooling:
  CRAC:
    Unit: [Count]
`))
	if err != nil {
		t.Fatal(err)
	}
	return tax
}

func p(domain, sub, comp, field string) taxonomy.Path {
	return taxonomy.Path{Domain: domain, Subsystem: sub, Component: comp, Field: field}
}

func fillPower(t *testing.T, s *Session) {
	t.Helper()
	for _, path := range []taxonomy.Path{
		p("Power", "Feed", "Feed", "Voltage"),
		p("Power", "Feed", "Feed", "Amperage"),
		p("Power", "Generator", "Genset", "Capacity"),
	} {
		if err := s.SetField(path, "x"); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input, want string
	}{
		{"Site Survey", "site-survey"},
		{"DC-2 / Hall B!", "dc-2-hall-b"},
		{"", "assessment"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"a b c d e f g h i j k l m n o p q r s t u v w x y z extra long", "a-b-c-d-e-f-g-h-i-j-k-l-m-n-o-p-q-r-s-t-u-v-w-x"},
	}
	for _, tc := range cases {
		if got := slugify(tc.input); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGenerateID_Format(t *testing.T) {
	id := GenerateID("site survey")
	parts := strings.Split(id, "-")
	if len(parts) != 4 {
		t.Fatalf("expected 4 parts in ID %q", id)
	}
	if len(parts[0]) != 8 {
		t.Errorf("date part %q should be 8 chars", parts[0])
	}
	if len(parts[3]) != 8 {
		t.Errorf("suffix %q should be 8 chars", parts[3])
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID("same")
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeMultiDomain, "multi": ModeMultiDomain, " Single ": ModeSingleRecord} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("batch"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNew_Options(t *testing.T) {
	s := New(testTaxonomy(t), WithID("fixed"), WithMode(ModeSingleRecord), WithAutoEvict(true))
	if s.ID != "fixed" || s.Mode != ModeSingleRecord || !s.AutoEvict() {
		t.Errorf("options not applied: id=%q mode=%q evict=%v", s.ID, s.Mode, s.AutoEvict())
	}
	if New(testTaxonomy(t)).Mode != ModeMultiDomain {
		t.Error("default mode should be multi")
	}
}

func TestSetField_UnknownPath(t *testing.T) {
	s := New(testTaxonomy(t))
	err := s.SetField(p("Power", "Feed", "Feed", "Frequency"), "50Hz")
	if !errors.Is(err, record.ErrUnknownPath) {
		t.Errorf("err = %v, want ErrUnknownPath", err)
	}
}

func TestToggle_GatedByCompleteness(t *testing.T) {
	s := New(testTaxonomy(t))
	if s.Toggle("Power") {
		t.Fatal("incomplete domain must not join the pool")
	}
	fillPower(t, s)
	if !s.Toggle("Power") {
		t.Fatal("complete domain should join the pool")
	}
	if s.Toggle("Power") {
		t.Error("second toggle should remove")
	}
}

func TestSetField_StaleMembershipWithoutAutoEvict(t *testing.T) {
	s := New(testTaxonomy(t))
	fillPower(t, s)
	s.Toggle("Power")
	if err := s.SetField(p("Power", "Feed", "Feed", "Voltage"), "  "); err != nil {
		t.Fatal(err)
	}
	if !s.Pool.Contains("Power") {
		t.Error("membership should stay stale without auto-evict")
	}
}

func TestSetField_AutoEvict(t *testing.T) {
	s := New(testTaxonomy(t), WithAutoEvict(true))
	fillPower(t, s)
	s.Toggle("Power")
	if err := s.SetField(p("Power", "Feed", "Feed", "Voltage"), ""); err != nil {
		t.Fatal(err)
	}
	if s.Pool.Contains("Power") {
		t.Error("auto-evict should drop the now-incomplete domain")
	}
}

func TestSelect_Validation(t *testing.T) {
	s := New(testTaxonomy(t))
	if err := s.Select("Lighting", "", ""); !errors.Is(err, taxonomy.ErrUnknownDomain) {
		t.Errorf("err = %v, want ErrUnknownDomain", err)
	}
	if err := s.Select("Power", "CRAC", ""); err == nil {
		t.Error("expected unknown subsystem error")
	}
	if err := s.Select("Power", "Feed", "Genset"); err == nil {
		t.Error("expected unknown component error")
	}
	if err := s.Select("Power", "", "Feed"); err == nil {
		t.Error("expected error for component without subsystem")
	}
	if err := s.Select("Power", "Feed", "Feed"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.Context(), (Context{Domain: "Power", Subsystem: "Feed", Component: "Feed"}); got != want {
		t.Errorf("context = %+v, want %+v", got, want)
	}
}

func TestSelect_MultiDomainKeepsValues(t *testing.T) {
	s := New(testTaxonomy(t))
	s.Select("Power", "Feed", "Feed")
	s.SetField(p("Power", "Feed", "Feed", "Voltage"), "400V")
	s.Select("Cooling", "CRAC", "Unit")
	if v, ok := s.Record.Get(p("Power", "Feed", "Feed", "Voltage")); !ok || v != "400V" {
		t.Errorf("value lost on context switch: %q, %v", v, ok)
	}
}

func TestSelect_SingleRecordResets(t *testing.T) {
	s := New(testTaxonomy(t), WithMode(ModeSingleRecord))
	s.Select("Power", "Feed", "Feed")
	s.SetField(p("Power", "Feed", "Feed", "Voltage"), "400V")

	// Re-selecting the same context keeps the record.
	s.Select("Power", "Feed", "Feed")
	if _, ok := s.Record.Get(p("Power", "Feed", "Feed", "Voltage")); !ok {
		t.Fatal("same-context select should not clear")
	}

	s.Select("Power", "Generator", "Genset")
	if _, ok := s.Record.Get(p("Power", "Feed", "Feed", "Voltage")); ok {
		t.Error("context switch should clear the record in single mode")
	}
}

func TestSelect_SingleRecordResetEvicts(t *testing.T) {
	s := New(testTaxonomy(t), WithMode(ModeSingleRecord), WithAutoEvict(true))
	s.Select("Power", "", "")
	fillPower(t, s)
	s.Toggle("Power")
	s.Select("Cooling", "", "")
	if s.Pool.Contains("Power") {
		t.Error("reset record should evict with auto-evict on")
	}
}

func TestSaved_IndependentOfCompleteness(t *testing.T) {
	s := New(testTaxonomy(t))
	s.MarkSaved("Cooling")
	if !s.IsSaved("Cooling") || s.IsSaved("Power") {
		t.Error("saved flags wrong")
	}
	if s.Toggle("Cooling") {
		t.Error("saved flag must not make a domain exportable")
	}
}

func TestStatus(t *testing.T) {
	s := New(testTaxonomy(t))
	fillPower(t, s)
	s.Toggle("Power")
	s.MarkSaved("Cooling")

	want := []DomainStatus{
		{Domain: "Power", Filled: 3, Total: 3, Complete: true, Selected: true},
		{Domain: "Cooling", Filled: 0, Total: 1, Saved: true},
	}
	if diff := cmp.Diff(want, s.Status()); diff != "" {
		t.Errorf("Status (-want +got):\n%s", diff)
	}
}
