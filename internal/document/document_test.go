package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kokistudios/assess/internal/report"
)

func sampleSections() []report.Section {
	return report.Sections([]report.Row{
		{Subsystem: "Feed", Component: "Feed", Field: "Voltage", Value: "400V", Filled: true},
		{Subsystem: "Feed", Component: "Feed", Field: "Amperage", Value: "-"},
		{Subsystem: "Backup", Component: "Gen", Field: "Model", Value: "A|B\nC", Filled: true},
	})
}

func sampleMeta() Meta {
	rows := []report.Row{
		{Subsystem: "Feed", Component: "Feed", Field: "Voltage", Value: "400V", Filled: true},
		{Subsystem: "Feed", Component: "Feed", Field: "Amperage", Value: "-"},
		{Subsystem: "Backup", Component: "Gen", Field: "Model", Value: "A|B\nC", Filled: true},
	}
	return MetaFor(report.Summarize("Power", rows), "sess-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestMetaFor(t *testing.T) {
	m := sampleMeta()
	if m.Status != StatusPartial {
		t.Errorf("status = %q, want %q", m.Status, StatusPartial)
	}
	if m.Fields != 3 || m.Filled != 2 || m.Subsystems != 2 || m.Components != 2 {
		t.Errorf("counts = %+v", m)
	}
	full := MetaFor(report.Summary{Domain: "Power", Fields: 2, Filled: 2}, "", time.Now())
	if full.Status != StatusComplete {
		t.Errorf("status = %q, want %q", full.Status, StatusComplete)
	}
}

func TestMarkdown_Generate(t *testing.T) {
	doc, err := Markdown{}.Generate(sampleMeta(), Layout{Title: "Power Report", Subtitle: "Inventory Breakdown", StartLine: 1}, sampleSections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := doc.Body
	for _, want := range []string{
		"# Power Report\n",
		"Inventory Breakdown\n",
		"| Domain | Power |",
		"| Fields filled | 2/3 |",
		"## Feed\n",
		"| Feed | Voltage | 400V |",
		"| Feed | Amperage | - |",
		"## Backup\n",
		`| Gen | Model | A\|B<br>C |`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Index(body, "## Feed") > strings.Index(body, "## Backup") {
		t.Error("sections out of order")
	}
	if strings.Index(body, "Voltage") > strings.Index(body, "Amperage") {
		t.Error("rows out of order")
	}
}

func TestMarkdown_DefaultTitle(t *testing.T) {
	doc, err := Markdown{}.Generate(sampleMeta(), Layout{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.Body, "# Power\n") {
		t.Errorf("expected domain as title, got %q", doc.Body[:20])
	}
}

func TestMarkdown_NoDomain(t *testing.T) {
	if _, err := (Markdown{}).Generate(Meta{}, Layout{}, nil); err == nil {
		t.Error("expected error without domain")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	doc, _ := Markdown{}.Generate(sampleMeta(), Layout{Title: "Power Report"}, sampleSections())
	raw, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !back.Meta.GeneratedAt.Equal(doc.Meta.GeneratedAt) {
		t.Errorf("generated_at = %v, want %v", back.Meta.GeneratedAt, doc.Meta.GeneratedAt)
	}
	back.Meta.GeneratedAt = doc.Meta.GeneratedAt
	if back.Meta != doc.Meta {
		t.Errorf("meta = %+v, want %+v", back.Meta, doc.Meta)
	}
	if back.Body != doc.Body {
		t.Errorf("body changed on round trip")
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"no frontmatter": "# Just markdown",
		"unterminated":   "---\ndomain: x\nno closing",
		"missing domain": "---\nstatus: partial\n---\nbody",
		"invalid yaml":   "---\ndomain: [unclosed\n---\nbody",
	}
	for name, raw := range cases {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	doc, _ := Markdown{}.Generate(sampleMeta(), Layout{}, sampleSections())
	path := filepath.Join(t.TempDir(), "nested", "Power.md")
	if err := doc.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if doc.FilePath != path {
		t.Errorf("FilePath = %q, want %q", doc.FilePath, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("document not written: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Meta.Domain != "Power" {
		t.Errorf("domain = %q, want %q", loaded.Meta.Domain, "Power")
	}
}
