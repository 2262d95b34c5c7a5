package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kokistudios/assess/internal/bundle"
	"github.com/kokistudios/assess/internal/export"
	"github.com/kokistudios/assess/internal/session"
	"github.com/kokistudios/assess/internal/taxonomy"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tax, err := taxonomy.Parse([]byte(`
Power:
  Feed:
    Feed: [Voltage, Amperage]
Fire & Life-Safety:
  Suppression:
    Sprinklers: [Type]
`))
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New(tax, session.WithID("test-session"))
	exp := export.New(tax, sess.Record, export.WithSessionID(sess.ID))
	dir := t.TempDir()
	exp.SetSaver(export.DirSaver{Dir: dir})
	return NewServer(sess, exp, "test"), dir
}

func setField(t *testing.T, s *Server, path, value string) SetFieldResult {
	t.Helper()
	_, out, err := s.handleSetField(context.Background(), nil, SetFieldArgs{Path: path, Value: value})
	if err != nil {
		t.Fatalf("set %s: %v", path, err)
	}
	return out.(SetFieldResult)
}

func TestHandleTaxonomy(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleTaxonomy(context.Background(), nil, TaxonomyArgs{})
	if err != nil {
		t.Fatal(err)
	}
	want := []DomainSummary{
		{Name: "Power", Subsystems: 1, Components: 1, Fields: 2},
		{Name: "Fire & Life-Safety", Subsystems: 1, Components: 1, Fields: 1},
	}
	if diff := cmp.Diff(want, out.(TaxonomyResult).Domains); diff != "" {
		t.Errorf("domains (-want +got):\n%s", diff)
	}

	_, out, err = s.handleTaxonomy(context.Background(), nil, TaxonomyArgs{Domain: "Power"})
	if err != nil {
		t.Fatal(err)
	}
	tree := out.(TaxonomyResult).Subsystems
	if len(tree) != 1 || tree[0].Components[0].Fields[1] != "Amperage" {
		t.Errorf("unexpected tree %+v", tree)
	}

	if _, _, err := s.handleTaxonomy(context.Background(), nil, TaxonomyArgs{Domain: "Cooling"}); !errors.Is(err, taxonomy.ErrUnknownDomain) {
		t.Errorf("err = %v, want ErrUnknownDomain", err)
	}
}

func TestHandleSetField(t *testing.T) {
	s, _ := newTestServer(t)
	res := setField(t, s, "Power/Feed/Feed/Voltage", "400V")
	if res.DomainFilled != 1 || res.DomainTotal != 2 || res.DomainComplete {
		t.Errorf("unexpected result %+v", res)
	}

	_, out, err := s.handleSetField(context.Background(), nil, SetFieldArgs{
		Domain: "Power", Subsystem: "Feed", Component: "Feed", Field: "Amperage", Value: "100A",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.(SetFieldResult).DomainComplete {
		t.Error("domain should be complete")
	}

	if _, _, err := s.handleSetField(context.Background(), nil, SetFieldArgs{Path: "Power/Feed/Feed/Phase", Value: "3"}); err == nil {
		t.Error("expected error for undeclared field")
	}
	if _, _, err := s.handleSetField(context.Background(), nil, SetFieldArgs{Domain: "Power", Value: "x"}); err == nil {
		t.Error("expected error for partial address")
	}
}

func TestHandleDomainReport(t *testing.T) {
	s, _ := newTestServer(t)
	setField(t, s, "Power/Feed/Feed/Amperage", "100A")
	_, out, err := s.handleDomainReport(context.Background(), nil, DomainArgs{Domain: "Power"})
	if err != nil {
		t.Fatal(err)
	}
	got := out.(DomainReportResult)
	want := DomainReportResult{
		Domain: "Power",
		Rows: []ReportRow{
			{Subsystem: "Feed", Component: "Feed", Field: "Voltage", Value: "-"},
			{Subsystem: "Feed", Component: "Feed", Field: "Amperage", Value: "100A", Filled: true},
		},
		Missing: []string{"Power/Feed/Feed/Voltage"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
}

func TestHandleToggle(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleToggle(context.Background(), nil, DomainArgs{Domain: "Power"})
	if err != nil {
		t.Fatal(err)
	}
	res := out.(ToggleResult)
	if res.Selected || !strings.Contains(res.Message, "incomplete") {
		t.Errorf("incomplete domain should be refused, got %+v", res)
	}

	setField(t, s, "Power/Feed/Feed/Voltage", "400V")
	setField(t, s, "Power/Feed/Feed/Amperage", "100A")
	_, out, _ = s.handleToggle(context.Background(), nil, DomainArgs{Domain: "Power"})
	if res := out.(ToggleResult); !res.Selected || res.Message != "" {
		t.Errorf("complete domain should be selected, got %+v", res)
	}

	_, out, _ = s.handleStatus(context.Background(), nil, StatusArgs{})
	status := out.(StatusResult)
	if !status.Domains[0].Selected || status.Domains[1].Selected {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestExportPlanAndConfirm_Single(t *testing.T) {
	s, dir := newTestServer(t)
	if _, _, err := s.handleExportPlan(context.Background(), nil, ExportPlanArgs{Domains: []string{"Fire & Life-Safety"}}); !errors.Is(err, export.ErrIncomplete) {
		t.Fatalf("err = %v, want ErrIncomplete", err)
	}

	setField(t, s, "Fire & Life-Safety/Suppression/Sprinklers/Type", "Wet pipe")
	_, out, err := s.handleExportPlan(context.Background(), nil, ExportPlanArgs{Domains: []string{"Fire & Life-Safety"}})
	if err != nil {
		t.Fatal(err)
	}
	plan := out.(ExportPlanResult)
	if plan.Archive != "" || len(plan.Files) != 1 || plan.Files[0].File != "Fire_Life-Safety.md" {
		t.Errorf("unexpected plan %+v", plan)
	}

	if _, _, err := s.handleExportConfirm(context.Background(), nil, ExportConfirmArgs{PlanID: plan.PlanID}); err == nil {
		t.Fatal("expected error without confirmation")
	}
	_, out, err = s.handleExportConfirm(context.Background(), nil, ExportConfirmArgs{PlanID: plan.PlanID, UserConfirmed: true})
	if err != nil {
		t.Fatal(err)
	}
	res := out.(ExportConfirmResult)
	if res.Path != filepath.Join(dir, "Fire_Life-Safety.md") {
		t.Errorf("path = %q", res.Path)
	}
	if !s.sess.IsSaved("Fire & Life-Safety") {
		t.Error("exported domain should be marked saved")
	}
}

func TestExportPlanAndConfirm_BatchFromSelection(t *testing.T) {
	s, dir := newTestServer(t)
	if _, _, err := s.handleExportPlan(context.Background(), nil, ExportPlanArgs{}); err == nil {
		t.Fatal("expected error for empty selection")
	}

	setField(t, s, "Power/Feed/Feed/Voltage", "400V")
	setField(t, s, "Power/Feed/Feed/Amperage", "100A")
	setField(t, s, "Fire & Life-Safety/Suppression/Sprinklers/Type", "Wet pipe")
	s.handleToggle(context.Background(), nil, DomainArgs{Domain: "Fire & Life-Safety"})
	s.handleToggle(context.Background(), nil, DomainArgs{Domain: "Power"})

	_, out, err := s.handleExportPlan(context.Background(), nil, ExportPlanArgs{})
	if err != nil {
		t.Fatal(err)
	}
	plan := out.(ExportPlanResult)
	wantFiles := []PlannedFile{
		{Domain: "Power", File: "Power.md"},
		{Domain: "Fire & Life-Safety", File: "Fire_Life-Safety.md"},
	}
	if diff := cmp.Diff(wantFiles, plan.Files); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if plan.Archive != export.DefaultArchiveName {
		t.Errorf("archive = %q", plan.Archive)
	}

	_, out, err = s.handleExportConfirm(context.Background(), nil, ExportConfirmArgs{PlanID: plan.PlanID, UserConfirmed: true})
	if err != nil {
		t.Fatal(err)
	}
	res := out.(ExportConfirmResult)
	if res.Documents != 2 || res.Path != filepath.Join(dir, export.DefaultArchiveName) {
		t.Errorf("unexpected result %+v", res)
	}
	m, err := bundle.ReadManifest(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if m.SessionID != "test-session" || m.ExportID != res.ExportID {
		t.Errorf("manifest = %+v", m)
	}

	if _, _, err := s.handleExportConfirm(context.Background(), nil, ExportConfirmArgs{PlanID: plan.PlanID, UserConfirmed: true}); err == nil {
		t.Error("a plan should not run twice")
	}
}
