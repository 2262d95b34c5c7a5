package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kokistudios/assess/internal/export"
	"github.com/kokistudios/assess/internal/report"
	"github.com/kokistudios/assess/internal/session"
	"github.com/kokistudios/assess/internal/taxonomy"
	"github.com/kokistudios/assess/internal/ui"
)

// Server exposes one assessment session as MCP tools.
type Server struct {
	mu     sync.Mutex
	sess   *session.Session
	exp    *export.Orchestrator
	plans  *PlanStore
	server *mcp.Server
}

// NewServer creates an MCP server over sess. Exports go through exp, which
// must read from sess.Record.
func NewServer(sess *session.Session, exp *export.Orchestrator, version string) *Server {
	s := &Server{
		sess:  sess,
		exp:   exp,
		plans: NewPlanStore(DefaultPlanTTL),
	}

	impl := &mcp.Implementation{
		Name:    "assess",
		Version: version,
	}

	s.server = mcp.NewServer(impl, nil)
	s.registerTools()

	return s
}

// Run starts the MCP server on stdio.
func (s *Server) Run(ctx context.Context) error {
	stop := s.plans.StartCleanupRoutine(time.Minute)
	defer close(stop)
	ui.Logger.Info("MCP server starting", "session", s.sess.ID, "domains", len(s.sess.Taxonomy.Domains))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assess_taxonomy",
		Description: "List the assessment domains with subsystem, component and field counts. Pass a domain to get its full subsystem/component/field tree in declaration order.",
	}, s.handleTaxonomy)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assess_status",
		Description: "Show progress for every domain: fields filled, completeness, saved flag and whether it is selected for batch export.",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "assess_set_field",
		Description: "Set one field value. Address it with path \"Domain/Subsystem/Component/Field\" " +
			"or with the four separate arguments. Only fields declared in the taxonomy are accepted.",
	}, s.handleSetField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assess_domain_report",
		Description: "Return the report rows of a domain in declaration order, with '-' for missing values, plus the list of missing field paths.",
	}, s.handleDomainReport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "assess_toggle_selection",
		Description: "Toggle a domain in the batch export selection. Adding requires every field of the domain to be filled; " +
			"removing always succeeds.",
	}, s.handleToggle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "assess_mark_saved",
		Description: "Mark a domain as saved. The flag is informational and does not affect export.",
	}, s.handleMarkSaved)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "assess_export_plan",
		Description: "Prepare an export without writing anything. One domain produces a single document; several produce an archive. " +
			"With no domains the current batch selection is used. Returns a plan_id and the file names that would be written. " +
			"Show the plan to the user before confirming.",
	}, s.handleExportPlan)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "assess_export_confirm",
		Description: "Execute a plan from assess_export_plan. BEFORE CALLING: show the plan to the user and ask for explicit " +
			"approval, then call with user_confirmed=true. Plans expire after 15 minutes and can be used once.",
	}, s.handleExportConfirm)
}

// TaxonomyArgs defines input for assess_taxonomy.
type TaxonomyArgs struct {
	Domain string `json:"domain,omitempty" jsonschema:"Domain name to expand (optional)"`
}

// DomainSummary is one domain in assess_taxonomy output.
type DomainSummary struct {
	Name       string `json:"name"`
	Subsystems int    `json:"subsystems"`
	Components int    `json:"components"`
	Fields     int    `json:"fields"`
}

// ComponentTree is a component and its fields.
type ComponentTree struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// SubsystemTree is a subsystem and its components.
type SubsystemTree struct {
	Name       string          `json:"name"`
	Components []ComponentTree `json:"components"`
}

// TaxonomyResult contains assess_taxonomy output.
type TaxonomyResult struct {
	Domains    []DomainSummary `json:"domains,omitempty"`
	Domain     string          `json:"domain,omitempty"`
	Subsystems []SubsystemTree `json:"subsystems,omitempty"`
}

func (s *Server) handleTaxonomy(ctx context.Context, req *mcp.CallToolRequest, args TaxonomyArgs) (*mcp.CallToolResult, any, error) {
	tax := s.sess.Taxonomy
	if args.Domain == "" {
		out := TaxonomyResult{}
		for i := range tax.Domains {
			d := &tax.Domains[i]
			out.Domains = append(out.Domains, DomainSummary{
				Name:       d.Name,
				Subsystems: len(d.Subsystems),
				Components: d.ComponentCount(),
				Fields:     d.FieldCount(),
			})
		}
		return nil, out, nil
	}

	d, err := tax.LookupDomain(args.Domain)
	if err != nil {
		return nil, nil, err
	}
	out := TaxonomyResult{Domain: d.Name}
	for _, sub := range d.Subsystems {
		st := SubsystemTree{Name: sub.Name}
		for _, c := range sub.Components {
			st.Components = append(st.Components, ComponentTree{Name: c.Name, Fields: c.Fields})
		}
		out.Subsystems = append(out.Subsystems, st)
	}
	return nil, out, nil
}

// StatusArgs defines input for assess_status.
type StatusArgs struct{}

// DomainProgress is one line of assess_status output.
type DomainProgress struct {
	Domain   string `json:"domain"`
	Filled   int    `json:"filled"`
	Total    int    `json:"total"`
	Complete bool   `json:"complete"`
	Saved    bool   `json:"saved"`
	Selected bool   `json:"selected"`
}

// StatusResult contains assess_status output.
type StatusResult struct {
	SessionID string           `json:"session_id"`
	Mode      string           `json:"mode"`
	Domains   []DomainProgress `json:"domains"`
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatusResult{SessionID: s.sess.ID, Mode: string(s.sess.Mode)}
	for _, st := range s.sess.Status() {
		out.Domains = append(out.Domains, DomainProgress(st))
	}
	return nil, out, nil
}

// SetFieldArgs defines input for assess_set_field.
type SetFieldArgs struct {
	Path      string `json:"path,omitempty" jsonschema:"Full field path Domain/Subsystem/Component/Field"`
	Domain    string `json:"domain,omitempty" jsonschema:"Domain name (when path is not given)"`
	Subsystem string `json:"subsystem,omitempty" jsonschema:"Subsystem name (when path is not given)"`
	Component string `json:"component,omitempty" jsonschema:"Component name (when path is not given)"`
	Field     string `json:"field,omitempty" jsonschema:"Field name (when path is not given)"`
	Value     string `json:"value" jsonschema:"Value to store; blank clears the field for completeness purposes"`
}

// SetFieldResult contains assess_set_field output.
type SetFieldResult struct {
	Path           string `json:"path"`
	DomainFilled   int    `json:"domain_filled"`
	DomainTotal    int    `json:"domain_total"`
	DomainComplete bool   `json:"domain_complete"`
	Selected       bool   `json:"selected"`
}

func (s *Server) handleSetField(ctx context.Context, req *mcp.CallToolRequest, args SetFieldArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.resolve(args)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sess.SetField(p, args.Value); err != nil {
		return nil, nil, err
	}
	filled, total := s.sess.Record.Filled(p.Domain)
	return nil, SetFieldResult{
		Path:           p.String(),
		DomainFilled:   filled,
		DomainTotal:    total,
		DomainComplete: s.sess.Record.IsDomainComplete(p.Domain),
		Selected:       s.sess.Pool.Contains(p.Domain),
	}, nil
}

func (s *Server) resolve(args SetFieldArgs) (taxonomy.Path, error) {
	if args.Path != "" {
		return s.sess.Taxonomy.ResolvePath(args.Path)
	}
	if args.Domain == "" || args.Subsystem == "" || args.Component == "" || args.Field == "" {
		return taxonomy.Path{}, fmt.Errorf("either path or all of domain, subsystem, component and field are required")
	}
	return taxonomy.Path{Domain: args.Domain, Subsystem: args.Subsystem, Component: args.Component, Field: args.Field}, nil
}

// DomainArgs names a domain.
type DomainArgs struct {
	Domain string `json:"domain" jsonschema:"Domain name"`
}

// ReportRow is one row of assess_domain_report output.
type ReportRow struct {
	Subsystem string `json:"subsystem"`
	Component string `json:"component"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Filled    bool   `json:"filled"`
}

// DomainReportResult contains assess_domain_report output.
type DomainReportResult struct {
	Domain   string      `json:"domain"`
	Complete bool        `json:"complete"`
	Rows     []ReportRow `json:"rows"`
	Missing  []string    `json:"missing,omitempty"`
}

func (s *Server) handleDomainReport(ctx context.Context, req *mcp.CallToolRequest, args DomainArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sess.Taxonomy.LookupDomain(args.Domain); err != nil {
		return nil, nil, err
	}
	placeholder := s.exp.Options().Placeholder
	out := DomainReportResult{
		Domain:   args.Domain,
		Complete: s.sess.Record.IsDomainComplete(args.Domain),
	}
	for _, r := range report.BuildRowsWith(args.Domain, s.sess.Record, s.sess.Taxonomy, placeholder) {
		out.Rows = append(out.Rows, ReportRow(r))
	}
	for _, p := range s.sess.Record.Missing(args.Domain) {
		out.Missing = append(out.Missing, p.String())
	}
	return nil, out, nil
}

// ToggleResult contains assess_toggle_selection output.
type ToggleResult struct {
	Domain    string   `json:"domain"`
	Selected  bool     `json:"selected"`
	Selection []string `json:"selection"`
	Message   string   `json:"message,omitempty"`
}

func (s *Server) handleToggle(ctx context.Context, req *mcp.CallToolRequest, args DomainArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sess.Taxonomy.LookupDomain(args.Domain); err != nil {
		return nil, nil, err
	}
	was := s.sess.Pool.Contains(args.Domain)
	now := s.sess.Toggle(args.Domain)
	out := ToggleResult{Domain: args.Domain, Selected: now, Selection: s.sess.Pool.Members()}
	if !was && !now {
		filled, total := s.sess.Record.Filled(args.Domain)
		out.Message = fmt.Sprintf("%s is incomplete (%d/%d fields filled) and was not selected.", args.Domain, filled, total)
	}
	return nil, out, nil
}

// MarkSavedResult contains assess_mark_saved output.
type MarkSavedResult struct {
	Domain string `json:"domain"`
	Saved  bool   `json:"saved"`
}

func (s *Server) handleMarkSaved(ctx context.Context, req *mcp.CallToolRequest, args DomainArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sess.Taxonomy.LookupDomain(args.Domain); err != nil {
		return nil, nil, err
	}
	s.sess.MarkSaved(args.Domain)
	return nil, MarkSavedResult{Domain: args.Domain, Saved: true}, nil
}

// ExportPlanArgs defines input for assess_export_plan.
type ExportPlanArgs struct {
	Domains []string `json:"domains,omitempty" jsonschema:"Domains to export (optional - defaults to the current batch selection)"`
}

// ExportPlanResult contains assess_export_plan output.
type ExportPlanResult struct {
	PlanID    string        `json:"plan_id"`
	Files     []PlannedFile `json:"files"`
	Archive   string        `json:"archive,omitempty"`
	ExpiresAt string        `json:"expires_at"`
}

func (s *Server) handleExportPlan(ctx context.Context, req *mcp.CallToolRequest, args ExportPlanArgs) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	domains := args.Domains
	if len(domains) == 0 {
		domains = s.sess.Pool.Members()
	}
	if len(domains) == 0 {
		return nil, nil, fmt.Errorf("no domains given and the batch selection is empty")
	}

	ordered, err := s.ordered(domains)
	if err != nil {
		return nil, nil, err
	}
	var blocked []string
	for _, d := range ordered {
		if !s.exp.Exportable(d) {
			filled, total := s.sess.Record.Filled(d)
			blocked = append(blocked, fmt.Sprintf("%s (%d/%d)", d, filled, total))
		}
	}
	if len(blocked) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", export.ErrIncomplete, strings.Join(blocked, ", "))
	}

	plan := &ExportPlan{Domains: ordered}
	if len(ordered) == 1 {
		plan.Files = []PlannedFile{{Domain: ordered[0], File: s.exp.FileName(ordered[0])}}
	} else {
		names := export.FileNames(ordered, s.exp.Options().Suffix)
		for _, d := range ordered {
			plan.Files = append(plan.Files, PlannedFile{Domain: d, File: names[d]})
		}
		plan.Archive = s.exp.Options().ArchiveName
	}
	id := s.plans.Create(plan)
	return nil, ExportPlanResult{
		PlanID:    id,
		Files:     plan.Files,
		Archive:   plan.Archive,
		ExpiresAt: plan.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// ordered dedupes and validates domains, returning them in taxonomy order.
func (s *Server) ordered(domains []string) ([]string, error) {
	want := make(map[string]bool, len(domains))
	for _, d := range domains {
		if _, err := s.sess.Taxonomy.LookupDomain(d); err != nil {
			return nil, err
		}
		want[d] = true
	}
	var out []string
	for _, name := range s.sess.Taxonomy.DomainNames() {
		if want[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// ExportConfirmArgs defines input for assess_export_confirm.
type ExportConfirmArgs struct {
	PlanID        string `json:"plan_id" jsonschema:"Plan ID returned by assess_export_plan"`
	UserConfirmed bool   `json:"user_confirmed" jsonschema:"REQUIRED. Set true ONLY after showing the plan to the user and receiving approval."`
}

// ExportConfirmResult contains assess_export_confirm output.
type ExportConfirmResult struct {
	Path      string   `json:"path"`
	Domains   []string `json:"domains"`
	ExportID  string   `json:"export_id,omitempty"`
	Documents int      `json:"documents"`
}

func (s *Server) handleExportConfirm(ctx context.Context, req *mcp.CallToolRequest, args ExportConfirmArgs) (*mcp.CallToolResult, any, error) {
	if !args.UserConfirmed {
		return nil, nil, fmt.Errorf("user_confirmed must be true; show the plan to the user and ask first")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.plans.Take(args.PlanID)
	if err != nil {
		return nil, nil, err
	}

	if plan.Archive == "" {
		path, err := s.exp.SaveSingle(plan.Domains[0])
		if err != nil {
			return nil, nil, err
		}
		s.sess.MarkSaved(plan.Domains[0])
		return nil, ExportConfirmResult{Path: path, Domains: plan.Domains, Documents: 1}, nil
	}

	path, archive, err := s.exp.SaveBatch(ctx, plan.Domains)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range plan.Domains {
		s.sess.MarkSaved(d)
	}
	return nil, ExportConfirmResult{
		Path:      path,
		Domains:   plan.Domains,
		ExportID:  archive.Manifest.ExportID,
		Documents: len(archive.Manifest.Entries),
	}, nil
}
