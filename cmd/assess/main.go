package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kokistudios/assess/internal/bundle"
	"github.com/kokistudios/assess/internal/document"
	"github.com/kokistudios/assess/internal/export"
	assessmcp "github.com/kokistudios/assess/internal/mcp"
	"github.com/kokistudios/assess/internal/session"
	"github.com/kokistudios/assess/internal/store"
	"github.com/kokistudios/assess/internal/taxonomy"
	"github.com/kokistudios/assess/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor, verbose bool

	rootCmd := &cobra.Command{
		Use:   "assess",
		Short: "Facility assessment collector and report exporter",
		Long: "Collect field values for a facility assessment organized as domain → subsystem → component → field, " +
			"check each domain for completeness, and export per-domain reports singly or as an archive.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
			ui.SetVerbose(verbose)
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "assess", Title: "Assessment Commands:"},
		&cobra.Group{ID: "export", Title: "Export Commands:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	for _, c := range []struct {
		cmd   *cobra.Command
		group string
	}{
		{initCmd(), "core"},
		{doctorCmd(), "core"},
		{taxonomyCmd(), "assess"},
		{statusCmd(), "assess"},
		{fillCmd(), "assess"},
		{previewCmd(), "assess"},
		{exportCmd(), "export"},
		{openCmd(), "export"},
		{bundleCmd(), "export"},
		{configCmd(), "config"},
	} {
		c.cmd.GroupID = c.group
		rootCmd.AddCommand(c.cmd)
	}
	rootCmd.AddCommand(completionCmd())
	rootCmd.AddCommand(mcpServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialize ASSESS_HOME",
		Long:    "Create the ASSESS_HOME directory (~/.assess by default) with config.yaml and the exports/ directory.",
		Example: "  assess init\n  assess init --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()
			if err := store.Init(home, force); err != nil {
				return err
			}
			ui.LogoWithTagline("facility assessment reports")
			ui.Success("assess initialized")
			ui.Detail("Home:", home)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if ASSESS_HOME already exists")
	return cmd
}

func loadStore() (*store.Store, error) {
	s, err := store.LoadOrDefault(store.Home())
	if err != nil {
		return nil, fmt.Errorf("failed to load ASSESS_HOME (run 'assess doctor'): %w", err)
	}
	return s, nil
}

// inputFlags are the ways field values enter a command.
type inputFlags struct {
	values []string
	sets   []string
}

func (in *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&in.values, "values", nil, "YAML values file (domain → subsystem → component → field: value); repeatable")
	cmd.Flags().StringArrayVar(&in.sets, "set", nil, `Set one field, "Domain/Subsystem/Component/Field=value"; repeatable`)
}

// buildSession creates a session from config and loads every input into it.
func buildSession(s *store.Store, in inputFlags) (*session.Session, error) {
	tax, err := s.Taxonomy()
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	mode, err := session.ParseMode(s.Config.Session.Mode)
	if err != nil {
		return nil, err
	}
	sess := session.New(tax,
		session.WithMode(mode),
		session.WithAutoEvict(s.Config.Selection.AutoEvict),
	)

	for _, path := range in.values {
		n, err := sess.Record.LoadValues(path)
		if err != nil {
			return nil, err
		}
		ui.Logger.Debug("Values loaded", "file", path, "fields", n)
	}
	for _, a := range in.sets {
		p, value, err := parseAssignment(tax, a)
		if err != nil {
			return nil, err
		}
		if err := sess.SetField(p, value); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// parseAssignment splits "D/S/C/F=value" at the first "=" and resolves the
// path against tax.
func parseAssignment(tax *taxonomy.Taxonomy, a string) (taxonomy.Path, string, error) {
	path, value, ok := strings.Cut(a, "=")
	if !ok {
		return taxonomy.Path{}, "", fmt.Errorf("invalid --set %q: want Domain/Subsystem/Component/Field=value", a)
	}
	p, err := tax.ResolvePath(strings.TrimSpace(path))
	if err != nil {
		return taxonomy.Path{}, "", fmt.Errorf("invalid --set %q: %w", a, err)
	}
	return p, value, nil
}

// newOrchestrator wires an export orchestrator from config. outDir overrides
// export.output_dir when set.
func newOrchestrator(s *store.Store, sess *session.Session, outDir string, extra ...export.Option) *export.Orchestrator {
	cfg := s.Config.Export
	opts := []export.Option{
		export.WithRequireComplete(cfg.RequireComplete),
		export.WithPlaceholder(cfg.Placeholder),
		export.WithSuffix(cfg.Suffix),
		export.WithArchiveName(cfg.ArchiveName),
		export.WithSessionID(sess.ID),
	}
	o := export.New(sess.Taxonomy, sess.Record, append(opts, extra...)...)
	if outDir == "" {
		outDir = s.OutputDir()
	}
	o.SetSaver(export.DirSaver{Dir: outDir})
	return o
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func taxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect the assessment taxonomy",
	}
	cmd.AddCommand(taxonomyListCmd())
	cmd.AddCommand(taxonomyShowCmd())
	cmd.AddCommand(taxonomyExportCmd())
	return cmd
}

func taxonomyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List domains with their sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			tax, err := s.Taxonomy()
			if err != nil {
				return err
			}
			var rows [][]string
			for i := range tax.Domains {
				d := &tax.Domains[i]
				rows = append(rows, []string{
					d.Name,
					fmt.Sprintf("%d", len(d.Subsystems)),
					fmt.Sprintf("%d", d.ComponentCount()),
					fmt.Sprintf("%d", d.FieldCount()),
				})
			}
			ui.Table([]string{"DOMAIN", "SUBSYSTEMS", "COMPONENTS", "FIELDS"}, rows)
			return nil
		},
	}
}

func taxonomyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <domain>",
		Short:   "Show a domain's subsystems, components and fields",
		Example: `  assess taxonomy show "Fire & Life-Safety"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			tax, err := s.Taxonomy()
			if err != nil {
				return err
			}
			d, err := tax.LookupDomain(args[0])
			if err != nil {
				return err
			}
			ui.CommandBanner(d.Name, fmt.Sprintf("%d fields", d.FieldCount()))
			for _, sub := range d.Subsystems {
				ui.SectionHeader(sub.Name)
				for _, c := range sub.Components {
					ui.KeyValue(c.Name, ui.Dim(strings.Join(c.Fields, ", ")))
				}
			}
			return nil
		},
	}
}

func taxonomyExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the active taxonomy as YAML",
		Long:  "Print the active taxonomy as YAML. Edit the output and point taxonomy.path at it to assess a different facility layout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			tax, err := s.Taxonomy()
			if err != nil {
				return err
			}
			data, err := taxonomy.Marshal(tax)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var in inputFlags
	var missing bool
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show completeness per domain",
		Example: "  assess status --values site.yaml\n  assess status --values site.yaml --missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}

			var rows [][]string
			complete := 0
			for _, st := range sess.Status() {
				mark := ui.Dim("—")
				if st.Complete {
					mark = ui.Green("✓")
					complete++
				}
				rows = append(rows, []string{st.Domain, ui.ProgressBar(st.Filled, st.Total, 20), mark})
			}
			ui.Table([]string{"DOMAIN", "PROGRESS", "COMPLETE"}, rows)
			fmt.Fprintln(os.Stderr)
			ui.Info(fmt.Sprintf("%d of %d domains complete", complete, len(rows)))
			if sess.AutoEvict() {
				ui.Detail("Selection:", "auto-evict on; edits drop incomplete domains from the export selection")
			}

			if missing {
				for _, st := range sess.Status() {
					if st.Complete {
						continue
					}
					ui.SectionHeader(st.Domain)
					for _, p := range sess.Record.Missing(st.Domain) {
						ui.Detail("missing", fmt.Sprintf("%s / %s / %s", p.Subsystem, p.Component, p.Field))
					}
				}
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&missing, "missing", false, "List every missing field of incomplete domains")
	return cmd
}

func fillCmd() *cobra.Command {
	var in inputFlags
	var out, only string
	cmd := &cobra.Command{
		Use:   "fill <domain>",
		Short: "Fill a domain's fields interactively",
		Long: `Walk a domain one component at a time and enter each field in turn.
Existing values from --values and --set are pre-filled. The result is written to --out as a values file.`,
		Example: `  assess fill "Power Infrastructure" --values site.yaml --out site.yaml
  assess fill "Cooling Infrastructure" --component "Indoor Unit/General" --out cooling.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}
			d, err := sess.Taxonomy.LookupDomain(args[0])
			if err != nil {
				return err
			}
			if out == "" && len(in.values) == 1 {
				out = in.values[0]
			}
			if out == "" {
				return fmt.Errorf("--out is required when not editing exactly one --values file")
			}

			targets := d.Paths()
			if only != "" {
				sub, comp, err := splitComponent(d, only)
				if err != nil {
					return err
				}
				targets = nil
				for _, p := range d.Paths() {
					if p.Subsystem == sub && p.Component == comp {
						targets = append(targets, p)
					}
				}
			}

			ui.CommandBanner("FILL", d.Name)
			if err := fillTargets(sess, d, targets, ui.RunForm); err != nil {
				if errors.Is(err, ui.ErrAborted) {
					ui.Warning("Aborted; nothing written")
					return nil
				}
				return err
			}

			data, err := sess.Record.MarshalValues()
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write values: %w", err)
			}
			filled, total := sess.Record.Filled(d.Name)
			ui.Success(fmt.Sprintf("Saved %s", out))
			ui.Detail("Progress:", ui.ProgressBar(filled, total, 20))

			if !sess.Record.IsDomainComplete(d.Name) {
				return nil
			}
			ok, err := ui.Confirm(fmt.Sprintf("%s is complete. Export it now?", d.Name))
			if err != nil || !ok {
				return err
			}
			path, err := newOrchestrator(s, sess, "").SaveSingle(d.Name)
			if err != nil {
				return err
			}
			sess.MarkSaved(d.Name)
			ui.Success(fmt.Sprintf("Exported %s", path))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Values file to write (default: the single --values file)")
	cmd.Flags().StringVar(&only, "component", "", `Fill only one component, "Subsystem/Component"`)
	return cmd
}

// splitComponent resolves "Subsystem/Component" within d. Names may
// themselves contain "/", so every split point is tried.
func splitComponent(d *taxonomy.Domain, s string) (string, string, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		sub, ok := d.Subsystem(s[:i])
		if !ok {
			continue
		}
		if _, ok := sub.Component(s[i+1:]); ok {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("no component %q in domain %q", s, d.Name)
}

type formRunner func(title string, fields []ui.FormField) ([]ui.FormField, error)

// fillTargets runs one form per component of targets. The domain context is
// selected once so single-record mode does not reset the record between
// components of the same fill.
func fillTargets(sess *session.Session, d *taxonomy.Domain, targets []taxonomy.Path, run formRunner) error {
	if err := sess.Select(d.Name, "", ""); err != nil {
		return err
	}
	for start := 0; start < len(targets); {
		sub, comp := targets[start].Subsystem, targets[start].Component
		end := start
		for end < len(targets) && targets[end].Subsystem == sub && targets[end].Component == comp {
			end++
		}
		if err := fillComponent(sess, targets[start:end], run); err != nil {
			return err
		}
		start = end
	}
	return nil
}

func fillComponent(sess *session.Session, paths []taxonomy.Path, run formRunner) error {
	fields := make([]ui.FormField, len(paths))
	for i, p := range paths {
		v, _ := sess.Record.Get(p)
		fields[i] = ui.FormField{Label: p.Field, Value: v}
	}
	title := fmt.Sprintf("%s / %s / %s", paths[0].Domain, paths[0].Subsystem, paths[0].Component)
	result, err := run(title, fields)
	if err != nil {
		return err
	}
	for i, f := range result {
		if err := sess.SetField(paths[i], f.Value); err != nil {
			return err
		}
	}
	return nil
}

func previewCmd() *cobra.Command {
	var in inputFlags
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:     "preview <domain>",
		Short:   "Render a domain report in the terminal",
		Long:    "Render the report a domain would export, including placeholders for missing fields. Completeness is not required.",
		Example: `  assess preview "Cooling Infrastructure" --values site.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}
			o := newOrchestrator(s, sess, "", export.WithRequireComplete(false))
			doc, err := o.ExportSingle(args[0])
			if err != nil {
				return err
			}
			if raw {
				data, err := doc.Bytes()
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			ui.RenderMarkdown(doc.Body, width)
			if doc.Meta.Filled < doc.Meta.Fields {
				ui.Warning(fmt.Sprintf("%d of %d fields missing; export will refuse this domain while export.require_complete is on",
					doc.Meta.Fields-doc.Meta.Filled, doc.Meta.Fields))
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown document with front matter instead of rendering it")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for rendered output")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export domain reports",
	}
	cmd.AddCommand(exportSingleCmd())
	cmd.AddCommand(exportBatchCmd())
	return cmd
}

// reportIncomplete prints the missing fields carried by err, if any.
func reportIncomplete(err error) {
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var ie *export.IncompleteError
		if !errors.As(e, &ie) {
			continue
		}
		ui.Warning(fmt.Sprintf("%s: %d field(s) missing", ie.Domain, len(ie.Missing)))
		for _, p := range ie.Missing {
			ui.Detail("missing", fmt.Sprintf("%s / %s / %s", p.Subsystem, p.Component, p.Field))
		}
	}
}

func exportSingleCmd() *cobra.Command {
	var in inputFlags
	var outDir string
	var allowIncomplete bool
	cmd := &cobra.Command{
		Use:   "single <domain>",
		Short: "Export one domain as a document",
		Example: `  assess export single "Fire & Life-Safety" --values site.yaml
  assess export single "Cooling Infrastructure" --values site.yaml --allow-incomplete -d ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}
			var extra []export.Option
			if allowIncomplete {
				extra = append(extra, export.WithRequireComplete(false))
			}
			path, err := newOrchestrator(s, sess, outDir, extra...).SaveSingle(args[0])
			if err != nil {
				reportIncomplete(err)
				return err
			}
			sess.MarkSaved(args[0])
			ui.Success(fmt.Sprintf("Exported %s", args[0]))
			ui.Detail("File:", path)
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&outDir, "output-dir", "d", "", "Directory to write into (default: export.output_dir)")
	cmd.Flags().BoolVar(&allowIncomplete, "allow-incomplete", false, "Export even if fields are missing; they render as the placeholder")
	return cmd
}

func exportBatchCmd() *cobra.Command {
	var in inputFlags
	var outDir string
	var selectUI, all bool
	cmd := &cobra.Command{
		Use:   "batch [domains...]",
		Short: "Export several domains into one archive",
		Long: `Export several domains into one archive, one document per domain plus a manifest.
Pick domains by name, with --all for every complete domain, or interactively with --select.`,
		Example: `  assess export batch "Cooling Infrastructure" "Power Infrastructure" --values site.yaml
  assess export batch --select --values site.yaml
  assess export batch --all --values site.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}

			domains := args
			switch {
			case selectUI:
				var items []ui.DomainItem
				for _, st := range sess.Status() {
					items = append(items, ui.DomainItem{Name: st.Domain, Filled: st.Filled, Total: st.Total})
				}
				ok, err := ui.SelectDomains("Select domains to export", items, sess.Pool)
				if err != nil {
					return err
				}
				if !ok {
					ui.Info("Cancelled")
					return nil
				}
				domains = sess.Pool.Members()
			case all:
				for _, name := range sess.Taxonomy.DomainNames() {
					sess.Toggle(name)
				}
				domains = sess.Pool.Members()
			}
			if len(domains) == 0 {
				ui.EmptyState("No domains selected.")
				return nil
			}

			ctx, cancel := interruptContext()
			defer cancel()
			spin := ui.NewSpinner(fmt.Sprintf("Exporting %d domain(s)...", len(domains)))
			path, archive, err := newOrchestrator(s, sess, outDir).SaveBatch(ctx, domains)
			spin.Stop()
			if err != nil {
				reportIncomplete(err)
				return err
			}

			var rows [][]string
			for _, e := range archive.Manifest.Entries {
				sess.MarkSaved(e.Domain)
				rows = append(rows, []string{e.Domain, e.File, fmt.Sprintf("%d", e.Size)})
			}
			ui.Success(fmt.Sprintf("Exported %d document(s)", len(rows)))
			ui.Detail("Archive:", path)
			ui.Detail("Export ID:", archive.Manifest.ExportID)
			fmt.Fprintln(os.Stderr)
			ui.Table([]string{"DOMAIN", "FILE", "BYTES"}, rows)
			ui.Notify("assess", fmt.Sprintf("Exported %d report(s) to %s", len(rows), archive.Name))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&outDir, "output-dir", "d", "", "Directory to write into (default: export.output_dir)")
	cmd.Flags().BoolVar(&selectUI, "select", false, "Choose domains interactively")
	cmd.Flags().BoolVar(&all, "all", false, "Export every complete domain")
	cmd.MarkFlagsMutuallyExclusive("select", "all")
	return cmd
}

func openCmd() *cobra.Command {
	var raw bool
	var width int
	cmd := &cobra.Command{
		Use:     "open <report.md>",
		Short:   "Show an exported report",
		Example: `  assess open ~/.assess/exports/Fire_Life-Safety.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Print(doc.Body)
				return nil
			}
			ui.CommandBanner("OPEN", doc.Meta.Domain)
			ui.KeyValue("Status:   ", doc.Meta.Status)
			ui.KeyValue("Progress: ", ui.ProgressBar(doc.Meta.Filled, doc.Meta.Fields, 20))
			ui.KeyValue("Generated:", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05"))
			if doc.Meta.Session != "" {
				ui.KeyValue("Session:  ", doc.Meta.Session)
			}
			ui.RenderMarkdown(doc.Body, width)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the markdown body without rendering it")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for rendered output")
	return cmd
}

func bundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Inspect export archives",
	}
	cmd.AddCommand(bundleShowCmd())
	return cmd
}

func bundleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <archive>",
		Short:   "Show an archive's manifest",
		Example: "  assess bundle show ~/.assess/exports/assessment-reports.tar.gz",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bundle.ReadManifest(args[0])
			if err != nil {
				return fmt.Errorf("failed to read archive: %w", err)
			}
			ui.CommandBanner("BUNDLE", args[0])
			ui.KeyValue("Export ID: ", m.ExportID)
			ui.KeyValue("Session:   ", m.SessionID)
			ui.KeyValue("Created:   ", m.CreatedAt.Format("2006-01-02 15:04:05"))
			ui.KeyValue("Documents: ", fmt.Sprintf("%d", len(m.Entries)))
			fmt.Fprintln(os.Stderr)
			var rows [][]string
			for _, e := range m.Entries {
				rows = append(rows, []string{e.Domain, e.File, fmt.Sprintf("%d", e.Size)})
			}
			ui.Table([]string{"DOMAIN", "FILE", "BYTES"}, rows)
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit assess configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Valid keys: " + strings.Join(store.ConfigKeys, ", ") + ".",
		Example: `  assess config set export.require_complete false
  assess config set session.mode single
  assess config set taxonomy.path site-taxonomy.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Load(store.Home())
			if err != nil {
				return fmt.Errorf("assess not initialized — run 'assess init' first: %w", err)
			}
			if err := s.SetConfigValue(args[0], args[1]); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}
}

func doctorCmd() *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check health of ASSESS_HOME and the configured taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := store.Home()

			if fix {
				ui.CommandBanner("DOCTOR", "repair mode")
				for _, f := range store.FixIssues(home) {
					ui.Success(fmt.Sprintf("[FIXED] %s", f))
				}
			}

			issues := store.CheckHealth(home)
			if len(issues) == 0 {
				ui.Success("Everything looks good")
				return nil
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					ui.Error(fmt.Sprintf("[ERR]  %s", issue.Message))
					hasError = true
				} else {
					ui.Warning(fmt.Sprintf("[WARN] %s", issue.Message))
				}
			}

			if hasError {
				os.Exit(2)
			}
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Recreate a missing config.yaml or export directory")
	return cmd
}

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish]",
		Short:     "Generate shell completion scripts",
		Long:      "Generate shell completion scripts for bash, zsh, or fish. Output the script to stdout for sourcing in your shell profile.",
		Example:   "  assess completion bash > ~/.bashrc.d/assess\n  assess completion zsh > ~/.zfunc/_assess\n  assess completion fish > ~/.config/fish/completions/assess.fish",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", args[0])
			}
		},
	}
}

func mcpServeCmd() *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "mcp-serve",
		Short: "Run assess as an MCP server",
		Long: "Start assess as a Model Context Protocol (MCP) server over stdio. One in-memory session is served; " +
			"--values and --set seed it.",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			sess, err := buildSession(s, in)
			if err != nil {
				return err
			}
			ctx, cancel := interruptContext()
			defer cancel()
			server := assessmcp.NewServer(sess, newOrchestrator(s, sess, ""), version)
			return server.Run(ctx)
		},
	}
	in.register(cmd)
	return cmd
}
