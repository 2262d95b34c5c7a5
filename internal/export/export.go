package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kokistudios/assess/internal/bundle"
	"github.com/kokistudios/assess/internal/document"
	"github.com/kokistudios/assess/internal/report"
	"github.com/kokistudios/assess/internal/taxonomy"
	"github.com/kokistudios/assess/internal/ui"
)

// ErrIncomplete is matched by errors returned when gated export refuses a
// domain with missing fields.
var ErrIncomplete = errors.New("domain is incomplete")

// IncompleteError lists the fields that block export of a domain.
type IncompleteError struct {
	Domain  string
	Missing []taxonomy.Path
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("domain %q is incomplete: %d field(s) missing", e.Domain, len(e.Missing))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Source is the record state an export reads.
type Source interface {
	report.Reader
	IsDomainComplete(domain string) bool
	Missing(domain string) []taxonomy.Path
}

// Defaults for Options.
const (
	DefaultSuffix      = ".md"
	DefaultArchiveName = "assessment-reports.tar.gz"
	DefaultTitleFormat = "Tier III Assessment: %s"
	DefaultSubtitle    = "Inventory Breakdown"
)

// Options tune an Orchestrator.
type Options struct {
	RequireComplete bool
	Placeholder     string
	Suffix          string
	ArchiveName     string
	TitleFormat     string
	SessionID       string
	Now             func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithRequireComplete toggles completeness gating. Gating is on by default.
func WithRequireComplete(v bool) Option {
	return func(o *Options) { o.RequireComplete = v }
}

// WithPlaceholder sets the text rendered for missing values.
func WithPlaceholder(p string) Option {
	return func(o *Options) { o.Placeholder = p }
}

// WithSuffix sets the file suffix appended to sanitized domain names.
func WithSuffix(s string) Option {
	return func(o *Options) { o.Suffix = s }
}

// WithArchiveName sets the file name of batch archives.
func WithArchiveName(n string) Option {
	return func(o *Options) { o.ArchiveName = n }
}

// WithTitleFormat sets the document title; %s receives the domain name.
func WithTitleFormat(f string) Option {
	return func(o *Options) { o.TitleFormat = f }
}

// WithSessionID stamps documents and manifests with a session ID.
func WithSessionID(id string) Option {
	return func(o *Options) { o.SessionID = id }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// Orchestrator runs the report assembler over domains and hands the
// results to the document generator, archive bundler, and saver.
type Orchestrator struct {
	tax   *taxonomy.Taxonomy
	src   Source
	gen   document.Generator
	saver Saver
	opts  Options
}

// New creates an orchestrator with the markdown generator and a saver
// writing into the current directory.
func New(tax *taxonomy.Taxonomy, src Source, opts ...Option) *Orchestrator {
	o := Options{
		RequireComplete: true,
		Placeholder:     report.Placeholder,
		Suffix:          DefaultSuffix,
		ArchiveName:     DefaultArchiveName,
		TitleFormat:     DefaultTitleFormat,
		Now:             time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Orchestrator{
		tax:   tax,
		src:   src,
		gen:   document.Markdown{},
		saver: DirSaver{Dir: "."},
		opts:  o,
	}
}

// SetGenerator replaces the document generator.
func (o *Orchestrator) SetGenerator(g document.Generator) { o.gen = g }

// SetSaver replaces the saver.
func (o *Orchestrator) SetSaver(s Saver) { o.saver = s }

// Options returns the effective options.
func (o *Orchestrator) Options() Options { return o.opts }

// FileName is the single-document file name for domain.
func (o *Orchestrator) FileName(domain string) string {
	return SanitizeFilename(domain) + o.opts.Suffix
}

// Exportable reports whether ExportSingle would accept domain.
func (o *Orchestrator) Exportable(domain string) bool {
	if _, ok := o.tax.Domain(domain); !ok {
		return false
	}
	return !o.opts.RequireComplete || o.src.IsDomainComplete(domain)
}

// ExportSingle builds the document for one domain. With completeness gating
// on, an incomplete domain returns an *IncompleteError.
func (o *Orchestrator) ExportSingle(domain string) (*document.Document, error) {
	if _, err := o.tax.LookupDomain(domain); err != nil {
		return nil, err
	}
	if err := o.checkComplete(domain); err != nil {
		return nil, err
	}
	return o.build(domain)
}

func (o *Orchestrator) checkComplete(domain string) error {
	if !o.opts.RequireComplete || o.src.IsDomainComplete(domain) {
		return nil
	}
	return &IncompleteError{Domain: domain, Missing: o.src.Missing(domain)}
}

func (o *Orchestrator) build(domain string) (*document.Document, error) {
	rows := report.BuildRowsWith(domain, o.src, o.tax, o.opts.Placeholder)
	summary := report.Summarize(domain, rows)
	meta := document.MetaFor(summary, o.opts.SessionID, o.opts.Now())
	layout := document.Layout{
		Title:     fmt.Sprintf(o.opts.TitleFormat, domain),
		Subtitle:  DefaultSubtitle,
		StartLine: 1,
	}
	doc, err := o.gen.Generate(meta, layout, report.Sections(rows))
	if err != nil {
		return nil, fmt.Errorf("failed to generate document for %s: %w", domain, err)
	}
	ui.Logger.Debug("Document generated", "domain", domain, "rows", len(rows), "status", meta.Status)
	return doc, nil
}

// Archive is a bundled batch export.
type Archive struct {
	Name     string
	Manifest bundle.Manifest
	Data     []byte
}

// ExportBatch builds one document per domain, exactly as ExportSingle
// would, and bundles them into a single archive. Domains are processed in
// taxonomy order; duplicates are ignored. With gating on, every incomplete
// domain is reported (joined errors) and nothing is built.
func (o *Orchestrator) ExportBatch(ctx context.Context, domains []string) (*Archive, error) {
	ordered, err := o.order(domains)
	if err != nil {
		return nil, err
	}

	var incomplete []error
	for _, d := range ordered {
		if err := o.checkComplete(d); err != nil {
			incomplete = append(incomplete, err)
		}
	}
	if len(incomplete) > 0 {
		return nil, errors.Join(incomplete...)
	}

	names := FileNames(ordered, o.opts.Suffix)
	files := make([]bundle.File, 0, len(ordered))
	for _, d := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := o.build(d)
		if err != nil {
			return nil, err
		}
		data, err := doc.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize document for %s: %w", d, err)
		}
		files = append(files, bundle.File{Name: names[d], Domain: d, Data: data})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	manifest := bundle.NewManifest(o.opts.SessionID, o.opts.Now())
	blob, err := bundle.Pack(&manifest, files)
	if err != nil {
		return nil, fmt.Errorf("failed to bundle documents: %w", err)
	}
	ui.Logger.Info("Archive assembled", "documents", len(files), "bytes", len(blob), "export_id", manifest.ExportID)
	return &Archive{Name: o.opts.ArchiveName, Manifest: manifest, Data: blob}, nil
}

// order validates and dedupes domains, returning them in taxonomy order.
func (o *Orchestrator) order(domains []string) ([]string, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("no domains selected for export")
	}
	want := make(map[string]bool, len(domains))
	var unknown []string
	for _, d := range domains {
		if _, ok := o.tax.Domain(d); !ok {
			unknown = append(unknown, d)
			continue
		}
		want[d] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", taxonomy.ErrUnknownDomain, strings.Join(unknown, ", "))
	}
	var ordered []string
	for _, name := range o.tax.DomainNames() {
		if want[name] {
			ordered = append(ordered, name)
		}
	}
	return ordered, nil
}

// SaveSingle exports one domain and hands it to the saver.
func (o *Orchestrator) SaveSingle(domain string) (string, error) {
	doc, err := o.ExportSingle(domain)
	if err != nil {
		return "", err
	}
	data, err := doc.Bytes()
	if err != nil {
		return "", err
	}
	dest, err := o.saver.Save(data, o.FileName(domain))
	if err != nil {
		return "", err
	}
	doc.FilePath = dest
	return dest, nil
}

// SaveBatch exports several domains as an archive and hands it to the saver.
func (o *Orchestrator) SaveBatch(ctx context.Context, domains []string) (string, *Archive, error) {
	archive, err := o.ExportBatch(ctx, domains)
	if err != nil {
		return "", nil, err
	}
	dest, err := o.saver.Save(archive.Data, archive.Name)
	if err != nil {
		return "", nil, err
	}
	return dest, archive, nil
}
