package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kokistudios/assess/internal/report"
)

// Status values recorded in document frontmatter.
const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

// Meta is the YAML frontmatter of a generated document.
type Meta struct {
	Domain      string    `yaml:"domain"`
	Session     string    `yaml:"session,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Status      string    `yaml:"status"` // complete, partial
	Subsystems  int       `yaml:"subsystems"`
	Components  int       `yaml:"components"`
	Fields      int       `yaml:"fields"`
	Filled      int       `yaml:"filled"`
}

// Layout carries the presentation inputs of a document.
type Layout struct {
	Title    string
	Subtitle string
	// StartLine is the number of blank lines between the heading block and
	// the first table.
	StartLine int
}

// Document is a generated report.
type Document struct {
	Meta     Meta
	Body     string
	FilePath string
}

// Generator turns report sections into a document.
type Generator interface {
	Generate(meta Meta, layout Layout, sections []report.Section) (*Document, error)
}

// MetaFor fills counts and status from a report summary.
func MetaFor(s report.Summary, session string, at time.Time) Meta {
	status := StatusPartial
	if s.Complete() {
		status = StatusComplete
	}
	return Meta{
		Domain:      s.Domain,
		Session:     session,
		GeneratedAt: at.UTC(),
		Status:      status,
		Subsystems:  s.Subsystems,
		Components:  s.Components,
		Fields:      s.Fields,
		Filled:      s.Filled,
	}
}

// Bytes renders frontmatter and body as a single blob.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	fm, err := yaml.Marshal(d.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	d.FilePath = path
	return nil
}

// Parse splits a document into YAML frontmatter and body.
func Parse(raw []byte) (*Document, error) {
	content := string(raw)
	trimmed := strings.TrimLeft(content, " \t\r\n")

	if !strings.HasPrefix(trimmed, "---") {
		return nil, fmt.Errorf("missing frontmatter")
	}

	rest := trimmed[3:]
	rest = strings.TrimLeft(rest, " \t")
	if len(rest) > 0 && rest[0] == '\n' {
		rest = rest[1:]
	} else if len(rest) > 1 && rest[0] == '\r' && rest[1] == '\n' {
		rest = rest[2:]
	}

	endIdx := strings.Index(rest, "\n---")
	if endIdx == -1 {
		return nil, fmt.Errorf("unterminated frontmatter: missing closing ---")
	}

	fmRaw := rest[:endIdx]
	body := strings.TrimLeft(rest[endIdx+4:], "\r\n")

	var meta Meta
	if err := yaml.Unmarshal([]byte(fmRaw), &meta); err != nil {
		return nil, fmt.Errorf("invalid frontmatter YAML: %w", err)
	}
	if meta.Domain == "" {
		return nil, fmt.Errorf("frontmatter missing domain")
	}

	return &Document{Meta: meta, Body: body}, nil
}

// Load reads a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, err
	}
	d.FilePath = path
	return d, nil
}
