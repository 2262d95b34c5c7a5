package report

import (
	"strings"

	"github.com/kokistudios/assess/internal/taxonomy"
)

// Placeholder stands in for a field that has no value.
const Placeholder = "-"

// Reader is the read side of a record store.
type Reader interface {
	Get(p taxonomy.Path) (string, bool)
}

// Row is one field of a report.
type Row struct {
	Subsystem string
	Component string
	Field     string
	Value     string
	// Filled is true when the record holds a non-blank value, whatever
	// that value is.
	Filled bool
}

// Section is a run of rows sharing a subsystem.
type Section struct {
	Subsystem string
	Rows      []Row
}

// Summary describes a domain report for header tables.
type Summary struct {
	Domain     string
	Subsystems int
	Components int
	Fields     int
	Filled     int
}

// Complete reports whether every row carries a value.
func (s Summary) Complete() bool {
	return s.Fields > 0 && s.Filled == s.Fields
}

// BuildRows emits one row per field declared under domain, in declaration
// order, with Placeholder for missing or blank values. An undeclared domain
// yields nil.
func BuildRows(domain string, rec Reader, tax *taxonomy.Taxonomy) []Row {
	return BuildRowsWith(domain, rec, tax, Placeholder)
}

// BuildRowsWith is BuildRows with a caller-chosen placeholder.
func BuildRowsWith(domain string, rec Reader, tax *taxonomy.Taxonomy, placeholder string) []Row {
	d, ok := tax.Domain(domain)
	if !ok {
		return nil
	}
	rows := make([]Row, 0, d.FieldCount())
	for _, p := range d.Paths() {
		v, ok := rec.Get(p)
		filled := ok && strings.TrimSpace(v) != ""
		if !filled {
			v = placeholder
		}
		rows = append(rows, Row{Subsystem: p.Subsystem, Component: p.Component, Field: p.Field, Value: v, Filled: filled})
	}
	return rows
}

// Sections groups consecutive rows by subsystem, keeping order.
func Sections(rows []Row) []Section {
	var out []Section
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Subsystem == r.Subsystem {
			out[n-1].Rows = append(out[n-1].Rows, r)
			continue
		}
		out = append(out, Section{Subsystem: r.Subsystem, Rows: []Row{r}})
	}
	return out
}

// Summarize counts the structure of a row set.
func Summarize(domain string, rows []Row) Summary {
	s := Summary{Domain: domain, Fields: len(rows)}
	type key struct{ sub, comp string }
	comps := make(map[key]bool)
	subs := make(map[string]bool)
	for _, r := range rows {
		subs[r.Subsystem] = true
		comps[key{r.Subsystem, r.Component}] = true
		if r.Filled {
			s.Filled++
		}
	}
	s.Subsystems = len(subs)
	s.Components = len(comps)
	return s
}
