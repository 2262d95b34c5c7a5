package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kokistudios/assess/internal/taxonomy"
)

// ErrUnknownPath is returned when a write targets a path the taxonomy does
// not declare.
var ErrUnknownPath = errors.New("path not declared in taxonomy")

type (
	componentValues map[string]string
	subsystemValues map[string]componentValues
	domainValues    map[string]subsystemValues
)

// Store holds user-entered field values shaped like the taxonomy. Levels
// are created lazily on first write; an absent path means "not yet entered".
type Store struct {
	tax    *taxonomy.Taxonomy
	values map[string]domainValues
}

// New creates an empty store bound to a taxonomy.
func New(tax *taxonomy.Taxonomy) *Store {
	return &Store{tax: tax, values: make(map[string]domainValues)}
}

// Taxonomy returns the taxonomy the store is addressed by.
func (s *Store) Taxonomy() *taxonomy.Taxonomy {
	return s.tax
}

// Set writes a value. Callers address fields from the taxonomy, so an
// undeclared path is a programming error and panics.
func (s *Store) Set(p taxonomy.Path, value string) {
	if err := s.SetChecked(p, value); err != nil {
		panic(err)
	}
}

// SetChecked writes a value after validating the path. Use it for input
// that did not come from walking the taxonomy.
func (s *Store) SetChecked(p taxonomy.Path, value string) error {
	if !s.tax.Contains(p) {
		return fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	d, ok := s.values[p.Domain]
	if !ok {
		d = make(domainValues)
		s.values[p.Domain] = d
	}
	sub, ok := d[p.Subsystem]
	if !ok {
		sub = make(subsystemValues)
		d[p.Subsystem] = sub
	}
	c, ok := sub[p.Component]
	if !ok {
		c = make(componentValues)
		sub[p.Component] = c
	}
	c[p.Field] = value
	return nil
}

// Get returns the stored value and whether one was ever set.
func (s *Store) Get(p taxonomy.Path) (string, bool) {
	v, ok := s.values[p.Domain][p.Subsystem][p.Component][p.Field]
	return v, ok
}

// Clear drops every value.
func (s *Store) Clear() {
	s.values = make(map[string]domainValues)
}

// ClearDomain drops the values of one domain.
func (s *Store) ClearDomain(domain string) {
	delete(s.values, domain)
}

// IsDomainComplete reports whether every field declared under domain has a
// value that is non-empty after trimming. Unknown domains are incomplete.
func (s *Store) IsDomainComplete(domain string) bool {
	d, ok := s.tax.Domain(domain)
	if !ok {
		return false
	}
	for _, sub := range d.Subsystems {
		for _, c := range sub.Components {
			for _, f := range c.Fields {
				if !s.filled(taxonomy.Path{Domain: d.Name, Subsystem: sub.Name, Component: c.Name, Field: f}) {
					return false
				}
			}
		}
	}
	return true
}

// Missing lists the declared paths under domain that are absent or blank.
func (s *Store) Missing(domain string) []taxonomy.Path {
	d, ok := s.tax.Domain(domain)
	if !ok {
		return nil
	}
	var missing []taxonomy.Path
	for _, p := range d.Paths() {
		if !s.filled(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// Filled counts the non-blank fields of a domain against its total.
func (s *Store) Filled(domain string) (filled, total int) {
	d, ok := s.tax.Domain(domain)
	if !ok {
		return 0, 0
	}
	for _, p := range d.Paths() {
		total++
		if s.filled(p) {
			filled++
		}
	}
	return filled, total
}

func (s *Store) filled(p taxonomy.Path) bool {
	v, ok := s.Get(p)
	return ok && strings.TrimSpace(v) != ""
}
