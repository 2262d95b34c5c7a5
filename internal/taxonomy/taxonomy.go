package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDomain is returned when a domain name is not declared in the taxonomy.
var ErrUnknownDomain = errors.New("unknown domain")

// Taxonomy is the static Domain → Subsystem → Component → Field shape every
// record conforms to. Slices preserve declaration order at every level.
type Taxonomy struct {
	Domains []Domain
}

// Domain is a top-level assessment category.
type Domain struct {
	Name       string
	Subsystems []Subsystem
}

// Subsystem groups components within a domain.
type Subsystem struct {
	Name       string
	Components []Component
}

// Component is a concrete item whose fields require values.
type Component struct {
	Name   string
	Fields []string
}

// Path addresses a single field.
type Path struct {
	Domain    string
	Subsystem string
	Component string
	Field     string
}

// String renders the path in slash-separated form.
func (p Path) String() string {
	return strings.Join([]string{p.Domain, p.Subsystem, p.Component, p.Field}, "/")
}

// Domain looks up a domain by name.
func (t *Taxonomy) Domain(name string) (*Domain, bool) {
	for i := range t.Domains {
		if t.Domains[i].Name == name {
			return &t.Domains[i], true
		}
	}
	return nil, false
}

// LookupDomain is like Domain but returns ErrUnknownDomain for callers that
// need an error value.
func (t *Taxonomy) LookupDomain(name string) (*Domain, error) {
	d, ok := t.Domain(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	return d, nil
}

// DomainNames returns domain names in declaration order.
func (t *Taxonomy) DomainNames() []string {
	names := make([]string, 0, len(t.Domains))
	for _, d := range t.Domains {
		names = append(names, d.Name)
	}
	return names
}

// Contains reports whether p names a declared field.
func (t *Taxonomy) Contains(p Path) bool {
	d, ok := t.Domain(p.Domain)
	if !ok {
		return false
	}
	s, ok := d.Subsystem(p.Subsystem)
	if !ok {
		return false
	}
	c, ok := s.Component(p.Component)
	if !ok {
		return false
	}
	return c.HasField(p.Field)
}

// Subsystem looks up a subsystem by name.
func (d *Domain) Subsystem(name string) (*Subsystem, bool) {
	for i := range d.Subsystems {
		if d.Subsystems[i].Name == name {
			return &d.Subsystems[i], true
		}
	}
	return nil, false
}

// Paths walks every field of the domain in declaration order.
func (d *Domain) Paths() []Path {
	var paths []Path
	for _, s := range d.Subsystems {
		for _, c := range s.Components {
			for _, f := range c.Fields {
				paths = append(paths, Path{Domain: d.Name, Subsystem: s.Name, Component: c.Name, Field: f})
			}
		}
	}
	return paths
}

// FieldCount is the number of declared fields under the domain.
func (d *Domain) FieldCount() int {
	n := 0
	for _, s := range d.Subsystems {
		for _, c := range s.Components {
			n += len(c.Fields)
		}
	}
	return n
}

// ComponentCount is the number of declared components under the domain.
func (d *Domain) ComponentCount() int {
	n := 0
	for _, s := range d.Subsystems {
		n += len(s.Components)
	}
	return n
}

// Component looks up a component by name.
func (s *Subsystem) Component(name string) (*Component, bool) {
	for i := range s.Components {
		if s.Components[i].Name == name {
			return &s.Components[i], true
		}
	}
	return nil, false
}

// HasField reports whether the component declares the field.
func (c *Component) HasField(name string) bool {
	for _, f := range c.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// ResolvePath parses "Domain/Subsystem/Component/Field" against the
// taxonomy. Names may themselves contain slashes (e.g. "NVR/DVR"), so each
// level is matched against declared names rather than split blindly.
func (t *Taxonomy) ResolvePath(s string) (Path, error) {
	for _, d := range t.Domains {
		rest, ok := strings.CutPrefix(s, d.Name+"/")
		if !ok {
			continue
		}
		for _, sub := range d.Subsystems {
			rest2, ok := strings.CutPrefix(rest, sub.Name+"/")
			if !ok {
				continue
			}
			for _, c := range sub.Components {
				field, ok := strings.CutPrefix(rest2, c.Name+"/")
				if !ok {
					continue
				}
				if c.HasField(field) {
					return Path{Domain: d.Name, Subsystem: sub.Name, Component: c.Name, Field: field}, nil
				}
			}
		}
	}

	// Fall back to a plain split, which tolerates spaces around separators
	// and reports an unknown domain precisely.
	p, err := ParsePath(s)
	if err != nil {
		return Path{}, fmt.Errorf("path %q does not match any declared field", s)
	}
	if t.Contains(p) {
		return p, nil
	}
	if _, err := t.LookupDomain(p.Domain); err != nil {
		return Path{}, err
	}
	return Path{}, fmt.Errorf("path %q does not match any declared field", s)
}

// ParsePath splits "Domain/Subsystem/Component/Field" without consulting a
// taxonomy and trims each segment. It only works when no name contains a
// slash.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return Path{}, fmt.Errorf("path %q must have the form Domain/Subsystem/Component/Field", s)
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return Path{}, fmt.Errorf("path %q has an empty segment", s)
		}
	}
	return Path{Domain: parts[0], Subsystem: parts[1], Component: parts[2], Field: parts[3]}, nil
}

// Validate checks structural invariants: non-empty unique names at every
// level and no empty branches.
func (t *Taxonomy) Validate() error {
	if len(t.Domains) == 0 {
		return fmt.Errorf("taxonomy declares no domains")
	}
	domains := make(map[string]bool)
	for _, d := range t.Domains {
		if err := checkName("domain", d.Name, domains); err != nil {
			return err
		}
		if len(d.Subsystems) == 0 {
			return fmt.Errorf("domain %s declares no subsystems", d.Name)
		}
		subs := make(map[string]bool)
		for _, s := range d.Subsystems {
			if err := checkName("subsystem in "+d.Name, s.Name, subs); err != nil {
				return err
			}
			if len(s.Components) == 0 {
				return fmt.Errorf("subsystem %s/%s declares no components", d.Name, s.Name)
			}
			comps := make(map[string]bool)
			for _, c := range s.Components {
				if err := checkName("component in "+d.Name+"/"+s.Name, c.Name, comps); err != nil {
					return err
				}
				if len(c.Fields) == 0 {
					return fmt.Errorf("component %s/%s/%s declares no fields", d.Name, s.Name, c.Name)
				}
				fields := make(map[string]bool)
				for _, f := range c.Fields {
					if err := checkName("field in "+d.Name+"/"+s.Name+"/"+c.Name, f, fields); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkName(kind, name string, seen map[string]bool) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty %s name", kind)
	}
	if seen[name] {
		return fmt.Errorf("duplicate %s: %q", kind, name)
	}
	seen[name] = true
	return nil
}
