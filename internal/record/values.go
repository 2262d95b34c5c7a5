package record

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kokistudios/assess/internal/taxonomy"
)

// ValuesFile is the on-disk form of field values:
// domain → subsystem → component → field → value.
type ValuesFile map[string]map[string]map[string]map[string]string

// ParseValues applies a values document to the store. Every path is checked
// against the taxonomy first; an undeclared path rejects the whole document
// and nothing is written.
func (s *Store) ParseValues(data []byte) (int, error) {
	var vf ValuesFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return 0, fmt.Errorf("invalid values YAML: %w", err)
	}
	type entry struct {
		path  taxonomy.Path
		value string
	}
	var entries []entry
	for _, d := range s.tax.Domains {
		for _, sub := range d.Subsystems {
			for _, c := range sub.Components {
				for _, f := range c.Fields {
					v, ok := vf[d.Name][sub.Name][c.Name][f]
					if !ok {
						continue
					}
					entries = append(entries, entry{taxonomy.Path{Domain: d.Name, Subsystem: sub.Name, Component: c.Name, Field: f}, v})
				}
			}
		}
	}
	if len(entries) != vf.count() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPath, vf.firstUnknown(s.tax))
	}
	for _, e := range entries {
		s.Set(e.path, e.value)
	}
	return len(entries), nil
}

// LoadValues reads a values file into the store.
func (s *Store) LoadValues(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read values: %w", err)
	}
	n, err := s.ParseValues(data)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// MarshalValues encodes the stored values of the given domains (all when
// none are given) in taxonomy order. Unset fields are omitted.
func (s *Store) MarshalValues(domains ...string) ([]byte, error) {
	want := make(map[string]bool)
	for _, d := range domains {
		want[d] = true
	}
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range s.tax.Domains {
		if len(want) > 0 && !want[d.Name] {
			continue
		}
		dn := &yaml.Node{Kind: yaml.MappingNode}
		for _, sub := range d.Subsystems {
			sn := &yaml.Node{Kind: yaml.MappingNode}
			for _, c := range sub.Components {
				cn := &yaml.Node{Kind: yaml.MappingNode}
				for _, f := range c.Fields {
					v, ok := s.Get(taxonomy.Path{Domain: d.Name, Subsystem: sub.Name, Component: c.Name, Field: f})
					if !ok {
						continue
					}
					cn.Content = append(cn.Content, str(f), str(v))
				}
				if len(cn.Content) > 0 {
					sn.Content = append(sn.Content, str(c.Name), cn)
				}
			}
			if len(sn.Content) > 0 {
				dn.Content = append(dn.Content, str(sub.Name), sn)
			}
		}
		if len(dn.Content) > 0 {
			root.Content = append(root.Content, str(d.Name), dn)
		}
	}
	if len(root.Content) == 0 {
		return []byte("{}\n"), nil
	}
	return yaml.Marshal(root)
}

func (vf ValuesFile) count() int {
	n := 0
	for _, subs := range vf {
		for _, comps := range subs {
			for _, fields := range comps {
				n += len(fields)
			}
		}
	}
	return n
}

func (vf ValuesFile) firstUnknown(tax *taxonomy.Taxonomy) string {
	for d, subs := range vf {
		for sub, comps := range subs {
			for c, fields := range comps {
				for f := range fields {
					p := taxonomy.Path{Domain: d, Subsystem: sub, Component: c, Field: f}
					if !tax.Contains(p) {
						return p.String()
					}
				}
			}
		}
	}
	return ""
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
