package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a taxonomy from a YAML nested mapping:
//
//	Power:
//	  Feed:
//	    Feed: [Voltage, Amperage]
//
// Mapping key order becomes declaration order, so the document is walked
// as a yaml.Node tree instead of being decoded into Go maps.
func Parse(data []byte) (*Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid taxonomy YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("taxonomy document is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: taxonomy root must be a mapping of domains", root.Line)
	}

	t := &Taxonomy{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		dk, dv := root.Content[i], root.Content[i+1]
		if dv.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: domain %q must map subsystems", dv.Line, dk.Value)
		}
		d := Domain{Name: dk.Value}
		for j := 0; j+1 < len(dv.Content); j += 2 {
			sk, sv := dv.Content[j], dv.Content[j+1]
			if sv.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: subsystem %q must map components", sv.Line, sk.Value)
			}
			s := Subsystem{Name: sk.Value}
			for k := 0; k+1 < len(sv.Content); k += 2 {
				ck, cv := sv.Content[k], sv.Content[k+1]
				if cv.Kind != yaml.SequenceNode {
					return nil, fmt.Errorf("line %d: component %q must list its fields", cv.Line, ck.Value)
				}
				c := Component{Name: ck.Value}
				for _, fn := range cv.Content {
					if fn.Kind != yaml.ScalarNode {
						return nil, fmt.Errorf("line %d: field names in %q must be strings", fn.Line, ck.Value)
					}
					c.Fields = append(c.Fields, fn.Value)
				}
				s.Components = append(s.Components, c)
			}
			d.Subsystems = append(d.Subsystems, s)
		}
		t.Domains = append(t.Domains, d)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads and parses a taxonomy file.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Marshal encodes the taxonomy as a YAML nested mapping in declaration order.
func Marshal(t *Taxonomy) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, d := range t.Domains {
		dv := &yaml.Node{Kind: yaml.MappingNode}
		for _, s := range d.Subsystems {
			sv := &yaml.Node{Kind: yaml.MappingNode}
			for _, c := range s.Components {
				cv := &yaml.Node{Kind: yaml.SequenceNode}
				for _, f := range c.Fields {
					cv.Content = append(cv.Content, scalar(f))
				}
				sv.Content = append(sv.Content, scalar(c.Name), cv)
			}
			dv.Content = append(dv.Content, scalar(s.Name), sv)
		}
		root.Content = append(root.Content, scalar(d.Name), dv)
	}
	return yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}})
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
