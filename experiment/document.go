package experiment

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// documentRecord is one validated experiment document before well
// resolution. Resolution is deferred to the assembler so the plate header
// context applies uniformly.
type documentRecord struct {
	label      string
	conditions []conditionRefs
	extra      map[string]any
}

// conditionRefs is one condition's well references, in document order.
type conditionRefs struct {
	name string
	refs []string
}

// mappingRoot unwraps a decoded document node down to its root mapping.
func mappingRoot(doc *yaml.Node) (*yaml.Node, bool) {
	n := doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) != 1 {
			return nil, false
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil, false
	}
	return n, true
}

// mappingKeys lists a mapping node's scalar keys in document order.
func mappingKeys(mapping *yaml.Node) []string {
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys
}

// parseDocument validates one experiment document. position is the
// 1-based document position within the metadata file, used in errors.
//
// Required fields: a non-empty label and a non-empty wells mapping of
// condition name to a non-empty sequence of reference strings. Every
// other field passes through unchanged into the record.
func parseDocument(doc *yaml.Node, position int) (*documentRecord, error) {
	malformed := func(format string, args ...any) error {
		return &Error{
			Code:     ErrCodeMalformedExperiment,
			Message:  fmt.Sprintf(format, args...),
			Document: position,
		}
	}

	mapping, ok := mappingRoot(doc)
	if !ok {
		return nil, malformed("experiment document is not a mapping")
	}

	rec := &documentRecord{extra: make(map[string]any)}
	sawLabel, sawWells := false, false

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		value := mapping.Content[i+1]

		switch key {
		case "label":
			if err := value.Decode(&rec.label); err != nil {
				return nil, malformed("field %q: %v", key, err)
			}
			sawLabel = true

		case "wells":
			if value.Kind != yaml.MappingNode {
				return nil, malformed("field %q must be a mapping of condition to well references", key)
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				name := value.Content[j].Value
				var refs []string
				if err := value.Content[j+1].Decode(&refs); err != nil {
					return nil, malformed("condition %q: %v", name, err)
				}
				if len(refs) == 0 {
					return nil, malformed("condition %q has no well references", name)
				}
				rec.conditions = append(rec.conditions, conditionRefs{name: name, refs: refs})
			}
			sawWells = true

		default:
			var v any
			if err := value.Decode(&v); err != nil {
				return nil, malformed("field %q: %v", key, err)
			}
			rec.extra[key] = v
		}
	}

	if !sawLabel || rec.label == "" {
		return nil, malformed("experiment is missing a label")
	}
	if !sawWells || len(rec.conditions) == 0 {
		return nil, malformed("experiment %q doesn't have any wells", rec.label)
	}
	return rec, nil
}
