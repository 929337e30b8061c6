package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/jobtimeline/pkg/timeline"
)

// DAG is the dependency map of a workflow in document order.
//
// A source listed twice keeps its first position and takes the targets of
// its last occurrence, matching how a JSON object literal is evaluated.
type DAG timeline.Dependencies

// Targets returns the targets of source, or nil.
func (d DAG) Targets(source string) []string {
	if i := d.index(source); i >= 0 {
		return d[i].Targets
	}
	return nil
}

// Sources lists the source names in order.
func (d DAG) Sources() []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Source
	}
	return out
}

func (d DAG) index(source string) int {
	for i, e := range d {
		if e.Source == source {
			return i
		}
	}
	return -1
}

func (d *DAG) set(source string, targets []string) {
	if i := d.index(source); i >= 0 {
		(*d)[i].Targets = targets
		return
	}
	*d = append(*d, timeline.Dependency{Source: source, Targets: targets})
}

// =============================================================================
// JSON
// =============================================================================

// MarshalJSON writes the dag as an object with keys in order.
func (d DAG) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Source)
		if err != nil {
			return nil, err
		}
		targets := e.Targets
		if targets == nil {
			targets = []string{}
		}
		val, err := json.Marshal(targets)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of name lists, keeping key order.
func (d *DAG) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDAG, err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrMalformedDAG, tok)
	}

	out := DAG{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDAG, err)
		}
		source, _ := tok.(string)
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrMalformedDAG, source, err)
		}
		out.set(source, targets)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDAG, err)
	}
	*d = out
	return nil
}

// =============================================================================
// YAML
// =============================================================================

// MarshalYAML writes the dag as a mapping with keys in order.
func (d DAG) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range d {
		var key yaml.Node
		key.SetString(e.Source)

		targets := e.Targets
		if targets == nil {
			targets = []string{}
		}
		var val yaml.Node
		if err := val.Encode(targets); err != nil {
			return nil, err
		}
		val.Style = yaml.FlowStyle
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping of name lists, keeping key order.
func (d *DAG) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		*d = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected mapping", ErrMalformedDAG, value.Line)
	}

	out := DAG{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var targets []string
		if err := val.Decode(&targets); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrMalformedDAG, key.Value, err)
		}
		out.set(key.Value, targets)
	}
	*d = out
	return nil
}
