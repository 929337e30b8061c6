package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a workflow document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ReadFile reads and validates the workflow at path.
func ReadFile(path string) (*Workflow, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	wf, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// Read decodes and validates a workflow document. Read does not close r.
func Read(r io.Reader, format Format) (*Workflow, error) {
	var (
		wf  *Workflow
		err error
	)
	switch format {
	case FormatJSON:
		wf, err = readJSON(r)
	case FormatYAML:
		wf, err = readYAML(r)
	case FormatTOML:
		wf, err = readTOML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return wf, nil
}

// Parse decodes a workflow held in memory.
func Parse(data []byte, format Format) (*Workflow, error) {
	return Read(bytes.NewReader(data), format)
}

func readJSON(r io.Reader) (*Workflow, error) {
	var wf Workflow
	if err := json.NewDecoder(r).Decode(&wf); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &wf, nil
}

func readYAML(r io.Reader) (*Workflow, error) {
	var wf Workflow
	if err := yaml.NewDecoder(r).Decode(&wf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode yaml: empty document")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &wf, nil
}

// tomlDocument mirrors Workflow with a plain map for the dag. Key order is
// recovered from the decoder metadata.
type tomlDocument struct {
	Name string              `toml:"name"`
	Jobs []Job               `toml:"jobs"`
	DAG  map[string][]string `toml:"dag"`
}

func readTOML(r io.Reader) (*Workflow, error) {
	var doc tomlDocument
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	wf := &Workflow{Name: doc.Name, Jobs: doc.Jobs}
	if doc.DAG != nil {
		wf.DAG = DAG{}
	}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "dag" {
			continue
		}
		wf.DAG.set(key[1], doc.DAG[key[1]])
	}
	return wf, nil
}

// =============================================================================
// Output
// =============================================================================

// Write emits wf as indented JSON.
func Write(w io.Writer, wf *Workflow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wf); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML emits wf as YAML with the dag in order.
func WriteYAML(w io.Writer, wf *Workflow) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Canonical returns the compact JSON form of wf. Equal workflows, including
// dag order, produce equal bytes.
func Canonical(wf *Workflow) ([]byte, error) {
	return json.Marshal(wf)
}

// =============================================================================
// Ambari
// =============================================================================

// FromAmbari builds a workflow from Ambari's split form: wfContext is the
// workflow context string whose "dag" member holds the dependency map, and
// jobs is the JSON array of job records. A nil or empty jobs array yields
// a workflow with no observed jobs.
func FromAmbari(wfContext string, jobs []byte) (*Workflow, error) {
	var ctx struct {
		DAG DAG `json:"dag"`
	}
	if err := json.Unmarshal([]byte(wfContext), &ctx); err != nil {
		return nil, fmt.Errorf("decode workflow context: %w", err)
	}

	wf := &Workflow{DAG: ctx.DAG}
	if len(bytes.TrimSpace(jobs)) > 0 {
		if err := json.Unmarshal(jobs, &wf.Jobs); err != nil {
			return nil, fmt.Errorf("decode jobs: %w", err)
		}
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return wf, nil
}
