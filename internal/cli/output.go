package cli

import (
	"fmt"
	"io"
	"os"
)

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes one file per format. A single format goes to
// output verbatim ("-" for stdout); several formats share the base path
// derived from output or input. It returns the paths written.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 && p.output != "" {
		format := p.formats[0]
		if err := writeOutput(p.output, p.artifacts[format]); err != nil {
			return nil, err
		}
		if p.output == stdinArg {
			return nil, nil
		}
		return []string{p.output}, nil
	}

	base := basePath(p.output, p.input)
	if p.input == stdinArg && p.output == "" {
		base = "workflow"
	}
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := fmt.Sprintf("%s.%s", base, format)
		if err := writeOutput(path, p.artifacts[format]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdinArg {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
