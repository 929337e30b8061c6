// Package storage persists computed layout documents.
//
// Unlike the cache, which may drop entries at any time, a [Store] keeps a
// layout until it is deleted so it can be served again by hash. Backends:
//   - [MemoryStore]: in-process, for tests and one-shot runs
//   - [FileStore]: one JSON file per layout, for the CLI and single-node servers
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Layouts are keyed by their Hash field, which the pipeline derives from
// the workflow content and the drawing options.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when no layout has the requested hash.
	ErrNotFound = errors.New("layout not found")

	// ErrMissingHash is returned when saving a layout without a hash.
	ErrMissingHash = errors.New("layout has no hash")
)

// Summary describes a stored layout without its geometry.
type Summary struct {
	Hash    string    `json:"hash"`
	Title   string    `json:"title,omitempty"`
	VizType string    `json:"viz_type"`
	Nodes   int       `json:"nodes"`
	SavedAt time.Time `json:"saved_at"`
}

// Store is the interface for layout storage backends.
type Store interface {
	// SaveLayout stores l under l.Hash, replacing any previous layout.
	SaveLayout(ctx context.Context, l graph.Layout) error

	// GetLayout returns the layout with the given hash or ErrNotFound.
	GetLayout(ctx context.Context, hash string) (graph.Layout, error)

	// DeleteLayout removes a layout. Deleting a missing layout is not an error.
	DeleteLayout(ctx context.Context, hash string) error

	// ListLayouts returns up to limit summaries, newest first. A limit of
	// zero or less returns all of them.
	ListLayouts(ctx context.Context, limit int) ([]Summary, error)

	Close() error
}

func summarize(l graph.Layout, savedAt time.Time) Summary {
	return Summary{
		Hash:    l.Hash,
		Title:   l.Title,
		VizType: l.VizType,
		Nodes:   len(l.Nodes),
		SavedAt: savedAt,
	}
}

func checkHash(l graph.Layout) error {
	if l.Hash == "" {
		return fmt.Errorf("save %q: %w", l.Title, ErrMissingHash)
	}
	return nil
}
