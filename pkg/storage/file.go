package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

// FileStore keeps one JSON file per layout in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// fileRecord is the on-disk envelope.
type fileRecord struct {
	SavedAt time.Time    `json:"saved_at"`
	Layout  graph.Layout `json:"layout"`
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to $XDG_DATA_HOME/jobtimeline/layouts
// (~/.local/share/jobtimeline/layouts).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default FileStore directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "jobtimeline", "layouts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "jobtimeline", "layouts"), nil
}

func (s *FileStore) layoutPath(hash string) string {
	return filepath.Join(s.baseDir, filepath.Base(hash)+".json")
}

func (s *FileStore) SaveLayout(ctx context.Context, l graph.Layout) error {
	if err := checkHash(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fileRecord{SavedAt: time.Now().UTC(), Layout: l}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(s.layoutPath(l.Hash), data, 0o644); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

func (s *FileStore) GetLayout(ctx context.Context, hash string) (graph.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(s.layoutPath(hash))
	if errors.Is(err, os.ErrNotExist) {
		return graph.Layout{}, ErrNotFound
	}
	if err != nil {
		return graph.Layout{}, err
	}
	return rec.Layout, nil
}

func (s *FileStore) DeleteLayout(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.layoutPath(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) ListLayouts(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.read(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}
		out = append(out, summarize(rec.Layout, rec.SavedAt))
	}
	return newestFirst(out, limit), nil
}

func (s *FileStore) read(path string) (fileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileRecord{}, err
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for layout files.
func (s *FileStore) Path() string { return s.baseDir }

var _ Store = (*FileStore)(nil)
