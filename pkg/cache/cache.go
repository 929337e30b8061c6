// Package cache stores computed layouts and rendered artifacts.
//
// Entries are opaque bytes with an optional expiry. Three backends are
// provided: [FileCache] for the CLI, [RedisCache] for the HTTP server, and
// [NullCache] when caching is disabled. Keys come from a [Keyer], which
// hashes every input that affects the cached bytes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/matzehuels/jobtimeline/pkg/timeline"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default expiries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// LayoutKeyOpts are the inputs besides the workflow that shape a layout.
type LayoutKeyOpts struct {
	VizType  string
	Detailed bool
	Options  timeline.Options
}

// ArtifactKeyOpts are the inputs besides the layout that shape a rendered
// artifact.
type ArtifactKeyOpts struct {
	Format     string
	Title      string
	Stylesheet string
	NoAxes     bool
	Scale      float64
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(workflowHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>" over the workflow hash and options.
func (DefaultKeyer) LayoutKey(workflowHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", workflowHash, opts)
}

// ArtifactKey returns "artifact:<hash>" over the layout hash and options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "prefix:<hash>" over the JSON encoding of parts.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// NullCache never stores anything. Every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var (
	_ Cache = NullCache{}
	_ Keyer = DefaultKeyer{}
)
