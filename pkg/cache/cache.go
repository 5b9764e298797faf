// Package cache provides pluggable result caching for batch builds and
// rendered artifacts.
//
// Three backends cover the deployment modes: [FileCache] for the CLI,
// [RedisCache] for the shared API service, and [NullCache] to disable
// caching entirely. Keys are produced by a [Keyer] so every consumer
// derives them the same way; a [ScopedKeyer] adds a namespace prefix when
// one cache instance serves multiple tenants.
package cache

import (
	"context"
	"time"

	"github.com/yunchaoli/cablerig/pkg/rig"
)

// Cache is a byte-blob cache with per-entry TTLs. A zero TTL stores the
// entry without expiration.
type Cache interface {
	// Get returns the cached data for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per artifact class. Batches are pure functions of their
// config, so they only expire to bound storage; rendered artifacts expire
// faster since they are cheap to regenerate from a cached batch.
const (
	BatchTTL  = 24 * time.Hour
	RenderTTL = 6 * time.Hour
)

// RenderKeyOpts are the rendering knobs that change an artifact's bytes.
type RenderKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer derives cache keys for the two cached artifact classes.
type Keyer interface {
	// BatchKey keys a built batch by its full input: config and stage.
	BatchKey(cfg rig.Config, stage rig.Stage) string

	// RenderKey keys a rendered artifact by the batch it came from and the
	// rendering options.
	RenderKey(batchID string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// BatchKey generates a key for a built batch.
func (k *DefaultKeyer) BatchKey(cfg rig.Config, stage rig.Stage) string {
	return hashKey("batch", cfg, stage)
}

// RenderKey generates a key for a rendered artifact.
func (k *DefaultKeyer) RenderKey(batchID string, opts RenderKeyOpts) string {
	return hashKey("render", batchID, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
