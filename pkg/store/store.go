// Package store persists built batches for later retrieval.
//
// Two backends cover the deployment modes: [MemoryStore] for development
// and tests, and [MongoStore] for the API service. Both implement [Store];
// lookups of unknown IDs return [ErrNotFound] rather than a nil batch.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/yunchaoli/cablerig/pkg/scene"
)

// ErrNotFound is returned when a batch does not exist.
var ErrNotFound = errors.New("batch not found")

// Summary is the listing view of a stored batch: enough to identify it
// without loading every assembly.
type Summary struct {
	ID            string    `json:"id" bson:"_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	NumAssemblies int       `json:"num_assemblies" bson:"num_assemblies"`
	Layout        string    `json:"layout" bson:"layout"`
}

// Store is the interface for batch persistence backends.
type Store interface {
	// Put stores a batch, replacing any existing batch with the same ID.
	Put(ctx context.Context, b *scene.Batch) error

	// Get retrieves a batch by ID. Returns ErrNotFound if it does not
	// exist.
	Get(ctx context.Context, id string) (*scene.Batch, error)

	// Delete removes a batch. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// List returns summaries of the most recently created batches, newest
	// first, up to limit. A non-positive limit returns all.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// summarize builds the listing view of a batch. The assembly count comes
// from the config so it survives projections that drop the assemblies.
func summarize(b *scene.Batch) Summary {
	return Summary{
		ID:            b.ID,
		CreatedAt:     b.CreatedAt,
		NumAssemblies: b.Config.NumAssemblies,
		Layout:        string(b.Layout.Kind),
	}
}
