// Package store provides the interchangeable persistence backends for the
// folder/media snapshot. Every backend implements the same load/save
// contract; which one is primary is a deployment choice.
package store

import (
	"context"
	"errors"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

var (
	// ErrSnapshotNotFound means the backend is reachable but holds no
	// snapshot yet (or the configured path does not exist).
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrReadOnly is returned by Save on backends that cannot be written
	// through this service, such as a static file host.
	ErrReadOnly = errors.New("store is read-only")

	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// Adapter is the persistence contract shared by all backends.
type Adapter interface {
	// Load fetches the persisted snapshot, or ErrSnapshotNotFound.
	Load(ctx context.Context) (*tree.Snapshot, error)
	// Save persists the snapshot, or ErrReadOnly for static backends.
	Save(ctx context.Context, snap *tree.Snapshot) error
	// Name identifies the backend in logs and status responses.
	Name() string
}
