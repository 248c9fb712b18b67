package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

var (
	localBucket = []byte("snapshot")
	localKey    = []byte("current")
)

// LocalStore keeps the snapshot as a JSON blob in a bbolt file. It plays the
// role the browser's localStorage plays for the web client: always available
// and same-machine, used both as a primary backend and as the write-through
// backup behind read-only backends.
type LocalStore struct {
	db   *bolt.DB
	path string
}

// OpenLocal opens (creating if needed) the bbolt file at path.
func OpenLocal(path string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(localBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &LocalStore{db: db, path: path}, nil
}

func (l *LocalStore) Name() string { return "local" }

// Close releases the underlying file.
func (l *LocalStore) Close() error { return l.db.Close() }

func (l *LocalStore) Load(_ context.Context) (*tree.Snapshot, error) {
	var raw []byte
	err := l.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(localBucket).Get(localKey); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if raw == nil {
		return nil, ErrSnapshotNotFound
	}
	var snap tree.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding local snapshot: %w", err)
	}
	return &snap, nil
}

func (l *LocalStore) Save(_ context.Context, snap *tree.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	err = l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(localBucket).Put(localKey, raw)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
