package library

import (
	"context"
	"log"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// ApplyRemote is the last-write-wins reconciler. It is invoked with a
// snapshot another client wrote to the shared backend: when the stamp is
// not one this process wrote itself, and no save is in flight, the whole
// in-memory snapshot is replaced. Concurrent edits are not merged; the
// later write fully overwrites the earlier one. Returns whether the
// snapshot was replaced.
func (l *Library) ApplyRemote(remote *tree.Snapshot) bool {
	if remote == nil {
		return false
	}
	if err := remote.Validate(); err != nil {
		log.Printf("library: rejecting inconsistent remote snapshot: %v", err)
		return false
	}

	l.mu.Lock()
	if l.saving {
		// A save is in flight; our own write will land remotely in a
		// moment and this notification is either stale or our own.
		l.mu.Unlock()
		return false
	}
	if remote.LastUpdated == l.lastWritten {
		l.mu.Unlock()
		return false
	}
	l.snap = remote.Clone()
	l.lastWritten = remote.LastUpdated
	fn := l.onReplace
	var clone *tree.Snapshot
	if fn != nil {
		clone = l.snap.Clone()
	}
	l.mu.Unlock()

	log.Printf("library: snapshot replaced by remote write (lastUpdated=%d)", remote.LastUpdated)
	if fn != nil {
		fn(clone)
	}
	return true
}

// Refresh reloads the snapshot from the primary backend on demand, the
// manual counterpart of the watch-driven reconciliation. It is used when
// connectivity comes back or the user forces a resync.
func (l *Library) Refresh(ctx context.Context) (bool, error) {
	remote, err := l.primary.Load(ctx)
	if err != nil {
		return false, err
	}
	return l.ApplyRemote(remote), nil
}
