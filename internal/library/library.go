// Package library owns the in-memory snapshot and coordinates the tree
// operations, explicit persistence, and remote reconciliation around it.
// All application state lives here rather than in package-level globals;
// handlers receive a *Library and never touch storage directly.
package library

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/se1907800-collab/mediavalut/internal/ingest"
	"github.com/se1907800-collab/mediavalut/internal/store"
	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// Library is the single owner of the snapshot. The mutex serializes the
// HTTP and WebSocket handlers the way the browser event loop serialized the
// original client; mutations are synchronous and persistence is a separate,
// explicit Save call.
type Library struct {
	mu      sync.Mutex
	snap    *tree.Snapshot
	primary store.Adapter
	backup  store.Adapter

	now func() time.Time

	// lastWritten is the lastUpdated stamp this process most recently
	// persisted; the reconciler uses it to recognize its own writes.
	lastWritten int64
	saving      bool

	onReplace func(*tree.Snapshot)
}

// Open loads the snapshot from the primary backend, falling back to the
// local backup and finally to an empty tree. When both backends hold a
// snapshot the newer lastUpdated wins. Adapter failures are never fatal.
func Open(ctx context.Context, primary, backup store.Adapter) *Library {
	lib := &Library{
		primary: primary,
		backup:  backup,
		now:     time.Now,
	}

	remote := loadFrom(ctx, primary)
	local := loadFrom(ctx, backup)

	switch {
	case remote == nil && local == nil:
		log.Printf("library: no stored snapshot, starting empty")
		lib.snap = tree.New()
	case remote == nil:
		log.Printf("library: using %s snapshot (lastUpdated=%d)", backup.Name(), local.LastUpdated)
		lib.snap = local
	case local == nil || remote.LastUpdated >= local.LastUpdated:
		log.Printf("library: using %s snapshot (lastUpdated=%d)", primary.Name(), remote.LastUpdated)
		lib.snap = remote
	default:
		log.Printf("library: local backup is newer (%d > %d), keeping it",
			local.LastUpdated, remote.LastUpdated)
		lib.snap = local
	}
	lib.lastWritten = lib.snap.LastUpdated
	return lib
}

func loadFrom(ctx context.Context, adapter store.Adapter) *tree.Snapshot {
	if adapter == nil {
		return nil
	}
	snap, err := adapter.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrSnapshotNotFound) {
			log.Printf("library: load from %s: %v", adapter.Name(), err)
		}
		return nil
	}
	if err := snap.Validate(); err != nil {
		log.Printf("library: %s snapshot is inconsistent, ignoring: %v", adapter.Name(), err)
		return nil
	}
	return snap
}

// SetOnReplace registers the callback invoked (with a private clone) after
// the reconciler replaces the whole snapshot.
func (l *Library) SetOnReplace(fn func(*tree.Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReplace = fn
}

// mutate runs op on the snapshot and, when it succeeds, bumps lastUpdated.
func (l *Library) mutate(op func(*tree.Snapshot) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := op(l.snap); err != nil {
		return err
	}
	l.snap.Touch(l.now())
	return nil
}

func (l *Library) CreateFolder(parentID, name string) (string, error) {
	var id string
	err := l.mutate(func(s *tree.Snapshot) error {
		var err error
		id, err = s.CreateFolder(parentID, name)
		return err
	})
	return id, err
}

func (l *Library) RenameFolder(id, name string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.RenameFolder(id, name) })
}

func (l *Library) MoveFolder(id, newParentID string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.MoveFolder(id, newParentID) })
}

func (l *Library) DeleteFolder(id string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.DeleteFolder(id) })
}

func (l *Library) AddMedia(folderID string, item tree.MediaItem) error {
	return l.mutate(func(s *tree.Snapshot) error {
		if item.Added == 0 {
			item.Added = l.now().UnixMilli()
		}
		return s.AddMedia(folderID, item)
	})
}

func (l *Library) RenameMedia(folderID, mediaID, title string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.RenameMedia(folderID, mediaID, title) })
}

func (l *Library) MoveMedia(mediaID, fromFolderID, toFolderID string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.MoveMedia(mediaID, fromFolderID, toFolderID) })
}

func (l *Library) DeleteMedia(folderID, mediaID string) error {
	return l.mutate(func(s *tree.Snapshot) error { return s.DeleteMedia(folderID, mediaID) })
}

// Import applies parsed CSV rows and reports what changed.
func (l *Library) Import(rows []ingest.Row) (ingest.Result, error) {
	var res ingest.Result
	err := l.mutate(func(s *tree.Snapshot) error {
		var err error
		res, err = ingest.Import(s, rows, l.now())
		return err
	})
	return res, err
}

// BatchTarget is one node of a multi-select move: either a folder or a
// media item (identified together with the folder currently holding it).
type BatchTarget struct {
	Kind     string `json:"kind"` // "folder" or "media"
	ID       string `json:"id"`
	FolderID string `json:"folder_id,omitempty"`
}

// BatchMove moves every target into destID. The batch is applied atomically:
// any failing target rolls the whole batch back.
func (l *Library) BatchMove(targets []BatchTarget, destID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := l.snap.Clone()
	for _, target := range targets {
		var err error
		switch target.Kind {
		case "folder":
			// Dropping a folder onto itself is a no-op, not an error.
			if target.ID == destID {
				continue
			}
			err = staged.MoveFolder(target.ID, destID)
		case "media":
			if target.FolderID == destID {
				continue
			}
			err = staged.MoveMedia(target.ID, target.FolderID, destID)
		default:
			err = tree.ErrInvalidInput
		}
		if err != nil {
			return err
		}
	}
	staged.Touch(l.now())
	l.snap = staged
	return nil
}

// BatchDelete removes every target, staged the same way as BatchMove: a
// failing target rolls the whole batch back rather than leaving earlier
// deletes applied but unpersisted.
func (l *Library) BatchDelete(targets []BatchTarget) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := l.snap.Clone()
	for _, target := range targets {
		var err error
		switch target.Kind {
		case "folder":
			// A folder already removed by an earlier cascade in the
			// same batch is not an error.
			if _, ok := staged.Folders[target.ID]; !ok {
				if _, existed := l.snap.Folders[target.ID]; existed {
					continue
				}
			}
			err = staged.DeleteFolder(target.ID)
		case "media":
			if _, ok := staged.Folders[target.FolderID]; !ok {
				if _, existed := l.snap.Folders[target.FolderID]; existed {
					continue
				}
			}
			err = staged.DeleteMedia(target.FolderID, target.ID)
		default:
			err = tree.ErrInvalidInput
		}
		if err != nil {
			return err
		}
	}
	staged.Touch(l.now())
	l.snap = staged
	return nil
}

func (l *Library) ListPath(id string) ([]tree.PathEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.ListPath(id)
}

// Snapshot returns a deep copy of the current state for export or broadcast.
func (l *Library) Snapshot() *tree.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Clone()
}

// FolderSummary describes one subfolder in a listing.
type FolderSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Folders    int    `json:"folder_count"`
	MediaCount int    `json:"media_count"`
}

// FolderView is everything a client needs to render one folder.
type FolderView struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Path    []tree.PathEntry `json:"path"`
	Folders []FolderSummary  `json:"folders"`
	Media   []tree.MediaItem `json:"media"`
}

// View assembles the listing of a single folder.
func (l *Library) View(id string) (*FolderView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	folder, ok := l.snap.Folders[id]
	if !ok {
		return nil, tree.ErrNotFound
	}
	path, err := l.snap.ListPath(id)
	if err != nil {
		return nil, err
	}

	view := &FolderView{
		ID:      id,
		Name:    folder.Name,
		Path:    path,
		Folders: []FolderSummary{},
		Media:   append([]tree.MediaItem{}, l.snap.Media[id]...),
	}
	for _, childID := range folder.Children {
		child, ok := l.snap.Folders[childID]
		if !ok {
			continue
		}
		view.Folders = append(view.Folders, FolderSummary{
			ID:         childID,
			Name:       child.Name,
			Folders:    len(child.Children),
			MediaCount: len(l.snap.Media[childID]),
		})
	}
	return view, nil
}

// FindMedia looks an item up by folder and id, for the thumbnail proxy.
func (l *Library) FindMedia(folderID, mediaID string) (tree.MediaItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.snap.Media[folderID] {
		if item.ID == mediaID {
			return item, nil
		}
	}
	return tree.MediaItem{}, tree.ErrNotFound
}

// Save persists the current snapshot through the primary backend, mirroring
// to the local backup. A read-only primary (static host) makes the backup
// the effective store, matching the fallback-to-local behavior of the
// original client.
func (l *Library) Save(ctx context.Context) error {
	l.mu.Lock()
	if l.saving {
		l.mu.Unlock()
		return errors.New("save already in progress")
	}
	l.saving = true
	snap := l.snap.Clone()
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.saving = false
		l.mu.Unlock()
	}()

	err := l.primary.Save(ctx, snap)
	if err != nil && !errors.Is(err, store.ErrReadOnly) {
		return err
	}
	if l.backup == nil {
		if err != nil {
			// Read-only primary and nowhere else to write.
			return err
		}
	} else if berr := l.backup.Save(ctx, snap); berr != nil {
		if err != nil {
			// Read-only primary and no working backup: nothing
			// actually persisted this write.
			return berr
		}
		log.Printf("library: backup save failed: %v", berr)
	}

	l.mu.Lock()
	l.lastWritten = snap.LastUpdated
	l.mu.Unlock()
	return nil
}

// Status reports the persistence backend and freshness counters.
type Status struct {
	Backend     string `json:"backend"`
	LastUpdated int64  `json:"last_updated"`
	LastWritten int64  `json:"last_written"`
	Folders     int    `json:"folders"`
	MediaItems  int    `json:"media_items"`
}

func (l *Library) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := 0
	for _, list := range l.snap.Media {
		items += len(list)
	}
	return Status{
		Backend:     l.primary.Name(),
		LastUpdated: l.snap.LastUpdated,
		LastWritten: l.lastWritten,
		Folders:     len(l.snap.Folders),
		MediaItems:  items,
	}
}
