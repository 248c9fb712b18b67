package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/se1907800-collab/mediavalut/internal/store"
	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// memStore is an in-memory Adapter for exercising the library without a
// real backend.
type memStore struct {
	name     string
	snap     *tree.Snapshot
	readOnly bool
	saves    int
}

func (m *memStore) Name() string { return m.name }

func (m *memStore) Load(context.Context) (*tree.Snapshot, error) {
	if m.snap == nil {
		return nil, store.ErrSnapshotNotFound
	}
	return m.snap.Clone(), nil
}

func (m *memStore) Save(_ context.Context, snap *tree.Snapshot) error {
	if m.readOnly {
		return store.ErrReadOnly
	}
	m.snap = snap.Clone()
	m.saves++
	return nil
}

func snapshotAt(t *testing.T, stamp int64, folderName string) *tree.Snapshot {
	t.Helper()
	snap := tree.New()
	if _, err := snap.CreateFolder(tree.RootID, folderName); err != nil {
		t.Fatal(err)
	}
	snap.Touch(time.UnixMilli(stamp))
	return snap
}

func folderNames(snap *tree.Snapshot) map[string]bool {
	names := map[string]bool{}
	for _, f := range snap.Folders {
		names[f.Name] = true
	}
	return names
}

func TestOpenFallsBackToEmpty(t *testing.T) {
	lib := Open(context.Background(),
		&memStore{name: "primary"}, &memStore{name: "backup"})
	status := lib.Status()
	if status.Folders != 1 || status.LastUpdated != 0 {
		t.Errorf("status = %+v, want empty default snapshot", status)
	}
}

func TestOpenPicksNewerSnapshot(t *testing.T) {
	ctx := context.Background()

	primary := &memStore{name: "primary", snap: snapshotAt(t, 100, "old")}
	backup := &memStore{name: "backup", snap: snapshotAt(t, 200, "new")}
	lib := Open(ctx, primary, backup)
	if !folderNames(lib.Snapshot())["new"] {
		t.Error("newer backup snapshot should win")
	}

	primary.snap = snapshotAt(t, 300, "newest")
	lib = Open(ctx, primary, backup)
	if !folderNames(lib.Snapshot())["newest"] {
		t.Error("newer primary snapshot should win")
	}
}

func TestSaveMirrorsToBackup(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{name: "primary"}
	backup := &memStore{name: "backup"}
	lib := Open(ctx, primary, backup)

	if _, err := lib.CreateFolder(tree.RootID, "Trips"); err != nil {
		t.Fatal(err)
	}
	if err := lib.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if primary.saves != 1 || backup.saves != 1 {
		t.Errorf("saves: primary=%d backup=%d, want 1 and 1", primary.saves, backup.saves)
	}
	if lib.Status().LastWritten != lib.Status().LastUpdated {
		t.Error("lastWritten not updated after save")
	}
}

func TestSaveWithReadOnlyPrimary(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{name: "static", readOnly: true}
	backup := &memStore{name: "backup"}
	lib := Open(ctx, primary, backup)

	if _, err := lib.CreateFolder(tree.RootID, "Trips"); err != nil {
		t.Fatal(err)
	}
	if err := lib.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if backup.saves != 1 {
		t.Errorf("backup saves = %d, want 1", backup.saves)
	}
}

func TestApplyRemote(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{name: "primary"}
	lib := Open(ctx, primary, nil)

	var replaced *tree.Snapshot
	lib.SetOnReplace(func(s *tree.Snapshot) { replaced = s })

	remote := snapshotAt(t, 500, "from-elsewhere")
	if !lib.ApplyRemote(remote) {
		t.Fatal("remote snapshot should have been applied")
	}
	if replaced == nil || !folderNames(replaced)["from-elsewhere"] {
		t.Error("onReplace not invoked with the new snapshot")
	}

	// The same stamp is recognized as already seen.
	if lib.ApplyRemote(remote) {
		t.Error("identical stamp should be skipped")
	}

	// An inconsistent snapshot must never replace good state.
	broken := snapshotAt(t, 999, "broken")
	delete(broken.Folders, tree.RootID)
	if lib.ApplyRemote(broken) {
		t.Error("invalid snapshot applied")
	}
}

func TestApplyRemoteSkippedMidSave(t *testing.T) {
	ctx := context.Background()
	lib := Open(ctx, &memStore{name: "primary"}, nil)

	lib.mu.Lock()
	lib.saving = true
	lib.mu.Unlock()

	if lib.ApplyRemote(snapshotAt(t, 500, "racing")) {
		t.Error("remote applied while a save was in flight")
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	primary := &memStore{name: "primary"}
	lib := Open(ctx, primary, nil)

	if _, err := lib.Refresh(ctx); !errors.Is(err, store.ErrSnapshotNotFound) {
		t.Errorf("refresh with empty backend: err = %v", err)
	}

	primary.snap = snapshotAt(t, 700, "pushed")
	applied, err := lib.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !applied || !folderNames(lib.Snapshot())["pushed"] {
		t.Error("refresh did not adopt the remote snapshot")
	}
}

func TestBatchMoveIsAtomic(t *testing.T) {
	ctx := context.Background()
	lib := Open(ctx, &memStore{name: "primary"}, nil)

	a, _ := lib.CreateFolder(tree.RootID, "a")
	b, _ := lib.CreateFolder(tree.RootID, "b")
	dest, _ := lib.CreateFolder(tree.RootID, "dest")
	if err := lib.AddMedia(a, tree.MediaItem{ID: "m1", Type: tree.MediaImage}); err != nil {
		t.Fatal(err)
	}

	err := lib.BatchMove([]BatchTarget{
		{Kind: "folder", ID: b},
		{Kind: "media", ID: "m1", FolderID: a},
		{Kind: "media", ID: "ghost", FolderID: a},
	}, dest)
	if !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	snap := lib.Snapshot()
	if *snap.Folders[b].Parent != tree.RootID {
		t.Error("failed batch leaked a folder move")
	}
	if len(snap.Media[a]) != 1 {
		t.Error("failed batch leaked a media move")
	}

	if err := lib.BatchMove([]BatchTarget{
		{Kind: "folder", ID: b},
		{Kind: "media", ID: "m1", FolderID: a},
	}, dest); err != nil {
		t.Fatalf("BatchMove: %v", err)
	}
	snap = lib.Snapshot()
	if *snap.Folders[b].Parent != dest {
		t.Error("folder not moved")
	}
	if len(snap.Media[dest]) != 1 || snap.Media[dest][0].ID != "m1" {
		t.Error("media not moved")
	}
}

func TestBatchDeleteIsAtomic(t *testing.T) {
	ctx := context.Background()
	lib := Open(ctx, &memStore{name: "primary"}, nil)

	a, _ := lib.CreateFolder(tree.RootID, "a")
	b, _ := lib.CreateFolder(tree.RootID, "b")
	if err := lib.AddMedia(a, tree.MediaItem{ID: "m1", Type: tree.MediaImage}); err != nil {
		t.Fatal(err)
	}

	// A bad target anywhere in the batch leaves everything in place.
	err := lib.BatchDelete([]BatchTarget{
		{Kind: "folder", ID: a},
		{Kind: "folder", ID: "ghost"},
	})
	if !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	snap := lib.Snapshot()
	if _, ok := snap.Folders[a]; !ok {
		t.Error("failed batch leaked a folder delete")
	}
	if len(snap.Media[a]) != 1 {
		t.Error("failed batch leaked a media delete")
	}

	// Selecting a folder together with one of its descendants, or with
	// media it holds, must not fail on the cascade.
	child, _ := lib.CreateFolder(a, "child")
	if err := lib.BatchDelete([]BatchTarget{
		{Kind: "folder", ID: a},
		{Kind: "folder", ID: child},
		{Kind: "media", ID: "m1", FolderID: a},
		{Kind: "folder", ID: b},
	}); err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	snap = lib.Snapshot()
	for _, id := range []string{a, child, b} {
		if _, ok := snap.Folders[id]; ok {
			t.Errorf("folder %q survived the batch", id)
		}
	}
}
