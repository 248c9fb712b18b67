package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

func TestStaticStoreLoad(t *testing.T) {
	snap := tree.New()
	if _, err := snap.CreateFolder(tree.RootID, "Remote"); err != nil {
		t.Fatal(err)
	}
	snap.Touch(time.UnixMilli(99))
	body, _ := json.Marshal(snap)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/library.json":
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	static := NewStatic(srv.URL+"/library.json", 2*time.Second)
	loaded, err := static.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LastUpdated != 99 || len(loaded.Folders) != 2 {
		t.Errorf("loaded = %+v", loaded)
	}

	missing := NewStatic(srv.URL+"/nope.json", 2*time.Second)
	if _, err := missing.Load(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("404: err = %v, want ErrSnapshotNotFound", err)
	}

	down := NewStatic("http://127.0.0.1:1/library.json", 500*time.Millisecond)
	if _, err := down.Load(ctx); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("network failure: err = %v, want ErrSnapshotNotFound", err)
	}

	if err := static.Save(ctx, snap); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Save: err = %v, want ErrReadOnly", err)
	}
}
