package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// StaticStore loads the snapshot from a static file host (a raw GitHub URL
// in the typical deployment). The host is read-only from here: Save returns
// ErrReadOnly and the caller is expected to mirror writes to a local backup.
type StaticStore struct {
	client *resty.Client
	url    string
}

// NewStatic builds a static-fetch adapter for the given raw file URL.
func NewStatic(rawURL string, timeout time.Duration) *StaticStore {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetDisableWarn(true)
	return &StaticStore{client: client, url: rawURL}
}

func (s *StaticStore) Name() string { return "static" }

func (s *StaticStore) Load(ctx context.Context) (*tree.Snapshot, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.url)
	if err != nil {
		// Network failure and a missing file look the same to the
		// caller: no remote snapshot to load.
		return nil, fmt.Errorf("%w: %v", ErrSnapshotNotFound, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrSnapshotNotFound, s.url, resp.StatusCode())
	}
	var snap tree.Snapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return nil, fmt.Errorf("decoding remote snapshot: %w", err)
	}
	return &snap, nil
}

func (s *StaticStore) Save(context.Context, *tree.Snapshot) error {
	return ErrReadOnly
}
