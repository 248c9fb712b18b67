package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// SnapshotDocument is the single database row a managed-document deployment
// keeps per installation: the whole snapshot as one jsonb payload, keyed by
// an anonymous per-installation identity.
type SnapshotDocument struct {
	InstallID   string          `gorm:"primaryKey;column:install_id"`
	Data        json.RawMessage `gorm:"type:jsonb"`
	LastUpdated int64
	UpdatedAt   time.Time
}

// TableName specifies the table name for the snapshot document.
func (SnapshotDocument) TableName() string {
	return "snapshots"
}

// DocumentStore persists the snapshot as one upserted document row and can
// watch that row for writes made by other clients of the same installation.
type DocumentStore struct {
	db        *gorm.DB
	installID string
}

// OpenDocument connects to the document database and ensures the schema.
func OpenDocument(dsn, installID string) (*DocumentStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := db.AutoMigrate(&SnapshotDocument{}); err != nil {
		return nil, fmt.Errorf("migrating snapshot table: %w", err)
	}
	return &DocumentStore{db: db, installID: installID}, nil
}

func (d *DocumentStore) Name() string { return "document" }

func (d *DocumentStore) Load(ctx context.Context) (*tree.Snapshot, error) {
	var doc SnapshotDocument
	err := d.db.WithContext(ctx).Where("install_id = ?", d.installID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var snap tree.Snapshot
	if err := json.Unmarshal(doc.Data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot document: %w", err)
	}
	return &snap, nil
}

// Save merge-upserts the installation's document.
func (d *DocumentStore) Save(ctx context.Context, snap *tree.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	doc := SnapshotDocument{
		InstallID:   d.installID,
		Data:        raw,
		LastUpdated: snap.LastUpdated,
	}
	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "install_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "last_updated", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Watch polls the document's lastUpdated stamp and invokes fn with the full
// snapshot whenever another writer has changed it. It blocks until ctx is
// cancelled, so run it on its own goroutine.
func (d *DocumentStore) Watch(ctx context.Context, interval time.Duration, fn func(*tree.Snapshot)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastSeen int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var doc SnapshotDocument
		err := d.db.WithContext(ctx).
			Select("last_updated").
			Where("install_id = ?", d.installID).
			First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			log.Printf("snapshot watch: %v", err)
			continue
		}
		if doc.LastUpdated == lastSeen {
			continue
		}
		lastSeen = doc.LastUpdated

		snap, err := d.Load(ctx)
		if err != nil {
			log.Printf("snapshot watch: reload failed: %v", err)
			continue
		}
		fn(snap)
	}
}
