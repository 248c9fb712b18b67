// Package ingest loads media inventories from CSV into the folder tree.
//
// The accepted format is one media item per row: id,type,title,folder.
// The id column takes either a raw Drive file identifier or a full share
// link. An optional header row is detected on line 1. Rows without a usable
// id or type are skipped rather than failing the whole import.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/se1907800-collab/mediavalut/internal/drive"
	"github.com/se1907800-collab/mediavalut/internal/tree"
)

// Row is one parsed CSV record.
type Row struct {
	FileID string
	Type   tree.MediaType
	Title  string
	Folder string
}

// Result summarizes an import.
type Result struct {
	Imported       int `json:"imported"`
	Skipped        int `json:"skipped"`
	FoldersCreated int `json:"folders_created"`
}

// Parse reads CSV rows and returns the usable ones plus the count of rows
// skipped as malformed.
func Parse(r io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}

	var rows []Row
	skipped := 0
	for _, record := range records {
		row, ok := parseRecord(record)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// isHeader reports whether the first line is a column header, detected by a
// case-insensitive "id," prefix.
func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "id")
}

func parseRecord(record []string) (Row, bool) {
	if len(record) < 2 {
		return Row{}, false
	}
	id := drive.ExtractFileID(record[0])
	if id == "" {
		// Not a resolvable link; fall back to the raw cell so plain
		// short ids exported by other tools still import.
		id = strings.TrimSpace(record[0])
	}
	if id == "" {
		return Row{}, false
	}
	mediaType, err := tree.ParseMediaType(record[1])
	if err != nil {
		return Row{}, false
	}

	row := Row{FileID: id, Type: mediaType}
	if len(record) > 2 {
		row.Title = strings.TrimSpace(record[2])
	}
	if len(record) > 3 {
		row.Folder = strings.TrimSpace(record[3])
	}
	if row.Title == "" {
		row.Title = row.FileID
	}
	return row, true
}

// Import applies parsed rows to the snapshot. The folder column names a
// direct child of the root, created on first use; rows without a folder go
// to the root itself.
func Import(snap *tree.Snapshot, rows []Row, now time.Time) (Result, error) {
	var res Result
	byName := map[string]string{}
	for _, childID := range snap.Folders[tree.RootID].Children {
		if child, ok := snap.Folders[childID]; ok {
			byName[child.Name] = childID
		}
	}

	for _, row := range rows {
		folderID := tree.RootID
		if row.Folder != "" {
			id, ok := byName[row.Folder]
			if !ok {
				created, err := snap.CreateFolder(tree.RootID, row.Folder)
				if err != nil {
					return res, fmt.Errorf("creating folder %q: %w", row.Folder, err)
				}
				byName[row.Folder] = created
				id = created
				res.FoldersCreated++
			}
			folderID = id
		}
		err := snap.AddMedia(folderID, tree.MediaItem{
			ID:    row.FileID,
			Type:  row.Type,
			Title: row.Title,
			Added: now.UnixMilli(),
		})
		if errors.Is(err, tree.ErrInvalidInput) {
			// Duplicate of an item the folder already holds.
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("adding media %q: %w", row.FileID, err)
		}
		res.Imported++
	}
	return res, nil
}
