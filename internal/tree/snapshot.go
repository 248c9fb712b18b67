package tree

import "encoding/json"

// Snapshot is the complete folder/media tree at a point in time and the
// unit of persistence and sync comparison. Folder ids double as the map
// keys of Folders on the wire; FolderNode.ID is rebuilt on decode.
type Snapshot struct {
	Folders     map[string]*FolderNode `json:"folderStructure"`
	Media       map[string][]MediaItem `json:"mediaData"`
	LastUpdated int64                  `json:"lastUpdated"`
	Version     int                    `json:"version"`
}

// snapshotAlias avoids recursing into UnmarshalJSON.
type snapshotAlias Snapshot

// UnmarshalJSON decodes the wire schema and restores the in-memory fields
// the serialized form omits (node ids, empty maps).
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var alias snapshotAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = Snapshot(alias)
	if s.Folders == nil {
		s.Folders = map[string]*FolderNode{}
	}
	if s.Media == nil {
		s.Media = map[string][]MediaItem{}
	}
	for id, folder := range s.Folders {
		folder.ID = id
		if folder.Children == nil {
			folder.Children = []string{}
		}
	}
	return nil
}

// Clone returns a deep copy, so a caller can hand the snapshot to another
// goroutine (persistence, broadcast) without racing later mutations.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Folders:     make(map[string]*FolderNode, len(s.Folders)),
		Media:       make(map[string][]MediaItem, len(s.Media)),
		LastUpdated: s.LastUpdated,
		Version:     s.Version,
	}
	for id, folder := range s.Folders {
		copied := *folder
		copied.Children = append([]string{}, folder.Children...)
		if folder.Parent != nil {
			parent := *folder.Parent
			copied.Parent = &parent
		}
		out.Folders[id] = &copied
	}
	for folderID, items := range s.Media {
		out.Media[folderID] = append([]MediaItem{}, items...)
	}
	return out
}
