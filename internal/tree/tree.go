package tree

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RootID is the identifier of the permanent root folder. The root always
// exists, has no parent, and can be neither moved nor deleted.
const RootID = "root"

// SchemaVersion is written into every persisted snapshot.
const SchemaVersion = 1

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidParent    = errors.New("parent folder does not exist")
	ErrInvalidInput     = errors.New("invalid input")
	ErrCyclicMove       = errors.New("cannot move a folder into its own subtree")
	ErrInvalidOperation = errors.New("operation not allowed")
)

// MediaType is the kind of a media item.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
)

// ParseMediaType validates a raw type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaVideo:
		return MediaVideo, nil
	case MediaImage:
		return MediaImage, nil
	}
	return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidInput, s)
}

// FolderNode is one folder in the tree. Nodes reference each other by id:
// Parent is nil only on the root, and every entry in Children must name an
// existing folder whose Parent points back at this node.
type FolderNode struct {
	ID       string   `json:"-"`
	Name     string   `json:"name"`
	Parent   *string  `json:"parent"`
	Children []string `json:"children"`
}

// MediaItem is a Google-Drive-hosted file attached to exactly one folder.
// The ID is the Drive file identifier; uniqueness is per folder, not global.
type MediaItem struct {
	ID    string    `json:"id"`
	Type  MediaType `json:"type"`
	Title string    `json:"title"`
	Added int64     `json:"added"`
}

// PathEntry is one step of a breadcrumb path.
type PathEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// New returns a snapshot containing only the root folder.
func New() *Snapshot {
	return &Snapshot{
		Folders: map[string]*FolderNode{
			RootID: {ID: RootID, Name: "Home", Children: []string{}},
		},
		Media:   map[string][]MediaItem{RootID: {}},
		Version: SchemaVersion,
	}
}

// Touch stamps the snapshot with the given time (epoch milliseconds).
func (s *Snapshot) Touch(now time.Time) {
	s.LastUpdated = now.UnixMilli()
}

// CreateFolder adds a new empty folder under parentID and returns its id.
func (s *Snapshot) CreateFolder(parentID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: folder name is empty", ErrInvalidInput)
	}
	parent, ok := s.Folders[parentID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidParent, parentID)
	}

	id := uuid.NewString()
	s.Folders[id] = &FolderNode{
		ID:       id,
		Name:     name,
		Parent:   &parent.ID,
		Children: []string{},
	}
	parent.Children = append(parent.Children, id)
	s.Media[id] = []MediaItem{}
	return id, nil
}

// RenameFolder changes a folder's display name.
func (s *Snapshot) RenameFolder(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: folder name is empty", ErrInvalidInput)
	}
	folder, ok := s.Folders[id]
	if !ok {
		return fmt.Errorf("folder %q: %w", id, ErrNotFound)
	}
	folder.Name = name
	return nil
}

// MoveFolder reparents a folder. Moving the root, moving onto a missing
// parent, or moving a folder into itself or any of its descendants is
// rejected and the tree is left untouched.
func (s *Snapshot) MoveFolder(id, newParentID string) error {
	if id == RootID {
		return fmt.Errorf("%w: root folder cannot be moved", ErrInvalidOperation)
	}
	folder, ok := s.Folders[id]
	if !ok {
		return fmt.Errorf("folder %q: %w", id, ErrNotFound)
	}
	newParent, ok := s.Folders[newParentID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidParent, newParentID)
	}
	if id == newParentID || s.isDescendant(newParentID, id) {
		return fmt.Errorf("%w: %q into %q", ErrCyclicMove, id, newParentID)
	}
	if folder.Parent != nil && *folder.Parent == newParentID {
		return nil
	}

	s.detach(folder)
	folder.Parent = &newParent.ID
	newParent.Children = append(newParent.Children, id)
	return nil
}

// DeleteFolder removes a folder, all of its descendant folders (post-order)
// and every media list they own. The root cannot be deleted.
func (s *Snapshot) DeleteFolder(id string) error {
	if id == RootID {
		return fmt.Errorf("%w: root folder cannot be deleted", ErrInvalidOperation)
	}
	folder, ok := s.Folders[id]
	if !ok {
		return fmt.Errorf("folder %q: %w", id, ErrNotFound)
	}
	s.detach(folder)
	s.deleteSubtree(id)
	return nil
}

func (s *Snapshot) deleteSubtree(id string) {
	folder, ok := s.Folders[id]
	if !ok {
		return
	}
	for _, child := range folder.Children {
		s.deleteSubtree(child)
	}
	delete(s.Media, id)
	delete(s.Folders, id)
}

// detach removes id from its current parent's children list.
func (s *Snapshot) detach(folder *FolderNode) {
	if folder.Parent == nil {
		return
	}
	parent, ok := s.Folders[*folder.Parent]
	if !ok {
		return
	}
	for i, child := range parent.Children {
		if child == folder.ID {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

// isDescendant reports whether id lies in the subtree rooted at ancestorID.
func (s *Snapshot) isDescendant(id, ancestorID string) bool {
	seen := 0
	for cur := s.Folders[id]; cur != nil && cur.Parent != nil; cur = s.Folders[*cur.Parent] {
		if *cur.Parent == ancestorID {
			return true
		}
		if seen++; seen > len(s.Folders) {
			return false
		}
	}
	return false
}

// AddMedia appends a media item to a folder's list.
func (s *Snapshot) AddMedia(folderID string, item MediaItem) error {
	if item.ID == "" {
		return fmt.Errorf("%w: media id is empty", ErrInvalidInput)
	}
	if _, err := ParseMediaType(string(item.Type)); err != nil {
		return err
	}
	if _, ok := s.Folders[folderID]; !ok {
		return fmt.Errorf("folder %q: %w", folderID, ErrNotFound)
	}
	// Ids are unique per folder, not globally.
	for _, existing := range s.Media[folderID] {
		if existing.ID == item.ID {
			return fmt.Errorf("%w: media %q already in folder %q", ErrInvalidInput, item.ID, folderID)
		}
	}
	if item.Title == "" {
		item.Title = item.ID
	}
	s.Media[folderID] = append(s.Media[folderID], item)
	return nil
}

// RenameMedia changes a media item's title.
func (s *Snapshot) RenameMedia(folderID, mediaID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: media title is empty", ErrInvalidInput)
	}
	items, ok := s.Media[folderID]
	if !ok {
		return fmt.Errorf("folder %q: %w", folderID, ErrNotFound)
	}
	for i := range items {
		if items[i].ID == mediaID {
			items[i].Title = title
			return nil
		}
	}
	return fmt.Errorf("media %q in folder %q: %w", mediaID, folderID, ErrNotFound)
}

// MoveMedia transfers one item between folder lists.
func (s *Snapshot) MoveMedia(mediaID, fromFolderID, toFolderID string) error {
	if _, ok := s.Folders[fromFolderID]; !ok {
		return fmt.Errorf("folder %q: %w", fromFolderID, ErrNotFound)
	}
	if _, ok := s.Folders[toFolderID]; !ok {
		return fmt.Errorf("folder %q: %w", toFolderID, ErrNotFound)
	}
	items := s.Media[fromFolderID]
	for i := range items {
		if items[i].ID == mediaID {
			item := items[i]
			s.Media[fromFolderID] = append(items[:i], items[i+1:]...)
			s.Media[toFolderID] = append(s.Media[toFolderID], item)
			return nil
		}
	}
	return fmt.Errorf("media %q in folder %q: %w", mediaID, fromFolderID, ErrNotFound)
}

// DeleteMedia removes one item from a folder's list.
func (s *Snapshot) DeleteMedia(folderID, mediaID string) error {
	items, ok := s.Media[folderID]
	if !ok {
		return fmt.Errorf("folder %q: %w", folderID, ErrNotFound)
	}
	for i := range items {
		if items[i].ID == mediaID {
			s.Media[folderID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("media %q in folder %q: %w", mediaID, folderID, ErrNotFound)
}

// ListPath walks parent links from id up to the root and returns the chain
// in root-first order, for breadcrumb reconstruction. A broken link anywhere
// in the chain is an error rather than a silently truncated path.
func (s *Snapshot) ListPath(id string) ([]PathEntry, error) {
	folder, ok := s.Folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %q: %w", id, ErrNotFound)
	}

	var path []PathEntry
	for steps := 0; ; steps++ {
		if steps > len(s.Folders) {
			return nil, fmt.Errorf("%w: parent chain of %q does not reach root", ErrNotFound, id)
		}
		path = append([]PathEntry{{ID: folder.ID, Name: folder.Name}}, path...)
		if folder.Parent == nil {
			break
		}
		next, ok := s.Folders[*folder.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: broken parent link at %q", ErrNotFound, folder.ID)
		}
		folder = next
	}
	if path[0].ID != RootID {
		return nil, fmt.Errorf("%w: parent chain of %q does not reach root", ErrNotFound, id)
	}
	return path, nil
}

// Validate checks the structural invariants: root present with nil parent,
// every child reference bidirectional, every non-root parent chain reaching
// the root, and a media list keyed only by existing folders.
func (s *Snapshot) Validate() error {
	rootNode, ok := s.Folders[RootID]
	if !ok {
		return fmt.Errorf("%w: root folder missing", ErrInvalidOperation)
	}
	if rootNode.Parent != nil {
		return fmt.Errorf("%w: root folder has a parent", ErrInvalidOperation)
	}
	for id, folder := range s.Folders {
		if id != RootID {
			if folder.Parent == nil {
				return fmt.Errorf("%w: folder %q has no parent", ErrInvalidOperation, id)
			}
			parent, ok := s.Folders[*folder.Parent]
			if !ok {
				return fmt.Errorf("%w: folder %q references missing parent %q", ErrInvalidOperation, id, *folder.Parent)
			}
			if !contains(parent.Children, id) {
				return fmt.Errorf("%w: folder %q missing from children of %q", ErrInvalidOperation, id, parent.ID)
			}
			if _, err := s.ListPath(id); err != nil {
				return err
			}
		}
		for _, child := range folder.Children {
			node, ok := s.Folders[child]
			if !ok {
				return fmt.Errorf("%w: folder %q lists missing child %q", ErrInvalidOperation, id, child)
			}
			if node.Parent == nil || *node.Parent != id {
				return fmt.Errorf("%w: child %q does not point back at %q", ErrInvalidOperation, child, id)
			}
		}
	}
	for folderID := range s.Media {
		if _, ok := s.Folders[folderID]; !ok {
			return fmt.Errorf("%w: media list for missing folder %q", ErrInvalidOperation, folderID)
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
