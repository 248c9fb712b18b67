// Package selection models the multi-select and drag-and-drop gestures as
// an explicit state machine, independent of any rendering layer. Clients
// stream pointer/touch events in; the controller answers with the selection
// state and, on a completed drop, the batch move to apply.
package selection

import (
	"time"

	"github.com/se1907800-collab/mediavalut/internal/library"
)

// Mode is the controller's top-level state.
type Mode int

const (
	Idle Mode = iota
	Selecting
)

func (m Mode) String() string {
	if m == Selecting {
		return "selecting"
	}
	return "idle"
}

// Kind classifies the node under the pointer.
type Kind string

const (
	KindFolder     Kind = "folder"
	KindMedia      Kind = "media"
	KindBreadcrumb Kind = "breadcrumb"
)

// NodeRef identifies a tree node under the pointer. Media refs carry the
// folder currently holding the item.
type NodeRef struct {
	Kind     Kind   `json:"kind"`
	ID       string `json:"id"`
	FolderID string `json:"folder_id,omitempty"`
}

// Event is a gesture event name.
type Event string

const (
	PointerDown Event = "pointer_down"
	PointerUp   Event = "pointer_up"
	PointerMove Event = "pointer_move"
	Click       Event = "click"
	DragStart   Event = "drag_start"
	DragOver    Event = "drag_over"
	DragDrop    Event = "drop"
	Cancel      Event = "cancel"
)

// LongPressDelay is how long a pointer must stay down on a node before the
// controller enters selection mode.
const LongPressDelay = 500 * time.Millisecond

// Drop is the outcome of a completed drag: the selected nodes to move and
// the folder to move them into.
type Drop struct {
	Targets []library.BatchTarget
	DestID  string
}

type press struct {
	target NodeRef
	at     time.Time
}

// Controller is one client's gesture state. It is not safe for concurrent
// use; each connection owns its own instance and feeds it events in order,
// mirroring the single-threaded event dispatch of the original client.
type Controller struct {
	// Now and Delay are settable for tests.
	Now   func() time.Time
	Delay time.Duration

	mode      Mode
	selected  map[NodeRef]struct{}
	order     []NodeRef
	pending   *press
	candidate *NodeRef

	dispatch map[dispatchKey]func(*Controller, NodeRef) *Drop
}

type dispatchKey struct {
	event Event
	kind  Kind
}

// New returns an Idle controller.
func New() *Controller {
	c := &Controller{
		Now:      time.Now,
		Delay:    LongPressDelay,
		selected: map[NodeRef]struct{}{},
	}
	c.dispatch = buildDispatch()
	return c
}

// buildDispatch is the typed event table: (event, target kind) -> handler.
// Events with no entry for the target's kind are ignored.
func buildDispatch() map[dispatchKey]func(*Controller, NodeRef) *Drop {
	table := map[dispatchKey]func(*Controller, NodeRef) *Drop{}

	for _, kind := range []Kind{KindFolder, KindMedia} {
		table[dispatchKey{PointerDown, kind}] = (*Controller).pointerDown
		table[dispatchKey{Click, kind}] = (*Controller).click
		table[dispatchKey{DragStart, kind}] = (*Controller).dragStart
	}
	for _, kind := range []Kind{KindFolder, KindMedia, KindBreadcrumb} {
		table[dispatchKey{PointerUp, kind}] = (*Controller).cancelPress
		table[dispatchKey{PointerMove, kind}] = (*Controller).cancelPress
		table[dispatchKey{Cancel, kind}] = (*Controller).reset
	}
	// Only folders (including breadcrumb entries) accept drops.
	for _, kind := range []Kind{KindFolder, KindBreadcrumb} {
		table[dispatchKey{DragOver, kind}] = (*Controller).dragOver
		table[dispatchKey{DragDrop, kind}] = (*Controller).drop
	}
	return table
}

// Tick commits an elapsed long-press outside the event stream, for callers
// that run the press timer themselves and want to notify the client the
// moment selection mode engages rather than on its next event. Reports
// whether the tick changed anything.
func (c *Controller) Tick() bool {
	before := c.mode
	c.settlePress()
	return c.mode != before
}

// Handle feeds one gesture event through the dispatch table. The returned
// Drop is non-nil only when a drag completed on a valid target; the caller
// applies it and persists.
func (c *Controller) Handle(ev Event, target NodeRef) *Drop {
	c.settlePress()
	handler, ok := c.dispatch[dispatchKey{ev, target.Kind}]
	if !ok {
		return nil
	}
	return handler(c, target)
}

// settlePress commits a long-press whose timer has elapsed. It runs before
// every event so a press that was never explicitly cancelled takes effect
// no matter which event arrives next.
func (c *Controller) settlePress() {
	if c.pending == nil {
		return
	}
	if c.Now().Sub(c.pending.at) < c.Delay {
		return
	}
	target := c.pending.target
	c.pending = nil
	c.mode = Selecting
	c.add(target)
}

func (c *Controller) pointerDown(target NodeRef) *Drop {
	c.pending = &press{target: target, at: c.Now()}
	return nil
}

// cancelPress aborts a pending long-press; pointer-up or movement before
// the delay elapses keeps the controller in its current mode.
func (c *Controller) cancelPress(NodeRef) *Drop {
	c.pending = nil
	return nil
}

func (c *Controller) click(target NodeRef) *Drop {
	if c.mode != Selecting {
		return nil
	}
	if _, ok := c.selected[target]; ok {
		c.remove(target)
		if len(c.selected) == 0 {
			c.mode = Idle
		}
	} else {
		c.add(target)
	}
	return nil
}

func (c *Controller) dragStart(NodeRef) *Drop {
	// A drag is only meaningful with something selected.
	if c.mode != Selecting || len(c.selected) == 0 {
		return nil
	}
	c.candidate = nil
	return nil
}

func (c *Controller) dragOver(target NodeRef) *Drop {
	if c.mode != Selecting {
		return nil
	}
	c.candidate = &target
	return nil
}

func (c *Controller) drop(target NodeRef) *Drop {
	defer func() { c.candidate = nil }()
	if c.mode != Selecting || len(c.selected) == 0 {
		return nil
	}
	destID := target.ID

	targets := make([]library.BatchTarget, 0, len(c.order))
	for _, ref := range c.order {
		// Dropping onto one of the selected nodes or the folder the
		// media already sits in is not a move.
		if ref.Kind == KindFolder && ref.ID == destID {
			continue
		}
		if ref.Kind == KindMedia && ref.FolderID == destID {
			continue
		}
		targets = append(targets, library.BatchTarget{
			Kind:     string(ref.Kind),
			ID:       ref.ID,
			FolderID: ref.FolderID,
		})
	}
	c.clear()
	if len(targets) == 0 {
		return nil
	}
	return &Drop{Targets: targets, DestID: destID}
}

func (c *Controller) reset(NodeRef) *Drop {
	c.clear()
	return nil
}

func (c *Controller) add(target NodeRef) {
	if _, ok := c.selected[target]; ok {
		return
	}
	c.selected[target] = struct{}{}
	c.order = append(c.order, target)
}

func (c *Controller) remove(target NodeRef) {
	delete(c.selected, target)
	for i, ref := range c.order {
		if ref == target {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Controller) clear() {
	c.mode = Idle
	c.selected = map[NodeRef]struct{}{}
	c.order = nil
	c.pending = nil
	c.candidate = nil
}

// Mode reports the current state.
func (c *Controller) Mode() Mode { return c.mode }

// Selected returns the selection in the order it was made.
func (c *Controller) Selected() []NodeRef {
	return append([]NodeRef{}, c.order...)
}

// DropCandidate is the node currently highlighted as a drop target, if any.
func (c *Controller) DropCandidate() *NodeRef {
	if c.candidate == nil {
		return nil
	}
	ref := *c.candidate
	return &ref
}
