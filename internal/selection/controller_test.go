package selection

import (
	"testing"
	"time"
)

// fakeClock drives the controller's long-press timing deterministically.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestController() (*Controller, *fakeClock) {
	clock := &fakeClock{now: time.UnixMilli(0)}
	c := New()
	c.Now = func() time.Time { return clock.now }
	return c, clock
}

func folderRef(id string) NodeRef {
	return NodeRef{Kind: KindFolder, ID: id}
}

func mediaRef(id, folderID string) NodeRef {
	return NodeRef{Kind: KindMedia, ID: id, FolderID: folderID}
}

func TestLongPressEntersSelecting(t *testing.T) {
	c, clock := newTestController()

	c.Handle(PointerDown, folderRef("a"))
	if c.Mode() != Idle {
		t.Fatal("press alone must not change mode")
	}

	clock.advance(LongPressDelay)
	c.Handle(PointerUp, folderRef("a"))
	if c.Mode() != Selecting {
		t.Fatal("held press did not enter selecting mode")
	}
	if got := c.Selected(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("selected = %v, want [a]", got)
	}
}

func TestTickCommitsHeldPress(t *testing.T) {
	c, clock := newTestController()

	c.Handle(PointerDown, folderRef("a"))
	if c.Tick() {
		t.Fatal("tick before the delay must not change mode")
	}

	// The press is still held; no further events arrive.
	clock.advance(LongPressDelay)
	if !c.Tick() {
		t.Fatal("elapsed tick did not report a change")
	}
	if c.Mode() != Selecting {
		t.Fatal("elapsed tick did not enter selecting mode")
	}
	if got := c.Selected(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("selected = %v, want [a]", got)
	}

	if c.Tick() {
		t.Error("idempotent tick reported another change")
	}
}

func TestEarlyReleaseCancelsLongPress(t *testing.T) {
	c, clock := newTestController()

	c.Handle(PointerDown, folderRef("a"))
	clock.advance(LongPressDelay / 2)
	c.Handle(PointerUp, folderRef("a"))
	clock.advance(LongPressDelay)
	c.Handle(Click, folderRef("a"))

	if c.Mode() != Idle || len(c.Selected()) != 0 {
		t.Errorf("mode = %v selected = %v, want idle and empty", c.Mode(), c.Selected())
	}
}

func TestPointerMoveCancelsLongPress(t *testing.T) {
	c, clock := newTestController()

	c.Handle(PointerDown, folderRef("a"))
	clock.advance(LongPressDelay / 4)
	c.Handle(PointerMove, folderRef("a"))
	clock.advance(LongPressDelay)
	c.Handle(PointerUp, folderRef("a"))

	if c.Mode() != Idle {
		t.Error("moved press still entered selecting mode")
	}
}

func enterSelecting(t *testing.T, c *Controller, clock *fakeClock, first NodeRef) {
	t.Helper()
	c.Handle(PointerDown, first)
	clock.advance(c.Delay)
	c.Handle(PointerUp, first)
	if c.Mode() != Selecting {
		t.Fatal("failed to enter selecting mode")
	}
}

func TestClickTogglesMembership(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, folderRef("a"))

	c.Handle(Click, mediaRef("m1", "f1"))
	if got := c.Selected(); len(got) != 2 {
		t.Fatalf("selected = %v, want 2 entries", got)
	}

	c.Handle(Click, mediaRef("m1", "f1"))
	if got := c.Selected(); len(got) != 1 {
		t.Fatalf("selected = %v, want 1 entry", got)
	}

	// Removing the last node leaves selecting mode entirely.
	c.Handle(Click, folderRef("a"))
	if c.Mode() != Idle || len(c.Selected()) != 0 {
		t.Errorf("mode = %v selected = %v, want idle and empty", c.Mode(), c.Selected())
	}

	// Clicks while idle never select.
	c.Handle(Click, folderRef("a"))
	if len(c.Selected()) != 0 {
		t.Error("idle click selected a node")
	}
}

func TestDragOverTracksCandidate(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, folderRef("a"))

	c.Handle(DragStart, folderRef("a"))
	c.Handle(DragOver, folderRef("dest"))
	if got := c.DropCandidate(); got == nil || got.ID != "dest" {
		t.Errorf("candidate = %v, want dest", got)
	}

	c.Handle(DragOver, NodeRef{Kind: KindBreadcrumb, ID: "root"})
	if got := c.DropCandidate(); got == nil || got.ID != "root" {
		t.Errorf("candidate = %v, want root breadcrumb", got)
	}
}

func TestDropProducesBatchMove(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, folderRef("a"))
	c.Handle(Click, mediaRef("m1", "f1"))

	c.Handle(DragStart, folderRef("a"))
	drop := c.Handle(DragDrop, folderRef("dest"))
	if drop == nil {
		t.Fatal("drop on a valid target returned nothing")
	}
	if drop.DestID != "dest" || len(drop.Targets) != 2 {
		t.Errorf("drop = %+v", drop)
	}
	if drop.Targets[0].Kind != "folder" || drop.Targets[0].ID != "a" {
		t.Errorf("targets[0] = %+v", drop.Targets[0])
	}
	if drop.Targets[1].Kind != "media" || drop.Targets[1].FolderID != "f1" {
		t.Errorf("targets[1] = %+v", drop.Targets[1])
	}

	// Selection is consumed by the drop.
	if c.Mode() != Idle || len(c.Selected()) != 0 {
		t.Error("selection not cleared after drop")
	}
}

func TestDropOntoCurrentLocationIsNoop(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, mediaRef("m1", "f1"))

	// Dropping media back onto the folder it is already in moves nothing.
	if drop := c.Handle(DragDrop, folderRef("f1")); drop != nil {
		t.Errorf("drop = %+v, want nil", drop)
	}

	enterSelecting(t, c, clock, folderRef("a"))
	if drop := c.Handle(DragDrop, folderRef("a")); drop != nil {
		t.Errorf("self drop = %+v, want nil", drop)
	}
}

func TestDropWithoutSelectionIsIgnored(t *testing.T) {
	c, _ := newTestController()
	if drop := c.Handle(DragDrop, folderRef("dest")); drop != nil {
		t.Errorf("drop = %+v, want nil", drop)
	}
}

func TestCancelResets(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, folderRef("a"))

	c.Handle(Cancel, folderRef("a"))
	if c.Mode() != Idle || len(c.Selected()) != 0 {
		t.Error("cancel did not reset the controller")
	}
}

func TestMediaTargetsDoNotAcceptDrops(t *testing.T) {
	c, clock := newTestController()
	enterSelecting(t, c, clock, folderRef("a"))

	if drop := c.Handle(DragDrop, mediaRef("m1", "f1")); drop != nil {
		t.Errorf("drop onto media = %+v, want nil", drop)
	}
	if c.Mode() != Selecting {
		t.Error("invalid drop target cleared the selection")
	}
}
