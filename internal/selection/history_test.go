package selection

import (
	"testing"

	"cutout/pkg/geometry"
)

func TestHistorySymmetry(t *testing.T) {
	// N mutations, N undos, N redos -> state equals the pre-undo polygon.
	h := NewHistory()
	var current *Polygon

	mutations := []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 5, Y: 15}}
	for _, pt := range mutations {
		h.Push(current)
		if current == nil {
			current = NewPolygon(pt)
		} else {
			current = current.Clone()
			current.Append(pt)
		}
	}

	want := current.Clone()

	n := len(mutations)
	for i := 0; i < n; i++ {
		snap, ok := h.Undo(current)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		current = snap
	}
	if current != nil {
		t.Fatalf("after full undo, polygon = %v, want nil", current)
	}

	for i := 0; i < n; i++ {
		snap, ok := h.Redo(current)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		current = snap
	}

	if !current.Equal(want) {
		t.Errorf("after %d undos + redos: %+v, want %+v", n, current, want)
	}
}

func TestUndoEmptyNoOp(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Undo(nil); ok {
		t.Error("undo on empty history should report false")
	}
	if _, ok := h.Redo(nil); ok {
		t.Error("redo on empty history should report false")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	a := NewPolygon(geometry.Point2D{X: 1, Y: 1})
	b := NewPolygon(geometry.Point2D{X: 2, Y: 2})

	h.Push(nil)      // before creating a
	h.Undo(a)
	if !h.CanRedo() {
		t.Fatal("expected redo available after undo")
	}

	h.Push(b) // a new edit invalidates the redo branch
	if h.CanRedo() {
		t.Error("push must clear the redo stack")
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	h := NewHistory()
	current := NewPolygon(geometry.Point2D{X: 1, Y: 1})

	h.Push(current)
	current.Append(geometry.Point2D{X: 9, Y: 9}) // mutate after push

	snap, _ := h.Undo(current)
	if len(snap.Points) != 1 {
		t.Errorf("snapshot shares storage with current polygon: %+v", snap)
	}
}
