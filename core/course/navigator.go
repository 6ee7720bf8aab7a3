package course

import "math"

// ProgressSink receives the visited-item intents emitted on every successful
// transition. Implementations must not block; persistence failures must never
// surface back into navigation.
type ProgressSink interface {
	MarkVisited(learnerID, itemID string, percent int, completed bool)
}

// Navigator walks a course outline one content item at a time. It owns a
// single (section, item) cursor; flat position and completion percentage are
// derived from it on demand and never stored. A Navigator belongs to one
// learner's course view and is not safe for concurrent use.
type Navigator struct {
	outline   Outline
	learnerID string
	sink      ProgressSink

	sectionIdx int
	itemIdx    int
	total      int
}

// NewNavigator positions the cursor on the first item of the first non-empty
// section. The outline is normalized up front so traversal order matches the
// stored section and item order values.
func NewNavigator(outline Outline, learnerID string, sink ProgressSink) *Navigator {
	outline.Normalize()
	n := &Navigator{
		outline:   outline,
		learnerID: learnerID,
		sink:      sink,
		total:     outline.TotalItems(),
	}
	if si, ii, ok := outline.Locate(0); ok {
		n.sectionIdx, n.itemIdx = si, ii
	}
	return n
}

// HasContent reports whether the outline holds any items at all. On an empty
// outline every traversal operation is a no-op.
func (n *Navigator) HasContent() bool { return n.total > 0 }

func (n *Navigator) Current() (ContentItem, bool) {
	if n.total == 0 {
		return ContentItem{}, false
	}
	return n.outline.ItemAt(n.sectionIdx, n.itemIdx)
}

func (n *Navigator) Position() (sectionIdx, itemIdx int) { return n.sectionIdx, n.itemIdx }

// FlatPosition is the cursor's zero-based position in the linearized outline,
// or -1 when the outline is empty.
func (n *Navigator) FlatPosition() int {
	if n.total == 0 {
		return -1
	}
	return n.outline.FlatPosition(n.sectionIdx, n.itemIdx)
}

// PercentComplete treats the current item as reached, so the last item reads
// 100 and an empty outline reads 0.
func (n *Navigator) PercentComplete() int {
	if n.total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n.FlatPosition()+1) / float64(n.total)))
}

func (n *Navigator) HasNext() bool     { return n.total > 0 && n.FlatPosition() < n.total-1 }
func (n *Navigator) HasPrevious() bool { return n.total > 0 && n.FlatPosition() > 0 }

// Next advances the cursor one item, crossing section boundaries and skipping
// empty sections. At the last item it is a no-op and returns false.
func (n *Navigator) Next() bool {
	return n.moveTo(n.FlatPosition() + 1)
}

// Previous is the inverse of Next. At the first item it is a no-op and
// returns false.
func (n *Navigator) Previous() bool {
	return n.moveTo(n.FlatPosition() - 1)
}

// JumpTo moves the cursor straight to the item addressed by section and item
// ID. Unknown addresses leave the cursor untouched.
func (n *Navigator) JumpTo(sectionID, itemID string) bool {
	si, ii, ok := n.outline.Find(sectionID, itemID)
	if !ok {
		return false
	}
	return n.moveTo(n.outline.FlatPosition(si, ii))
}

// JumpToPosition moves the cursor to a flat position, clamping out-of-range
// requests to the nearest valid item.
func (n *Navigator) JumpToPosition(flat int) bool {
	if flat < 0 {
		flat = 0
	}
	if flat > n.total-1 {
		flat = n.total - 1
	}
	return n.moveTo(flat)
}

// moveTo is the single transition primitive: every movement resolves to a flat
// position and lands through the same index mapping, so a jump and the
// equivalent run of single steps end in the same place. The item being left
// is reported to the sink as visited.
func (n *Navigator) moveTo(flat int) bool {
	if n.total == 0 || flat < 0 || flat >= n.total {
		return false
	}
	si, ii, ok := n.outline.Locate(flat)
	if !ok || (si == n.sectionIdx && ii == n.itemIdx) {
		return false
	}

	left, _ := n.Current()
	n.sectionIdx, n.itemIdx = si, ii
	if n.sink != nil {
		n.sink.MarkVisited(n.learnerID, left.ID, 100, true)
	}
	return true
}
