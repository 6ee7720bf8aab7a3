package course

import (
	"reflect"
	"testing"
)

type visit struct {
	learnerID string
	itemID    string
	percent   int
	completed bool
}

type recordSink struct {
	visits []visit
}

func (s *recordSink) MarkVisited(learnerID, itemID string, percent int, completed bool) {
	s.visits = append(s.visits, visit{learnerID, itemID, percent, completed})
}

func twoSectionOutline() Outline {
	return Outline{
		CourseID: "c1",
		Sections: []Section{
			{ID: "s1", CourseID: "c1", Title: "Basics", Order: 1, Items: []ContentItem{
				{ID: "i1", SectionID: "s1", Title: "Intro", Type: ContentText, Order: 1},
				{ID: "i2", SectionID: "s1", Title: "Video", Type: ContentVideo, Order: 2},
				{ID: "i3", SectionID: "s1", Title: "Slides", Type: ContentPDF, Order: 3},
			}},
			{ID: "s2", CourseID: "c1", Title: "Practice", Order: 2, Items: []ContentItem{
				{ID: "i4", SectionID: "s2", Title: "Diagram", Type: ContentImage, Order: 1},
				{ID: "i5", SectionID: "s2", Title: "Summary", Type: ContentText, Order: 2},
			}},
		},
	}
}

func TestNavigator_linearTraversal(t *testing.T) {
	nav := NewNavigator(twoSectionOutline(), "lrn1", nil)

	if got := nav.FlatPosition(); got != 0 {
		t.Fatalf("initial FlatPosition() = %d; want 0", got)
	}
	if got := nav.PercentComplete(); got != 20 {
		t.Errorf("initial PercentComplete() = %d; want 20", got)
	}

	wantPercents := []int{40, 60, 80, 100}
	for step, want := range wantPercents {
		before := nav.FlatPosition()
		if !nav.Next() {
			t.Fatalf("Next() #%d = false; want true", step+1)
		}
		if got := nav.FlatPosition(); got != before+1 {
			t.Errorf("FlatPosition() after Next() #%d = %d; want %d", step+1, got, before+1)
		}
		if got := nav.PercentComplete(); got != want {
			t.Errorf("PercentComplete() after Next() #%d = %d; want %d", step+1, got, want)
		}
	}

	// four advances through a 3+2 outline land on the last item
	if got := nav.FlatPosition(); got != 4 {
		t.Errorf("FlatPosition() at end = %d; want 4", got)
	}
	cur, ok := nav.Current()
	if !ok || cur.ID != "i5" {
		t.Errorf("Current() = %+v; want i5", cur)
	}
	if nav.HasNext() {
		t.Error("HasNext() = true at last item; want false")
	}
	if nav.Next() {
		t.Error("Next() = true at last item; want no-op")
	}
	if got := nav.FlatPosition(); got != 4 {
		t.Errorf("FlatPosition() after no-op Next() = %d; want 4", got)
	}
}

func TestNavigator_previousInverse(t *testing.T) {
	nav := NewNavigator(twoSectionOutline(), "lrn1", nil)

	for i := 0; i < 3; i++ {
		nav.Next()
	}
	pos := nav.FlatPosition()

	if !nav.Next() || !nav.Previous() {
		t.Fatal("Next() then Previous() failed mid-outline")
	}
	if got := nav.FlatPosition(); got != pos {
		t.Errorf("FlatPosition() after Next+Previous = %d; want %d", got, pos)
	}

	for nav.HasPrevious() {
		if !nav.Previous() {
			t.Fatal("Previous() = false with HasPrevious() = true")
		}
	}
	if got := nav.FlatPosition(); got != 0 {
		t.Errorf("FlatPosition() after rewinding = %d; want 0", got)
	}
	if nav.Previous() {
		t.Error("Previous() = true at first item; want no-op")
	}
}

func TestNavigator_jumpEquivalence(t *testing.T) {
	// jumping must land exactly where the equivalent run of single steps does
	stepped := NewNavigator(twoSectionOutline(), "lrn1", nil)
	for i := 0; i < 3; i++ {
		stepped.Next()
	}

	jumped := NewNavigator(twoSectionOutline(), "lrn1", nil)
	if !jumped.JumpTo("s2", "i4") {
		t.Fatal("JumpTo(s2, i4) = false; want true")
	}

	if sf, jf := stepped.FlatPosition(), jumped.FlatPosition(); sf != jf {
		t.Errorf("FlatPosition() stepped = %d, jumped = %d; want equal", sf, jf)
	}
	if sp, jp := stepped.PercentComplete(), jumped.PercentComplete(); sp != jp {
		t.Errorf("PercentComplete() stepped = %d, jumped = %d; want equal", sp, jp)
	}

	if jumped.JumpTo("s9", "i1") {
		t.Error("JumpTo() with unknown section = true; want no-op")
	}
	if got := jumped.FlatPosition(); got != 3 {
		t.Errorf("FlatPosition() after failed jump = %d; want 3", got)
	}
}

func TestNavigator_clampsOutOfRange(t *testing.T) {
	nav := NewNavigator(twoSectionOutline(), "lrn1", nil)

	if !nav.JumpToPosition(99) {
		t.Fatal("JumpToPosition(99) = false; want clamp to last item")
	}
	if got := nav.FlatPosition(); got != 4 {
		t.Errorf("FlatPosition() = %d; want 4 (clamped)", got)
	}
	if !nav.JumpToPosition(-7) {
		t.Fatal("JumpToPosition(-7) = false; want clamp to first item")
	}
	if got := nav.FlatPosition(); got != 0 {
		t.Errorf("FlatPosition() = %d; want 0 (clamped)", got)
	}
}

func TestNavigator_emptyOutline(t *testing.T) {
	nav := NewNavigator(Outline{CourseID: "c0"}, "lrn1", nil)

	if nav.HasContent() {
		t.Error("HasContent() = true on empty outline")
	}
	if _, ok := nav.Current(); ok {
		t.Error("Current() ok = true on empty outline")
	}
	if got := nav.PercentComplete(); got != 0 {
		t.Errorf("PercentComplete() = %d; want 0", got)
	}
	if nav.Next() || nav.Previous() || nav.JumpToPosition(0) {
		t.Error("traversal on empty outline moved; want no-ops")
	}
}

func TestNavigator_skipsEmptySections(t *testing.T) {
	outline := Outline{
		CourseID: "c2",
		Sections: []Section{
			{ID: "s0", CourseID: "c2", Title: "Placeholder", Order: 1},
			{ID: "s1", CourseID: "c2", Title: "Content", Order: 2, Items: []ContentItem{
				{ID: "i1", SectionID: "s1", Type: ContentText, Order: 1},
			}},
			{ID: "s2", CourseID: "c2", Title: "Empty", Order: 3},
			{ID: "s3", CourseID: "c2", Title: "More", Order: 4, Items: []ContentItem{
				{ID: "i2", SectionID: "s3", Type: ContentText, Order: 1},
			}},
		},
	}
	nav := NewNavigator(outline, "lrn1", nil)

	cur, ok := nav.Current()
	if !ok || cur.ID != "i1" {
		t.Fatalf("Current() = %+v; want i1 (first non-empty section)", cur)
	}
	if !nav.Next() {
		t.Fatal("Next() across empty section = false; want true")
	}
	cur, _ = nav.Current()
	if cur.ID != "i2" {
		t.Errorf("Current() = %+v; want i2", cur)
	}
	if !nav.Previous() {
		t.Fatal("Previous() back across empty section = false; want true")
	}
	cur, _ = nav.Current()
	if cur.ID != "i1" {
		t.Errorf("Current() = %+v; want i1", cur)
	}
}

func TestNavigator_emitsVisitIntents(t *testing.T) {
	sink := &recordSink{}
	nav := NewNavigator(twoSectionOutline(), "lrn1", sink)

	nav.Next()                // leaves i1
	nav.Next()                // leaves i2
	nav.JumpTo("s2", "i5")    // leaves i3
	nav.Next()                // no-op at end, no emit
	nav.JumpToPosition(4)     // already there, no emit
	nav.JumpTo("s9", "nope")  // unknown, no emit
	nav.Previous()            // leaves i5

	want := []visit{
		{"lrn1", "i1", 100, true},
		{"lrn1", "i2", 100, true},
		{"lrn1", "i3", 100, true},
		{"lrn1", "i5", 100, true},
	}
	if !reflect.DeepEqual(sink.visits, want) {
		t.Errorf("visits = %+v; want %+v", sink.visits, want)
	}
}
