package course

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

// ContentType is the closed set of content item kinds.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentImage ContentType = "image"
	ContentPDF   ContentType = "pdf"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentVideo, ContentImage, ContentPDF:
		return true
	}
	return false
}

type ContentItem struct {
	ID        string      `json:"id"`
	SectionID string      `json:"section_id"`
	Title     string      `json:"title"`
	Type      ContentType `json:"type"`
	Payload   string      `json:"payload"`
	Order     int         `json:"order"`
}

type Section struct {
	ID       string        `json:"id"`
	CourseID string        `json:"course_id"`
	Title    string        `json:"title"`
	Order    int           `json:"order"`
	Items    []ContentItem `json:"items"`
}

// Outline is the ordered section/item structure of a course, treated as an
// immutable snapshot for the duration of a navigation session.
type Outline struct {
	CourseID string    `json:"course_id"`
	Sections []Section `json:"sections"`
}

// Repository loads course outlines from the data store.
type Repository interface {
	GetOutline(courseID string) (Outline, error)
}

// Normalize sorts sections and their items by their order values, which are
// unique within their parent and define traversal order.
func (o *Outline) Normalize() {
	sort.SliceStable(o.Sections, func(i, j int) bool { return o.Sections[i].Order < o.Sections[j].Order })
	for si := range o.Sections {
		items := o.Sections[si].Items
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	}
}

func (o Outline) TotalItems() int {
	var n int
	for _, sec := range o.Sections {
		n += len(sec.Items)
	}
	return n
}

// FlatPosition maps a (section, item) index pair onto the zero-based position
// in the linear sequence obtained by concatenating all sections' item lists in
// order. Every traversal operation goes through this one mapping.
func (o Outline) FlatPosition(sectionIdx, itemIdx int) int {
	pos := itemIdx
	for si := 0; si < sectionIdx && si < len(o.Sections); si++ {
		pos += len(o.Sections[si].Items)
	}
	return pos
}

// Locate is the inverse of FlatPosition.
func (o Outline) Locate(flat int) (sectionIdx, itemIdx int, ok bool) {
	if flat < 0 {
		return 0, 0, false
	}
	for si, sec := range o.Sections {
		if flat < len(sec.Items) {
			return si, flat, true
		}
		flat -= len(sec.Items)
	}
	return 0, 0, false
}

// Find returns the index pair of an item addressed by section and item ID.
func (o Outline) Find(sectionID, itemID string) (sectionIdx, itemIdx int, ok bool) {
	for si, sec := range o.Sections {
		if sec.ID != sectionID {
			continue
		}
		for ii, item := range sec.Items {
			if item.ID == itemID {
				return si, ii, true
			}
		}
	}
	return 0, 0, false
}

func (o Outline) ItemAt(sectionIdx, itemIdx int) (ContentItem, bool) {
	if sectionIdx < 0 || sectionIdx >= len(o.Sections) {
		return ContentItem{}, false
	}
	items := o.Sections[sectionIdx].Items
	if itemIdx < 0 || itemIdx >= len(items) {
		return ContentItem{}, false
	}
	return items[itemIdx], true
}
