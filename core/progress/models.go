package progress

import "time"

// Record is one learner's progress against one content item. A learner/item
// pair has at most one record; repeat visits update it in place.
type Record struct {
	ID            string    `json:"id"`
	LearnerID     string    `json:"learner_id"`
	ContentItemID string    `json:"content_item_id"`
	Completed     bool      `json:"completed"`
	Percent       int       `json:"percent"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Aggregate summarizes a learner's standing across the records of one course.
type Aggregate struct {
	OverallPercent int `json:"overall_percent"`
	CompletedCount int `json:"completed_count"`
	RemainingCount int `json:"remaining_count"`
}
