package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/course"
)

type sectionRow struct {
	ID       string `db:"id"`
	CourseID string `db:"course_id"`
	Title    string `db:"title"`
	Ord      int    `db:"ord"`
}

type contentRow struct {
	ID        string `db:"id"`
	SectionID string `db:"section_id"`
	Title     string `db:"title"`
	Type      string `db:"type"`
	Payload   string `db:"payload"`
	Ord       int    `db:"ord"`
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

// GetOutline loads the full section/item structure of a course in two queries.
func (repo *courseRepository) GetOutline(courseID string) (course.Outline, error) {
	var secRows []sectionRow
	err := repo.db.Select(&secRows, `SELECT * FROM course_section WHERE course_id = $1 ORDER BY ord`, courseID)
	if err != nil {
		return course.Outline{}, errors.Wrap(err, "querying sections")
	}
	if len(secRows) == 0 {
		return course.Outline{}, course.ErrNotFound
	}

	secIDs := make([]string, 0, len(secRows))
	for _, row := range secRows {
		secIDs = append(secIDs, row.ID)
	}
	query, args, err := sqlx.In(`SELECT * FROM course_content WHERE section_id IN (?) ORDER BY ord`, secIDs)
	if err != nil {
		return course.Outline{}, errors.Wrap(err, "building content query")
	}
	var itemRows []contentRow
	if err = repo.db.Select(&itemRows, repo.db.Rebind(query), args...); err != nil {
		return course.Outline{}, errors.Wrap(err, "querying content items")
	}

	itemsBySec := make(map[string][]course.ContentItem, len(secRows))
	for _, row := range itemRows {
		itemsBySec[row.SectionID] = append(itemsBySec[row.SectionID], course.ContentItem{
			ID:        row.ID,
			SectionID: row.SectionID,
			Title:     row.Title,
			Type:      course.ContentType(row.Type),
			Payload:   row.Payload,
			Order:     row.Ord,
		})
	}

	outline := course.Outline{CourseID: courseID, Sections: make([]course.Section, 0, len(secRows))}
	for _, row := range secRows {
		outline.Sections = append(outline.Sections, course.Section{
			ID:       row.ID,
			CourseID: row.CourseID,
			Title:    row.Title,
			Order:    row.Ord,
			Items:    itemsBySec[row.ID],
		})
	}
	return outline, nil
}
