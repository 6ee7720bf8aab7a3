package dummydb

import (
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) GetOutline(courseID string) (course.Outline, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if outline, ok := repo.db.table[courseID]; ok {
		return *outline, nil
	}
	return course.Outline{}, course.ErrNotFound
}

// SetOutline seeds a course, mostly from tests and dev fixtures.
func SetOutline(db *DB, outline course.Outline) {
	db.course.Lock()
	defer db.course.Unlock()
	db.course.table[outline.CourseID] = &outline
}
