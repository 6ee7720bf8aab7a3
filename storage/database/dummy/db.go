package dummydb

import (
	"sync"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/course"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/profile"
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
)

type (
	DB struct {
		profile  *profileTable
		course   *courseTable
		progress *progressTable
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Profile
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Outline // keyed by course ID
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Record // keyed learnerID|itemID
	}
)

func Open() (*DB, error) {
	db := &DB{
		profile:  &profileTable{table: make(map[string]*profile.Profile)},
		course:   &courseTable{table: make(map[string]*course.Outline)},
		progress: &progressTable{table: make(map[string]*progress.Record)},
	}
	return db, nil
}
