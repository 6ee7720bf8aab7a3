package dummydb

import (
	"github.com/google/uuid"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func key(learnerID, itemID string) string { return learnerID + "|" + itemID }

func (repo *progressRepository) UpsertRecord(rec progress.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	k := key(rec.LearnerID, rec.ContentItemID)
	if orig, ok := repo.db.table[k]; ok {
		rec.ID = orig.ID
	} else if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.table[k] = &rec
	return nil
}

func (repo *progressRepository) QueryRecords(learnerID string, itemIDs []string) ([]progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []progress.Record
	for _, itemID := range itemIDs {
		if rec, ok := repo.db.table[key(learnerID, itemID)]; ok {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}
