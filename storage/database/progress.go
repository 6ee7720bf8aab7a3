package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core/progress"
)

type progressRow struct {
	ID            string    `db:"id"`
	LearnerID     string    `db:"learner_id"`
	ContentItemID string    `db:"content_item_id"`
	Completed     bool      `db:"completed"`
	Percent       int       `db:"percent"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

// UpsertRecord inserts or updates the single record of a (learner, item)
// pair; the unique constraint on that pair does the heavy lifting.
func (repo *progressRepository) UpsertRecord(rec progress.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	row := progressRow{
		ID:            rec.ID,
		LearnerID:     rec.LearnerID,
		ContentItemID: rec.ContentItemID,
		Completed:     rec.Completed,
		Percent:       rec.Percent,
		UpdatedAt:     rec.UpdatedAt,
	}
	_, err := repo.db.NamedExec(`
		INSERT INTO user_progress (id, learner_id, content_item_id, completed, percent, updated_at)
		VALUES (:id, :learner_id, :content_item_id, :completed, :percent, :updated_at)
		ON CONFLICT (learner_id, content_item_id)
		DO UPDATE SET completed = EXCLUDED.completed, percent = EXCLUDED.percent, updated_at = EXCLUDED.updated_at`,
		row,
	)
	if err != nil {
		return errors.Wrap(err, "upserting progress record")
	}
	return nil
}

func (repo *progressRepository) QueryRecords(learnerID string, itemIDs []string) ([]progress.Record, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT * FROM user_progress WHERE learner_id = ? AND content_item_id IN (?) ORDER BY updated_at`,
		learnerID, itemIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building progress query")
	}
	var rows []progressRow
	if err = repo.db.Select(&rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying progress records")
	}

	recs := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, progress.Record{
			ID:            row.ID,
			LearnerID:     row.LearnerID,
			ContentItemID: row.ContentItemID,
			Completed:     row.Completed,
			Percent:       row.Percent,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return recs, nil
}
