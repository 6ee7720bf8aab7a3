package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
)

var (
	// errors
	ErrPersistence = errors.New("progress could not be saved")
)

// Repository stores progress records keyed by (learner, content item).
type Repository interface {
	UpsertRecord(rec Record) error
	QueryRecords(learnerID string, itemIDs []string) ([]Record, error)
}

type ServiceInterface interface {
	Mark(learnerID, itemID string, percent int, completed bool) error
	Aggregate(learnerID string, itemIDs []string) (Aggregate, error)
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	repo   Repository
	logger core.Logger
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Mark upserts a learner's record for an item. Percent is clamped to [0, 100]
// and forced to 100 when the item is completed. The write is retried once
// before failing.
func (svc *Service) Mark(learnerID, itemID string, percent int, completed bool) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if completed {
		percent = 100
	}
	rec := Record{
		LearnerID:     learnerID,
		ContentItemID: itemID,
		Completed:     completed,
		Percent:       percent,
		UpdatedAt:     time.Now(),
	}

	err := svc.repo.UpsertRecord(rec)
	if err != nil {
		// transient store hiccups are common enough to warrant one retry
		if err = svc.repo.UpsertRecord(rec); err != nil {
			return errors.Wrapf(ErrPersistence, "upserting record for item %s: %v", itemID, err)
		}
	}
	return nil
}

// Aggregate computes a learner's standing from their existing records for a
// set of items, typically the items of one course outline. Only recorded items
// participate: overall is the rounded mean of the recorded percents and
// remaining counts records not yet completed. No records yields the zero value.
func (svc *Service) Aggregate(learnerID string, itemIDs []string) (Aggregate, error) {
	if len(itemIDs) == 0 {
		return Aggregate{}, nil
	}
	recs, err := svc.repo.QueryRecords(learnerID, itemIDs)
	if err != nil {
		return Aggregate{}, errors.Wrap(err, "querying progress records")
	}
	if len(recs) == 0 {
		return Aggregate{}, nil
	}

	var agg Aggregate
	var sum int
	for _, rec := range recs {
		sum += rec.Percent
		if rec.Completed {
			agg.CompletedCount++
		}
	}
	agg.RemainingCount = len(recs) - agg.CompletedCount
	agg.OverallPercent = int(math.Round(float64(sum) / float64(len(recs))))
	return agg, nil
}

// Sink adapts the service to the navigator's fire-and-forget contract:
// navigation never blocks on, or fails because of, progress persistence.
type Sink struct {
	svc    ServiceInterface
	logger core.Logger
}

func NewSink(svc ServiceInterface, logger core.Logger) *Sink {
	return &Sink{svc: svc, logger: logger}
}

func (s *Sink) MarkVisited(learnerID, itemID string, percent int, completed bool) {
	go func() {
		if err := s.svc.Mark(learnerID, itemID, percent, completed); err != nil {
			s.logger.Warn(fmt.Sprintf("recording progress for learner %s item %s: %v", learnerID, itemID, err), err)
		}
	}()
}
