package scraper

import (
	"context"

	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/models"
)

// Outcome is the result of recording one post
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// RecordTally counts recording outcomes for one creator
type RecordTally struct {
	Inserted   int
	Duplicates int
	Failed     int
}

func (t *RecordTally) add(o Outcome) {
	switch o {
	case OutcomeInserted:
		t.Inserted++
	case OutcomeDuplicate:
		t.Duplicates++
	default:
		t.Failed++
	}
}

// Recorder stores discovered posts. Duplicates are expected on every
// rescan and never change an existing row.
type Recorder struct {
	store  RecordStore
	logger logger.Logger
}

// NewRecorder creates a recorder
func NewRecorder(store RecordStore, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Recorder{store: store, logger: log}
}

// Record inserts rec as pending and classifies the result
func (r *Recorder) Record(ctx context.Context, rec *models.MediaRecord) Outcome {
	err := r.store.Insert(ctx, rec)
	switch {
	case err == nil:
		return OutcomeInserted
	case errs.Is(err, errs.ErrorTypeDuplicateRecord):
		r.logger.DebugWithFields("Post already recorded", map[string]interface{}{
			"post_id":  rec.PostID,
			"nickname": rec.Nickname,
		})
		return OutcomeDuplicate
	default:
		r.logger.WithError(err).ErrorWithFields("Failed to record post", map[string]interface{}{
			"post_id":  rec.PostID,
			"nickname": rec.Nickname,
		})
		return OutcomeFailed
	}
}
