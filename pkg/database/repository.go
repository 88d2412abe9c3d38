package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "dyscraper/pkg/errors"
	"dyscraper/pkg/models"
)

// Repository reads and writes media_posts
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on an open connection
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert records a new post as pending. A post that already exists is
// reported as a duplicate record error and left untouched.
func (r *Repository) Insert(ctx context.Context, rec *models.MediaRecord) error {
	rec.Status = models.StatusPending
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "post_id"}}, DoNothing: true}).
		Create(rec)
	if res.Error == nil && res.RowsAffected == 0 {
		return errs.New(errs.ErrorTypeDuplicateRecord, fmt.Sprintf("post %s already recorded", rec.PostID))
	}
	if res.Error == nil {
		return nil
	}
	if isDuplicate(res.Error) {
		return errs.Wrap(errs.ErrorTypeDuplicateRecord, fmt.Sprintf("post %s already recorded", rec.PostID), res.Error)
	}
	return errs.Wrap(errs.ErrorTypePersistence, fmt.Sprintf("failed to insert post %s", rec.PostID), res.Error)
}

// isDuplicate recognises unique violations that slip past the conflict
// clause, translated or not
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// LoadPending returns every pending post of a creator
func (r *Repository) LoadPending(ctx context.Context, nickname string) ([]models.WorkItem, error) {
	var items []models.WorkItem
	err := r.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Select("description", "source_url", "nickname", "post_id").
		Where("status = ? AND nickname = ?", models.StatusPending, nickname).
		Order("id").
		Scan(&items).Error
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePersistence, "failed to load pending posts", err)
	}
	return items, nil
}

// MarkDone moves a post from pending to done. It reports whether a row
// changed; a post that is already done or unknown is left alone.
func (r *Repository) MarkDone(ctx context.Context, postID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Where("post_id = ? AND status = ?", postID, models.StatusPending).
		Update("status", models.StatusDone)
	if res.Error != nil {
		return false, errs.Wrap(errs.ErrorTypePersistence, fmt.Sprintf("failed to mark post %s done", postID), res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Get returns one post by its id
func (r *Repository) Get(ctx context.Context, postID string) (*models.MediaRecord, error) {
	var rec models.MediaRecord
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrorTypeNotFound, fmt.Sprintf("post %s not recorded", postID), err)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypePersistence, "failed to load post", err)
	}
	return &rec, nil
}

// Count returns how many posts of a creator have the given status
func (r *Repository) Count(ctx context.Context, nickname string, status models.Status) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Where("nickname = ? AND status = ?", nickname, status).
		Count(&n).Error
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypePersistence, "failed to count posts", err)
	}
	return n, nil
}
