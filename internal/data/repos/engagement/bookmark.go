package engagement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type BookmarkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, b *types.Bookmark) (*types.Bookmark, error)
	// Find returns nil without error when no bookmark matches.
	Find(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID, index *int) (*types.Bookmark, error)
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID) (bool, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string) ([]*types.Bookmark, error)
}

type bookmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookmarkRepo(db *gorm.DB, baseLog *logger.Logger) BookmarkRepo {
	repoLog := baseLog.With("repo", "BookmarkRepo")
	return &bookmarkRepo{db: db, log: repoLog}
}

func (r *bookmarkRepo) Create(ctx context.Context, tx *gorm.DB, b *types.Bookmark) (*types.Bookmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookmarkRepo) Find(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID, index *int) (*types.Bookmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID)
	if index != nil {
		q = q.Where("content_index = ?", *index)
	} else {
		q = q.Where("content_index IS NULL")
	}
	var b types.Bookmark
	err := q.First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Exists matches the content itself or any item inside it.
func (r *bookmarkRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Bookmark{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *bookmarkRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.Bookmark{}).Error
}

// ListByUser returns newest first; an empty contentType matches every type.
func (r *bookmarkRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string) ([]*types.Bookmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if contentType != "" {
		q = q.Where("content_type = ?", contentType)
	}
	var results []*types.Bookmark
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
