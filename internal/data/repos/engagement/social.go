package engagement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type LikeRepo interface {
	Find(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID) (*types.SocialLike, error)
	Create(ctx context.Context, tx *gorm.DB, like *types.SocialLike) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB, contentType string, contentID uuid.UUID) (int64, error)
	CountByContent(ctx context.Context, tx *gorm.DB, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	// LikedBy reports which of contentIDs the user has liked.
	LikedBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type likeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLikeRepo(db *gorm.DB, baseLog *logger.Logger) LikeRepo {
	return &likeRepo{db: db, log: baseLog.With("repo", "SocialLikeRepo")}
}

func (r *likeRepo) Find(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentID uuid.UUID) (*types.SocialLike, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var like types.SocialLike
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *likeRepo) Create(ctx context.Context, tx *gorm.DB, like *types.SocialLike) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(like).Error
}

func (r *likeRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.SocialLike{}).Error
}

func (r *likeRepo) Count(ctx context.Context, tx *gorm.DB, contentType string, contentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.SocialLike{}).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Count(&n).Error
	return n, err
}

func (r *likeRepo) CountByContent(ctx context.Context, tx *gorm.DB, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return countByContent(ctx, transaction.Model(&types.SocialLike{}), contentType, contentIDs)
}

func (r *likeRepo) LikedBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]bool{}
	if userID == uuid.Nil || len(contentIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.SocialLike{}).
		Where("user_id = ? AND content_type = ? AND content_id IN ?", userID, contentType, contentIDs).
		Pluck("content_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

type contentCount struct {
	ContentID uuid.UUID
	N         int64
}

// countByContent groups rows of the scoped model by content_id.
func countByContent(ctx context.Context, scoped *gorm.DB, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	if len(contentIDs) == 0 {
		return out, nil
	}
	var rows []contentCount
	if err := scoped.WithContext(ctx).
		Select("content_id, COUNT(*) AS n").
		Where("content_type = ? AND content_id IN ?", contentType, contentIDs).
		Group("content_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ContentID] = row.N
	}
	return out, nil
}

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.SocialComment) (*types.SocialComment, error)
	List(ctx context.Context, tx *gorm.DB, contentType string, contentID uuid.UUID, limit int) ([]*types.SocialComment, error)
	CountByContent(ctx context.Context, tx *gorm.DB, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "SocialCommentRepo")}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, c *types.SocialComment) (*types.SocialComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the newest comments first.
func (r *commentRepo) List(ctx context.Context, tx *gorm.DB, contentType string, contentID uuid.UUID, limit int) ([]*types.SocialComment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.SocialComment
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *commentRepo) CountByContent(ctx context.Context, tx *gorm.DB, contentType string, contentIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return countByContent(ctx, transaction.Model(&types.SocialComment{}), contentType, contentIDs)
}
