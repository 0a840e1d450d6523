package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	pkgerrors "github.com/yungbote/memequiz-backend/internal/pkg/errors"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type GenerationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, gen *types.MCQGeneration) (*types.MCQGeneration, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MCQGeneration, error)
	IncrementCounter(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string) error
	// Trending ranks generations created at or after since by
	// view_count + 2*save_count + 3*share_count, newest first on ties.
	Trending(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.MCQGeneration, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.MCQGeneration, error)
	// ListRecentOwned returns the newest generations that belong to a user,
	// with their questions.
	ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.MCQGeneration, error)
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	repoLog := baseLog.With("repo", "MCQGenerationRepo")
	return &generationRepo{db: db, log: repoLog}
}

// Create inserts the generation together with its questions.
func (r *generationRepo) Create(ctx context.Context, tx *gorm.DB, gen *types.MCQGeneration) (*types.MCQGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if gen == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(gen).Error; err != nil {
		return nil, err
	}
	return gen, nil
}

func (r *generationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MCQGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var gen types.MCQGeneration
	err := transaction.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_number ASC") }).
		Where("id = ?", id).
		First(&gen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

var counterColumns = map[string]bool{"view_count": true, "share_count": true, "save_count": true}

func (r *generationRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if !counterColumns[column] {
		return pkgerrors.ErrInvalidArgument
	}
	res := transaction.WithContext(ctx).
		Model(&types.MCQGeneration{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

const trendingOrder = "view_count + save_count * 2 + share_count * 3 DESC, created_at DESC"

func (r *generationRepo) Trending(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.MCQGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MCQGeneration
	if err := transaction.WithContext(ctx).
		Where("created_at >= ?", since).
		Order(trendingOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generationRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.MCQGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MCQGeneration
	if err := transaction.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generationRepo) ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.MCQGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MCQGeneration
	if err := transaction.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_number ASC") }).
		Where("user_id IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
