package meme

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
	Create(ctx context.Context, tx *gorm.DB, gen *types.MemeGeneration) (*types.MemeGeneration, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MemeGeneration, error)
	// IncrementCounter bumps view_count, share_count or save_count by one.
	IncrementCounter(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string) error
	Trending(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.MemeGeneration, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.MemeGeneration, error)
	ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.MemeGeneration, error)
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	repoLog := baseLog.With("repo", "MemeGenerationRepo")
	return &generationRepo{db: db, log: repoLog}
}

func (r *generationRepo) Create(ctx context.Context, tx *gorm.DB, gen *types.MemeGeneration) (*types.MemeGeneration, error) {
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

func (r *generationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MemeGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var gen types.MemeGeneration
	err := transaction.WithContext(ctx).
		Preload("Memes").
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

const trendingOrder = "view_count + save_count * 2 + share_count * 3 DESC, created_at DESC"

func (r *generationRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, id uuid.UUID, column string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if !counterColumns[column] {
		return pkgerrors.ErrInvalidArgument
	}
	res := transaction.WithContext(ctx).
		Model(&types.MemeGeneration{}).
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

func (r *generationRepo) Trending(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*types.MemeGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MemeGeneration
	if err := transaction.WithContext(ctx).
		Where("created_at >= ?", since).
		Order(trendingOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generationRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.MemeGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MemeGeneration
	if err := transaction.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListRecentOwned returns the newest user-owned generations with their memes.
func (r *generationRepo) ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.MemeGeneration, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MemeGeneration
	if err := transaction.WithContext(ctx).
		Preload("Memes").
		Where("user_id IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
