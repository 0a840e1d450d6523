package quiz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	pkgerrors "github.com/yungbote/memequiz-backend/internal/pkg/errors"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) (*types.QuizSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizSession, error)
	// ListRecentOwned returns the latest sessions started by signed-in users.
	ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.QuizSession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	repoLog := baseLog.With("repo", "QuizSessionRepo")
	return &sessionRepo{db: db, log: repoLog}
}

// Create inserts the session and its answers.
func (r *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.QuizSession) (*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if session == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var session types.QuizSession
	err := transaction.WithContext(ctx).
		Preload("Answers").
		Where("id = ?", id).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListRecentOwned(ctx context.Context, tx *gorm.DB, limit int) ([]*types.QuizSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.QuizSession
	if err := transaction.WithContext(ctx).
		Preload("Answers").
		Where("user_id IS NOT NULL").
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
