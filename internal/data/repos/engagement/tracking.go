package engagement

import (
	"context"
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *types.UserEvent) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "UserEventRepo")}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, e *types.UserEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(e).Error
}

type BrowserSessionRepo interface {
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.BrowserSession, error)
	Create(ctx context.Context, tx *gorm.DB, s *types.BrowserSession) error
	UpdateProgress(ctx context.Context, tx *gorm.DB, s *types.BrowserSession) error
}

type browserSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrowserSessionRepo(db *gorm.DB, baseLog *logger.Logger) BrowserSessionRepo {
	return &browserSessionRepo{db: db, log: baseLog.With("repo", "BrowserSessionRepo")}
}

// GetBySessionID returns nil without error when the session is unknown.
func (r *browserSessionRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.BrowserSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.BrowserSession
	err := transaction.WithContext(ctx).Where("session_id = ?", sessionID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *browserSessionRepo) Create(ctx context.Context, tx *gorm.DB, s *types.BrowserSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(s).Error
}

func (r *browserSessionRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, s *types.BrowserSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BrowserSession{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"ended_at":         s.EndedAt,
			"duration_seconds": s.DurationSeconds,
			"is_active":        s.IsActive,
			"pages_viewed":     s.PagesViewed,
			"mcqs_generated":   s.MCQsGenerated,
			"quizzes_taken":    s.QuizzesTaken,
			"memes_generated":  s.MemesGenerated,
		}).Error
}
