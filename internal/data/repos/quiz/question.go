package quiz

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type QuestionRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MCQQuestion, error)
	SaveStats(ctx context.Context, tx *gorm.DB, questions []*types.MCQQuestion) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "MCQQuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.MCQQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.MCQQuestion
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SaveStats writes back only the answer statistics columns.
func (r *questionRepo) SaveStats(ctx context.Context, tx *gorm.DB, questions []*types.MCQQuestion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for _, q := range questions {
		if q == nil {
			continue
		}
		if err := transaction.WithContext(ctx).
			Model(&types.MCQQuestion{}).
			Where("id = ?", q.ID).
			Updates(map[string]any{
				"times_attempted":        q.TimesAttempted,
				"times_correct":          q.TimesCorrect,
				"times_wrong":            q.TimesWrong,
				"average_time_to_answer": q.AverageTimeToAnswer,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
