package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Session struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	GenerationID *uuid.UUID `gorm:"type:uuid;index" json:"mcq_generation_id,omitempty"`

	TotalQuestions    int      `gorm:"column:total_questions;not null" json:"total_questions"`
	QuestionsAnswered int      `gorm:"column:questions_answered;not null;default:0" json:"questions_answered"`
	CorrectAnswers    int      `gorm:"column:correct_answers;not null;default:0" json:"correct_answers"`
	WrongAnswers      int      `gorm:"column:wrong_answers;not null;default:0" json:"wrong_answers"`
	ScorePercentage   *float64 `gorm:"column:score_percentage" json:"score_percentage,omitempty"`

	StartedAt        time.Time  `gorm:"column:started_at;not null;index" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TimeTakenSeconds *float64   `gorm:"column:time_taken_seconds" json:"time_taken_seconds,omitempty"`
	IsCompleted      bool       `gorm:"column:is_completed;not null;default:false;index" json:"is_completed"`

	ContentType string `gorm:"column:content_type;index" json:"content_type,omitempty"`
	Difficulty  string `gorm:"column:difficulty;index" json:"difficulty,omitempty"`
	InputType   string `gorm:"column:input_type" json:"input_type,omitempty"`
	DeviceType  string `gorm:"column:device_type" json:"device_type,omitempty"`
	IPAddress   string `gorm:"column:ip_address" json:"-"`
	UserAgent   string `gorm:"column:user_agent" json:"-"`

	Answers []Answer `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Session) TableName() string { return "quiz_session" }

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Answer struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_session_id"`
	QuestionID       uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	UserAnswer       string    `gorm:"column:user_answer;size:1;not null" json:"user_answer"`
	IsCorrect        bool      `gorm:"column:is_correct;not null;index" json:"is_correct"`
	TimeSpentSeconds *float64  `gorm:"column:time_spent_seconds" json:"time_spent_seconds,omitempty"`
	AnsweredAt       time.Time `gorm:"column:answered_at;not null;autoCreateTime;index" json:"answered_at"`
}

func (Answer) TableName() string { return "quiz_answer" }

func (a *Answer) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
