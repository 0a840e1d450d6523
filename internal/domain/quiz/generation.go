package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Generation is one batch of multiple-choice questions produced from user content.
type Generation struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	InputType          string `gorm:"column:input_type;not null;index" json:"input_type"`
	ContentType        string `gorm:"column:content_type;not null;index" json:"content_type"`
	Difficulty         string `gorm:"column:difficulty;not null;index" json:"difficulty"`
	NumQuestions       int    `gorm:"column:num_questions;not null" json:"num_questions"`
	IncludeExplanation bool   `gorm:"column:include_explanation;not null" json:"include_explanation"`
	Category           string `gorm:"column:category;index" json:"category,omitempty"`

	SourceContent  string `gorm:"column:source_content;type:text" json:"-"`
	SourceURL      string `gorm:"column:source_url" json:"source_url,omitempty"`
	SourceFilename string `gorm:"column:source_filename" json:"source_filename,omitempty"`

	ModelName             string  `gorm:"column:model_name" json:"model_name"`
	GenerationTimeSeconds float64 `gorm:"column:generation_time_seconds" json:"generation_time_seconds"`

	ViewCount  int `gorm:"column:view_count;not null;default:0" json:"view_count"`
	ShareCount int `gorm:"column:share_count;not null;default:0" json:"share_count"`
	SaveCount  int `gorm:"column:save_count;not null;default:0" json:"save_count"`

	IPAddress string `gorm:"column:ip_address" json:"-"`
	UserAgent string `gorm:"column:user_agent" json:"-"`

	Questions []Question `gorm:"foreignKey:GenerationID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Generation) TableName() string { return "mcq_generation" }

func (g *Generation) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Question is a single stored question with its running answer statistics.
type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GenerationID uuid.UUID `gorm:"type:uuid;not null;index" json:"generation_id"`
	Number       int       `gorm:"column:question_number;not null" json:"question_number"`

	Text          string `gorm:"column:question_text;type:text;not null" json:"question"`
	OptionA       string `gorm:"column:option_a;type:text;not null" json:"option_a"`
	OptionB       string `gorm:"column:option_b;type:text;not null" json:"option_b"`
	OptionC       string `gorm:"column:option_c;type:text;not null" json:"option_c"`
	OptionD       string `gorm:"column:option_d;type:text;not null" json:"option_d"`
	CorrectAnswer string `gorm:"column:correct_answer;size:1;not null" json:"correct_answer"`
	Explanation   string `gorm:"column:explanation;type:text" json:"explanation,omitempty"`

	TimesAttempted      int      `gorm:"column:times_attempted;not null;default:0" json:"times_attempted"`
	TimesCorrect        int      `gorm:"column:times_correct;not null;default:0" json:"times_correct"`
	TimesWrong          int      `gorm:"column:times_wrong;not null;default:0" json:"times_wrong"`
	AverageTimeToAnswer *float64 `gorm:"column:average_time_to_answer" json:"average_time_to_answer,omitempty"`

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (Question) TableName() string { return "mcq_question" }

func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// RecordAnswer folds one answer into the question's counters. A positive
// duration updates the running mean answer time.
func (q *Question) RecordAnswer(correct bool, seconds float64) {
	q.TimesAttempted++
	if correct {
		q.TimesCorrect++
	} else {
		q.TimesWrong++
	}
	if seconds <= 0 {
		return
	}
	if q.AverageTimeToAnswer == nil || *q.AverageTimeToAnswer == 0 {
		avg := seconds
		q.AverageTimeToAnswer = &avg
		return
	}
	avg := (*q.AverageTimeToAnswer*float64(q.TimesAttempted-1) + seconds) / float64(q.TimesAttempted)
	q.AverageTimeToAnswer = &avg
}
