package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event is a single client-reported interaction.
type Event struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID string     `gorm:"column:session_id;index" json:"session_id,omitempty"`

	EventType     string   `gorm:"column:event_type;not null;index" json:"event_type"`
	EventCategory string   `gorm:"column:event_category;not null;index" json:"event_category"`
	EventAction   string   `gorm:"column:event_action;not null" json:"event_action"`
	EventLabel    string   `gorm:"column:event_label" json:"event_label,omitempty"`
	EventValue    *float64 `gorm:"column:event_value" json:"event_value,omitempty"`

	PageURL    string   `gorm:"column:page_url" json:"page_url,omitempty"`
	PageTitle  string   `gorm:"column:page_title" json:"page_title,omitempty"`
	Referrer   string   `gorm:"column:referrer" json:"referrer,omitempty"`
	DeviceType string   `gorm:"column:device_type" json:"device_type,omitempty"`
	Browser    string   `gorm:"column:browser" json:"browser,omitempty"`
	OS         string   `gorm:"column:os" json:"os,omitempty"`
	TimeOnPage *float64 `gorm:"column:time_on_page" json:"time_on_page,omitempty"`

	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	IPAddress string         `gorm:"column:ip_address" json:"-"`
	UserAgent string         `gorm:"column:user_agent" json:"-"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Event) TableName() string { return "user_event" }

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BrowserSession aggregates a visit, keyed by the client generated session id.
type BrowserSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID string     `gorm:"column:session_id;not null;uniqueIndex" json:"session_id"`

	StartedAt       time.Time  `gorm:"column:started_at;not null;index" json:"started_at"`
	EndedAt         *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
	DurationSeconds *float64   `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	IsActive        bool       `gorm:"column:is_active;not null;index" json:"is_active"`

	PagesViewed    int `gorm:"column:pages_viewed;not null;default:0" json:"pages_viewed"`
	MCQsGenerated  int `gorm:"column:mcqs_generated;not null;default:0" json:"mcqs_generated"`
	QuizzesTaken   int `gorm:"column:quizzes_taken;not null;default:0" json:"quizzes_taken"`
	MemesGenerated int `gorm:"column:memes_generated;not null;default:0" json:"memes_generated"`

	IPAddress string    `gorm:"column:ip_address" json:"-"`
	UserAgent string    `gorm:"column:user_agent" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (BrowserSession) TableName() string { return "browser_session" }

func (s *BrowserSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
