package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContentMCQ  = "mcq"
	ContentQuiz = "quiz"
	ContentMeme = "meme"
)

type Like struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_content" json:"user_id"`
	ContentType string    `gorm:"column:content_type;size:20;not null;uniqueIndex:idx_like_user_content" json:"content_type"`
	ContentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_user_content;index" json:"content_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Like) TableName() string { return "social_like" }

func (l *Like) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ContentType string    `gorm:"column:content_type;size:20;not null;index:idx_comment_content" json:"content_type"`
	ContentID   uuid.UUID `gorm:"type:uuid;not null;index:idx_comment_content" json:"content_id"`
	Text        string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}

func (Comment) TableName() string { return "social_comment" }

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
