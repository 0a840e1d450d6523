package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bookmark pins a piece of content, or one item inside it when ContentIndex
// is set, for a user.
type Bookmark struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ContentType  string         `gorm:"column:content_type;size:20;not null;index" json:"content_type"`
	ContentID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"content_id"`
	ContentIndex *int           `gorm:"column:content_index" json:"content_index,omitempty"`
	ContentData  datatypes.JSON `gorm:"column:content_data;type:jsonb" json:"content_data,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Bookmark) TableName() string { return "bookmark" }

func (b *Bookmark) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
