package meme

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Generation struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	InputType string `gorm:"column:input_type;not null;index" json:"input_type"`
	Topic     string `gorm:"column:topic;type:text" json:"topic,omitempty"`
	SourceURL string `gorm:"column:source_url" json:"source_url,omitempty"`
	MemeType  string `gorm:"column:meme_type;not null;index" json:"meme_type"`
	NumMemes  int    `gorm:"column:num_memes;not null;default:1" json:"num_memes"`
	Category  string `gorm:"column:category;index" json:"category,omitempty"`

	ModelName             string  `gorm:"column:model_name" json:"model_name,omitempty"`
	ImageModel            string  `gorm:"column:image_model" json:"image_model,omitempty"`
	GenerationTimeSeconds float64 `gorm:"column:generation_time_seconds" json:"generation_time_seconds"`

	TotalGenerated        int `gorm:"column:total_generated;not null" json:"total_generated"`
	SuccessfulGenerations int `gorm:"column:successful_generations;not null" json:"successful_generations"`
	FailedGenerations     int `gorm:"column:failed_generations;not null" json:"failed_generations"`

	ViewCount  int `gorm:"column:view_count;not null;default:0" json:"view_count"`
	ShareCount int `gorm:"column:share_count;not null;default:0" json:"share_count"`
	SaveCount  int `gorm:"column:save_count;not null;default:0" json:"save_count"`

	IPAddress string `gorm:"column:ip_address" json:"-"`
	UserAgent string `gorm:"column:user_agent" json:"-"`

	Memes []GeneratedMeme `gorm:"foreignKey:GenerationID;constraint:OnDelete:CASCADE" json:"memes,omitempty"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Generation) TableName() string { return "meme_generation" }

func (g *Generation) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GeneratedMeme is one rendered item of a generation, with the source that served it.
type GeneratedMeme struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GenerationID uuid.UUID `gorm:"type:uuid;not null;index" json:"generation_id"`
	URL          string    `gorm:"column:meme_url;not null" json:"url"`
	MemeType     string    `gorm:"column:meme_type;not null" json:"type"`
	Source       string    `gorm:"column:source" json:"source,omitempty"`
	Note         string    `gorm:"column:note;type:text" json:"note,omitempty"`
	Views        int       `gorm:"column:views;not null;default:0" json:"views"`
	Downloads    int       `gorm:"column:downloads;not null;default:0" json:"downloads"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (GeneratedMeme) TableName() string { return "generated_meme" }

func (m *GeneratedMeme) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
