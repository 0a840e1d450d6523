package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	engrepo "github.com/yungbote/memequiz-backend/internal/data/repos/engagement"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/pkg/pointers"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type TrackEventInput struct {
	SessionID     string          `json:"session_id"`
	EventType     string          `json:"event_type"`
	EventCategory string          `json:"event_category"`
	EventAction   string          `json:"event_action"`
	EventLabel    string          `json:"event_label"`
	EventValue    *float64        `json:"event_value"`
	PageURL       string          `json:"page_url"`
	PageTitle     string          `json:"page_title"`
	Referrer      string          `json:"referrer"`
	DeviceType    string          `json:"device_type"`
	Browser       string          `json:"browser"`
	OS            string          `json:"os"`
	TimeOnPage    *float64        `json:"time_on_page"`
	Metadata      json.RawMessage `json:"metadata"`
}

type TrackSessionInput struct {
	SessionID       string     `json:"session_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *float64   `json:"duration_seconds"`
	IsActive        *bool      `json:"is_active"`
	PagesViewed     int        `json:"pages_viewed"`
	MCQsGenerated   int        `json:"mcqs_generated"`
	QuizzesTaken    int        `json:"quizzes_taken"`
	MemesGenerated  int        `json:"memes_generated"`
}

type TrackingService interface {
	TrackEvent(ctx context.Context, in TrackEventInput) error
	TrackSession(ctx context.Context, in TrackSessionInput) error
}

type trackingService struct {
	db       *gorm.DB
	log      *logger.Logger
	events   engrepo.EventRepo
	sessions engrepo.BrowserSessionRepo
	now      func() time.Time
}

func NewTrackingService(db *gorm.DB, baseLog *logger.Logger, events engrepo.EventRepo, sessions engrepo.BrowserSessionRepo) TrackingService {
	return &trackingService{
		db:       db,
		log:      baseLog.With("service", "TrackingService"),
		events:   events,
		sessions: sessions,
		now:      time.Now,
	}
}

func (s *trackingService) TrackEvent(ctx context.Context, in TrackEventInput) error {
	if strings.TrimSpace(in.EventType) == "" {
		return apierr.BadRequest("missing_event_type", fmt.Errorf("event_type is required"))
	}
	ip, ua := ctxutil.Client(ctx)
	e := &types.UserEvent{
		UserID:        ctxutil.UserID(ctx),
		SessionID:     in.SessionID,
		EventType:     in.EventType,
		EventCategory: firstNonEmpty(in.EventCategory, "general"),
		EventAction:   firstNonEmpty(in.EventAction, in.EventType),
		EventLabel:    in.EventLabel,
		EventValue:    in.EventValue,
		PageURL:       in.PageURL,
		PageTitle:     in.PageTitle,
		Referrer:      in.Referrer,
		DeviceType:    in.DeviceType,
		Browser:       in.Browser,
		OS:            in.OS,
		TimeOnPage:    in.TimeOnPage,
		IPAddress:     ip,
		UserAgent:     ua,
	}
	if len(in.Metadata) > 0 && string(in.Metadata) != "null" {
		e.Metadata = datatypes.JSON(in.Metadata)
	}
	return s.events.Create(ctx, nil, e)
}

// TrackSession creates the browser session on first sight and afterwards
// only updates its progress counters.
func (s *trackingService) TrackSession(ctx context.Context, in TrackSessionInput) error {
	sid := strings.TrimSpace(in.SessionID)
	if sid == "" {
		return apierr.BadRequest("missing_session_id", fmt.Errorf("session_id is required"))
	}
	active := pointers.Or(in.IsActive, true)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.sessions.GetBySessionID(ctx, tx, sid)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.EndedAt = in.EndedAt
			existing.DurationSeconds = in.DurationSeconds
			existing.IsActive = active
			existing.PagesViewed = in.PagesViewed
			existing.MCQsGenerated = in.MCQsGenerated
			existing.QuizzesTaken = in.QuizzesTaken
			existing.MemesGenerated = in.MemesGenerated
			return s.sessions.UpdateProgress(ctx, tx, existing)
		}
		started := in.StartedAt
		if started.IsZero() {
			started = s.now()
		}
		ip, ua := ctxutil.Client(ctx)
		return s.sessions.Create(ctx, tx, &types.BrowserSession{
			UserID:          ctxutil.UserID(ctx),
			SessionID:       sid,
			StartedAt:       started,
			EndedAt:         in.EndedAt,
			DurationSeconds: in.DurationSeconds,
			IsActive:        active,
			PagesViewed:     in.PagesViewed,
			MCQsGenerated:   in.MCQsGenerated,
			QuizzesTaken:    in.QuizzesTaken,
			MemesGenerated:  in.MemesGenerated,
			IPAddress:       ip,
			UserAgent:       ua,
		})
	})
}
