package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	engrepo "github.com/yungbote/memequiz-backend/internal/data/repos/engagement"
	memerepo "github.com/yungbote/memequiz-backend/internal/data/repos/meme"
	quizrepo "github.com/yungbote/memequiz-backend/internal/data/repos/quiz"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	pkgerrors "github.com/yungbote/memequiz-backend/internal/pkg/errors"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

const (
	maxContentTypeLen = 20
	maxCommentRunes   = 2000
	commentPageSize   = 200
)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == nil {
		return uuid.Nil, apierr.Unauthorized(pkgerrors.ErrUnauthorized)
	}
	return *id, nil
}

func validContentType(ct string) (string, error) {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" || len(ct) > maxContentTypeLen {
		return "", apierr.BadRequest("invalid_content_type", fmt.Errorf("content_type is required"))
	}
	return ct, nil
}

// ---- bookmarks ----

type BookmarkToggleInput struct {
	ContentType  string          `json:"content_type"`
	ContentID    uuid.UUID       `json:"content_id"`
	ContentIndex *int            `json:"content_index"`
	ContentData  json.RawMessage `json:"content_data"`
}

type BookmarkView struct {
	ID           uuid.UUID       `json:"id"`
	ContentType  string          `json:"content_type"`
	ContentID    uuid.UUID       `json:"content_id"`
	ContentIndex *int            `json:"content_index,omitempty"`
	ContentData  json.RawMessage `json:"content_data,omitempty"`
	Content      any             `json:"content,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type BookmarkService interface {
	Toggle(ctx context.Context, in BookmarkToggleInput) (bool, error)
	List(ctx context.Context, contentType string) ([]BookmarkView, error)
	Check(ctx context.Context, contentType string, contentID uuid.UUID) (bool, error)
}

type bookmarkService struct {
	db          *gorm.DB
	log         *logger.Logger
	bookmarks   engrepo.BookmarkRepo
	generations quizrepo.GenerationRepo
	sessions    quizrepo.SessionRepo
	memes       memerepo.GenerationRepo
}

func NewBookmarkService(
	db *gorm.DB,
	baseLog *logger.Logger,
	bookmarks engrepo.BookmarkRepo,
	generations quizrepo.GenerationRepo,
	sessions quizrepo.SessionRepo,
	memes memerepo.GenerationRepo,
) BookmarkService {
	return &bookmarkService{
		db:          db,
		log:         baseLog.With("service", "BookmarkService"),
		bookmarks:   bookmarks,
		generations: generations,
		sessions:    sessions,
		memes:       memes,
	}
}

// Toggle removes the bookmark when present and creates it otherwise. It
// reports whether the content is bookmarked afterwards.
func (s *bookmarkService) Toggle(ctx context.Context, in BookmarkToggleInput) (bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return false, err
	}
	ct, err := validContentType(in.ContentType)
	if err != nil {
		return false, err
	}
	if in.ContentID == uuid.Nil {
		return false, apierr.BadRequest("invalid_content_id", fmt.Errorf("content_id is required"))
	}

	var bookmarked bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.bookmarks.Find(ctx, tx, userID, ct, in.ContentID, in.ContentIndex)
		if err != nil {
			return err
		}
		if existing != nil {
			bookmarked = false
			return s.bookmarks.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
		}
		b := &types.Bookmark{
			UserID:       userID,
			ContentType:  ct,
			ContentID:    in.ContentID,
			ContentIndex: in.ContentIndex,
		}
		if len(in.ContentData) > 0 && string(in.ContentData) != "null" {
			b.ContentData = datatypes.JSON(in.ContentData)
		}
		if _, err := s.bookmarks.Create(ctx, tx, b); err != nil {
			return err
		}
		bookmarked = true
		if in.ContentIndex == nil {
			return s.countSave(ctx, tx, ct, in.ContentID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return bookmarked, nil
}

// countSave bumps save_count on a whole generation; other content is ignored.
func (s *bookmarkService) countSave(ctx context.Context, tx *gorm.DB, contentType string, id uuid.UUID) error {
	var err error
	switch contentType {
	case types.ContentMCQ:
		err = s.generations.IncrementCounter(ctx, tx, id, "save_count")
	case types.ContentMeme:
		err = s.memes.IncrementCounter(ctx, tx, id, "save_count")
	}
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil
	}
	return err
}

func (s *bookmarkService) List(ctx context.Context, contentType string) ([]BookmarkView, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.bookmarks.ListByUser(ctx, nil, userID, strings.ToLower(strings.TrimSpace(contentType)))
	if err != nil {
		return nil, err
	}
	out := make([]BookmarkView, 0, len(rows))
	for _, b := range rows {
		v := BookmarkView{
			ID:           b.ID,
			ContentType:  b.ContentType,
			ContentID:    b.ContentID,
			ContentIndex: b.ContentIndex,
			CreatedAt:    b.CreatedAt,
		}
		if len(b.ContentData) > 0 {
			v.ContentData = json.RawMessage(b.ContentData)
			v.Content = v.ContentData
		} else {
			v.Content = s.hydrate(ctx, b.ContentType, b.ContentID)
		}
		out = append(out, v)
	}
	return out, nil
}

// hydrate loads a summary of whole-content bookmarks. Missing content yields nil.
func (s *bookmarkService) hydrate(ctx context.Context, contentType string, id uuid.UUID) any {
	var (
		content any
		err     error
	)
	switch contentType {
	case types.ContentMCQ:
		var g *types.MCQGeneration
		if g, err = s.generations.GetByID(ctx, nil, id); err == nil {
			content = map[string]any{"difficulty": g.Difficulty, "num_questions": g.NumQuestions, "questions": g.Questions, "created_at": g.CreatedAt}
		}
	case types.ContentMeme:
		var g *types.MemeGeneration
		if g, err = s.memes.GetByID(ctx, nil, id); err == nil {
			content = map[string]any{"topic": g.Topic, "memes": g.Memes, "created_at": g.CreatedAt}
		}
	case types.ContentQuiz:
		var q *types.QuizSession
		if q, err = s.sessions.GetByID(ctx, nil, id); err == nil {
			content = map[string]any{"score": q.ScorePercentage, "time_taken": q.TimeTakenSeconds, "created_at": q.StartedAt}
		}
	}
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		s.log.Warn("Bookmark content lookup failed", "content_type", contentType, "error", err)
	}
	return content
}

func (s *bookmarkService) Check(ctx context.Context, contentType string, contentID uuid.UUID) (bool, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return false, err
	}
	ct, err := validContentType(contentType)
	if err != nil {
		return false, err
	}
	return s.bookmarks.Exists(ctx, nil, userID, ct, contentID)
}

// ---- social ----

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type SocialService interface {
	ToggleLike(ctx context.Context, contentType string, contentID uuid.UUID) (*LikeResult, error)
	AddComment(ctx context.Context, contentType string, contentID uuid.UUID, text string) (*types.SocialComment, error)
	Comments(ctx context.Context, contentType string, contentID uuid.UUID) ([]*types.SocialComment, error)
}

type socialService struct {
	db       *gorm.DB
	log      *logger.Logger
	likes    engrepo.LikeRepo
	comments engrepo.CommentRepo
}

func NewSocialService(db *gorm.DB, baseLog *logger.Logger, likes engrepo.LikeRepo, comments engrepo.CommentRepo) SocialService {
	return &socialService{db: db, log: baseLog.With("service", "SocialService"), likes: likes, comments: comments}
}

func (s *socialService) ToggleLike(ctx context.Context, contentType string, contentID uuid.UUID) (*LikeResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ct, err := validContentType(contentType)
	if err != nil {
		return nil, err
	}
	out := &LikeResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.likes.Find(ctx, tx, userID, ct, contentID)
		if err != nil {
			return err
		}
		if existing != nil {
			err = s.likes.Delete(ctx, tx, existing.ID)
		} else {
			err = s.likes.Create(ctx, tx, &types.SocialLike{UserID: userID, ContentType: ct, ContentID: contentID})
			out.Liked = true
		}
		if err != nil {
			return err
		}
		out.LikesCount, err = s.likes.Count(ctx, tx, ct, contentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *socialService) AddComment(ctx context.Context, contentType string, contentID uuid.UUID, text string) (*types.SocialComment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	ct, err := validContentType(contentType)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.BadRequest("empty_comment", fmt.Errorf("text is required"))
	}
	return s.comments.Create(ctx, nil, &types.SocialComment{
		UserID:      userID,
		ContentType: ct,
		ContentID:   contentID,
		Text:        truncateRunes(text, maxCommentRunes),
	})
}

// Comments are returned oldest first.
func (s *socialService) Comments(ctx context.Context, contentType string, contentID uuid.UUID) ([]*types.SocialComment, error) {
	ct, err := validContentType(contentType)
	if err != nil {
		return nil, err
	}
	rows, err := s.comments.List(ctx, nil, ct, contentID, commentPageSize)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
