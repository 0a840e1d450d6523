package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

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
	defaultTrendingLimit = 10
	maxTrendingLimit     = 50
	defaultTrendingDays  = 7
	maxTrendingDays      = 365
	defaultCategoryLimit = 20
	maxCategoryLimit     = 100

	feedPerType = 20
	feedSize    = 40
)

type ContentRef struct {
	ContentType string    `json:"content_type"`
	ContentID   uuid.UUID `json:"content_id"`
}

// ContentSummary is one MCQ or meme generation in a listing. MCQs carry
// difficulty and num_questions, memes carry topic and num_memes.
type ContentSummary struct {
	ID            uuid.UUID  `json:"id"`
	Difficulty    string     `json:"difficulty,omitempty"`
	NumQuestions  int        `json:"num_questions,omitempty"`
	Topic         string     `json:"topic,omitempty"`
	NumMemes      int        `json:"num_memes,omitempty"`
	Category      string     `json:"category,omitempty"`
	ViewCount     int        `json:"view_count"`
	SaveCount     int        `json:"save_count"`
	ShareCount    int        `json:"share_count"`
	TrendingScore *int       `json:"trending_score,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
}

type ContentListing struct {
	MCQs  []ContentSummary `json:"mcqs"`
	Memes []ContentSummary `json:"memes"`
}

type TrendingQuery struct {
	ContentType string
	Limit       int
	Days        int
}

type CategoryQuery struct {
	Category    string
	ContentType string
	Limit       int
}

type QuestionPreview struct {
	Question            string            `json:"question"`
	Options             map[string]string `json:"options"`
	UserAnswerLetter    string            `json:"user_answer_letter,omitempty"`
	UserAnswerText      string            `json:"user_answer,omitempty"`
	CorrectAnswerLetter string            `json:"correct_answer_letter"`
	CorrectAnswerText   string            `json:"correct_answer_text"`
	IsCorrect           *bool             `json:"is_correct,omitempty"`
	Explanation         string            `json:"explanation,omitempty"`
}

type FeedItem struct {
	ID               string            `json:"id"`
	ContentID        uuid.UUID         `json:"content_id"`
	Type             string            `json:"type"`
	UserID           *uuid.UUID        `json:"user_id,omitempty"`
	Action           string            `json:"action"`
	Content          string            `json:"content"`
	Details          string            `json:"details"`
	ImageURL         string            `json:"image_url,omitempty"`
	QuestionsPreview []QuestionPreview `json:"questions_preview,omitempty"`
	QuestionsData    []QuestionPreview `json:"questions_data,omitempty"`
	Time             time.Time         `json:"time"`
	Likes            int64             `json:"likes"`
	HasLiked         bool              `json:"has_liked"`
	Comments         int64             `json:"comments"`
}

type ContentService interface {
	TrackView(ctx context.Context, ref ContentRef) error
	TrackShare(ctx context.Context, ref ContentRef) error
	Categories() []string
	Trending(ctx context.Context, q TrendingQuery) (*ContentListing, error)
	ByCategory(ctx context.Context, q CategoryQuery) (*ContentListing, error)
	Feed(ctx context.Context) ([]FeedItem, error)
}

type contentService struct {
	log       *logger.Logger
	quizGens  quizrepo.GenerationRepo
	questions quizrepo.QuestionRepo
	sessions  quizrepo.SessionRepo
	memeGens  memerepo.GenerationRepo
	likes     engrepo.LikeRepo
	comments  engrepo.CommentRepo
	now       func() time.Time
}

func NewContentService(
	baseLog *logger.Logger,
	quizGens quizrepo.GenerationRepo,
	questions quizrepo.QuestionRepo,
	sessions quizrepo.SessionRepo,
	memeGens memerepo.GenerationRepo,
	likes engrepo.LikeRepo,
	comments engrepo.CommentRepo,
) ContentService {
	return &contentService{
		log:       baseLog.With("service", "ContentService"),
		quizGens:  quizGens,
		questions: questions,
		sessions:  sessions,
		memeGens:  memeGens,
		likes:     likes,
		comments:  comments,
		now:       time.Now,
	}
}

func (s *contentService) TrackView(ctx context.Context, ref ContentRef) error {
	return s.bump(ctx, ref, "view_count")
}

func (s *contentService) TrackShare(ctx context.Context, ref ContentRef) error {
	return s.bump(ctx, ref, "share_count")
}

// bump increments a counter column. Unknown content ids are ignored.
func (s *contentService) bump(ctx context.Context, ref ContentRef, column string) error {
	if ref.ContentID == uuid.Nil {
		return apierr.BadRequest("invalid_content_id", fmt.Errorf("content_id is required"))
	}
	var err error
	switch strings.ToLower(strings.TrimSpace(ref.ContentType)) {
	case types.ContentMCQ:
		err = s.quizGens.IncrementCounter(ctx, nil, ref.ContentID, column)
	case types.ContentMeme:
		err = s.memeGens.IncrementCounter(ctx, nil, ref.ContentID, column)
	default:
		return apierr.BadRequest("invalid_content_type", fmt.Errorf("content_type must be mcq or meme"))
	}
	if errors.Is(err, pkgerrors.ErrNotFound) {
		s.log.Debug("Counter target missing", "content_type", ref.ContentType, "content_id", ref.ContentID, "column", column)
		return nil
	}
	return err
}

func (s *contentService) Categories() []string {
	return append([]string(nil), types.Categories...)
}

// contentFilter resolves "", "all", "mcq" or "meme" to the listings to fill.
func contentFilter(raw string) (mcq, meme bool, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return true, true, nil
	case types.ContentMCQ:
		return true, false, nil
	case types.ContentMeme:
		return false, true, nil
	}
	return false, false, apierr.BadRequest("invalid_content_type", fmt.Errorf("content_type must be mcq, meme or all"))
}

func clampInt(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func trendingScore(views, saves, shares int) int {
	return views + saves*2 + shares*3
}

func mcqSummary(g *types.MCQGeneration, scored bool) ContentSummary {
	out := ContentSummary{
		ID:           g.ID,
		Difficulty:   g.Difficulty,
		NumQuestions: g.NumQuestions,
		Category:     g.Category,
		ViewCount:    g.ViewCount,
		SaveCount:    g.SaveCount,
		ShareCount:   g.ShareCount,
		CreatedAt:    g.CreatedAt,
		UserID:       g.UserID,
	}
	if scored {
		score := trendingScore(g.ViewCount, g.SaveCount, g.ShareCount)
		out.TrendingScore = &score
	}
	return out
}

func memeSummary(g *types.MemeGeneration, scored bool) ContentSummary {
	out := ContentSummary{
		ID:         g.ID,
		Topic:      g.Topic,
		NumMemes:   g.NumMemes,
		Category:   g.Category,
		ViewCount:  g.ViewCount,
		SaveCount:  g.SaveCount,
		ShareCount: g.ShareCount,
		CreatedAt:  g.CreatedAt,
		UserID:     g.UserID,
	}
	if scored {
		score := trendingScore(g.ViewCount, g.SaveCount, g.ShareCount)
		out.TrendingScore = &score
	}
	return out
}

func (s *contentService) Trending(ctx context.Context, q TrendingQuery) (*ContentListing, error) {
	wantMCQ, wantMeme, err := contentFilter(q.ContentType)
	if err != nil {
		return nil, err
	}
	limit := clampInt(q.Limit, defaultTrendingLimit, maxTrendingLimit)
	since := s.now().AddDate(0, 0, -clampInt(q.Days, defaultTrendingDays, maxTrendingDays))

	out := &ContentListing{MCQs: []ContentSummary{}, Memes: []ContentSummary{}}
	if wantMCQ {
		gens, err := s.quizGens.Trending(ctx, nil, since, limit)
		if err != nil {
			return nil, err
		}
		for _, g := range gens {
			out.MCQs = append(out.MCQs, mcqSummary(g, true))
		}
	}
	if wantMeme {
		gens, err := s.memeGens.Trending(ctx, nil, since, limit)
		if err != nil {
			return nil, err
		}
		for _, g := range gens {
			out.Memes = append(out.Memes, memeSummary(g, true))
		}
	}
	return out, nil
}

func (s *contentService) ByCategory(ctx context.Context, q CategoryQuery) (*ContentListing, error) {
	category := strings.TrimSpace(q.Category)
	if category == "" {
		return nil, apierr.BadRequest("missing_category", fmt.Errorf("category is required"))
	}
	wantMCQ, wantMeme, err := contentFilter(q.ContentType)
	if err != nil {
		return nil, err
	}
	limit := clampInt(q.Limit, defaultCategoryLimit, maxCategoryLimit)

	out := &ContentListing{MCQs: []ContentSummary{}, Memes: []ContentSummary{}}
	if wantMCQ {
		gens, err := s.quizGens.ListByCategory(ctx, nil, category, limit)
		if err != nil {
			return nil, err
		}
		for _, g := range gens {
			out.MCQs = append(out.MCQs, mcqSummary(g, false))
		}
	}
	if wantMeme {
		gens, err := s.memeGens.ListByCategory(ctx, nil, category, limit)
		if err != nil {
			return nil, err
		}
		for _, g := range gens {
			out.Memes = append(out.Memes, memeSummary(g, false))
		}
	}
	return out, nil
}

// Feed merges recent activity of signed-in users, newest first.
func (s *contentService) Feed(ctx context.Context) ([]FeedItem, error) {
	sessions, err := s.sessions.ListRecentOwned(ctx, nil, feedPerType)
	if err != nil {
		return nil, err
	}
	memes, err := s.memeGens.ListRecentOwned(ctx, nil, feedPerType)
	if err != nil {
		return nil, err
	}
	mcqs, err := s.quizGens.ListRecentOwned(ctx, nil, feedPerType)
	if err != nil {
		return nil, err
	}

	quizItems, err := s.quizFeedItems(ctx, sessions)
	if err != nil {
		return nil, err
	}
	memeItems := make([]FeedItem, 0, len(memes))
	for _, m := range memes {
		item := FeedItem{
			ID:        types.ContentMeme + "_" + m.ID.String(),
			ContentID: m.ID,
			Type:      types.ContentMeme,
			UserID:    m.UserID,
			Action:    "cooked up a meme",
			Content:   m.Topic,
			Details:   fmt.Sprintf("Generated %d variants", m.NumMemes),
			Time:      m.CreatedAt,
		}
		if len(m.Memes) > 0 {
			item.ImageURL = m.Memes[0].URL
		}
		memeItems = append(memeItems, item)
	}
	mcqItems := make([]FeedItem, 0, len(mcqs))
	for _, g := range mcqs {
		data := make([]QuestionPreview, 0, len(g.Questions))
		for i := range g.Questions {
			data = append(data, previewQuestion(&g.Questions[i]))
		}
		mcqItems = append(mcqItems, FeedItem{
			ID:            types.ContentMCQ + "_" + g.ID.String(),
			ContentID:     g.ID,
			Type:          types.ContentMCQ,
			UserID:        g.UserID,
			Action:        "generated MCQs",
			Content:       fmt.Sprintf("%d %s questions", g.NumQuestions, g.Difficulty),
			Details:       "Category: " + firstNonEmpty(g.Category, "General"),
			QuestionsData: data,
			Time:          g.CreatedAt,
		})
	}

	for _, group := range [][]FeedItem{quizItems, memeItems, mcqItems} {
		if err := s.decorate(ctx, group); err != nil {
			return nil, err
		}
	}

	feed := make([]FeedItem, 0, len(quizItems)+len(memeItems)+len(mcqItems))
	feed = append(feed, quizItems...)
	feed = append(feed, memeItems...)
	feed = append(feed, mcqItems...)
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Time.After(feed[j].Time) })
	if len(feed) > feedSize {
		feed = feed[:feedSize]
	}
	return feed, nil
}

func (s *contentService) quizFeedItems(ctx context.Context, sessions []*types.QuizSession) ([]FeedItem, error) {
	var questionIDs []uuid.UUID
	for _, q := range sessions {
		for _, a := range q.Answers {
			questionIDs = append(questionIDs, a.QuestionID)
		}
	}
	questions, err := s.questions.GetByIDs(ctx, nil, questionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.MCQQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	items := make([]FeedItem, 0, len(sessions))
	for _, q := range sessions {
		var preview []QuestionPreview
		for _, a := range q.Answers {
			question, ok := byID[a.QuestionID]
			if !ok {
				continue
			}
			p := previewQuestion(question)
			p.UserAnswerLetter = strings.ToUpper(a.UserAnswer)
			p.UserAnswerText = optionText(question, p.UserAnswerLetter)
			correct := a.IsCorrect
			p.IsCorrect = &correct
			preview = append(preview, p)
		}
		score, taken := 0.0, 0.0
		if q.ScorePercentage != nil {
			score = *q.ScorePercentage
		}
		if q.TimeTakenSeconds != nil {
			taken = *q.TimeTakenSeconds
		}
		items = append(items, FeedItem{
			ID:               types.ContentQuiz + "_" + q.ID.String(),
			ContentID:        q.ID,
			Type:             types.ContentQuiz,
			UserID:           q.UserID,
			Action:           "completed a quiz",
			Content:          fmt.Sprintf("Scored %g%% (%d/%d)", score, q.CorrectAnswers, q.TotalQuestions),
			Details:          fmt.Sprintf("Completed in %ds", int(taken)),
			QuestionsPreview: preview,
			Time:             q.StartedAt,
		})
	}
	return items, nil
}

// decorate fills like and comment counts for items that share one type.
func (s *contentService) decorate(ctx context.Context, items []FeedItem) error {
	if len(items) == 0 {
		return nil
	}
	contentType := items[0].Type
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ContentID
	}
	likes, err := s.likes.CountByContent(ctx, nil, contentType, ids)
	if err != nil {
		return err
	}
	comments, err := s.comments.CountByContent(ctx, nil, contentType, ids)
	if err != nil {
		return err
	}
	liked := map[uuid.UUID]bool{}
	if viewer := ctxutil.UserID(ctx); viewer != nil {
		if liked, err = s.likes.LikedBy(ctx, nil, *viewer, contentType, ids); err != nil {
			return err
		}
	}
	for i := range items {
		id := items[i].ContentID
		items[i].Likes = likes[id]
		items[i].Comments = comments[id]
		items[i].HasLiked = liked[id]
	}
	return nil
}

func previewQuestion(q *types.MCQQuestion) QuestionPreview {
	letter := strings.ToUpper(q.CorrectAnswer)
	return QuestionPreview{
		Question: q.Text,
		Options: map[string]string{
			"A": firstNonEmpty(q.OptionA, "Option A"),
			"B": firstNonEmpty(q.OptionB, "Option B"),
			"C": firstNonEmpty(q.OptionC, "Option C"),
			"D": firstNonEmpty(q.OptionD, "Option D"),
		},
		CorrectAnswerLetter: letter,
		CorrectAnswerText:   optionText(q, letter),
		Explanation:         q.Explanation,
	}
}

// optionText maps an answer letter to its option, or "Option X" when blank.
func optionText(q *types.MCQQuestion, letter string) string {
	var text string
	switch letter {
	case "A":
		text = q.OptionA
	case "B":
		text = q.OptionB
	case "C":
		text = q.OptionC
	case "D":
		text = q.OptionD
	}
	if strings.TrimSpace(text) == "" {
		return "Option " + letter
	}
	return text
}
