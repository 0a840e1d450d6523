package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	engrepo "github.com/yungbote/memequiz-backend/internal/data/repos/engagement"
	memerepo "github.com/yungbote/memequiz-backend/internal/data/repos/meme"
	quizrepo "github.com/yungbote/memequiz-backend/internal/data/repos/quiz"
	"github.com/yungbote/memequiz-backend/internal/data/repos/testutil"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
)

func newContentFixture(t *testing.T) (ContentService, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewContentService(log,
		quizrepo.NewGenerationRepo(db, log),
		quizrepo.NewQuestionRepo(db, log),
		quizrepo.NewSessionRepo(db, log),
		memerepo.NewGenerationRepo(db, log),
		engrepo.NewLikeRepo(db, log),
		engrepo.NewCommentRepo(db, log),
	), db
}

func TestContentViewAndShareCounters(t *testing.T) {
	svc, db := newContentFixture(t)
	ctx := context.Background()
	mcq := testutil.SeedGeneration(t, ctx, db, nil, 1)
	meme := testutil.SeedMemeGeneration(t, ctx, db, nil)

	require.NoError(t, svc.TrackView(ctx, ContentRef{ContentType: "mcq", ContentID: mcq.ID}))
	require.NoError(t, svc.TrackView(ctx, ContentRef{ContentType: "MCQ", ContentID: mcq.ID}))
	require.NoError(t, svc.TrackShare(ctx, ContentRef{ContentType: "meme", ContentID: meme.ID}))
	require.NoError(t, svc.TrackShare(ctx, ContentRef{ContentType: "meme", ContentID: uuid.New()}))

	var gotMCQ types.MCQGeneration
	require.NoError(t, db.First(&gotMCQ, "id = ?", mcq.ID).Error)
	assert.Equal(t, 2, gotMCQ.ViewCount)
	var gotMeme types.MemeGeneration
	require.NoError(t, db.First(&gotMeme, "id = ?", meme.ID).Error)
	assert.Equal(t, 1, gotMeme.ShareCount)
	assert.Zero(t, gotMeme.ViewCount)

	var ae *apierr.Error
	require.ErrorAs(t, svc.TrackView(ctx, ContentRef{ContentType: "quiz", ContentID: mcq.ID}), &ae)
	assert.Equal(t, "invalid_content_type", ae.Code)
	require.ErrorAs(t, svc.TrackShare(ctx, ContentRef{ContentType: "mcq"}), &ae)
	assert.Equal(t, "invalid_content_id", ae.Code)
}

func TestContentTrendingWeightsSharesAndSaves(t *testing.T) {
	svc, db := newContentFixture(t)
	ctx := context.Background()
	viewed := testutil.SeedGeneration(t, ctx, db, nil, 1)
	shared := testutil.SeedGeneration(t, ctx, db, nil, 1)
	old := testutil.SeedGeneration(t, ctx, db, nil, 1)
	meme := testutil.SeedMemeGeneration(t, ctx, db, nil)
	require.NoError(t, db.Model(viewed).Update("view_count", 4).Error)
	require.NoError(t, db.Model(shared).Updates(map[string]any{"share_count": 1, "save_count": 1}).Error)
	require.NoError(t, db.Model(old).Updates(map[string]any{"view_count": 50, "created_at": time.Now().AddDate(0, 0, -10)}).Error)

	out, err := svc.Trending(ctx, TrendingQuery{})
	require.NoError(t, err)
	require.Len(t, out.MCQs, 2)
	assert.Equal(t, shared.ID, out.MCQs[0].ID)
	require.NotNil(t, out.MCQs[0].TrendingScore)
	assert.Equal(t, 5, *out.MCQs[0].TrendingScore)
	assert.Equal(t, 4, *out.MCQs[1].TrendingScore)
	require.Len(t, out.Memes, 1)
	assert.Equal(t, meme.ID, out.Memes[0].ID)

	wide, err := svc.Trending(ctx, TrendingQuery{ContentType: "mcq", Days: 30, Limit: 1})
	require.NoError(t, err)
	require.Len(t, wide.MCQs, 1)
	assert.Equal(t, old.ID, wide.MCQs[0].ID)
	assert.Empty(t, wide.Memes)

	_, err = svc.Trending(ctx, TrendingQuery{ContentType: "video"})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)
}

func TestContentByCategory(t *testing.T) {
	svc, db := newContentFixture(t)
	ctx := context.Background()
	mcq := testutil.SeedGeneration(t, ctx, db, nil, 1)
	meme := testutil.SeedMemeGeneration(t, ctx, db, nil)
	require.NoError(t, db.Model(mcq).Update("category", "Science").Error)
	require.NoError(t, db.Model(meme).Update("category", "Science").Error)

	out, err := svc.ByCategory(ctx, CategoryQuery{Category: "Science", ContentType: "meme"})
	require.NoError(t, err)
	assert.Empty(t, out.MCQs)
	require.Len(t, out.Memes, 1)
	assert.Nil(t, out.Memes[0].TrendingScore)
	assert.Equal(t, "recursion", out.Memes[0].Topic)

	_, err = svc.ByCategory(ctx, CategoryQuery{})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "missing_category", ae.Code)

	assert.Contains(t, svc.Categories(), "General Knowledge")
	assert.Len(t, svc.Categories(), 11)
}

func TestContentFeedMergesOwnedActivity(t *testing.T) {
	svc, db := newContentFixture(t)
	ctx := context.Background()
	author, viewer := uuid.New(), uuid.New()
	now := time.Now()

	mcq := testutil.SeedGeneration(t, ctx, db, &author, 2)
	require.NoError(t, db.Model(mcq).Update("created_at", now.Add(-3*time.Minute)).Error)
	meme := testutil.SeedMemeGeneration(t, ctx, db, &author)
	require.NoError(t, db.Model(meme).Update("created_at", now.Add(-2*time.Minute)).Error)
	testutil.SeedMemeGeneration(t, ctx, db, nil)

	score, taken := 50.0, 42.7
	session := &types.QuizSession{
		UserID:           &author,
		GenerationID:     &mcq.ID,
		TotalQuestions:   2,
		CorrectAnswers:   1,
		ScorePercentage:  &score,
		TimeTakenSeconds: &taken,
		StartedAt:        now.Add(-time.Minute),
		Answers: []types.QuizAnswer{
			{QuestionID: mcq.Questions[0].ID, UserAnswer: "a", IsCorrect: true},
			{QuestionID: mcq.Questions[1].ID, UserAnswer: "B", IsCorrect: false},
		},
	}
	require.NoError(t, db.Create(session).Error)

	likes := engrepo.NewLikeRepo(db, testutil.Logger(t))
	require.NoError(t, likes.Create(ctx, nil, &types.SocialLike{UserID: viewer, ContentType: types.ContentMeme, ContentID: meme.ID}))
	require.NoError(t, likes.Create(ctx, nil, &types.SocialLike{UserID: author, ContentType: types.ContentMeme, ContentID: meme.ID}))
	require.NoError(t, db.Create(&types.SocialComment{UserID: viewer, ContentType: types.ContentQuiz, ContentID: session.ID, Text: "nice"}).Error)

	feed, err := svc.Feed(userCtx(viewer))
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, []string{"quiz", "meme", "mcq"}, []string{feed[0].Type, feed[1].Type, feed[2].Type})

	quiz := feed[0]
	assert.Equal(t, "quiz_"+session.ID.String(), quiz.ID)
	assert.Equal(t, "Scored 50% (1/2)", quiz.Content)
	assert.Equal(t, "Completed in 42s", quiz.Details)
	assert.EqualValues(t, 1, quiz.Comments)
	require.Len(t, quiz.QuestionsPreview, 2)
	for _, p := range quiz.QuestionsPreview {
		if p.UserAnswerLetter == "A" {
			assert.Equal(t, "a", p.UserAnswerText)
			require.NotNil(t, p.IsCorrect)
			assert.True(t, *p.IsCorrect)
		}
	}

	memeItem := feed[1]
	assert.EqualValues(t, 2, memeItem.Likes)
	assert.True(t, memeItem.HasLiked)
	assert.Equal(t, "https://media.tenor.com/x.gif", memeItem.ImageURL)
	assert.Equal(t, "Generated 1 variants", memeItem.Details)

	mcqItem := feed[2]
	assert.Equal(t, "2 auto questions", mcqItem.Content)
	assert.Equal(t, "Category: General", mcqItem.Details)
	require.Len(t, mcqItem.QuestionsData, 2)
	assert.Equal(t, "A", mcqItem.QuestionsData[0].CorrectAnswerLetter)
	assert.Equal(t, "a", mcqItem.QuestionsData[0].CorrectAnswerText)
	assert.False(t, mcqItem.HasLiked)

	anon, err := svc.Feed(context.Background())
	require.NoError(t, err)
	require.Len(t, anon, 3)
	assert.False(t, anon[1].HasLiked)
}
