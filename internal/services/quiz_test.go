package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quizrepo "github.com/yungbote/memequiz-backend/internal/data/repos/quiz"
	"github.com/yungbote/memequiz-backend/internal/data/repos/testutil"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
)

const fencedMCQs = "Here you go:\n```json\n" + `{"questions":[
 {"question":"What does len(nil slice) return?","options":{"a":"0","b":"nil","c":"panic","d":"-1"},"correct_option":"a","explanation":"len of a nil slice is 0","difficulty":"easy","tags":["slices"]},
 {"question":"Which keyword starts a goroutine?","options":{"A":"go","B":"async","C":"spawn","D":"thread"},"correct_answer":"a","explanation":"go f()"}
]}` + "\n```"

func newQuizFixture(t *testing.T, llm completion.Completer) (QuizService, quizrepo.GenerationRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	gens := quizrepo.NewGenerationRepo(db, log)
	svc := NewQuizService(db, log, llm, gens, quizrepo.NewQuestionRepo(db, log), quizrepo.NewSessionRepo(db, log))
	return svc, gens
}

func TestGenerateMCQsPersistsQuestions(t *testing.T) {
	llm := &scriptedLLM{replies: []string{fencedMCQs}}
	svc, gens := newQuizFixture(t, llm)
	userID := uuid.New()

	out, err := svc.GenerateMCQs(userCtx(userID), GenerateMCQsInput{Text: strings.Repeat("goroutines ", 600), NumQuestions: 2})
	require.NoError(t, err)
	require.Len(t, out.Questions, 2)
	require.NotNil(t, out.GenerationID)
	assert.Equal(t, "llama-3.3-70b-versatile", out.Model)
	require.NotNil(t, out.Questions[0].ID)

	require.Len(t, llm.calls, 1)
	assert.True(t, llm.calls[0].JSONMode)
	prompt := llm.calls[0].Messages[1].Content
	assert.Contains(t, prompt, "Generate 2 auto difficulty")
	assert.Contains(t, prompt, "specializing in coding")
	assert.Less(t, len([]rune(prompt)), 3000+1200)

	gen, err := gens.GetByID(context.Background(), nil, *out.GenerationID)
	require.NoError(t, err)
	assert.Equal(t, &userID, gen.UserID)
	assert.Equal(t, "paste_text", gen.InputType)
	assert.Equal(t, "203.0.113.9", gen.IPAddress)
	assert.True(t, gen.IncludeExplanation)
	require.Len(t, gen.Questions, 2)
	assert.Equal(t, "A", gen.Questions[0].CorrectAnswer)
	assert.Equal(t, "go", gen.Questions[1].OptionA)
	assert.Equal(t, "A", gen.Questions[1].CorrectAnswer)
	assert.Equal(t, *out.Questions[1].ID, gen.Questions[1].ID)
}

func TestGenerateMCQsUnparseableReplyIsEmpty(t *testing.T) {
	svc, _ := newQuizFixture(t, &scriptedLLM{replies: []string{"I cannot help with that."}})
	out, err := svc.GenerateMCQs(context.Background(), GenerateMCQsInput{Text: "channels"})
	require.NoError(t, err)
	assert.Empty(t, out.Questions)
	assert.NotNil(t, out.Questions)
}

func TestGenerateMCQsErrors(t *testing.T) {
	svc, _ := newQuizFixture(t, &scriptedLLM{})
	_, err := svc.GenerateMCQs(context.Background(), GenerateMCQsInput{Text: "  "})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)

	_, err = svc.GenerateMCQs(context.Background(), GenerateMCQsInput{Text: "maps"})
	assert.ErrorIs(t, err, completion.ErrAllProvidersExhausted)
}

func TestSubmitSessionUpdatesQuestionStats(t *testing.T) {
	svc, gens := newQuizFixture(t, &scriptedLLM{replies: []string{fencedMCQs}})
	ctx := context.Background()
	out, err := svc.GenerateMCQs(ctx, GenerateMCQsInput{Text: "go basics"})
	require.NoError(t, err)
	q1, q2 := *out.Questions[0].ID, *out.Questions[1].ID

	ten, twenty := 10.0, 20.0
	for i := 0; i < 2; i++ {
		spent := ten
		if i == 1 {
			spent = twenty
		}
		_, err := svc.SubmitSession(ctx, SessionInput{
			GenerationID:      out.GenerationID,
			TotalQuestions:    2,
			QuestionsAnswered: 2,
			CorrectAnswers:    1,
			WrongAnswers:      1,
			StartedAt:         time.Now().Add(-time.Minute),
			IsCompleted:       true,
		}, []AnswerInput{
			{QuestionID: q1, UserAnswer: "a", IsCorrect: true, TimeSpentSeconds: &spent},
			{QuestionID: q2, UserAnswer: "c", IsCorrect: false},
			{QuestionID: uuid.New(), UserAnswer: "b"},
		})
		require.NoError(t, err)
	}

	gen, err := gens.GetByID(ctx, nil, *out.GenerationID)
	require.NoError(t, err)
	first, second := gen.Questions[0], gen.Questions[1]
	assert.Equal(t, 2, first.TimesAttempted)
	assert.Equal(t, 2, first.TimesCorrect)
	require.NotNil(t, first.AverageTimeToAnswer)
	assert.InDelta(t, 15.0, *first.AverageTimeToAnswer, 1e-9)
	assert.Equal(t, 2, second.TimesWrong)
	assert.Nil(t, second.AverageTimeToAnswer)
}

func TestParseMCQsAndClean(t *testing.T) {
	assert.Nil(t, parseMCQs("not json"))
	assert.Empty(t, parseMCQs(`{"other": 1}`))
	assert.Equal(t, `{"a":1}`, cleanModelJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
}
