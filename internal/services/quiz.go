package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	quizrepo "github.com/yungbote/memequiz-backend/internal/data/repos/quiz"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/pkg/pointers"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

const (
	maxPromptSourceRunes = 3000
	maxStoredSourceRunes = 5000
	defaultNumQuestions  = 10
	maxNumQuestions      = 50
)

type GenerateMCQsInput struct {
	Text               string `json:"text"`
	NumQuestions       int    `json:"num_questions"`
	Difficulty         string `json:"difficulty"`
	ContentType        string `json:"content_type"`
	IncludeExplanation *bool  `json:"include_explanation"`
	InputType          string `json:"input_type"`
	Category           string `json:"category"`
	SourceURL          string `json:"source_url"`
	SourceFilename     string `json:"source_filename"`
}

// MCQ is one question as the model produced it, with ID set once stored.
type MCQ struct {
	ID            *uuid.UUID        `json:"id,omitempty"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correct_option"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	Difficulty    string            `json:"difficulty,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
}

type GenerateMCQsResult struct {
	Questions    []MCQ      `json:"questions"`
	Model        string     `json:"model"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
}

type SessionInput struct {
	GenerationID      *uuid.UUID `json:"mcq_generation_id"`
	TotalQuestions    int        `json:"total_questions"`
	QuestionsAnswered int        `json:"questions_answered"`
	CorrectAnswers    int        `json:"correct_answers"`
	WrongAnswers      int        `json:"wrong_answers"`
	ScorePercentage   *float64   `json:"score_percentage"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	TimeTakenSeconds  *float64   `json:"time_taken_seconds"`
	IsCompleted       bool       `json:"is_completed"`
	ContentType       string     `json:"content_type"`
	Difficulty        string     `json:"difficulty"`
	InputType         string     `json:"input_type"`
	DeviceType        string     `json:"device_type"`
}

type AnswerInput struct {
	QuestionID       uuid.UUID `json:"question_id"`
	UserAnswer       string    `json:"user_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeSpentSeconds *float64  `json:"time_spent_seconds"`
}

type QuizService interface {
	GenerateMCQs(ctx context.Context, in GenerateMCQsInput) (*GenerateMCQsResult, error)
	SubmitSession(ctx context.Context, session SessionInput, answers []AnswerInput) (uuid.UUID, error)
}

type quizService struct {
	db          *gorm.DB
	log         *logger.Logger
	llm         completion.Completer
	generations quizrepo.GenerationRepo
	questions   quizrepo.QuestionRepo
	sessions    quizrepo.SessionRepo
	now         func() time.Time
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	llm completion.Completer,
	generations quizrepo.GenerationRepo,
	questions quizrepo.QuestionRepo,
	sessions quizrepo.SessionRepo,
) QuizService {
	return &quizService{
		db:          db,
		log:         baseLog.With("service", "QuizService"),
		llm:         llm,
		generations: generations,
		questions:   questions,
		sessions:    sessions,
		now:         time.Now,
	}
}

func (s *quizService) GenerateMCQs(ctx context.Context, in GenerateMCQsInput) (*GenerateMCQsResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apierr.BadRequest("missing_text", fmt.Errorf("text is required"))
	}
	if in.NumQuestions <= 0 {
		in.NumQuestions = defaultNumQuestions
	}
	if in.NumQuestions > maxNumQuestions {
		in.NumQuestions = maxNumQuestions
	}
	in.Difficulty = firstNonEmpty(in.Difficulty, "auto")
	in.ContentType = firstNonEmpty(in.ContentType, "coding")
	in.InputType = firstNonEmpty(in.InputType, "paste_text")
	includeExplanation := pointers.Or(in.IncludeExplanation, true)

	start := s.now()
	resp, err := s.llm.Complete(ctx, completion.Prompt("You are a helpful AI assistant.", mcqPrompt(in), true))
	if err != nil {
		return nil, err
	}
	questions := parseMCQs(resp.Text)
	if questions == nil {
		s.log.Warn("Model returned unparseable MCQ JSON", "model", resp.Model, "chars", len(resp.Text))
		questions = []MCQ{}
	}
	out := &GenerateMCQsResult{Questions: questions, Model: resp.Model}

	ip, ua := ctxutil.Client(ctx)
	gen := &types.MCQGeneration{
		UserID:                ctxutil.UserID(ctx),
		InputType:             in.InputType,
		ContentType:           in.ContentType,
		Difficulty:            in.Difficulty,
		NumQuestions:          in.NumQuestions,
		IncludeExplanation:    includeExplanation,
		Category:              in.Category,
		SourceContent:         truncateRunes(in.Text, maxStoredSourceRunes),
		SourceURL:             in.SourceURL,
		SourceFilename:        in.SourceFilename,
		ModelName:             resp.Model,
		GenerationTimeSeconds: s.now().Sub(start).Seconds(),
		IPAddress:             ip,
		UserAgent:             ua,
	}
	for i, q := range questions {
		gen.Questions = append(gen.Questions, types.MCQQuestion{
			Number:        i + 1,
			Text:          q.Question,
			OptionA:       option(q.Options, "a"),
			OptionB:       option(q.Options, "b"),
			OptionC:       option(q.Options, "c"),
			OptionD:       option(q.Options, "d"),
			CorrectAnswer: strings.ToUpper(firstNonEmpty(q.CorrectAnswer, q.CorrectOption)),
			Explanation:   q.Explanation,
			Metadata:      questionMetadata(q),
		})
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.generations.Create(ctx, tx, gen)
		return err
	}); err != nil {
		// Questions are still useful without analytics.
		s.log.Warn("Failed to persist MCQ generation", "error", err, "model", resp.Model)
		return out, nil
	}

	for i := range out.Questions {
		id := gen.Questions[i].ID
		out.Questions[i].ID = &id
	}
	out.GenerationID = &gen.ID
	return out, nil
}

func (s *quizService) SubmitSession(ctx context.Context, in SessionInput, answers []AnswerInput) (uuid.UUID, error) {
	if in.TotalQuestions < 0 || in.QuestionsAnswered < 0 {
		return uuid.Nil, apierr.BadRequest("invalid_session", fmt.Errorf("question counts must be non-negative"))
	}
	if in.StartedAt.IsZero() {
		in.StartedAt = s.now()
	}
	ip, ua := ctxutil.Client(ctx)
	session := &types.QuizSession{
		UserID:            ctxutil.UserID(ctx),
		GenerationID:      in.GenerationID,
		TotalQuestions:    in.TotalQuestions,
		QuestionsAnswered: in.QuestionsAnswered,
		CorrectAnswers:    in.CorrectAnswers,
		WrongAnswers:      in.WrongAnswers,
		ScorePercentage:   in.ScorePercentage,
		StartedAt:         in.StartedAt,
		CompletedAt:       in.CompletedAt,
		TimeTakenSeconds:  in.TimeTakenSeconds,
		IsCompleted:       in.IsCompleted,
		ContentType:       in.ContentType,
		Difficulty:        in.Difficulty,
		InputType:         in.InputType,
		DeviceType:        in.DeviceType,
		IPAddress:         ip,
		UserAgent:         ua,
	}
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		session.Answers = append(session.Answers, types.QuizAnswer{
			QuestionID:       a.QuestionID,
			UserAnswer:       strings.ToUpper(strings.TrimSpace(a.UserAnswer)),
			IsCorrect:        a.IsCorrect,
			TimeSpentSeconds: a.TimeSpentSeconds,
		})
		ids = append(ids, a.QuestionID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.sessions.Create(ctx, tx, session); err != nil {
			return fmt.Errorf("create quiz session: %w", err)
		}
		found, err := s.questions.GetByIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		byID := make(map[uuid.UUID]*types.MCQQuestion, len(found))
		for _, q := range found {
			byID[q.ID] = q
		}
		for _, a := range answers {
			q, ok := byID[a.QuestionID]
			if !ok {
				continue
			}
			var secs float64
			if a.TimeSpentSeconds != nil {
				secs = *a.TimeSpentSeconds
			}
			q.RecordAnswer(a.IsCorrect, secs)
		}
		return s.questions.SaveStats(ctx, tx, found)
	})
	if err != nil {
		s.log.Error("Quiz session save failed", "error", err)
		return uuid.Nil, err
	}
	return session.ID, nil
}

func mcqPrompt(in GenerateMCQsInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert tutor specializing in %s.\n", in.ContentType)
	fmt.Fprintf(&b, "Goal: Generate %d %s difficulty multiple choice questions based on the text below.\n\n", in.NumQuestions, in.Difficulty)
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. Output ONLY valid JSON. No markdown, no explanations outside JSON.\n")
	b.WriteString(`2. Format: { "questions": [ { "question": "...", "options": { "a": "...", "b": "...", "c": "...", "d": "..." }, "correct_option": "a", "explanation": "...", "difficulty": "...", "tags": ["..."] } ] }` + "\n")
	b.WriteString("3. For CODING questions: include code snippets in triple backticks with the language name.\n")
	b.WriteString("4. For MATH questions: show every calculation step in the explanation, then the final answer.\n")
	if !pointers.Or(in.IncludeExplanation, true) {
		b.WriteString("5. Keep explanations to one short sentence.\n")
	}
	b.WriteString("\nText Content:\n")
	b.WriteString(truncateRunes(in.Text, maxPromptSourceRunes))
	return b.String()
}

// parseMCQs returns nil when the reply holds no parseable question list.
func parseMCQs(content string) []MCQ {
	var payload struct {
		Questions []MCQ `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(content)), &payload); err != nil {
		return nil
	}
	if payload.Questions == nil {
		return []MCQ{}
	}
	return payload.Questions
}

func option(opts map[string]string, key string) string {
	if v, ok := opts[key]; ok {
		return v
	}
	return opts[strings.ToUpper(key)]
}

func questionMetadata(q MCQ) datatypes.JSON {
	if q.Difficulty == "" && len(q.Tags) == 0 {
		return nil
	}
	b, err := json.Marshal(map[string]any{"difficulty": q.Difficulty, "tags": q.Tags})
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
