package domain

import (
	"github.com/yungbote/memequiz-backend/internal/domain/engagement"
	"github.com/yungbote/memequiz-backend/internal/domain/meme"
	"github.com/yungbote/memequiz-backend/internal/domain/quiz"
)

type (
	MCQGeneration = quiz.Generation
	MCQQuestion   = quiz.Question
	QuizSession   = quiz.Session
	QuizAnswer    = quiz.Answer

	MemeGeneration = meme.Generation
	GeneratedMeme  = meme.GeneratedMeme

	Bookmark       = engagement.Bookmark
	SocialLike     = engagement.Like
	SocialComment  = engagement.Comment
	UserEvent      = engagement.Event
	BrowserSession = engagement.BrowserSession
)

const (
	ContentMCQ  = engagement.ContentMCQ
	ContentQuiz = engagement.ContentQuiz
	ContentMeme = engagement.ContentMeme
)

// Categories are the topics quizzes and memes can be filed under.
var Categories = []string{
	"Science",
	"History",
	"Technology",
	"Pop Culture",
	"Geography",
	"Sports",
	"Literature",
	"Current Events",
	"Programming",
	"Mathematics",
	"General Knowledge",
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&MCQGeneration{},
		&MCQQuestion{},
		&QuizSession{},
		&QuizAnswer{},
		&MemeGeneration{},
		&GeneratedMeme{},
		&Bookmark{},
		&SocialLike{},
		&SocialComment{},
		&UserEvent{},
		&BrowserSession{},
	}
}
