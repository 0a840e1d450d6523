package app

import (
	"gorm.io/gorm"

	engrepo "github.com/yungbote/memequiz-backend/internal/data/repos/engagement"
	memerepo "github.com/yungbote/memequiz-backend/internal/data/repos/meme"
	quizrepo "github.com/yungbote/memequiz-backend/internal/data/repos/quiz"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type Repos struct {
	QuizGenerations quizrepo.GenerationRepo
	Questions       quizrepo.QuestionRepo
	Sessions        quizrepo.SessionRepo
	MemeGenerations memerepo.GenerationRepo
	Bookmarks       engrepo.BookmarkRepo
	Likes           engrepo.LikeRepo
	Comments        engrepo.CommentRepo
	Events          engrepo.EventRepo
	BrowserSessions engrepo.BrowserSessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		QuizGenerations: quizrepo.NewGenerationRepo(db, log),
		Questions:       quizrepo.NewQuestionRepo(db, log),
		Sessions:        quizrepo.NewSessionRepo(db, log),
		MemeGenerations: memerepo.NewGenerationRepo(db, log),
		Bookmarks:       engrepo.NewBookmarkRepo(db, log),
		Likes:           engrepo.NewLikeRepo(db, log),
		Comments:        engrepo.NewCommentRepo(db, log),
		Events:          engrepo.NewEventRepo(db, log),
		BrowserSessions: engrepo.NewBrowserSessionRepo(db, log),
	}
}
