package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Quiz      services.QuizService
	Meme      services.MemeService
	Media     services.MediaService
	Extract   services.ExtractService
	Upload    services.UploadService
	Bookmarks services.BookmarkService
	Social    services.SocialService
	Tracking  services.TrackingService
	Content   services.ContentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	return Services{
		Auth:      auth,
		Quiz:      services.NewQuizService(db, log, clients.LLM, repos.QuizGenerations, repos.Questions, repos.Sessions),
		Meme:      services.NewMemeService(db, log, clients.LLM, repos.MemeGenerations, clients.Renderer, clients.Store),
		Media:     services.NewMediaService(log, clients.Media),
		Extract:   services.NewExtractService(log, clients.Extractor),
		Upload:    services.NewUploadService(log, clients.Store),
		Bookmarks: services.NewBookmarkService(db, log, repos.Bookmarks, repos.QuizGenerations, repos.Sessions, repos.MemeGenerations),
		Social:    services.NewSocialService(db, log, repos.Likes, repos.Comments),
		Tracking:  services.NewTrackingService(db, log, repos.Events, repos.BrowserSessions),
		Content:   services.NewContentService(log, repos.QuizGenerations, repos.Questions, repos.Sessions, repos.MemeGenerations, repos.Likes, repos.Comments),
	}, nil
}
