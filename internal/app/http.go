package app

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/data/db"
	"github.com/yungbote/memequiz-backend/internal/http"
	httpH "github.com/yungbote/memequiz-backend/internal/http/handlers"
	httpMW "github.com/yungbote/memequiz-backend/internal/http/middleware"
	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Quiz       *httpH.QuizHandler
	Meme       *httpH.MemeHandler
	Media      *httpH.MediaHandler
	Completion *httpH.CompletionHandler
	Extract    *httpH.ExtractHandler
	Upload     *httpH.UploadHandler
	Bookmark   *httpH.BookmarkHandler
	Social     *httpH.SocialHandler
	Tracking   *httpH.TrackingHandler
	Content    *httpH.ContentHandler
}

func wireHandlers(log *logger.Logger, database *db.Service, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{"database": database}
	if clients.Redis != nil {
		checks["redis"] = redisPinger{rdb: clients.Redis}
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(checks),
		Quiz:       httpH.NewQuizHandler(log, services.Quiz),
		Meme:       httpH.NewMemeHandler(log, services.Meme),
		Media:      httpH.NewMediaHandler(services.Media),
		Completion: httpH.NewCompletionHandler(log, clients.LLM),
		Extract:    httpH.NewExtractHandler(services.Extract),
		Upload:     httpH.NewUploadHandler(log, services.Upload),
		Bookmark:   httpH.NewBookmarkHandler(services.Bookmarks),
		Social:     httpH.NewSocialHandler(services.Social),
		Tracking:   httpH.NewTrackingHandler(services.Tracking),
		Content:    httpH.NewContentHandler(services.Content),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	mw := Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
	if clients.Redis != nil {
		mw.RateLimit = httpMW.NewRateLimiter(log, clients.Redis, cfg.RateLimitPerMinute, time.Minute)
	}
	return mw
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, clients Clients, handlers Handlers, middleware Middleware) *gin.Engine {
	rc := http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		TracingEnabled:    cfg.Otel.Enabled,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthMiddleware:    middleware.Auth,
		RateLimiter:       middleware.RateLimit,
		HealthHandler:     handlers.Health,
		QuizHandler:       handlers.Quiz,
		MemeHandler:       handlers.Meme,
		MediaHandler:      handlers.Media,
		CompletionHandler: handlers.Completion,
		ExtractHandler:    handlers.Extract,
		UploadHandler:     handlers.Upload,
		BookmarkHandler:   handlers.Bookmark,
		SocialHandler:     handlers.Social,
		TrackingHandler:   handlers.Tracking,
		ContentHandler:    handlers.Content,
	}
	if local, ok := clients.Store.(*storage.LocalStore); ok {
		rc.LocalUploadDir = local.Dir()
		rc.LocalUploadPrefix = local.Prefix()
	}
	return http.NewRouter(rc)
}
