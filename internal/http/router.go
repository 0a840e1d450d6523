package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/memequiz-backend/internal/http/handlers"
	httpMW "github.com/yungbote/memequiz-backend/internal/http/middleware"
	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

const serviceName = "memequiz-backend"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	TracingEnabled bool
	AllowedOrigins []string

	// StaticUploads serves LocalUploadDir under LocalUploadPrefix when set.
	LocalUploadDir    string
	LocalUploadPrefix string

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	HealthHandler     *httpH.HealthHandler
	QuizHandler       *httpH.QuizHandler
	MemeHandler       *httpH.MemeHandler
	MediaHandler      *httpH.MediaHandler
	CompletionHandler *httpH.CompletionHandler
	ExtractHandler    *httpH.ExtractHandler
	UploadHandler     *httpH.UploadHandler
	BookmarkHandler   *httpH.BookmarkHandler
	SocialHandler     *httpH.SocialHandler
	TrackingHandler   *httpH.TrackingHandler
	ContentHandler    *httpH.ContentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.RequestLogger(log))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	if cfg.LocalUploadDir != "" && cfg.LocalUploadPrefix != "" {
		r.Static(cfg.LocalUploadPrefix, cfg.LocalUploadDir)
	}

	// Expensive routes fan out to paid providers.
	limited := cfg.RateLimiter.Handler()

	requireAuth := func(c *gin.Context) { c.Next() }
	optionalAuth := requireAuth
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
		optionalAuth = cfg.AuthMiddleware.OptionalAuth()
	}

	api := r.Group("/api")
	api.Use(optionalAuth)
	{
		// Completion
		if cfg.CompletionHandler != nil {
			api.POST("/complete", limited, cfg.CompletionHandler.Complete)
		}

		// Quiz
		if cfg.QuizHandler != nil {
			api.POST("/generate-mcqs", limited, cfg.QuizHandler.GenerateMCQs)
			api.POST("/quiz-session", cfg.QuizHandler.SubmitSession)
		}

		// Memes
		if cfg.MemeHandler != nil {
			api.POST("/generate-meme-prompt", limited, cfg.MemeHandler.GeneratePrompts)
			api.POST("/generate-meme", limited, cfg.MemeHandler.GenerateCaption)
			api.POST("/meme/render", limited, cfg.MemeHandler.Render)
			api.POST("/meme-generation", cfg.MemeHandler.SaveGeneration)
		}

		// Media
		if cfg.MediaHandler != nil {
			api.POST("/generate-gif-video", limited, cfg.MediaHandler.Resolve)
			api.POST("/generate-gif-video/batch", limited, cfg.MediaHandler.ResolveBatch)
		}

		// Extraction
		if cfg.ExtractHandler != nil {
			api.POST("/extract-url", limited, cfg.ExtractHandler.FromURL)
			api.POST("/extract-file", limited, cfg.ExtractHandler.FromFile)
		}

		// Tracking
		if cfg.TrackingHandler != nil {
			api.POST("/track-event", cfg.TrackingHandler.TrackEvent)
			api.POST("/track-session", cfg.TrackingHandler.TrackSession)
		}

		// Social (reads are public)
		if cfg.SocialHandler != nil {
			api.GET("/social/comments", cfg.SocialHandler.Comments)
		}

		// Content discovery and counters
		if cfg.ContentHandler != nil {
			api.GET("/categories", cfg.ContentHandler.Categories)
			api.GET("/trending", cfg.ContentHandler.Trending)
			api.GET("/content/by-category", cfg.ContentHandler.ByCategory)
			api.POST("/content/view", cfg.ContentHandler.TrackView)
			api.POST("/content/share", cfg.ContentHandler.TrackShare)
			api.GET("/social/feed", cfg.ContentHandler.Feed)
		}
	}

	protected := api.Group("/")
	protected.Use(requireAuth)
	{
		if cfg.UploadHandler != nil {
			protected.POST("/upload-image", limited, cfg.UploadHandler.UploadImage)
		}

		if cfg.BookmarkHandler != nil {
			protected.POST("/bookmarks/toggle", cfg.BookmarkHandler.Toggle)
			protected.GET("/bookmarks", cfg.BookmarkHandler.List)
			protected.GET("/bookmarks/check", cfg.BookmarkHandler.Check)
		}

		if cfg.SocialHandler != nil {
			protected.POST("/social/like", cfg.SocialHandler.ToggleLike)
			protected.POST("/social/comment", cfg.SocialHandler.AddComment)
		}
	}

	return r
}
