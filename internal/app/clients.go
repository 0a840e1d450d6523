package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/media"
	"github.com/yungbote/memequiz-backend/internal/platform/memeimage"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
	"github.com/yungbote/memequiz-backend/internal/platform/textextract"
)

type Clients struct {
	HTTP      *http.Client
	Redis     *redis.Client
	LLM       completion.Completer
	Media     *media.Resolver
	Store     storage.ObjectStore
	Renderer  *memeimage.Renderer
	Extractor *textextract.Extractor
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Per-call deadlines come from each caller's context; Timeout is only a ceiling.
	httpClient := &http.Client{Timeout: 2 * time.Minute}

	// Completion
	backend := completion.NewOpenAIBackend(completion.OpenAIConfig{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Temperature: cfg.Temperature,
		HTTPClient:  httpClient,
	})
	if !backend.Configured() {
		log.Warn("GROQ_API_KEY not set; completion endpoints will answer 503")
	}
	llm := completion.NewPipeline(log, backend, completion.PipelineConfig{
		Models:           cfg.Models,
		AttemptsPerModel: cfg.AttemptsPerModel,
		CallTimeout:      cfg.CallTimeout,
		Budget:           cfg.CompletionBudget,
		OnAttempt:        metrics.AttemptObserver("completion"),
	})

	// Media
	video, gif := media.DefaultChains(media.ChainConfig{
		CustomEndpoint:  cfg.CustomVideoEndpoint,
		CustomTimeout:   cfg.CustomVideoTimeout,
		ReplicateToken:  cfg.ReplicateToken,
		GenerateTimeout: cfg.GenerateTimeout,
		Spaces:          cfg.HFSpaces,
		TenorAPIKey:     cfg.TenorAPIKey,
		PexelsAPIKey:    cfg.PexelsAPIKey,
		Client:          httpClient,
	})
	resolver := media.NewResolver(log, video, gif, media.ResolverConfig{
		SourceTimeout: cfg.SourceTimeout,
		Budget:        cfg.ChainBudget,
		OnAttempt:     metrics.AttemptObserver("media"),
		OnResult:      func(source string) { metrics.ObserveResult("media", source) },
	})
	log.Info("Media chains ready", "video", resolver.SourceNames(media.KindVideo), "gif", resolver.SourceNames(media.KindGIF))

	// Storage
	store, err := resolveObjectStore(ctx, log, cfg.Storage)
	if err != nil {
		return Clients{}, err
	}

	// Rendering and extraction
	renderer, err := memeimage.New(cfg.MemeFontPath, 0, httpClient)
	if err != nil {
		return Clients{}, fmt.Errorf("init meme renderer: %w", err)
	}
	extractor := textextract.New(httpClient)

	// Redis
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unreachable at startup; rate limiting fails open", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
	}

	return Clients{
		HTTP:      httpClient,
		Redis:     rdb,
		LLM:       observedCompleter{next: llm, metrics: metrics},
		Media:     resolver,
		Store:     store,
		Renderer:  renderer,
		Extractor: extractor,
	}, nil
}

func (c Clients) Close() error {
	var firstErr error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if closer, ok := c.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// observedCompleter records which model answered each request.
type observedCompleter struct {
	next    completion.Completer
	metrics *observability.Metrics
}

func (o observedCompleter) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	resp, err := o.next.Complete(ctx, req)
	if err != nil {
		o.metrics.ObserveResult("completion", "exhausted")
		return resp, err
	}
	o.metrics.ObserveResult("completion", resp.Model)
	return resp, nil
}

// redisPinger adapts the redis client to the readiness check.
type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
