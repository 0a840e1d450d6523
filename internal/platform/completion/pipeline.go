package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

// DefaultModels is the priority order used when nothing is configured.
var DefaultModels = []string{
	"llama-3.3-70b-versatile",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
	"llama-3.1-8b-instant",
}

const (
	DefaultAttemptsPerModel = 3
	DefaultCallTimeout      = 15 * time.Second
	DefaultBudget           = 45 * time.Second
)

type PipelineConfig struct {
	Models           []string
	AttemptsPerModel int
	CallTimeout      time.Duration
	// Budget caps one Complete call across every model, backoff included.
	Budget time.Duration
	// BackoffUnit scales the 2^attempt + jitter pause after a rate limit.
	BackoffUnit time.Duration
	Rand        func() float64
	Sleep       func(ctx context.Context, d time.Duration) error
	OnAttempt   func(fallback.Attempt)
}

type Pipeline struct {
	log     *logger.Logger
	backend Backend
	cfg     PipelineConfig
}

func NewPipeline(log *logger.Logger, backend Backend, cfg PipelineConfig) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	if len(cfg.Models) == 0 {
		cfg.Models = append([]string(nil), DefaultModels...)
	}
	if cfg.AttemptsPerModel <= 0 {
		cfg.AttemptsPerModel = DefaultAttemptsPerModel
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	return &Pipeline{
		log:     log.With("service", "CompletionPipeline"),
		backend: backend,
		cfg:     cfg,
	}
}

func (p *Pipeline) Models() []string { return append([]string(nil), p.cfg.Models...) }

// Complete returns the first response any model produces, with the model
// that produced it.
func (p *Pipeline) Complete(ctx context.Context, req Request) (Response, error) {
	if p.backend == nil || !p.backend.Configured() {
		return Response{}, ErrNotConfigured
	}

	candidates := make([]fallback.Candidate[string], 0, len(p.cfg.Models))
	for _, model := range p.cfg.Models {
		model := model
		candidates = append(candidates, fallback.Candidate[string]{
			Name: model,
			Invoke: func(ctx context.Context) (string, error) {
				callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
				defer cancel()
				return p.backend.Complete(callCtx, model, req)
			},
		})
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Budget)
	defer cancel()

	res, err := fallback.Run(runCtx, candidates, fallback.Policy{
		MaxAttempts: p.cfg.AttemptsPerModel,
		Retryable:   IsRateLimited,
		Backoff:     fallback.ExponentialJitter(p.cfg.BackoffUnit, p.cfg.Rand),
		Sleep:       p.cfg.Sleep,
		OnAttempt:   p.observe,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, err
		}
		if runCtx.Err() != nil {
			p.log.Error("Completion budget spent", "budget", p.cfg.Budget, "attempts", len(res.Attempts))
			return Response{}, fmt.Errorf("%w: budget %s spent: %w", ErrAllProvidersExhausted, p.cfg.Budget, err)
		}
		p.log.Error("All completion models failed", "models", len(p.cfg.Models), "attempts", len(res.Attempts), "error", err)
		return Response{}, fmt.Errorf("%w: %w", ErrAllProvidersExhausted, err)
	}
	if len(res.Attempts) > 1 {
		p.log.Info("Completion served by fallback model", "model", res.Candidate, "attempts", len(res.Attempts))
	}
	return Response{Text: res.Value, Model: res.Candidate, Attempts: res.Attempts}, nil
}

func (p *Pipeline) observe(a fallback.Attempt) {
	switch a.Outcome {
	case fallback.OutcomeRetryable:
		p.log.Warn("Completion rate limited", "model", a.Candidate, "attempt", a.Number, "of", p.cfg.AttemptsPerModel)
	case fallback.OutcomeFatal:
		p.log.Warn("Completion model failed, switching", "model", a.Candidate, "attempt", a.Number, "error", a.Err)
	}
	if p.cfg.OnAttempt != nil {
		p.cfg.OnAttempt(a)
	}
}
