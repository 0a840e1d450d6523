package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/memequiz-backend/internal/observability"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/media"
)

const (
	batchConcurrency = 4
	maxBatchPrompts  = 20
)

type MediaRequest struct {
	Prompt    string `json:"prompt"`
	MemeType  string `json:"meme_type"`
	MediaKind string `json:"media_kind"`
	Index     int    `json:"index"`
}

type MediaBatchRequest struct {
	Prompts   []string `json:"prompts"`
	MemeType  string   `json:"meme_type"`
	MediaKind string   `json:"media_kind"`
	Index     int      `json:"index"`
}

// MediaResolver is satisfied by *media.Resolver.
type MediaResolver interface {
	Resolve(ctx context.Context, q media.Query) media.Resolution
}

type MediaService interface {
	Resolve(ctx context.Context, req MediaRequest) (media.Resolution, error)
	ResolveBatch(ctx context.Context, req MediaBatchRequest) ([]media.Resolution, error)
}

type mediaService struct {
	log      *logger.Logger
	resolver MediaResolver
}

func NewMediaService(baseLog *logger.Logger, resolver MediaResolver) MediaService {
	return &mediaService{log: baseLog.With("service", "MediaService"), resolver: resolver}
}

func (s *mediaService) Resolve(ctx context.Context, req MediaRequest) (media.Resolution, error) {
	kind, err := requestKind(req.MediaKind, req.MemeType)
	if err != nil {
		return media.Resolution{}, err
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return media.Resolution{}, apierr.BadRequest("missing_prompt", fmt.Errorf("prompt is required"))
	}
	ctx, span := observability.StartSpan(ctx, "media.resolve",
		attribute.String("media.kind", string(kind)),
		attribute.Int("media.index", req.Index),
	)
	defer span.End()

	res := s.resolver.Resolve(ctx, media.Query{Prompt: prompt, Kind: kind, Index: req.Index})
	span.SetAttributes(attribute.String("media.source", res.Source), attribute.Int("media.notes", len(res.Notes)))
	if res.Failed() {
		s.log.Warn("Media chain exhausted", "kind", kind, "notes", len(res.Notes))
	}
	return res, nil
}

// ResolveBatch resolves every prompt concurrently; prompt i uses Index+i so a
// batch on one topic spreads across search results.
func (s *mediaService) ResolveBatch(ctx context.Context, req MediaBatchRequest) ([]media.Resolution, error) {
	kind, err := requestKind(req.MediaKind, req.MemeType)
	if err != nil {
		return nil, err
	}
	if len(req.Prompts) == 0 {
		return nil, apierr.BadRequest("missing_prompts", fmt.Errorf("prompts is required"))
	}
	if len(req.Prompts) > maxBatchPrompts {
		return nil, apierr.BadRequest("too_many_prompts", fmt.Errorf("at most %d prompts per batch", maxBatchPrompts))
	}

	ctx, span := observability.StartSpan(ctx, "media.resolve_batch",
		attribute.String("media.kind", string(kind)),
		attribute.Int("media.prompts", len(req.Prompts)),
	)
	defer span.End()

	results := make([]media.Resolution, len(req.Prompts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, p := range req.Prompts {
		prompt := strings.TrimSpace(p)
		if prompt == "" {
			results[i] = media.Resolution{Kind: kind, Error: "empty prompt", FallbackURL: media.PlaceholderURL(kind, "")}
			continue
		}
		g.Go(func() error {
			results[i] = s.resolver.Resolve(gctx, media.Query{Prompt: prompt, Kind: kind, Index: req.Index + i})
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func requestKind(kind, memeType string) (media.Kind, error) {
	k, err := media.ParseKind(firstNonEmpty(kind, memeType))
	if err != nil {
		return "", apierr.BadRequest("invalid_media_kind", err)
	}
	return k, nil
}
