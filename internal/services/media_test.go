package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/media"
)

type recordingResolver struct {
	mu      sync.Mutex
	queries []media.Query
}

func (r *recordingResolver) Resolve(_ context.Context, q media.Query) media.Resolution {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	if q.Prompt == "nothing" {
		return media.Resolution{Kind: q.Kind, Error: "GIF search failed", FallbackURL: media.PlaceholderURL(q.Kind, q.Prompt)}
	}
	return media.Resolution{URL: "https://media.example/" + q.Prompt, Kind: q.Kind, Source: "tenor", Format: "gif"}
}

func TestMediaResolveValidates(t *testing.T) {
	svc := NewMediaService(logger.Nop(), &recordingResolver{})

	_, err := svc.Resolve(context.Background(), MediaRequest{Prompt: "x", MediaKind: "hologram"})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid_media_kind", ae.Code)

	_, err = svc.Resolve(context.Background(), MediaRequest{Prompt: "   "})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "missing_prompt", ae.Code)
}

func TestMediaResolvePrefersMediaKind(t *testing.T) {
	rr := &recordingResolver{}
	svc := NewMediaService(logger.Nop(), rr)

	res, err := svc.Resolve(context.Background(), MediaRequest{Prompt: "cat", MemeType: "gif", MediaKind: "video", Index: 3})
	require.NoError(t, err)
	assert.Equal(t, media.KindVideo, res.Kind)
	require.Len(t, rr.queries, 1)
	assert.Equal(t, 3, rr.queries[0].Index)

	res, err = svc.Resolve(context.Background(), MediaRequest{Prompt: "nothing"})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, media.KindGIF, res.Kind)
}

func TestMediaBatchOffsetsIndex(t *testing.T) {
	rr := &recordingResolver{}
	svc := NewMediaService(logger.Nop(), rr)

	prompts := []string{"a", "b", "", "d", "e", "f"}
	out, err := svc.ResolveBatch(context.Background(), MediaBatchRequest{Prompts: prompts, MediaKind: "gif", Index: 10})
	require.NoError(t, err)
	require.Len(t, out, len(prompts))
	assert.Equal(t, "https://media.example/a", out[0].URL)
	assert.Equal(t, "https://media.example/f", out[5].URL)
	assert.True(t, out[2].Failed())

	byPrompt := map[string]int{}
	for _, q := range rr.queries {
		byPrompt[q.Prompt] = q.Index
	}
	assert.Equal(t, map[string]int{"a": 10, "b": 11, "d": 13, "e": 14, "f": 15}, byPrompt)

	idx := make([]int, 0, len(rr.queries))
	for _, q := range rr.queries {
		idx = append(idx, q.Index)
	}
	sort.Ints(idx)
	assert.Equal(t, []int{10, 11, 13, 14, 15}, idx)

	_, err = svc.ResolveBatch(context.Background(), MediaBatchRequest{})
	assert.Error(t, err)
	_, err = svc.ResolveBatch(context.Background(), MediaBatchRequest{Prompts: make([]string, maxBatchPrompts+1)})
	assert.Error(t, err)
}
