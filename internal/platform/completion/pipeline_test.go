package completion

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

type scriptedBackend struct {
	mu      sync.Mutex
	errs    map[string]error
	replies map[string]string
	calls   map[string]int
	lastReq Request
}

func newScripted() *scriptedBackend {
	return &scriptedBackend{errs: map[string]error{}, replies: map[string]string{}, calls: map[string]int{}}
}

func (b *scriptedBackend) Configured() bool { return true }

func (b *scriptedBackend) Complete(_ context.Context, model string, req Request) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[model]++
	b.lastReq = req
	if err := b.errs[model]; err != nil {
		return "", err
	}
	return b.replies[model], nil
}

func rateLimit() error {
	return &goopenai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "rate limit reached"}
}

func newTestPipeline(b Backend, models []string, waits *[]time.Duration) *Pipeline {
	return NewPipeline(nil, b, PipelineConfig{
		Models: models,
		Rand:   func() float64 { return 0.25 },
		Sleep: func(_ context.Context, d time.Duration) error {
			*waits = append(*waits, d)
			return nil
		},
	})
}

func TestCompleteFallsThroughRateLimitedModels(t *testing.T) {
	b := newScripted()
	b.errs["m1"] = rateLimit()
	b.errs["m2"] = rateLimit()
	b.replies["m3"] = `{"ok":true}`
	var waits []time.Duration
	p := newTestPipeline(b, []string{"m1", "m2", "m3", "m4"}, &waits)

	resp, err := p.Complete(context.Background(), Prompt("sys", "hi", true))

	require.NoError(t, err)
	assert.Equal(t, "m3", resp.Model)
	assert.Equal(t, `{"ok":true}`, resp.Text)
	assert.Equal(t, 3, b.calls["m1"])
	assert.Equal(t, 3, b.calls["m2"])
	assert.Equal(t, 1, b.calls["m3"])
	assert.Zero(t, b.calls["m4"])
	assert.Equal(t, []time.Duration{
		1250 * time.Millisecond, 2250 * time.Millisecond,
		1250 * time.Millisecond, 2250 * time.Millisecond,
	}, waits)
	assert.True(t, b.lastReq.JSONMode)
	require.Len(t, resp.Attempts, 7)
	assert.Equal(t, "m3", resp.Attempts[6].Candidate)
	assert.Equal(t, fallback.OutcomeSuccess, resp.Attempts[6].Outcome)
}

func TestCompleteExhaustsAfterThreeAttemptsPerModel(t *testing.T) {
	b := newScripted()
	models := []string{"a", "b", "c", "d"}
	for _, m := range models {
		b.errs[m] = rateLimit()
	}
	var waits []time.Duration
	p := newTestPipeline(b, models, &waits)

	_, err := p.Complete(context.Background(), Prompt("", "hi", false))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
	assert.ErrorIs(t, err, fallback.ErrExhausted)
	total := 0
	for _, m := range models {
		total += b.calls[m]
	}
	assert.Equal(t, 12, total)
}

func TestCompleteFatalErrorSwitchesImmediately(t *testing.T) {
	b := newScripted()
	b.errs["solo"] = &goopenai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "model decommissioned"}
	var waits []time.Duration
	p := newTestPipeline(b, []string{"solo"}, &waits)

	_, err := p.Complete(context.Background(), Prompt("", "hi", false))

	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
	assert.Equal(t, 1, b.calls["solo"])
	assert.Empty(t, waits)
}

func TestCompleteEmptyTextStillWins(t *testing.T) {
	b := newScripted()
	b.replies["first"] = ""
	var waits []time.Duration
	p := newTestPipeline(b, []string{"first", "second"}, &waits)

	resp, err := p.Complete(context.Background(), Prompt("", "hi", false))

	require.NoError(t, err)
	assert.Equal(t, "first", resp.Model)
	assert.Zero(t, b.calls["second"])
}

type unconfigured struct{ scriptedBackend }

func (*unconfigured) Configured() bool { return false }

func TestCompleteNotConfigured(t *testing.T) {
	p := NewPipeline(nil, &unconfigured{}, PipelineConfig{})
	_, err := p.Complete(context.Background(), Prompt("", "hi", false))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, DefaultModels, p.Models())
}

func TestCompleteCancelledContextIsNotExhaustion(t *testing.T) {
	b := newScripted()
	b.errs["m1"] = rateLimit()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(nil, b, PipelineConfig{
		Models: []string{"m1", "m2"},
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	})

	_, err := p.Complete(ctx, Prompt("", "hi", false))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAllProvidersExhausted)
	assert.Zero(t, b.calls["m2"])
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(rateLimit()))
	assert.True(t, IsRateLimited(&goopenai.RequestError{HTTPStatusCode: 429, Err: errors.New("x")}))
	assert.True(t, IsRateLimited(&httpx.StatusError{StatusCode: 429}))
	assert.False(t, IsRateLimited(&goopenai.APIError{HTTPStatusCode: 500}))
	assert.False(t, IsRateLimited(errors.New("429 in the message only")))
	assert.False(t, IsRateLimited(nil))
}

type hangingBackend struct {
	mu    sync.Mutex
	calls int
}

func (b *hangingBackend) Configured() bool { return true }

func (b *hangingBackend) Complete(ctx context.Context, _ string, _ Request) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-ctx.Done()
	return "", ctx.Err()
}

func TestCompleteStopsAtBudget(t *testing.T) {
	b := &hangingBackend{}
	p := NewPipeline(nil, b, PipelineConfig{
		Models:      []string{"a", "b", "c", "d"},
		CallTimeout: 100 * time.Millisecond,
		Budget:      250 * time.Millisecond,
	})

	start := time.Now()
	_, err := p.Complete(context.Background(), Prompt("", "hi", false))
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 350*time.Millisecond)
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 3, b.calls)
}

func TestPipelineDefaults(t *testing.T) {
	p := NewPipeline(nil, newScripted(), PipelineConfig{})
	assert.Equal(t, DefaultBudget, p.cfg.Budget)
	assert.LessOrEqual(t, p.cfg.CallTimeout, 15*time.Second)
}
