package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
)

// scriptedLLM replays replies in order; once they run out it returns err.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	model   string
	calls   []completion.Request
}

func (s *scriptedLLM) Complete(_ context.Context, req completion.Request) (completion.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if len(s.replies) == 0 {
		if s.err == nil {
			return completion.Response{}, completion.ErrAllProvidersExhausted
		}
		return completion.Response{}, s.err
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	model := s.model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return completion.Response{Text: r, Model: model}, nil
}

func userCtx(id uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID:    id,
		ClientIP:  "203.0.113.9",
		UserAgent: "go-test",
	})
}
