// Package completion sends chat completions through an ordered list of
// models, backing off on rate limits and switching models on anything else.
package completion

import (
	"context"
	"errors"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

var (
	// ErrAllProvidersExhausted is returned once every model has been tried.
	// The error also matches fallback.ErrExhausted and the last provider error.
	ErrAllProvidersExhausted = errors.New("all completion providers exhausted")
	// ErrNotConfigured means no API key was provided at startup.
	ErrNotConfigured = errors.New("completion backend not configured")
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Messages []Message
	// JSONMode asks the backend for a JSON object response. It has no effect
	// on retry or fallback behaviour.
	JSONMode bool
}

type Response struct {
	Text  string
	Model string
	// Attempts is every call made to produce Text, the winning one last.
	Attempts []fallback.Attempt
}

// Backend performs one call against one model.
type Backend interface {
	Complete(ctx context.Context, model string, req Request) (string, error)
	Configured() bool
}

// Completer is what services depend on.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Prompt builds the common system + user message pair.
func Prompt(system, user string, jsonMode bool) Request {
	var msgs []Message
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: user})
	return Request{Messages: msgs, JSONMode: jsonMode}
}

// IsRateLimited reports whether err is an HTTP 429 from the provider.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return httpx.StatusOf(err) == http.StatusTooManyRequests
}
