package media

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

// CustomSource calls a self-hosted text-to-video endpoint that accepts
// {"prompt"} and answers {"url"}.
type CustomSource struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewCustomSource(endpoint string, timeout time.Duration, client *http.Client) *CustomSource {
	return &CustomSource{endpoint: strings.TrimSpace(endpoint), timeout: timeout, client: client}
}

func (s *CustomSource) Name() string           { return "custom-hosted" }
func (s *CustomSource) Generative() bool       { return true }
func (s *CustomSource) Timeout() time.Duration { return s.timeout }

func (s *CustomSource) Fetch(ctx context.Context, q Query) (Hit, error) {
	if s.endpoint == "" {
		return Hit{}, configDecline("endpoint not configured", nil)
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := httpx.PostJSON(ctx, s.client, s.endpoint, nil, map[string]string{"prompt": q.Prompt}, &out); err != nil {
		return Hit{}, unavailable("custom model failed", err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return Hit{}, ErrNoResults
	}
	return Hit{URL: out.URL, Format: "mp4"}, nil
}
