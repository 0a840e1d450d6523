package media

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/fallback"
	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

const (
	DefaultReplicateBaseURL = "https://api.replicate.com/v1"
	DefaultReplicateVersion = "beecf59c4aee8d81bf04f0381033dfa10dc16e845b4ae00d281e2fa377e48a9f"
)

type ReplicateConfig struct {
	APIToken     string
	BaseURL      string
	Version      string
	Timeout      time.Duration
	PollInterval time.Duration
	Client       *http.Client
}

// ReplicateSource runs the animate-diff text-to-video model on Replicate.
type ReplicateSource struct {
	cfg ReplicateConfig
}

func NewReplicateSource(cfg ReplicateConfig) *ReplicateSource {
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultReplicateBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultReplicateVersion
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &ReplicateSource{cfg: cfg}
}

func (s *ReplicateSource) Name() string           { return "replicate-ai" }
func (s *ReplicateSource) Generative() bool       { return true }
func (s *ReplicateSource) Timeout() time.Duration { return s.cfg.Timeout }

type replicatePrediction struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (s *ReplicateSource) Fetch(ctx context.Context, q Query) (Hit, error) {
	if s.cfg.APIToken == "" {
		return Hit{}, configDecline("credentials missing", nil)
	}
	header := http.Header{
		"Authorization": {"Bearer " + s.cfg.APIToken},
		"Prefer":        {"wait"},
	}
	body := map[string]any{
		"version": s.cfg.Version,
		"input": map[string]any{
			"prompt":              q.Prompt,
			"num_frames":          16,
			"num_inference_steps": 25,
			"guidance_scale":      7.5,
		},
	}
	var pred replicatePrediction
	if err := httpx.PostJSON(ctx, s.cfg.Client, strings.TrimRight(s.cfg.BaseURL, "/")+"/predictions", header, body, &pred); err != nil {
		return Hit{}, classifyReplicate(err)
	}
	for !terminal(pred.Status) {
		if pred.URLs.Get == "" {
			return Hit{}, unavailable("prediction has no status URL", nil)
		}
		if err := fallback.SleepContext(ctx, s.cfg.PollInterval); err != nil {
			return Hit{}, err
		}
		if err := httpx.GetJSON(ctx, s.cfg.Client, pred.URLs.Get, header, &pred); err != nil {
			return Hit{}, classifyReplicate(err)
		}
	}
	if pred.Status != "succeeded" {
		return Hit{}, unavailable("AI error", nil)
	}
	u := firstOutputURL(pred.Output)
	if u == "" {
		return Hit{}, ErrNoResults
	}
	return Hit{URL: u, Format: "mp4"}, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func classifyReplicate(err error) error {
	switch httpx.StatusOf(err) {
	case http.StatusUnauthorized:
		return configDecline("invalid API key", err)
	case http.StatusPaymentRequired:
		return configDecline("insufficient credits", err)
	case http.StatusTooManyRequests:
		return unavailable("quota exceeded", err)
	}
	if httpx.IsTimeout(err) {
		return unavailable("timed out", err)
	}
	return unavailable("AI error", err)
}

// firstOutputURL accepts a single URL string or a list of them.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}
