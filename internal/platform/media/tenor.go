package media

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

const DefaultTenorBaseURL = "https://tenor.googleapis.com/v2"

type TenorConfig struct {
	APIKey  string
	BaseURL string
	// Format is the media_formats entry to read: "gif" or "mp4".
	Format string
	// Fallback marks this source as a stand-in for real video.
	Fallback bool
	Client   *http.Client
}

type TenorSource struct {
	cfg TenorConfig
}

func NewTenorSource(cfg TenorConfig) *TenorSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTenorBaseURL
	}
	if cfg.Format == "" {
		cfg.Format = "gif"
	}
	return &TenorSource{cfg: cfg}
}

// Name distinguishes the GIF stand-in stage of the video chain from a plain
// Tenor search.
func (s *TenorSource) Name() string {
	if s.cfg.Fallback {
		return "tenor-gif"
	}
	return "tenor"
}

type tenorSearchResponse struct {
	Results []struct {
		MediaFormats map[string]struct {
			URL string `json:"url"`
		} `json:"media_formats"`
	} `json:"results"`
}

func (s *TenorSource) Fetch(ctx context.Context, q Query) (Hit, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return Hit{}, configDecline("credentials missing", nil)
	}
	params := url.Values{}
	params.Set("q", q.Keywords)
	params.Set("key", s.cfg.APIKey)
	params.Set("limit", strconv.Itoa(10))
	params.Set("media_filter", s.cfg.Format)
	if s.cfg.Format == "mp4" {
		params.Set("contentfilter", "medium")
	}

	var out tenorSearchResponse
	if err := httpx.GetJSON(ctx, s.cfg.Client, strings.TrimRight(s.cfg.BaseURL, "/")+"/search?"+params.Encode(), nil, &out); err != nil {
		return Hit{}, err
	}
	var urls []string
	for _, r := range out.Results {
		urls = append(urls, r.MediaFormats[s.cfg.Format].URL)
	}
	if len(urls) == 0 {
		return Hit{}, ErrNoResults
	}
	u := pick(urls, q.Index)
	if u == "" {
		return Hit{}, unavailable("result without "+s.cfg.Format+" rendition", nil)
	}
	hit := Hit{URL: u, Format: s.cfg.Format}
	if s.cfg.Fallback {
		hit.LowerFidelity = true
		hit.Note = "Showing animated GIF (video not found)"
	}
	return hit, nil
}
