package media

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

const (
	DefaultPexelsBaseURL = "https://api.pexels.com"
	pexelsMaxWidth       = 640
)

type PexelsConfig struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type PexelsSource struct {
	cfg PexelsConfig
}

func NewPexelsSource(cfg PexelsConfig) *PexelsSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPexelsBaseURL
	}
	return &PexelsSource{cfg: cfg}
}

func (s *PexelsSource) Name() string { return "pexels" }

type pexelsFile struct {
	Link  string `json:"link"`
	Width int    `json:"width"`
}

type pexelsSearchResponse struct {
	Videos []struct {
		VideoFiles []pexelsFile `json:"video_files"`
	} `json:"videos"`
}

func (s *PexelsSource) Fetch(ctx context.Context, q Query) (Hit, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return Hit{}, configDecline("credentials missing", nil)
	}
	params := url.Values{}
	params.Set("query", q.Keywords)
	params.Set("per_page", "10")
	params.Set("page", "1")

	var out pexelsSearchResponse
	header := http.Header{"Authorization": {s.cfg.APIKey}}
	if err := httpx.GetJSON(ctx, s.cfg.Client, strings.TrimRight(s.cfg.BaseURL, "/")+"/videos/search?"+params.Encode(), header, &out); err != nil {
		return Hit{}, err
	}
	if len(out.Videos) == 0 {
		return Hit{}, ErrNoResults
	}
	link := smallestRendition(pick(out.Videos, q.Index).VideoFiles)
	if link == "" {
		return Hit{}, unavailable("video without files", nil)
	}
	return Hit{URL: link, Format: "mp4"}, nil
}

// smallestRendition prefers the narrowest file no wider than 640px and
// otherwise returns the first file.
func smallestRendition(files []pexelsFile) string {
	if len(files) == 0 {
		return ""
	}
	sorted := append([]pexelsFile(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Width < sorted[j].Width })
	for _, f := range sorted {
		if f.Width > 0 && f.Width <= pexelsMaxWidth && f.Link != "" {
			return f.Link
		}
	}
	return files[0].Link
}
