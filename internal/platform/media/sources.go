package media

import (
	"net/http"
	"time"
)

type ChainConfig struct {
	CustomEndpoint   string
	CustomTimeout    time.Duration
	ReplicateToken   string
	ReplicateBaseURL string
	GenerateTimeout  time.Duration
	Spaces           []Space
	TenorAPIKey      string
	TenorBaseURL     string
	PexelsAPIKey     string
	PexelsBaseURL    string
	Client           *http.Client
}

// DefaultChains builds the video and GIF source lists in priority order.
// The custom endpoint is only part of the video chain when configured.
func DefaultChains(cfg ChainConfig) (video, gif []Source) {
	if cfg.CustomEndpoint != "" {
		video = append(video, NewCustomSource(cfg.CustomEndpoint, cfg.CustomTimeout, cfg.Client))
	}
	video = append(video,
		NewReplicateSource(ReplicateConfig{
			APIToken: cfg.ReplicateToken,
			BaseURL:  cfg.ReplicateBaseURL,
			Timeout:  cfg.GenerateTimeout,
			Client:   cfg.Client,
		}),
		NewHFSpaceSource(cfg.Spaces, cfg.GenerateTimeout, cfg.Client),
		NewTenorSource(TenorConfig{APIKey: cfg.TenorAPIKey, BaseURL: cfg.TenorBaseURL, Format: "mp4", Client: cfg.Client}),
		NewPexelsSource(PexelsConfig{APIKey: cfg.PexelsAPIKey, BaseURL: cfg.PexelsBaseURL, Client: cfg.Client}),
		NewTenorSource(TenorConfig{APIKey: cfg.TenorAPIKey, BaseURL: cfg.TenorBaseURL, Format: "gif", Fallback: true, Client: cfg.Client}),
	)
	gif = []Source{
		NewTenorSource(TenorConfig{APIKey: cfg.TenorAPIKey, BaseURL: cfg.TenorBaseURL, Format: "gif", Client: cfg.Client}),
	}
	return video, gif
}
