package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

// upstream fakes every third-party API the chain talks to.
type upstream struct {
	mu         sync.Mutex
	tenorGIF   []string
	tenorMP4   []string
	pexels     [][]pexelsFile
	tenorQuery []string

	replicateStatus int
	replicateCalls  atomic.Int32
	spaceCalls      atomic.Int32
	spaceStream     string
}

func (u *upstream) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/tenor/search", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		format := r.URL.Query().Get("media_filter")
		u.tenorQuery = append(u.tenorQuery, r.URL.Query().Get("q"))
		src := u.tenorGIF
		if format == "mp4" {
			src = u.tenorMP4
		}
		var results []map[string]any
		for _, link := range src {
			results = append(results, map[string]any{
				"media_formats": map[string]any{format: map[string]string{"url": link}},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	mux.HandleFunc("/pexels/videos/search", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		defer u.mu.Unlock()
		var videos []map[string]any
		for _, files := range u.pexels {
			videos = append(videos, map[string]any{"video_files": files})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"videos": videos})
	})
	mux.HandleFunc("/replicate/predictions", func(w http.ResponseWriter, r *http.Request) {
		u.replicateCalls.Add(1)
		if u.replicateStatus != 0 {
			w.WriteHeader(u.replicateStatus)
			fmt.Fprint(w, `{"detail":"nope"}`)
			return
		}
		fmt.Fprint(w, `{"status":"succeeded","output":["https://replicate.delivery/out.mp4"]}`)
	})
	mux.HandleFunc("/space/gradio_api/call/video", func(w http.ResponseWriter, r *http.Request) {
		u.spaceCalls.Add(1)
		if u.spaceStream == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"event_id":"ev1"}`)
	})
	mux.HandleFunc("/space/gradio_api/call/video/ev1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, u.spaceStream)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (u *upstream) queries() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.tenorQuery...)
}

func newTestResolver(t *testing.T, u *upstream, mutate func(*ChainConfig)) *Resolver {
	srv := u.server(t)
	cfg := ChainConfig{
		ReplicateBaseURL: srv.URL + "/replicate",
		Spaces:           []Space{{ID: "test/space", APIName: "/video", BaseURL: srv.URL + "/space"}},
		TenorAPIKey:      "tenor-key",
		TenorBaseURL:     srv.URL + "/tenor",
		PexelsAPIKey:     "pexels-key",
		PexelsBaseURL:    srv.URL + "/pexels",
		Client:           srv.Client(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	video, gif := DefaultChains(cfg)
	return NewResolver(nil, video, gif, ResolverConfig{})
}

func gifURLs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://media.tenor.com/gif-%d.gif", i)
	}
	return out
}

func TestResolveGIFIndexWrapsAroundResults(t *testing.T) {
	u := &upstream{tenorGIF: gifURLs(5)}
	r := newTestResolver(t, u, nil)

	res := r.Resolve(context.Background(), Query{Prompt: "cat falling off a table", Kind: KindGIF, Index: 7})

	require.False(t, res.Failed())
	assert.Equal(t, "https://media.tenor.com/gif-2.gif", res.URL)
	assert.Equal(t, "tenor", res.Source)
	assert.Equal(t, KindGIF, res.Kind)
	assert.Equal(t, "gif", res.Format)
	assert.Equal(t, []string{"cat falling off a table"}, u.queries())
}

func TestResolveIsIdempotentAndCycles(t *testing.T) {
	u := &upstream{tenorGIF: gifURLs(3)}
	r := newTestResolver(t, u, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		first := r.Resolve(ctx, Query{Prompt: "deploy on friday", Kind: KindGIF, Index: i})
		second := r.Resolve(ctx, Query{Prompt: "deploy on friday", Kind: KindGIF, Index: i})
		assert.Equal(t, first, second)
		assert.Equal(t, fmt.Sprintf("https://media.tenor.com/gif-%d.gif", i%3), first.URL)
	}
}

func TestResolveGIFPlaceholderWhenSearchFails(t *testing.T) {
	u := &upstream{}
	r := newTestResolver(t, u, nil)

	res := r.Resolve(context.Background(), Query{Prompt: "nothing matches", Kind: KindGIF})

	assert.True(t, res.Failed())
	assert.Equal(t, "GIF search failed", res.Error)
	assert.Equal(t, "https://image.pollinations.ai/prompt/nothing%20matches", res.FallbackURL)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, Note{Source: "tenor", Kind: NoteUnavailable, Reason: "no results"}, res.Notes[0])
}

func TestResolveVideoWithoutCredentialsSkipsPaidSources(t *testing.T) {
	u := &upstream{tenorMP4: []string{"https://media.tenor.com/a.mp4", "https://media.tenor.com/b.mp4"}}
	r := newTestResolver(t, u, func(c *ChainConfig) {
		c.CustomEndpoint = ""
		c.ReplicateToken = ""
	})

	res := r.Resolve(context.Background(), Query{Prompt: "a funny video of a cat falling off the table", Kind: KindVideo, Index: 3})

	require.False(t, res.Failed())
	assert.Equal(t, "tenor", res.Source)
	assert.Equal(t, "mp4", res.Format)
	assert.Equal(t, "https://media.tenor.com/b.mp4", res.URL)
	assert.Zero(t, u.replicateCalls.Load())
	assert.NotContains(t, r.SourceNames(KindVideo), "custom-hosted")
	assert.Contains(t, res.Note, "replicate-ai: credentials missing")
	assert.Contains(t, res.Note, "huggingface-space")
	assert.Contains(t, res.Notes, Note{Source: "replicate-ai", Kind: NoteConfig, Reason: "credentials missing"})
	assert.Equal(t, []string{"cat falling off table"}, u.queries())
}

func TestResolveVideoPrefersReplicateWhenConfigured(t *testing.T) {
	u := &upstream{tenorMP4: []string{"https://media.tenor.com/a.mp4"}}
	r := newTestResolver(t, u, func(c *ChainConfig) { c.ReplicateToken = "r8_test" })

	res := r.Resolve(context.Background(), Query{Prompt: "robot dancing", Kind: KindVideo})

	assert.Equal(t, "replicate-ai", res.Source)
	assert.Equal(t, "https://replicate.delivery/out.mp4", res.URL)
	assert.Empty(t, res.Note)
	assert.Zero(t, u.spaceCalls.Load())
}

func TestResolveVideoReplicateOutOfCredits(t *testing.T) {
	u := &upstream{replicateStatus: http.StatusPaymentRequired, tenorMP4: []string{"https://media.tenor.com/a.mp4"}}
	r := newTestResolver(t, u, func(c *ChainConfig) { c.ReplicateToken = "r8_test" })

	res := r.Resolve(context.Background(), Query{Prompt: "robot dancing", Kind: KindVideo})

	assert.Equal(t, "tenor", res.Source)
	assert.Contains(t, res.Notes, Note{Source: "replicate-ai", Kind: NoteConfig, Reason: "insufficient credits"})
	assert.True(t, strings.HasPrefix(res.Note, "AI generation unavailable (replicate-ai: insufficient credits)."))
}

func TestResolveVideoFromHFSpaceFilePath(t *testing.T) {
	u := &upstream{spaceStream: "event: generating\ndata: null\n\nevent: complete\ndata: [{\"video\":{\"path\":\"/tmp/gradio/out.mp4\"}}]\n\n"}
	r := newTestResolver(t, u, nil)

	res := r.Resolve(context.Background(), Query{Prompt: "robot dancing", Kind: KindVideo})

	require.Equal(t, "huggingface-space", res.Source)
	assert.True(t, strings.HasSuffix(res.URL, "/space/gradio_api/file=/tmp/gradio/out.mp4"), res.URL)
}

func TestResolveVideoFallsBackToPexelsThenGIF(t *testing.T) {
	u := &upstream{pexels: [][]pexelsFile{
		{{Link: "https://pexels/hd.mp4", Width: 1920}, {Link: "https://pexels/sd.mp4", Width: 640}, {Link: "https://pexels/tiny.mp4", Width: 320}},
	}}
	r := newTestResolver(t, u, nil)

	res := r.Resolve(context.Background(), Query{Prompt: "ocean waves", Kind: KindVideo})
	assert.Equal(t, "pexels", res.Source)
	assert.Equal(t, "https://pexels/tiny.mp4", res.URL)

	u.mu.Lock()
	u.pexels = nil
	u.tenorGIF = gifURLs(2)
	u.mu.Unlock()
	res = r.Resolve(context.Background(), Query{Prompt: "ocean waves", Kind: KindVideo, Index: 1})
	assert.Equal(t, "tenor-gif", res.Source)
	assert.Equal(t, KindVideo, res.Kind)
	assert.Equal(t, "gif", res.Format)
	assert.True(t, res.LowerFidelity)
	assert.True(t, strings.HasPrefix(res.Note, "Showing animated GIF (video not found). "), res.Note)
}

func TestResolveVideoPlaceholderWhenEverythingFails(t *testing.T) {
	u := &upstream{}
	r := newTestResolver(t, u, func(c *ChainConfig) { c.PexelsAPIKey = "" })

	res := r.Resolve(context.Background(), Query{Prompt: "cat", Kind: KindVideo})

	assert.True(t, res.Failed())
	assert.Equal(t, "Video search failed. Try different keywords.", res.Error)
	assert.Equal(t, PlaceholderURL(KindVideo, "cat"), res.FallbackURL)
	assert.Len(t, res.Notes, 5)
	assert.Contains(t, res.Notes, Note{Source: "pexels", Kind: NoteConfig, Reason: "credentials missing"})
}

func TestResolveVideoTenorStagesNotedSeparately(t *testing.T) {
	u := &upstream{}
	r := newTestResolver(t, u, func(c *ChainConfig) {
		c.TenorAPIKey = ""
		c.PexelsAPIKey = ""
	})

	res := r.Resolve(context.Background(), Query{Prompt: "cat", Kind: KindVideo})

	assert.Equal(t, []string{"replicate-ai", "huggingface-space", "tenor", "pexels", "tenor-gif"}, r.SourceNames(KindVideo))
	assert.Contains(t, res.Notes, Note{Source: "tenor", Kind: NoteConfig, Reason: "credentials missing"})
	assert.Contains(t, res.Notes, Note{Source: "tenor-gif", Kind: NoteConfig, Reason: "credentials missing"})
	seen := map[string]int{}
	for _, n := range res.Notes {
		seen[n.Source]++
	}
	for src, n := range seen {
		assert.Equal(t, 1, n, src)
	}
}

type stuckSource struct{}

func (stuckSource) Name() string { return "stuck" }
func (stuckSource) Fetch(ctx context.Context, _ Query) (Hit, error) {
	<-ctx.Done()
	return Hit{}, ctx.Err()
}

type panicSource struct{}

func (panicSource) Name() string                              { return "panicky" }
func (panicSource) Fetch(context.Context, Query) (Hit, error) { panic("boom") }

type fixedSource struct{ url string }

func (f fixedSource) Name() string { return "fixed" }
func (f fixedSource) Fetch(context.Context, Query) (Hit, error) {
	return Hit{URL: f.url, Format: "gif"}, nil
}

func TestResolveBudgetSkipsRemainingSources(t *testing.T) {
	r := NewResolver(nil, nil, []Source{stuckSource{}, fixedSource{url: "late"}}, ResolverConfig{
		SourceTimeout: time.Minute,
		Budget:        30 * time.Millisecond,
	})

	start := time.Now()
	res := r.Resolve(context.Background(), Query{Prompt: "slow", Kind: KindGIF})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.FallbackURL)
}

func TestResolveSourceTimeoutAdvances(t *testing.T) {
	var seen []string
	r := NewResolver(nil, nil, []Source{stuckSource{}, panicSource{}, fixedSource{url: "ok"}}, ResolverConfig{
		SourceTimeout: 20 * time.Millisecond,
		OnResult:      func(s string) { seen = append(seen, s) },
	})

	res := r.Resolve(context.Background(), Query{Prompt: "x", Kind: KindGIF})

	assert.Equal(t, "ok", res.URL)
	assert.Equal(t, []string{"fixed"}, seen)
	assert.Equal(t, []Note{
		{Source: "stuck", Kind: NoteUnavailable, Reason: "timed out"},
		{Source: "panicky", Kind: NoteUnavailable, Reason: "source panicked"},
	}, res.Notes)
}

func TestComposeNote(t *testing.T) {
	assert.Equal(t, "", composeNote("", nil))
	assert.Equal(t, "Showing animated GIF (video not found)", composeNote("Showing animated GIF (video not found)", nil))
	assert.Equal(t,
		"AI generation unavailable (replicate-ai: credentials missing). AI generation failed (huggingface-space: all spaces unavailable). Showing related video.",
		composeNote("", []Note{
			{Source: "replicate-ai", Kind: NoteConfig, Reason: "credentials missing"},
			{Source: "huggingface-space", Kind: NoteUnavailable, Reason: "all spaces unavailable"},
		}))
}

func TestNoteForUpstreamStatus(t *testing.T) {
	cases := []struct {
		code int
		kind NoteKind
		want string
	}{
		{http.StatusForbidden, NoteConfig, "invalid API key"},
		{http.StatusTooManyRequests, NoteUnavailable, "quota exceeded"},
		{http.StatusServiceUnavailable, NoteUnavailable, "temporarily unavailable (status 503)"},
		{http.StatusRequestTimeout, NoteUnavailable, "temporarily unavailable (status 408)"},
		{http.StatusNotFound, NoteUnavailable, "upstream status 404"},
	}
	for _, tc := range cases {
		n := noteFor("pexels", fmt.Errorf("search: %w", &httpx.StatusError{StatusCode: tc.code}))
		assert.Equal(t, Note{Source: "pexels", Kind: tc.kind, Reason: tc.want}, n, tc.code)
	}
}
