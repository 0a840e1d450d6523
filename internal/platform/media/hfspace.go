package media

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

// Space is one public Gradio app and the endpoint that turns text into video.
type Space struct {
	ID      string `yaml:"id"`
	APIName string `yaml:"api_name"`
	// BaseURL overrides the *.hf.space host derived from ID.
	BaseURL string `yaml:"base_url"`
}

var DefaultSpaces = []Space{
	{ID: "multimodalart/stable-video-diffusion", APIName: "/video"},
	{ID: "fffiloni/text-to-video", APIName: "/predict"},
}

func (sp Space) base() string {
	if sp.BaseURL != "" {
		return strings.TrimRight(sp.BaseURL, "/")
	}
	host := strings.NewReplacer("/", "-", ".", "-", "_", "-").Replace(strings.ToLower(sp.ID))
	return "https://" + host + ".hf.space"
}

// HFSpaceSource tries each configured space in order and takes the first
// URL or file any of them produces.
type HFSpaceSource struct {
	spaces  []Space
	timeout time.Duration
	client  *http.Client
}

func NewHFSpaceSource(spaces []Space, timeout time.Duration, client *http.Client) *HFSpaceSource {
	if len(spaces) == 0 {
		spaces = DefaultSpaces
	}
	return &HFSpaceSource{spaces: spaces, timeout: timeout, client: client}
}

func (s *HFSpaceSource) Name() string           { return "huggingface-space" }
func (s *HFSpaceSource) Generative() bool       { return true }
func (s *HFSpaceSource) Timeout() time.Duration { return s.timeout }

func (s *HFSpaceSource) Fetch(ctx context.Context, q Query) (Hit, error) {
	prompt := firstWords(q.Prompt, hfPromptWords)
	var errs []error
	for _, sp := range s.spaces {
		u, err := s.call(ctx, sp, prompt)
		if err == nil && u != "" {
			return Hit{URL: u, Format: "mp4"}, nil
		}
		if err == nil {
			err = ErrNoResults
		}
		if ctx.Err() != nil {
			return Hit{}, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", sp.ID, err))
	}
	return Hit{}, unavailable("all spaces unavailable", errors.Join(errs...))
}

func (s *HFSpaceSource) call(ctx context.Context, sp Space, prompt string) (string, error) {
	base := sp.base()
	endpoint := base + "/gradio_api/call/" + strings.TrimPrefix(sp.APIName, "/")

	var queued struct {
		EventID string `json:"event_id"`
	}
	if err := httpx.PostJSON(ctx, s.client, endpoint, nil, map[string]any{"data": []any{prompt}}, &queued); err != nil {
		return "", err
	}
	if queued.EventID == "" {
		return "", errors.New("space returned no event id")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/"+queued.EventID, nil)
	if err != nil {
		return "", err
	}
	client := s.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &httpx.StatusError{StatusCode: resp.StatusCode}
	}

	data, err := readCompleteEvent(bufio.NewScanner(resp.Body))
	if err != nil {
		return "", err
	}
	return outputLocation(base, data), nil
}

// readCompleteEvent scans a Gradio SSE stream for the payload of the
// "complete" event.
func readCompleteEvent(sc *bufio.Scanner) (json.RawMessage, error) {
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	event := ""
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return json.RawMessage(payload), nil
			case "error":
				return nil, fmt.Errorf("space error: %s", payload)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, errors.New("stream ended without result")
}

// outputLocation reads the first output of a prediction: a URL, a file
// path on the space, or a Gradio file object.
func outputLocation(base string, data json.RawMessage) string {
	var outputs []json.RawMessage
	if err := json.Unmarshal(data, &outputs); err != nil || len(outputs) == 0 {
		return ""
	}
	first := outputs[0]

	var s string
	if err := json.Unmarshal(first, &s); err == nil {
		return absolutize(base, s)
	}
	var file struct {
		URL   string `json:"url"`
		Path  string `json:"path"`
		Video *struct {
			URL  string `json:"url"`
			Path string `json:"path"`
		} `json:"video"`
	}
	if err := json.Unmarshal(first, &file); err != nil {
		return ""
	}
	if file.Video != nil {
		file.URL, file.Path = file.Video.URL, file.Video.Path
	}
	if file.URL != "" {
		return file.URL
	}
	return absolutize(base, file.Path)
}

func absolutize(base, loc string) string {
	loc = strings.TrimSpace(loc)
	switch {
	case loc == "":
		return ""
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return loc
	default:
		return base + "/gradio_api/file=" + loc
	}
}
