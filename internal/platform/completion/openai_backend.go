package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	goopenai "github.com/sashabaranov/go-openai"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

var errNoChoices = errors.New("completion returned no choices")

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Temperature float32
	HTTPClient  *http.Client
}

// OpenAIBackend talks to any OpenAI-compatible chat completions API.
// The underlying client is built on first use.
type OpenAIBackend struct {
	cfg       OpenAIConfig
	client    func() *goopenai.Client
	newClient func(goopenai.ClientConfig) *goopenai.Client
}

func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	b := &OpenAIBackend{cfg: cfg, newClient: goopenai.NewClientWithConfig}
	b.client = sync.OnceValue(func() *goopenai.Client {
		conf := goopenai.DefaultConfig(b.cfg.APIKey)
		conf.BaseURL = strings.TrimRight(b.cfg.BaseURL, "/")
		if b.cfg.HTTPClient != nil {
			conf.HTTPClient = b.cfg.HTTPClient
		}
		return b.newClient(conf)
	})
	return b
}

func (b *OpenAIBackend) Configured() bool { return b != nil && b.cfg.APIKey != "" }

func (b *OpenAIBackend) Complete(ctx context.Context, model string, req Request) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	creq := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: b.cfg.Temperature,
	}
	if req.JSONMode {
		creq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	resp, err := b.client().CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
