package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"image"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	memerepo "github.com/yungbote/memequiz-backend/internal/data/repos/meme"
	types "github.com/yungbote/memequiz-backend/internal/domain"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

const (
	DefaultCaption     = "WHEN THE CODE WORKS | BUT YOU DON'T KNOW WHY"
	UnformattedCaption = "CODING LIFE | NEVER BORING"

	memeTemplatePrompt = "classic internet meme template, simple background, meme format"
	pollinationsBase   = "https://image.pollinations.ai/prompt/"
	maxMemePrompts     = 10
)

type MemePromptInput struct {
	Topic    string `json:"topic"`
	Count    int    `json:"count"`
	MemeType string `json:"meme_type"`
}

type MemePromptResult struct {
	Prompts  []string `json:"prompts"`
	Model    string   `json:"model"`
	MemeType string   `json:"meme_type"`
}

type MemeCaptionInput struct {
	Question      string `json:"question"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

type MemeCaptionResult struct {
	Caption    string `json:"caption"`
	TopText    string `json:"top_text"`
	BottomText string `json:"bottom_text"`
	ImageURL   string `json:"image_url"`
}

type RenderInput struct {
	TopText       string `json:"top_text"`
	BottomText    string `json:"bottom_text"`
	BackgroundURL string `json:"background_url"`
	Store         bool   `json:"store"`
}

type RenderResult struct {
	PNG  []byte
	Link string
}

type MemeItemInput struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Source string `json:"source"`
	Note   string `json:"note"`
}

type MemeGenerationInput struct {
	InputType             string          `json:"input_type"`
	Topic                 string          `json:"topic"`
	SourceURL             string          `json:"source_url"`
	MemeType              string          `json:"meme_type"`
	NumMemes              int             `json:"num_memes"`
	Category              string          `json:"category"`
	ModelName             string          `json:"model_name"`
	ImageModel            string          `json:"image_model"`
	GenerationTimeSeconds float64         `json:"generation_time_seconds"`
	TotalGenerated        int             `json:"total_generated"`
	SuccessfulGenerations int             `json:"successful_generations"`
	FailedGenerations     int             `json:"failed_generations"`
	Memes                 []MemeItemInput `json:"memes_data"`
}

// MemeRenderer draws captions over an optional background.
type MemeRenderer interface {
	Render(top, bottom string, bg image.Image) ([]byte, error)
	FetchBackground(ctx context.Context, url string) (image.Image, error)
}

type MemeService interface {
	GeneratePrompts(ctx context.Context, in MemePromptInput) (*MemePromptResult, error)
	GenerateCaption(ctx context.Context, in MemeCaptionInput) *MemeCaptionResult
	Render(ctx context.Context, in RenderInput) (*RenderResult, error)
	SaveGeneration(ctx context.Context, in MemeGenerationInput) (uuid.UUID, error)
}

type memeService struct {
	db          *gorm.DB
	log         *logger.Logger
	llm         completion.Completer
	generations memerepo.GenerationRepo
	renderer    MemeRenderer
	store       storage.ObjectStore
}

func NewMemeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	llm completion.Completer,
	generations memerepo.GenerationRepo,
	renderer MemeRenderer,
	store storage.ObjectStore,
) MemeService {
	return &memeService{
		db:          db,
		log:         baseLog.With("service", "MemeService"),
		llm:         llm,
		generations: generations,
		renderer:    renderer,
		store:       store,
	}
}

func (s *memeService) GeneratePrompts(ctx context.Context, in MemePromptInput) (*MemePromptResult, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, apierr.BadRequest("missing_topic", fmt.Errorf("topic is required"))
	}
	if in.Count <= 0 {
		in.Count = 1
	}
	in.Count = min(in.Count, maxMemePrompts)
	switch in.MemeType {
	case "":
		in.MemeType = "image"
	case "image", "gif", "video":
	default:
		return nil, apierr.BadRequest("invalid_meme_type", fmt.Errorf("meme_type must be image, gif or video"))
	}

	topic := in.Topic
	if hasNonLatin(topic) {
		topic = s.translateTopic(ctx, topic)
	}

	user := fmt.Sprintf("Create %d %s meme concepts about: %s", in.Count, in.MemeType, topic)
	resp, err := s.llm.Complete(ctx, completion.Prompt(memeSystemPrompt(in), user, true))
	if err != nil {
		return nil, err
	}
	prompts := parsePrompts(resp.Text)
	if len(prompts) > in.Count {
		prompts = prompts[:in.Count]
	}
	return &MemePromptResult{Prompts: prompts, Model: resp.Model, MemeType: in.MemeType}, nil
}

// translateTopic falls back to the original topic on any failure.
func (s *memeService) translateTopic(ctx context.Context, topic string) string {
	prompt := "Translate this text to English and extract 3-5 simple search keywords for finding memes/GIFs.\n\n" +
		"Input: " + topic + "\n\n" +
		"Output ONLY JSON:\n{\n  \"english\": \"simple English translation\",\n  \"keywords\": [\"keyword1\", \"keyword2\", \"keyword3\"]\n}"
	resp, err := s.llm.Complete(ctx, completion.Prompt("You are a translator. Output ONLY valid JSON.", prompt, true))
	if err != nil {
		s.log.Warn("Topic translation failed, using original", "error", err)
		return topic
	}
	var out struct {
		English  string   `json:"english"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(resp.Text)), &out); err != nil || strings.TrimSpace(out.English) == "" {
		s.log.Warn("Topic translation unparseable, using original", "model", resp.Model)
		return topic
	}
	s.log.Debug("Translated meme topic", "keywords", out.Keywords)
	return strings.TrimSpace(out.English)
}

func (s *memeService) GenerateCaption(ctx context.Context, in MemeCaptionInput) *MemeCaptionResult {
	caption := DefaultCaption
	prompt := fmt.Sprintf("Generate a SHORT, FUNNY meme caption for this coding question.\n\n"+
		"Question: %s\nExplanation: %s\n\n"+
		"Format: \"TOP TEXT | BOTTOM TEXT\"\n"+
		"Make it relatable to programmers. Keep each part under 50 characters.\n"+
		"Examples:\n- \"WHEN THE CODE WORKS | BUT YOU DON'T KNOW WHY\"\n- \"STACKOVERFLOW | MY BEST FRIEND\"\n- \"IT WORKS ON MY MACHINE | FAMOUS LAST WORDS\"\n\n"+
		"Your caption:", in.Question, in.Explanation)
	resp, err := s.llm.Complete(ctx, completion.Prompt("You are a witty programmer who creates funny meme captions.", prompt, false))
	if err != nil {
		s.log.Warn("Meme caption failed, using default", "error", err)
	} else {
		caption = normalizeCaption(resp.Text)
	}
	top, bottom := splitCaption(caption)
	return &MemeCaptionResult{
		Caption:    caption,
		TopText:    top,
		BottomText: bottom,
		ImageURL:   MemeImageURL(caption),
	}
}

func (s *memeService) Render(ctx context.Context, in RenderInput) (*RenderResult, error) {
	if strings.TrimSpace(in.TopText) == "" && strings.TrimSpace(in.BottomText) == "" {
		return nil, apierr.BadRequest("missing_caption", fmt.Errorf("top_text or bottom_text is required"))
	}
	if s.renderer == nil {
		return nil, apierr.Unavailable("renderer_unavailable", fmt.Errorf("meme renderer not configured"))
	}
	var bg image.Image
	if u := strings.TrimSpace(in.BackgroundURL); u != "" {
		img, err := s.renderer.FetchBackground(ctx, u)
		if err != nil {
			s.log.Warn("Meme background unavailable, rendering plain", "error", err)
		} else {
			bg = img
		}
	}
	png, err := s.renderer.Render(in.TopText, in.BottomText, bg)
	if err != nil {
		return nil, err
	}
	out := &RenderResult{PNG: png}
	if !in.Store {
		return out, nil
	}
	if s.store == nil {
		return nil, apierr.Unavailable("storage_unavailable", fmt.Errorf("upload storage not configured"))
	}
	key := fmt.Sprintf("memes/%s/%s.png", time.Now().UTC().Format("2006/01/02"), uuid.NewString())
	link, err := s.store.Put(ctx, key, bytes.NewReader(png), "image/png")
	if err != nil {
		return nil, fmt.Errorf("store rendered meme: %w", err)
	}
	out.Link = link
	return out, nil
}

func (s *memeService) SaveGeneration(ctx context.Context, in MemeGenerationInput) (uuid.UUID, error) {
	if strings.TrimSpace(in.MemeType) == "" {
		return uuid.Nil, apierr.BadRequest("missing_meme_type", fmt.Errorf("meme_type is required"))
	}
	ip, ua := ctxutil.Client(ctx)
	gen := &types.MemeGeneration{
		UserID:                ctxutil.UserID(ctx),
		InputType:             firstNonEmpty(in.InputType, "topic"),
		Topic:                 in.Topic,
		SourceURL:             in.SourceURL,
		MemeType:              in.MemeType,
		NumMemes:              max(in.NumMemes, 1),
		Category:              in.Category,
		ModelName:             in.ModelName,
		ImageModel:            in.ImageModel,
		GenerationTimeSeconds: in.GenerationTimeSeconds,
		TotalGenerated:        in.TotalGenerated,
		SuccessfulGenerations: in.SuccessfulGenerations,
		FailedGenerations:     in.FailedGenerations,
		IPAddress:             ip,
		UserAgent:             ua,
	}
	for _, m := range in.Memes {
		gen.Memes = append(gen.Memes, types.GeneratedMeme{
			URL:      m.URL,
			MemeType: firstNonEmpty(m.Type, in.MemeType),
			Source:   m.Source,
			Note:     m.Note,
		})
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.generations.Create(ctx, tx, gen)
		return err
	}); err != nil {
		s.log.Error("Meme generation save failed", "error", err)
		return uuid.Nil, err
	}
	return gen.ID, nil
}

// MemeImageURL is a Pollinations template URL seeded from the caption so the
// same caption always maps to the same image.
func MemeImageURL(caption string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(caption))
	seed := h.Sum32() % 10000
	return fmt.Sprintf("%s%s?width=800&height=600&nologo=true&seed=%d",
		pollinationsBase, url.PathEscape(memeTemplatePrompt), seed)
}

func normalizeCaption(raw string) string {
	c := strings.NewReplacer(`"`, "", "'", "").Replace(raw)
	c = strings.TrimSpace(c)
	if !strings.Contains(c, "|") {
		return UnformattedCaption
	}
	return c
}

func splitCaption(caption string) (top, bottom string) {
	top, bottom, _ = strings.Cut(caption, "|")
	return strings.TrimSpace(top), strings.TrimSpace(bottom)
}

func hasNonLatin(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

// parsePrompts reads {"prompts": [...]}, else the alphabetically first
// list-valued key, else treats the whole reply as a single prompt.
func parsePrompts(content string) []string {
	raw := strings.TrimSpace(content)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &obj); err != nil {
		return []string{raw}
	}
	if prompts := stringList(obj["prompts"]); len(prompts) > 0 {
		return prompts
	}
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if prompts := stringList(obj[k]); len(prompts) > 0 {
			return prompts
		}
	}
	return []string{raw}
}

func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				out = append(out, v)
			}
		case map[string]any:
			if p, ok := v["prompt"].(string); ok && p != "" {
				out = append(out, p)
			} else if b, err := json.Marshal(v); err == nil {
				out = append(out, string(b))
			}
		}
	}
	return out
}

func memeSystemPrompt(in MemePromptInput) string {
	var structure, style string
	switch in.MemeType {
	case "gif":
		structure = `"An animated GIF meme showing [describe animated scene]. The animation should loop showing [describe the funny action/reaction]. Include text overlay: '[INSERT SHORT TEXT HERE]' in bold, white font."`
		style = "Focus on simple, looping animations that are funny and relatable."
	case "video":
		structure = `"A short video meme (3-5 seconds) showing [describe video scene]. The scene should show [describe the funny sequence]. Include text overlay: '[INSERT SHORT TEXT HERE]' in bold, white font."`
		style = "Focus on short, punchy video clips with clear visual humor."
	default:
		structure = `"A high-quality webcomic meme. [Describe scene]. [Describe characters]. A large, white speech bubble with the text '[INSERT SHORT TEXT HERE]' written clearly in a bold, black font."`
		style = "Use a clean, digital art style."
	}
	return fmt.Sprintf(`You are a professional meme creator. Your goal is to create %d DISTINCT, funny, and visual meme concepts for %s format based on the user's topic.

Output ONLY valid JSON containing a list of prompts.
Format: { "prompts": ["prompt1", "prompt2", ...] }

Each prompt must follow this structure:
%s

Rules:
1. Make each concept completely different.
2. Make it funny and relatable to: "%s".
3. CRITICAL: Keep the text overlay EXTREMELY SHORT (max 3-6 words). Long text will be unreadable.
4. %s
5. Ensure the text is the main focus.
6. If the topic is not in English (including Hindi or Hinglish), understand its meaning and write English meme concepts that match its context.
7. Focus on the EMOTION and SITUATION described, not a literal translation.`,
		in.Count, strings.ToUpper(in.MemeType), structure, in.Topic, style)
}
