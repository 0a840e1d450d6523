package services

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memerepo "github.com/yungbote/memequiz-backend/internal/data/repos/meme"
	"github.com/yungbote/memequiz-backend/internal/data/repos/testutil"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

type fakeRenderer struct {
	bgErr     error
	gotBG     image.Image
	gotTop    string
	gotBottom string
}

func (f *fakeRenderer) Render(top, bottom string, bg image.Image) ([]byte, error) {
	f.gotTop, f.gotBottom, f.gotBG = top, bottom, bg
	return []byte("\x89PNG-fake"), nil
}

func (f *fakeRenderer) FetchBackground(context.Context, string) (image.Image, error) {
	if f.bgErr != nil {
		return nil, f.bgErr
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func newMemeFixture(t *testing.T, llm completion.Completer, r MemeRenderer, store storage.ObjectStore) (MemeService, memerepo.GenerationRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	gens := memerepo.NewGenerationRepo(db, log)
	return NewMemeService(db, log, llm, gens, r, store), gens
}

func TestGeneratePromptsLimitsCount(t *testing.T) {
	llm := &scriptedLLM{replies: []string{`{"prompts":["one","two","three"]}`}}
	svc, _ := newMemeFixture(t, llm, nil, nil)

	out, err := svc.GeneratePrompts(context.Background(), MemePromptInput{Topic: "merge conflicts", Count: 2, MemeType: "gif"})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, out.Prompts)
	assert.Equal(t, "gif", out.MemeType)
	require.Len(t, llm.calls, 1)
	assert.Contains(t, llm.calls[0].Messages[0].Content, "An animated GIF meme")
	assert.Equal(t, "Create 2 gif meme concepts about: merge conflicts", llm.calls[0].Messages[1].Content)
}

func TestGeneratePromptsTranslatesNonLatinTopic(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"english":"exam stress","keywords":["exam","stress"]}`,
		`{"ideas":["a cat panicking before an exam"]}`,
	}}
	svc, _ := newMemeFixture(t, llm, nil, nil)

	out, err := svc.GeneratePrompts(context.Background(), MemePromptInput{Topic: "परीक्षा का तनाव"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a cat panicking before an exam"}, out.Prompts)
	assert.Equal(t, "image", out.MemeType)
	require.Len(t, llm.calls, 2)
	assert.Contains(t, llm.calls[1].Messages[1].Content, "about: exam stress")
}

func TestGeneratePromptsTranslationFailureKeepsTopic(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"not json", "plain prompt text"}}
	svc, _ := newMemeFixture(t, llm, nil, nil)

	out, err := svc.GeneratePrompts(context.Background(), MemePromptInput{Topic: "कोडिंग"})
	require.NoError(t, err)
	assert.Equal(t, []string{"plain prompt text"}, out.Prompts)
	assert.Contains(t, llm.calls[1].Messages[1].Content, "about: कोडिंग")

	_, err = svc.GeneratePrompts(context.Background(), MemePromptInput{Topic: "x", MemeType: "hologram"})
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid_meme_type", ae.Code)
}

func TestGenerateCaptionDefaults(t *testing.T) {
	svc, _ := newMemeFixture(t, &scriptedLLM{}, nil, nil)
	out := svc.GenerateCaption(context.Background(), MemeCaptionInput{Question: "q"})
	assert.Equal(t, DefaultCaption, out.Caption)
	assert.Equal(t, "WHEN THE CODE WORKS", out.TopText)
	assert.Equal(t, "BUT YOU DON'T KNOW WHY", out.BottomText)

	svc, _ = newMemeFixture(t, &scriptedLLM{replies: []string{"no separator here"}}, nil, nil)
	out = svc.GenerateCaption(context.Background(), MemeCaptionInput{Question: "q"})
	assert.Equal(t, UnformattedCaption, out.Caption)

	svc, _ = newMemeFixture(t, &scriptedLLM{replies: []string{`"IT WORKS ON MY MACHINE | FAMOUS LAST WORDS"`}}, nil, nil)
	out = svc.GenerateCaption(context.Background(), MemeCaptionInput{Question: "q"})
	assert.Equal(t, "IT WORKS ON MY MACHINE", out.TopText)
	assert.Equal(t, "FAMOUS LAST WORDS", out.BottomText)
	assert.Equal(t, MemeImageURL(out.Caption), out.ImageURL)
}

func TestMemeImageURLIsStable(t *testing.T) {
	a := MemeImageURL(DefaultCaption)
	assert.Equal(t, a, MemeImageURL(DefaultCaption))
	assert.True(t, strings.HasPrefix(a, "https://image.pollinations.ai/prompt/classic%20internet%20meme%20template"))
	assert.Contains(t, a, "width=800&height=600&nologo=true&seed=")
	assert.NotEqual(t, a, MemeImageURL(UnformattedCaption))
}

func TestRenderStoresWhenAsked(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(logger.Nop(), dir, "/uploads")
	require.NoError(t, err)
	r := &fakeRenderer{bgErr: errors.New("404")}
	svc, _ := newMemeFixture(t, &scriptedLLM{}, r, store)

	out, err := svc.Render(context.Background(), RenderInput{TopText: "top", BottomText: "bottom", BackgroundURL: "https://x/bg.png", Store: true})
	require.NoError(t, err)
	assert.Nil(t, r.gotBG)
	assert.Equal(t, "top", r.gotTop)
	require.True(t, strings.HasPrefix(out.Link, "/uploads/memes/"))
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(out.Link, "/uploads/"))))
	require.NoError(t, err)
	assert.Equal(t, out.PNG, b)

	r.bgErr = nil
	out, err = svc.Render(context.Background(), RenderInput{BottomText: "only bottom", BackgroundURL: "https://x/bg.png"})
	require.NoError(t, err)
	assert.NotNil(t, r.gotBG)
	assert.Empty(t, out.Link)

	_, err = svc.Render(context.Background(), RenderInput{})
	assert.Error(t, err)
}

func TestSaveMemeGeneration(t *testing.T) {
	svc, gens := newMemeFixture(t, &scriptedLLM{}, nil, nil)
	userID := uuid.New()
	id, err := svc.SaveGeneration(userCtx(userID), MemeGenerationInput{
		Topic:                 "recursion",
		MemeType:              "video",
		NumMemes:              2,
		TotalGenerated:        2,
		SuccessfulGenerations: 1,
		FailedGenerations:     1,
		Memes: []MemeItemInput{
			{URL: "https://media.tenor.com/a.mp4", Source: "tenor", Note: "Showing related video."},
			{URL: "https://image.pollinations.ai/prompt/x", Type: "image"},
		},
	})
	require.NoError(t, err)

	gen, err := gens.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	assert.Equal(t, &userID, gen.UserID)
	assert.Equal(t, "topic", gen.InputType)
	require.Len(t, gen.Memes, 2)
	types := map[string]bool{gen.Memes[0].MemeType: true, gen.Memes[1].MemeType: true}
	assert.True(t, types["video"])
	assert.True(t, types["image"])
}

func TestParsePromptsPicksListKeyDeterministically(t *testing.T) {
	reply := `{"zeta":["z1"],"ideas":["i1","i2"],"beta":[{"prompt":"b1"}],"note":"x"}`
	for i := 0; i < 20; i++ {
		assert.Equal(t, []string{"b1"}, parsePrompts(reply))
	}
	assert.Equal(t, []string{"p"}, parsePrompts(`{"beta":["b"],"prompts":["p"]}`))
	assert.Equal(t, []string{"plain text"}, parsePrompts("plain text"))
}
