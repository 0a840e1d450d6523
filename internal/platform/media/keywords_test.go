package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVideoKeywords(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"A funny video of a cat falling off the table", "cat falling off table"},
		{"Hilarious SHORT clip showing a dog with sunglasses", "dog sunglasses"},
		{"the funny meme", "the funny meme"},
		{"a video of it", "it"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.prompt, func(t *testing.T) {
			got := VideoKeywords(tc.prompt)
			if len([]rune(tc.want)) < 3 {
				// fewer than three characters survive: first five words of the prompt
				assert.Equal(t, firstWords(tc.prompt, 5), got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVideoKeywordsCappedAtFiftyChars(t *testing.T) {
	prompt := strings.Repeat("developer ", 20)
	got := VideoKeywords(prompt)
	assert.Len(t, got, 50)
	assert.True(t, strings.HasPrefix(got, "developer developer"))
}

func TestGIFKeywordsFirstEightWords(t *testing.T) {
	assert.Equal(t, "one two three four five six seven eight",
		GIFKeywords("one two three four five six seven eight nine ten"))
}

func TestPlaceholderURL(t *testing.T) {
	assert.Equal(t, "https://image.pollinations.ai/prompt/cat%20falling",
		PlaceholderURL(KindGIF, "cat falling"))
	assert.Equal(t, "https://image.pollinations.ai/prompt/cat%20falling%20cinematic?width=1280&height=720",
		PlaceholderURL(KindVideo, "cat falling"))
	assert.Equal(t, "https://image.pollinations.ai/prompt/and/or",
		PlaceholderURL(KindGIF, "and/or"))
}

func TestPickWrapsIndex(t *testing.T) {
	items := []string{"a", "b", "c"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, items[i%3], pick(items, i))
	}
	assert.Equal(t, "c", pick(items, -1))
	assert.Equal(t, "c", pick([]string{"a", "b", "c", "d", "e"}, 7))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	assert.NoError(t, err)
	assert.Equal(t, KindGIF, k)
	k, err = ParseKind(" Video ")
	assert.NoError(t, err)
	assert.Equal(t, KindVideo, k)
	_, err = ParseKind("hologram")
	assert.Error(t, err)
}
