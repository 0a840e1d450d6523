package media

import (
	"net/url"
	"strings"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "showing": true, "video": true,
	"meme": true, "short": true, "scene": true, "clip": true, "of": true,
	"with": true, "funny": true, "hilarious": true,
}

const (
	maxKeywordChars = 50
	gifKeywordWords = 8
	hfPromptWords   = 15
)

// VideoKeywords lowercases the prompt, drops filler words and caps the
// phrase at 50 characters. Too-short results fall back to the first five
// words of the original prompt.
func VideoKeywords(prompt string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	kw := truncateRunes(strings.Join(kept, " "), maxKeywordChars)
	if len([]rune(kw)) < 3 {
		kw = firstWords(prompt, 5)
	}
	return kw
}

func GIFKeywords(prompt string) string {
	return firstWords(prompt, gifKeywordWords)
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// quote percent-encodes s for a URL path segment, leaving slashes intact.
func quote(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "%2F", "/")
}
