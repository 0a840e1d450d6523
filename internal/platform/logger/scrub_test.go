package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubberRedactsSecretsAndHashesIdentities(t *testing.T) {
	s := &scrubber{enabled: true, salt: "pepper"}

	out := s.kvs([]interface{}{
		"GROQ_API_KEY", "gsk_live",
		"user_id", "4b1d",
		"path", "/api/complete",
		"dangling",
	})

	require.Len(t, out, 7)
	assert.Equal(t, redacted, out[1])
	assert.Regexp(t, `^hash:[0-9a-f]{12}$`, out[3])
	assert.Equal(t, "/api/complete", out[5])
	assert.Equal(t, "dangling", out[6])
}

func TestScrubberPseudonymIsStable(t *testing.T) {
	s := &scrubber{enabled: true}
	assert.Equal(t, s.pseudonym("abc"), s.pseudonym("abc"))
	assert.NotEqual(t, s.pseudonym("abc"), (&scrubber{enabled: true, salt: "x"}).pseudonym("abc"))
	assert.Equal(t, "", s.pseudonym(""))
}

func TestScrubberNestedAndJWT(t *testing.T) {
	s := &scrubber{enabled: true}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"

	got := s.value("", map[string]interface{}{
		"password": "hunter2",
		"nested":   []interface{}{jwt, "plain"},
	}).(map[string]interface{})

	assert.Equal(t, redacted, got["password"])
	assert.Equal(t, []interface{}{redacted, "plain"}, got["nested"])
}

func TestScrubberDisabledPassesThrough(t *testing.T) {
	s := &scrubber{enabled: false}
	in := []interface{}{"token", "abc"}
	assert.Equal(t, in, s.kvs(in))
}
