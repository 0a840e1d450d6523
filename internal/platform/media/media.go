// Package media resolves a text prompt to a GIF or video URL by walking a
// fixed chain of generative and search sources, degrading to a placeholder
// image when nothing answers.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/memequiz-backend/internal/pkg/httpx"
)

type Kind string

const (
	KindGIF   Kind = "gif"
	KindVideo Kind = "video"
)

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindGIF:
		return KindGIF, nil
	case KindVideo:
		return KindVideo, nil
	default:
		return "", fmt.Errorf("invalid media kind %q", raw)
	}
}

type Query struct {
	Prompt string
	Kind   Kind
	Index  int
	// Keywords is the search phrase derived from Prompt for search sources.
	Keywords string
}

// Hit is what a source returns when it has something to show.
type Hit struct {
	URL           string
	Format        string
	Note          string
	LowerFidelity bool
}

type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Hit, error)
}

// generative sources synthesize media and report why they could not.
type generative interface {
	Generative() bool
}

type timeoutSource interface {
	Timeout() time.Duration
}

type NoteKind string

const (
	// NoteConfig marks declines an operator can fix (missing or rejected credentials).
	NoteConfig NoteKind = "config"
	// NoteUnavailable marks transient failures and empty results.
	NoteUnavailable NoteKind = "unavailable"
)

type Note struct {
	Source string   `json:"source"`
	Kind   NoteKind `json:"kind"`
	Reason string   `json:"reason"`
}

var ErrNoResults = errors.New("no results")

// DeclineError is how a source explains a refusal.
type DeclineError struct {
	Kind   NoteKind
	Reason string
	Err    error
}

func (e *DeclineError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *DeclineError) Unwrap() error { return e.Err }

func configDecline(reason string, err error) error {
	return &DeclineError{Kind: NoteConfig, Reason: reason, Err: err}
}

func unavailable(reason string, err error) error {
	return &DeclineError{Kind: NoteUnavailable, Reason: reason, Err: err}
}

// noteFor turns any source error into a Note.
func noteFor(source string, err error) Note {
	var d *DeclineError
	if errors.As(err, &d) {
		return Note{Source: source, Kind: d.Kind, Reason: d.Reason}
	}
	switch {
	case errors.Is(err, ErrNoResults):
		return Note{Source: source, Kind: NoteUnavailable, Reason: "no results"}
	case httpx.IsTimeout(err):
		return Note{Source: source, Kind: NoteUnavailable, Reason: "timed out"}
	}
	switch code := httpx.StatusOf(err); {
	case code == 401 || code == 403:
		return Note{Source: source, Kind: NoteConfig, Reason: "invalid API key"}
	case code == 429:
		return Note{Source: source, Kind: NoteUnavailable, Reason: "quota exceeded"}
	case httpx.IsRetryableHTTPStatus(code):
		return Note{Source: source, Kind: NoteUnavailable, Reason: fmt.Sprintf("temporarily unavailable (status %d)", code)}
	case code != 0:
		return Note{Source: source, Kind: NoteUnavailable, Reason: fmt.Sprintf("upstream status %d", code)}
	}
	return Note{Source: source, Kind: NoteUnavailable, Reason: "request failed"}
}

// Resolution is the body returned to clients. Exactly one of URL or Error is set.
type Resolution struct {
	URL           string `json:"url,omitempty"`
	Kind          Kind   `json:"type"`
	Source        string `json:"source,omitempty"`
	Format        string `json:"format,omitempty"`
	Note          string `json:"note,omitempty"`
	LowerFidelity bool   `json:"lower_fidelity,omitempty"`
	Error         string `json:"error,omitempty"`
	FallbackURL   string `json:"fallback_url,omitempty"`
	Notes         []Note `json:"notes,omitempty"`
}

func (r Resolution) Failed() bool { return r.URL == "" }

// pick returns the element at index mod n, stable for negative indices.
func pick[T any](items []T, index int) T {
	n := len(items)
	return items[((index%n)+n)%n]
}
