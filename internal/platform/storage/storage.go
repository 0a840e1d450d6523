// Package storage puts uploaded and rendered files somewhere a browser can
// fetch them: a local directory served by the API, or a GCS bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
)

type ObjectStore interface {
	// Put stores r under key and returns the URL clients should use.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Mode() Mode
}

type Config struct {
	Mode Mode

	LocalDir    string
	LocalPrefix string

	GCSBucket        string
	GCSPublicBaseURL string
	GCSEmulatorHost  string
	GCSCredentials   string
}

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeGCS:
		return ModeGCS, nil
	default:
		return "", fmt.Errorf("invalid UPLOAD_STORAGE_MODE %q (want local|gcs)", raw)
	}
}

// ContentTypeForKey guesses a content type from the key's extension.
func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}
