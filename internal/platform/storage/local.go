package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

// LocalStore writes into a directory that the router serves under Prefix.
type LocalStore struct {
	log    *logger.Logger
	dir    string
	prefix string
}

func NewLocalStore(log *logger.Logger, dir, prefix string) (*LocalStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if prefix == "" {
		prefix = "/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		log:    log.With("service", "LocalStore"),
		dir:    dir,
		prefix: "/" + strings.Trim(prefix, "/"),
	}, nil
}

func (s *LocalStore) Mode() Mode { return ModeLocal }

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Prefix() string { return s.prefix }

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	s.log.Debug("Stored file", "key", key)
	return s.prefix + clean, nil
}
