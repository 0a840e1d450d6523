package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

type GCSStore struct {
	log           *logger.Logger
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, log *logger.Logger, cfg Config) (*GCSStore, error) {
	if strings.TrimSpace(cfg.GCSBucket) == "" {
		return nil, fmt.Errorf("missing env var UPLOAD_GCS_BUCKET")
	}
	var opts []option.ClientOption
	publicBase := strings.TrimRight(strings.TrimSpace(cfg.GCSPublicBaseURL), "/")
	if host := strings.TrimRight(strings.TrimSpace(cfg.GCSEmulatorHost), "/"); host != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", host)
		opts = append(opts, option.WithoutAuthentication())
		if publicBase == "" {
			publicBase = host + "/" + cfg.GCSBucket
		}
	} else {
		opts = append(opts, credentialOptions(cfg.GCSCredentials)...)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}
	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + cfg.GCSBucket
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "GCSStore")
	serviceLog.Info("Object storage initialized", "bucket", cfg.GCSBucket, "public_base_url", publicBase)
	return &GCSStore{log: serviceLog, client: client, bucket: cfg.GCSBucket, publicBaseURL: publicBase}, nil
}

// credentialOptions accepts inline JSON or a path to a credentials file.
func credentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	switch {
	case creds == "":
		return nil
	case strings.HasPrefix(creds, "{"):
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}

func (s *GCSStore) Mode() Mode { return ModeGCS }

func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeForKey(key)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/"), nil
}

func (s *GCSStore) Close() error { return s.client.Close() }
