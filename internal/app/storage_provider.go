package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

var newGCSStore = func(ctx context.Context, log *logger.Logger, cfg storage.Config) (storage.ObjectStore, error) {
	return storage.NewGCSStore(ctx, log, cfg)
}

type StorageBootstrapErrorCode string

const (
	StorageBootstrapErrorMissingBucket StorageBootstrapErrorCode = "missing_bucket"
	StorageBootstrapErrorLocalDir      StorageBootstrapErrorCode = "local_dir"
	StorageBootstrapErrorConnectFailed StorageBootstrapErrorCode = "connect_failed"
)

type StorageBootstrapError struct {
	Code  StorageBootstrapErrorCode
	Mode  storage.Mode
	Cause error
}

func (e *StorageBootstrapError) Error() string {
	if e == nil {
		return "upload storage bootstrap failed"
	}
	return fmt.Sprintf("upload storage bootstrap failed (code=%s mode=%q): %v", e.Code, e.Mode, e.Cause)
}

func (e *StorageBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveObjectStore builds the configured store. A GCS misconfiguration is
// fatal; there is no silent fallback to local disk.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg storage.Config) (storage.ObjectStore, error) {
	switch cfg.Mode {
	case storage.ModeGCS:
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorMissingBucket, Mode: cfg.Mode, Cause: fmt.Errorf("UPLOAD_GCS_BUCKET is required in gcs mode")}
		}
		store, err := newGCSStore(ctx, log, cfg)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorConnectFailed, Mode: cfg.Mode, Cause: err}
		}
		log.Info("Upload storage ready", "mode", cfg.Mode, "bucket", cfg.GCSBucket)
		return store, nil
	default:
		store, err := storage.NewLocalStore(log, cfg.LocalDir, cfg.LocalPrefix)
		if err != nil {
			return nil, &StorageBootstrapError{Code: StorageBootstrapErrorLocalDir, Mode: storage.ModeLocal, Cause: err}
		}
		log.Info("Upload storage ready", "mode", storage.ModeLocal, "dir", store.Dir())
		return store, nil
	}
}
