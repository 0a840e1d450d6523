package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/memequiz-backend/internal/pkg/errors"
	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/ctxutil"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/storage"
)

const MaxUploadBytes = 10 << 20

type UploadService interface {
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

type uploadService struct {
	log   *logger.Logger
	store storage.ObjectStore
}

func NewUploadService(baseLog *logger.Logger, store storage.ObjectStore) UploadService {
	return &uploadService{log: baseLog.With("service", "UploadService"), store: store}
}

// UploadImage sniffs the content rather than trusting the filename.
func (s *uploadService) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierr.BadRequest("empty_file", fmt.Errorf("file is empty"))
	}
	if len(data) > MaxUploadBytes {
		return "", apierr.TooLarge(fmt.Errorf("file exceeds %d bytes", MaxUploadBytes))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", apierr.New(http.StatusUnsupportedMediaType, "unsupported_media_type",
			fmt.Errorf("%w: %s", pkgerrors.ErrUnsupportedMedia, mt.String()))
	}
	if s.store == nil {
		return "", apierr.Unavailable("storage_unavailable", fmt.Errorf("upload storage not configured"))
	}

	ext := mt.Extension()
	if ext == "" {
		ext = ".png"
	}
	key := fmt.Sprintf("images/%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
	link, err := s.store.Put(ctx, key, bytes.NewReader(data), mt.String())
	if err != nil {
		s.log.Error("Image upload failed", "error", err, "key", key)
		return "", err
	}
	userID := ""
	if id := ctxutil.UserID(ctx); id != nil {
		userID = id.String()
	}
	s.log.Info("Image uploaded", "key", key, "bytes", len(data), "filename", filename, "user_id", userID)
	return link, nil
}
