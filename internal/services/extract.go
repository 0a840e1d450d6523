package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/memequiz-backend/internal/platform/apierr"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/platform/textextract"
)

const MaxExtractFileBytes = 20 << 20

// TextExtractor is satisfied by *textextract.Extractor.
type TextExtractor interface {
	FromURL(ctx context.Context, rawURL string) (string, error)
	FromFile(name string, data []byte) (string, error)
}

type ExtractService interface {
	FromURL(ctx context.Context, rawURL string) (string, error)
	FromFile(ctx context.Context, name string, data []byte) (string, error)
}

type extractService struct {
	log *logger.Logger
	ex  TextExtractor
}

func NewExtractService(baseLog *logger.Logger, ex TextExtractor) ExtractService {
	return &extractService{log: baseLog.With("service", "ExtractService"), ex: ex}
}

func (s *extractService) FromURL(ctx context.Context, rawURL string) (string, error) {
	text, err := s.ex.FromURL(ctx, rawURL)
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, textextract.ErrInvalidURL):
		return "", apierr.BadRequest("invalid_url", err)
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		s.log.Warn("URL extraction failed", "error", err)
		return "", apierr.New(http.StatusBadGateway, "extract_failed", err)
	}
}

func (s *extractService) FromFile(_ context.Context, name string, data []byte) (string, error) {
	if len(data) > MaxExtractFileBytes {
		return "", apierr.TooLarge(fmt.Errorf("file exceeds %d bytes", MaxExtractFileBytes))
	}
	text, err := s.ex.FromFile(name, data)
	if err != nil {
		if errors.Is(err, textextract.ErrUnsupportedFile) {
			return "", apierr.BadRequest("unsupported_file_type", err)
		}
		return "", apierr.BadRequest("unreadable_file", err)
	}
	return text, nil
}
