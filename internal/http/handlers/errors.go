package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
)

// respondError maps pipeline sentinels before falling back to apierr mapping.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, completion.ErrNotConfigured):
		response.RespondError(c, http.StatusServiceUnavailable, "completion_not_configured", err)
	case errors.Is(err, completion.ErrAllProvidersExhausted):
		response.RespondError(c, http.StatusBadGateway, "all_providers_exhausted", err)
	default:
		response.RespondServiceError(c, err)
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// readFormFile reads the multipart field into memory, rejecting bodies over max.
func readFormFile(c *gin.Context, field string, max int64) (name string, data []byte, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+(1<<20))
	fh, err := c.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", err)
			return "", nil, false
		}
		response.RespondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("multipart field %q is required", field))
		return "", nil, false
	}
	if fh.Size > max {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("file exceeds %d bytes", max))
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return "", nil, false
	}
	defer f.Close()
	data, err = io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return "", nil, false
	}
	return fh.Filename, data, true
}
