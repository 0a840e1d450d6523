package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type MediaHandler struct {
	media services.MediaService
}

func NewMediaHandler(media services.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// POST /api/generate-gif-video
//
// A chain that found nothing still answers 200 with error and fallback_url set.
func (h *MediaHandler) Resolve(c *gin.Context) {
	var req services.MediaRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.media.Resolve(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/generate-gif-video/batch
func (h *MediaHandler) ResolveBatch(c *gin.Context) {
	var req services.MediaBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.media.ResolveBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}
