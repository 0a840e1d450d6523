package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type UploadHandler struct {
	log     *logger.Logger
	uploads services.UploadService
}

func NewUploadHandler(log *logger.Logger, uploads services.UploadService) *UploadHandler {
	return &UploadHandler{log: log.With("handler", "UploadHandler"), uploads: uploads}
}

// POST /api/upload-image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	name, data, ok := readFormFile(c, "file", services.MaxUploadBytes)
	if !ok {
		return
	}
	link, err := h.uploads.UploadImage(c.Request.Context(), name, data)
	if err != nil {
		h.log.Warn("Image upload failed", "filename", name, "error", err)
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"link": link})
}
