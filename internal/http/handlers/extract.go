package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type ExtractHandler struct {
	extract services.ExtractService
}

func NewExtractHandler(extract services.ExtractService) *ExtractHandler {
	return &ExtractHandler{extract: extract}
}

// POST /api/extract-url
func (h *ExtractHandler) FromURL(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if !bindJSON(c, &req) {
		return
	}
	text, err := h.extract.FromURL(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text})
}

// POST /api/extract-file
func (h *ExtractHandler) FromFile(c *gin.Context) {
	name, data, ok := readFormFile(c, "file", services.MaxExtractFileBytes)
	if !ok {
		return
	}
	text, err := h.extract.FromFile(c.Request.Context(), name, data)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text, "filename": name})
}
