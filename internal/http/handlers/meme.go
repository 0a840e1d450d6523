package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type MemeHandler struct {
	log   *logger.Logger
	memes services.MemeService
}

func NewMemeHandler(log *logger.Logger, memes services.MemeService) *MemeHandler {
	return &MemeHandler{log: log.With("handler", "MemeHandler"), memes: memes}
}

// POST /api/generate-meme-prompt
func (h *MemeHandler) GeneratePrompts(c *gin.Context) {
	var req services.MemePromptInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.memes.GeneratePrompts(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/generate-meme
func (h *MemeHandler) GenerateCaption(c *gin.Context) {
	var req services.MemeCaptionInput
	if !bindJSON(c, &req) {
		return
	}
	response.RespondOK(c, h.memes.GenerateCaption(c.Request.Context(), req))
}

// POST /api/meme/render
func (h *MemeHandler) Render(c *gin.Context) {
	var req services.RenderInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.memes.Render(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if out.Link != "" {
		response.RespondOK(c, gin.H{"link": out.Link})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", out.PNG)
}

// POST /api/meme-generation
func (h *MemeHandler) SaveGeneration(c *gin.Context) {
	var req services.MemeGenerationInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.memes.SaveGeneration(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "generation_id": id})
}
