package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/completion"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
)

const maxCompletionMessages = 64

type CompletionHandler struct {
	log *logger.Logger
	llm completion.Completer
}

func NewCompletionHandler(log *logger.Logger, llm completion.Completer) *CompletionHandler {
	return &CompletionHandler{log: log.With("handler", "CompletionHandler"), llm: llm}
}

type completeRequest struct {
	Messages []completion.Message `json:"messages"`
	Text     string               `json:"text"`
	System   string               `json:"system"`
	JSONMode bool                 `json:"json_mode"`
}

// POST /api/complete
func (h *CompletionHandler) Complete(c *gin.Context) {
	var req completeRequest
	if !bindJSON(c, &req) {
		return
	}
	creq, err := req.toRequest()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_messages", err)
		return
	}
	out, err := h.llm.Complete(c.Request.Context(), creq)
	if err != nil {
		h.log.Warn("Completion failed", "error", err)
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"text": out.Text, "provider_used": out.Model})
}

func (r completeRequest) toRequest() (completion.Request, error) {
	if len(r.Messages) == 0 {
		if strings.TrimSpace(r.Text) == "" {
			return completion.Request{}, fmt.Errorf("messages or text is required")
		}
		return completion.Prompt(r.System, r.Text, r.JSONMode), nil
	}
	if len(r.Messages) > maxCompletionMessages {
		return completion.Request{}, fmt.Errorf("at most %d messages", maxCompletionMessages)
	}
	for i, m := range r.Messages {
		switch m.Role {
		case completion.RoleSystem, completion.RoleUser, completion.RoleAssistant:
		default:
			return completion.Request{}, fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}
	return completion.Request{Messages: r.Messages, JSONMode: r.JSONMode}, nil
}
