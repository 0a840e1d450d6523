package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/platform/logger"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type QuizHandler struct {
	log  *logger.Logger
	quiz services.QuizService
}

func NewQuizHandler(log *logger.Logger, quiz services.QuizService) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), quiz: quiz}
}

// POST /api/generate-mcqs
func (h *QuizHandler) GenerateMCQs(c *gin.Context) {
	var req services.GenerateMCQsInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.quiz.GenerateMCQs(c.Request.Context(), req)
	if err != nil {
		h.log.Warn("MCQ generation failed", "error", err)
		respondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type quizSessionRequest struct {
	Session *services.SessionInput `json:"session"`
	Answers []services.AnswerInput `json:"answers"`
}

// POST /api/quiz-session
func (h *QuizHandler) SubmitSession(c *gin.Context) {
	var req quizSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Session == nil {
		response.RespondError(c, http.StatusBadRequest, "missing_session", fmt.Errorf("session is required"))
		return
	}
	id, err := h.quiz.SubmitSession(c.Request.Context(), *req.Session, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "session_id": id})
}
