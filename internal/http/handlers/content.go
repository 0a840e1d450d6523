package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/services"
)

type ContentHandler struct {
	content services.ContentService
}

func NewContentHandler(content services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// queryInt reads an optional integer query parameter; 0 means unset.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+key, fmt.Errorf("%s must be an integer", key))
		return 0, false
	}
	return n, true
}

// POST /api/content/view
func (h *ContentHandler) TrackView(c *gin.Context) {
	var req services.ContentRef
	if !bindJSON(c, &req) {
		return
	}
	if err := h.content.TrackView(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/content/share
func (h *ContentHandler) TrackShare(c *gin.Context) {
	var req services.ContentRef
	if !bindJSON(c, &req) {
		return
	}
	if err := h.content.TrackShare(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// GET /api/categories
func (h *ContentHandler) Categories(c *gin.Context) {
	response.RespondOK(c, gin.H{"categories": h.content.Categories()})
}

// GET /api/trending
func (h *ContentHandler) Trending(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	out, err := h.content.Trending(c.Request.Context(), services.TrendingQuery{
		ContentType: c.Query("content_type"),
		Limit:       limit,
		Days:        days,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/content/by-category
func (h *ContentHandler) ByCategory(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.content.ByCategory(c.Request.Context(), services.CategoryQuery{
		Category:    c.Query("category"),
		ContentType: c.Query("content_type"),
		Limit:       limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/social/feed
func (h *ContentHandler) Feed(c *gin.Context) {
	feed, err := h.content.Feed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"feed": feed})
}
