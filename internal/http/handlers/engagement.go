package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/memequiz-backend/internal/http/response"
	"github.com/yungbote/memequiz-backend/internal/services"
)

func queryUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+key, fmt.Errorf("%s must be a uuid", key))
		return uuid.Nil, false
	}
	return id, true
}

type BookmarkHandler struct {
	bookmarks services.BookmarkService
}

func NewBookmarkHandler(bookmarks services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// POST /api/bookmarks/toggle
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	var req services.BookmarkToggleInput
	if !bindJSON(c, &req) {
		return
	}
	on, err := h.bookmarks.Toggle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bookmarked": on})
}

// GET /api/bookmarks
func (h *BookmarkHandler) List(c *gin.Context) {
	items, err := h.bookmarks.List(c.Request.Context(), c.Query("content_type"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bookmarks": items})
}

// GET /api/bookmarks/check
func (h *BookmarkHandler) Check(c *gin.Context) {
	id, ok := queryUUID(c, "content_id")
	if !ok {
		return
	}
	on, err := h.bookmarks.Check(c.Request.Context(), c.Query("content_type"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"bookmarked": on})
}

type SocialHandler struct {
	social services.SocialService
}

func NewSocialHandler(social services.SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

type socialTarget struct {
	ContentType string    `json:"content_type"`
	ContentID   uuid.UUID `json:"content_id"`
}

// POST /api/social/like
func (h *SocialHandler) ToggleLike(c *gin.Context) {
	var req socialTarget
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.social.ToggleLike(c.Request.Context(), req.ContentType, req.ContentID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/social/comment
func (h *SocialHandler) AddComment(c *gin.Context) {
	var req struct {
		socialTarget
		CommentText string `json:"comment_text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.social.AddComment(c.Request.Context(), req.ContentType, req.ContentID, req.CommentText)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "comment": comment})
}

// GET /api/social/comments
func (h *SocialHandler) Comments(c *gin.Context) {
	id, ok := queryUUID(c, "content_id")
	if !ok {
		return
	}
	comments, err := h.social.Comments(c.Request.Context(), c.Query("content_type"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"comments": comments})
}

type TrackingHandler struct {
	tracking services.TrackingService
}

func NewTrackingHandler(tracking services.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// POST /api/track-event
func (h *TrackingHandler) TrackEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 64<<10)
	var req services.TrackEventInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.tracking.TrackEvent(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/track-session
func (h *TrackingHandler) TrackSession(c *gin.Context) {
	var req services.TrackSessionInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.tracking.TrackSession(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
