package annotation

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/middleware"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler serves both route families. The owner family
// (/documents/:id/annotations) and the guest family
// (/invite/:token/annotations) register the same methods behind different
// scope middlewares; nothing else differs.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the annotation operations on a scoped route group
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/annotations", h.List)
	group.POST("/annotations", h.Create)
	group.PUT("/annotations", h.Update)
	group.DELETE("/annotations", h.Delete)
	group.POST("/annotations/replies", h.AddReply)
	group.PUT("/annotations/replies", h.UpdateReply)
	group.DELETE("/annotations/replies", h.DeleteReply)
}

func scopeFrom(c *gin.Context) (access.Scope, bool) {
	value, exists := c.Get(middleware.ScopeKey)
	if !exists {
		c.Error(errors.Unauthorized("Missing access scope", nil))
		return access.Scope{}, false
	}

	scope, ok := value.(access.Scope)
	if !ok {
		c.Error(errors.Unauthorized("Missing access scope", nil))
		return access.Scope{}, false
	}
	return scope, true
}

func (h *Handler) List(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	annotations, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"annotations": annotations,
	})
}

type CreateAnnotationRequest struct {
	SelectedText string `json:"selected_text" binding:"required"`
	StartIndex   int    `json:"start_index" binding:"min=0"`
	EndIndex     int    `json:"end_index" binding:"min=0"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
	Body         string `json:"body" binding:"required"`
	Kind         string `json:"kind" binding:"omitempty,oneof=comment highlight question suggestion"`
}

func (h *Handler) Create(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	var form CreateAnnotationRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.Create(c.Request.Context(), scope, CreateAnnotationInput{
		SelectedText: form.SelectedText,
		StartIndex:   form.StartIndex,
		EndIndex:     form.EndIndex,
		StartOffset:  form.StartOffset,
		EndOffset:    form.EndOffset,
		Body:         form.Body,
		Kind:         form.Kind,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"annotation": result,
	})
}

// UpdateAnnotationRequest identifies its target in the body, keeping the
// owner and guest route paths identical
type UpdateAnnotationRequest struct {
	ID   uint64  `json:"id" binding:"required"`
	Body *string `json:"body"`
	Kind *string `json:"kind" binding:"omitempty,oneof=comment highlight question suggestion"`
}

func (h *Handler) Update(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	var form UpdateAnnotationRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.Update(c.Request.Context(), scope, form.ID, UpdateAnnotationInput{
		Body: form.Body,
		Kind: form.Kind,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"annotation": result,
	})
}

func (h *Handler) Delete(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	annotationID, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid annotation id", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), scope, annotationID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "annotation removed",
	})
}

type AddReplyRequest struct {
	AnnotationID uint64 `json:"annotation_id" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

func (h *Handler) AddReply(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	var form AddReplyRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	reply, err := h.service.AddReply(c.Request.Context(), scope, form.AnnotationID, form.Text)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"reply":   reply,
	})
}

type UpdateReplyRequest struct {
	AnnotationID uint64 `json:"annotation_id" binding:"required"`
	ReplyID      uint64 `json:"reply_id" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

func (h *Handler) UpdateReply(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	var form UpdateReplyRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	reply, err := h.service.UpdateReply(c.Request.Context(), scope, form.AnnotationID, form.ReplyID, form.Text)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reply":   reply,
	})
}

func (h *Handler) DeleteReply(c *gin.Context) {
	scope, ok := scopeFrom(c)
	if !ok {
		return
	}

	annotationID, err := strconv.ParseUint(c.Query("annotation_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid annotation id", err))
		return
	}

	replyID, err := strconv.ParseUint(c.Query("reply_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid reply id", err))
		return
	}

	if err := h.service.DeleteReply(c.Request.Context(), scope, annotationID, replyID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "reply removed",
	})
}
