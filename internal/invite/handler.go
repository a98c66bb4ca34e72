package invite

import (
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/utils"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=1,max=255"`
}

func (h *Handler) Create(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid document id", err))
		return
	}

	var form CreateInviteRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	requesterEmail := c.GetString("user_email")

	result, err := h.service.Create(c.Request.Context(), docID, requesterEmail, form.Email, form.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"invitation": result,
	})
}

func (h *Handler) List(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid document id", err))
		return
	}

	requesterEmail := c.GetString("user_email")
	page, pageSize := utils.GetPaginationParams(c)

	invitations, total, err := h.service.List(c.Request.Context(), docID, requesterEmail, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"invitations": invitations,
		"total":       total,
	})
}

func (h *Handler) Revoke(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid document id", err))
		return
	}

	inviteID, err := strconv.ParseUint(c.Param("inviteId"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid invitation id", err))
		return
	}

	requesterEmail := c.GetString("user_email")

	if err := h.service.Revoke(c.Request.Context(), docID, inviteID, requesterEmail); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "invitation revoked",
	})
}
