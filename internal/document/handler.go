package document

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/middleware"
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

type CreateDocumentRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateDocumentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	doc := &Document{
		Title:   form.Title,
		Content: form.Content,
	}

	if err := h.service.CreateUserDocument(c.Request.Context(), userID.(uint64), doc); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"document": gin.H{"id": doc.ID, "title": doc.Title},
	})
}

func (h *Handler) ShowUserDocuments(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.GetUserDocuments(c.Request.Context(), userID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Data,
		"meta":    result.Meta,
	})
}

func (h *Handler) ShowDocument(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid document id", err))
		return
	}

	userID, _ := c.Get("user_id")

	doc, err := h.service.GetDocumentByID(c.Request.Context(), docID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": doc,
	})
}

// ShowDocumentForGuest serves the document text behind a resolved invite scope
func (h *Handler) ShowDocumentForGuest(c *gin.Context) {
	value, exists := c.Get(middleware.ScopeKey)
	if !exists {
		c.Error(errors.Unauthorized("Missing access scope", nil))
		return
	}
	scope := value.(access.Scope)

	doc, err := h.service.GetDocumentForGuest(c.Request.Context(), scope.DocumentID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"document": doc,
	})
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid document id", err))
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeleteDocument(c.Request.Context(), docID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
