package document

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collaborative-annotation-engine/internal/access"
	apiError "collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateUserDocument(ctx context.Context, userID uint64, document *Document) error {
	args := m.Called(ctx, userID, document)
	return args.Error(0)
}

func (m *MockService) GetUserDocuments(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedDocuments, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaginatedDocuments), args.Error(1)
}

func (m *MockService) GetDocumentByID(ctx context.Context, docID uint64, userID uint64) (*DocumentShowResponse, error) {
	args := m.Called(ctx, docID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentShowResponse), args.Error(1)
}

func (m *MockService) GetDocumentForGuest(ctx context.Context, docID uint64) (*DocumentShowResponse, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentShowResponse), args.Error(1)
}

func (m *MockService) GetDocumentOwner(ctx context.Context, documentID uint64) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockService) GetDocumentTitle(ctx context.Context, documentID uint64) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockService) GetDocumentText(ctx context.Context, documentID uint64) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}

func (m *MockService) DeleteDocument(ctx context.Context, docID uint64, userID uint64) error {
	args := m.Called(ctx, docID, userID)
	return args.Error(0)
}

func setupRouter(service Service, userID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})

	handler := NewHandler(service)
	router.POST("/documents", handler.Create)
	router.GET("/documents", handler.ShowUserDocuments)
	router.GET("/documents/:id", handler.ShowDocument)
	router.DELETE("/documents/:id", handler.DeleteDocument)
	return router
}

func performRequest(router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDocument_Success(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	service.On("CreateUserDocument", mock.Anything, uint64(1), mock.MatchedBy(func(d *Document) bool {
		return d.Title == "Welcome" && d.Content == "Welcome to machine learning."
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(2).(*Document).ID = 7
	})

	w := performRequest(router, http.MethodPost, "/documents", CreateDocumentRequest{
		Title:   "Welcome",
		Content: "Welcome to machine learning.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success  bool `json:"success"`
		Document struct {
			ID    uint64 `json:"id"`
			Title string `json:"title"`
		} `json:"document"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, uint64(7), response.Document.ID)
	service.AssertExpectations(t)
}

func TestCreateDocument_MissingContent(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	w := performRequest(router, http.MethodPost, "/documents", gin.H{"title": "Welcome"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	service.AssertNotCalled(t, "CreateUserDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestShowDocument_Success(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	service.On("GetDocumentByID", mock.Anything, uint64(7), uint64(1)).Return(&DocumentShowResponse{
		ID:         7,
		Title:      "Welcome",
		Content:    "Welcome to machine learning.",
		OwnerEmail: "owner@example.com",
	}, nil)

	w := performRequest(router, http.MethodGet, "/documents/7", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success  bool                 `json:"success"`
		Document DocumentShowResponse `json:"document"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Welcome to machine learning.", response.Document.Content)
}

func TestShowDocument_NotOwned(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 2)

	// non-owners can't tell a hidden document from a missing one
	service.On("GetDocumentByID", mock.Anything, uint64(7), uint64(2)).
		Return(nil, apiError.NotFound("Document not found", nil))

	w := performRequest(router, http.MethodGet, "/documents/7", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShowDocument_BadID(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	w := performRequest(router, http.MethodGet, "/documents/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShowUserDocuments_Paginates(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	service.On("GetUserDocuments", mock.Anything, uint64(1), 2, 10).Return(&PaginatedDocuments{
		Data: []DocumentListItem{{ID: 7, Title: "Welcome"}},
		Meta: DocumentsMeta{Total: 11, CurrentPage: 2, PerPage: 10, TotalPage: 2},
	}, nil)

	w := performRequest(router, http.MethodGet, "/documents?page=2&per_page=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestDeleteDocument_Success(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 1)

	service.On("DeleteDocument", mock.Anything, uint64(7), uint64(1)).Return(nil)

	w := performRequest(router, http.MethodDelete, "/documents/7", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	service.AssertExpectations(t)
}

func TestDeleteDocument_NotOwner(t *testing.T) {
	service := new(MockService)
	router := setupRouter(service, 2)

	service.On("DeleteDocument", mock.Anything, uint64(7), uint64(2)).
		Return(apiError.Forbidden("Only the owner can delete a document", nil))

	w := performRequest(router, http.MethodDelete, "/documents/7", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestShowDocumentForGuest_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := new(MockService)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/invite/:token", func(c *gin.Context) {
		c.Set(middleware.ScopeKey, access.Scope{
			Identity:   access.Identity{Email: "guest@example.com", Name: "Guest"},
			DocumentID: 7,
			OwnerEmail: "owner@example.com",
		})
		c.Next()
	}, NewHandler(service).ShowDocumentForGuest)

	service.On("GetDocumentForGuest", mock.Anything, uint64(7)).Return(&DocumentShowResponse{
		ID:      7,
		Title:   "Welcome",
		Content: "Welcome to machine learning.",
	}, nil)

	w := performRequest(router, http.MethodGet, "/invite/abc123", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestShowDocumentForGuest_MissingScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := new(MockService)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/invite/:token", NewHandler(service).ShowDocumentForGuest)

	w := performRequest(router, http.MethodGet, "/invite/abc123", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	service.AssertNotCalled(t, "GetDocumentForGuest", mock.Anything, mock.Anything)
}
