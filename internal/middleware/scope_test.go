package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"collaborative-annotation-engine/internal/access"
	apiError "collaborative-annotation-engine/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the ScopeResolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveOwner(ctx context.Context, identity access.Identity, documentID uint64) (*access.Scope, error) {
	args := m.Called(ctx, identity, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Scope), args.Error(1)
}

func (m *MockResolver) ResolveGuest(ctx context.Context, token string) (*access.Scope, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Scope), args.Error(1)
}

func captureScope(captured **access.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		if value, exists := c.Get(ScopeKey); exists {
			scope := value.(access.Scope)
			*captured = &scope
		}
		c.Status(http.StatusOK)
	}
}

func TestOwnerScope_PublishesScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	resolved := &access.Scope{
		Identity:   access.Identity{Email: "owner@example.com", Name: "Owner"},
		DocumentID: 7,
		OwnerEmail: "owner@example.com",
		IsOwner:    true,
	}
	resolver.On("ResolveOwner", mock.Anything, access.Identity{Email: "owner@example.com", Name: "Owner"}, uint64(7)).
		Return(resolved, nil)

	var captured *access.Scope
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/documents/:id", func(c *gin.Context) {
		c.Set("user_email", "owner@example.com")
		c.Set("user_name", "Owner")
		c.Next()
	}, OwnerScope(resolver), captureScope(&captured))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/7", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, captured)
	assert.True(t, captured.IsOwner)
	assert.Equal(t, uint64(7), captured.DocumentID)
}

func TestOwnerScope_BadDocumentID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/documents/:id", OwnerScope(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resolver.AssertNotCalled(t, "ResolveOwner", mock.Anything, mock.Anything, mock.Anything)
}

func TestOwnerScope_MissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/documents/:id", OwnerScope(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/7", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnerScope_NotTheOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	// resolver hides other people's documents behind a 404
	resolver.On("ResolveOwner", mock.Anything, mock.Anything, uint64(7)).
		Return(nil, apiError.NotFound("Document not found", nil))

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/documents/:id", func(c *gin.Context) {
		c.Set("user_email", "intruder@example.com")
		c.Next()
	}, OwnerScope(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/documents/7", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuestScope_PublishesScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	resolved := &access.Scope{
		Identity:   access.Identity{Email: "guest@example.com", Name: "Guest"},
		DocumentID: 7,
		OwnerEmail: "owner@example.com",
	}
	resolver.On("ResolveGuest", mock.Anything, "abc123").Return(resolved, nil)

	var captured *access.Scope
	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/invite/:token", GuestScope(resolver), captureScope(&captured))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invite/abc123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, captured)
	assert.False(t, captured.IsOwner)
	assert.Equal(t, "guest@example.com", captured.Identity.Email)
}

func TestGuestScope_ExpiredInvite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := new(MockResolver)

	resolver.On("ResolveGuest", mock.Anything, "stale").
		Return(nil, apiError.Unauthorized("Invite link has expired", nil))

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/invite/:token", GuestScope(resolver), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invite/stale", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
