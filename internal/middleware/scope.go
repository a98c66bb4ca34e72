package middleware

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/errors"
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ScopeKey is the context key the scope middlewares publish under
const ScopeKey = "scope"

type ScopeResolver interface {
	ResolveOwner(ctx context.Context, identity access.Identity, documentID uint64) (*access.Scope, error)
	ResolveGuest(ctx context.Context, token string) (*access.Scope, error)
}

// OwnerScope turns an authenticated session plus :id into a document scope.
// Runs after AuthMiddleWare, which provides the session identity.
func OwnerScope(resolver ScopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Error(errors.BadRequest("Invalid document id", err))
			c.Abort()
			return
		}

		identity := access.Identity{
			Email: c.GetString("user_email"),
			Name:  c.GetString("user_name"),
		}
		if identity.Email == "" {
			c.Error(errors.Unauthorized("Missing session identity", nil))
			c.Abort()
			return
		}

		scope, err := resolver.ResolveOwner(c.Request.Context(), identity, documentID)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(ScopeKey, *scope)
		c.Next()
	}
}

// GuestScope turns an invite token into a document scope
func GuestScope(resolver ScopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			c.Error(errors.Unauthorized("Missing invite token", nil))
			c.Abort()
			return
		}

		scope, err := resolver.ResolveGuest(c.Request.Context(), token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(ScopeKey, *scope)
		c.Next()
	}
}
