package middleware

import (
	"collaborative-annotation-engine/internal/auth"
	"collaborative-annotation-engine/internal/errors"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionUser is the resolved account behind an owner session.
type SessionUser struct {
	ID           uint64
	Email        string
	Name         string
	TokenVersion uint64
}

type UserProvider interface {
	GetSessionUser(ctx context.Context, id uint64) (*SessionUser, error)
}

type Auth struct {
	Users UserProvider
}

func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		var token string
		tokenQuery := ctx.Query("token")

		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if tokenQuery != "" {
			token = tokenQuery
		} else {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		parsedToken, err := auth.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		userID, tokenVersion, err := auth.GetDataFromToken(parsedToken)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		user, err := m.Users.GetSessionUser(ctx.Request.Context(), userID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid User ID!", err))
			ctx.Abort()
			return
		}

		// Check token version
		if user.TokenVersion != tokenVersion {
			ctx.Error(errors.Unauthorized("Invalid token version!", nil))
			ctx.Abort()
			return
		}

		ctx.Set("user_id", user.ID)
		ctx.Set("user_email", user.Email)
		ctx.Set("user_name", user.Name)
		ctx.Set("jwt_token", token)
		ctx.Next()
	}
}
