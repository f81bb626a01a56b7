package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// TokenAuthenticator resolves an access token to an active user.
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string, touch bool) (*entity.User, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate requires a valid bearer token for an active user. On success
// the user is stored under CtxUserKey and its id under CtxUserIDKey, and the
// user's last login is refreshed.
func Authenticate(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "access denied, no token provided", "missing_access_token")
			return
		}
		u, err := auth.AuthenticateToken(c.Request.Context(), token, true)
		if err != nil {
			abortWith(c, err)
			return
		}
		setUser(c, u)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if u, err := auth.AuthenticateToken(c.Request.Context(), token, false); err == nil {
				setUser(c, u)
			}
		}
		c.Next()
	}
}

// Authorize must run after Authenticate. It rejects users whose role is not
// in roles.
func Authorize(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "authentication required", "authentication_required")
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "access denied, insufficient permissions", "insufficient_role")
	}
}

// CurrentUser returns the user attached by Authenticate or OptionalAuth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

func setUser(c *gin.Context, u *entity.User) {
	c.Set(CtxUserKey, u)
	c.Set(CtxUserIDKey, u.ID)
}

func abortWith(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind == apperr.KindUnauthorized {
		response.Abort(c, http.StatusUnauthorized, ae.Message, ae.Code)
		return
	}
	response.Abort(c, http.StatusInternalServerError, "internal server error", "internal")
}
