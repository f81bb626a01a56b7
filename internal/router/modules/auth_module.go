package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
)

// AuthModule mounts the credential lifecycle routes under /auth.
// Public: register, verify-email/:token, reverify-email, login,
// forgot-password, reset-password/:token
// Protected: change-password, logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    middleware.TokenAuthenticator
}

func NewAuthModule(h *handlers.AuthHandler, auth middleware.TokenAuthenticator) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/register", m.Handler.Register)
	g.POST("/verify-email/:token", m.Handler.VerifyEmail)
	g.POST("/reverify-email", m.Handler.ReverifyEmail)
	g.POST("/login", m.Handler.Login)
	g.POST("/forgot-password", m.Handler.ForgotPassword)
	g.POST("/reset-password/:token", m.Handler.ResetPassword)

	authed := g.Group("/", middleware.Authenticate(m.Auth))
	{
		authed.PUT("/change-password", m.Handler.ChangePassword)
		authed.POST("/logout", m.Handler.Logout)
	}
}
