package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.TokenAuthenticator
}

func NewUserModule(h *handlers.UserHandler, auth middleware.TokenAuthenticator) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users", middleware.Authenticate(m.Auth))
	g.GET("/me", m.Handler.GetProfile)
	g.PUT("/me", m.Handler.UpdateProfile)
	g.POST("/me/avatar", m.Handler.UploadAvatar)
	g.GET("", middleware.Authorize(entity.RoleAdmin, entity.RoleManager), m.Handler.List)
}
