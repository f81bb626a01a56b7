package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
)

type TeamModule struct {
	Handler *handlers.TeamHandler
	Auth    middleware.TokenAuthenticator
}

func NewTeamModule(h *handlers.TeamHandler, auth middleware.TokenAuthenticator) *TeamModule {
	return &TeamModule{Handler: h, Auth: auth}
}

func (m *TeamModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/teams", middleware.Authenticate(m.Auth))
	g.GET("", m.Handler.List)
	g.POST("", middleware.Authorize(entity.RoleAdmin, entity.RoleManager), m.Handler.Create)
}
