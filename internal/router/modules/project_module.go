package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
)

// ProjectModule mounts /projects. A single project is readable anonymously
// when it is public; everything else requires a bearer token.
type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Auth    middleware.TokenAuthenticator
}

func NewProjectModule(h *handlers.ProjectHandler, auth middleware.TokenAuthenticator) *ProjectModule {
	return &ProjectModule{Handler: h, Auth: auth}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	authn := middleware.Authenticate(m.Auth)

	g := rg.Group("/projects")
	g.GET("/:id", middleware.OptionalAuth(m.Auth), m.Handler.Get)

	g.POST("", authn, m.Handler.Create)
	g.GET("", authn, m.Handler.List)
	g.GET("/search", authn, m.Handler.Search)
	g.GET("/:id/summary", authn, m.Handler.Summary)
	g.GET("/:id/tasks", authn, m.Handler.ListTasks)
	g.POST("/:id/tasks", authn, m.Handler.CreateTask)
}
