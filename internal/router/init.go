package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/project-management-api/internal/interface/http"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
	"github.com/oksasatya/project-management-api/internal/router/modules"
)

// Deps are the handlers and the authenticator the modules are built from.
type Deps struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Projects *handlers.ProjectHandler
	Teams    *handlers.TeamHandler

	Authenticator middleware.TokenAuthenticator
	Logger        *logrus.Logger

	AccessLog    bool
	DebugMetrics bool
}

// InitModules wires every feature module into the registry.
func InitModules(r *Registry, d Deps) {
	r.Add(
		modules.NewAuthModule(d.Auth, d.Authenticator),
		modules.NewUserModule(d.Users, d.Authenticator),
		modules.NewProjectModule(d.Projects, d.Authenticator),
		modules.NewTeamModule(d.Teams, d.Authenticator),
	)
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule())
	}
}

// New builds the engine with the global middleware chain and every module
// mounted under /api.
func New(d Deps, extra ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RealIP())
	if d.AccessLog && d.Logger != nil {
		engine.Use(middleware.AccessLog(d.Logger))
	}
	engine.Use(extra...)

	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	reg := NewRegistry(engine, "/api")
	InitModules(reg, d)
	reg.RegisterAll()
	return engine
}
