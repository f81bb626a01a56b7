package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/application"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
	"github.com/oksasatya/project-management-api/pkg/response"
)

type TeamHandler struct {
	Svc    *application.TeamService
	Logger *logrus.Logger
}

func NewTeamHandler(svc *application.TeamService, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{Svc: svc, Logger: logger}
}

type createTeamRequest struct {
	Name        string               `json:"name" binding:"required,max=100"`
	Description string               `json:"description" binding:"max=500"`
	Members     []string             `json:"members"`
	Projects    []string             `json:"projects"`
	Department  string               `json:"department" binding:"max=100"`
	Settings    *entity.TeamSettings `json:"settings"`
}

// Create POST /api/teams (admin, manager)
func (h *TeamHandler) Create(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), viewer(c), application.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		Members:     req.Members,
		Projects:    req.Projects,
		Department:  req.Department,
		Settings:    req.Settings,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "team created", nil)
}

// List GET /api/teams
func (h *TeamHandler) List(c *gin.Context) {
	ts, err := h.Svc.ListForUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ts, "teams", map[string]any{"count": len(ts)})
}
