package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/application"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
	"github.com/oksasatya/project-management-api/pkg/response"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

type createProjectRequest struct {
	Name        string                 `json:"name" binding:"required,max=100"`
	Description string                 `json:"description" binding:"max=1000"`
	Status      string                 `json:"status" binding:"omitempty,oneof=planning active on-hold completed cancelled"`
	Priority    string                 `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	StartDate   *time.Time             `json:"startDate"`
	EndDate     *time.Time             `json:"endDate"`
	Budget      *float64               `json:"budget" binding:"omitempty,gte=0"`
	Progress    int                    `json:"progress" binding:"gte=0,lte=100"`
	Team        []string               `json:"team"`
	Managers    []string               `json:"managers"`
	Tags        []string               `json:"tags" binding:"omitempty,dive,max=50"`
	Color       string                 `json:"color" binding:"omitempty,hexcolor"`
	IsPublic    bool                   `json:"isPublic"`
	Settings    entity.ProjectSettings `json:"settings"`
}

type createTaskRequest struct {
	Title          string     `json:"title" binding:"required,max=200"`
	Description    string     `json:"description" binding:"max=2000"`
	Status         string     `json:"status" binding:"omitempty,oneof=todo in-progress review completed cancelled"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssigneeID     string     `json:"assignee"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours" binding:"omitempty,gte=0"`
	Tags           []string   `json:"tags" binding:"omitempty,dive,max=50"`
	ParentID       string     `json:"parent"`
}

func viewer(c *gin.Context) *entity.User {
	u, _ := middleware.CurrentUser(c)
	return u
}

// Create POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), viewer(c), application.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      entity.ProjectStatus(req.Status),
		Priority:    entity.Priority(req.Priority),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Progress:    req.Progress,
		Team:        req.Team,
		Managers:    req.Managers,
		Tags:        req.Tags,
		Color:       req.Color,
		IsPublic:    req.IsPublic,
		Settings:    req.Settings,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, p, "project created", nil)
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	ps, err := h.Svc.ListVisible(c.Request.Context(), viewer(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ps, "projects", map[string]any{"count": len(ps)})
}

// Search GET /api/projects/search?q=&size=
func (h *ProjectHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	ps, err := h.Svc.Search(c.Request.Context(), viewer(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ps, "projects", map[string]any{"count": len(ps)})
}

// Get GET /api/projects/:id (optional auth)
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"), viewer(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "project", nil)
}

// Summary GET /api/projects/:id/summary
func (h *ProjectHandler) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sum, "project summary", nil)
}

// CreateTask POST /api/projects/:id/tasks
func (h *ProjectHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	t, err := h.Svc.CreateTask(c.Request.Context(), viewer(c), c.Param("id"), application.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         entity.TaskStatus(req.Status),
		Priority:       entity.Priority(req.Priority),
		AssigneeID:     req.AssigneeID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
		ParentID:       req.ParentID,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "task created", nil)
}

// ListTasks GET /api/projects/:id/tasks
func (h *ProjectHandler) ListTasks(c *gin.Context) {
	ts, err := h.Svc.ListTasks(c.Request.Context(), viewer(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ts, "tasks", map[string]any{"count": len(ts)})
}
