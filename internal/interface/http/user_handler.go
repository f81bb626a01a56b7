package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/application"
	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/interface/middleware"
	"github.com/oksasatya/project-management-api/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FirstName   *string             `json:"firstName" binding:"omitempty,personname"`
	LastName    *string             `json:"lastName" binding:"omitempty,personname"`
	Department  *string             `json:"department" binding:"omitempty,max=100"`
	Phone       *string             `json:"phone" binding:"omitempty,max=32"`
	Bio         *string             `json:"bio" binding:"omitempty,max=500"`
	Skills      []string            `json:"skills" binding:"omitempty,max=50,dive,max=50"`
	Preferences *entity.Preferences `json:"preferences"`
}

// GetProfile GET /api/users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	prof, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, prof, "profile", nil)
}

// UpdateProfile PUT /api/users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	prof, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Department:  req.Department,
		Phone:       req.Phone,
		Bio:         req.Bio,
		Skills:      req.Skills,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, prof, "profile updated", nil)
}

// UploadAvatar POST /api/users/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+1<<10)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", map[string]string{"avatar": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusBadRequest, "avatar must be at most 5MB", map[string]string{"avatar": "too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeBindError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	prof, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, prof, "avatar updated", nil)
}

// List GET /api/users?limit=&offset= (admin, manager)
func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	users, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users), "offset": offset})
}
