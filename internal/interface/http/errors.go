package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-management-api/internal/domain/apperr"
	"github.com/oksasatya/project-management-api/pkg/helpers"
	"github.com/oksasatya/project-management-api/pkg/response"
	"github.com/oksasatya/project-management-api/pkg/validation"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as an error envelope. Only the code and the safe
// message reach the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		status = http.StatusInternalServerError
		msg    = "internal server error"
		code   = "internal"
	)
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status, msg, code = StatusFor(ae.Kind), ae.Message, ae.Code
	}
	if status >= http.StatusInternalServerError {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.Error[any](c, status, msg, code)
}

func writeBindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
