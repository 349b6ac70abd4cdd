// Package middleware provides HTTP middleware for PlantKeeper.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/pkg/logger"
)

// ErrorHandler is a Gin middleware that provides centralized error handling.
// It captures errors added via c.Error() and returns a consistent JSON
// response. The field-to-rule violation map of a validation failure is the
// one stable wire format the core guarantees, so it is passed through
// untouched.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"code":       apperrors.CodeValidationFailed,
				"entity":     vErr.Entity,
				"violations": vErr.Violations,
			})
			return
		}

		var nfErr *apperrors.NotFoundError
		if errors.As(err, &nfErr) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    apperrors.CodeNotFound(nfErr.Entity),
				"message": nfErr.Error(),
			})
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			logger.Warn("Request error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.Error(appErr.Err),
			)
			c.JSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			})
			return
		}

		var stErr *apperrors.StorageError
		if errors.As(err, &stErr) {
			logger.Error("Storage error",
				zap.String("op", stErr.Op),
				zap.String("entity", stErr.Entity),
				zap.Error(stErr.Err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    apperrors.CodeStorageFailed,
				"message": "storage operation failed",
			})
			return
		}

		logger.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    apperrors.CodeInternal,
			"message": "An internal error occurred",
		})
	}
}
