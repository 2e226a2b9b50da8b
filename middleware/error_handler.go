package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"tourguard/models"
	"tourguard/utils"
)

// ErrorHandler provides centralized error handling. Handlers report failures
// with c.Error and return; the envelope is written here.
type ErrorHandler struct {
	environment string
	logger      logrus.FieldLogger
}

func NewErrorHandler(environment string, logger logrus.FieldLogger) *ErrorHandler {
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

// Handle returns the error handling middleware
func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			eh.handleGinErrors(c)
		}
	})
}

func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	eh.logger.WithFields(logrus.Fields{
		"panic":      err,
		"stack":      string(debug.Stack()),
		"request_id": c.GetString(utils.ContextKeyRequestID),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    utils.GetUserID(c),
	}).Error("Panic recovered")

	var details interface{}
	if eh.environment == "development" {
		details = map[string]interface{}{"panic": err}
	}

	utils.ErrorResponse(c, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error", details)
	c.Abort()
}

func (eh *ErrorHandler) handleGinErrors(c *gin.Context) {
	lastError := c.Errors.Last()
	if lastError == nil {
		return
	}

	err := eh.normalize(lastError.Err)
	eh.logError(c, err)

	if c.Writer.Written() {
		return
	}
	utils.HandleServiceError(c, err)
}

// normalize maps errors that escaped the service layer onto the taxonomy.
func (eh *ErrorHandler) normalize(err error) error {
	if _, ok := utils.GetServiceError(err); ok {
		return err
	}

	var validationErr validator.ValidationErrors
	switch {
	case errors.As(err, &validationErr):
		return utils.NewValidationError("Validation failed")
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return utils.NewStorageError("database unavailable", err)
	default:
		return utils.NewInternalError("An unexpected error occurred", err)
	}
}

func (eh *ErrorHandler) logError(c *gin.Context, err error) {
	serviceErr, _ := utils.GetServiceError(err)
	entry := eh.logger.WithFields(logrus.Fields{
		"error":      err.Error(),
		"code":       serviceErr.Code,
		"request_id": c.GetString(utils.ContextKeyRequestID),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    utils.GetUserID(c),
	})

	if serviceErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Server error")
	} else {
		entry.Debug("Client error")
	}
}
