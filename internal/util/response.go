package util

import (
	"errors"
	"net/http"
	"trading_edu_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// RespondError maps domain errors onto the response envelope.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingUser):
		Unauthorized(c)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidOption):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, ErrLevelNotFound),
		errors.Is(err, ErrNoQuestions), errors.Is(err, ErrNoActiveQuiz):
		NotFound(c, err.Error())
	case errors.Is(err, ErrNoModuleSelected), errors.Is(err, ErrQuizNotInProgress),
		errors.Is(err, ErrQuizNotComplete), errors.Is(err, ErrQuestionNotAnswered):
		Conflict(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
