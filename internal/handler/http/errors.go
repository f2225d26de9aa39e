package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
	"github.com/Evan-Lab/cloud-native/internal/service"
)

// HandleServiceError 把 Service 层的业务错误映射为 HTTP 状态码。
// 冷却错误带 Retry-After 头，方便客户端直接使用。
func HandleServiceError(c *gin.Context, err error) {
	var cooldownErr *service.CooldownError
	switch {
	case errors.As(err, &cooldownErr):
		retryAfter := cooldownErr.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, dto.ErrorDTO{
			Error:      cooldownErr.Error(),
			RetryAfter: retryAfter,
		})
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrSessionNotActive):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCanvasNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPublishFailed):
		ErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
