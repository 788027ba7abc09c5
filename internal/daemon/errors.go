package daemon

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"karaoke/internal/api"
	"karaoke/internal/catalog"
	"karaoke/internal/logging"
	"karaoke/internal/queue"
)

// classify maps service errors onto HTTP status codes and error codes.
func classify(err error) (int, string) {
	var qe *queue.Error
	if errors.As(err, &qe) {
		code := queue.CodeOf(err)
		switch qe.Kind {
		case queue.KindValidation:
			return http.StatusBadRequest, code
		case queue.KindNotFound:
			return http.StatusNotFound, code
		case queue.KindConflict:
			return http.StatusConflict, code
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, codeTimeout
		}
		return http.StatusInternalServerError, code
	}
	switch {
	case errors.Is(err, catalog.ErrInvalid):
		return http.StatusBadRequest, queue.CodeValidation
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, queue.CodeNoSong
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, codeTimeout
	default:
		return http.StatusInternalServerError, queue.CodeStore
	}
}

func (s *apiServer) fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(c.Request.Context(), s.logger).Error("request failed",
			logging.String("route", c.FullPath()),
			logging.String("code", code),
			logging.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: err.Error(), Code: code})
}

func (s *apiServer) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: message, Code: queue.CodeValidation})
}
