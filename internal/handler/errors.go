package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/prohmpiriya/explore-events/pkg/middleware"
	"github.com/prohmpiriya/explore-events/pkg/response"
	"go.uber.org/zap"
)

// handleError writes the error envelope matching err's kind
func handleError(c *gin.Context, err error) {
	switch kind := domain.KindOf(err); kind {
	case domain.KindNotFound:
		response.Error(c, http.StatusNotFound, kind.String(), err.Error())
	case domain.KindInvalidParam:
		response.Error(c, http.StatusBadRequest, kind.String(), err.Error())
	case domain.KindForbidden, domain.KindConflict:
		response.Error(c, http.StatusConflict, kind.String(), err.Error())
	default:
		logger.Get().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}

// handleBindError answers a request whose body or query failed to bind
func handleBindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	return parseID(name, c.Param(name))
}

// queryID parses a required positive integer query parameter
func queryID(c *gin.Context, name string) (int64, error) {
	return parseID(name, c.Query(name))
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidParameter, name, raw)
	}
	return id, nil
}
