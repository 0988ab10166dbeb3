package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet_dashboard/internal/domain/entity"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error APIError `json:"error"`
}

// APIError carries a stable machine code and a human readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func classifyError(err error) (int, APIError) {
	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, APIError{Code: "validation_failed", Message: vErr.Message, Field: vErr.Field}
	case errors.Is(err, entity.ErrInvalidIdentifier):
		return http.StatusBadRequest, APIError{Code: "invalid_identifier", Message: err.Error()}
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, APIError{Code: "forbidden", Message: err.Error()}
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, APIError{Code: "not_found", Message: err.Error()}
	case errors.Is(err, entity.ErrBackendUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, APIError{Code: "backend_unavailable", Message: "wallet backend is unavailable"}
	default:
		return http.StatusInternalServerError, APIError{Code: "internal", Message: "internal error"}
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := classifyError(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: body})
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name, kind string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s id %q", entity.ErrInvalidIdentifier, kind, raw)
	}
	if err := entity.RequireID(kind, id); err != nil {
		return 0, err
	}
	return id, nil
}

// actorID reads the acting user from the X-User-ID header.
func actorID(c *gin.Context) (int64, error) {
	raw := c.GetHeader(userIDHeader)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s header %q", entity.ErrInvalidIdentifier, userIDHeader, raw)
	}
	if err := entity.RequireID("actor", id); err != nil {
		return 0, err
	}
	return id, nil
}
