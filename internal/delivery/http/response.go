package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loomhouse/storefront/internal/domain"
)

// Response defines the standard API response envelope
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    Meta       `json:"meta"`
}

// ErrorInfo provides details for error responses
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

func newMeta(c *gin.Context) Meta {
	return Meta{RequestID: requestID(c), Timestamp: time.Now().Format(time.RFC3339)}
}

func requestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}

// success writes a success response with the standard envelope
func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    newMeta(c),
	})
}

// failure writes an error response. data, when non-nil, still carries a usable payload.
func failure(c *gin.Context, code int, errCode, message string, data any) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
		Data:    data,
		Error:   &ErrorInfo{Code: errCode, Message: message},
		Meta:    newMeta(c),
	})
}

// respondError maps a usecase error onto a status code and error envelope
func respondError(c *gin.Context, err error) {
	respondErrorWithData(c, err, nil)
}

func respondErrorWithData(c *gin.Context, err error, data any) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", requestID(c)).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	failure(c, status, code, message, data)
}

// classify returns the HTTP status, machine code and user-facing message for err
func classify(err error) (int, string, string) {
	var apiErr *domain.APIError

	switch {
	case errors.Is(err, domain.ErrHandpickLimit):
		return http.StatusBadRequest, "HANDPICK_LIMIT", domain.ErrHandpickLimit.Error()
	case errors.Is(err, domain.ErrNoPriceTier):
		return http.StatusBadRequest, "NO_PRICE_TIER", domain.ErrNoPriceTier.Error()
	case errors.Is(err, domain.ErrNoImages):
		return http.StatusBadRequest, "NO_IMAGES", domain.ErrNoImages.Error()
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST", err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Product not found"
	case errors.Is(err, domain.ErrFeedUnavailable):
		return http.StatusBadGateway, "FEED_UNAVAILABLE", domain.ErrFeedUnavailable.Error()
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		return apiErr.StatusCode, "CATALOG_REJECTED", message
	case errors.Is(err, domain.ErrCatalogAPIFailure):
		message := "Catalog service unavailable"
		if apiErr != nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return http.StatusBadGateway, "CATALOG_UNAVAILABLE", message
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
