package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	chatdomain "github.com/freshmart/storefront/internal/chat/domain"
	orderdomain "github.com/freshmart/storefront/internal/order/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	userdomain "github.com/freshmart/storefront/internal/user/domain"
)

var ErrInvalidRequest = errors.New("invalid request")

type errorPayload struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors recorded on the context into a
// consistent JSON error envelope.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

// AbortWithError records an error for the error middleware and stops the
// handler chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var violations *productdomain.Violations
	if errors.As(err, &violations) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation failed",
			Errors:  violations.Rules,
		}
	}

	switch {
	case isBadRequest(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isConflict(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isUpstreamDown(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "AI provider is not available right now",
		}
	case isUpstreamError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "AI provider request failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isBadRequest(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, productdomain.ErrInvalidAction),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrNoProducts),
		errors.Is(err, orderdomain.ErrMissingUser),
		errors.Is(err, userdomain.ErrMissingFields),
		errors.Is(err, chatdomain.ErrEmptyMessage):
		return true
	}
	return false
}

func isNotFound(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound):
		return true
	}
	return false
}

func isConflict(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrDuplicateName),
		errors.Is(err, userdomain.ErrDuplicateEmail):
		return true
	}
	return false
}

func isUpstreamDown(err error) bool {
	switch {
	case errors.Is(err, aidomain.ErrNoProvider),
		errors.Is(err, aidomain.ErrNotConfigured),
		errors.Is(err, aidomain.ErrUnavailable):
		return true
	}
	return false
}

func isUpstreamError(err error) bool {
	switch {
	case errors.Is(err, aidomain.ErrInvalidKey),
		errors.Is(err, aidomain.ErrQuotaExceeded),
		errors.Is(err, aidomain.ErrModelNotFound),
		errors.Is(err, aidomain.ErrEmptyResponse):
		return true
	}
	return false
}
