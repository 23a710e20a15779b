package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/assistant"
	"voicedesk/internal/calllog"
	"voicedesk/internal/payment"
	"voicedesk/internal/phone"
	"voicedesk/internal/plan"
	"voicedesk/internal/reporting"
	"voicedesk/internal/subscription"
	"voicedesk/internal/users"
	"voicedesk/internal/voiceplatform"
	"voicedesk/pkg/logger"
)

// Every response uses one envelope: {"data": ...} on success,
// {"error": {"code", "message"}} on failure. Handlers never build ad-hoc
// shapes.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondServiceError maps domain errors to HTTP statuses in one place.
func respondServiceError(c *gin.Context, err error) {
	var apiErr *voiceplatform.APIError
	var gwErr *payment.GatewayError

	switch {
	case errors.Is(err, assistant.ErrNotFound),
		errors.Is(err, phone.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, calllog.ErrNotFound),
		errors.Is(err, users.ErrNotFound),
		errors.Is(err, subscription.ErrNotFound),
		errors.Is(err, subscription.ErrNoActiveSubscription),
		errors.Is(err, users.ErrPendingExpired):
		respondError(c, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, assistant.ErrInvalidArgument),
		errors.Is(err, phone.ErrInvalidArgument),
		errors.Is(err, plan.ErrInvalidArgument),
		errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, subscription.ErrInvalidArgument),
		errors.Is(err, payment.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, calllog.ErrInvalidEvent):
		respondError(c, http.StatusBadRequest, "invalid_argument", err.Error())

	case errors.Is(err, phone.ErrNumberTaken),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, calllog.ErrConflict):
		respondError(c, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, users.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")

	case errors.As(err, &apiErr):
		// Upstream voice-platform errors pass through with their status.
		respondError(c, apiErr.StatusCode, "upstream_error", apiErr.Body)

	case errors.As(err, &gwErr):
		respondError(c, gwErr.StatusCode, "payment_gateway_error", gwErr.Body)

	default:
		logger.From(c.Request.Context()).Error("unhandled service error", "err", err)
		respondError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}
