package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"voicedesk/internal/assistant"
	"voicedesk/internal/audit"
	"voicedesk/internal/auth"
	"voicedesk/internal/calllog"
	"voicedesk/internal/payment"
	"voicedesk/internal/phone"
	"voicedesk/internal/plan"
	"voicedesk/internal/reporting"
	"voicedesk/internal/subscription"
	"voicedesk/internal/users"
	"voicedesk/internal/voiceplatform"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Users         *users.Service
	Assistants    *assistant.Service
	Phones        *phone.Service
	Plans         *plan.Service
	Subscriptions *subscription.Service
	CallLogs      calllog.Repository
	Reports       *reporting.Service
	Platform      voiceplatform.Provider
	Gateway       *payment.Client
	Audit         *audit.Service

	// Redis backs the per-org concurrent-call cap on outbound call creation.
	Redis              *redis.Client
	MaxConcurrentCalls int
}

// identity pulls the authenticated user and org out of the request context.
// The auth middleware guarantees both on protected routes.
func identity(c *gin.Context) (userID, orgID string, ok bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "missing identity")
		return "", "", false
	}
	orgID, err = auth.OrgID(c.Request.Context())
	if err != nil || orgID == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", "org_id required")
		return "", "", false
	}
	return userID, orgID, true
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_argument", "invalid json body")
		return false
	}
	return true
}
