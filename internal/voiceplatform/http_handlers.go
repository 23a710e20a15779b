package voiceplatform

import (
	"context"
	"crypto/subtle"
	"net/http"

	"voicedesk/internal/calllog"
	"voicedesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler converts provider webhook envelopes to internal events and
// delegates to the reconciler.
//
// No business logic here: the handler validates shape, answers 400 for
// payloads that can never be processed (so the provider stops retrying them),
// and 500 for transient processing failures (so it retries).
type WebhookHandler struct {
	Reconciler EventApplier

	// Secret, when set, must match the x-webhook-secret header.
	Secret string

	// OnCallEnded, when set, runs after an ended or report event mutates a
	// row. Used to release the org's concurrent-call slot.
	OnCallEnded func(ctx context.Context, orgID string)
}

// EventApplier is implemented by calllog.Reconciler.
type EventApplier interface {
	ApplyEvent(ctx context.Context, ev calllog.Event) (calllog.Outcome, error)
}

const webhookSecretHeader = "x-webhook-secret"

func (h WebhookHandler) HandleCallEvent(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Reconciler == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "reconciler not configured"}})
		return
	}
	if h.Secret != "" {
		got := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized", "message": "bad webhook secret"}})
			return
		}
	}

	var env WebhookEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		log.Warn("webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "bad_request", "message": "invalid payload"}})
		return
	}
	if err := env.Validate(); err != nil {
		log.Warn("webhook validation failed", "type", env.Message.Type)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "bad_request", "message": "malformed webhook payload"}})
		return
	}

	ev, ok := env.ToEvent()
	if !ok {
		// Untracked status; acknowledge so the provider does not retry.
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "ignored"}})
		return
	}

	out, err := h.Reconciler.ApplyEvent(c.Request.Context(), ev)
	if err != nil {
		log.Error("webhook reconciliation failed", "call_id", ev.CallID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "event processing failed"}})
		return
	}

	if out.FirstTerminal && h.OnCallEnded != nil && out.Log != nil {
		h.OnCallEnded(c.Request.Context(), out.Log.OrgID)
	}

	log.Info("webhook processed", "call_id", ev.CallID, "action", string(out.Action))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "processed", "action": string(out.Action)}})
}
