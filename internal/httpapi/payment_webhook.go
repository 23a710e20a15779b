package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/payment"
	"voicedesk/internal/users"
	"voicedesk/pkg/logger"
)

type paymentCallbackBody struct {
	Response string `json:"response"`
}

// PaymentCallback handles POST /webhooks/payment/callback, the gateway's
// server-to-server confirmation. The body is a base64 payload signed with
// X-VERIFY; a confirmed payment completes the parked signup.
//
// The gateway redelivers until it sees 2xx, so everything after signature
// verification acknowledges with 200: a consumed or expired pending signup is
// reported as ignored, not failed.
func (h Handlers) PaymentCallback(c *gin.Context) {
	log := logger.FromGin(c)

	var body paymentCallbackBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Response == "" {
		respondError(c, http.StatusBadRequest, "invalid_argument", "missing response payload")
		return
	}

	ev, err := h.Gateway.DecodeCallback(body.Response, c.GetHeader("X-VERIFY"))
	if err != nil {
		if errors.Is(err, payment.ErrBadSignature) {
			respondError(c, http.StatusUnauthorized, "unauthorized", "bad signature")
			return
		}
		respondServiceError(c, err)
		return
	}

	txnID := ev.Data.MerchantTransactionID
	if !ev.Completed() {
		log.Info("payment not completed", "transaction_id", txnID, "state", ev.Data.State)
		respondData(c, http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	u, err := h.Users.CompleteSignup(c.Request.Context(), txnID)
	if err != nil {
		if errors.Is(err, users.ErrPendingExpired) {
			log.Info("payment callback for unknown or consumed signup", "transaction_id", txnID)
			respondData(c, http.StatusOK, gin.H{"message": "ignored"})
			return
		}
		respondServiceError(c, err)
		return
	}

	log.Info("signup completed", "transaction_id", txnID, "user_id", u.ID)
	respondData(c, http.StatusOK, gin.H{"message": "processed", "user_id": u.ID})
}
