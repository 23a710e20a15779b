package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/auth"
	"voicedesk/internal/plan"
	"voicedesk/pkg/logger"
)

// ListPlans handles GET /v1/plans.
func (h Handlers) ListPlans(c *gin.Context) {
	plans, err := h.Plans.ListActive(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, plans)
}

// GetSubscription handles GET /v1/subscription.
func (h Handlers) GetSubscription(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.GetActive(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sub)
}

type changePlanRequest struct {
	PlanID       string            `json:"plan_id"`
	BillingCycle plan.BillingCycle `json:"billing_cycle"`
}

// ChangePlan handles PUT /v1/subscription/plan.
func (h Handlers) ChangePlan(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req changePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.Subscriptions.ChangePlan(c.Request.Context(), userID, req.PlanID, req.BillingCycle)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sub)
}

type addMinutesRequest struct {
	Minutes int64 `json:"minutes"`
}

// AddMinutes handles PUT /v1/subscription/minutes.
func (h Handlers) AddMinutes(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req addMinutesRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, purchase, err := h.Subscriptions.AddMinutes(c.Request.Context(), userID, req.Minutes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"subscription": sub, "purchase": purchase})
}

// CancelSubscription handles DELETE /v1/subscription.
func (h Handlers) CancelSubscription(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Cancel(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, sub)
}

// AdminCreatePlan handles POST /v1/admin/plans.
func (h Handlers) AdminCreatePlan(c *gin.Context) {
	var req plan.UpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Plans.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.logAdminAction(c, "plan created", p.ID)
	respondData(c, http.StatusCreated, p)
}

// AdminUpdatePlan handles PUT /v1/admin/plans/:plan_id.
func (h Handlers) AdminUpdatePlan(c *gin.Context) {
	var req plan.UpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Plans.Update(c.Request.Context(), c.Param("plan_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.logAdminAction(c, "plan updated", p.ID)
	respondData(c, http.StatusOK, p)
}

func (h Handlers) logAdminAction(c *gin.Context, message, planID string) {
	userID, _ := auth.UserID(c.Request.Context())
	orgID, _ := auth.OrgID(c.Request.Context())
	if h.Audit != nil {
		if err := h.Audit.LogAdminAction(c.Request.Context(), orgID, userID, message, map[string]any{"plan_id": planID}); err != nil {
			logger.FromGin(c).Warn("audit admin action", "err", err)
		}
	}
}
