package main

import (
	"database/sql"
	"net/http"
	"time"

	"voicedesk/internal/httpapi"
	"voicedesk/internal/rbac"
	"voicedesk/internal/realtime"
	"voicedesk/internal/voiceplatform"
	"voicedesk/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, webhook voiceplatform.WebhookHandler, ws *realtime.Handler, authMW gin.HandlerFunc, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public; each validates its own credential).
	r.POST("/webhooks/voice/events", webhook.HandleCallEvent)
	r.POST("/webhooks/payment/callback", h.PaymentCallback)

	// AUTH routes (token issuance). Signup only parks the request; the
	// account appears once the payment callback confirms.
	authGroup := r.Group("/v1/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireOrg())
	{
		v1.GET("/me", h.Me)

		// Realtime call updates; the token rides the query string because
		// browser websockets cannot set headers.
		v1.GET("/ws", ws.Serve)

		assistants := v1.Group("/assistants")
		{
			assistants.POST("", h.CreateAssistant)
			assistants.GET("", h.ListAssistants)
			assistants.GET("/:assistant_id", h.GetAssistant)
			assistants.PUT("/:assistant_id", h.UpdateAssistant)
			assistants.DELETE("/:assistant_id", h.DeleteAssistant)
		}

		phones := v1.Group("/phone-numbers")
		{
			phones.POST("", h.CreatePhoneNumber)
			phones.GET("", h.ListPhoneNumbers)
			phones.DELETE("/:phone_id", h.DeletePhoneNumber)
			phones.PUT("/:phone_id/assistant", h.AssignAssistant)
		}

		calls := v1.Group("/calls")
		{
			calls.POST("", h.CreateCall)
			calls.GET("", h.ListCalls)
			calls.GET("/summary", h.CallsSummary)
			calls.GET("/:call_id", h.GetCall)
		}

		v1.GET("/plans", h.ListPlans)

		sub := v1.Group("/subscription")
		{
			sub.GET("", h.GetSubscription)
			sub.PUT("/plan", h.ChangePlan)
			sub.PUT("/minutes", h.AddMinutes)
			sub.DELETE("", h.CancelSubscription)
		}

		// ADMIN routes: plan management is restricted to owners and
		// platform operators.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAdmin))
		{
			admin.POST("/plans", h.AdminCreatePlan)
			admin.PUT("/plans/:plan_id", h.AdminUpdatePlan)
		}
	}
}
