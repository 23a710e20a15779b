package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/phone"
)

// CreatePhoneNumber handles POST /v1/phone-numbers.
func (h Handlers) CreatePhoneNumber(c *gin.Context) {
	userID, orgID, ok := identity(c)
	if !ok {
		return
	}
	var req phone.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.Phones.Create(c.Request.Context(), orgID, userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, n)
}

// ListPhoneNumbers handles GET /v1/phone-numbers.
func (h Handlers) ListPhoneNumbers(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Phones.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

// DeletePhoneNumber handles DELETE /v1/phone-numbers/:phone_id.
func (h Handlers) DeletePhoneNumber(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Phones.Delete(c.Request.Context(), userID, c.Param("phone_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "deleted"})
}

type assignAssistantRequest struct {
	AssistantID string `json:"assistant_id"`
}

// AssignAssistant handles PUT /v1/phone-numbers/:phone_id/assistant.
func (h Handlers) AssignAssistant(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req assignAssistantRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.Phones.AssignAssistant(c.Request.Context(), userID, c.Param("phone_id"), req.AssistantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, n)
}
