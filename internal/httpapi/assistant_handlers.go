package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/assistant"
)

// CreateAssistant handles POST /v1/assistants.
func (h Handlers) CreateAssistant(c *gin.Context) {
	userID, orgID, ok := identity(c)
	if !ok {
		return
	}
	var req assistant.UpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Assistants.Create(c.Request.Context(), orgID, userID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusCreated, a)
}

// ListAssistants handles GET /v1/assistants.
func (h Handlers) ListAssistants(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Assistants.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, list)
}

// GetAssistant handles GET /v1/assistants/:assistant_id.
func (h Handlers) GetAssistant(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	a, err := h.Assistants.Get(c.Request.Context(), userID, c.Param("assistant_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, a)
}

// UpdateAssistant handles PUT /v1/assistants/:assistant_id.
func (h Handlers) UpdateAssistant(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	var req assistant.UpsertRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Assistants.Update(c.Request.Context(), userID, c.Param("assistant_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, a)
}

// DeleteAssistant handles DELETE /v1/assistants/:assistant_id.
func (h Handlers) DeleteAssistant(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	if err := h.Assistants.Delete(c.Request.Context(), userID, c.Param("assistant_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"message": "deleted"})
}
