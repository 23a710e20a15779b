package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicedesk/internal/users"
)

// Signup handles POST /v1/auth/signup. It parks the signup and returns the
// hosted payment page; the account exists only after the payment callback.
func (h Handlers) Signup(c *gin.Context) {
	var req users.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Users.Signup(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusAccepted, res)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /v1/auth/login.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, pair, err := h.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"user":          u,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /v1/auth/refresh.
func (h Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.RefreshToken == "" {
		respondError(c, http.StatusBadRequest, "invalid_argument", "refresh_token required")
		return
	}
	pair, err := h.Users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Me handles GET /v1/me.
func (h Handlers) Me(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	u, err := h.Users.Me(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, u)
}
