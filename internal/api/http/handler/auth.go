// Package handler contains the HTTP request handlers for the lending API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/service"
)

// AuthHandler handles signup, login and logout requests.
type AuthHandler struct {
	authService *service.Auth
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService *service.Auth, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type signupRequest struct {
	User struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user" binding:"required"`
}

type loginRequest struct {
	User struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user" binding:"required"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// Signup registers a member account and returns its first token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), req.User.Name, req.User.Email, req.User.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{User: newUserResponse(user), Token: token})
}

// Login authenticates credentials and returns a fresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.User.Email, req.User.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{User: newUserResponse(user), Token: token})
}

// Logout is a no-op: tokens are stateless, so invalidation is a
// client-side discard. Kept for API symmetry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
