// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	users  *user.Service
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Login successful", resp)
}
