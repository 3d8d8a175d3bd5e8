// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// UserProfileHandler handles the authenticated user's profile
type UserProfileHandler struct {
	users  *user.Service
	logger *logrus.Logger
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(users *user.Service, logger *logrus.Logger) *UserProfileHandler {
	return &UserProfileHandler{users: users, logger: logger}
}

// GetProfile handles GET /users/profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

// UpdateProfile handles PUT /users/profile
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Profile updated successfully", profile)
}
