package handlers

import (
	"net/http"

	"task-platform/backend/internal/models"
	"task-platform/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RefreshHandler struct {
	db          *gorm.DB
	authService services.AuthService
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func NewRefreshHandler(db *gorm.DB, authService services.AuthService) *RefreshHandler {
	return &RefreshHandler{db: db, authService: authService}
}

// Refresh exchanges a valid refresh token for a new access token. The role is
// re-read from current state here, not taken from the old token.
func (h *RefreshHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "refresh_token is required",
		})
		return
	}

	claims, err := h.authService.DecodeToken(req.RefreshToken)
	if err != nil || claims.TokenType != services.TokenTypeRefresh {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Invalid refresh token",
		})
		return
	}

	var user models.User
	if err := h.db.Where("id = ?", claims.Subject).First(&user).Error; err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "user_not_found",
			"message": "User not found",
		})
		return
	}

	accessToken, err := h.authService.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "token_generation_failed",
			"message": "Failed to generate access token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}
