package middleware

import (
	"net/http"
	"strings"

	"task-platform/backend/internal/models"
	"task-platform/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CurrentUserKey = "current_user"

// RequireAuth resolves the bearer credential to the current principal.
// Bad signature, malformed payload, expiry and wrong token type are all the
// same 401 to the caller; a subject that cannot be resolved to an active
// account gets 404, matching the refresh-vs-protected split of the API.
func RequireAuth(db *gorm.DB, authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := authService.DecodeToken(tokenStr)
		if err != nil || claims.TokenType != services.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid or expired token",
			})
			return
		}

		var user models.User
		if err := db.Where("id = ?", claims.Subject).First(&user).Error; err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "user_not_found",
				"message": "User not found or inactive",
			})
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// RequireRole gates an endpoint to the allowed role set. It must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "not_authenticated",
				"message": "Authentication is required",
			})
			return
		}

		if !user.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "insufficient_role",
				"message": "User role does not have access to this resource",
			})
			return
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
