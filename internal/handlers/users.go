package handlers

import (
	"errors"
	"net/http"

	"task-platform/backend/internal/middleware"
	"task-platform/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	userService services.UserService
}

func NewUserHandler(db *gorm.DB, userService services.UserService) *UserHandler {
	return &UserHandler{db: db, userService: userService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	c.JSON(http.StatusOK, NewUserProfileResponse(user))
}

// UpdateMe only accepts non-privileged fields; role and active flag are
// admin-only via UpdateUser.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	var update services.UserSelfUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	updated, err := h.userService.UpdateProfile(h.db, user.ID, update)
	if err != nil {
		handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserProfileResponse(updated))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(h.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "user_request_failed",
			"message": "Failed to list users",
		})
		return
	}

	response := make([]*UserProfileResponse, 0, len(users))
	for i := range users {
		response = append(response, NewUserProfileResponse(&users[i]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found", "message": "User not found"})
		return
	}

	var update services.UserAdminUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	updated, err := h.userService.AdminUpdateUser(h.db, id, update)
	if err != nil {
		handleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserProfileResponse(updated))
}

func handleUserError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "user_not_found",
			"message": "User not found",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "user_request_failed",
		"message": "Failed to process user request",
	})
}
