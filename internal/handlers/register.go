package handlers

import (
	"errors"
	"net/http"
	"strings"

	"task-platform/backend/internal/services"
	"task-platform/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	dispatcher      *worker.Dispatcher
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, dispatcher *worker.Dispatcher) *RegisterHandler {
	return &RegisterHandler{db: db, registerService: registerService, dispatcher: dispatcher}
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := validateRegistrationRequest(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation_failed",
			"message": err.Error(),
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "duplicate_email",
				"message": "email already registered",
			})
		case errors.Is(err, services.ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "duplicate_username",
				"message": "username already registered",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "registration_failed",
				"message": "An unexpected error occurred. Please try again later.",
			})
		}
		return
	}

	h.dispatcher.WelcomeEmail(user)

	c.JSON(http.StatusCreated, NewUserProfileResponse(user))
}

func validateRegistrationRequest(req *services.RegistrationRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)

	if len(req.Username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	for _, char := range req.Username {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '_') {
			return errors.New("username can only contain letters, numbers, and underscores")
		}
	}

	return validatePassword(req.Password)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var hasUpper, hasDigit bool
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= '0' && char <= '9':
			hasDigit = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain an uppercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain a number")
	}

	return nil
}
