package services

import (
	"time"

	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// UserSelfUpdate is the profile surface a principal may edit on itself.
// Role and active-flag changes require the admin update below.
type UserSelfUpdate struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

type UserAdminUpdate struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role" binding:"omitempty,oneof=user manager admin"`
	IsActive *bool   `json:"is_active"`
}

type UserService interface {
	GetUserByID(db *gorm.DB, id uuid.UUID) (*models.User, error)
	ListUsers(db *gorm.DB) ([]models.User, error)
	UpdateProfile(db *gorm.DB, id uuid.UUID, update UserSelfUpdate) (*models.User, error)
	AdminUpdateUser(db *gorm.DB, id uuid.UUID, update UserAdminUpdate) (*models.User, error)
}

type UserServiceImpl struct{}

func NewUserService() *UserServiceImpl {
	return &UserServiceImpl{}
}

func (s *UserServiceImpl) GetUserByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) ListUsers(db *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserServiceImpl) UpdateProfile(db *gorm.DB, id uuid.UUID, update UserSelfUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if update.FullName != nil {
		updates["full_name"] = *update.FullName
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}

	return s.applyUpdates(db, id, updates)
}

func (s *UserServiceImpl) AdminUpdateUser(db *gorm.DB, id uuid.UUID, update UserAdminUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if update.FullName != nil {
		updates["full_name"] = *update.FullName
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.Role != nil {
		updates["role"] = *update.Role
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	return s.applyUpdates(db, id, updates)
}

func (s *UserServiceImpl) applyUpdates(db *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	var user models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}

		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now()

		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
