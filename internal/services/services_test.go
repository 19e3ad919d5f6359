package services

import (
	"fmt"
	"testing"
	"time"

	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.Must(uuid.NewV4()).String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    email,
		Username: username,
		Password: "hashed-password",
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestTask(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title, status string, createdAt time.Time) *models.Task {
	t.Helper()

	task := &models.Task{
		ID:        uuid.Must(uuid.NewV4()),
		OwnerID:   ownerID,
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create test task: %v", err)
	}
	return task
}
