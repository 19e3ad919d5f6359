package services

import (
	"time"

	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskFilter carries the listing parameters. Page and PerPage are assumed to
// be bounds-checked by the handler before they reach the service.
type TaskFilter struct {
	Status   string
	Priority string
	Archived bool
	Page     int
	PerPage  int
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
	IsArchived   *bool      `json:"is_archived"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, task *models.Task) error
	GetTask(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error)
	ListTasks(db *gorm.DB, ownerID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error)
	UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, update TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error
	ArchiveCompletedTasks(db *gorm.DB, olderThan time.Duration) (int64, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task *models.Task) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(task).Error
	})
}

// GetTask scopes the lookup by owner so a foreign task id is indistinguishable
// from a missing one.
func (s *TaskServiceImpl) GetTask(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error
	return task, err
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, ownerID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	query := db.Model(&models.Task{}).
		Where("owner_id = ? AND is_archived = ?", ownerID, filter.Archived)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, update TaskUpdate) (models.Task, error) {
	var task models.Task

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if update.Title != nil {
			updates["title"] = *update.Title
		}
		if update.Description != nil {
			updates["description"] = *update.Description
		}
		if update.Status != nil {
			updates["status"] = *update.Status
		}
		if update.Priority != nil {
			updates["priority"] = *update.Priority
		}
		if update.DueDate != nil {
			updates["due_date"] = *update.DueDate
		}
		if update.AssignedToID != nil {
			updates["assigned_to_id"] = *update.AssignedToID
		}
		if update.IsArchived != nil {
			updates["is_archived"] = *update.IsArchived
		}

		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now()

		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).First(&task).Error
	})

	return task, err
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ArchiveCompletedTasks flips is_archived for tasks finished before the
// cutoff. Used by the daily housekeeping job.
func (s *TaskServiceImpl) ArchiveCompletedTasks(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := db.Model(&models.Task{}).
		Where("status = ? AND is_archived = ? AND updated_at < ?", models.StatusDone, false, cutoff).
		Updates(map[string]interface{}{"is_archived": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}
