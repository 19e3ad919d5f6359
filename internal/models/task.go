package models

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID      uuid.UUID  `json:"owner_id" gorm:"type:uuid;not null;index"`
	AssignedToID *uuid.UUID `json:"assigned_to_id" gorm:"type:uuid"`
	Title        string     `json:"title" gorm:"not null;index"`
	Description  string     `json:"description"`
	Status       string     `json:"status" gorm:"not null;default:'pending'"`
	Priority     string     `json:"priority" gorm:"not null;default:'medium'"`
	DueDate      *time.Time `json:"due_date"`
	IsArchived   bool       `json:"is_archived" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
