package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"task-platform/backend/internal/models"
	"task-platform/backend/internal/services"

	"gorm.io/gorm"
)

// Jobs holds the handlers behind the queue. Email and report delivery are
// stubs that log; the archive job does the real housekeeping.
type Jobs struct {
	db           *gorm.DB
	taskService  services.TaskService
	archiveAfter time.Duration
}

func NewJobs(db *gorm.DB, taskService services.TaskService, archiveAfter time.Duration) *Jobs {
	return &Jobs{
		db:           db,
		taskService:  taskService,
		archiveAfter: archiveAfter,
	}
}

func (j *Jobs) Register(w *Worker) {
	w.RegisterHandler(JobTypeWelcomeEmail, j.SendWelcomeEmail)
	w.RegisterHandler(JobTypeDueDateReminder, j.SendDueDateReminder)
	w.RegisterHandler(JobTypeTaskNotification, j.SendTaskNotification)
	w.RegisterHandler(JobTypeWeeklyReport, j.GenerateWeeklyReport)
	w.RegisterHandler(JobTypeArchiveOldTasks, j.ArchiveOldTasks)
}

func (j *Jobs) SendWelcomeEmail(ctx context.Context, job *Job) error {
	email, ok := job.Payload["email"].(string)
	if !ok {
		return fmt.Errorf("welcome_email job %s missing email payload", job.ID)
	}

	log.Printf("Sending welcome email to %s (user_id=%v)", email, job.Payload["user_id"])
	return nil
}

func (j *Jobs) SendDueDateReminder(ctx context.Context, job *Job) error {
	title, _ := job.Payload["title"].(string)
	log.Printf("Reminder: task %q is due soon (user_id=%v)", title, job.Payload["user_id"])
	return nil
}

func (j *Jobs) SendTaskNotification(ctx context.Context, job *Job) error {
	log.Printf("Notification: user=%v task=%v event=%v",
		job.Payload["user_id"], job.Payload["task_id"], job.Payload["event"])
	return nil
}

func (j *Jobs) GenerateWeeklyReport(ctx context.Context, job *Job) error {
	userID, _ := job.Payload["user_id"].(string)

	var done, open int64
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)
	if err := j.db.WithContext(ctx).Model(&models.Task{}).
		Where("owner_id = ? AND status = ? AND updated_at >= ?", userID, models.StatusDone, weekAgo).
		Count(&done).Error; err != nil {
		return err
	}
	if err := j.db.WithContext(ctx).Model(&models.Task{}).
		Where("owner_id = ? AND status <> ? AND is_archived = ?", userID, models.StatusDone, false).
		Count(&open).Error; err != nil {
		return err
	}

	log.Printf("Weekly report for user %s: %d completed, %d open", userID, done, open)
	return nil
}

// ArchiveOldTasks is the daily housekeeping job: tasks finished past the
// retention window are flagged archived so they drop out of default listings.
func (j *Jobs) ArchiveOldTasks(ctx context.Context, job *Job) error {
	archived, err := j.taskService.ArchiveCompletedTasks(j.db.WithContext(ctx), j.archiveAfter)
	if err != nil {
		return err
	}

	log.Printf("Archived %d completed tasks", archived)
	return nil
}
