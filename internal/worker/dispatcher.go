package worker

import (
	"log"

	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
)

// Dispatcher enqueues fire-and-forget jobs from the request path. A broker
// failure is logged and swallowed; it must never fail the request that
// triggered it.
type Dispatcher struct {
	queue *JobQueue
}

func NewDispatcher(queue *JobQueue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

func (d *Dispatcher) WelcomeEmail(user *models.User) {
	d.enqueue(QueueEmail, JobTypeWelcomeEmail, map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})
}

func (d *Dispatcher) DueDateReminder(task *models.Task) {
	d.enqueue(QueueEmail, JobTypeDueDateReminder, map[string]interface{}{
		"user_id": task.OwnerID.String(),
		"task_id": task.ID.String(),
		"title":   task.Title,
	})
}

func (d *Dispatcher) TaskNotification(userID uuid.UUID, task *models.Task, event string) {
	d.enqueue(QueueDefault, JobTypeTaskNotification, map[string]interface{}{
		"user_id": userID.String(),
		"task_id": task.ID.String(),
		"event":   event,
	})
}

func (d *Dispatcher) WeeklyReport(userID uuid.UUID) {
	d.enqueue(QueueReports, JobTypeWeeklyReport, map[string]interface{}{
		"user_id": userID.String(),
	})
}

func (d *Dispatcher) enqueue(queue string, jobType JobType, payload map[string]interface{}) {
	if d == nil || d.queue == nil {
		return
	}
	if err := d.queue.Enqueue(queue, jobType, payload); err != nil {
		log.Printf("Failed to enqueue %s job: %v", jobType, err)
	}
}
