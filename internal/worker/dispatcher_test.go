package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
)

func TestDispatcher_WelcomeEmail(t *testing.T) {
	_, queue, client := setupWorkerTest(t)
	dispatcher := NewDispatcher(queue)

	user := &models.User{
		ID:    uuid.Must(uuid.NewV4()),
		Email: "welcome@example.com",
	}
	dispatcher.WelcomeEmail(user)

	raw, err := client.LIndex(context.Background(), QueueEmail, 0).Result()
	if err != nil {
		t.Fatalf("Expected a job on the email queue: %v", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("Failed to unmarshal job: %v", err)
	}

	if job.Type != JobTypeWelcomeEmail {
		t.Errorf("Expected type %s, got %s", JobTypeWelcomeEmail, job.Type)
	}
	if job.Payload["email"] != "welcome@example.com" {
		t.Errorf("Expected email in payload, got %v", job.Payload)
	}
}

func TestDispatcher_TaskNotification(t *testing.T) {
	_, queue, client := setupWorkerTest(t)
	dispatcher := NewDispatcher(queue)

	userID := uuid.Must(uuid.NewV4())
	task := &models.Task{ID: uuid.Must(uuid.NewV4()), OwnerID: userID, Title: "Notify me"}

	dispatcher.TaskNotification(userID, task, "created")

	raw, err := client.LIndex(context.Background(), QueueDefault, 0).Result()
	if err != nil {
		t.Fatalf("Expected a job on the default queue: %v", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		t.Fatalf("Failed to unmarshal job: %v", err)
	}

	if job.Payload["event"] != "created" {
		t.Errorf("Expected event in payload, got %v", job.Payload)
	}
	if job.Payload["task_id"] != task.ID.String() {
		t.Errorf("Expected task id in payload, got %v", job.Payload)
	}
}

func TestDispatcher_NilSafe(t *testing.T) {
	task := &models.Task{ID: uuid.Must(uuid.NewV4()), DueDate: ptrTime(time.Now())}

	var dispatcher *Dispatcher
	dispatcher.DueDateReminder(task)

	empty := &Dispatcher{}
	empty.WeeklyReport(uuid.Must(uuid.NewV4()))
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
