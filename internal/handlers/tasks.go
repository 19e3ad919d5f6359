package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"task-platform/backend/internal/middleware"
	"task-platform/backend/internal/models"
	"task-platform/backend/internal/services"
	"task-platform/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100

	dueSoonWindow = 24 * time.Hour
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	dispatcher  *worker.Dispatcher
}

type TaskCreateRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate      *time.Time `json:"due_date"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

type TaskListResponse struct {
	Tasks   []models.Task `json:"tasks"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Pages   int64         `json:"pages"`
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, dispatcher *worker.Dispatcher) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, dispatcher: dispatcher}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	archived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))

	filter := services.TaskFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Archived: archived,
		Page:     page,
		PerPage:  perPage,
	}

	tasks, total, err := h.taskService.ListTasks(h.db, user.ID, filter)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	pages := (total + int64(perPage) - 1) / int64(perPage)

	c.JSON(http.StatusOK, TaskListResponse{
		Tasks:   tasks,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	})
}

// CreateTask forces ownership to the caller and the initial status to
// pending, no matter what the request body claims.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	task := models.Task{
		ID:           uuid.Must(uuid.NewV4()),
		OwnerID:      user.ID,
		AssignedToID: req.AssignedToID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.StatusPending,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.taskService.CreateTask(h.db, &task); err != nil {
		handleTaskError(c, err)
		return
	}

	h.dispatcher.TaskNotification(user.ID, &task, "created")
	if task.AssignedToID != nil {
		h.dispatcher.TaskNotification(user.ID, &task, "assigned")
	}
	if dueSoon(task.DueDate) {
		h.dispatcher.DueDateReminder(&task)
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task_not_found", "message": "Task not found"})
		return
	}

	task, err := h.taskService.GetTask(h.db, user.ID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task_not_found", "message": "Task not found"})
		return
	}

	var update services.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, user.ID, id, update)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if update.AssignedToID != nil {
		h.dispatcher.TaskNotification(user.ID, &task, "assigned")
	} else {
		h.dispatcher.TaskNotification(user.ID, &task, "updated")
	}
	if update.DueDate != nil && dueSoon(task.DueDate) {
		h.dispatcher.DueDateReminder(&task)
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task_not_found", "message": "Task not found"})
		return
	}

	if err := h.taskService.DeleteTask(h.db, user.ID, id); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func dueSoon(dueDate *time.Time) bool {
	if dueDate == nil {
		return false
	}
	until := time.Until(*dueDate)
	return until > 0 && until <= dueSoonWindow
}

// handleTaskError conflates "does not exist" and "owned by someone else" into
// a single 404 so task ids cannot be probed.
func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task not found",
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "task_request_failed",
		"message": "failed to process task request",
	})
}
