package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-platform/backend/internal/cache"
	"task-platform/backend/internal/config"
	"task-platform/backend/internal/middleware"
	"task-platform/backend/internal/models"
	"task-platform/backend/internal/services"
	"task-platform/backend/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router      *gin.Engine
	db          *gorm.DB
	mr          *miniredis.Miniredis
	authService services.AuthService
}

// newTestEnv wires the real services against sqlite and an embedded redis,
// mirroring the production route table for the surfaces under test.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	mr := miniredis.RunT(t)
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Addr = mr.Addr()
	cacheInstance := cache.NewRedisCache(cacheConfig)
	t.Cleanup(func() { cacheInstance.Close() })

	authService := services.NewAuthService(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BCryptCost:      bcrypt.MinCost,
	})
	registerService := services.NewRegisterService(authService)
	userService := services.NewUserService()
	taskService := services.NewCachedTaskService(services.NewTaskService(), cacheInstance, config.CacheConfig{
		TTLShort:  time.Minute,
		TTLMedium: 5 * time.Minute,
		TTLLong:   time.Hour,
	})

	dispatcher := worker.NewDispatcher(worker.NewJobQueue(cacheInstance.Client(), 3))

	authHandler := NewAuthHandler(db, authService)
	registerHandler := NewRegisterHandler(db, registerService, dispatcher)
	refreshHandler := NewRefreshHandler(db, authService)
	userHandler := NewUserHandler(db, userService)
	taskHandler := NewTaskHandler(db, taskService, dispatcher)

	router := gin.New()
	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", registerHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", refreshHandler.Refresh)

	protected := v1.Group("")
	protected.Use(middleware.RequireAuth(db, authService))

	users := protected.Group("/users")
	users.GET("/me", userHandler.GetMe)
	users.PATCH("/me", userHandler.UpdateMe)
	users.GET("", middleware.RequireRole(models.RoleAdmin), userHandler.ListUsers)
	users.PATCH("/:id", middleware.RequireRole(models.RoleAdmin), userHandler.UpdateUser)

	tasks := protected.Group("/tasks")
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PATCH("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return &testEnv{router: router, db: db, mr: mr, authService: authService}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerAndLogin(t *testing.T, email, username string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"username": username,
		"password": "SecurePass1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: %d %s", email, w.Code, w.Body.String())
	}

	w = e.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "SecurePass1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to login %s: %d %s", email, w.Code, w.Body.String())
	}

	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return login.AccessToken
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Fatalf("Failed to decode task response: %v", err)
	}
	return task
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com", "alice")

	w := env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "t1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on create, got %d: %s", w.Code, w.Body.String())
	}
	task := decodeTask(t, w)
	if task.Status != models.StatusPending {
		t.Errorf("Expected new task to be pending, got %s", task.Status)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}

	w = env.request(t, http.MethodGet, "/api/v1/tasks/"+task.ID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on get, got %d", w.Code)
	}

	w = env.request(t, http.MethodPatch, "/api/v1/tasks/"+task.ID.String(), token, gin.H{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d: %s", w.Code, w.Body.String())
	}
	if updated := decodeTask(t, w); updated.Status != models.StatusDone {
		t.Errorf("Expected status done after update, got %s", updated.Status)
	}

	w = env.request(t, http.MethodDelete, "/api/v1/tasks/"+task.ID.String(), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 on delete, got %d", w.Code)
	}

	w = env.request(t, http.MethodGet, "/api/v1/tasks/"+task.ID.String(), token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestTasks_OwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	aliceToken := env.registerAndLogin(t, "alice@example.com", "alice")
	bobToken := env.registerAndLogin(t, "bob@example.com", "bob")

	w := env.request(t, http.MethodPost, "/api/v1/tasks", aliceToken, gin.H{"title": "alice's task"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on create, got %d", w.Code)
	}
	task := decodeTask(t, w)

	path := "/api/v1/tasks/" + task.ID.String()

	if w := env.request(t, http.MethodGet, path, bobToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign get, got %d", w.Code)
	}
	if w := env.request(t, http.MethodPatch, path, bobToken, gin.H{"title": "stolen"}); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign update, got %d", w.Code)
	}
	if w := env.request(t, http.MethodDelete, path, bobToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign delete, got %d", w.Code)
	}

	// Bob's listing must not leak the task either.
	w = env.request(t, http.MethodGet, "/api/v1/tasks", bobToken, nil)
	var listing TaskListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if listing.Total != 0 {
		t.Errorf("Expected empty listing for bob, got %d", listing.Total)
	}
}

func TestTasks_Pagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com", "alice")

	for i := 0; i < 25; i++ {
		w := env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{
			"title": fmt.Sprintf("task %d", i),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("Failed to create task %d: %d", i, w.Code)
		}
	}

	w := env.request(t, http.MethodGet, "/api/v1/tasks", token, nil)
	var listing TaskListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}

	if listing.Total != 25 {
		t.Errorf("Expected total 25, got %d", listing.Total)
	}
	if listing.PerPage != 20 {
		t.Errorf("Expected default per_page 20, got %d", listing.PerPage)
	}
	if len(listing.Tasks) != 20 {
		t.Errorf("Expected 20 tasks on page 1, got %d", len(listing.Tasks))
	}
	if listing.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", listing.Pages)
	}

	w = env.request(t, http.MethodGet, "/api/v1/tasks?page=2", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if len(listing.Tasks) != 5 {
		t.Errorf("Expected 5 tasks on page 2, got %d", len(listing.Tasks))
	}

	// Oversized and nonsense parameters are clamped, not rejected.
	w = env.request(t, http.MethodGet, "/api/v1/tasks?per_page=500&page=banana", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected clamped listing to succeed, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if listing.PerPage != 100 {
		t.Errorf("Expected per_page clamped to 100, got %d", listing.PerPage)
	}
	if listing.Page != 1 {
		t.Errorf("Expected page to fall back to 1, got %d", listing.Page)
	}
}

func TestTasks_StatusFilter(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com", "alice")

	w := env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "open task"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create task: %d", w.Code)
	}

	w = env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "finished task"})
	done := decodeTask(t, w)
	w = env.request(t, http.MethodPatch, "/api/v1/tasks/"+done.ID.String(), token, gin.H{"status": "done"})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to complete task: %d", w.Code)
	}

	w = env.request(t, http.MethodGet, "/api/v1/tasks?status=done", token, nil)
	var listing TaskListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to decode listing: %v", err)
	}
	if listing.Total != 1 {
		t.Fatalf("Expected 1 done task, got %d", listing.Total)
	}
	if listing.Tasks[0].Title != "finished task" {
		t.Errorf("Expected the finished task, got %s", listing.Tasks[0].Title)
	}
}

func TestTasks_InvalidIDIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com", "alice")

	w := env.request(t, http.MethodGet, "/api/v1/tasks/not-a-uuid", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for malformed id, got %d", w.Code)
	}
}

func TestTasks_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com", "alice")

	w := env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{"description": "no title"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title, got %d", w.Code)
	}

	w = env.request(t, http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "t", "priority": "urgent"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid priority, got %d", w.Code)
	}
}
