package services

import (
	"errors"
	"log"
	"time"

	"task-platform/backend/internal/cache"
	"task-platform/backend/internal/config"
	"task-platform/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CachedTaskService wraps the task service with cache-aside reads and
// invalidation on writes. Concurrent misses for the same key may each hit
// persistence; reads are idempotent so no single-flight is needed.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
	ttl         config.CacheConfig
}

type cachedTaskList struct {
	Tasks []models.Task `json:"tasks"`
	Total int64         `json:"total"`
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache, ttl config.CacheConfig) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
		ttl:         ttl,
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task *models.Task) error {
	if err := s.taskService.CreateTask(db, task); err != nil {
		return err
	}

	s.invalidateTask(task.ID, task.OwnerID)
	return nil
}

// GetTask keys the entry by task id only. The cached payload carries the
// owner, and a hit for a foreign principal is reported as not found, same as
// the persistence path would.
func (s *CachedTaskService) GetTask(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	key := cache.TaskKey(id)

	var cached models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		if cached.OwnerID != ownerID {
			return models.Task{}, gorm.ErrRecordNotFound
		}
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("cache read failed for %s: %v", key, err)
	}

	task, err := s.taskService.GetTask(db, ownerID, id)
	if err != nil {
		return task, err
	}

	if err := s.cache.Set(key, task, s.ttl.TTLShort); err != nil {
		log.Printf("cache write failed for %s: %v", key, err)
	}

	return task, nil
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, ownerID uuid.UUID, filter TaskFilter) ([]models.Task, int64, error) {
	key := cache.TaskListKey(ownerID, filter.Page, filter.PerPage, filter.Status, filter.Priority, filter.Archived)

	var cached cachedTaskList
	if err := s.cache.Get(key, &cached); err == nil {
		return cached.Tasks, cached.Total, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("cache read failed for %s: %v", key, err)
	}

	tasks, total, err := s.taskService.ListTasks(db, ownerID, filter)
	if err != nil {
		return tasks, total, err
	}

	if err := s.cache.Set(key, cachedTaskList{Tasks: tasks, Total: total}, s.ttl.TTLMedium); err != nil {
		log.Printf("cache write failed for %s: %v", key, err)
	}

	return tasks, total, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, update TaskUpdate) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, ownerID, id, update)
	if err != nil {
		return task, err
	}

	s.invalidateTask(id, ownerID)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	if err := s.taskService.DeleteTask(db, ownerID, id); err != nil {
		return err
	}

	s.invalidateTask(id, ownerID)
	return nil
}

func (s *CachedTaskService) ArchiveCompletedTasks(db *gorm.DB, olderThan time.Duration) (int64, error) {
	archived, err := s.taskService.ArchiveCompletedTasks(db, olderThan)
	if err != nil {
		return archived, err
	}

	if archived > 0 {
		// Archiving changes membership of listings across all owners.
		if err := s.cache.DeletePattern("tasks:user:*"); err != nil {
			log.Printf("cache invalidation failed after archiving: %v", err)
		}
	}

	return archived, nil
}

// invalidateTask removes the single-entity key and the owner's whole
// collection-key family. A mutation can change membership, ordering or counts
// of any listing view, so prefix invalidation is the only safe option.
func (s *CachedTaskService) invalidateTask(id, ownerID uuid.UUID) {
	if err := s.cache.Delete(cache.TaskKey(id)); err != nil {
		log.Printf("cache invalidation failed for task %s: %v", id, err)
	}
	if err := s.cache.DeletePattern(cache.TaskListPattern(ownerID)); err != nil {
		log.Printf("cache invalidation failed for owner %s listings: %v", ownerID, err)
	}
}

func (s *CachedTaskService) CacheStats() map[string]interface{} {
	return s.cache.Stats()
}
