package handlers

import (
	"net/http"

	"task-platform/backend/internal/cache"
	"task-platform/backend/internal/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

func NewHealthHandler(db *gorm.DB, cacheInstance *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheInstance}
}

func (h *HealthHandler) Health(c *gin.Context) {
	redisStatus := "connected"
	if err := h.cache.Health(); err != nil {
		redisStatus = "disconnected"
	}

	dbStatus := "connected"
	if err := database.Health(h.db); err != nil {
		dbStatus = "disconnected"
	}

	status := "healthy"
	code := http.StatusOK
	if redisStatus != "connected" || dbStatus != "connected" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"redis":    redisStatus,
		"database": dbStatus,
	})
}
