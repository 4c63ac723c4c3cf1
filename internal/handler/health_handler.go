package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler reports the service and its backing stores
type HealthHandler struct {
	db            *gorm.DB
	redis         *redis.Client
	searchEnabled bool
}

// NewHealthHandler creates a new HealthHandler. db and redisClient may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, searchEnabled bool) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, searchEnabled: searchEnabled}
}

// Health handles GET /health
// @Summary 헬스 체크
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "down"
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err == nil && sqlDB.PingContext(ctx) == nil {
			database = "up"
		}
	}
	if database != "up" {
		status = http.StatusServiceUnavailable
	}

	cache := "disabled"
	if h.redis != nil {
		cache = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			cache = "down"
		}
	}

	search := "disabled"
	if h.searchEnabled {
		search = "enabled"
	}

	c.JSON(status, gin.H{
		"status":        http.StatusText(status),
		"service":       "chat-backend",
		"database":      database,
		"redis":         cache,
		"elasticsearch": search,
		"time":          time.Now().Unix(),
	})
}
