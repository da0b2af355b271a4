package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/dininghall/backend/internal/middleware"
	"github.com/pageza/dininghall/backend/internal/service"
	"github.com/pageza/dininghall/backend/internal/tools"
)

// Deps carries the services behind the HTTP surface. Chat, Ingest and
// Limiter are optional; their routes are left out when nil.
type Deps struct {
	DB      *gorm.DB
	Foods   service.IFoodService
	Orders  service.IOrderService
	Tracker service.ITrackerService
	Ingest  service.IIngestService
	Chat    service.IChatService
	Tools   *tools.Registry
	Limiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	health := HealthHandler(deps.DB)
	router.GET("/health", health)
	router.GET("/api/health", health)

	v1 := router.Group("/api/v1")
	NewFoodHandler(deps.Foods).RegisterRoutes(v1)
	NewOrderHandler(deps.Orders).RegisterRoutes(v1)
	NewTrackerHandler(deps.Tracker).RegisterRoutes(v1)

	if deps.Ingest != nil {
		NewIngestHandler(deps.Ingest).RegisterRoutes(v1)
	}

	var limit gin.HandlerFunc
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware()
		RegisterRateLimitRoutes(v1, deps.Limiter)
	}
	if deps.Tools != nil {
		NewChatHandler(deps.Chat, deps.Tools, limit).RegisterRoutes(v1)
	}
}

// RegisterRateLimitRoutes exposes the caller's remaining chat budget.
func RegisterRateLimitRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	router.GET("/rate-limits/chat", func(c *gin.Context) {
		remaining, resetTime, err := limiter.Remaining(c.Request.Context(), c.ClientIP())
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to check rate limit"})
			return
		}
		cfg := limiter.Config()
		c.JSON(http.StatusOK, gin.H{
			"limit":      cfg.Limit,
			"remaining":  remaining,
			"reset_time": resetTime.Unix(),
			"window":     cfg.Window.String(),
		})
	})
}
