package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/dininghall/backend/internal/database"
)

// HealthHandler reports liveness and database reachability.
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code, dbStatus := "ok", http.StatusOK, "ok"
		if db == nil {
			dbStatus = "not configured"
		} else if err := database.HealthCheck(ctx, db); err != nil {
			status, code, dbStatus = "degraded", http.StatusServiceUnavailable, err.Error()
		}
		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"time":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
