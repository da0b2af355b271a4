package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dininghall/backend/config"
	"github.com/pageza/dininghall/backend/internal/api"
	"github.com/pageza/dininghall/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, log *slog.Logger, deps api.Deps) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.NoRoute(middleware.NotFound())

	api.RegisterRoutes(router, deps)
	return router
}
