package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/gakkiten/inventory-tracker/internal/common"
	"github.com/gakkiten/inventory-tracker/internal/export"
	"github.com/gakkiten/inventory-tracker/internal/extract"
	"github.com/gakkiten/inventory-tracker/internal/repository"
	"github.com/gakkiten/inventory-tracker/internal/usage"
)

// Handler holds the dependencies of the HTTP layer. Inventory and Export
// are nil when no database is configured; their endpoints then answer 503.
type Handler struct {
	Orchestrator *extract.Orchestrator
	Meter        *usage.Meter
	Inventory    repository.InventoryRepository
	Export       *export.Service
	AIAvailable  bool
	Logger       *slog.Logger
}

// SetupRouter wires middleware and routes.
func SetupRouter(cfg *common.Config, h *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger(h.Logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", h.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/extract",
			RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst),
			h.Extract)

		v1.POST("/usage", h.RecordUsage)
		v1.GET("/usage", h.QueryUsage)

		v1.GET("/inventory", h.ListInventory)
		v1.POST("/inventory", h.CreateInventory)
		v1.GET("/inventory/export", h.ExportInventory)
	}

	return router
}
