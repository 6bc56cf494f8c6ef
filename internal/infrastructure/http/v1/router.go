// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/catalogs/item"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Validator        *movement.Validator
	Engine           *movement.Engine
	LedgerService    *ledger.Service
	WarehouseService *warehouse.Service
	ItemService      *item.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		movementHandler := handlers.NewMovementHandler(cfg.Validator, cfg.Engine)
		movements := api.Group("/movements")
		{
			movements.POST("", movementHandler.Post)
			movements.POST("/validate", movementHandler.Validate)
		}

		ledgerHandler := handlers.NewLedgerHandler(cfg.LedgerService)
		ledgerGroup := api.Group("/ledger")
		{
			ledgerGroup.GET("/items/:itemId/entries", ledgerHandler.History)
			ledgerGroup.GET("/vouchers/:voucherNo", ledgerHandler.Voucher)
			ledgerGroup.GET("/availability", ledgerHandler.Availability)
			ledgerGroup.GET("/valuation", ledgerHandler.Valuation)
		}

		warehouseHandler := handlers.NewWarehouseHandler(cfg.WarehouseService)
		warehouses := api.Group("/warehouses")
		{
			warehouses.POST("", warehouseHandler.Create)
			warehouses.GET("", warehouseHandler.List)
			warehouses.GET("/:id", warehouseHandler.Get)
			warehouses.PUT("/:id", warehouseHandler.Update)
			warehouses.DELETE("/:id", warehouseHandler.Delete)
		}

		itemHandler := handlers.NewItemHandler(cfg.ItemService)
		items := api.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
		}
	}

	return router
}
