package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wipeforge/wipeforge/internal/api/handlers"
	"github.com/wipeforge/wipeforge/internal/api/middleware"
	"github.com/wipeforge/wipeforge/internal/config"
	"github.com/wipeforge/wipeforge/internal/storage"
	"github.com/wipeforge/wipeforge/internal/wipe"
)

// Router wraps the Gin router with handlers
type Router struct {
	engine       *gin.Engine
	cfg          *config.Config
	wipeHandler  *handlers.WipeHandler
	chainHandler *handlers.ChainHandler
}

// NewRouter creates a new Router with all handlers. stores may be nil for
// an in-memory deployment.
func NewRouter(cfg *config.Config, service *wipe.Service, stores *storage.Stores) *Router {
	gin.SetMode(gin.ReleaseMode)

	var chainStore *storage.ChainStore
	if stores != nil {
		chainStore = stores.Blocks
	}

	r := &Router{
		engine:       gin.New(),
		cfg:          cfg,
		wipeHandler:  handlers.NewWipeHandler(service, cfg.Wipe.DefaultMethod),
		chainHandler: handlers.NewChainHandler(service.Ledger(), service, chainStore),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	v1.Use(middleware.RateLimit(r.cfg.API.RateLimit, r.cfg.API.RateBurst))
	{
		wipes := v1.Group("/wipes")
		wipes.Use(middleware.ValidateMethod(r.cfg.Wipe.AllowedMethods))
		{
			wipes.POST("", r.wipeHandler.Start)
		}

		chainGroup := v1.Group("/chain")
		{
			chainGroup.GET("/blocks", r.chainHandler.List)
			chainGroup.GET("/blocks/latest", r.chainHandler.GetLatest)
			chainGroup.GET("/blocks/hash/:hash", r.chainHandler.GetByHash)
			chainGroup.GET("/blocks/:index", r.chainHandler.GetByIndex)
			chainGroup.GET("/verify", r.chainHandler.Verify)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
