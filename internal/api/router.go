package api

import (
	"context"
	"net/http"
	"time"

	"recipe-engine/internal/api/handlers/health"
	recipeHandler "recipe-engine/internal/api/handlers/recipe"
	userHandler "recipe-engine/internal/api/handlers/user"
	"recipe-engine/internal/api/middleware"
	"recipe-engine/internal/core/engine"
	"recipe-engine/internal/infrastructure/config"
	"recipe-engine/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 30 * time.Second
	// 請求體大小預設上限 (1MB)
	defaultMaxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, eng *engine.Engine) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxBodySize := cfg.Server.MaxBodyBytes
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    "REQUEST_TIMEOUT",
				Message: "Request timeout",
			})
		}
	})

	healthHandler := health.NewHandler(eng, cfg.App.Version)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	recipes := recipeHandler.NewHandler(eng)
	users := userHandler.NewHandler(eng)

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	v1.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		v1.POST("/pantry/validate", recipes.HandleValidatePantry)

		recipeGroup := v1.Group("/recipes")
		{
			recipeGroup.POST("/instant", recipes.HandleInstantRecipes)
			recipeGroup.POST("/fast", recipes.HandleFastRecipes)
			recipeGroup.POST("/local", recipes.HandleAddRecipes)
			recipeGroup.GET("/search", recipes.HandleSearch)
		}

		ingredientGroup := v1.Group("/ingredients")
		{
			ingredientGroup.POST("/usage", recipes.HandleRecordUsage)
			ingredientGroup.POST("/suggestions", recipes.HandleSuggestions)
		}

		userGroup := v1.Group("/users/:userId")
		{
			userGroup.POST("/ratings", users.HandleRate)
			userGroup.GET("/hints", users.HandleHints)
			userGroup.GET("/profile", users.HandleProfile)
		}

		cacheGroup := v1.Group("/cache")
		{
			cacheGroup.GET("/stats", recipes.HandleCacheStats)
			cacheGroup.DELETE("", recipes.HandleClearCache)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", maxBodySize),
	)
	return router
}
