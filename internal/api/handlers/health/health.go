package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-engine/internal/core/cache"
	"recipe-engine/internal/core/engine"
	"recipe-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    time.Time              `json:"timestamp"`
	Version      string                 `json:"version"`
	LocalRecipes int                    `json:"local_recipes"`
	ResultCache  cache.Stats            `json:"result_cache"`
	Runtime      map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理程序
type Handler struct {
	engine  *engine.Engine
	version string
}

// NewHandler 創建健康檢查處理程序
func NewHandler(e *engine.Engine, version string) *Handler {
	return &Handler{engine: e, version: version}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now(),
		Version:      h.version,
		LocalRecipes: h.engine.LocalRecipeCount(),
		ResultCache:  h.engine.CacheStats(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，儲存不可用時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.engine.Ready(c.Request.Context()); err != nil {
		common.LogWarn("就緒檢查失敗", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
