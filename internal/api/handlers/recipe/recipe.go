package recipe

import (
	"net/http"

	"recipe-engine/internal/core/engine"
	"recipe-engine/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜處理程序
type Handler struct {
	engine *engine.Engine
}

// NewHandler 創建新的食譜處理程序
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// PantryRequest 食材清單
type PantryRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// AddRecipesRequest 新增本地食譜
type AddRecipesRequest struct {
	Recipes []common.Recipe `json:"recipes" binding:"required,min=1"`
}

// HandleValidatePantry 驗證食材是否足以產生食譜
func (h *Handler) HandleValidatePantry(c *gin.Context) {
	var req PantryRequest
	if !BindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.engine.ValidatePantry(req.Ingredients))
}

// HandleInstantRecipes 從所有來源取得排序後的食譜
func (h *Handler) HandleInstantRecipes(c *gin.Context) {
	var req engine.RecipeRequest
	if !BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理即時食譜請求",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("ingredients", len(req.Ingredients)),
		zap.String("user_id", req.UserID),
	)
	c.JSON(http.StatusOK, h.engine.GetInstantRecipes(c.Request.Context(), req))
}

// HandleFastRecipes 取得兩道食譜，可能來自快取
func (h *Handler) HandleFastRecipes(c *gin.Context) {
	var req engine.FastRequest
	if !BindJSON(c, &req) {
		return
	}

	res := h.engine.GetFastRecipes(c.Request.Context(), req)
	common.LogInfo("雙食譜請求完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Bool("from_cache", res.FromCache),
		zap.Int("recipes", len(res.Recipes)),
	)
	c.JSON(http.StatusOK, res)
}

// HandleAddRecipes 新增本地食譜
func (h *Handler) HandleAddRecipes(c *gin.Context) {
	var req AddRecipesRequest
	if !BindJSON(c, &req) {
		return
	}
	ids, err := h.engine.AddLocalRecipes(c.Request.Context(), req.Recipes)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ids": ids})
}

// SearchQuery 關鍵字搜尋參數
type SearchQuery struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"gte=0,lte=50"`
}

// HandleSearch 依關鍵字搜尋食譜
func (h *Handler) HandleSearch(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondError(c, common.NewValidationError("invalid query: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipes": h.engine.SearchRecipes(c.Request.Context(), q.Query, q.Limit),
	})
}

// HandleCacheStats 結果快取統計
func (h *Handler) HandleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CacheStats())
}

// HandleClearCache 清除快取
func (h *Handler) HandleClearCache(c *gin.Context) {
	h.engine.ClearCaches(c.Request.Context())
	c.Status(http.StatusNoContent)
}
