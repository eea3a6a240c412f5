package user

import (
	"net/http"
	"strings"

	recipeHandler "recipe-engine/internal/api/handlers/recipe"
	"recipe-engine/internal/core/engine"
	"recipe-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 使用者偏好處理程序
type Handler struct {
	engine *engine.Engine
}

// NewHandler 創建使用者偏好處理程序
func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

// HintsResponse 個人化提示
type HintsResponse struct {
	UserID string   `json:"user_id"`
	Hints  []string `json:"hints"`
}

func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("userId"))
	if id == "" {
		recipeHandler.RespondError(c, common.NewValidationError("user id is required"))
		return "", false
	}
	return id, true
}

// HandleRate 記錄評分
func (h *Handler) HandleRate(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var req engine.RatingRequest
	if !recipeHandler.BindJSON(c, &req) {
		return
	}
	res, err := h.engine.RateRecipe(c.Request.Context(), id, req)
	if err != nil {
		recipeHandler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleHints 取得個人化提示
func (h *Handler) HandleHints(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, HintsResponse{
		UserID: id,
		Hints:  h.engine.GetPersonalizationHints(c.Request.Context(), id),
	})
}

// HandleProfile 取得完整偏好檔
func (h *Handler) HandleProfile(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.GetProfile(c.Request.Context(), id))
}
