package recipe

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuggestionRequest 食材建議請求
type SuggestionRequest struct {
	Ingredients []string `json:"ingredients"`
	Max         int      `json:"max" binding:"gte=0"`
}

// SuggestionResponse 食材建議響應
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// HandleRecordUsage 記錄使用者加入的食材
func (h *Handler) HandleRecordUsage(c *gin.Context) {
	var req PantryRequest
	if !BindJSON(c, &req) {
		return
	}
	h.engine.RecordIngredientUsage(c.Request.Context(), req.Ingredients)
	c.Status(http.StatusNoContent)
}

// HandleSuggestions 建議可加入的食材
func (h *Handler) HandleSuggestions(c *gin.Context) {
	var req SuggestionRequest
	if !BindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, SuggestionResponse{
		Suggestions: h.engine.GetQuickSuggestions(c.Request.Context(), req.Ingredients, req.Max),
	})
}
