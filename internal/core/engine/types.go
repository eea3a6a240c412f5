package engine

import (
	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/core/recipe"
	"recipe-engine/internal/pkg/common"
)

// RecipeRequest 即時食譜請求
type RecipeRequest struct {
	Ingredients     []string          `json:"ingredients" binding:"required"`
	MaxResults      int               `json:"max_results" binding:"gte=0,lte=50"`
	MaxCookingTime  int               `json:"max_cooking_time" binding:"gte=0"`
	Servings        int               `json:"servings" binding:"gte=0,lte=20"`
	Difficulty      common.Difficulty `json:"difficulty"`
	Cuisine         string            `json:"cuisine"`
	ExcludeIDs      []string          `json:"exclude_ids"`
	IncludeExternal *bool             `json:"include_external,omitempty"`
	UserID          string            `json:"user_id"`
}

// FastRequest 雙食譜快速請求
type FastRequest struct {
	Ingredients  []string `json:"ingredients" binding:"required"`
	UserID       string   `json:"user_id"`
	ForceRefresh bool     `json:"force_refresh"`
}

// FastResult 雙食譜結果
type FastResult struct {
	Recipes    []common.Recipe             `json:"recipes"`
	FromCache  bool                        `json:"from_cache"`
	Validation ingredient.ValidationResult `json:"validation"`
	Guidance   *common.Recipe              `json:"guidance,omitempty"`
}

// RatingRequest 評分請求
// 只給 ID 時從本地索引查找食譜，其他來源的食譜需附上完整內容
type RatingRequest struct {
	RecipeID string           `json:"recipe_id"`
	Recipe   *common.Recipe   `json:"recipe,omitempty"`
	Rating   common.Rating    `json:"rating" binding:"required,oneof=like dislike"`
	Feedback *common.Feedback `json:"feedback,omitempty"`
}

// RatingResult 評分後的偏好
type RatingResult struct {
	UserID   string                    `json:"user_id"`
	Liked    int                       `json:"liked"`
	Disliked int                       `json:"disliked"`
	Derived  common.DerivedPreferences `json:"derived"`
	Hints    []string                  `json:"hints"`
}

// InstantResult 即時食譜結果
type InstantResult = recipe.Result
