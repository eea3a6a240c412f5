package common

import (
	"strings"
	"time"
)

// Category 食材分類
type Category string

const (
	CategoryProtein   Category = "protein"
	CategoryVegetable Category = "vegetable"
	CategoryGrain     Category = "grain"
	CategoryDairy     Category = "dairy"
	CategorySeasoning Category = "seasoning"
	CategoryHerb      Category = "herb"
	CategoryFat       Category = "fat"
	CategoryFruit     Category = "fruit"
	CategoryCondiment Category = "condiment"
)

// Difficulty 難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty 解析難度字串，無法辨識時回傳空值
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	}
	return ""
}

// DifficultyFor 依食材數與烹調時間估算難度
func DifficultyFor(ingredientCount, minutes int) Difficulty {
	switch {
	case ingredientCount > 10 || minutes > 60:
		return DifficultyHard
	case ingredientCount > 6 || minutes > 30:
		return DifficultyMedium
	}
	return DifficultyEasy
}

// Source 食譜來源
type Source string

const (
	SourceLocal       Source = "local"
	SourceExternal    Source = "external"
	SourceSynthesized Source = "synthesized"
)

// ID 前綴，合併時避免碰撞
const (
	LocalIDPrefix       = "local-"
	ExternalIDPrefix    = "spoon-"
	SynthesizedIDPrefix = "programmatic-"
	GuidanceIDPrefix    = "guidance-"
)

// Ingredient 食譜中的食材
type Ingredient struct {
	Name     string `json:"name" validate:"required"`
	Amount   string `json:"amount" validate:"required"`
	Unit     string `json:"unit,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Nutrition 營養資訊
type Nutrition struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

// Recipe 食譜
// 三種來源共用的結構，建立後不再修改
type Recipe struct {
	ID                 string       `json:"id" validate:"required"`
	Title              string       `json:"title" validate:"required"`
	Description        string       `json:"description"`
	Ingredients        []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions       []string     `json:"instructions" validate:"required,min=1,dive,required"`
	CookingTimeMinutes int          `json:"cooking_time_minutes" validate:"gt=0"`
	Servings           int          `json:"servings" validate:"gt=0"`
	Difficulty         Difficulty   `json:"difficulty" validate:"oneof=Easy Medium Hard"`
	Cuisine            string       `json:"cuisine"`
	Tags               []string     `json:"tags,omitempty"`
	ImageURL           string       `json:"image_url,omitempty"`
	Nutrition          *Nutrition   `json:"nutrition,omitempty"`
	HealthScore        float64      `json:"health_score,omitempty"`
	Popularity         float64      `json:"popularity,omitempty"`
}

// RequiredIngredients 必要食材
func (r Recipe) RequiredIngredients() []Ingredient {
	out := make([]Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !ing.Optional {
			out = append(out, ing)
		}
	}
	return out
}

// OptionalIngredients 選用食材
func (r Recipe) OptionalIngredients() []Ingredient {
	var out []Ingredient
	for _, ing := range r.Ingredients {
		if ing.Optional {
			out = append(out, ing)
		}
	}
	return out
}

// IngredientNames 食材名稱列表
func (r Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	return names
}

// IsGuidance 是否為提示用的非食譜回應
func (r Recipe) IsGuidance() bool {
	return strings.HasPrefix(r.ID, GuidanceIDPrefix)
}

// HasTag 是否包含標籤
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ScoredRecipe 評分後的食譜，每次請求重新計算
type ScoredRecipe struct {
	Recipe     Recipe  `json:"recipe"`
	Source     Source  `json:"source"`
	MatchScore float64 `json:"match_score"`
}

// Rating 評分
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// Feedback 評分回饋
type Feedback struct {
	Reason              string   `json:"reason,omitempty"`
	SpecificIngredients []string `json:"specific_ingredients,omitempty"`
	Comment             string   `json:"comment,omitempty"`
}

// FeedbackReasonIngredients 因食材而給出的回饋
const FeedbackReasonIngredients = "ingredients"

// RatedRecipe 評分紀錄
type RatedRecipe struct {
	Recipe    Recipe    `json:"recipe"`
	Timestamp time.Time `json:"timestamp"`
	Feedback  *Feedback `json:"feedback,omitempty"`
}

// DerivedPreferences 由評分歷史推導出的偏好
type DerivedPreferences struct {
	PreferredIngredients      []string     `json:"preferred_ingredients"`
	DislikedIngredients       []string     `json:"disliked_ingredients"`
	PreferredCuisines         []string     `json:"preferred_cuisines"`
	DislikedCuisines          []string     `json:"disliked_cuisines"`
	PreferredDifficulty       []Difficulty `json:"preferred_difficulty"`
	AverageCookingTimeMinutes float64      `json:"average_cooking_time_minutes"`
}

// UserPreferenceProfile 使用者偏好檔
type UserPreferenceProfile struct {
	UserID          string             `json:"user_id"`
	LikedRecipes    []RatedRecipe      `json:"liked_recipes"`
	DislikedRecipes []RatedRecipe      `json:"disliked_recipes"`
	Derived         DerivedPreferences `json:"derived"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// IngredientUsageStat 食材使用統計
type IngredientUsageStat struct {
	Name                   string    `json:"name"`
	Count                  int       `json:"count"`
	LastUsedAt             time.Time `json:"last_used_at"`
	Category               Category  `json:"category,omitempty"`
	CoOccurringIngredients []string  `json:"co_occurring_ingredients"`
}

// RecipeOptions 食譜產生參數
type RecipeOptions struct {
	CookingTime int        `json:"cooking_time"`
	Servings    int        `json:"servings"`
	Difficulty  Difficulty `json:"difficulty"`
}
