package preference

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

const profileKeyPrefix = "preferences:"

// Learner 使用者偏好學習
// 評分歷史只追加，偏好在每次評分後完整重算
type Learner struct {
	store store.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewLearner 創建偏好學習器
func NewLearner(s store.Store) *Learner {
	return &Learner{store: s, now: time.Now}
}

// WithClock 替換時間來源
func (l *Learner) WithClock(now func() time.Time) *Learner {
	l.now = now
	return l
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

// Profile 讀取使用者偏好檔，讀取失敗時回傳空的偏好檔
func (l *Learner) Profile(ctx context.Context, userID string) common.UserPreferenceProfile {
	profile := emptyProfile(userID)
	if !store.LoadJSON(ctx, l.store, profileKey(userID), &profile) {
		return emptyProfile(userID)
	}
	return profile
}

func emptyProfile(userID string) common.UserPreferenceProfile {
	return common.UserPreferenceProfile{
		UserID:          userID,
		LikedRecipes:    []common.RatedRecipe{},
		DislikedRecipes: []common.RatedRecipe{},
		Derived:         Derive(nil, nil),
	}
}

// RecordRating 記錄評分並重算偏好
// 同一道食譜只會存在於喜歡或不喜歡其中一邊，以最後一次評分為準
func (l *Learner) RecordRating(ctx context.Context, userID string, recipe common.Recipe, rating common.Rating, feedback *common.Feedback) (common.UserPreferenceProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return common.UserPreferenceProfile{}, common.NewValidationError("user id is required")
	}
	if recipe.ID == "" {
		return common.UserPreferenceProfile{}, common.NewValidationError("recipe id is required")
	}
	if rating != common.RatingLike && rating != common.RatingDislike {
		return common.UserPreferenceProfile{}, common.NewValidationError(fmt.Sprintf("unknown rating %q", rating))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	profile := l.Profile(ctx, userID)
	profile.LikedRecipes = without(profile.LikedRecipes, recipe.ID)
	profile.DislikedRecipes = without(profile.DislikedRecipes, recipe.ID)

	entry := common.RatedRecipe{Recipe: recipe, Timestamp: l.now(), Feedback: feedback}
	if rating == common.RatingLike {
		profile.LikedRecipes = append(profile.LikedRecipes, entry)
	} else {
		profile.DislikedRecipes = append(profile.DislikedRecipes, entry)
	}

	profile.Derived = Derive(profile.LikedRecipes, profile.DislikedRecipes)
	profile.UpdatedAt = l.now()
	store.SaveJSON(ctx, l.store, profileKey(userID), profile)

	common.LogInfo("評分已記錄",
		zap.String("user_id", userID),
		zap.String("recipe_id", recipe.ID),
		zap.String("rating", string(rating)),
		zap.Int("liked", len(profile.LikedRecipes)),
		zap.Int("disliked", len(profile.DislikedRecipes)),
	)
	return profile, nil
}

// GetDerivedPreferences 取得推導出的偏好
func (l *Learner) GetDerivedPreferences(ctx context.Context, userID string) common.DerivedPreferences {
	return l.Profile(ctx, userID).Derived
}

func without(list []common.RatedRecipe, id string) []common.RatedRecipe {
	out := make([]common.RatedRecipe, 0, len(list))
	for _, rr := range list {
		if rr.Recipe.ID != id {
			out = append(out, rr)
		}
	}
	return out
}
