package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-engine/internal/core/cache"
	"recipe-engine/internal/core/external"
	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/core/preference"
	"recipe-engine/internal/core/recipe"
	"recipe-engine/internal/infrastructure/config"
	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	maxSuggestions = 20
	readyProbeKey  = "engine:ready"
)

// Engine 食譜推薦引擎的對外介面
// 來源或儲存失敗一律降級處理，只有請求本身不合法時回傳錯誤
type Engine struct {
	cfg        config.EngineConfig
	store      store.Store
	classifier *ingredient.Classifier
	index      *recipe.Index
	external   *external.Client
	searcher   searcher
	aggregator *recipe.Aggregator
	dual       *recipe.DualGenerator
	cache      *cache.Manager
	learner    *preference.Learner
	usage      *ingredient.UsageTracker
	validate   *validator.Validate
}

// searcher 關鍵字搜尋來源
type searcher interface {
	Search(ctx context.Context, query string, opts external.Options) ([]common.Recipe, error)
}

type options struct {
	rnd      *recipe.Rand
	external recipe.ExternalSource
	now      func() time.Time
}

// Option 引擎選項
type Option func(*options)

// WithRand 指定亂數來源
func WithRand(rnd *recipe.Rand) Option {
	return func(o *options) { o.rnd = rnd }
}

// WithExternal 替換外部食譜來源
func WithExternal(src recipe.ExternalSource) Option {
	return func(o *options) { o.external = src }
}

// WithClock 指定時間來源
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New 依設定建立引擎
func New(ctx context.Context, cfg *config.Config, s store.Store, opts ...Option) *Engine {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = recipe.NewEntropyRand()
	}

	e := &Engine{
		cfg:        cfg.Engine,
		store:      s,
		classifier: ingredient.Default(),
		validate:   validator.New(),
	}
	e.index = recipe.LoadIndex(ctx, s, o.rnd)

	// 沒有啟用時保持 nil 介面，避免帶型別的 nil
	ext := o.external
	if ext == nil && cfg.External.Enabled {
		e.external = external.NewClient(cfg.External)
		ext = e.external
	}
	if ext != nil && ext.Enabled() {
		if sr, ok := ext.(searcher); ok {
			e.searcher = sr
		}
	}

	e.aggregator = recipe.NewAggregator(recipe.AggregatorConfig{
		Classifier:    e.classifier,
		Local:         e.index,
		External:      ext,
		Synthesizer:   recipe.NewSynthesizer(e.classifier, o.rnd),
		Rand:          o.rnd,
		SourceTimeout: cfg.Engine.SourceTimeout,
	})
	e.dual = recipe.NewDualGenerator(e.aggregator)
	e.learner = preference.NewLearner(s).WithClock(o.now)
	e.usage = ingredient.NewUsageTracker(s, e.classifier).WithClock(o.now)
	e.cache = cache.NewManager(cfg.ResultCache, s, e.generatePair, e.learner).WithClock(o.now)

	common.LogInfo("食譜引擎已初始化",
		zap.Int("local_recipes", e.index.Len()),
		zap.Bool("external_enabled", ext != nil && ext.Enabled()),
		zap.Duration("source_timeout", cfg.Engine.SourceTimeout),
	)
	return e
}

// ValidatePantry 判斷食材是否足以產生食譜
func (e *Engine) ValidatePantry(pantry []string) ingredient.ValidationResult {
	return e.classifier.Validate(pantry)
}

// GetInstantRecipes 從所有來源取得排序後的食譜
func (e *Engine) GetInstantRecipes(ctx context.Context, req RecipeRequest) InstantResult {
	opts := recipe.Options{
		MaxResults:         req.MaxResults,
		MaxCookingTime:     req.MaxCookingTime,
		Difficulty:         common.ParseDifficulty(string(req.Difficulty)),
		Cuisine:            strings.TrimSpace(req.Cuisine),
		IncludeExternal:    e.cfg.IncludeExternal,
		IncludeSynthesized: e.cfg.IncludeSynthesized,
		ExcludeIDs:         req.ExcludeIDs,
		Servings:           req.Servings,
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = e.cfg.MaxResults
	}
	if opts.Servings <= 0 {
		opts.Servings = e.cfg.DefaultServings
	}
	if req.IncludeExternal != nil {
		opts.IncludeExternal = *req.IncludeExternal
	}
	if req.UserID != "" {
		prefs := e.learner.GetDerivedPreferences(ctx, req.UserID)
		opts.Preferences = &prefs
	}
	return e.aggregator.GetRecipes(ctx, req.Ingredients, opts)
}

// GetFastRecipes 取得兩道食譜，相同食材與偏好會命中快取
func (e *Engine) GetFastRecipes(ctx context.Context, req FastRequest) FastResult {
	validation := e.classifier.Validate(req.Ingredients)
	if !validation.Valid {
		guidance := e.aggregator.Synthesizer().Guidance(req.Ingredients, e.recipeOptions())
		return FastResult{Recipes: []common.Recipe{}, Validation: validation, Guidance: &guidance}
	}

	res := e.cache.GetOrGenerate(ctx, req.Ingredients, req.UserID, req.ForceRefresh)
	return FastResult{Recipes: res.Recipes, FromCache: res.FromCache, Validation: validation}
}

// generatePair 快取未命中時的產生流程
func (e *Engine) generatePair(ctx context.Context, pantry []string, prefs *common.DerivedPreferences) []common.Recipe {
	opts := recipe.Options{
		IncludeExternal:    e.cfg.IncludeExternal,
		IncludeSynthesized: e.cfg.IncludeSynthesized,
		CookingTime:        e.cfg.DefaultCookingTime,
		Servings:           e.cfg.DefaultServings,
		Preferences:        prefs,
	}
	return e.dual.Generate(ctx, pantry, opts, func(i int, r common.Recipe) {
		common.LogDebug("食譜已就緒", zap.Int("index", i), zap.String("recipe_id", r.ID))
	})
}

func (e *Engine) recipeOptions() common.RecipeOptions {
	return common.RecipeOptions{
		CookingTime: e.cfg.DefaultCookingTime,
		Servings:    e.cfg.DefaultServings,
	}
}

// RecordIngredientUsage 記錄使用者加入的食材
func (e *Engine) RecordIngredientUsage(ctx context.Context, ingredients []string) {
	e.usage.Record(ctx, ingredients)
}

// GetQuickSuggestions 建議可加入的食材
func (e *Engine) GetQuickSuggestions(ctx context.Context, pantry []string, limit int) []string {
	if limit <= 0 || limit > maxSuggestions {
		limit = maxSuggestions
	}
	return e.usage.QuickSuggestions(ctx, pantry, limit)
}

// RateRecipe 記錄評分並回傳更新後的偏好
func (e *Engine) RateRecipe(ctx context.Context, userID string, req RatingRequest) (RatingResult, error) {
	r, err := e.resolveRecipe(req)
	if err != nil {
		return RatingResult{}, err
	}
	profile, err := e.learner.RecordRating(ctx, userID, r, req.Rating, req.Feedback)
	if err != nil {
		return RatingResult{}, err
	}
	return RatingResult{
		UserID:   profile.UserID,
		Liked:    len(profile.LikedRecipes),
		Disliked: len(profile.DislikedRecipes),
		Derived:  profile.Derived,
		Hints:    preference.Hints(profile),
	}, nil
}

func (e *Engine) resolveRecipe(req RatingRequest) (common.Recipe, error) {
	if req.Recipe != nil {
		if req.Recipe.ID == "" {
			return common.Recipe{}, common.NewValidationError("recipe.id is required")
		}
		if req.Recipe.IsGuidance() {
			return common.Recipe{}, common.NewValidationError("guidance responses cannot be rated")
		}
		return *req.Recipe, nil
	}
	if req.RecipeID == "" {
		return common.Recipe{}, common.NewValidationError("recipe_id or recipe is required")
	}
	r, ok := e.index.Get(req.RecipeID)
	if !ok {
		return common.Recipe{}, common.Wrap(common.ErrNotFound, fmt.Errorf("recipe %s", req.RecipeID))
	}
	return r, nil
}

// GetPersonalizationHints 產生個人化提示
func (e *Engine) GetPersonalizationHints(ctx context.Context, userID string) []string {
	return preference.Hints(e.learner.Profile(ctx, userID))
}

// GetProfile 取得使用者偏好檔
func (e *Engine) GetProfile(ctx context.Context, userID string) common.UserPreferenceProfile {
	return e.learner.Profile(ctx, userID)
}

// AddLocalRecipes 新增本地食譜並寫回儲存
func (e *Engine) AddLocalRecipes(ctx context.Context, recipes []common.Recipe) ([]string, error) {
	if len(recipes) == 0 {
		return nil, common.NewValidationError("no recipes given")
	}
	ids := make([]string, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		if r.ID == "" {
			r.ID = common.LocalIDPrefix + common.GenerateUUID()
		} else if !strings.HasPrefix(r.ID, common.LocalIDPrefix) {
			r.ID = common.LocalIDPrefix + r.ID
		}
		if r.Difficulty == "" {
			r.Difficulty = common.DifficultyFor(len(r.Ingredients), r.CookingTimeMinutes)
		}
		if err := e.validate.Struct(r); err != nil {
			return nil, common.NewValidationError(fmt.Sprintf("recipe %d: %v", i, err))
		}
		ids = append(ids, r.ID)
	}

	e.index.Add(recipes...)
	e.index.Save(ctx, e.store)
	common.LogInfo("本地食譜已新增", zap.Strings("ids", ids), zap.Int("total", e.index.Len()))
	return ids, nil
}

// SearchRecipes 依關鍵字搜尋本地與外部食譜
// 外部來源失敗時只回傳本地結果
func (e *Engine) SearchRecipes(ctx context.Context, query string, limit int) []common.Recipe {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []common.Recipe{}
	}
	if limit <= 0 {
		limit = e.cfg.MaxResults
	}

	out := make([]common.Recipe, 0, limit)
	seen := make(map[string]bool)
	for _, r := range e.index.All() {
		if len(out) >= limit {
			return out
		}
		if strings.Contains(strings.ToLower(r.Title), query) ||
			strings.EqualFold(r.Cuisine, query) || r.HasTag(query) {
			out = append(out, r)
			seen[r.ID] = true
		}
	}

	if e.searcher == nil || !e.cfg.IncludeExternal {
		return out
	}
	sctx, cancel := context.WithTimeout(ctx, e.cfg.SourceTimeout)
	defer cancel()
	remote, err := e.searcher.Search(sctx, query, external.Options{Number: limit})
	if err != nil {
		common.LogWarn("外部關鍵字搜尋失敗，只回傳本地結果",
			zap.String("query", query),
			zap.Error(err),
		)
		return out
	}
	for _, r := range remote {
		if len(out) >= limit {
			break
		}
		if !seen[r.ID] {
			out = append(out, r)
			seen[r.ID] = true
		}
	}
	return out
}

// CacheStats 結果快取統計
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// Flush 等待結果快取寫入儲存
func (e *Engine) Flush() {
	e.cache.Flush()
}

// ClearCaches 清除結果快取與外部回應快取
func (e *Engine) ClearCaches(ctx context.Context) {
	e.cache.Clear(ctx)
	if e.external != nil {
		e.external.Clear()
	}
}

// Ready 檢查儲存是否可用
func (e *Engine) Ready(ctx context.Context) error {
	if e.store == nil {
		return errors.New("no store configured")
	}
	if _, err := e.store.Get(ctx, readyProbeKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return common.Wrap(common.ErrPersistence, err)
	}
	return nil
}

// LocalRecipeCount 本地食譜數
func (e *Engine) LocalRecipeCount() int {
	return e.index.Len()
}
