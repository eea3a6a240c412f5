package recipe

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"recipe-engine/internal/core/external"
	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 額外加權
const (
	healthBoostMax          = 0.05
	popularityBoostMax      = 0.05
	popularitySaturation    = 1000.0
	preferredIngredientBias = 0.05
	preferredIngredientCap  = 0.15
	dislikedIngredientBias  = -0.1
	preferredCuisineBias    = 0.05
	dislikedCuisineBias     = -0.1

	defaultSourceTimeout = 3 * time.Second
	defaultMaxResults    = 10
	minLocalCandidates   = 20
)

// LocalSource 本地食譜來源
type LocalSource interface {
	Search(ingredients []string, maxResults int, exclude map[string]bool) SearchResult
}

// ExternalSource 外部食譜來源
type ExternalSource interface {
	Enabled() bool
	FindByIngredients(ctx context.Context, pantry []string, opts external.Options) ([]common.Recipe, error)
}

// Options 聚合查詢參數
type Options struct {
	MaxResults         int
	// MaxCookingTime 篩選上限，0 表示不限
	MaxCookingTime     int
	// CookingTime 產生食譜的目標時間，0 時沿用 MaxCookingTime
	CookingTime        int
	Difficulty         common.Difficulty
	Cuisine            string
	IncludeExternal    bool
	IncludeSynthesized bool
	ExcludeIDs         []string
	Servings           int
	Preferences        *common.DerivedPreferences
}

// Result 聚合結果
type Result struct {
	Recipes    []common.ScoredRecipe       `json:"recipes"`
	Validation ingredient.ValidationResult `json:"validation"`
	// Guidance 食材不足時的提示，此時 Recipes 為空
	Guidance         *common.Recipe  `json:"guidance,omitempty"`
	ExclusionDropped bool            `json:"exclusion_dropped"`
	FailedSources    []common.Source `json:"failed_sources,omitempty"`
}

// Aggregator 多來源食譜聚合
type Aggregator struct {
	classifier    *ingredient.Classifier
	scorer        *Scorer
	local         LocalSource
	external      ExternalSource
	synth         *Synthesizer
	rnd           *Rand
	sourceTimeout time.Duration
}

// AggregatorConfig 聚合器依賴
type AggregatorConfig struct {
	Classifier    *ingredient.Classifier
	Local         LocalSource
	External      ExternalSource
	Synthesizer   *Synthesizer
	Rand          *Rand
	SourceTimeout time.Duration
}

// NewAggregator 創建聚合器
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.Classifier == nil {
		cfg.Classifier = ingredient.Default()
	}
	if cfg.Rand == nil {
		cfg.Rand = NewEntropyRand()
	}
	if cfg.Synthesizer == nil {
		cfg.Synthesizer = NewSynthesizer(cfg.Classifier, cfg.Rand)
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = defaultSourceTimeout
	}
	return &Aggregator{
		classifier:    cfg.Classifier,
		scorer:        NewScorer(cfg.Classifier),
		local:         cfg.Local,
		external:      cfg.External,
		synth:         cfg.Synthesizer,
		rnd:           cfg.Rand,
		sourceTimeout: cfg.SourceTimeout,
	}
}

// Synthesizer 取得使用中的食譜產生器
func (a *Aggregator) Synthesizer() *Synthesizer {
	return a.synth
}

type sourceResult struct {
	recipes []common.Recipe
	err     error
	skipped bool
}

func (o Options) recipeOptions() common.RecipeOptions {
	cookingTime := o.CookingTime
	if cookingTime <= 0 {
		cookingTime = o.MaxCookingTime
	}
	return common.RecipeOptions{
		CookingTime: cookingTime,
		Servings:    o.Servings,
		Difficulty:  o.Difficulty,
	}
}

// GetRecipes 從所有來源取得食譜並排序
// 任何來源失敗都不會回傳錯誤，最後以食譜產生器補上
func (a *Aggregator) GetRecipes(ctx context.Context, pantry []string, opts Options) Result {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	recipeOpts := opts.recipeOptions()

	validation := a.classifier.Validate(pantry)
	result := Result{Validation: validation, Recipes: []common.ScoredRecipe{}}
	if !validation.Valid {
		guidance := a.synth.Guidance(pantry, recipeOpts)
		result.Guidance = &guidance
		common.LogDebug("食材不足，略過所有來源", zap.Int("substantive", validation.SubstantiveCount))
		return result
	}

	exclude := make(map[string]bool, len(opts.ExcludeIDs))
	for _, id := range opts.ExcludeIDs {
		exclude[id] = true
	}

	local, remote := a.fetch(ctx, pantry, opts, exclude)
	if local.err != nil {
		result.FailedSources = append(result.FailedSources, common.SourceLocal)
	}
	if remote.err != nil {
		result.FailedSources = append(result.FailedSources, common.SourceExternal)
	}

	// 本地與外部都失敗時只用產生器
	if local.err != nil && (remote.err != nil || remote.skipped) {
		common.LogWarn("所有食譜來源失敗，改用食譜產生器", zap.NamedError("local", local.err), zap.NamedError("external", remote.err))
		result.Recipes = a.synthesize(pantry, recipeOpts, opts.Preferences, opts.MaxResults)
		return result
	}

	scored := a.scorer.ScoreAll(local.recipes, pantry, common.SourceLocal)
	for _, sr := range a.scorer.ScoreAll(remote.recipes, pantry, common.SourceExternal) {
		sr.MatchScore += externalBoost(sr.Recipe)
		scored = append(scored, sr)
	}
	scored = filterScored(scored, opts)
	for i := range scored {
		scored[i].MatchScore += preferenceBias(scored[i].Recipe, opts.Preferences)
	}

	merged := mergeByID(scored)
	kept := excludeScored(merged, exclude)
	if len(kept) == 0 && len(merged) > 0 && len(exclude) > 0 {
		common.LogInfo("排除清單會清空結果，改為不排除", zap.Int("excluded", len(exclude)))
		kept = merged
		result.ExclusionDropped = true
	}

	if missing := opts.MaxResults - len(kept); missing > 0 && opts.IncludeSynthesized {
		kept = append(kept, a.synthesize(pantry, recipeOpts, opts.Preferences, missing)...)
	}

	kept = shuffleWithinTiers(kept, func(sr common.ScoredRecipe) float64 { return sr.MatchScore }, a.rnd)
	if len(kept) > opts.MaxResults {
		kept = kept[:opts.MaxResults]
	}
	result.Recipes = kept

	common.LogInfo("食譜聚合完成",
		zap.Int("local", len(local.recipes)),
		zap.Int("external", len(remote.recipes)),
		zap.Int("returned", len(kept)),
		zap.Bool("exclusion_dropped", result.ExclusionDropped),
	)
	return result
}

// fetch 並行查詢本地與外部來源，單一來源失敗不影響另一個
// 每個來源都受 sourceTimeout 限制，不理會 ctx 的來源也不會拖住整體
func (a *Aggregator) fetch(ctx context.Context, pantry []string, opts Options, exclude map[string]bool) (local, remote sourceResult) {
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		local = a.bounded(ctx, common.SourceLocal, func(context.Context) sourceResult {
			if a.local == nil {
				return sourceResult{err: common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("no local index"))}
			}
			res := a.local.Search(pantry, max(opts.MaxResults*3, minLocalCandidates), exclude)
			return sourceResult{recipes: res.Recipes}
		})
		common.LogSourceCall(string(common.SourceLocal), time.Since(start), len(local.recipes), local.err)
		return nil
	})

	g.Go(func() error {
		if !opts.IncludeExternal || a.external == nil || !a.external.Enabled() {
			remote.skipped = true
			return nil
		}
		remote = a.bounded(ctx, common.SourceExternal, func(sctx context.Context) sourceResult {
			recipes, err := a.external.FindByIngredients(sctx, pantry, external.Options{
				Number:       opts.MaxResults,
				MaxReadyTime: opts.MaxCookingTime,
				Cuisine:      opts.Cuisine,
			})
			return sourceResult{recipes: recipes, err: err}
		})
		if remote.err != nil {
			if common.IsSourceUnavailable(remote.err) {
				common.LogInfo("外部食譜來源不可用，靜默降級", zap.Error(remote.err))
			} else {
				common.LogWarn("外部食譜來源失敗", zap.Error(remote.err))
			}
			remote.recipes = nil
		}
		return nil
	})

	_ = g.Wait()
	return local, remote
}

// bounded 在 sourceTimeout 內等待來源結果，逾時或 panic 視為該來源失敗
// 逾時後晚到的結果寫入緩衝 channel 後直接丟棄
func (a *Aggregator) bounded(ctx context.Context, source common.Source, search func(context.Context) sourceResult) sourceResult {
	sctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	done := make(chan sourceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- sourceResult{err: fmt.Errorf("%s search panic: %v", source, r)}
			}
		}()
		done <- search(sctx)
	}()

	select {
	case res := <-done:
		return res
	case <-sctx.Done():
		return sourceResult{err: fmt.Errorf("%s search abandoned: %w", source, sctx.Err())}
	}
}

func (a *Aggregator) synthesize(pantry []string, opts common.RecipeOptions, prefs *common.DerivedPreferences, n int) []common.ScoredRecipe {
	out := make([]common.ScoredRecipe, 0, n)
	for i := 0; i < n; i++ {
		r := a.synth.Synthesize(pantry, opts, prefs)
		out = append(out, common.ScoredRecipe{
			Recipe:     r,
			Source:     common.SourceSynthesized,
			MatchScore: a.scorer.Score(r, pantry),
		})
	}
	return out
}

// externalBoost 依健康分數與熱門度給外部食譜少量加分，上限 0.1
func externalBoost(r common.Recipe) float64 {
	health := math.Min(math.Max(r.HealthScore, 0)/100, 1) * healthBoostMax
	popularity := math.Min(math.Max(r.Popularity, 0)/popularitySaturation, 1) * popularityBoostMax
	return health + popularity
}

// preferenceBias 依學到的偏好調整分數
func preferenceBias(r common.Recipe, prefs *common.DerivedPreferences) float64 {
	if prefs == nil {
		return 0
	}
	var bias, liked float64
	for _, ing := range r.Ingredients {
		if ingredient.MatchesAny(ing.Name, prefs.PreferredIngredients) {
			liked += preferredIngredientBias
		}
		if ingredient.MatchesAny(ing.Name, prefs.DislikedIngredients) {
			bias += dislikedIngredientBias
		}
	}
	bias += math.Min(liked, preferredIngredientCap)
	if r.Cuisine != "" {
		if containsFold(prefs.PreferredCuisines, r.Cuisine) {
			bias += preferredCuisineBias
		}
		if containsFold(prefs.DislikedCuisines, r.Cuisine) {
			bias += dislikedCuisineBias
		}
	}
	return bias
}

func filterScored(in []common.ScoredRecipe, opts Options) []common.ScoredRecipe {
	out := in[:0]
	for _, sr := range in {
		r := sr.Recipe
		if opts.MaxCookingTime > 0 && r.CookingTimeMinutes > opts.MaxCookingTime {
			continue
		}
		if opts.Difficulty != "" && r.Difficulty != opts.Difficulty {
			continue
		}
		if opts.Cuisine != "" && !strings.EqualFold(r.Cuisine, opts.Cuisine) {
			continue
		}
		out = append(out, sr)
	}
	return out
}

// mergeByID 以 ID 去重，保留較高分者，結果依分數由高到低
func mergeByID(in []common.ScoredRecipe) []common.ScoredRecipe {
	best := make(map[string]int, len(in))
	out := make([]common.ScoredRecipe, 0, len(in))
	for _, sr := range in {
		if i, ok := best[sr.Recipe.ID]; ok {
			if sr.MatchScore > out[i].MatchScore {
				out[i] = sr
			}
			continue
		}
		best[sr.Recipe.ID] = len(out)
		out = append(out, sr)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out
}

func excludeScored(in []common.ScoredRecipe, exclude map[string]bool) []common.ScoredRecipe {
	if len(exclude) == 0 {
		return in
	}
	out := make([]common.ScoredRecipe, 0, len(in))
	for _, sr := range in {
		if !exclude[sr.Recipe.ID] {
			out = append(out, sr)
		}
	}
	return out
}
