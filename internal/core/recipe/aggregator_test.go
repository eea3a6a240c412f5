package recipe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"recipe-engine/internal/core/external"
	"recipe-engine/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExternal 可控制結果的外部來源
type stubExternal struct {
	mu      sync.Mutex
	recipes []common.Recipe
	err     error
	delay   time.Duration
	calls   int
	panics  bool
	seen    external.Options
}

func (s *stubExternal) Enabled() bool { return true }

func (s *stubExternal) FindByIngredients(ctx context.Context, _ []string, opts external.Options) ([]common.Recipe, error) {
	s.mu.Lock()
	s.calls++
	s.seen = opts
	s.mu.Unlock()
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.recipes, s.err
}

func (s *stubExternal) lastOptions() external.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen
}

func (s *stubExternal) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// panicLocal 模擬本地索引故障
type panicLocal struct{}

func (panicLocal) Search([]string, int, map[string]bool) SearchResult { panic("index corrupted") }

func seedSubset(ids ...string) []common.Recipe {
	var out []common.Recipe
	for _, r := range SeedCatalog() {
		for _, id := range ids {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out
}

func externalRecipe(id string, cuisine string, minutes int, names ...string) common.Recipe {
	r := common.Recipe{
		ID:                 common.ExternalIDPrefix + id,
		Title:              "External " + id,
		Instructions:       []string{"Cook it."},
		CookingTimeMinutes: minutes,
		Servings:           2,
		Difficulty:         common.DifficultyEasy,
		Cuisine:            cuisine,
	}
	for _, n := range names {
		r.Ingredients = append(r.Ingredients, ing(n, "1", ""))
	}
	return r
}

func newTestAggregator(local LocalSource, ext ExternalSource) *Aggregator {
	rnd := NewRand(1)
	return NewAggregator(AggregatorConfig{
		Local:         local,
		External:      ext,
		Rand:          rnd,
		SourceTimeout: 200 * time.Millisecond,
	})
}

func scoredIDs(in []common.ScoredRecipe) []string {
	ids := make([]string, len(in))
	for i, sr := range in {
		ids[i] = sr.Recipe.ID
	}
	return ids
}

func TestAggregator_LocalBeatsPartialMatchWhenExternalFails(t *testing.T) {
	idx := NewIndex(seedSubset("local-1", "local-2"), NewRand(1))
	ext := &stubExternal{err: common.Wrap(common.ErrQuotaExceeded, errors.New("402"))}
	agg := newTestAggregator(idx, ext)

	var res Result
	require.NotPanics(t, func() {
		res = agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
			MaxResults:      2,
			IncludeExternal: true,
		})
	})

	require.Len(t, res.Recipes, 2)
	assert.Equal(t, "local-1", res.Recipes[0].Recipe.ID)
	assert.Equal(t, "local-2", res.Recipes[1].Recipe.ID)
	assert.Greater(t, res.Recipes[0].MatchScore, res.Recipes[1].MatchScore)
	assert.Equal(t, []common.Source{common.SourceExternal}, res.FailedSources)
	assert.Equal(t, 1, ext.callCount())
}

func TestAggregator_InvalidPantrySkipsSources(t *testing.T) {
	ext := &stubExternal{}
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), ext)

	for _, pantry := range [][]string{nil, {"salt", "pepper"}, {"chicken"}} {
		res := agg.GetRecipes(context.Background(), pantry, Options{IncludeExternal: true, IncludeSynthesized: true})
		assert.False(t, res.Validation.Valid)
		assert.Empty(t, res.Recipes)
		require.NotNil(t, res.Guidance)
		assert.True(t, res.Guidance.IsGuidance())
	}
	assert.Zero(t, ext.callCount())
}

func TestAggregator_MergesAndRanksAcrossSources(t *testing.T) {
	ext := &stubExternal{recipes: []common.Recipe{
		externalRecipe("1", "Asian", 20, "chicken breast", "broccoli", "rice"),
		externalRecipe("2", "Asian", 20, "tofu", "kale"),
	}}
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), ext)

	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:      10,
		IncludeExternal: true,
	})
	ids := scoredIDs(res.Recipes)
	assert.Equal(t, "spoon-1", ids[0])
	assert.Contains(t, ids, "local-1")
	assert.Contains(t, ids, "spoon-2")
	assert.Empty(t, res.FailedSources)

	for i := 1; i < len(res.Recipes); i++ {
		assert.GreaterOrEqual(t, res.Recipes[i-1].MatchScore, res.Recipes[i].MatchScore)
	}
}

func TestAggregator_ExternalBoostIsCapped(t *testing.T) {
	r := externalRecipe("9", "", 10, "rice")
	r.HealthScore = 500
	r.Popularity = 1e6
	assert.InDelta(t, 0.1, externalBoost(r), 1e-9)

	r.HealthScore = 50
	r.Popularity = 0
	assert.InDelta(t, 0.025, externalBoost(r), 1e-9)
}

func TestAggregator_ExclusionDroppedWhenEverythingExcluded(t *testing.T) {
	ext := &stubExternal{recipes: []common.Recipe{
		externalRecipe("1", "Asian", 20, "chicken breast", "rice"),
	}}
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), ext)
	pantry := []string{"chicken breast", "broccoli", "rice"}

	first := agg.GetRecipes(context.Background(), pantry, Options{MaxResults: 10, IncludeExternal: true})
	require.NotEmpty(t, first.Recipes)

	res := agg.GetRecipes(context.Background(), pantry, Options{
		MaxResults:      10,
		IncludeExternal: true,
		ExcludeIDs:      scoredIDs(first.Recipes),
	})
	assert.True(t, res.ExclusionDropped)
	assert.NotEmpty(t, res.Recipes)
	assert.ElementsMatch(t, scoredIDs(first.Recipes), scoredIDs(res.Recipes))
}

func TestAggregator_PartialExclusion(t *testing.T) {
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), nil)
	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults: 10,
		ExcludeIDs: []string{"local-1"},
	})
	assert.False(t, res.ExclusionDropped)
	assert.NotContains(t, scoredIDs(res.Recipes), "local-1")
	assert.NotEmpty(t, res.Recipes)
}

func TestAggregator_FillsFromSynthesizer(t *testing.T) {
	idx := NewIndex(seedSubset("local-1"), NewRand(1))
	agg := newTestAggregator(idx, nil)

	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:         3,
		MaxCookingTime:     40,
		Servings:           2,
		IncludeSynthesized: true,
	})
	require.Len(t, res.Recipes, 3)

	sources := map[common.Source]int{}
	for _, sr := range res.Recipes {
		sources[sr.Source]++
		if sr.Source == common.SourceSynthesized {
			assert.True(t, strings.HasPrefix(sr.Recipe.ID, common.SynthesizedIDPrefix))
			assert.Equal(t, 40, sr.Recipe.CookingTimeMinutes)
		}
	}
	assert.Equal(t, 1, sources[common.SourceLocal])
	assert.Equal(t, 2, sources[common.SourceSynthesized])
}

func TestAggregator_Filters(t *testing.T) {
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), nil)
	pantry := []string{"chicken", "rice", "heavy cream"}

	res := agg.GetRecipes(context.Background(), pantry, Options{MaxResults: 10, MaxCookingTime: 30})
	for _, sr := range res.Recipes {
		assert.LessOrEqual(t, sr.Recipe.CookingTimeMinutes, 30)
	}
	assert.NotContains(t, scoredIDs(res.Recipes), "local-7")

	res = agg.GetRecipes(context.Background(), pantry, Options{MaxResults: 10, Difficulty: common.DifficultyHard})
	assert.Equal(t, []string{"local-7"}, scoredIDs(res.Recipes))

	res = agg.GetRecipes(context.Background(), pantry, Options{MaxResults: 10, Cuisine: "italian"})
	assert.Equal(t, []string{"local-1"}, scoredIDs(res.Recipes))
}

func TestAggregator_PreferenceBias(t *testing.T) {
	prefs := &common.DerivedPreferences{
		PreferredIngredients: []string{"soy sauce", "ginger", "garlic", "beef"},
		DislikedIngredients:  []string{"parmesan"},
		PreferredCuisines:    []string{"asian"},
		DislikedCuisines:     []string{"Italian"},
	}
	local1 := findSeed(t, "local-1")
	local2 := findSeed(t, "local-2")

	// 四個偏好食材也只加到上限 0.15，再加菜系 0.05
	assert.InDelta(t, 0.2, preferenceBias(local2, prefs), 1e-9)
	// garlic +0.05、parmesan -0.1、Italian -0.1
	assert.InDelta(t, -0.15, preferenceBias(local1, prefs), 1e-9)
	assert.Zero(t, preferenceBias(local1, nil))

	agg := newTestAggregator(NewIndex(seedSubset("local-1", "local-2"), NewRand(1)), nil)
	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:  2,
		Preferences: prefs,
	})
	assert.Equal(t, []string{"local-2", "local-1"}, scoredIDs(res.Recipes))
}

func TestAggregator_TotalFailureFallsBackToSynthesizer(t *testing.T) {
	ext := &stubExternal{err: errors.New("connection reset")}
	agg := newTestAggregator(panicLocal{}, ext)

	var res Result
	require.NotPanics(t, func() {
		res = agg.GetRecipes(context.Background(), []string{"salmon", "asparagus", "quinoa"}, Options{
			MaxResults:      2,
			IncludeExternal: true,
		})
	})
	require.Len(t, res.Recipes, 2)
	for _, sr := range res.Recipes {
		assert.Equal(t, common.SourceSynthesized, sr.Source)
		assert.NotEmpty(t, sr.Recipe.Ingredients)
		assert.NotEmpty(t, sr.Recipe.Instructions)
	}
	assert.ElementsMatch(t, []common.Source{common.SourceLocal, common.SourceExternal}, res.FailedSources)
}

func TestAggregator_NoSourceFailureCombinationErrors(t *testing.T) {
	locals := []LocalSource{nil, panicLocal{}, NewIndex(SeedCatalog(), NewRand(1))}
	externals := []ExternalSource{
		nil,
		&stubExternal{err: common.Wrap(common.ErrQuotaExceeded, errors.New("402"))},
		&stubExternal{err: common.Wrap(common.ErrUpstreamFailure, errors.New("500"))},
		&stubExternal{panics: true},
		&stubExternal{delay: time.Second},
	}
	for _, local := range locals {
		for _, ext := range externals {
			agg := newTestAggregator(local, ext)
			require.NotPanics(t, func() {
				res := agg.GetRecipes(context.Background(), []string{"beef", "broccoli"}, Options{
					MaxResults:         2,
					IncludeExternal:    true,
					IncludeSynthesized: true,
				})
				assert.NotEmpty(t, res.Recipes)
			})
		}
	}
}

func TestAggregator_ExternalTimeout(t *testing.T) {
	ext := &stubExternal{delay: 5 * time.Second}
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), ext)

	start := time.Now()
	res := agg.GetRecipes(context.Background(), []string{"beef", "broccoli"}, Options{MaxResults: 2, IncludeExternal: true})
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []common.Source{common.SourceExternal}, res.FailedSources)
	assert.NotEmpty(t, res.Recipes)
}

func TestAggregator_BestMatchStableAcrossCalls(t *testing.T) {
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), nil)

	seen := make(map[string]bool)
	for i := 0; i < 40; i++ {
		res := agg.GetRecipes(context.Background(), []string{"garlic", "pasta", "beef"}, Options{MaxResults: 1})
		require.Len(t, res.Recipes, 1)
		seen[res.Recipes[0].Recipe.ID] = true
	}
	assert.Equal(t, map[string]bool{"local-8": true}, seen)
}

// stuckExternal 不理會 ctx 的外部來源
type stuckExternal struct {
	wait    time.Duration
	recipes []common.Recipe
}

func (stuckExternal) Enabled() bool { return true }

func (s stuckExternal) FindByIngredients(context.Context, []string, external.Options) ([]common.Recipe, error) {
	time.Sleep(s.wait)
	return s.recipes, nil
}

// slowLocal 查詢很慢的本地來源
type slowLocal struct{ wait time.Duration }

func (s slowLocal) Search([]string, int, map[string]bool) SearchResult {
	time.Sleep(s.wait)
	return SearchResult{Recipes: seedSubset("local-1")}
}

func TestAggregator_StuckExternalDoesNotStallAggregation(t *testing.T) {
	ext := stuckExternal{wait: 2 * time.Second, recipes: []common.Recipe{
		externalRecipe("late", "", 10, "chicken breast", "rice"),
	}}
	agg := newTestAggregator(NewIndex(SeedCatalog(), NewRand(1)), ext)

	start := time.Now()
	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:      5,
		IncludeExternal: true,
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second)
	assert.Contains(t, res.FailedSources, common.SourceExternal)
	assert.Contains(t, scoredIDs(res.Recipes), "local-1")
	assert.NotContains(t, scoredIDs(res.Recipes), "spoon-late")
}

func TestAggregator_SlowLocalIsBounded(t *testing.T) {
	agg := newTestAggregator(slowLocal{wait: 2 * time.Second}, nil)

	start := time.Now()
	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:         2,
		IncludeSynthesized: true,
	})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []common.Source{common.SourceLocal}, res.FailedSources)
	require.Len(t, res.Recipes, 2)
	for _, sr := range res.Recipes {
		assert.Equal(t, common.SourceSynthesized, sr.Source)
	}
}

func TestAggregator_LocalExclusionFallbackIsNotReported(t *testing.T) {
	ext := &stubExternal{recipes: []common.Recipe{
		externalRecipe("9", "", 20, "chicken breast", "rice"),
	}}
	agg := newTestAggregator(NewIndex(seedSubset("local-1"), NewRand(1)), ext)

	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "broccoli", "rice"}, Options{
		MaxResults:      5,
		IncludeExternal: true,
		ExcludeIDs:      []string{"local-1"},
	})

	assert.Equal(t, []string{"spoon-9"}, scoredIDs(res.Recipes))
	assert.False(t, res.ExclusionDropped)
}

func TestAggregator_TargetCookingTimeDoesNotFilter(t *testing.T) {
	ext := &stubExternal{recipes: []common.Recipe{
		externalRecipe("slow", "", 45, "chicken breast", "rice"),
	}}
	agg := newTestAggregator(NewIndex(nil, NewRand(1)), ext)

	res := agg.GetRecipes(context.Background(), []string{"chicken breast", "rice"}, Options{
		CookingTime:        30,
		IncludeExternal:    true,
		IncludeSynthesized: true,
	})

	assert.Contains(t, scoredIDs(res.Recipes), common.ExternalIDPrefix+"slow")
	assert.Zero(t, ext.lastOptions().MaxReadyTime)
	for _, sr := range res.Recipes {
		if strings.HasPrefix(sr.Recipe.ID, common.SynthesizedIDPrefix) {
			assert.Equal(t, 30, sr.Recipe.CookingTimeMinutes)
		}
	}

	capped := agg.GetRecipes(context.Background(), []string{"chicken breast", "rice"}, Options{
		MaxCookingTime:  30,
		IncludeExternal: true,
	})
	assert.NotContains(t, scoredIDs(capped.Recipes), common.ExternalIDPrefix+"slow")
	assert.Equal(t, 30, ext.lastOptions().MaxReadyTime)
}
