package recipe

import (
	"context"
	"testing"

	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultIDs(recipes []common.Recipe) []string {
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return ids
}

func TestIndex_SearchRanksExactHitsFirst(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(1))

	res := idx.Search([]string{"chicken breast", "broccoli", "rice"}, 10, nil)
	require.NotEmpty(t, res.Recipes)
	assert.False(t, res.ExclusionDropped)

	ids := resultIDs(res.Recipes)
	// chicken breast 與 rice 都命中，分數 6；其餘各 3 分
	assert.Equal(t, "local-1", ids[0])
	assert.ElementsMatch(t, []string{"local-1", "local-2", "local-3", "local-7"}, ids)
}

func TestIndex_SubstringMatchesBothDirections(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(1))

	// "chicken" 是 "chicken breast" 與 "chicken thigh" 的子字串
	res := idx.Search([]string{"Chicken"}, 10, nil)
	assert.ElementsMatch(t, []string{"local-1", "local-7"}, resultIDs(res.Recipes))

	// "black beans can" 包含 "black beans"
	res = idx.Search([]string{"black beans can"}, 10, nil)
	assert.Equal(t, []string{"local-6"}, resultIDs(res.Recipes))
}

func TestIndex_SearchTruncatesAndShufflesTies(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(7))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		res := idx.Search([]string{"garlic"}, 1, nil)
		require.Len(t, res.Recipes, 1)
		seen[res.Recipes[0].ID] = true
	}
	// garlic 出現在三道食譜中，同分的結果不應總是同一道
	assert.Greater(t, len(seen), 1)
	for id := range seen {
		assert.Contains(t, []string{"local-1", "local-2", "local-8"}, id)
	}
}

func TestIndex_SameSeedSameOrder(t *testing.T) {
	a := NewIndex(SeedCatalog(), NewRand(42)).Search([]string{"garlic", "rice"}, 10, nil)
	b := NewIndex(SeedCatalog(), NewRand(42)).Search([]string{"garlic", "rice"}, 10, nil)
	assert.Equal(t, resultIDs(a.Recipes), resultIDs(b.Recipes))
}

func TestIndex_Exclusion(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(1))

	res := idx.Search([]string{"chicken breast", "broccoli", "rice"}, 10, map[string]bool{"local-1": true})
	assert.False(t, res.ExclusionDropped)
	assert.NotContains(t, resultIDs(res.Recipes), "local-1")

	all := map[string]bool{"local-1": true, "local-2": true, "local-3": true, "local-7": true}
	res = idx.Search([]string{"chicken breast", "broccoli", "rice"}, 10, all)
	assert.True(t, res.ExclusionDropped)
	assert.Len(t, res.Recipes, 4)
}

func TestIndex_NoMatches(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(1))

	res := idx.Search([]string{"dragonfruit"}, 10, map[string]bool{"local-1": true})
	assert.Empty(t, res.Recipes)
	assert.False(t, res.ExclusionDropped)

	assert.Empty(t, idx.Search([]string{"  ", ""}, 10, nil).Recipes)
}

func TestIndex_AddRebuildsIndex(t *testing.T) {
	idx := NewIndex(SeedCatalog(), NewRand(1))
	assert.Empty(t, idx.Search([]string{"lentils"}, 10, nil).Recipes)

	idx.Add(common.Recipe{
		ID:                 "local-100",
		Title:              "Lentil Soup",
		Ingredients:        []common.Ingredient{ing("lentils", "1", "cup"), ing("carrot", "2", "")},
		Instructions:       []string{"Simmer everything for 30 minutes."},
		CookingTimeMinutes: 35,
		Servings:           4,
		Difficulty:         common.DifficultyEasy,
		Cuisine:            "Mediterranean",
	})

	assert.Equal(t, 9, idx.Len())
	assert.Equal(t, []string{"local-100"}, resultIDs(idx.Search([]string{"lentils"}, 10, nil).Recipes))

	// 相同 ID 覆蓋舊資料
	updated, ok := idx.Get("local-100")
	require.True(t, ok)
	updated.Ingredients = []common.Ingredient{ing("split peas", "1", "cup")}
	idx.Add(updated)
	assert.Equal(t, 9, idx.Len())
	assert.Empty(t, idx.Search([]string{"lentils"}, 10, nil).Recipes)
}

func TestIndex_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	// 沒有資料時使用內建食譜
	idx := LoadIndex(ctx, s, NewRand(1))
	assert.Equal(t, len(SeedCatalog()), idx.Len())

	idx.Add(common.Recipe{
		ID:                 "local-200",
		Title:              "Toast",
		Ingredients:        []common.Ingredient{ing("bread", "2", "slices")},
		Instructions:       []string{"Toast the bread."},
		CookingTimeMinutes: 5,
		Servings:           1,
		Difficulty:         common.DifficultyEasy,
	})
	idx.Save(ctx, s)

	reloaded := LoadIndex(ctx, s, NewRand(1))
	assert.Equal(t, idx.Len(), reloaded.Len())
	_, ok := reloaded.Get("local-200")
	assert.True(t, ok)
}

func TestIndex_LoadFallsBackOnBrokenDocument(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(ctx, localCatalogKey, "[{broken"))

	idx := LoadIndex(ctx, s, NewRand(1))
	assert.Equal(t, len(SeedCatalog()), idx.Len())
}
