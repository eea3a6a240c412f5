package preference

import (
	"context"
	"fmt"
	"testing"
	"time"

	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rated(id, cuisine string, minutes int, difficulty common.Difficulty, ingredients ...string) common.RatedRecipe {
	r := common.Recipe{
		ID:                 id,
		Title:              "Recipe " + id,
		Instructions:       []string{"Cook."},
		CookingTimeMinutes: minutes,
		Servings:           2,
		Difficulty:         difficulty,
		Cuisine:            cuisine,
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, common.Ingredient{Name: name, Amount: "1"})
	}
	return common.RatedRecipe{Recipe: r}
}

func repeat(n int, build func(i int) common.RatedRecipe) []common.RatedRecipe {
	out := make([]common.RatedRecipe, n)
	for i := range out {
		out[i] = build(i)
	}
	return out
}

func TestDerive_PreferredRequiresFourAppearances(t *testing.T) {
	three := repeat(3, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("r%d", i), "", 20, common.DifficultyEasy, "basil")
	})
	d := Derive(three, nil)
	assert.NotContains(t, d.PreferredIngredients, "basil")

	four := repeat(4, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("r%d", i), "", 20, common.DifficultyEasy, "basil")
	})
	d = Derive(four, nil)
	assert.Equal(t, []string{"basil"}, d.PreferredIngredients)
}

func TestDerive_PreferredNeedsConfidence(t *testing.T) {
	// 喜歡 3 次、不喜歡 2 次：比例 0.6，信心不足
	liked := repeat(3, func(i int) common.RatedRecipe { return rated(fmt.Sprintf("l%d", i), "", 20, "", "mushroom") })
	disliked := repeat(2, func(i int) common.RatedRecipe { return rated(fmt.Sprintf("d%d", i), "", 20, "", "mushroom") })
	d := Derive(liked, disliked)
	assert.Empty(t, d.PreferredIngredients)
	assert.Empty(t, d.DislikedIngredients)
}

func TestDerive_DislikedIsStrict(t *testing.T) {
	disliked := repeat(5, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("d%d", i), "", 20, "", "olives")
	})
	d := Derive(nil, disliked)
	assert.Equal(t, []string{"olives"}, d.DislikedIngredients)

	// 只要被喜歡過一次就不會被標記為不喜歡
	liked := []common.RatedRecipe{rated("l1", "", 20, "", "olives")}
	d = Derive(liked, disliked)
	assert.Empty(t, d.DislikedIngredients)

	// 只有 4 次觀察不夠
	d = Derive(nil, disliked[:4])
	assert.Empty(t, d.DislikedIngredients)
}

func TestDerive_ExplicitFeedbackDoublesDislike(t *testing.T) {
	// 兩次不喜歡，其中一次明確指出 cilantro，加權後達到 3
	disliked := []common.RatedRecipe{
		rated("d1", "", 20, "", "cilantro"),
		rated("d2", "", 20, "", "cilantro"),
		rated("d3", "", 20, "", "rice"),
		rated("d4", "", 20, "", "rice"),
		rated("d5", "", 20, "", "rice"),
	}
	disliked[1].Feedback = &common.Feedback{Reason: common.FeedbackReasonIngredients, SpecificIngredients: []string{"Cilantro"}}

	d := Derive(nil, disliked)
	// cilantro 權重夠但只出現兩次，rice 出現三次也未達 5 次
	assert.Empty(t, d.DislikedIngredients)

	more := append(disliked,
		rated("d6", "", 20, "", "cilantro"),
		rated("d7", "", 20, "", "cilantro"),
		rated("d8", "", 20, "", "cilantro"),
	)
	d = Derive(nil, more)
	assert.Equal(t, []string{"cilantro"}, d.DislikedIngredients)
}

func TestDerive_ExplicitFeedbackOnlyForIngredientReason(t *testing.T) {
	liked := repeat(4, func(i int) common.RatedRecipe { return rated(fmt.Sprintf("l%d", i), "", 20, "", "cilantro") })
	disliked := []common.RatedRecipe{rated("d1", "", 20, "", "cilantro")}

	// 4 比 1：信心 0.8
	disliked[0].Feedback = &common.Feedback{Reason: "too long", SpecificIngredients: []string{"cilantro"}}
	assert.Equal(t, []string{"cilantro"}, Derive(liked, disliked).PreferredIngredients)

	// 4 比 2：信心降到 0.67
	disliked[0].Feedback = &common.Feedback{Reason: common.FeedbackReasonIngredients, SpecificIngredients: []string{"cilantro"}}
	assert.Empty(t, Derive(liked, disliked).PreferredIngredients)
}

func TestDerive_TopListsAreCapped(t *testing.T) {
	var ingredients []string
	for i := 0; i < 20; i++ {
		ingredients = append(ingredients, fmt.Sprintf("ingredient-%02d", i))
	}
	liked := repeat(5, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("l%d", i), "Thai", 30, common.DifficultyMedium, ingredients...)
	})
	d := Derive(liked, nil)
	assert.Len(t, d.PreferredIngredients, 15)
	assert.Equal(t, "ingredient-00", d.PreferredIngredients[0])
	assert.Equal(t, []string{"thai"}, d.PreferredCuisines)
}

func TestDerive_Cuisines(t *testing.T) {
	liked := repeat(4, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("l%d", i), "Mexican", 20, "", "beans")
	})
	disliked := repeat(5, func(i int) common.RatedRecipe {
		return rated(fmt.Sprintf("d%d", i), "French", 20, "", "snails")
	})
	d := Derive(liked, disliked)
	assert.Equal(t, []string{"mexican"}, d.PreferredCuisines)
	assert.Equal(t, []string{"french"}, d.DislikedCuisines)

	// 只有 3 次喜歡時信心 0.6 未達 0.65
	d = Derive(liked[:3], nil)
	assert.Empty(t, d.PreferredCuisines)
}

func TestDerive_DifficultyAndCookingTime(t *testing.T) {
	liked := []common.RatedRecipe{
		rated("a", "", 10, common.DifficultyHard),
		rated("b", "", 20, common.DifficultyEasy),
		rated("c", "", 30, common.DifficultyEasy),
		rated("d", "", 40, common.DifficultyMedium),
	}
	d := Derive(liked, []common.RatedRecipe{rated("x", "", 90, common.DifficultyHard)})
	assert.Equal(t, []common.Difficulty{common.DifficultyEasy, common.DifficultyMedium, common.DifficultyHard}, d.PreferredDifficulty)
	assert.Equal(t, 25.0, d.AverageCookingTimeMinutes)
}

func TestLearner_RecordRatingMovesBetweenLists(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	l := NewLearner(store.NewMemoryStore()).WithClock(func() time.Time { return now })
	recipe := rated("local-1", "Italian", 30, common.DifficultyMedium, "chicken", "pasta").Recipe

	profile, err := l.RecordRating(ctx, "u1", recipe, common.RatingLike, nil)
	require.NoError(t, err)
	assert.Len(t, profile.LikedRecipes, 1)
	assert.Empty(t, profile.DislikedRecipes)
	assert.Equal(t, now, profile.LikedRecipes[0].Timestamp)

	profile, err = l.RecordRating(ctx, "u1", recipe, common.RatingDislike, &common.Feedback{Reason: "too long"})
	require.NoError(t, err)
	assert.Empty(t, profile.LikedRecipes)
	require.Len(t, profile.DislikedRecipes, 1)
	assert.Equal(t, "too long", profile.DislikedRecipes[0].Feedback.Reason)

	stored := l.Profile(ctx, "u1")
	assert.Empty(t, stored.LikedRecipes)
	assert.Len(t, stored.DislikedRecipes, 1)
}

func TestLearner_DerivedPreferencesAreStable(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(store.NewMemoryStore())
	for i := 0; i < 5; i++ {
		r := rated(fmt.Sprintf("r%d", i), "Mexican", 20, common.DifficultyEasy, "beans", "corn").Recipe
		_, err := l.RecordRating(ctx, "u1", r, common.RatingLike, nil)
		require.NoError(t, err)
	}

	first := l.GetDerivedPreferences(ctx, "u1")
	second := l.GetDerivedPreferences(ctx, "u1")
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{"beans", "corn"}, first.PreferredIngredients)
	assert.Equal(t, []string{"mexican"}, first.PreferredCuisines)
}

func TestLearner_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	l := NewLearner(store.NewMemoryStore())
	recipe := rated("r1", "", 10, "", "rice").Recipe

	_, err := l.RecordRating(ctx, " ", recipe, common.RatingLike, nil)
	assert.True(t, common.IsValidationError(err))

	_, err = l.RecordRating(ctx, "u1", common.Recipe{}, common.RatingLike, nil)
	assert.True(t, common.IsValidationError(err))

	_, err = l.RecordRating(ctx, "u1", recipe, common.Rating("meh"), nil)
	assert.True(t, common.IsValidationError(err))
}

func TestLearner_UnknownUserHasEmptyProfile(t *testing.T) {
	l := NewLearner(store.NewMemoryStore())
	d := l.GetDerivedPreferences(context.Background(), "nobody")
	assert.Empty(t, d.PreferredIngredients)
	assert.Empty(t, d.DislikedIngredients)
	assert.Zero(t, d.AverageCookingTimeMinutes)
}

func TestHints(t *testing.T) {
	assert.Len(t, Hints(common.UserPreferenceProfile{}), 1)

	profile := common.UserPreferenceProfile{
		LikedRecipes: repeat(2, func(i int) common.RatedRecipe { return rated(fmt.Sprintf("r%d", i), "", 20, "", "x") }),
		Derived: common.DerivedPreferences{
			PreferredIngredients:      []string{"garlic", "basil", "tomato", "feta"},
			PreferredCuisines:         []string{"italian"},
			DislikedIngredients:       []string{"olives"},
			PreferredDifficulty:       []common.Difficulty{common.DifficultyEasy},
			AverageCookingTimeMinutes: 24.6,
		},
	}
	hints := Hints(profile)
	assert.Contains(t, hints, "You seem to love garlic, basil and tomato.")
	assert.Contains(t, hints, "Italian dishes are a favorite, so we'll show more of them.")
	assert.Contains(t, hints, "We'll go easy on olives.")
	assert.Contains(t, hints, "Recipes you like usually take about 25 minutes.")
	assert.Contains(t, hints, "You tend to enjoy easy recipes.")
	assert.Equal(t, "Based on 2 rated recipes.", hints[len(hints)-1])
}

func TestHints_CapitalizesNonASCIICuisine(t *testing.T) {
	profile := common.UserPreferenceProfile{
		LikedRecipes: repeat(1, func(i int) common.RatedRecipe { return rated(fmt.Sprintf("r%d", i), "", 20, "", "x") }),
		Derived: common.DerivedPreferences{
			PreferredCuisines: []string{"éthiopienne"},
		},
	}
	assert.Contains(t, Hints(profile), "Éthiopienne dishes are a favorite, so we'll show more of them.")
}
