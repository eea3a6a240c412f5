package preference

import (
	"fmt"
	"math"
	"strings"

	"recipe-engine/internal/pkg/common"
)

const maxHintItems = 3

// Hints 由偏好檔產生給使用者看的提示
func Hints(profile common.UserPreferenceProfile) []string {
	rated := len(profile.LikedRecipes) + len(profile.DislikedRecipes)
	if rated == 0 {
		return []string{"Rate a few recipes and we'll start tailoring suggestions to your taste."}
	}

	d := profile.Derived
	hints := make([]string, 0, 6)
	if len(d.PreferredIngredients) > 0 {
		hints = append(hints, fmt.Sprintf("You seem to love %s.", humanList(d.PreferredIngredients)))
	}
	if len(d.PreferredCuisines) > 0 {
		hints = append(hints, fmt.Sprintf("%s dishes are a favorite, so we'll show more of them.", titleList(d.PreferredCuisines)))
	}
	if len(d.DislikedIngredients) > 0 {
		hints = append(hints, fmt.Sprintf("We'll go easy on %s.", humanList(d.DislikedIngredients)))
	}
	if len(d.DislikedCuisines) > 0 {
		hints = append(hints, fmt.Sprintf("We'll show fewer %s dishes.", titleList(d.DislikedCuisines)))
	}
	if d.AverageCookingTimeMinutes > 0 {
		hints = append(hints, fmt.Sprintf("Recipes you like usually take about %d minutes.", int(math.Round(d.AverageCookingTimeMinutes))))
	}
	if len(d.PreferredDifficulty) > 0 {
		hints = append(hints, fmt.Sprintf("You tend to enjoy %s recipes.", strings.ToLower(string(d.PreferredDifficulty[0]))))
	}

	plural := "s"
	if rated == 1 {
		plural = ""
	}
	hints = append(hints, fmt.Sprintf("Based on %d rated recipe%s.", rated, plural))
	return hints
}

func humanList(items []string) string {
	if len(items) > maxHintItems {
		items = items[:maxHintItems]
	}
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func titleList(items []string) string {
	titled := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		titled = append(titled, common.Capitalize(it))
	}
	return humanList(titled)
}
