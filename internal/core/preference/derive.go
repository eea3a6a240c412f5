package preference

import (
	"math"
	"sort"
	"strings"

	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/pkg/common"
)

// 信心門檻
type thresholds struct {
	minLiked           float64
	minLikedConfidence float64
	minLikedTotal      int
	maxPreferred       int

	minDisliked           float64
	maxDislikedConfidence float64
	minDislikedTotal      int
	maxDisliked           int
}

var (
	ingredientThresholds = thresholds{
		minLiked:              3,
		minLikedConfidence:    0.7,
		minLikedTotal:         4,
		maxPreferred:          15,
		minDisliked:           3,
		maxDislikedConfidence: 0.3,
		minDislikedTotal:      5,
		maxDisliked:           5,
	}
	cuisineThresholds = thresholds{
		minLiked:              2,
		minLikedConfidence:    0.65,
		maxPreferred:          5,
		minDisliked:           3,
		maxDislikedConfidence: 0.2,
		maxDisliked:           2,
	}
)

// confidenceSaturation 觀察次數達到此值後信心只看喜好比例
const confidenceSaturation = 5.0

// explicitDislikeWeight 使用者明確指出的食材，不喜歡的權重加倍
const explicitDislikeWeight = 2.0

// signal 單一食材或菜系的統計
type signal struct {
	name     string
	liked    float64
	disliked float64
	total    int
}

// Confidence 喜好比例乘上樣本數係數，5 次觀察後飽和
func (s signal) Confidence() float64 {
	if s.liked+s.disliked == 0 {
		return 0
	}
	ratio := s.liked / (s.liked + s.disliked)
	return ratio * math.Min(float64(s.total)/confidenceSaturation, 1)
}

type tally map[string]*signal

func (t tally) get(name string) *signal {
	s, ok := t[name]
	if !ok {
		s = &signal{name: name}
		t[name] = s
	}
	return s
}

// Derive 由完整評分歷史重新計算偏好
// 相同歷史永遠得到相同結果
func Derive(liked, disliked []common.RatedRecipe) common.DerivedPreferences {
	ingredients := make(tally)
	cuisines := make(tally)

	for _, rr := range liked {
		for _, name := range uniqueIngredients(rr.Recipe) {
			s := ingredients.get(name)
			s.liked++
			s.total++
		}
		if c := normalizeCuisine(rr.Recipe.Cuisine); c != "" {
			s := cuisines.get(c)
			s.liked++
			s.total++
		}
	}

	for _, rr := range disliked {
		explicit := explicitIngredients(rr.Feedback)
		for _, name := range uniqueIngredients(rr.Recipe) {
			s := ingredients.get(name)
			weight := 1.0
			if ingredient.MatchesAny(name, explicit) {
				weight = explicitDislikeWeight
			}
			s.disliked += weight
			s.total++
		}
		if c := normalizeCuisine(rr.Recipe.Cuisine); c != "" {
			s := cuisines.get(c)
			s.disliked++
			s.total++
		}
	}

	preferredIngredients, dislikedIngredients := classify(ingredients, ingredientThresholds)
	preferredCuisines, dislikedCuisines := classify(cuisines, cuisineThresholds)

	return common.DerivedPreferences{
		PreferredIngredients:      preferredIngredients,
		DislikedIngredients:       dislikedIngredients,
		PreferredCuisines:         preferredCuisines,
		DislikedCuisines:          dislikedCuisines,
		PreferredDifficulty:       rankDifficulty(liked),
		AverageCookingTimeMinutes: averageCookingTime(liked),
	}
}

// classify 依門檻挑出偏好與不喜歡的項目
// 不喜歡要求從未被喜歡過，證據不足時寧可不標記
func classify(t tally, th thresholds) (preferred, disliked []string) {
	var pref, dis []*signal
	for _, s := range t {
		conf := s.Confidence()
		if s.liked > s.disliked && s.liked >= th.minLiked &&
			conf >= th.minLikedConfidence && s.total >= th.minLikedTotal {
			pref = append(pref, s)
		}
		if s.disliked > s.liked && s.disliked >= th.minDisliked &&
			conf <= th.maxDislikedConfidence && s.total >= th.minDislikedTotal && s.liked == 0 {
			dis = append(dis, s)
		}
	}

	sort.Slice(pref, func(i, j int) bool {
		ci, cj := pref[i].Confidence(), pref[j].Confidence()
		if ci != cj {
			return ci > cj
		}
		if pref[i].liked != pref[j].liked {
			return pref[i].liked > pref[j].liked
		}
		return pref[i].name < pref[j].name
	})
	sort.Slice(dis, func(i, j int) bool {
		ci, cj := dis[i].Confidence(), dis[j].Confidence()
		if ci != cj {
			return ci < cj
		}
		if dis[i].disliked != dis[j].disliked {
			return dis[i].disliked > dis[j].disliked
		}
		return dis[i].name < dis[j].name
	})

	return names(pref, th.maxPreferred), names(dis, th.maxDisliked)
}

func names(list []*signal, limit int) []string {
	out := make([]string, 0, min(len(list), limit))
	for _, s := range list {
		if len(out) >= limit {
			break
		}
		out = append(out, s.name)
	}
	return out
}

func uniqueIngredients(r common.Recipe) []string {
	seen := make(map[string]bool, len(r.Ingredients))
	out := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		name := ingredient.Normalize(ing.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func explicitIngredients(fb *common.Feedback) []string {
	if fb == nil || fb.Reason != common.FeedbackReasonIngredients {
		return nil
	}
	return fb.SpecificIngredients
}

func normalizeCuisine(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

var difficultyOrder = []common.Difficulty{common.DifficultyEasy, common.DifficultyMedium, common.DifficultyHard}

// rankDifficulty 依喜歡的食譜難度次數排序
func rankDifficulty(liked []common.RatedRecipe) []common.Difficulty {
	counts := make(map[common.Difficulty]int)
	for _, rr := range liked {
		if rr.Recipe.Difficulty != "" {
			counts[rr.Recipe.Difficulty]++
		}
	}
	out := make([]common.Difficulty, 0, len(counts))
	for _, d := range difficultyOrder {
		if counts[d] > 0 {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return counts[out[i]] > counts[out[j]]
	})
	return out
}

func averageCookingTime(liked []common.RatedRecipe) float64 {
	var sum, n int
	for _, rr := range liked {
		if rr.Recipe.CookingTimeMinutes > 0 {
			sum += rr.Recipe.CookingTimeMinutes
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
