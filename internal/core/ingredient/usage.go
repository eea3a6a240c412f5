package ingredient

import (
	"context"
	"sort"
	"time"

	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	usageKey          = "ingredients:usage"
	maxCoOccurring    = 10
	recencyWindowDays = 7.0
)

// 各分類缺少時補上的常見食材
// always 為 true 的項目不論分類是否已存在都會補上
var stapleSuggestions = []struct {
	category common.Category
	items    []string
	always   bool
}{
	{common.CategoryProtein, []string{"chicken", "eggs", "tofu"}, false},
	{common.CategoryVegetable, []string{"broccoli", "spinach", "onion"}, false},
	{common.CategoryGrain, []string{"rice", "pasta"}, false},
	{common.CategoryVegetable, []string{"garlic"}, true},
	{common.CategoryFat, []string{"olive oil"}, true},
}

// UsageTracker 食材使用統計，只用於建議排序
type UsageTracker struct {
	store      store.Store
	classifier *Classifier
	now        func() time.Time
}

// NewUsageTracker 創建食材使用統計
func NewUsageTracker(s store.Store, classifier *Classifier) *UsageTracker {
	if classifier == nil {
		classifier = Default()
	}
	return &UsageTracker{store: s, classifier: classifier, now: time.Now}
}

// WithClock 替換時間來源
func (t *UsageTracker) WithClock(now func() time.Time) *UsageTracker {
	t.now = now
	return t
}

// Stats 讀取所有統計，讀取失敗回傳空集合
func (t *UsageTracker) Stats(ctx context.Context) map[string]*common.IngredientUsageStat {
	stats := make(map[string]*common.IngredientUsageStat)
	store.LoadJSON(ctx, t.store, usageKey, &stats)
	if stats == nil {
		stats = make(map[string]*common.IngredientUsageStat)
	}
	return stats
}

// Record 記錄使用者加入工作清單的食材
func (t *UsageTracker) Record(ctx context.Context, ingredients []string) {
	names := common.NormalizeList(ingredients)
	if len(names) == 0 {
		return
	}

	stats := t.Stats(ctx)
	now := t.now()
	for _, name := range names {
		stat, ok := stats[name]
		if !ok {
			stat = &common.IngredientUsageStat{
				Name:     name,
				Category: t.classifier.CategoryOf(name),
			}
			stats[name] = stat
		}
		stat.Count++
		stat.LastUsedAt = now

		for _, other := range names {
			if other == name {
				continue
			}
			stat.CoOccurringIngredients = pushRecent(stat.CoOccurringIngredients, other, maxCoOccurring)
		}
	}

	store.SaveJSON(ctx, t.store, usageKey, stats)
	common.LogDebug("食材使用已記錄", zap.Int("count", len(names)), zap.Int("tracked", len(stats)))
}

// pushRecent 將 item 放到最前面，去重後截斷到 limit
func pushRecent(list []string, item string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, item)
	for _, existing := range list {
		if existing == item {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, existing)
	}
	return out
}

type suggestion struct {
	name  string
	score float64
}

// QuickSuggestions 依使用頻率、最近使用與共同出現排序建議食材
// 歷史不足時以目前清單缺少的分類補上常見食材
func (t *UsageTracker) QuickSuggestions(ctx context.Context, pantry []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	current := common.NormalizeList(pantry)
	stats := t.Stats(ctx)
	now := t.now()

	var ranked []suggestion
	for name, stat := range stats {
		if MatchesAny(name, current) {
			continue
		}
		score := float64(stat.Count)
		days := now.Sub(stat.LastUsedAt).Hours() / 24
		if days < recencyWindowDays {
			score += recencyWindowDays - days
		}
		for _, co := range stat.CoOccurringIngredients {
			if MatchesAny(co, current) {
				score += 3
			}
		}
		ranked = append(ranked, suggestion{name: name, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})

	out := make([]string, 0, limit)
	for _, s := range ranked {
		if len(out) >= limit {
			return out
		}
		out = append(out, s.name)
	}

	comp := t.classifier.Compose(current)
	for _, staple := range stapleSuggestions {
		if comp.Has(staple.category) && !staple.always {
			continue
		}
		for _, item := range staple.items {
			if len(out) >= limit {
				return out
			}
			if MatchesAny(item, current) || contains(out, item) {
				continue
			}
			out = append(out, item)
		}
	}
	return out
}

func contains(list []string, item string) bool {
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
