package recipe

import (
	"context"
	"sort"
	"sync"

	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/infrastructure/store"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

const localCatalogKey = "recipes:local"

// 索引分數
const (
	exactHitPoints     = 2
	substringHitPoints = 1
)

// Index 本地食譜索引
// 食材 token → 食譜 ID 的反向索引，載入時建立、新增食譜時重建
type Index struct {
	mu       sync.RWMutex
	recipes  map[string]common.Recipe
	order    []string
	inverted map[string]map[string]struct{}
	rnd      *Rand
}

// NewIndex 以食譜建立索引
func NewIndex(recipes []common.Recipe, rnd *Rand) *Index {
	if rnd == nil {
		rnd = NewEntropyRand()
	}
	idx := &Index{rnd: rnd}
	idx.rebuild(recipes)
	return idx
}

// LoadIndex 從儲存載入本地食譜，失敗或沒有資料時使用內建食譜
func LoadIndex(ctx context.Context, s store.Store, rnd *Rand) *Index {
	var recipes []common.Recipe
	if !store.LoadJSON(ctx, s, localCatalogKey, &recipes) || len(recipes) == 0 {
		recipes = SeedCatalog()
	}
	idx := NewIndex(recipes, rnd)
	common.LogInfo("本地食譜索引已載入",
		zap.Int("recipes", idx.Len()),
		zap.Int("tokens", idx.TokenCount()),
	)
	return idx
}

// Save 將目前食譜寫入儲存，失敗只記錄
func (idx *Index) Save(ctx context.Context, s store.Store) {
	store.SaveJSON(ctx, s, localCatalogKey, idx.All())
}

// Add 新增或覆蓋食譜並重建索引
func (idx *Index) Add(recipes ...common.Recipe) {
	all := idx.All()
	pos := make(map[string]int, len(all))
	for i, r := range all {
		pos[r.ID] = i
	}
	for _, r := range recipes {
		if i, ok := pos[r.ID]; ok {
			all[i] = r
			continue
		}
		pos[r.ID] = len(all)
		all = append(all, r)
	}
	idx.rebuild(all)
}

func (idx *Index) rebuild(recipes []common.Recipe) {
	byID := make(map[string]common.Recipe, len(recipes))
	order := make([]string, 0, len(recipes))
	inverted := make(map[string]map[string]struct{})

	for _, r := range recipes {
		if r.ID == "" || len(r.Ingredients) == 0 {
			continue
		}
		if _, dup := byID[r.ID]; !dup {
			order = append(order, r.ID)
		}
		byID[r.ID] = r
		for _, ing := range r.Ingredients {
			token := ingredient.Normalize(ing.Name)
			if token == "" {
				continue
			}
			if inverted[token] == nil {
				inverted[token] = make(map[string]struct{})
			}
			inverted[token][r.ID] = struct{}{}
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.recipes = byID
	idx.order = order
	idx.inverted = inverted
}

// Get 依 ID 取得食譜
func (idx *Index) Get(id string) (common.Recipe, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	r, ok := idx.recipes[id]
	return r, ok
}

// All 依載入順序回傳全部食譜
func (idx *Index) All() []common.Recipe {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]common.Recipe, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.recipes[id])
	}
	return out
}

// Len 食譜數量
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.recipes)
}

// TokenCount 索引 token 數量
func (idx *Index) TokenCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.inverted)
}

// SearchResult 本地搜尋結果
type SearchResult struct {
	Recipes []common.Recipe
	// ExclusionDropped 排除清單會濾掉所有結果時被忽略
	ExclusionDropped bool
}

// Search 依食材搜尋本地食譜
// 完全相符的 token +2，每個子字串相符（任一方向）的 token 再 +1，完全相符也會被重複計分
// 同分的食譜在組內隨機排序後再截斷
func (idx *Index) Search(ingredients []string, maxResults int, exclude map[string]bool) SearchResult {
	idx.mu.RLock()
	scores := make(map[string]int)
	for _, raw := range ingredients {
		q := ingredient.Normalize(raw)
		if q == "" {
			continue
		}
		for id := range idx.inverted[q] {
			scores[id] += exactHitPoints
		}
		for token, ids := range idx.inverted {
			if !ingredient.Matches(token, q) {
				continue
			}
			for id := range ids {
				scores[id] += substringHitPoints
			}
		}
	}
	order := idx.order
	recipes := idx.recipes
	idx.mu.RUnlock()

	candidates := make([]string, 0, len(scores))
	for _, id := range order {
		if scores[id] > 0 {
			candidates = append(candidates, id)
		}
	}

	var result SearchResult
	kept := filterIDs(candidates, exclude)
	if len(kept) == 0 && len(candidates) > 0 && len(exclude) > 0 {
		common.LogDebug("排除清單會清空本地結果，已忽略", zap.Int("excluded", len(exclude)))
		kept = candidates
		result.ExclusionDropped = true
	}

	grouped := shuffleWithinTiers(kept, func(id string) float64 { return float64(scores[id]) }, idx.rnd)
	if maxResults > 0 && len(grouped) > maxResults {
		grouped = grouped[:maxResults]
	}

	result.Recipes = make([]common.Recipe, 0, len(grouped))
	for _, id := range grouped {
		result.Recipes = append(result.Recipes, recipes[id])
	}
	return result
}

func filterIDs(ids []string, exclude map[string]bool) []string {
	if len(exclude) == 0 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !exclude[id] {
			out = append(out, id)
		}
	}
	return out
}

// shuffleWithinTiers 依分數由高到低分組，組內隨機排序
func shuffleWithinTiers[T any](items []T, score func(T) float64, rnd *Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})

	for start := 0; start < len(out); {
		end := start + 1
		for end < len(out) && score(out[end]) == score(out[start]) {
			end++
		}
		if end-start > 1 {
			tier := out[start:end]
			rnd.Shuffle(len(tier), func(i, j int) { tier[i], tier[j] = tier[j], tier[i] })
		}
		start = end
	}
	return out
}
