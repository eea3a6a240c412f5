package ingredient

import (
	"strings"

	"recipe-engine/internal/pkg/common"
)

// MinSubstantive 產生食譜所需的最少主要食材數
const MinSubstantive = 2

// Composition 食材組成
type Composition struct {
	Substantive []string                     `json:"substantive"`
	Enhancers   []string                     `json:"enhancers"`
	ByCategory  map[common.Category][]string `json:"by_category"`
	Unknown     []string                     `json:"unknown,omitempty"`
}

// Has 是否包含某分類
func (c Composition) Has(cat common.Category) bool {
	return len(c.ByCategory[cat]) > 0
}

// ValidationResult 食材驗證結果
type ValidationResult struct {
	Valid             bool              `json:"valid"`
	SubstantiveCount  int               `json:"substantive_count"`
	EnhancerCount     int               `json:"enhancer_count"`
	MissingCategories []common.Category `json:"missing_categories"`
	Suggestions       []string          `json:"suggestions"`
	Message           string            `json:"message,omitempty"`
}

// Compose 將食材分為主要食材與調味類
// 未知食材歸為主要食材並記錄在 Unknown
func (c *Classifier) Compose(pantry []string) Composition {
	comp := Composition{ByCategory: make(map[common.Category][]string)}
	for _, raw := range pantry {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		info, ok := c.Classify(name)
		if !ok {
			comp.Substantive = append(comp.Substantive, name)
			comp.Unknown = append(comp.Unknown, name)
			continue
		}
		comp.ByCategory[info.Category] = append(comp.ByCategory[info.Category], name)
		if info.IsSubstantive {
			comp.Substantive = append(comp.Substantive, name)
		} else {
			comp.Enhancers = append(comp.Enhancers, name)
		}
	}
	return comp
}

// Validate 判斷食材是否足以產生食譜
func (c *Classifier) Validate(pantry []string) ValidationResult {
	comp := c.Compose(pantry)
	result := ValidationResult{
		Valid:             len(comp.Substantive) >= MinSubstantive,
		SubstantiveCount:  len(comp.Substantive),
		EnhancerCount:     len(comp.Enhancers),
		MissingCategories: []common.Category{},
		Suggestions:       []string{},
	}

	if !comp.Has(common.CategoryProtein) {
		result.MissingCategories = append(result.MissingCategories, common.CategoryProtein)
		result.Suggestions = append(result.Suggestions, "Add a protein such as chicken, eggs, tofu or beans")
	}
	if !comp.Has(common.CategoryVegetable) && !comp.Has(common.CategoryGrain) {
		result.MissingCategories = append(result.MissingCategories, common.CategoryVegetable, common.CategoryGrain)
		result.Suggestions = append(result.Suggestions, "Add a vegetable or grain such as broccoli, spinach, rice or pasta")
	}

	switch {
	case result.Valid:
		result.Message = "Ready to cook"
	case result.SubstantiveCount == 0 && result.EnhancerCount > 0:
		result.Message = "Seasonings alone can't make a meal. Add at least 2 main ingredients."
	case result.SubstantiveCount == 0:
		result.Message = "Add at least 2 main ingredients to get recipe ideas."
	default:
		result.Message = "Add one more main ingredient to get recipe ideas."
	}

	return result
}
