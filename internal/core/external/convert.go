package external

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"recipe-engine/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// searchResponse complexSearch 回應
type searchResponse struct {
	Results      []apiRecipe `json:"results"`
	Offset       int         `json:"offset"`
	Number       int         `json:"number"`
	TotalResults int         `json:"totalResults"`
}

// apiRecipe 外部 API 的食譜格式，欄位都可能缺少
type apiRecipe struct {
	ID                   int                `json:"id"`
	Title                string             `json:"title"`
	Image                string             `json:"image"`
	Summary              string             `json:"summary"`
	ReadyInMinutes       int                `json:"readyInMinutes"`
	Servings             int                `json:"servings"`
	Cuisines             []string           `json:"cuisines"`
	DishTypes            []string           `json:"dishTypes"`
	Diets                []string           `json:"diets"`
	HealthScore          float64            `json:"healthScore"`
	AggregateLikes       int                `json:"aggregateLikes"`
	SpoonacularScore     float64            `json:"spoonacularScore"`
	ExtendedIngredients  []apiIngredient    `json:"extendedIngredients"`
	AnalyzedInstructions []apiInstructions  `json:"analyzedInstructions"`
	Instructions         string             `json:"instructions"`
	Nutrition            *apiNutritionBlock `json:"nutrition"`
}

type apiIngredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

type apiInstructions struct {
	Steps []struct {
		Number int    `json:"number"`
		Step   string `json:"step"`
	} `json:"steps"`
}

type apiNutritionBlock struct {
	Nutrients []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	} `json:"nutrients"`
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	stepSplitter = regexp.MustCompile(`[\r\n]+`)
	validate     = validator.New()
)

// toRecipe 將外部格式轉成共用的 Recipe，缺少必要欄位時回傳 ErrMalformedUpstream
func toRecipe(raw apiRecipe) (common.Recipe, error) {
	r := common.Recipe{
		ID:                 common.ExternalIDPrefix + strconv.Itoa(raw.ID),
		Title:              strings.TrimSpace(raw.Title),
		Description:        summarize(raw.Summary),
		CookingTimeMinutes: raw.ReadyInMinutes,
		Servings:           raw.Servings,
		ImageURL:           raw.Image,
		Nutrition:          toNutrition(raw.Nutrition),
		HealthScore:        raw.HealthScore,
		Popularity:         float64(raw.AggregateLikes),
	}
	if raw.ID <= 0 {
		r.ID = ""
	}

	for _, ing := range raw.ExtendedIngredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		amount := "to taste"
		if ing.Amount > 0 {
			amount = strconv.FormatFloat(ing.Amount, 'f', -1, 64)
		}
		r.Ingredients = append(r.Ingredients, common.Ingredient{Name: name, Amount: amount, Unit: ing.Unit})
	}

	r.Instructions = toSteps(raw)
	r.Difficulty = common.DifficultyFor(len(r.Ingredients), r.CookingTimeMinutes)

	if len(raw.Cuisines) > 0 {
		r.Cuisine = raw.Cuisines[0]
	}
	tags := make([]string, 0, len(raw.DishTypes)+len(raw.Diets))
	tags = append(tags, raw.DishTypes...)
	tags = append(tags, raw.Diets...)
	r.Tags = common.NormalizeList(tags)

	if err := validate.Struct(r); err != nil {
		return common.Recipe{}, common.Wrap(common.ErrMalformedUpstream, fmt.Errorf("recipe %d: %w", raw.ID, err))
	}
	return r, nil
}

// toRecipes 轉換整批結果，格式錯誤的單筆資料只記錄並丟棄
func toRecipes(raws []apiRecipe) []common.Recipe {
	out := make([]common.Recipe, 0, len(raws))
	for _, raw := range raws {
		r, err := toRecipe(raw)
		if err != nil {
			common.LogWarn("丟棄格式錯誤的外部食譜",
				zap.Int("id", raw.ID),
				zap.String("title", raw.Title),
				zap.Error(err),
			)
			continue
		}
		out = append(out, r)
	}
	return out
}

func toSteps(raw apiRecipe) []string {
	var steps []string
	for _, block := range raw.AnalyzedInstructions {
		for _, s := range block.Steps {
			if text := strings.TrimSpace(s.Step); text != "" {
				steps = append(steps, text)
			}
		}
	}
	if len(steps) > 0 {
		return steps
	}
	for _, line := range stepSplitter.Split(stripTags(raw.Instructions), -1) {
		if text := strings.TrimSpace(line); text != "" {
			steps = append(steps, text)
		}
	}
	return steps
}

func toNutrition(block *apiNutritionBlock) *common.Nutrition {
	if block == nil || len(block.Nutrients) == 0 {
		return nil
	}
	n := &common.Nutrition{}
	found := false
	for _, nut := range block.Nutrients {
		v := nut.Amount
		switch strings.ToLower(nut.Name) {
		case "calories":
			n.Calories = &v
		case "protein":
			n.Protein = &v
		case "carbohydrates":
			n.Carbs = &v
		case "fat":
			n.Fat = &v
		default:
			continue
		}
		found = true
	}
	if !found {
		return nil
	}
	return n
}

// summarize 去除 HTML 並只取第一句
func summarize(summary string) string {
	text := strings.TrimSpace(stripTags(summary))
	if i := strings.Index(text, ". "); i > 0 {
		return text[:i+1]
	}
	return text
}

func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
