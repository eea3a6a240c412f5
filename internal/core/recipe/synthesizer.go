package recipe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	defaultServings    = 2
	defaultCookingTime = 30
	proteinLbPerServe  = 0.25
)

// style 風味模板
type style struct {
	Name        string
	Cuisine     string
	Tags        []string
	Adjectives  []string
	Enhancers   []common.Ingredient
	FinishSteps []string
}

var stylePalette = []style{
	{
		Name:       "Garlic Herb",
		Cuisine:    "Mediterranean",
		Tags:       []string{"mediterranean", "herby"},
		Adjectives: []string{"bright", "fragrant", "rustic"},
		Enhancers: []common.Ingredient{
			ing("garlic", "2", "cloves"),
			ing("dried oregano", "1", "tsp"),
			ing("lemon juice", "1", "tbsp"),
		},
		FinishSteps: []string{"Finish with a squeeze of lemon juice and a sprinkle of oregano."},
	},
	{
		Name:       "Ginger Soy",
		Cuisine:    "Asian",
		Tags:       []string{"asian", "umami"},
		Adjectives: []string{"savory", "glossy", "punchy"},
		Enhancers: []common.Ingredient{
			ing("soy sauce", "2", "tbsp"),
			ing("ginger", "1", "tbsp"),
			ing("sesame oil", "1", "tsp"),
		},
		FinishSteps: []string{"Drizzle with sesame oil and toss everything in the soy glaze."},
	},
	{
		Name:       "Smoky Chipotle",
		Cuisine:    "Mexican",
		Tags:       []string{"mexican", "spicy"},
		Adjectives: []string{"smoky", "zesty", "bold"},
		Enhancers: []common.Ingredient{
			ing("cumin", "1", "tsp"),
			ing("chili powder", "1", "tsp"),
			ing("lime juice", "1", "tbsp"),
		},
		FinishSteps: []string{"Brighten with lime juice and a pinch of chili powder."},
	},
	{
		Name:       "Tuscan",
		Cuisine:    "Italian",
		Tags:       []string{"italian", "comfort food"},
		Adjectives: []string{"hearty", "golden", "cozy"},
		Enhancers: []common.Ingredient{
			ing("garlic", "3", "cloves"),
			ing("dried basil", "1", "tsp"),
			ing("red pepper flakes", "1/4", "tsp"),
		},
		FinishSteps: []string{"Scatter basil over the top and add red pepper flakes to taste."},
	},
	{
		Name:       "Curry Spiced",
		Cuisine:    "Indian",
		Tags:       []string{"indian", "warming"},
		Adjectives: []string{"aromatic", "warming", "golden"},
		Enhancers: []common.Ingredient{
			ing("curry powder", "1", "tbsp"),
			ing("turmeric", "1/2", "tsp"),
			ing("garam masala", "1", "tsp"),
		},
		FinishSteps: []string{"Stir in the garam masala off the heat and let it rest for 2 minutes."},
	},
}

var titleTemplates = []string{
	"{style} {protein} with {vegetable}",
	"{adjective} {style} {protein} Skillet",
	"{protein} and {vegetable} {style} Bowl",
	"One-Pan {style} {protein}",
}

var baseline = []common.Ingredient{
	ing("salt", "1/2", "tsp"),
	ing("black pepper", "1/4", "tsp"),
	ing("olive oil", "2", "tbsp"),
}

// pantryBuckets 依分類分組的食材
type pantryBuckets struct {
	proteins   []string
	vegetables []string
	grains     []string
	dairy      []string
	other      []string
	enhancers  []string
}

func (b pantryBuckets) substantiveCount() int {
	return len(b.proteins) + len(b.vegetables) + len(b.grains) + len(b.dairy) + len(b.other)
}

// Synthesizer 不依賴外部服務的食譜產生器
// 離線時作為最後的備援，也用於補足結果數量
type Synthesizer struct {
	classifier *ingredient.Classifier
	rnd        *Rand
	newID      func() string
}

// NewSynthesizer 創建食譜產生器
func NewSynthesizer(classifier *ingredient.Classifier, rnd *Rand) *Synthesizer {
	if classifier == nil {
		classifier = ingredient.Default()
	}
	if rnd == nil {
		rnd = NewEntropyRand()
	}
	return &Synthesizer{
		classifier: classifier,
		rnd:        rnd,
		newID:      common.GenerateUUID,
	}
}

// Synthesize 以食材組出一份食譜
// 沒有任何主要食材時回傳提示用的 guidance 食譜
func (s *Synthesizer) Synthesize(pantry []string, opts common.RecipeOptions, prefs *common.DerivedPreferences) common.Recipe {
	if opts.Servings <= 0 {
		opts.Servings = defaultServings
	}
	if opts.CookingTime <= 0 {
		opts.CookingTime = defaultCookingTime
	}

	buckets := s.bucket(pantry)
	if buckets.substantiveCount() == 0 {
		common.LogDebug("沒有主要食材，回傳提示", zap.Int("enhancers", len(buckets.enhancers)))
		return s.guidance(buckets, opts)
	}

	st := s.pickStyle(prefs)
	protein := firstOf(buckets.proteins, buckets.dairy, buckets.other, buckets.grains, buckets.vegetables)
	vegetable := firstOf(buckets.vegetables, buckets.grains, buckets.other, buckets.dairy)
	if vegetable == protein {
		vegetable = secondOf(buckets)
	}

	ingredients := s.quantities(buckets, opts.Servings)
	ingredients = appendMissing(ingredients, st.Enhancers)
	ingredients = appendMissing(ingredients, baseline)

	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = common.DifficultyFor(len(ingredients), opts.CookingTime)
	}

	titleProtein := titleCase(protein)
	recipe := common.Recipe{
		ID:                 common.SynthesizedIDPrefix + s.newID(),
		Title:              s.title(st, titleProtein, titleCase(vegetable)),
		Description:        fmt.Sprintf("A %s %s dish built around %s.", Pick(s.rnd, st.Adjectives), strings.ToLower(st.Name), joinNames(buckets)),
		Ingredients:        ingredients,
		Instructions:       s.instructions(st, buckets, protein, vegetable, opts.CookingTime),
		CookingTimeMinutes: opts.CookingTime,
		Servings:           opts.Servings,
		Difficulty:         difficulty,
		Cuisine:            st.Cuisine,
		Tags:               append([]string{"homemade", "pantry"}, st.Tags...),
	}
	return recipe
}

func (s *Synthesizer) bucket(pantry []string) pantryBuckets {
	var b pantryBuckets
	seen := make(map[string]bool)
	for _, raw := range pantry {
		name := ingredient.Normalize(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		info, ok := s.classifier.Classify(name)
		if !ok {
			b.other = append(b.other, name)
			continue
		}
		if !info.IsSubstantive {
			b.enhancers = append(b.enhancers, name)
			continue
		}
		switch info.Category {
		case common.CategoryProtein:
			b.proteins = append(b.proteins, name)
		case common.CategoryVegetable:
			b.vegetables = append(b.vegetables, name)
		case common.CategoryGrain:
			b.grains = append(b.grains, name)
		case common.CategoryDairy:
			b.dairy = append(b.dairy, name)
		default:
			b.other = append(b.other, name)
		}
	}
	return b
}

// pickStyle 隨機選擇風味，有偏好時優先偏好菜系，並避開不喜歡的菜系
func (s *Synthesizer) pickStyle(prefs *common.DerivedPreferences) style {
	if prefs == nil {
		return Pick(s.rnd, stylePalette)
	}

	var preferred, allowed []style
	for _, st := range stylePalette {
		if containsFold(prefs.DislikedCuisines, st.Cuisine) {
			continue
		}
		allowed = append(allowed, st)
		if containsFold(prefs.PreferredCuisines, st.Cuisine) {
			preferred = append(preferred, st)
		}
	}
	switch {
	case len(preferred) > 0:
		return Pick(s.rnd, preferred)
	case len(allowed) > 0:
		return Pick(s.rnd, allowed)
	}
	return Pick(s.rnd, stylePalette)
}

// quantities 依分類估算份量
func (s *Synthesizer) quantities(b pantryBuckets, servings int) []common.Ingredient {
	var out []common.Ingredient
	for _, p := range b.proteins {
		if s.classifier.Canonical(p) == "eggs" {
			out = append(out, ing(p, strconv.Itoa(max(2, servings)), ""))
			continue
		}
		lb := proteinLbPerServe * float64(servings) / float64(len(b.proteins))
		out = append(out, ing(p, formatAmount(lb), "lb"))
	}
	for _, v := range b.vegetables {
		out = append(out, ing(v, strconv.Itoa(max(1, int(math.Ceil(float64(servings)/2)))), ""))
	}
	for _, g := range b.grains {
		out = append(out, ing(g, formatAmount(0.5*float64(servings)), "cups"))
	}
	for _, d := range b.dairy {
		out = append(out, ing(d, formatAmount(0.25*float64(servings)), "cup"))
	}
	for _, o := range b.other {
		out = append(out, ing(o, strconv.Itoa(max(1, servings/2)), "portion"))
	}
	for _, e := range b.enhancers {
		out = append(out, ing(e, "1", "tbsp"))
	}
	return out
}

func (s *Synthesizer) title(st style, protein, vegetable string) string {
	tmpl := Pick(s.rnd, titleTemplates)
	if vegetable == "" {
		tmpl = "{adjective} {style} {protein} Skillet"
	}
	r := strings.NewReplacer(
		"{style}", st.Name,
		"{protein}", protein,
		"{vegetable}", vegetable,
		"{adjective}", titleCase(Pick(s.rnd, st.Adjectives)),
	)
	return r.Replace(tmpl)
}

// instructions 步驟時間依總烹調時間按比例分配
func (s *Synthesizer) instructions(st style, b pantryBuckets, protein, vegetable string, cookingTime int) []string {
	prep := scaled(cookingTime, 0.2)
	cook := scaled(cookingTime, 0.4)
	side := scaled(cookingTime, 0.25)

	steps := []string{
		fmt.Sprintf("Prep the ingredients: trim and cut the %s into bite-sized pieces (about %d minutes).", protein, prep),
	}
	if len(b.grains) > 0 {
		steps = append(steps, fmt.Sprintf("Cook the %s according to package directions while you prepare the rest.", b.grains[0]))
	}
	steps = append(steps,
		fmt.Sprintf("Heat the olive oil in a large pan over medium-high heat. Season the %s with salt and pepper and cook for %d minutes until done.", protein, cook),
	)
	if vegetable != "" {
		steps = append(steps, fmt.Sprintf("Add the %s and cook for another %d minutes until tender.", vegetable, side))
	}
	steps = append(steps, fmt.Sprintf("Stir in the %s seasonings and cook for 1 minute until fragrant.", strings.ToLower(st.Name)))
	steps = append(steps, st.FinishSteps...)
	steps = append(steps, "Taste, adjust the seasoning and serve warm.")
	return steps
}

// Guidance 食材不足時回傳的提示食譜，不算完整食譜
func (s *Synthesizer) Guidance(pantry []string, opts common.RecipeOptions) common.Recipe {
	if opts.Servings <= 0 {
		opts.Servings = defaultServings
	}
	if opts.CookingTime <= 0 {
		opts.CookingTime = defaultCookingTime
	}
	return s.guidance(s.bucket(pantry), opts)
}

func (s *Synthesizer) guidance(b pantryBuckets, opts common.RecipeOptions) common.Recipe {
	var have []string
	for _, g := range [][]string{b.proteins, b.vegetables, b.grains, b.dairy, b.other, b.enhancers} {
		have = append(have, g...)
	}

	ingredients := make([]common.Ingredient, 0, len(have))
	for _, name := range have {
		ingredients = append(ingredients, ing(name, "to taste", ""))
	}

	description := "Your pantry is empty. Add at least 2 main ingredients to get recipe ideas."
	if len(have) > 0 {
		description = fmt.Sprintf("You have %s, which isn't quite enough for a full dish yet.", strings.Join(have, ", "))
	}
	if len(ingredients) == 0 {
		ingredients = append(ingredients, ing("main ingredient", "2", "items"))
	}

	return common.Recipe{
		ID:          common.GuidanceIDPrefix + s.newID(),
		Title:       "Add a few main ingredients",
		Description: description,
		Ingredients: ingredients,
		Instructions: []string{
			"Add at least 2 main ingredients such as a protein, vegetable or grain.",
			"Try chicken, eggs or tofu with broccoli, spinach, rice or pasta.",
		},
		CookingTimeMinutes: opts.CookingTime,
		Servings:           opts.Servings,
		Difficulty:         common.DifficultyEasy,
		Tags:               []string{"guidance"},
	}
}

func scaled(total int, fraction float64) int {
	return max(1, int(math.Round(float64(total)*fraction)))
}

func formatAmount(v float64) string {
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func appendMissing(list, extra []common.Ingredient) []common.Ingredient {
	for _, e := range extra {
		if ingredient.MatchesAny(e.Name, namesOf(list)) {
			continue
		}
		list = append(list, e)
	}
	return list
}

func namesOf(list []common.Ingredient) []string {
	names := make([]string, len(list))
	for i, l := range list {
		names[i] = l.Name
	}
	return names
}

func firstOf(groups ...[]string) string {
	for _, g := range groups {
		if len(g) > 0 {
			return g[0]
		}
	}
	return ""
}

// secondOf 主食材以外的第二個食材，沒有時回傳空字串
func secondOf(b pantryBuckets) string {
	var all []string
	for _, g := range [][]string{b.proteins, b.dairy, b.other, b.grains, b.vegetables} {
		all = append(all, g...)
	}
	if len(all) > 1 {
		return all[1]
	}
	return ""
}

func joinNames(b pantryBuckets) string {
	var all []string
	for _, g := range [][]string{b.proteins, b.vegetables, b.grains, b.dairy, b.other} {
		all = append(all, g...)
	}
	switch len(all) {
	case 1:
		return all[0]
	case 2:
		return all[0] + " and " + all[1]
	}
	return strings.Join(all[:len(all)-1], ", ") + " and " + all[len(all)-1]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = common.Capitalize(w)
	}
	return strings.Join(words, " ")
}

func containsFold(list []string, item string) bool {
	for _, s := range list {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}
