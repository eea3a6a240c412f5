package recipe

import (
	"context"

	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dualCandidates = 3

// DualGenerator 以兩組不重疊的食材同時產生兩道食譜
type DualGenerator struct {
	aggregator *Aggregator
	classifier *ingredient.Classifier
}

// NewDualGenerator 創建雙食譜產生器
func NewDualGenerator(aggregator *Aggregator) *DualGenerator {
	return &DualGenerator{aggregator: aggregator, classifier: aggregator.classifier}
}

// Split 將主要食材交錯分成兩組，調味類兩組共用
// 主要食材不足以各分兩個時，不足的一組向另一組借用
func (d *DualGenerator) Split(pantry []string) [2][]string {
	comp := d.classifier.Compose(pantry)
	var halves [2][]string
	for i, name := range comp.Substantive {
		halves[i%2] = append(halves[i%2], name)
	}
	for i := range halves {
		other := halves[1-i]
		for _, name := range other {
			if len(halves[i]) >= ingredient.MinSubstantive {
				break
			}
			if !containsFold(halves[i], name) {
				halves[i] = append(halves[i], name)
			}
		}
	}
	for i := range halves {
		halves[i] = append(halves[i], comp.Enhancers...)
	}
	return halves
}

// Generate 並行產生兩道食譜，每道完成時呼叫 onReady
// 回傳的兩道食譜 ID 不重複
func (d *DualGenerator) Generate(ctx context.Context, pantry []string, opts Options, onReady func(index int, r common.Recipe)) []common.Recipe {
	subsets := d.Split(pantry)
	opts.MaxResults = dualCandidates

	var (
		g       errgroup.Group
		results [2]common.Recipe
		first   = make(chan string, 1)
	)
	notify := func(i int, r common.Recipe) {
		results[i] = r
		if onReady != nil {
			onReady(i, r)
		}
	}

	g.Go(func() error {
		candidates := d.candidates(ctx, subsets[0], opts)
		r := d.pick(candidates, "", subsets[0], opts)
		first <- r.ID
		notify(0, r)
		return nil
	})
	g.Go(func() error {
		candidates := d.candidates(ctx, subsets[1], opts)
		taken := <-first
		notify(1, d.pick(candidates, taken, subsets[1], opts))
		return nil
	})
	_ = g.Wait()

	common.LogInfo("雙食譜產生完成",
		zap.String("first", results[0].ID),
		zap.String("second", results[1].ID),
	)
	return results[:]
}

func (d *DualGenerator) candidates(ctx context.Context, subset []string, opts Options) []common.ScoredRecipe {
	res := d.aggregator.GetRecipes(ctx, subset, opts)
	return res.Recipes
}

// pick 取第一個未被另一組使用的候選，沒有時以產生器補上
func (d *DualGenerator) pick(candidates []common.ScoredRecipe, taken string, subset []string, opts Options) common.Recipe {
	for _, c := range candidates {
		if c.Recipe.ID != taken {
			return c.Recipe
		}
	}
	return d.aggregator.synth.Synthesize(subset, opts.recipeOptions(), opts.Preferences)
}
