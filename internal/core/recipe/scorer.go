package recipe

import (
	"math"

	"recipe-engine/internal/core/ingredient"
	"recipe-engine/internal/pkg/common"
)

// 評分權重
const (
	requiredWeight      = 0.7
	optionalWeight      = 0.1
	substantiveBonusTwo = 0.2
	substantiveBonusOne = 0.1
	enhancerOnlyPenalty = -0.3
)

// Scorer 食譜與食材清單的相關度評分
// 本地索引與外部來源的結果都用同一個評分，才能合併排序
type Scorer struct {
	classifier *ingredient.Classifier
}

// NewScorer 創建評分器
func NewScorer(classifier *ingredient.Classifier) *Scorer {
	if classifier == nil {
		classifier = ingredient.Default()
	}
	return &Scorer{classifier: classifier}
}

// ScoreBreakdown 評分明細
type ScoreBreakdown struct {
	RequiredMatches    int     `json:"required_matches"`
	TotalRequired      int     `json:"total_required"`
	OptionalMatches    int     `json:"optional_matches"`
	TotalOptional      int     `json:"total_optional"`
	SubstantiveMatches int     `json:"substantive_matches"`
	EnhancerMatches    int     `json:"enhancer_matches"`
	Score              float64 `json:"score"`
}

// Score 計算相關度，結果只用於相對排序，可能略大於 1
func (s *Scorer) Score(r common.Recipe, pantry []string) float64 {
	return s.Breakdown(r, pantry).Score
}

// Breakdown 計算相關度並回傳明細
func (s *Scorer) Breakdown(r common.Recipe, pantry []string) ScoreBreakdown {
	var b ScoreBreakdown

	for _, ing := range r.Ingredients {
		matched := ingredient.MatchesAny(ing.Name, pantry)
		if ing.Optional {
			b.TotalOptional++
			if matched {
				b.OptionalMatches++
			}
		} else {
			b.TotalRequired++
			if matched {
				b.RequiredMatches++
			}
		}
		if !matched {
			continue
		}
		if s.classifier.IsSubstantive(ing.Name) {
			b.SubstantiveMatches++
		} else {
			b.EnhancerMatches++
		}
	}

	var score float64
	if b.TotalRequired > 0 {
		score += requiredWeight * float64(b.RequiredMatches) / float64(b.TotalRequired)
	}
	if b.TotalOptional > 0 {
		score += optionalWeight * float64(b.OptionalMatches) / float64(b.TotalOptional)
	}

	switch substantive := len(s.classifier.Compose(pantry).Substantive); {
	case substantive >= 2:
		score += substantiveBonusTwo
	case substantive == 1:
		score += substantiveBonusOne
	}

	// 只靠調味料相符的食譜不該排在前面
	if b.EnhancerMatches > 0 && b.SubstantiveMatches == 0 {
		score += enhancerOnlyPenalty
	}

	b.Score = math.Max(0, score)
	return b
}

// ScoreAll 為同一來源的食譜評分
func (s *Scorer) ScoreAll(recipes []common.Recipe, pantry []string, source common.Source) []common.ScoredRecipe {
	out := make([]common.ScoredRecipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, common.ScoredRecipe{
			Recipe:     r,
			Source:     source,
			MatchScore: s.Score(r, pantry),
		})
	}
	return out
}
