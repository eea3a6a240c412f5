package ingredient

import (
	"testing"

	"recipe-engine/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Chicken Breast", "chicken", true},
		{"chicken", "  CHICKEN BREAST ", true},
		{"rice", "brown rice", true},
		{"broccoli", "beef", false},
		{"", "rice", false},
		{"rice", "   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestClassify_LookupOrder(t *testing.T) {
	c := Default()

	info, ok := c.Classify("Chicken")
	require.True(t, ok)
	assert.Equal(t, "chicken", info.CanonicalName)
	assert.Equal(t, common.CategoryProtein, info.Category)

	// 別名完全相符
	info, ok = c.Classify("prawns")
	require.True(t, ok)
	assert.Equal(t, "shrimp", info.CanonicalName)

	// 別名優先於子字串：pepper 是胡椒的別名
	info, ok = c.Classify("pepper")
	require.True(t, ok)
	assert.Equal(t, common.CategorySeasoning, info.Category)

	// 子字串：蔬菜宣告在胡椒之前
	info, ok = c.Classify("roasted red bell pepper")
	require.True(t, ok)
	assert.Equal(t, "bell pepper", info.CanonicalName)

	// 反向子字串：已知名稱包含輸入
	info, ok = c.Classify("broc")
	require.True(t, ok)
	assert.Equal(t, "broccoli", info.CanonicalName)

	_, ok = c.Classify("dragonfruit jam")
	assert.False(t, ok)
}

func TestClassify_CustomTableDeclarationOrder(t *testing.T) {
	c := NewClassifier([]Info{
		{CanonicalName: "green apple", Category: common.CategoryFruit, IsSubstantive: true},
		{CanonicalName: "apple cider", Category: common.CategoryCondiment},
	})

	info, ok := c.Classify("apple")
	require.True(t, ok)
	assert.Equal(t, "green apple", info.CanonicalName)
}

func TestUnknownIngredientIsSubstantive(t *testing.T) {
	c := Default()
	assert.True(t, c.IsSubstantive("dragonfruit jam"))
	assert.False(t, c.IsSubstantive("salt"))
	assert.True(t, c.IsSubstantive("rice"))
	assert.Equal(t, "dragonfruit jam", c.Canonical("  Dragonfruit Jam "))
	assert.Equal(t, common.Category(""), c.CategoryOf("dragonfruit jam"))
}

func TestValidate(t *testing.T) {
	c := Default()

	tests := []struct {
		name        string
		pantry      []string
		valid       bool
		substantive int
		enhancers   int
		suggestions int
	}{
		{"empty", nil, false, 0, 0, 2},
		{"seasonings only", []string{"salt", "black pepper", "olive oil"}, false, 0, 3, 2},
		{"single main", []string{"chicken", "salt"}, false, 1, 1, 1},
		{"balanced", []string{"chicken breast", "broccoli", "rice"}, true, 3, 0, 0},
		{"no protein", []string{"rice", "spinach"}, true, 2, 0, 1},
		{"unknown counts as main", []string{"jackfruit", "seitan"}, true, 2, 0, 2},
		{"blank entries ignored", []string{" ", "", "eggs"}, false, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Validate(tt.pantry)
			assert.Equal(t, tt.valid, r.Valid)
			assert.Equal(t, tt.substantive, r.SubstantiveCount)
			assert.Equal(t, tt.enhancers, r.EnhancerCount)
			assert.Len(t, r.Suggestions, tt.suggestions)
			assert.NotEmpty(t, r.Message)
		})
	}
}

func TestValidate_MissingCategories(t *testing.T) {
	r := Default().Validate([]string{"cheese", "apple"})
	assert.True(t, r.Valid)
	assert.Contains(t, r.MissingCategories, common.CategoryProtein)
	assert.Contains(t, r.MissingCategories, common.CategoryVegetable)
	assert.Contains(t, r.MissingCategories, common.CategoryGrain)
}
