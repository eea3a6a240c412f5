package ingredient

import (
	"recipe-engine/internal/pkg/common"
)

// Info 食材資訊，靜態定義、不可修改
type Info struct {
	CanonicalName string          `json:"canonical_name"`
	Category      common.Category `json:"category"`
	Aliases       []string        `json:"aliases,omitempty"`
	IsSubstantive bool            `json:"is_substantive"`
}

// Classifier 食材分類器
// 查詢順序：名稱完全相符 → 別名完全相符 → 雙向子字串相符（依宣告順序取第一筆）
type Classifier struct {
	table   []Info
	byName  map[string]int
	byAlias map[string]int
}

// NewClassifier 以給定的表建立分類器
func NewClassifier(table []Info) *Classifier {
	c := &Classifier{
		table:   table,
		byName:  make(map[string]int, len(table)),
		byAlias: make(map[string]int),
	}
	for i, info := range table {
		name := Normalize(info.CanonicalName)
		if _, exists := c.byName[name]; !exists {
			c.byName[name] = i
		}
		for _, alias := range info.Aliases {
			a := Normalize(alias)
			if _, exists := c.byAlias[a]; !exists {
				c.byAlias[a] = i
			}
		}
	}
	return c
}

var defaultClassifier = NewClassifier(builtinTable)

// Default 內建食材表的分類器
func Default() *Classifier {
	return defaultClassifier
}

// Classify 分類食材，找不到時回傳 false
func (c *Classifier) Classify(text string) (Info, bool) {
	n := Normalize(text)
	if n == "" {
		return Info{}, false
	}
	if i, ok := c.byName[n]; ok {
		return c.table[i], true
	}
	if i, ok := c.byAlias[n]; ok {
		return c.table[i], true
	}
	for _, info := range c.table {
		if Matches(n, info.CanonicalName) {
			return info, true
		}
		for _, alias := range info.Aliases {
			if Matches(n, alias) {
				return info, true
			}
		}
	}
	return Info{}, false
}

// IsSubstantive 是否為主要食材
// 未知食材視為主要食材，避免丟失使用者輸入
func (c *Classifier) IsSubstantive(text string) bool {
	info, ok := c.Classify(text)
	if !ok {
		return true
	}
	return info.IsSubstantive
}

// CategoryOf 取得分類，未知食材回傳空字串
func (c *Classifier) CategoryOf(text string) common.Category {
	info, ok := c.Classify(text)
	if !ok {
		return ""
	}
	return info.Category
}

// Canonical 取得標準名稱，未知食材回傳正規化後的原文
func (c *Classifier) Canonical(text string) string {
	info, ok := c.Classify(text)
	if !ok {
		return Normalize(text)
	}
	return info.CanonicalName
}

// IsSubstantiveCategory 主要食材分類：蛋白質、蔬菜、穀物、乳製品、水果
func IsSubstantiveCategory(cat common.Category) bool {
	switch cat {
	case common.CategoryProtein, common.CategoryVegetable, common.CategoryGrain,
		common.CategoryDairy, common.CategoryFruit:
		return true
	}
	return false
}

// 宣告順序影響子字串查詢：蔬菜在調味料之前，"bell pepper" 才不會被歸為胡椒
var builtinTable = []Info{
	// 蛋白質
	{CanonicalName: "chicken", Category: common.CategoryProtein, Aliases: []string{"chicken breast", "chicken thigh", "chicken thighs", "chicken wings", "poultry"}, IsSubstantive: true},
	{CanonicalName: "beef", Category: common.CategoryProtein, Aliases: []string{"ground beef", "steak", "sirloin", "brisket"}, IsSubstantive: true},
	{CanonicalName: "pork", Category: common.CategoryProtein, Aliases: []string{"pork chop", "pork loin", "ham", "bacon", "sausage"}, IsSubstantive: true},
	{CanonicalName: "turkey", Category: common.CategoryProtein, Aliases: []string{"ground turkey"}, IsSubstantive: true},
	{CanonicalName: "lamb", Category: common.CategoryProtein, Aliases: []string{"mutton"}, IsSubstantive: true},
	{CanonicalName: "salmon", Category: common.CategoryProtein, Aliases: []string{"salmon fillet"}, IsSubstantive: true},
	{CanonicalName: "tuna", Category: common.CategoryProtein, Aliases: []string{"canned tuna"}, IsSubstantive: true},
	{CanonicalName: "shrimp", Category: common.CategoryProtein, Aliases: []string{"prawns", "prawn"}, IsSubstantive: true},
	{CanonicalName: "fish", Category: common.CategoryProtein, Aliases: []string{"cod", "tilapia", "white fish"}, IsSubstantive: true},
	{CanonicalName: "tofu", Category: common.CategoryProtein, Aliases: []string{"bean curd", "tempeh"}, IsSubstantive: true},
	{CanonicalName: "eggs", Category: common.CategoryProtein, Aliases: []string{"egg"}, IsSubstantive: true},
	{CanonicalName: "beans", Category: common.CategoryProtein, Aliases: []string{"black beans", "kidney beans", "chickpeas", "lentils"}, IsSubstantive: true},

	// 蔬菜
	{CanonicalName: "broccoli", Category: common.CategoryVegetable, Aliases: []string{"broccoli florets"}, IsSubstantive: true},
	{CanonicalName: "bell pepper", Category: common.CategoryVegetable, Aliases: []string{"bell peppers", "red pepper", "green pepper", "capsicum"}, IsSubstantive: true},
	{CanonicalName: "spinach", Category: common.CategoryVegetable, Aliases: []string{"baby spinach"}, IsSubstantive: true},
	{CanonicalName: "carrot", Category: common.CategoryVegetable, Aliases: []string{"carrots"}, IsSubstantive: true},
	{CanonicalName: "tomato", Category: common.CategoryVegetable, Aliases: []string{"tomatoes", "cherry tomatoes"}, IsSubstantive: true},
	{CanonicalName: "potato", Category: common.CategoryVegetable, Aliases: []string{"potatoes", "sweet potato"}, IsSubstantive: true},
	{CanonicalName: "mushroom", Category: common.CategoryVegetable, Aliases: []string{"mushrooms"}, IsSubstantive: true},
	{CanonicalName: "zucchini", Category: common.CategoryVegetable, Aliases: []string{"courgette"}, IsSubstantive: true},
	{CanonicalName: "cabbage", Category: common.CategoryVegetable, Aliases: []string{"bok choy"}, IsSubstantive: true},
	{CanonicalName: "cauliflower", Category: common.CategoryVegetable, IsSubstantive: true},
	{CanonicalName: "green beans", Category: common.CategoryVegetable, Aliases: []string{"string beans"}, IsSubstantive: true},
	{CanonicalName: "peas", Category: common.CategoryVegetable, Aliases: []string{"snow peas", "green peas"}, IsSubstantive: true},
	{CanonicalName: "corn", Category: common.CategoryVegetable, Aliases: []string{"sweet corn"}, IsSubstantive: true},
	{CanonicalName: "lettuce", Category: common.CategoryVegetable, Aliases: []string{"romaine"}, IsSubstantive: true},
	{CanonicalName: "cucumber", Category: common.CategoryVegetable, Aliases: []string{"cucumbers"}, IsSubstantive: true},
	{CanonicalName: "eggplant", Category: common.CategoryVegetable, Aliases: []string{"aubergine"}, IsSubstantive: true},
	{CanonicalName: "onion", Category: common.CategoryVegetable, Aliases: []string{"onions", "red onion", "shallot", "scallion", "green onion"}, IsSubstantive: true},
	{CanonicalName: "garlic", Category: common.CategoryVegetable, Aliases: []string{"garlic cloves"}, IsSubstantive: false},
	{CanonicalName: "ginger", Category: common.CategoryVegetable, Aliases: []string{"fresh ginger"}, IsSubstantive: false},

	// 穀物
	{CanonicalName: "rice", Category: common.CategoryGrain, Aliases: []string{"white rice", "brown rice", "jasmine rice", "basmati rice"}, IsSubstantive: true},
	{CanonicalName: "pasta", Category: common.CategoryGrain, Aliases: []string{"spaghetti", "penne", "fettuccine", "macaroni", "noodles"}, IsSubstantive: true},
	{CanonicalName: "bread", Category: common.CategoryGrain, Aliases: []string{"tortilla", "tortillas", "pita", "baguette"}, IsSubstantive: true},
	{CanonicalName: "quinoa", Category: common.CategoryGrain, IsSubstantive: true},
	{CanonicalName: "oats", Category: common.CategoryGrain, Aliases: []string{"oatmeal"}, IsSubstantive: true},
	{CanonicalName: "couscous", Category: common.CategoryGrain, IsSubstantive: true},
	{CanonicalName: "flour", Category: common.CategoryGrain, Aliases: []string{"all-purpose flour"}, IsSubstantive: false},

	// 乳製品
	{CanonicalName: "cheese", Category: common.CategoryDairy, Aliases: []string{"cheddar", "mozzarella", "parmesan", "feta"}, IsSubstantive: true},
	{CanonicalName: "milk", Category: common.CategoryDairy, Aliases: []string{"whole milk"}, IsSubstantive: true},
	{CanonicalName: "yogurt", Category: common.CategoryDairy, Aliases: []string{"greek yogurt"}, IsSubstantive: true},
	{CanonicalName: "cream", Category: common.CategoryDairy, Aliases: []string{"heavy cream", "sour cream"}, IsSubstantive: true},

	// 水果
	{CanonicalName: "apple", Category: common.CategoryFruit, Aliases: []string{"apples"}, IsSubstantive: true},
	{CanonicalName: "banana", Category: common.CategoryFruit, Aliases: []string{"bananas"}, IsSubstantive: true},
	{CanonicalName: "avocado", Category: common.CategoryFruit, Aliases: []string{"avocados"}, IsSubstantive: true},
	{CanonicalName: "mango", Category: common.CategoryFruit, IsSubstantive: true},
	{CanonicalName: "berries", Category: common.CategoryFruit, Aliases: []string{"strawberries", "blueberries"}, IsSubstantive: true},
	{CanonicalName: "lemon", Category: common.CategoryFruit, Aliases: []string{"lemons", "lime", "limes"}, IsSubstantive: false},

	// 油脂
	{CanonicalName: "olive oil", Category: common.CategoryFat, Aliases: []string{"extra virgin olive oil"}, IsSubstantive: false},
	{CanonicalName: "butter", Category: common.CategoryFat, Aliases: []string{"unsalted butter"}, IsSubstantive: false},
	{CanonicalName: "vegetable oil", Category: common.CategoryFat, Aliases: []string{"oil", "canola oil", "sesame oil", "coconut oil"}, IsSubstantive: false},

	// 香草
	{CanonicalName: "basil", Category: common.CategoryHerb, Aliases: []string{"fresh basil"}, IsSubstantive: false},
	{CanonicalName: "parsley", Category: common.CategoryHerb, IsSubstantive: false},
	{CanonicalName: "cilantro", Category: common.CategoryHerb, Aliases: []string{"coriander"}, IsSubstantive: false},
	{CanonicalName: "thyme", Category: common.CategoryHerb, IsSubstantive: false},
	{CanonicalName: "rosemary", Category: common.CategoryHerb, IsSubstantive: false},
	{CanonicalName: "oregano", Category: common.CategoryHerb, IsSubstantive: false},
	{CanonicalName: "mint", Category: common.CategoryHerb, IsSubstantive: false},

	// 醬料
	{CanonicalName: "soy sauce", Category: common.CategoryCondiment, Aliases: []string{"tamari"}, IsSubstantive: false},
	{CanonicalName: "vinegar", Category: common.CategoryCondiment, Aliases: []string{"balsamic vinegar", "rice vinegar"}, IsSubstantive: false},
	{CanonicalName: "honey", Category: common.CategoryCondiment, Aliases: []string{"maple syrup"}, IsSubstantive: false},
	{CanonicalName: "mustard", Category: common.CategoryCondiment, Aliases: []string{"dijon mustard"}, IsSubstantive: false},
	{CanonicalName: "ketchup", Category: common.CategoryCondiment, IsSubstantive: false},
	{CanonicalName: "mayonnaise", Category: common.CategoryCondiment, Aliases: []string{"mayo"}, IsSubstantive: false},
	{CanonicalName: "hot sauce", Category: common.CategoryCondiment, Aliases: []string{"sriracha", "chili sauce"}, IsSubstantive: false},
	{CanonicalName: "tomato sauce", Category: common.CategoryCondiment, Aliases: []string{"marinara", "tomato paste"}, IsSubstantive: false},

	// 調味料
	{CanonicalName: "salt", Category: common.CategorySeasoning, Aliases: []string{"sea salt", "kosher salt"}, IsSubstantive: false},
	{CanonicalName: "black pepper", Category: common.CategorySeasoning, Aliases: []string{"pepper", "ground pepper"}, IsSubstantive: false},
	{CanonicalName: "paprika", Category: common.CategorySeasoning, Aliases: []string{"smoked paprika"}, IsSubstantive: false},
	{CanonicalName: "cumin", Category: common.CategorySeasoning, Aliases: []string{"ground cumin"}, IsSubstantive: false},
	{CanonicalName: "chili powder", Category: common.CategorySeasoning, Aliases: []string{"chili flakes", "red pepper flakes", "cayenne"}, IsSubstantive: false},
	{CanonicalName: "curry powder", Category: common.CategorySeasoning, Aliases: []string{"garam masala", "turmeric"}, IsSubstantive: false},
	{CanonicalName: "cinnamon", Category: common.CategorySeasoning, IsSubstantive: false},
	{CanonicalName: "sugar", Category: common.CategorySeasoning, Aliases: []string{"brown sugar"}, IsSubstantive: false},
	{CanonicalName: "garlic powder", Category: common.CategorySeasoning, Aliases: []string{"onion powder"}, IsSubstantive: false},
}
