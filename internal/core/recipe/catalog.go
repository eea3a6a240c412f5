package recipe

import "recipe-engine/internal/pkg/common"

func ing(name, amount, unit string) common.Ingredient {
	return common.Ingredient{Name: name, Amount: amount, Unit: unit}
}

func opt(name, amount, unit string) common.Ingredient {
	return common.Ingredient{Name: name, Amount: amount, Unit: unit, Optional: true}
}

// SeedCatalog 內建的本地食譜
func SeedCatalog() []common.Recipe {
	return []common.Recipe{
		{
			ID:          "local-1",
			Title:       "Classic Chicken Alfredo",
			Description: "Tender chicken and fettuccine in a rich, garlicky parmesan cream sauce.",
			Ingredients: []common.Ingredient{
				ing("chicken breast", "1", "lb"),
				ing("fettuccine", "12", "oz"),
				ing("heavy cream", "1", "cup"),
				ing("parmesan", "1", "cup"),
				ing("garlic", "3", "cloves"),
				opt("butter", "2", "tbsp"),
				opt("parsley", "2", "tbsp"),
				opt("rice", "2", "cups"),
			},
			Instructions: []string{
				"Cook the fettuccine in salted boiling water until al dente, then drain.",
				"Season the chicken with salt and pepper and sear in a hot pan for 6-7 minutes per side. Slice.",
				"Melt the butter in the same pan, add garlic and cook for 1 minute.",
				"Pour in the cream, simmer for 3 minutes, then stir in the parmesan until smooth.",
				"Toss the pasta and chicken in the sauce and garnish with parsley. Serve over rice if you prefer.",
			},
			CookingTimeMinutes: 30,
			Servings:           4,
			Difficulty:         common.DifficultyMedium,
			Cuisine:            "Italian",
			Tags:               []string{"pasta", "comfort food", "dinner"},
		},
		{
			ID:          "local-2",
			Title:       "Beef and Vegetable Stir Fry",
			Description: "Quick weeknight stir fry with crisp vegetables and a savory soy glaze.",
			Ingredients: []common.Ingredient{
				ing("beef", "1", "lb"),
				ing("broccoli", "2", "cups"),
				ing("bell pepper", "1", ""),
				ing("soy sauce", "3", "tbsp"),
				ing("garlic", "2", "cloves"),
				ing("ginger", "1", "tbsp"),
				opt("sesame oil", "1", "tbsp"),
			},
			Instructions: []string{
				"Slice the beef thinly against the grain.",
				"Stir fry the beef in a hot wok for 2-3 minutes, then set aside.",
				"Stir fry broccoli and bell pepper for 4 minutes.",
				"Add garlic, ginger and soy sauce, return the beef and toss for 1 minute.",
			},
			CookingTimeMinutes: 20,
			Servings:           4,
			Difficulty:         common.DifficultyEasy,
			Cuisine:            "Asian",
			Tags:               []string{"stir fry", "quick", "dinner"},
		},
		{
			ID:          "local-3",
			Title:       "Vegetable Fried Rice",
			Description: "Day-old rice fried with eggs, peas and carrots.",
			Ingredients: []common.Ingredient{
				ing("rice", "3", "cups"),
				ing("eggs", "2", ""),
				ing("peas", "1", "cup"),
				ing("carrot", "1", ""),
				ing("soy sauce", "2", "tbsp"),
				opt("green onion", "2", "stalks"),
			},
			Instructions: []string{
				"Scramble the eggs in a hot pan and set aside.",
				"Stir fry the carrot and peas for 3 minutes.",
				"Add the rice and soy sauce and fry for 5 minutes until hot.",
				"Fold the eggs back in and top with green onion.",
			},
			CookingTimeMinutes: 20,
			Servings:           3,
			Difficulty:         common.DifficultyEasy,
			Cuisine:            "Asian",
			Tags:               []string{"rice", "vegetarian", "quick"},
		},
		{
			ID:          "local-4",
			Title:       "Spinach and Feta Omelette",
			Description: "Fluffy eggs folded around wilted spinach and salty feta.",
			Ingredients: []common.Ingredient{
				ing("eggs", "3", ""),
				ing("spinach", "1", "cup"),
				ing("feta", "1/4", "cup"),
				opt("butter", "1", "tbsp"),
			},
			Instructions: []string{
				"Whisk the eggs with a pinch of salt.",
				"Wilt the spinach in butter for 1 minute.",
				"Pour in the eggs, cook until set at the edges, add feta and fold.",
			},
			CookingTimeMinutes: 10,
			Servings:           1,
			Difficulty:         common.DifficultyEasy,
			Cuisine:            "Mediterranean",
			Tags:               []string{"breakfast", "vegetarian", "quick"},
		},
		{
			ID:          "local-5",
			Title:       "Lemon Herb Salmon with Quinoa",
			Description: "Oven-roasted salmon with lemon and herbs over fluffy quinoa.",
			Ingredients: []common.Ingredient{
				ing("salmon", "2", "fillets"),
				ing("quinoa", "1", "cup"),
				ing("lemon", "1", ""),
				ing("olive oil", "2", "tbsp"),
				opt("dill", "1", "tbsp"),
				opt("asparagus", "1", "bunch"),
			},
			Instructions: []string{
				"Rinse the quinoa and simmer in 2 cups of water for 15 minutes.",
				"Rub the salmon with olive oil, lemon zest, salt and pepper.",
				"Roast at 400°F for 12-15 minutes.",
				"Serve the salmon over quinoa with lemon wedges.",
			},
			CookingTimeMinutes: 30,
			Servings:           2,
			Difficulty:         common.DifficultyMedium,
			Cuisine:            "Mediterranean",
			Tags:               []string{"seafood", "healthy", "gluten free"},
		},
		{
			ID:          "local-6",
			Title:       "Black Bean Tacos",
			Description: "Smoky black beans and charred corn in warm tortillas.",
			Ingredients: []common.Ingredient{
				ing("black beans", "1", "can"),
				ing("tortillas", "8", ""),
				ing("corn", "1", "cup"),
				ing("cumin", "1", "tsp"),
				opt("avocado", "1", ""),
				opt("cilantro", "2", "tbsp"),
			},
			Instructions: []string{
				"Char the corn in a dry skillet for 5 minutes.",
				"Warm the black beans with cumin and a splash of water.",
				"Fill warm tortillas with beans, corn, avocado and cilantro.",
			},
			CookingTimeMinutes: 15,
			Servings:           4,
			Difficulty:         common.DifficultyEasy,
			Cuisine:            "Mexican",
			Tags:               []string{"vegetarian", "quick", "tacos"},
		},
		{
			ID:          "local-7",
			Title:       "Chicken Tikka Masala",
			Description: "Charred chicken simmered in a spiced tomato cream sauce.",
			Ingredients: []common.Ingredient{
				ing("chicken thigh", "1.5", "lb"),
				ing("yogurt", "1/2", "cup"),
				ing("tomato sauce", "1", "can"),
				ing("heavy cream", "1/2", "cup"),
				ing("onion", "1", ""),
				ing("garam masala", "2", "tbsp"),
				opt("rice", "2", "cups"),
			},
			Instructions: []string{
				"Marinate the chicken in yogurt and half the garam masala for 30 minutes.",
				"Broil the chicken for 10 minutes until charred.",
				"Sauté the onion, add the remaining spices and tomato sauce and simmer for 15 minutes.",
				"Stir in the cream and chicken, simmer 10 minutes and serve over rice.",
			},
			CookingTimeMinutes: 75,
			Servings:           4,
			Difficulty:         common.DifficultyHard,
			Cuisine:            "Indian",
			Tags:               []string{"curry", "dinner"},
		},
		{
			ID:          "local-8",
			Title:       "Tomato Basil Pasta",
			Description: "Simple pasta tossed with garlic, fresh tomatoes and basil.",
			Ingredients: []common.Ingredient{
				ing("pasta", "12", "oz"),
				ing("tomato", "4", ""),
				ing("garlic", "3", "cloves"),
				ing("basil", "1/2", "cup"),
				ing("olive oil", "3", "tbsp"),
				opt("parmesan", "1/4", "cup"),
			},
			Instructions: []string{
				"Boil the pasta until al dente.",
				"Warm garlic in olive oil, add chopped tomatoes and cook for 5 minutes.",
				"Toss the pasta with the sauce and torn basil, finish with parmesan.",
			},
			CookingTimeMinutes: 20,
			Servings:           4,
			Difficulty:         common.DifficultyEasy,
			Cuisine:            "Italian",
			Tags:               []string{"pasta", "vegetarian"},
		},
	}
}
