package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

const fallbackImageURL = "https://images.unsplash.com/photo-1504674900247-0877df9cc836"

// Generator produces and revises recipes. It is the backend's recipe-writing
// capability; how a recipe is authored stays behind this interface.
type Generator interface {
	Generate(ctx context.Context, prefs model.UserPreferences, existingTitles []string) (model.Recipe, error)
	Modify(ctx context.Context, original model.Recipe, modification string) (model.Recipe, error)
}

var _ Generator = (*CatalogGenerator)(nil)

type catalogEntry struct {
	profile model.UserPreferences
	recipe  model.Recipe
}

// CatalogGenerator serves recipes from a built-in catalog, picking the entry
// whose profile is closest to the requested preferences.
type CatalogGenerator struct {
	entries []catalogEntry
}

// NewCatalogGenerator creates a generator preloaded with the built-in catalog.
func NewCatalogGenerator() *CatalogGenerator {
	return &CatalogGenerator{entries: seedCatalog()}
}

// Generate returns the best-matching catalog recipe whose title is not in
// existingTitles. Once every title is taken it returns a numbered variation
// of the best match. Each result gets a fresh ID.
func (g *CatalogGenerator) Generate(ctx context.Context, prefs model.UserPreferences, existingTitles []string) (model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return model.Recipe{}, err
	}
	if len(g.entries) == 0 {
		return model.Recipe{}, fmt.Errorf("catalog is empty")
	}

	taken := make(map[string]bool, len(existingTitles))
	for _, t := range existingTitles {
		taken[strings.ToLower(strings.TrimSpace(t))] = true
	}

	best, bestFresh := -1, -1
	for i, e := range g.entries {
		if best < 0 || distance(prefs, e.profile) < distance(prefs, g.entries[best].profile) {
			best = i
		}
		if taken[strings.ToLower(e.recipe.Title)] {
			continue
		}
		if bestFresh < 0 || distance(prefs, e.profile) < distance(prefs, g.entries[bestFresh].profile) {
			bestFresh = i
		}
	}

	var out model.Recipe
	if bestFresh >= 0 {
		out = g.entries[bestFresh].recipe.Clone()
	} else {
		out = g.entries[best].recipe.Clone()
		base := out.Title
		for n := 2; taken[strings.ToLower(out.Title)]; n++ {
			out.Title = fmt.Sprintf("%s (Variation %d)", base, n)
		}
	}

	out.ID = uuid.NewString()
	if out.ImageURL == "" {
		out.ImageURL = fallbackImageURL
	}
	return out, nil
}

// Modify returns a revised copy of original. The ID and image are kept and
// the attached preferences are dropped.
func (g *CatalogGenerator) Modify(ctx context.Context, original model.Recipe, modification string) (model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return model.Recipe{}, err
	}

	out := original.Clone()
	out.AttachedPreferences = nil
	instruction := strings.TrimSpace(modification)
	lower := strings.ToLower(instruction)

	switch {
	case strings.Contains(lower, "less spicy") || strings.Contains(lower, "milder"):
		out.Ingredients = filterOut(out.Ingredients, "chili", "chilli", "cayenne", "jalapeño", "jalapeno")
		out.Tags = addTag(out.Tags, "mild")
	case strings.Contains(lower, "spic") || strings.Contains(lower, "hot"):
		out.Ingredients = append(out.Ingredients, "1 tsp chili flakes")
		out.Tags = addTag(out.Tags, "spicy")
	}
	if strings.Contains(lower, "vegetarian") || strings.Contains(lower, "vegan") {
		out.Ingredients = filterOut(out.Ingredients, "chicken", "beef", "pork", "bacon", "salmon", "shrimp", "lamb", "tuna")
		out.Ingredients = append(out.Ingredients, "200 g firm tofu")
		out.Tags = addTag(out.Tags, "vegetarian")
	}
	if strings.Contains(lower, "quick") || strings.Contains(lower, "faster") {
		out.CookTime = max(5, out.CookTime*3/4)
		out.Tags = addTag(out.Tags, "quick")
	}
	if strings.Contains(lower, "protein") {
		out.Macros.Protein += 15
		out.Macros.Calories += 80
	}
	if strings.Contains(lower, "lighter") || strings.Contains(lower, "fewer calories") {
		out.Macros.Calories = out.Macros.Calories * 4 / 5
		out.Macros.Fat = out.Macros.Fat * 3 / 4
	}

	out.Description = strings.TrimSpace(out.Description + " Adjusted: " + instruction + ".")
	out.Steps = append(out.Steps, model.RecipeStep{
		StepNumber:  len(out.Steps) + 1,
		Instruction: "Adjust to taste: " + instruction + ".",
	})
	return out, nil
}

func distance(a, b model.UserPreferences) int {
	d := 0
	for _, axis := range model.Axes {
		diff := int(a.Get(axis)) - int(b.Get(axis))
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d
}

func filterOut(items []string, words ...string) []string {
	out := items[:0:0]
	for _, item := range items {
		lower := strings.ToLower(item)
		keep := true
		for _, w := range words {
			if strings.Contains(lower, w) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

func addTag(tags []string, tag string) []string {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return tags
		}
	}
	return append(tags, tag)
}

func profile(effort, skill, calorie, protein, spice model.Level) model.UserPreferences {
	return model.UserPreferences{
		EffortLevel:          effort,
		SkillLevel:           skill,
		CalorieConsciousness: calorie,
		ProteinPreference:    protein,
		SpiceLevel:           spice,
	}
}

func steps(instructions ...string) []model.RecipeStep {
	out := make([]model.RecipeStep, len(instructions))
	for i, s := range instructions {
		out[i] = model.RecipeStep{StepNumber: i + 1, Instruction: s}
	}
	return out
}

func seedCatalog() []catalogEntry {
	const low, mid, high = model.LevelLow, model.LevelMedium, model.LevelHigh

	return []catalogEntry{
		{
			profile: profile(low, low, low, mid, low),
			recipe: model.Recipe{
				Title:       "Lemon Herb Chickpea Salad",
				Description: "A bright no-cook salad with chickpeas, cucumber and fresh herbs.",
				CookTime:    10,
				Tags:        []string{"salad", "no-cook", "vegetarian"},
				Ingredients: []string{"1 can chickpeas", "1 cucumber", "1 lemon", "1 handful parsley", "2 tbsp olive oil"},
				Steps: steps(
					"Drain and rinse the chickpeas.",
					"Dice the cucumber and chop the parsley.",
					"Toss everything with lemon juice, olive oil and salt.",
				),
				Macros: model.Macros{Calories: 320, Protein: 12, Carbs: 38, Fat: 14},
			},
		},
		{
			profile: profile(low, low, mid, high, mid),
			recipe: model.Recipe{
				Title:       "Garlic Butter Shrimp",
				Description: "Shrimp seared in garlic butter with a pinch of chili.",
				CookTime:    15,
				Tags:        []string{"seafood", "quick"},
				Ingredients: []string{"300 g shrimp", "3 cloves garlic", "2 tbsp butter", "1 pinch chili flakes", "1 lemon"},
				Steps: steps(
					"Melt the butter over medium-high heat.",
					"Add garlic and chili and cook for 30 seconds.",
					"Sear the shrimp for 2 minutes a side and finish with lemon.",
				),
				Macros: model.Macros{Calories: 410, Protein: 46, Carbs: 4, Fat: 22},
			},
		},
		{
			profile: profile(mid, mid, mid, mid, high),
			recipe: model.Recipe{
				Title:       "Spicy Shakshuka",
				Description: "Eggs poached in a smoky, harissa-spiked tomato sauce.",
				CookTime:    30,
				Tags:        []string{"eggs", "spicy", "one-pan"},
				Ingredients: []string{"4 eggs", "1 can tomatoes", "1 red pepper", "1 onion", "1 tbsp harissa", "1 tsp cumin"},
				Steps: steps(
					"Soften the onion and pepper in olive oil.",
					"Stir in harissa, cumin and tomatoes and simmer 10 minutes.",
					"Make wells, crack in the eggs and cover until set.",
				),
				Macros: model.Macros{Calories: 380, Protein: 20, Carbs: 24, Fat: 22},
			},
		},
		{
			profile: profile(mid, mid, high, high, low),
			recipe: model.Recipe{
				Title:       "Creamy Chicken Alfredo",
				Description: "Pan-seared chicken tossed with fettuccine in a parmesan cream sauce.",
				CookTime:    35,
				Tags:        []string{"pasta", "comfort"},
				Ingredients: []string{"250 g fettuccine", "2 chicken breasts", "200 ml cream", "60 g parmesan", "2 cloves garlic"},
				Steps: steps(
					"Cook the pasta in salted water.",
					"Sear the chicken until cooked through and slice.",
					"Simmer cream with garlic, melt in parmesan and toss with pasta and chicken.",
				),
				Macros: model.Macros{Calories: 890, Protein: 58, Carbs: 72, Fat: 40},
			},
		},
		{
			profile: profile(mid, low, low, low, mid),
			recipe: model.Recipe{
				Title:       "Roasted Vegetable Soup",
				Description: "Sweet roasted vegetables blended into a silky, gently spiced soup.",
				CookTime:    45,
				Tags:        []string{"soup", "vegan"},
				Ingredients: []string{"2 carrots", "1 sweet potato", "1 onion", "1 l vegetable stock", "1 tsp smoked paprika"},
				Steps: steps(
					"Roast the chopped vegetables at 200°C for 30 minutes.",
					"Simmer with stock and paprika for 10 minutes.",
					"Blend until smooth and season.",
				),
				Macros: model.Macros{Calories: 240, Protein: 5, Carbs: 44, Fat: 6},
			},
		},
		{
			profile: profile(high, high, mid, high, mid),
			recipe: model.Recipe{
				Title:       "Miso-Glazed Salmon with Sesame Greens",
				Description: "Broiled salmon lacquered with miso and mirin over garlicky greens.",
				CookTime:    40,
				Tags:        []string{"seafood", "japanese"},
				Ingredients: []string{"2 salmon fillets", "2 tbsp white miso", "1 tbsp mirin", "200 g bok choy", "1 tbsp sesame seeds"},
				Steps: steps(
					"Whisk miso and mirin and brush over the salmon.",
					"Marinate for 15 minutes, then broil until caramelised.",
					"Stir-fry the bok choy with garlic and finish with sesame.",
				),
				Macros: model.Macros{Calories: 520, Protein: 42, Carbs: 14, Fat: 30},
			},
		},
		{
			profile: profile(high, high, high, mid, high),
			recipe: model.Recipe{
				Title:       "Lamb Rogan Josh",
				Description: "Slow-braised lamb in a deeply aromatic Kashmiri chili sauce.",
				CookTime:    120,
				Tags:        []string{"curry", "indian", "spicy"},
				Ingredients: []string{"600 g lamb shoulder", "2 onions", "150 g yogurt", "2 tbsp Kashmiri chili", "1 tbsp garam masala"},
				Steps: steps(
					"Brown the lamb in batches.",
					"Fry the onions until deep golden, add the spices and cook out.",
					"Return the lamb with yogurt and water and braise for 90 minutes.",
				),
				Macros: model.Macros{Calories: 760, Protein: 52, Carbs: 18, Fat: 50},
			},
		},
		{
			profile: profile(high, mid, low, low, low),
			recipe: model.Recipe{
				Title:       "Mushroom Risotto",
				Description: "A patient, creamy risotto with porcini and thyme.",
				CookTime:    50,
				Tags:        []string{"rice", "vegetarian"},
				Ingredients: []string{"300 g arborio rice", "250 g mushrooms", "10 g dried porcini", "1 l stock", "30 g parmesan"},
				Steps: steps(
					"Soak the porcini and sauté the fresh mushrooms.",
					"Toast the rice, then add stock a ladle at a time, stirring.",
					"Fold in mushrooms and parmesan and rest for 2 minutes.",
				),
				Macros: model.Macros{Calories: 540, Protein: 14, Carbs: 92, Fat: 12},
			},
		},
	}
}
