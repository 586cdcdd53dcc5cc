package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-recommender/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader_JSON(t *testing.T) {
	path := writeFile(t, "menus.json", `[
		{"name": "Bibimbap", "protein": 20, "carbs": 70, "fat": 12, "calories": 480, "allergens": ["soy", "egg"]},
		{"name": "Plain rice", "carbs": 45},
		{"protein": 99},
		{"name": "Bibimbap", "protein": 1},
		{"name": "Odd", "protein": "7.5", "carbs": "lots", "fat": -3, "allergens": "nuts, milk"}
	]`)

	foods, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, foods, 3)

	assert.Equal(t, "Bibimbap", foods[0].Name)
	assert.Equal(t, models.MacroVector{Protein: 20, Carbs: 70, Fat: 12}, foods[0].MacroVector)
	require.NotNil(t, foods[0].Calories)
	assert.Equal(t, 480.0, *foods[0].Calories)
	assert.Equal(t, []string{"soy", "egg"}, foods[0].Allergens)

	assert.Equal(t, models.MacroVector{Carbs: 45}, foods[1].MacroVector)
	assert.Nil(t, foods[1].Calories)
	assert.Empty(t, foods[1].Allergens)

	assert.Equal(t, models.MacroVector{Protein: 7.5}, foods[2].MacroVector)
	assert.Equal(t, []string{"nuts", "milk"}, foods[2].Allergens)
}

func TestFileLoader_YAML(t *testing.T) {
	path := writeFile(t, "menus.yaml", `
- name: Salmon bowl
  protein: 32
  carbs: 40
  fat: 18.5
  allergens: [fish]
- name: Fruit cup
  carbs: 25
`)

	foods, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, models.MacroVector{Protein: 32, Carbs: 40, Fat: 18.5}, foods[0].MacroVector)
	assert.Equal(t, []string{"fish"}, foods[0].Allergens)
	assert.Equal(t, "Fruit cup", foods[1].Name)
}

func TestFileLoader_Errors(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, "bad.json", `{"name": "not a list"}`)
	_, err = NewFileLoader(bad).Load(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileLoader(bad).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadHistory(t *testing.T) {
	path := writeFile(t, "meal_history.json", `[
		{"protein": 10, "carbs": 20},
		{"fat": 5},
		{}
	]`)

	history, err := LoadHistory(path)
	require.NoError(t, err)
	assert.Equal(t, []models.MacroVector{
		{Protein: 10, Carbs: 20},
		{Fat: 5},
		{},
	}, history)
}

func TestCatalog(t *testing.T) {
	c := New([]models.Food{
		{Name: "Kimchi stew", MacroVector: models.MacroVector{Protein: 18}},
		{Name: "Tofu", MacroVector: models.MacroVector{Protein: 8}},
	})

	assert.Equal(t, []string{"Kimchi stew", "Tofu"}, c.Names())
	assert.Len(t, c.Items(), 2)

	f, err := c.Get("Tofu")
	require.NoError(t, err)
	assert.Equal(t, 8.0, f.Protein)

	_, err = c.Get("Pizza")
	assert.ErrorIs(t, err, ErrNotFound)

	resolved := c.Resolve([]string{"Tofu", "", "Pizza", " Kimchi stew ", "Tofu"})
	require.Len(t, resolved, 3)
	assert.Equal(t, "Tofu", resolved[0].Name)
	assert.Equal(t, "Kimchi stew", resolved[1].Name)
	assert.Equal(t, "Tofu", resolved[2].Name)
}

func TestParseFoods_NonFiniteMacrosCountAsZero(t *testing.T) {
	foods := ParseFoods([]map[string]interface{}{
		{"name": "Broken", "protein": "Inf", "carbs": "+Inf", "fat": "-Inf", "calories": "inf"},
		{"name": "Also broken", "protein": math.Inf(1), "carbs": "NaN", "fat": 1.0},
	})
	require.Len(t, foods, 2)

	assert.Equal(t, models.MacroVector{}, foods[0].MacroVector)
	assert.Nil(t, foods[0].Calories)
	assert.Equal(t, models.MacroVector{Fat: 1}, foods[1].MacroVector)
}
