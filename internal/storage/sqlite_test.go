package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-recommender/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "meals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetMeals(t *testing.T) {
	s := newTestStorage(t)
	kcal := 320.0

	breakfast := &models.Meal{
		Description: "breakfast",
		Timestamp:   time.Date(2026, 10, 13, 8, 0, 0, 0, time.UTC),
		Foods: []models.Food{
			{Name: "Oatmeal", MacroVector: models.MacroVector{Protein: 6, Carbs: 30, Fat: 4}, Calories: &kcal},
			{Name: "Walnuts", MacroVector: models.MacroVector{Protein: 4, Carbs: 2, Fat: 18}, Allergens: []string{"nuts"}},
		},
	}
	require.NoError(t, s.SaveMeal(breakfast))
	assert.NotEmpty(t, breakfast.ID)
	assert.Equal(t, models.ManualSource, breakfast.Source)
	assert.Equal(t, models.MacroVector{Protein: 10, Carbs: 32, Fat: 22}, breakfast.Total)

	dinner := &models.Meal{
		Description: "dinner",
		Timestamp:   time.Date(2026, 10, 14, 19, 30, 0, 0, time.UTC),
		Source:      models.MenuSource,
		Foods:       []models.Food{{Name: "Bulgogi", MacroVector: models.MacroVector{Protein: 28, Carbs: 15, Fat: 14}}},
	}
	require.NoError(t, s.SaveMeal(dinner))

	meals, err := s.GetMeals("", "", 10)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "dinner", meals[0].Description)
	assert.Equal(t, models.MenuSource, meals[0].Source)
	assert.True(t, dinner.Timestamp.Equal(meals[0].Timestamp))

	got := meals[1]
	assert.Equal(t, breakfast.ID, got.ID)
	assert.Equal(t, breakfast.Total, got.Total)
	require.Len(t, got.Foods, 2)
	assert.Equal(t, "Oatmeal", got.Foods[0].Name)
	require.NotNil(t, got.Foods[0].Calories)
	assert.Equal(t, 320.0, *got.Foods[0].Calories)
	assert.Nil(t, got.Foods[1].Calories)
	assert.Equal(t, []string{"nuts"}, got.Foods[1].Allergens)
}

func TestGetMeals_DateRangeAndLimit(t *testing.T) {
	s := newTestStorage(t)
	for day := 10; day <= 14; day++ {
		require.NoError(t, s.SaveMeal(&models.Meal{
			Description: "day",
			Timestamp:   time.Date(2026, 10, day, 12, 0, 0, 0, time.UTC),
			Foods:       []models.Food{{Name: "Rice", MacroVector: models.MacroVector{Carbs: float64(day)}}},
		}))
	}

	meals, err := s.GetMeals("2026-10-12", "2026-10-13", 10)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, 13.0, meals[0].Total.Carbs)
	assert.Equal(t, 12.0, meals[1].Total.Carbs)

	meals, err = s.GetMeals("2026-10-11", "", 2)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, 14.0, meals[0].Total.Carbs)

	meals, err = s.GetMeals("2027-01-01", "", 5)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestSaveMeal_DuplicateID(t *testing.T) {
	s := newTestStorage(t)
	meal := &models.Meal{ID: "fixed", Description: "snack"}
	require.NoError(t, s.SaveMeal(meal))
	assert.Error(t, s.SaveMeal(&models.Meal{ID: "fixed", Description: "again"}))
}
