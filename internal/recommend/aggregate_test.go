package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"menu-recommender/internal/models"
)

func TestAggregate(t *testing.T) {
	assert.Equal(t, models.MacroVector{}, Aggregate[models.MacroVector](nil))
	assert.Equal(t, models.MacroVector{}, Aggregate([]models.Food{}))

	foods := []models.Food{
		food("oats", 5, 27, 3),
		{Name: "no macros"},
		food("eggs", 12, 1, 10),
	}
	assert.Equal(t, models.MacroVector{Protein: 17, Carbs: 28, Fat: 13}, Aggregate(foods))
}

func TestAggregate_Meals(t *testing.T) {
	breakfast := &models.Meal{
		Timestamp: time.Now(),
		Foods:     []models.Food{food("toast", 4, 20, 1), food("butter", 0, 0, 8)},
	}
	breakfast.Recalculate()
	lunch := &models.Meal{Foods: []models.Food{food("tuna", 25, 0, 1)}}
	lunch.Recalculate()

	got := Aggregate([]*models.Meal{breakfast, lunch})
	assert.Equal(t, models.MacroVector{Protein: 29, Carbs: 20, Fat: 10}, got)
}
