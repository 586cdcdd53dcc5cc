// internal/models/meal.go
package models

import (
	"time"
)

// MacroVector holds grams of the three tracked macros.
type MacroVector struct {
	Protein float64 `json:"protein" yaml:"protein"`
	Carbs   float64 `json:"carbs" yaml:"carbs"`
	Fat     float64 `json:"fat" yaml:"fat"`
}

// Add returns the per-key sum of m and o.
func (m MacroVector) Add(o MacroVector) MacroVector {
	return MacroVector{
		Protein: m.Protein + o.Protein,
		Carbs:   m.Carbs + o.Carbs,
		Fat:     m.Fat + o.Fat,
	}
}

// Slice returns protein, carbs, fat in that order.
func (m MacroVector) Slice() []float64 {
	return []float64{m.Protein, m.Carbs, m.Fat}
}

// Macros lets a bare vector be aggregated like any other record.
func (m MacroVector) Macros() MacroVector {
	return m
}

// MacroSource is anything that carries macros.
type MacroSource interface {
	Macros() MacroVector
}

// Food is a menu or catalog entry.
type Food struct {
	Name        string   `json:"name"`
	MacroVector `yaml:",inline"`
	Calories    *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Allergens   []string `json:"allergens" yaml:"allergens"`
}

func (f Food) Macros() MacroVector {
	return f.MacroVector
}

// HasAllergen reports whether any of the food's allergens is in set.
func (f Food) HasAllergen(set map[string]struct{}) bool {
	for _, a := range f.Allergens {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

type Meal struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Timestamp   time.Time   `json:"timestamp"`
	Foods       []Food      `json:"foods"`
	Total       MacroVector `json:"total"`
	CreatedAt   time.Time   `json:"created_at"`
	Source      MealSource  `json:"source"`
}

func (m *Meal) Macros() MacroVector {
	return m.Total
}

// Recalculate sets Total from the meal's foods.
func (m *Meal) Recalculate() {
	var total MacroVector
	for _, f := range m.Foods {
		total = total.Add(f.MacroVector)
	}
	m.Total = total
}

type MealSource string

const (
	ManualSource MealSource = "manual"
	MenuSource   MealSource = "menu"
	BatchSource  MealSource = "batch"
)
