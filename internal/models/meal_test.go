package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroVector(t *testing.T) {
	a := MacroVector{Protein: 1, Carbs: 2, Fat: 3}
	b := MacroVector{Protein: 10, Fat: 0.5}

	assert.Equal(t, MacroVector{Protein: 11, Carbs: 2, Fat: 3.5}, a.Add(b))
	assert.Equal(t, []float64{1, 2, 3}, a.Slice())
	assert.Equal(t, a, a.Macros())
}

func TestFood_JSONIsFlat(t *testing.T) {
	kcal := 150.0
	f := Food{Name: "Egg", MacroVector: MacroVector{Protein: 12, Fat: 10}, Calories: &kcal, Allergens: []string{"egg"}}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Egg","protein":12,"carbs":0,"fat":10,"calories":150,"allergens":["egg"]}`, string(data))

	var back Food
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f.MacroVector, back.Macros())
}

func TestFood_HasAllergen(t *testing.T) {
	f := Food{Name: "Pesto", Allergens: []string{"nuts", "milk"}}

	assert.True(t, f.HasAllergen(map[string]struct{}{"milk": {}}))
	assert.False(t, f.HasAllergen(map[string]struct{}{"soy": {}}))
	assert.False(t, f.HasAllergen(nil))
	assert.False(t, Food{}.HasAllergen(map[string]struct{}{"soy": {}}))
}

func TestMeal_Recalculate(t *testing.T) {
	m := &Meal{Foods: []Food{
		{Name: "Rice", MacroVector: MacroVector{Carbs: 45, Protein: 4}},
		{Name: "Beans", MacroVector: MacroVector{Carbs: 20, Protein: 8, Fat: 1}},
	}}
	m.Recalculate()
	assert.Equal(t, MacroVector{Protein: 12, Carbs: 65, Fat: 1}, m.Macros())

	m.Foods = nil
	m.Recalculate()
	assert.Equal(t, MacroVector{}, m.Total)
}
