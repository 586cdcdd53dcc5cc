// Package recommend picks the menu item that best complements what has
// already been eaten.
package recommend

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"menu-recommender/internal/models"
)

// Config holds the values the engine would otherwise hard-code.
type Config struct {
	Ratios         Ratios
	MaleCalories   int
	FemaleCalories int
}

// DefaultConfig matches the recommended 25/50/25 split and
// 2500/2000 kcal bases.
func DefaultConfig() Config {
	return Config{
		Ratios:         DefaultRatios,
		MaleCalories:   2500,
		FemaleCalories: 2000,
	}
}

// Engine is stateless after construction and safe for concurrent use.
type Engine struct {
	cfg    Config
	target TargetProfile
}

// NewEngine validates cfg. Zero calorie bases fall back to the defaults.
func NewEngine(cfg Config) (*Engine, error) {
	def := DefaultConfig()
	if cfg.MaleCalories <= 0 {
		cfg.MaleCalories = def.MaleCalories
	}
	if cfg.FemaleCalories <= 0 {
		cfg.FemaleCalories = def.FemaleCalories
	}
	target, err := NewRatioTarget(cfg.Ratios)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, target: target}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// DefaultTarget is the configured ratio target.
func (e *Engine) DefaultTarget() TargetProfile { return e.target }

// CalorieTarget builds an absolute target for calories using the configured
// ratios.
func (e *Engine) CalorieTarget(calories float64) (TargetProfile, error) {
	return NewCalorieTarget(calories, e.cfg.Ratios)
}

// Recommendation is a chosen candidate and how far it lands from the target.
type Recommendation struct {
	Item     models.Food        `json:"item"`
	Score    float64            `json:"score"`
	Combined models.MacroVector `json:"combined"`
}

// Recommend returns the candidate whose post-consumption macros land closest
// to target, ignoring candidates carrying any excluded allergen and
// candidates whose score is undefined. Ties go to
// the earliest candidate. ok is false when nothing survives filtering.
// A zero TargetProfile means the engine's default target.
func (e *Engine) Recommend(consumed models.MacroVector, target TargetProfile, candidates []models.Food, excluded []string) (rec Recommendation, ok bool) {
	if target == (TargetProfile{}) {
		target = e.target
	}
	ref := target.reference()
	exclude := allergenSet(excluded)

	var best float64
	for _, c := range candidates {
		if c.HasAllergen(exclude) {
			continue
		}
		combined := consumed.Add(c.MacroVector)
		s := score(combined, ref, target.mode)
		if math.IsNaN(s) {
			continue
		}
		if !ok || s < best {
			best = s
			rec = Recommendation{Item: c, Score: s, Combined: combined}
			ok = true
		}
	}
	return rec, ok
}

// Score exposes the distance of combined from target.
func Score(combined models.MacroVector, target TargetProfile) float64 {
	return score(combined, target.reference(), target.mode)
}

func score(combined models.MacroVector, ref []float64, mode Mode) float64 {
	v := combined.Slice()
	if mode == RatioMode {
		v = ratio(v)
	}
	diff := make([]float64, len(v))
	floats.SubTo(diff, v, ref)
	return floats.Dot(diff, diff)
}

// ratio normalizes v in place; an all-zero total yields all zeros.
func ratio(v []float64) []float64 {
	total := floats.Sum(v)
	if total == 0 {
		for i := range v {
			v[i] = 0
		}
		return v
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

func allergenSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
