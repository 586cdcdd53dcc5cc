package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/models"
	"menu-recommender/internal/recommend"
)

// recommendInput is the transport-neutral form of a recommendation request.
type recommendInput struct {
	Meals          []string            // names of eaten catalog items
	Consumed       *models.MacroVector // extra consumed macros
	Allergies      []string
	Sex            string
	Age            string
	Calories       float64
	Ratios         *recommend.Ratios
	IncludeHistory bool
	HistorySince   string
}

type recommendOutput struct {
	Found          bool                      `json:"found"`
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	Reason         string                    `json:"reason,omitempty"`
	Mode           string                    `json:"mode"`
	Target         interface{}               `json:"target"`
	Calories       float64                   `json:"target_calories,omitempty"`
	Consumed       models.MacroVector        `json:"consumed"`
}

// resolveTarget picks the target for in. An explicit calorie count wins,
// then a sex/age estimate, then the ratio target.
func (s *MenuServer) resolveTarget(in recommendInput) (recommend.TargetProfile, float64, error) {
	ratios := s.engine.Config().Ratios
	if in.Ratios != nil {
		ratios = *in.Ratios
	}

	calories := in.Calories
	if calories == 0 && (in.Sex != "" || in.Age != "") {
		calories = float64(s.engine.EstimateCalories(in.Sex, in.Age))
	}
	if calories != 0 {
		target, err := recommend.NewCalorieTarget(calories, ratios)
		return target, calories, err
	}
	target, err := recommend.NewRatioTarget(ratios)
	return target, 0, err
}

func (s *MenuServer) recommend(ctx context.Context, in recommendInput) (*recommendOutput, error) {
	start := time.Now()

	target, calories, err := s.resolveTarget(in)
	if err != nil {
		s.metrics.RecordRecommendation("invalid", "error", time.Since(start))
		return nil, err
	}

	foods, err := s.catalog.Load(ctx)
	if err != nil {
		s.metrics.RecordRecommendation(target.Mode().String(), "error", time.Since(start))
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	menu := catalog.New(foods)

	consumed := recommend.Aggregate(menu.Resolve(in.Meals))
	if in.Consumed != nil {
		consumed = consumed.Add(*in.Consumed)
	}
	if in.IncludeHistory {
		if s.storage == nil {
			s.metrics.RecordRecommendation(target.Mode().String(), "error", time.Since(start))
			return nil, fmt.Errorf("%w: meal history is not configured", errInvalidParams)
		}
		since := in.HistorySince
		if since == "" {
			since = time.Now().UTC().Format("2006-01-02")
		}
		meals, err := s.storage.GetMeals(since, "", maxHistoryMeals)
		if err != nil {
			s.metrics.RecordRecommendation(target.Mode().String(), "error", time.Since(start))
			return nil, fmt.Errorf("failed to load meal history: %w", err)
		}
		consumed = consumed.Add(recommend.Aggregate(meals))
	}

	out := &recommendOutput{
		Mode:     target.Mode().String(),
		Calories: calories,
		Consumed: consumed,
	}
	if target.Mode() == recommend.RatioMode {
		out.Target = target.Ratios()
	} else {
		out.Target = target.Grams()
	}

	rec, ok := s.engine.Recommend(consumed, target, menu.Items(), in.Allergies)
	outcome := "none"
	if ok {
		outcome = "found"
		out.Found = true
		out.Recommendation = &rec
		out.Reason = reason(rec.Item)
	}
	s.metrics.RecordRecommendation(out.Mode, outcome, time.Since(start))
	s.log.Debug().
		Str("mode", out.Mode).
		Str("outcome", outcome).
		Int("candidates", len(foods)).
		Msg("Recommendation computed")

	return out, nil
}

// maxHistoryMeals bounds how many logged meals feed one recommendation.
const maxHistoryMeals = 100

func reason(f models.Food) string {
	text := fmt.Sprintf("Adds protein %gg, carbs %gg, fat %gg", f.Protein, f.Carbs, f.Fat)
	if f.Calories != nil {
		text += fmt.Sprintf(" (%g kcal)", *f.Calories)
	}
	return text
}

// splitList splits a comma separated form value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
