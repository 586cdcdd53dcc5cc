// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/models"
	"menu-recommender/internal/recommend"
)

var errInvalidParams = errors.New("invalid parameters")

type RecommendMenuParams struct {
	Meals          []string            `json:"meals,omitempty" description:"Names of menu items already eaten"`
	Consumed       *models.MacroVector `json:"consumed,omitempty" description:"Additional consumed grams of protein, carbs and fat"`
	Allergies      []string            `json:"allergies,omitempty" description:"Allergens to exclude"`
	Sex            string              `json:"sex,omitempty" description:"male or female, used to estimate a calorie target"`
	Age            string              `json:"age,omitempty" description:"Age in years, used to estimate a calorie target"`
	Calories       float64             `json:"calories,omitempty" description:"Daily calorie target; switches to absolute gram targets"`
	Ratios         *recommend.Ratios   `json:"ratios,omitempty" description:"Target protein/carbs/fat ratios summing to 1"`
	IncludeHistory bool                `json:"include_history,omitempty" description:"Add logged meals to the consumed totals"`
	HistorySince   string              `json:"history_since,omitempty" description:"First day of logged meals to include (YYYY-MM-DD, defaults to today)"`
}

type LogMealParams struct {
	Description string        `json:"description" description:"Description of the meal eaten"`
	Timestamp   string        `json:"timestamp,omitempty" description:"ISO timestamp of when meal was eaten (defaults to now)"`
	Foods       []string      `json:"foods,omitempty" description:"Names of menu items eaten"`
	Items       []models.Food `json:"items,omitempty" description:"Foods not on the menu, with their macros"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for meal query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for meal query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

// handleRecommendMenu picks the best next menu item
func (s *MenuServer) handleRecommendMenu(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RecommendMenuParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	out, err := s.recommend(ctx, recommendInput{
		Meals:          params.Meals,
		Consumed:       params.Consumed,
		Allergies:      params.Allergies,
		Sex:            params.Sex,
		Age:            params.Age,
		Calories:       params.Calories,
		Ratios:         params.Ratios,
		IncludeHistory: params.IncludeHistory,
		HistorySince:   params.HistorySince,
	})
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(out)
}

// handleLogMeal records an eaten meal built from menu names and custom items
func (s *MenuServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: meal history is not configured", errInvalidParams)
	}

	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if params.Description == "" {
		return nil, fmt.Errorf("%w: meal description is required", errInvalidParams)
	}

	// Parse timestamp or use current time
	var timestamp time.Time
	var err error
	if params.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timestamp format: %v", errInvalidParams, err)
		}
	} else {
		timestamp = time.Now()
	}

	var foods []models.Food
	source := models.ManualSource
	if len(params.Foods) > 0 {
		items, err := s.catalog.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		menu := catalog.New(items)
		for _, name := range params.Foods {
			f, err := menu.Get(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
			}
			foods = append(foods, f)
		}
		source = models.MenuSource
	}
	foods = append(foods, params.Items...)

	meal := &models.Meal{
		Description: params.Description,
		Timestamp:   timestamp,
		Foods:       foods,
		Source:      source,
	}

	if err := s.storage.SaveMeal(meal); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	s.log.Info().
		Str("meal_id", meal.ID).
		Int("foods", len(meal.Foods)).
		Float64("protein", meal.Total.Protein).
		Float64("carbs", meal.Total.Carbs).
		Float64("fat", meal.Total.Fat).
		Msg("Meal logged")

	return s.createJSONResponse(meal)
}

// handleGetMeals retrieves meals from storage
func (s *MenuServer) handleGetMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: meal history is not configured", errInvalidParams)
	}

	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	// Set defaults
	if params.Limit <= 0 {
		params.Limit = 20
	}

	meals, err := s.storage.GetMeals(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve meals: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"meals":    meals,
		"consumed": recommend.Aggregate(meals),
	})
}

// handleListMenu returns the current catalog
func (s *MenuServer) handleListMenu(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	foods, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return s.createJSONResponse(foods)
}

func (s *MenuServer) registerTools() error {
	s.tools = map[string]toolHandler{
		"recommend_menu": s.handleRecommendMenu,
		"log_meal":       s.handleLogMeal,
		"get_meals":      s.handleGetMeals,
		"list_menu":      s.handleListMenu,
	}

	for name, h := range s.tools {
		if h == nil {
			return fmt.Errorf("tool %s has no handler", name)
		}
		s.log.Debug().Str("tool", name).Msg("Registered tool")
	}

	return nil
}

func (s *MenuServer) toolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
