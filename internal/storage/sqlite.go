// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"menu-recommender/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    PRAGMA foreign_keys = ON;

    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        total_protein REAL NOT NULL,
        total_carbs REAL NOT NULL,
        total_fat REAL NOT NULL,
        created_at TEXT NOT NULL,
        source TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        name TEXT NOT NULL,
        protein REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        calories REAL,
        allergens TEXT NOT NULL DEFAULT '[]',
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_meals_timestamp ON meals(timestamp);
    CREATE INDEX IF NOT EXISTS idx_foods_meal_id ON foods(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveMeal stores meal and its foods. Missing ID, timestamps and source are
// filled in, and the totals are recomputed from the foods.
func (s *SQLiteStorage) SaveMeal(meal *models.Meal) error {
	now := time.Now().UTC()
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.Timestamp.IsZero() {
		meal.Timestamp = now
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = now
	}
	if meal.Source == "" {
		meal.Source = models.ManualSource
	}
	meal.Recalculate()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	mealQuery := `
        INSERT INTO meals (id, description, timestamp, total_protein, total_carbs, total_fat, created_at, source)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.Exec(mealQuery,
		meal.ID, meal.Description, formatTime(meal.Timestamp),
		meal.Total.Protein, meal.Total.Carbs, meal.Total.Fat,
		formatTime(meal.CreatedAt), string(meal.Source))
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	foodQuery := `
        INSERT INTO foods (meal_id, name, protein, carbs, fat, calories, allergens)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	for _, food := range meal.Foods {
		allergens, err := json.Marshal(food.Allergens)
		if err != nil {
			return fmt.Errorf("failed to encode allergens: %w", err)
		}
		var calories sql.NullFloat64
		if food.Calories != nil {
			calories = sql.NullFloat64{Float64: *food.Calories, Valid: true}
		}
		_, err = tx.Exec(foodQuery,
			meal.ID, food.Name, food.Protein, food.Carbs, food.Fat,
			calories, string(allergens))
		if err != nil {
			return fmt.Errorf("failed to insert food: %w", err)
		}
	}

	return tx.Commit()
}

// GetMeals returns meals newest first. Dates are YYYY-MM-DD and inclusive;
// empty dates leave that side open.
func (s *SQLiteStorage) GetMeals(startDate, endDate string, limit int) ([]*models.Meal, error) {
	query := `
        SELECT id, description, timestamp, total_protein, total_carbs, total_fat, created_at, source
        FROM meals
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND DATE(timestamp) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND DATE(timestamp) <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}

	var meals []*models.Meal
	for rows.Next() {
		meal := &models.Meal{}
		var timestampStr, createdAtStr, sourceStr string

		err := rows.Scan(
			&meal.ID, &meal.Description, &timestampStr,
			&meal.Total.Protein, &meal.Total.Carbs, &meal.Total.Fat,
			&createdAtStr, &sourceStr)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}

		if meal.Timestamp, err = time.Parse(timeLayout, timestampStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if meal.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		meal.Source = models.MealSource(sourceStr)

		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate meals: %w", err)
	}
	rows.Close()

	// Foods are loaded after the meal cursor is closed so a single-connection
	// pool does not deadlock.
	for _, meal := range meals {
		if err := s.loadFoodsForMeal(meal); err != nil {
			return nil, fmt.Errorf("failed to load foods for meal %s: %w", meal.ID, err)
		}
	}

	return meals, nil
}

func (s *SQLiteStorage) loadFoodsForMeal(meal *models.Meal) error {
	query := `
        SELECT name, protein, carbs, fat, calories, allergens
        FROM foods
        WHERE meal_id = ?
        ORDER BY id
    `

	rows, err := s.db.Query(query, meal.ID)
	if err != nil {
		return fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var foods []models.Food
	for rows.Next() {
		food := models.Food{}
		var calories sql.NullFloat64
		var allergensStr string

		err := rows.Scan(
			&food.Name, &food.Protein, &food.Carbs, &food.Fat,
			&calories, &allergensStr)
		if err != nil {
			return fmt.Errorf("failed to scan food: %w", err)
		}

		if calories.Valid {
			v := calories.Float64
			food.Calories = &v
		}
		if err := json.Unmarshal([]byte(allergensStr), &food.Allergens); err != nil {
			return fmt.Errorf("failed to decode allergens: %w", err)
		}
		foods = append(foods, food)
	}

	meal.Foods = foods
	return rows.Err()
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
