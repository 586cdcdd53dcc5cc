// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"menu-recommender/internal/recommend"
)

// Config holds application configuration
type Config struct {
	MenuPath       string // Catalog file, JSON or YAML
	HistoryPath    string // Meal history file for batch runs
	DBPath         string // SQLite meal log
	Host           string
	Port           int
	LogLevel       string
	LogPretty      bool
	Ratios         recommend.Ratios
	MaleCalories   int
	FemaleCalories int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	ratios := recommend.DefaultRatios
	if raw := getEnv("TARGET_RATIOS", ""); raw != "" {
		parsed, err := recommend.ParseRatios(raw)
		if err != nil {
			return nil, fmt.Errorf("TARGET_RATIOS: %w", err)
		}
		ratios = parsed
	}

	cfg := &Config{
		MenuPath:       getEnv("MENU_PATH", "menus.json"),
		HistoryPath:    getEnv("HISTORY_PATH", "meal_history.json"),
		DBPath:         getEnv("DB_PATH", "meal-log.db"),
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnvAsInt("PORT", 8000),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		Ratios:         ratios,
		MaleCalories:   getEnvAsInt("MALE_CALORIES", 2500),
		FemaleCalories: getEnvAsInt("FEMALE_CALORIES", 2000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaleCalories <= 0 || c.FemaleCalories <= 0 {
		return fmt.Errorf("calorie bases must be positive, got male=%d female=%d", c.MaleCalories, c.FemaleCalories)
	}
	return c.Ratios.Validate()
}

// Engine returns the recommendation engine settings.
func (c *Config) Engine() recommend.Config {
	return recommend.Config{
		Ratios:         c.Ratios,
		MaleCalories:   c.MaleCalories,
		FemaleCalories: c.FemaleCalories,
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
