package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-recommender/internal/recommend"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"MENU_PATH", "HISTORY_PATH", "DB_PATH", "HOST", "PORT", "LOG_LEVEL", "LOG_PRETTY", "TARGET_RATIOS", "MALE_CALORIES", "FEMALE_CALORIES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "menus.json", cfg.MenuPath)
	assert.Equal(t, "meal_history.json", cfg.HistoryPath)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, recommend.DefaultRatios, cfg.Ratios)
	assert.Equal(t, recommend.DefaultConfig(), cfg.Engine())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TARGET_RATIOS", "0.3,0.4,0.3")
	t.Setenv("MALE_CALORIES", "2700")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, recommend.Ratios{Protein: 0.3, Carbs: 0.4, Fat: 0.3}, cfg.Ratios)
	assert.Equal(t, 2700, cfg.MaleCalories)
	assert.False(t, cfg.LogPretty)
}

func TestLoad_InvalidRatios(t *testing.T) {
	t.Setenv("TARGET_RATIOS", "0.5,0.5,0.5")

	_, err := Load()
	assert.ErrorIs(t, err, recommend.ErrInvalidTargetProfile)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 0, Ratios: recommend.DefaultRatios, MaleCalories: 1, FemaleCalories: 1}
	assert.Error(t, cfg.Validate())

	cfg.Port = 80
	assert.NoError(t, cfg.Validate())

	cfg.FemaleCalories = 0
	assert.Error(t, cfg.Validate())
}
