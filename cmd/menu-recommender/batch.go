package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/config"
	"menu-recommender/internal/models"
	"menu-recommender/internal/recommend"
	"menu-recommender/internal/storage"
)

type batchOptions struct {
	historyPath string
	menuPath    string
	historyDB   string
	since       string
	exclude     []string
	calories    float64
	ratios      string
}

func newRecommendCommand() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend one menu item from a meal history and a menu file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("history") {
				opts.historyPath = cfg.HistoryPath
			}
			if !cmd.Flags().Changed("menus") {
				opts.menuPath = cfg.MenuPath
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.historyPath, "history", "meal_history.json", "Meal history file (JSON or YAML)")
	flags.StringVar(&opts.menuPath, "menus", "menus.json", "Menu catalog (JSON or YAML)")
	flags.StringVar(&opts.historyDB, "history-db", "", "Read consumed meals from this meal log instead of --history")
	flags.StringVar(&opts.since, "since", "", "First day of logged meals to count (YYYY-MM-DD, default today)")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "Allergens to exclude")
	flags.Float64Var(&opts.calories, "calories", 0, "Daily calorie target; compares grams instead of ratios")
	flags.StringVar(&opts.ratios, "ratios", "", "Target ratios as protein,carbs,fat")
	return cmd
}

func runBatch(ctx context.Context, out io.Writer, cfg *config.Config, opts batchOptions) error {
	engineCfg := cfg.Engine()
	if opts.ratios != "" {
		r, err := recommend.ParseRatios(opts.ratios)
		if err != nil {
			return err
		}
		engineCfg.Ratios = r
	}
	engine, err := recommend.NewEngine(engineCfg)
	if err != nil {
		return err
	}

	target := engine.DefaultTarget()
	if opts.calories != 0 {
		if target, err = engine.CalorieTarget(opts.calories); err != nil {
			return err
		}
	}

	consumed, err := loadConsumed(opts)
	if err != nil {
		return err
	}

	menus, err := catalog.NewFileLoader(opts.menuPath).Load(ctx)
	if err != nil {
		return err
	}

	rec, ok := engine.Recommend(consumed, target, menus, opts.exclude)
	if !ok {
		_, err = fmt.Fprintln(out, "No recommendation found")
		return err
	}
	_, err = fmt.Fprintln(out, "Recommended menu:", rec.Item.Name)
	return err
}

func loadConsumed(opts batchOptions) (models.MacroVector, error) {
	if opts.historyDB == "" {
		history, err := catalog.LoadHistory(opts.historyPath)
		if err != nil {
			return models.MacroVector{}, err
		}
		return recommend.Aggregate(history), nil
	}

	stor, err := storage.NewSQLiteStorage(opts.historyDB)
	if err != nil {
		return models.MacroVector{}, err
	}
	defer stor.Close()

	since := opts.since
	if since == "" {
		since = time.Now().UTC().Format("2006-01-02")
	}
	meals, err := stor.GetMeals(since, "", 1000)
	if err != nil {
		return models.MacroVector{}, err
	}
	return recommend.Aggregate(meals), nil
}
