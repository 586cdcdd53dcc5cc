package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/config"
	"menu-recommender/internal/logger"
	"menu-recommender/internal/recommend"
	"menu-recommender/internal/server"
	"menu-recommender/internal/storage"
)

func newServeCommand() *cobra.Command {
	var (
		host     string
		port     int
		menuPath string
		dbPath   string
		noDB     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation form and MCP tools over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("menus") {
				cfg.MenuPath = menuPath
			}
			if flags.Changed("db-path") {
				cfg.DBPath = dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cfg, noDB)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host address")
	cmd.Flags().IntVar(&port, "port", 8000, "Port for HTTP transport")
	cmd.Flags().StringVar(&menuPath, "menus", "menus.json", "Menu catalog (JSON or YAML)")
	cmd.Flags().StringVar(&dbPath, "db-path", "meal-log.db", "Meal log database path")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Run without the meal log")
	return cmd
}

func runServer(cfg *config.Config, noDB bool) error {
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	engine, err := recommend.NewEngine(cfg.Engine())
	if err != nil {
		log.Error().Err(err).Msg("Invalid recommendation settings")
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srvCfg := &server.Config{
		Addr:     cfg.Addr(),
		Engine:   engine,
		Catalog:  catalog.NewFileLoader(cfg.MenuPath),
		Log:      log,
		Registry: registry,
	}
	if !noDB {
		stor, err := storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			log.Error().Err(err).Str("db_path", cfg.DBPath).Msg("Failed to open meal log")
			return err
		}
		srvCfg.Storage = stor
	}

	srv, err := server.NewMenuServer(srvCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create server")
		return err
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-sigCh:
		log.Info().Msg("Received shutdown signal")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Server error")
	}

	log.Info().Msg("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
	return runErr
}
