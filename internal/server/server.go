// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"menu-recommender/internal/catalog"
	"menu-recommender/internal/models"
	"menu-recommender/internal/recommend"
)

const serverVersion = "1.0.0"

// MealStore persists eaten meals. storage.SQLiteStorage satisfies it.
type MealStore interface {
	SaveMeal(meal *models.Meal) error
	GetMeals(startDate, endDate string, limit int) ([]*models.Meal, error)
}

type Config struct {
	Addr     string // listen address, host:port
	Engine   *recommend.Engine
	Catalog  catalog.Loader
	Storage  MealStore // optional; meal tools are disabled without it
	Log      zerolog.Logger
	Registry *prometheus.Registry // optional; a private registry is created if nil
}

type MenuServer struct {
	info       protocol.Implementation
	httpServer *http.Server
	router     *chi.Mux
	engine     *recommend.Engine
	catalog    catalog.Loader
	storage    MealStore
	metrics    *Metrics
	registry   *prometheus.Registry
	log        zerolog.Logger
	tools      map[string]toolHandler
}

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

func NewMenuServer(cfg *Config) (*MenuServer, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Catalog == nil {
		return nil, errors.New("catalog loader is required")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := NewMetrics("menu_recommender", registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := &MenuServer{
		info: protocol.Implementation{
			Name:    "menu-recommender",
			Version: serverVersion,
		},
		router:   chi.NewRouter(),
		engine:   cfg.Engine,
		catalog:  cfg.Catalog,
		storage:  cfg.Storage,
		metrics:  metrics,
		registry: registry,
		log:      cfg.Log.With().Str("component", "server").Logger(),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *MenuServer) Handler() http.Handler {
	return s.router
}

func (s *MenuServer) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *MenuServer) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Get("/", s.handleIndex)
	s.router.Post("/recommend", s.handleRecommendForm)

	s.router.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))
		r.Post("/mcp", s.handleMCP)
		r.Get("/mcp/tools", s.handleListTools)
	})
}

func (s *MenuServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    s.info.Name,
		"version": s.info.Version,
	})
}

// handleMCP serves a single tools/call request per POST.
func (s *MenuServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errInvalidParams) || errors.Is(err, recommend.ErrInvalidTargetProfile) {
			status = http.StatusBadRequest
		}
		s.log.Warn().Err(err).Str("tool", request.Name).Msg("Tool call failed")
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *MenuServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"server": s.info,
		"tools":  s.toolNames(),
	})
}

func (s *MenuServer) Start(ctx context.Context) error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("Starting menu recommender server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MenuServer) Stop() error {
	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	if c, ok := s.storage.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// loggingMiddleware logs HTTP requests
func (s *MenuServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *MenuServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
