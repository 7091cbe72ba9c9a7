// Package server exposes the planning core over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/itinerary/internal/config"
	"github.com/rcliao/itinerary/internal/model"
	"github.com/rcliao/itinerary/internal/planner"
	"github.com/rcliao/itinerary/internal/rules"
	"github.com/rcliao/itinerary/internal/scoring"
)

// Store is the persistence the API reads from.
type Store interface {
	planner.Store
	SaveComputedProfile(ctx context.Context, id int64, cp model.ComputedProfile) error
	GetItinerary(ctx context.Context, id string) (*model.ItineraryPlan, error)
}

// Server is the HTTP API.
type Server struct {
	store     Store
	pool      *planner.Pool
	profiler  *rules.Profiler
	scorer    *scoring.Scorer
	search    config.SearchConfig
	astarIter int
	router    *gin.Engine
}

// New wires the API over a store and a planning pool.
func New(st Store, pool *planner.Pool, cfg config.Config) *Server {
	s := &Server{
		store:     st,
		pool:      pool,
		profiler:  rules.NewProfiler(rules.NewEngine(rules.WithMaxIterations(cfg.Planner.MaxInferenceIterations))),
		scorer:    scoring.New(scoring.DefaultWeights),
		search:    cfg.Search,
		astarIter: cfg.Planner.MaxAStarIterations,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), observe())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/explore", s.handleExplore)
	v1.POST("/path", s.handlePath)
	v1.POST("/path/compare", s.handleCompare)
	v1.POST("/multistop", s.handleMultiStop)
	v1.POST("/profiles/:id/enrich", s.handleEnrich)
	v1.POST("/itineraries", s.handleGenerate)
	v1.POST("/itineraries/validate", s.handleValidate)
	v1.GET("/itineraries/:id", s.handleGetItinerary)
	v1.GET("/rules", s.handleRules)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
