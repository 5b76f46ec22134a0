package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pairWatch/internal/app"
	"pairWatch/internal/ports"
	"pairWatch/internal/utils"
)

const defaultDecisionLimit = 50

// Config holds the dependencies for the HTTP server.
type Config struct {
	Addr    string
	Logger  ports.Logger
	Service *app.MonitorService

	// StaleAfter is how old the published snapshot may grow before
	// /api/health starts reporting degraded. Typically a small multiple
	// of the refresh interval.
	StaleAfter time.Duration
}

// Server exposes the reconstructed trading state over HTTP.
type Server struct {
	cfg    Config
	logger ports.Logger
	svc    *app.MonitorService
	http   *http.Server
}

// NewServer creates the dashboard HTTP server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for API server")
	}
	if cfg.Service == nil {
		return nil, fmt.Errorf("monitor service is required for API server")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Second
	}

	s := &Server{cfg: cfg, logger: cfg.Logger, svc: cfg.Service}
	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: s.Router(),
	}
	return s, nil
}

// Router configures the Gin engine and its routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/pairs", s.getPairs)
		api.GET("/pairs/export", s.exportPairs)
		api.GET("/summary", s.getSummary)
		api.GET("/performance", s.getPerformance)
		api.GET("/risk", s.getRisk)
		api.GET("/orders", s.getOrders)
		api.GET("/positions", s.getPositions)
		api.GET("/decisions", s.getDecisions)
		api.GET("/decisions/:cycleID/:symbol", s.getDecision)
	}

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", map[string]interface{}{"addr": s.cfg.Addr})
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

// snapshot returns the current snapshot or replies 503 when no refresh
// has completed yet.
func (s *Server) snapshot(c *gin.Context) (*app.Snapshot, bool) {
	snap := s.svc.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
		return nil, false
	}
	return snap, true
}

func (s *Server) getHealth(c *gin.Context) {
	snap := s.svc.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "starting",
		})
		return
	}

	age := time.Since(snap.ComputedAt)
	status := "ok"
	code := http.StatusOK
	if age > s.cfg.StaleAfter {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":      status,
		"computedAt":  snap.ComputedAt,
		"snapshotAge": age.String(),
	})
}

func (s *Server) getPairs(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	pairs := snap.Pairs
	if status := c.Query("status"); status != "" {
		filtered := pairs[:0:0]
		for _, p := range pairs {
			if string(p.Status) == status {
				filtered = append(filtered, p)
			}
		}
		pairs = filtered
	}
	c.JSON(http.StatusOK, gin.H{
		"pairs":          pairs,
		"droppedClosers": snap.DroppedClosers,
		"computedAt":     snap.ComputedAt,
	})
}

func (s *Server) exportPairs(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trade_pairs.csv"`)
	if err := utils.WritePairsToCSV(snap.Pairs, c.Writer); err != nil {
		s.logger.Error(c.Request.Context(), err, "Failed to stream CSV export")
	}
}

func (s *Server) getSummary(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":    snap.Summary,
		"mode":       snap.Mode,
		"marketType": snap.MarketType,
		"computedAt": snap.ComputedAt,
	})
}

func (s *Server) getPerformance(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Performance)
}

func (s *Server) getRisk(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Risk)
}

func (s *Server) getOrders(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": snap.Orders, "computedAt": snap.ComputedAt})
}

func (s *Server) getPositions(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": snap.Positions, "computedAt": snap.ComputedAt})
}

func (s *Server) getDecisions(c *gin.Context) {
	limit := defaultDecisionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	decisions, err := s.svc.RecentDecisions(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error(c.Request.Context(), err, "Failed to load recent decisions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load decisions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": decisions})
}

func (s *Server) getDecision(c *gin.Context) {
	cycleID := c.Param("cycleID")
	symbol := c.Param("symbol")

	decision, err := s.svc.Decision(c.Request.Context(), cycleID, symbol)
	if err != nil {
		s.logger.Error(c.Request.Context(), err, "Failed to load decision", map[string]interface{}{
			"cycleID": cycleID,
			"symbol":  symbol,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load decision"})
		return
	}
	if decision == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "decision not found"})
		return
	}
	c.JSON(http.StatusOK, decision)
}
