package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pairWatch/config"
	"pairWatch/internal/domain"
	"pairWatch/internal/metrics"
	"pairWatch/internal/pairing"
	"pairWatch/internal/ports"
	"pairWatch/internal/risk"
)

// Snapshot is the fully derived state of one reconstruction pass. Every
// refresh produces a fresh Snapshot from an immutable view of the order
// store and the live price feed; nothing in it is ever mutated afterwards.
type Snapshot struct {
	ComputedAt     time.Time              `json:"computedAt"`
	Mode           domain.TradingMode     `json:"mode"`
	MarketType     domain.MarketType      `json:"marketType"`
	Orders         []*domain.Order        `json:"orders"`
	Positions      []*domain.HeldPosition `json:"positions"`
	Pairs          []*domain.TradePair    `json:"pairs"`
	Summary        pairing.Summary        `json:"summary"`
	Performance    *pairing.Report        `json:"performance"`
	Risk           risk.Health            `json:"risk"`
	DroppedClosers int                    `json:"droppedClosers"`
}

// decisionKey identifies one memoized decision lookup.
type decisionKey struct {
	cycleID string
	symbol  string
}

// MonitorService orchestrates the dashboard's reconstruction passes: it
// loads the current order snapshot, runs the pairing engine against live
// prices, and publishes the derived state for the API layer.
type MonitorService struct {
	cfg       *config.Config
	logger    ports.Logger
	orders    ports.OrderRepository
	decisions ports.DecisionRepository
	positions ports.PositionFeed
	prices    ports.PriceFeed

	// mu protects snapshot. Concurrent refreshes are safe to interleave
	// since each works on its own inputs; the last one to finish wins.
	mu       sync.RWMutex
	snapshot *Snapshot

	// Decision lookups are memoized for the session; decisions are immutable
	// once written by the bot, so the cache never needs invalidation. It is
	// unbounded, which is acceptable for a bounded dashboard session.
	cacheMu       sync.Mutex
	decisionCache map[decisionKey]*domain.Decision
}

// NewMonitorService creates a new application service instance.
func NewMonitorService(
	cfg *config.Config,
	logger ports.Logger,
	orders ports.OrderRepository,
	decisions ports.DecisionRepository,
	positions ports.PositionFeed,
	prices ports.PriceFeed,
) (*MonitorService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || orders == nil || decisions == nil || positions == nil || prices == nil {
		return nil, fmt.Errorf("missing required dependencies for MonitorService")
	}
	if cfg.OrderFetchLimit <= 0 {
		return nil, fmt.Errorf("configuration OrderFetchLimit must be positive")
	}
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("configuration RefreshInterval must be positive")
	}

	return &MonitorService{
		cfg:           cfg,
		logger:        logger,
		orders:        orders,
		decisions:     decisions,
		positions:     positions,
		prices:        prices,
		decisionCache: make(map[decisionKey]*domain.Decision),
	}, nil
}

// Start runs the refresh loop until the context is canceled. Signal
// handling is the caller's responsibility.
func (s *MonitorService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting monitor service", map[string]interface{}{
		"mode":            s.cfg.Mode,
		"marketType":      s.cfg.MarketType,
		"refreshInterval": s.cfg.RefreshInterval.String(),
	})

	if err := s.Refresh(ctx); err != nil {
		// A failed initial pass is not fatal: the store may simply be empty
		// or briefly locked by the bot. The loop retries on its interval.
		s.logger.Error(ctx, err, "Initial snapshot refresh failed")
	}

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Monitor service stopping", map[string]interface{}{"reason": ctx.Err().Error()})
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error(ctx, err, "Snapshot refresh failed, serving previous snapshot")
			}
		}
	}
}

// Refresh performs one full reconstruction pass and publishes the result.
// It is safe to call concurrently with itself and with Snapshot().
func (s *MonitorService) Refresh(ctx context.Context) error {
	started := time.Now()

	rawOrders, err := s.orders.FindRecent(ctx, s.cfg.OrderFetchLimit)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load order snapshot: %w", err)
	}

	normalized := pairing.Normalize(rawOrders, s.cfg.Mode, s.cfg.MarketType)

	held, err := s.positions.FindOpenPositions(ctx)
	if err != nil {
		// Degrade rather than fail: without the feed the matcher skips the
		// spot ghost-entry cross-check.
		s.logger.Warn(ctx, "Position feed unavailable, skipping spot cross-check", map[string]interface{}{"error": err.Error()})
		held = nil
	}
	var heldBySymbol map[string]*domain.HeldPosition
	if held != nil {
		heldBySymbol = make(map[string]*domain.HeldPosition, len(held))
		for _, p := range held {
			heldBySymbol[p.Symbol] = p
		}
	}

	pairs, dropped := pairing.Match(normalized, pairing.MatchOptions{
		Now:           started,
		SpotPositions: heldBySymbol,
	})
	if len(dropped) > 0 {
		metrics.UnmatchedClosers.Add(float64(len(dropped)))
		for _, o := range dropped {
			s.logger.Debug(ctx, "Dropped closing order with no matching opener", map[string]interface{}{
				"orderID": o.ID, "symbol": o.Symbol, "quantity": o.Quantity, "cycleID": o.CycleID,
			})
		}
	}

	lookup := s.priceLookup(ctx)
	for _, p := range pairs {
		pairing.ComputePnL(p, lookup)
	}

	summary := pairing.Aggregate(pairs)
	report := pairing.AnalyzeClosed(pairs)
	health := risk.Assess(started, pairs, summary, report, risk.Limits{
		MaxOpenPairs: s.cfg.MaxOpenPairs,
		MaxExposure:  s.cfg.MaxExposure,
		MaxDailyLoss: s.cfg.MaxDailyLoss,
		MaxDrawdown:  s.cfg.MaxDrawdown,
	})

	snap := &Snapshot{
		ComputedAt:     started,
		Mode:           s.cfg.Mode,
		MarketType:     s.cfg.MarketType,
		Orders:         normalized,
		Positions:      held,
		Pairs:          pairs,
		Summary:        summary,
		Performance:    report,
		Risk:           health,
		DroppedClosers: len(dropped),
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	metrics.RefreshDuration.Observe(time.Since(started).Seconds())
	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	metrics.OpenPairs.Set(float64(summary.Totals.OpenCount))
	metrics.ClosedPairs.Set(float64(summary.Totals.ClosedCount))
	metrics.TotalPnL.Set(summary.Totals.TotalPnL)

	s.logger.Debug(ctx, "Snapshot refreshed", map[string]interface{}{
		"orders":   len(normalized),
		"pairs":    len(pairs),
		"open":     summary.Totals.OpenCount,
		"closed":   summary.Totals.ClosedCount,
		"dropped":  len(dropped),
		"duration": time.Since(started).String(),
	})
	return nil
}

// Snapshot returns the most recently published snapshot, or nil if no
// refresh has succeeded yet.
func (s *MonitorService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Decision returns the bot's decision for a (cycle, symbol) pair, memoized
// for the lifetime of the service. Returns nil, nil when the bot recorded
// no decision.
func (s *MonitorService) Decision(ctx context.Context, cycleID, symbol string) (*domain.Decision, error) {
	if cycleID == "" {
		return nil, nil
	}
	key := decisionKey{cycleID: cycleID, symbol: symbol}

	s.cacheMu.Lock()
	if d, ok := s.decisionCache[key]; ok {
		s.cacheMu.Unlock()
		return d, nil
	}
	s.cacheMu.Unlock()

	d, err := s.decisions.FindDecision(ctx, cycleID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up decision for cycle %s symbol %s: %w", cycleID, symbol, err)
	}
	if d != nil {
		// Only cache hits: a decision may simply not be written yet.
		s.cacheMu.Lock()
		s.decisionCache[key] = d
		s.cacheMu.Unlock()
	}
	return d, nil
}

// RecentDecisions returns the most recent decisions straight from the store.
func (s *MonitorService) RecentDecisions(ctx context.Context, limit int) ([]*domain.Decision, error) {
	decisions, err := s.decisions.FindRecentDecisions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent decisions: %w", err)
	}
	return decisions, nil
}

// priceLookup builds a per-refresh memoized live-price lookup. Each symbol
// is fetched at most once per pass; failed lookups fall back to the entry
// price (flat PnL) without being cached, so the next pass retries.
func (s *MonitorService) priceLookup(ctx context.Context) pairing.PriceLookup {
	cache := make(map[string]float64)
	return func(symbol string, fallback float64) float64 {
		if price, ok := cache[symbol]; ok {
			return price
		}

		var price float64
		var err error
		if s.cfg.MarketType == domain.MarketFutures {
			price, err = s.prices.GetMarkPrice(ctx, symbol)
		} else {
			price, err = s.prices.GetSpotPrice(ctx, symbol)
		}
		if err != nil || price <= 0 {
			metrics.PriceFallbacks.Inc()
			s.logger.Warn(ctx, "Live price unavailable, using entry price", map[string]interface{}{"symbol": symbol})
			return fallback
		}

		cache[symbol] = price
		return price
	}
}
