package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pairWatch/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pairwatch-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}

	return repo, cleanup
}

// insertOrder writes a fixture row the way the bot would.
func insertOrder(t *testing.T, r *Repository, o *domain.Order) {
	t.Helper()
	const query = `
	INSERT INTO orders (symbol, side, position_side, quantity, price, status, reduce_only,
	                    leverage, mode, market_type, cycle_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(context.Background(), query,
		o.Symbol, string(o.Side), string(o.PositionSide), o.Quantity, o.Price, string(o.Status),
		o.ReduceOnly, o.Leverage, string(o.Mode), string(o.MarketType), o.CycleID, o.CreatedAt)
	require.NoError(t, err)
}

func TestRepository_FindRecent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertOrder(t, repo, &domain.Order{
			Symbol:     "ETHUSDT",
			Side:       domain.Buy,
			Quantity:   1.0,
			Price:      2000 + float64(i),
			Status:     domain.OrderStatusFilled,
			Leverage:   1,
			Mode:       domain.ModeLive,
			MarketType: domain.MarketSpot,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	orders, err := repo.FindRecent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	// Newest first, bounded by the limit.
	assert.Equal(t, 2004.0, orders[0].Price)
	assert.Equal(t, 2003.0, orders[1].Price)
	assert.Equal(t, 2002.0, orders[2].Price)
	assert.Equal(t, domain.Buy, orders[0].Side)
	assert.Equal(t, domain.ModeLive, orders[0].Mode)
	assert.Equal(t, domain.MarketSpot, orders[0].MarketType)
}

func TestRepository_FindRecentEmpty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	orders, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRepository_FindBySymbol(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertOrder(t, repo, &domain.Order{
		Symbol: "ETHUSDT", Side: domain.Buy, Quantity: 1, Price: 2000,
		Status: domain.OrderStatusFilled, Leverage: 1, CreatedAt: base,
	})
	insertOrder(t, repo, &domain.Order{
		Symbol: "BTCUSDT", Side: domain.Buy, Quantity: 0.1, Price: 50000,
		Status: domain.OrderStatusFilled, Leverage: 1, CreatedAt: base.Add(time.Minute),
	})

	orders, err := repo.FindBySymbol(context.Background(), "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ETHUSDT", orders[0].Symbol)

	// Empty mode/market columns surface as empty strings, left for the
	// normalizer to default.
	assert.Equal(t, domain.TradingMode(""), orders[0].Mode)
	assert.Equal(t, domain.MarketType(""), orders[0].MarketType)
}

func TestRepository_FuturesOrderRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	insertOrder(t, repo, &domain.Order{
		Symbol:       "BTCUSDT",
		Side:         domain.Sell,
		PositionSide: domain.Short,
		Quantity:     0.02,
		Price:        50000,
		Status:       domain.OrderStatusFilled,
		ReduceOnly:   true,
		Leverage:     5,
		Mode:         domain.ModePaper,
		MarketType:   domain.MarketFutures,
		CycleID:      "cycle-42",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	orders, err := repo.FindRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, domain.Short, o.PositionSide)
	assert.True(t, o.ReduceOnly)
	assert.Equal(t, 5, o.Leverage)
	assert.Equal(t, domain.ModePaper, o.Mode)
	assert.Equal(t, domain.MarketFutures, o.MarketType)
	assert.Equal(t, "cycle-42", o.CycleID)
}

func TestRepository_FindDecision(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	const query = `
	INSERT INTO decisions (cycle_id, symbol, action, reasoning, confidence, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := repo.db.ExecContext(context.Background(), query,
		"cycle-1", "ETHUSDT", "open_long", "momentum breakout", 0.8,
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	d, err := repo.FindDecision(context.Background(), "cycle-1", "ETHUSDT")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "open_long", d.Action)
	assert.Equal(t, "momentum breakout", d.Reasoning)
	assert.Equal(t, 0.8, d.Confidence)

	// Missing decision is nil, nil — not an error.
	d, err = repo.FindDecision(context.Background(), "cycle-1", "BTCUSDT")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRepository_FindRecentDecisions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	const query = `
	INSERT INTO decisions (cycle_id, symbol, action, confidence, created_at)
	VALUES (?, ?, ?, ?, ?)`
	for i := 0; i < 3; i++ {
		_, err := repo.db.ExecContext(context.Background(), query,
			"cycle-1", "ETHUSDT", "hold", 0.5, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	decisions, err := repo.FindRecentDecisions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.True(t, decisions[0].CreatedAt.After(decisions[1].CreatedAt))
}

func TestRepository_FindOpenPositions(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	const query = `
	INSERT INTO positions (symbol, quantity, entry_price, leverage, mark_price, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.db.ExecContext(context.Background(), query, "ETHUSDT", 1.5, 1980.0, 1, 2010.0, now)
	require.NoError(t, err)
	// Zero quantity means the position was closed; it must not be reported.
	_, err = repo.db.ExecContext(context.Background(), query, "BTCUSDT", 0.0, 50000.0, 1, 0.0, now)
	require.NoError(t, err)

	positions, err := repo.FindOpenPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "ETHUSDT", positions[0].Symbol)
	assert.Equal(t, 1.5, positions[0].Quantity)
	assert.Equal(t, 1980.0, positions[0].EntryPrice)
}
