package pairing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairWatch/internal/domain"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// spotOrder builds a spot order n minutes after baseTime.
func spotOrder(id int64, symbol string, side domain.OrderSide, qty, price float64, minutes int) *domain.Order {
	return &domain.Order{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		Price:      price,
		Status:     domain.OrderStatusFilled,
		Leverage:   1,
		Mode:       domain.ModeLive,
		MarketType: domain.MarketSpot,
		CreatedAt:  baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

// futuresOrder builds a futures order n minutes after baseTime.
func futuresOrder(id int64, symbol string, posSide domain.PositionSide, reduceOnly bool, qty, price float64, leverage, minutes int) *domain.Order {
	side := domain.Buy
	if (posSide == domain.Short) != reduceOnly {
		side = domain.Sell
	}
	return &domain.Order{
		ID:           id,
		Symbol:       symbol,
		Side:         side,
		PositionSide: posSide,
		Quantity:     qty,
		Price:        price,
		Status:       domain.OrderStatusFilled,
		ReduceOnly:   reduceOnly,
		Leverage:     leverage,
		Mode:         domain.ModeLive,
		MarketType:   domain.MarketFutures,
		CreatedAt:    baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func matchTime(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func TestMatch_SpotScenario(t *testing.T) {
	// buy 1.0@100 at t0, sell 1.0@110 at t1, buy 2.0@105 at t2
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
		spotOrder(2, "ETHUSDT", domain.Sell, 1.0, 110, 1),
		spotOrder(3, "ETHUSDT", domain.Buy, 2.0, 105, 2),
	}

	pairs, dropped := Match(orders, MatchOptions{Now: matchTime(10)})
	require.Len(t, pairs, 2)
	assert.Empty(t, dropped)

	// Open pairs sort before closed ones.
	open := pairs[0]
	require.Equal(t, domain.PairOpen, open.Status)
	assert.Equal(t, int64(3), open.ID)
	assert.Equal(t, 105.0, open.EntryPrice)
	assert.Equal(t, 2.0, open.Quantity)
	assert.Nil(t, open.Close)
	assert.Equal(t, 0.0, open.ExitPrice)
	assert.Equal(t, 8*time.Minute, open.HoldDuration)

	closed := pairs[1]
	require.Equal(t, domain.PairClosed, closed.Status)
	assert.Equal(t, int64(1), closed.ID)
	assert.Equal(t, 100.0, closed.EntryPrice)
	assert.Equal(t, 110.0, closed.ExitPrice)
	assert.Equal(t, 1.0, closed.Quantity)
	assert.Equal(t, time.Minute, closed.HoldDuration)
	assert.Equal(t, domain.Long, closed.Direction)
}

func TestMatch_FIFOOrdering(t *testing.T) {
	// Three openers and two closers with identical quantities: the i-th
	// closer must pair with the i-th (by time) still-unmatched opener.
	orders := []*domain.Order{
		spotOrder(1, "BTCUSDT", domain.Buy, 0.5, 100, 0),
		spotOrder(2, "BTCUSDT", domain.Buy, 0.5, 101, 1),
		spotOrder(3, "BTCUSDT", domain.Buy, 0.5, 102, 2),
		spotOrder(4, "BTCUSDT", domain.Sell, 0.5, 110, 3),
		spotOrder(5, "BTCUSDT", domain.Sell, 0.5, 111, 4),
	}

	pairs, dropped := Match(orders, MatchOptions{
		Now:           matchTime(10),
		SpotPositions: map[string]*domain.HeldPosition{"BTCUSDT": {Symbol: "BTCUSDT"}},
	})
	require.Len(t, pairs, 3)
	assert.Empty(t, dropped)

	byID := make(map[int64]*domain.TradePair)
	for _, p := range pairs {
		byID[p.ID] = p
	}
	require.Equal(t, domain.PairClosed, byID[1].Status)
	assert.Equal(t, int64(4), byID[1].Close.ID)
	require.Equal(t, domain.PairClosed, byID[2].Status)
	assert.Equal(t, int64(5), byID[2].Close.ID)
	assert.Equal(t, domain.PairOpen, byID[3].Status)
}

func TestMatch_QuantityTolerance(t *testing.T) {
	tests := []struct {
		name      string
		openQty   float64
		closeQty  float64
		wantMatch bool
	}{
		{name: "exactly equal", openQty: 1.0, closeQty: 1.0, wantMatch: true},
		{name: "within relative tolerance", openQty: 1.0, closeQty: 1.0 + 1e-8, wantMatch: true},
		{name: "outside relative tolerance", openQty: 1.0, closeQty: 1.00001, wantMatch: false},
		{name: "large magnitudes within tolerance", openQty: 1e6, closeQty: 1e6 + 0.5, wantMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := []*domain.Order{
				spotOrder(1, "ETHUSDT", domain.Buy, tt.openQty, 100, 0),
				spotOrder(2, "ETHUSDT", domain.Sell, tt.closeQty, 110, 1),
			}
			pairs, dropped := Match(orders, MatchOptions{
				Now:           matchTime(5),
				SpotPositions: map[string]*domain.HeldPosition{"ETHUSDT": {Symbol: "ETHUSDT"}},
			})
			if tt.wantMatch {
				require.Len(t, pairs, 1)
				assert.Equal(t, domain.PairClosed, pairs[0].Status)
				assert.Empty(t, dropped)
			} else {
				require.Len(t, pairs, 1)
				assert.Equal(t, domain.PairOpen, pairs[0].Status)
				require.Len(t, dropped, 1)
				assert.Equal(t, int64(2), dropped[0].ID)
			}
		})
	}
}

func TestMatch_NoDoubleMatching(t *testing.T) {
	// One opener, two closers with the same quantity: the second closer has
	// nothing left to match and is dropped.
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
		spotOrder(2, "ETHUSDT", domain.Sell, 1.0, 110, 1),
		spotOrder(3, "ETHUSDT", domain.Sell, 1.0, 120, 2),
	}

	pairs, dropped := Match(orders, MatchOptions{Now: matchTime(5)})
	require.Len(t, pairs, 1)
	assert.Equal(t, domain.PairClosed, pairs[0].Status)
	assert.Equal(t, int64(2), pairs[0].Close.ID)
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(3), dropped[0].ID)
}

func TestMatch_Idempotence(t *testing.T) {
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
		spotOrder(2, "ETHUSDT", domain.Sell, 1.0, 110, 1),
		spotOrder(3, "BTCUSDT", domain.Buy, 0.1, 50000, 2),
		futuresOrder(4, "SOLUSDT", domain.Short, false, 10, 150, 3, 3),
	}
	opts := MatchOptions{
		Now: matchTime(10),
		SpotPositions: map[string]*domain.HeldPosition{
			"BTCUSDT": {Symbol: "BTCUSDT", Quantity: 0.1, EntryPrice: 50000},
		},
	}

	first, firstDropped := Match(orders, opts)
	second, secondDropped := Match(orders, opts)

	require.Equal(t, len(first), len(second))
	assert.Equal(t, len(firstDropped), len(secondDropped))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Status, second[i].Status)
		assert.Equal(t, first[i].EntryPrice, second[i].EntryPrice)
		assert.Equal(t, first[i].ExitPrice, second[i].ExitPrice)
		assert.Equal(t, first[i].Quantity, second[i].Quantity)
	}
}

func TestMatch_FuturesShortRoundTrip(t *testing.T) {
	orders := []*domain.Order{
		futuresOrder(1, "BTCUSDT", domain.Short, false, 0.02, 50000, 5, 0),
		futuresOrder(2, "BTCUSDT", domain.Short, true, 0.02, 49000, 5, 30),
	}

	pairs, dropped := Match(orders, MatchOptions{Now: matchTime(60)})
	require.Len(t, pairs, 1)
	assert.Empty(t, dropped)

	p := pairs[0]
	assert.Equal(t, domain.PairClosed, p.Status)
	assert.Equal(t, domain.Short, p.Direction)
	assert.Equal(t, 50000.0, p.EntryPrice)
	assert.Equal(t, 49000.0, p.ExitPrice)
	assert.Equal(t, 5, p.Leverage)
	assert.Equal(t, 30*time.Minute, p.HoldDuration)
}

func TestMatch_FuturesLongShortGroupedSeparately(t *testing.T) {
	// A short-side closer must never consume a long-side opener even when
	// quantities line up.
	orders := []*domain.Order{
		futuresOrder(1, "ETHUSDT", domain.Long, false, 1.0, 2000, 3, 0),
		futuresOrder(2, "ETHUSDT", domain.Short, true, 1.0, 1900, 3, 1),
	}

	pairs, dropped := Match(orders, MatchOptions{Now: matchTime(5)})
	require.Len(t, pairs, 1)
	assert.Equal(t, domain.PairOpen, pairs[0].Status)
	assert.Equal(t, domain.Long, pairs[0].Direction)
	require.Len(t, dropped, 1)
	assert.Equal(t, int64(2), dropped[0].ID)
}

func TestMatch_SpotGhostOpenerSuppressed(t *testing.T) {
	// The bot no longer holds ETHUSDT, so the unmatched opener is stale and
	// must not surface as an open pair.
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
	}

	pairs, dropped := Match(orders, MatchOptions{
		Now:           matchTime(5),
		SpotPositions: map[string]*domain.HeldPosition{},
	})
	assert.Empty(t, pairs)
	assert.Empty(t, dropped)
}

func TestMatch_SpotHeldPositionOverridesEntry(t *testing.T) {
	// The held position was averaged across fills; its entry price and
	// quantity supersede the matched order's values.
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
	}

	pairs, _ := Match(orders, MatchOptions{
		Now: matchTime(5),
		SpotPositions: map[string]*domain.HeldPosition{
			"ETHUSDT": {Symbol: "ETHUSDT", Quantity: 1.5, EntryPrice: 98.5},
		},
	})
	require.Len(t, pairs, 1)
	assert.Equal(t, 98.5, pairs[0].EntryPrice)
	assert.Equal(t, 1.5, pairs[0].Quantity)
}

func TestMatch_NilPositionFeedSkipsCrossCheck(t *testing.T) {
	// A nil positions map means the feed was unavailable; open spot pairs
	// must survive rather than all being suppressed.
	orders := []*domain.Order{
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
	}

	pairs, _ := Match(orders, MatchOptions{Now: matchTime(5)})
	require.Len(t, pairs, 1)
	assert.Equal(t, domain.PairOpen, pairs[0].Status)
	assert.Equal(t, 100.0, pairs[0].EntryPrice)
}

func TestMatch_ResultOrdering(t *testing.T) {
	orders := []*domain.Order{
		// Closed pair on ETHUSDT finishing at t+3.
		spotOrder(1, "ETHUSDT", domain.Buy, 1.0, 100, 0),
		spotOrder(2, "ETHUSDT", domain.Sell, 1.0, 110, 3),
		// Closed pair on BTCUSDT finishing at t+5.
		spotOrder(3, "BTCUSDT", domain.Buy, 0.1, 50000, 1),
		spotOrder(4, "BTCUSDT", domain.Sell, 0.1, 51000, 5),
		// Open pairs opened at t+2 and t+4.
		spotOrder(5, "SOLUSDT", domain.Buy, 10, 150, 2),
		spotOrder(6, "XRPUSDT", domain.Buy, 100, 0.5, 4),
	}

	pairs, _ := Match(orders, MatchOptions{Now: matchTime(10)})
	require.Len(t, pairs, 4)

	// Open first, newest activity first within each status.
	assert.Equal(t, int64(6), pairs[0].ID)
	assert.Equal(t, int64(5), pairs[1].ID)
	assert.Equal(t, int64(3), pairs[2].ID)
	assert.Equal(t, int64(1), pairs[3].ID)
}

func TestQuantitiesMatch(t *testing.T) {
	assert.True(t, quantitiesMatch(0, 0))
	assert.True(t, quantitiesMatch(1.0, 1.0))
	assert.True(t, quantitiesMatch(1.0, 1.0+5e-7))
	assert.False(t, quantitiesMatch(1.0, 1.0+2e-6))
	assert.False(t, quantitiesMatch(1.0, 2.0))
}
