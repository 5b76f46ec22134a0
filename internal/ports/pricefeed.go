package ports

import (
	"context"
	"time"
)

// PriceFeed defines the interface for retrieving live market prices.
// This abstraction allows decoupling the monitor from specific exchange
// implementations.
type PriceFeed interface {
	// GetSpotPrice retrieves the last traded spot price for a given symbol.
	GetSpotPrice(ctx context.Context, symbol string) (float64, error)

	// GetMarkPrice retrieves the current futures mark price for a given symbol.
	GetMarkPrice(ctx context.Context, symbol string) (float64, error)

	// Ping checks the connectivity to the feed API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the feed.
	GetServerTime(ctx context.Context) (time.Time, error)
}
