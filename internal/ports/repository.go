package ports

import (
	"context"

	"pairWatch/internal/domain"
)

// OrderRepository defines the read-side interface over the bot's order store.
// The monitor never writes orders; the bot owns the table and only appends.
type OrderRepository interface {
	// FindRecent retrieves the most recent orders across all symbols, up to a limit.
	FindRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	// FindBySymbol retrieves the most recent orders for a given symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Order, error)
}

// DecisionRepository defines the read-side interface over the bot's decision records.
type DecisionRepository interface {
	// FindDecision retrieves the decision recorded for a (cycle, symbol) pair.
	// Returns nil, nil if no decision is found.
	FindDecision(ctx context.Context, cycleID, symbol string) (*domain.Decision, error)
	// FindRecentDecisions retrieves the most recent decisions, up to a limit.
	FindRecentDecisions(ctx context.Context, limit int) ([]*domain.Decision, error)
}

// PositionFeed provides the authoritative set of currently held positions
// as maintained by the bot. Used to validate unmatched-opener inference
// for spot pairs.
type PositionFeed interface {
	// FindOpenPositions retrieves all positions the bot currently reports as held.
	FindOpenPositions(ctx context.Context) ([]*domain.HeldPosition, error)
}
