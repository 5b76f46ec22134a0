package domain

import "time"

// TradePair is a derived round-trip trade reconstructed from order records:
// one opening fill matched to at most one closing fill. Pairs are rebuilt
// from scratch on every refresh and carry no identity beyond the opening
// order's ID; consumers must treat them as ephemeral views, never persist
// them.
type TradePair struct {
	ID           int64         `json:"id"`           // Opening order's ID (the only stable key across runs)
	Symbol       string        `json:"symbol"`       // Trading symbol
	Direction    PositionSide  `json:"direction"`    // long or short, inferred from the opening order
	Open         *Order        `json:"open"`         // Opening order (always set)
	Close        *Order        `json:"close"`        // Closing order (nil while the pair is open)
	EntryPrice   float64       `json:"entryPrice"`   // Entry fill price
	ExitPrice    float64       `json:"exitPrice"`    // Exit fill price (0 while open)
	Quantity     float64       `json:"quantity"`     // Matched quantity
	Leverage     int           `json:"leverage"`     // Leverage multiplier from the opening order
	PnL          float64       `json:"pnl"`          // Absolute profit/loss
	PnLPct       float64       `json:"pnlPct"`       // Percentage profit/loss (leverage-adjusted)
	HoldDuration time.Duration `json:"holdDuration"` // Close minus open time; for open pairs, now minus open time
	Status       PairStatus    `json:"status"`       // open or closed
}

// IsOpen reports whether the pair still has no matched closing order.
func (p *TradePair) IsOpen() bool {
	return p.Status == PairOpen
}

// ActivityTime returns the most recent activity timestamp of the pair:
// the close time for closed pairs, the open time otherwise. Used for
// result ordering.
func (p *TradePair) ActivityTime() time.Time {
	if p.Close != nil {
		return p.Close.CreatedAt
	}
	return p.Open.CreatedAt
}
