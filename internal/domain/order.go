package domain

import "time"

// Order is an immutable order record produced by the trading bot.
// Orders are append-only facts; the monitor never mutates or writes them,
// it only derives trade pairs and statistics from the current set.
type Order struct {
	ID           int64        `json:"id"`           // Unique identifier assigned by the bot's store
	Symbol       string       `json:"symbol"`       // Trading symbol (e.g., "ETHUSDT")
	Side         OrderSide    `json:"side"`         // buy or sell
	PositionSide PositionSide `json:"positionSide"` // long or short (empty for spot, treated as long)
	Quantity     float64      `json:"quantity"`     // Order quantity (> 0)
	Price        float64      `json:"price"`        // Fill price (>= 0)
	Status       OrderStatus  `json:"status"`       // new, filled, partial, closed, cancelled
	ReduceOnly   bool         `json:"reduceOnly"`   // Futures flag: order can only reduce a position
	Leverage     int          `json:"leverage"`     // Leverage multiplier (>= 1; always 1 for spot)
	Mode         TradingMode  `json:"mode"`         // paper or live
	MarketType   MarketType   `json:"marketType"`   // spot or futures
	CycleID      string       `json:"cycleId"`      // Bot decision cycle that produced the order (optional)
	CreatedAt    time.Time    `json:"createdAt"`    // Timestamp assigned by the bot when the order was created
}

// Direction returns the position side of the order, defaulting to long
// for spot orders which carry no explicit position side.
func (o *Order) Direction() PositionSide {
	if o.PositionSide == Short {
		return Short
	}
	return Long
}

// IsOpener reports whether this order opens (or adds to) a position.
// Spot orders open on the buy side; futures orders open unless flagged
// reduce-only.
func (o *Order) IsOpener() bool {
	if o.MarketType == MarketFutures {
		return !o.ReduceOnly
	}
	return o.Side == Buy
}
