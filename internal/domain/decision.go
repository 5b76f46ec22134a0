package domain

import "time"

// Decision is a strategy decision record produced by the bot for one cycle.
// Displayed alongside the orders it produced; the monitor only reads them.
type Decision struct {
	ID         int64     `json:"id"`
	CycleID    string    `json:"cycleId"` // Decision cycle identifier, links decisions to orders
	Symbol     string    `json:"symbol"`
	Action     string    `json:"action"`     // e.g., "open_long", "close_short", "hold"
	Reasoning  string    `json:"reasoning"`  // Free-form explanation recorded by the bot
	Confidence float64   `json:"confidence"` // 0..1 as reported by the bot
	CreatedAt  time.Time `json:"createdAt"`
}
