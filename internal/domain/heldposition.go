package domain

import "time"

// HeldPosition is the authoritative open-position record maintained by the
// bot. Its entry price and quantity may have been averaged across several
// fills, so they supersede the single matched order's values when a spot
// pair is reported open.
type HeldPosition struct {
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	EntryPrice float64   `json:"entryPrice"`
	Leverage   int       `json:"leverage"`
	MarkPrice  float64   `json:"markPrice"` // Last mark price recorded by the bot (0 if unknown)
	UpdatedAt  time.Time `json:"updatedAt"`
}
