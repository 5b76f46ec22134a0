package domain

import "time"

// SymbolGroup aggregates all trade pairs for one symbol. Derived,
// recomputed on every input change.
type SymbolGroup struct {
	Symbol       string    `json:"symbol"`
	TotalPnL     float64   `json:"totalPnL"`     // Sum of PnL over all pairs (realized + unrealized)
	OpenCount    int       `json:"openCount"`    // Number of open pairs
	ClosedCount  int       `json:"closedCount"`  // Number of closed pairs
	WinCount     int       `json:"winCount"`     // Closed pairs with positive PnL
	WinRate      float64   `json:"winRate"`      // WinCount/ClosedCount*100 (0 when no closed pairs)
	LastActivity time.Time `json:"lastActivity"` // Most recent pair activity in the group
}

// PortfolioTotals holds portfolio-level statistics across all symbols.
type PortfolioTotals struct {
	RealizedPnL   float64 `json:"realizedPnL"`   // Sum of PnL over closed pairs
	UnrealizedPnL float64 `json:"unrealizedPnL"` // Sum of mark-to-market PnL over open pairs
	TotalPnL      float64 `json:"totalPnL"`      // RealizedPnL + UnrealizedPnL
	OpenCount     int     `json:"openCount"`
	ClosedCount   int     `json:"closedCount"`
	WinCount      int     `json:"winCount"`
	WinRate       float64 `json:"winRate"` // 0 when no closed pairs
}
