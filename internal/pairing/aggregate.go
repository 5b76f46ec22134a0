package pairing

import (
	"sort"

	"pairWatch/internal/domain"
)

// Summary is the aggregated view over one reconstruction run: per-symbol
// groups plus portfolio-level totals.
type Summary struct {
	BySymbol []*domain.SymbolGroup  `json:"bySymbol"`
	Totals   domain.PortfolioTotals `json:"totals"`
}

// Aggregate groups trade pairs by symbol and computes per-symbol and
// portfolio statistics. Pairs must already carry their PnL (see ComputePnL).
//
// Group ordering: groups containing at least one open pair sort before
// groups with none; ties are broken by most recent activity, descending.
func Aggregate(pairs []*domain.TradePair) Summary {
	groups := make(map[string]*domain.SymbolGroup)
	var order []string

	var totals domain.PortfolioTotals
	for _, p := range pairs {
		g, ok := groups[p.Symbol]
		if !ok {
			g = &domain.SymbolGroup{Symbol: p.Symbol}
			groups[p.Symbol] = g
			order = append(order, p.Symbol)
		}

		g.TotalPnL += p.PnL
		if at := p.ActivityTime(); at.After(g.LastActivity) {
			g.LastActivity = at
		}

		if p.Status == domain.PairClosed {
			g.ClosedCount++
			totals.ClosedCount++
			totals.RealizedPnL += p.PnL
			if p.PnL > 0 {
				g.WinCount++
				totals.WinCount++
			}
		} else {
			g.OpenCount++
			totals.OpenCount++
			totals.UnrealizedPnL += p.PnL
		}
	}

	bySymbol := make([]*domain.SymbolGroup, 0, len(order))
	for _, symbol := range order {
		g := groups[symbol]
		if g.ClosedCount > 0 {
			g.WinRate = float64(g.WinCount) / float64(g.ClosedCount) * 100
		}
		bySymbol = append(bySymbol, g)
	}

	sort.SliceStable(bySymbol, func(i, j int) bool {
		iOpen, jOpen := bySymbol[i].OpenCount > 0, bySymbol[j].OpenCount > 0
		if iOpen != jOpen {
			return iOpen
		}
		return bySymbol[i].LastActivity.After(bySymbol[j].LastActivity)
	})

	totals.TotalPnL = totals.RealizedPnL + totals.UnrealizedPnL
	if totals.ClosedCount > 0 {
		totals.WinRate = float64(totals.WinCount) / float64(totals.ClosedCount) * 100
	}

	return Summary{BySymbol: bySymbol, Totals: totals}
}
