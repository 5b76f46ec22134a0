package pairing

import "pairWatch/internal/domain"

// Normalize filters raw order records down to the account mode and market
// class the dashboard is scoped to. It is a pure filter: no reordering is
// performed (time ordering is always re-derived downstream from CreatedAt)
// and the input slice is never mutated.
//
// An empty mode defaults to live, an empty market type defaults to spot,
// both on the filter side and on the order side: records written before the
// bot recorded these fields are treated as live spot orders.
func Normalize(orders []*domain.Order, mode domain.TradingMode, marketType domain.MarketType) []*domain.Order {
	if mode == "" {
		mode = domain.ModeLive
	}
	if marketType == "" {
		marketType = domain.MarketSpot
	}

	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if o == nil {
			continue
		}
		oMode := o.Mode
		if oMode == "" {
			oMode = domain.ModeLive
		}
		oMarket := o.MarketType
		if oMarket == "" {
			oMarket = domain.MarketSpot
		}
		if oMode != mode || oMarket != marketType {
			continue
		}
		out = append(out, o)
	}
	return out
}
