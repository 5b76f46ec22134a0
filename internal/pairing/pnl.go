package pairing

import "pairWatch/internal/domain"

// PriceLookup returns the current live price for a symbol. Implementations
// must return the supplied fallback (normally the pair's entry price) when
// no live quote is available, so PnL is never computed against a missing
// value.
type PriceLookup func(symbol string, fallback float64) float64

// ComputePnL fills in the PnL and PnLPct fields of a trade pair and returns
// them. Closed pairs are valued at their exit price; open pairs are marked
// to the live price from lookup, falling back to the entry price (flat PnL)
// when no quote is available.
//
// Sign convention: long profits when price rises, short profits when price
// falls. Leverage multiplies only the percentage — the absolute PnL already
// reflects the true notional quantity. An entry price of zero yields a 0%
// PnL rather than dividing by zero.
func ComputePnL(pair *domain.TradePair, lookup PriceLookup) (pnl, pnlPct float64) {
	price := pair.ExitPrice
	if pair.Status != domain.PairClosed {
		price = pair.EntryPrice
		if lookup != nil {
			price = lookup(pair.Symbol, pair.EntryPrice)
		}
	}

	direction := 1.0
	if pair.Direction == domain.Short {
		direction = -1.0
	}

	pnl = (price - pair.EntryPrice) * pair.Quantity * direction
	if pair.EntryPrice > 0 {
		leverage := float64(pair.Leverage)
		if leverage < 1 {
			leverage = 1
		}
		pnlPct = (price - pair.EntryPrice) / pair.EntryPrice * 100 * direction * leverage
	}

	pair.PnL = pnl
	pair.PnLPct = pnlPct
	return pnl, pnlPct
}
