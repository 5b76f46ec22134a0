package pairing

import (
	"math"
	"sort"
	"time"

	"pairWatch/internal/domain"
)

// quantityTolerance is the relative tolerance used when matching an opening
// order's quantity against a closing order's quantity. Fill quantities come
// back from the exchange as decimal strings and may differ in the last few
// digits after float conversion.
const quantityTolerance = 1e-6

// MatchOptions carries the external inputs the matcher needs beyond the
// order list itself.
type MatchOptions struct {
	// Now anchors hold-duration computation for open pairs.
	// Defaults to time.Now() when zero.
	Now time.Time

	// SpotPositions is the authoritative set of currently held positions,
	// keyed by symbol. When set, an unmatched spot opener is only emitted
	// as an open pair if a position for its symbol is still held, and the
	// held position's averaged entry price and quantity supersede the
	// order's values. A nil map means the feed was unavailable and the
	// cross-check is skipped rather than suppressing every open spot pair.
	SpotPositions map[string]*domain.HeldPosition
}

// groupKey partitions orders for matching. Spot orders have no explicit
// position side and all land in the long group for their symbol.
type groupKey struct {
	symbol string
	side   domain.PositionSide
}

// Match reconstructs round-trip trade pairs from a raw order snapshot.
//
// Orders are partitioned by (symbol, position side) and each group is walked
// in CreatedAt order, maintaining a FIFO queue of unmatched opening orders.
// Each closing order is paired with the oldest still-unmatched opener whose
// quantity matches within quantityTolerance; openers left over at the end of
// the walk become open pairs. A closer with no matching opener is dropped
// rather than treated as an error — stop-loss or take-profit fills triggered
// outside the fetched order window look exactly like this — and returned in
// the second result so callers can surface the count.
//
// PnL fields of the returned pairs are zero; apply ComputePnL with a live
// price lookup to fill them in.
//
// Result ordering: open pairs before closed pairs, most recent activity
// first within each status.
func Match(orders []*domain.Order, opts MatchOptions) (pairs []*domain.TradePair, droppedClosers []*domain.Order) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	groups := make(map[groupKey][]*domain.Order)
	var keys []groupKey
	for _, o := range orders {
		if o == nil || o.Quantity <= 0 {
			continue
		}
		k := groupKey{symbol: o.Symbol, side: o.Direction()}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}
	// Deterministic group walk order keeps repeated runs structurally identical.
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].symbol != keys[j].symbol {
			return keys[i].symbol < keys[j].symbol
		}
		return keys[i].side < keys[j].side
	})

	pairs = make([]*domain.TradePair, 0, len(orders)/2)
	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		var openQueue []*domain.Order
		for _, o := range group {
			if o.IsOpener() {
				openQueue = append(openQueue, o)
				continue
			}

			// Closer: find the first (oldest) unmatched opener with a
			// matching quantity.
			matched := -1
			for i, opener := range openQueue {
				if quantitiesMatch(opener.Quantity, o.Quantity) {
					matched = i
					break
				}
			}
			if matched < 0 {
				droppedClosers = append(droppedClosers, o)
				continue
			}

			opener := openQueue[matched]
			openQueue = append(openQueue[:matched], openQueue[matched+1:]...)
			pairs = append(pairs, &domain.TradePair{
				ID:           opener.ID,
				Symbol:       opener.Symbol,
				Direction:    opener.Direction(),
				Open:         opener,
				Close:        o,
				EntryPrice:   opener.Price,
				ExitPrice:    o.Price,
				Quantity:     o.Quantity,
				Leverage:     pairLeverage(opener),
				HoldDuration: o.CreatedAt.Sub(opener.CreatedAt),
				Status:       domain.PairClosed,
			})
		}

		for _, opener := range openQueue {
			pair := &domain.TradePair{
				ID:           opener.ID,
				Symbol:       opener.Symbol,
				Direction:    opener.Direction(),
				Open:         opener,
				EntryPrice:   opener.Price,
				Quantity:     opener.Quantity,
				Leverage:     pairLeverage(opener),
				HoldDuration: now.Sub(opener.CreatedAt),
				Status:       domain.PairOpen,
			}
			if opener.MarketType != domain.MarketFutures && opts.SpotPositions != nil {
				held, ok := opts.SpotPositions[opener.Symbol]
				if !ok || held == nil {
					// Stale entry: the bot no longer holds the symbol, so
					// the matching closer must have happened outside the
					// fetched window. Suppress rather than show a ghost.
					continue
				}
				// The held position's entry price and quantity may have been
				// averaged over several fills; they win over the single order.
				if held.EntryPrice > 0 {
					pair.EntryPrice = held.EntryPrice
				}
				if held.Quantity > 0 {
					pair.Quantity = held.Quantity
				}
			}
			pairs = append(pairs, pair)
		}
	}

	sortPairs(pairs)
	return pairs, droppedClosers
}

// quantitiesMatch reports whether two quantities are equal within
// quantityTolerance relative tolerance.
func quantitiesMatch(a, b float64) bool {
	if a == b {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return true
	}
	return math.Abs(a-b)/largest < quantityTolerance
}

// pairLeverage returns the opener's leverage clamped to at least 1.
func pairLeverage(o *domain.Order) int {
	if o.Leverage < 1 {
		return 1
	}
	return o.Leverage
}

// sortPairs orders pairs for display: open before closed, then most recent
// activity first.
func sortPairs(pairs []*domain.TradePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Status != pairs[j].Status {
			return pairs[i].Status == domain.PairOpen
		}
		return pairs[i].ActivityTime().After(pairs[j].ActivityTime())
	})
}
