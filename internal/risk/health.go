package risk

import (
	"fmt"
	"time"

	"pairWatch/internal/domain"
	"pairWatch/internal/pairing"
)

// Status is the overall risk-health level derived from a snapshot.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// warningFraction is the share of a limit at which a finding is raised
// before the limit is actually breached.
const warningFraction = 0.8

// Limits holds the configured risk thresholds the dashboard checks the
// reconstructed state against. A zero value disables the corresponding check.
type Limits struct {
	MaxOpenPairs int     // Maximum simultaneous open pairs
	MaxExposure  float64 // Maximum total notional exposure (quantity * entry * leverage)
	MaxDailyLoss float64 // Maximum realized loss per calendar day (positive number)
	MaxDrawdown  float64 // Maximum equity drawdown, as a fraction (e.g., 0.2)
}

// Health is the derived risk assessment for one snapshot. Like every other
// output of the engine it is recomputed from scratch each refresh.
type Health struct {
	Status           Status    `json:"status"`
	Findings         []string  `json:"findings"`
	OpenPairs        int       `json:"openPairs"`
	TotalExposure    float64   `json:"totalExposure"`
	DailyRealizedPnL float64   `json:"dailyRealizedPnL"`
	UnrealizedPnL    float64   `json:"unrealizedPnL"`
	MaxDrawdown      float64   `json:"maxDrawdown"`
	CheckedAt        time.Time `json:"checkedAt"`
}

// Assess derives the risk health of the current reconstructed state.
// now anchors the "today" window for the daily-loss check.
func Assess(now time.Time, pairs []*domain.TradePair, summary pairing.Summary, report *pairing.Report, limits Limits) Health {
	h := Health{
		Status:        StatusOK,
		OpenPairs:     summary.Totals.OpenCount,
		UnrealizedPnL: summary.Totals.UnrealizedPnL,
		CheckedAt:     now,
	}
	if report != nil {
		h.MaxDrawdown = report.MaxDrawdown
	}

	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	for _, p := range pairs {
		switch p.Status {
		case domain.PairOpen:
			h.TotalExposure += p.Quantity * p.EntryPrice * float64(p.Leverage)
		case domain.PairClosed:
			if p.Close != nil && !p.Close.CreatedAt.Before(dayStart) {
				h.DailyRealizedPnL += p.PnL
			}
		}
	}

	h.check(limits.MaxOpenPairs > 0, float64(h.OpenPairs), float64(limits.MaxOpenPairs),
		"open pairs %d of limit %d", h.OpenPairs, limits.MaxOpenPairs)
	h.check(limits.MaxExposure > 0, h.TotalExposure, limits.MaxExposure,
		"exposure %.2f of limit %.2f", h.TotalExposure, limits.MaxExposure)
	h.check(limits.MaxDailyLoss > 0, -h.DailyRealizedPnL, limits.MaxDailyLoss,
		"daily realized loss %.2f of limit %.2f", -h.DailyRealizedPnL, limits.MaxDailyLoss)
	h.check(limits.MaxDrawdown > 0, h.MaxDrawdown, limits.MaxDrawdown,
		"drawdown %.1f%% of limit %.1f%%", h.MaxDrawdown*100, limits.MaxDrawdown*100)

	return h
}

// check compares a value against its limit and raises a warning finding at
// warningFraction of the limit, a critical one at the limit itself.
func (h *Health) check(enabled bool, value, limit float64, format string, args ...interface{}) {
	if !enabled || value < limit*warningFraction {
		return
	}
	h.Findings = append(h.Findings, fmt.Sprintf(format, args...))
	if value >= limit {
		h.Status = StatusCritical
	} else if h.Status != StatusCritical {
		h.Status = StatusWarning
	}
}
