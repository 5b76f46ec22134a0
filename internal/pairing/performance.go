package pairing

import (
	"math"
	"sort"
	"time"

	"pairWatch/internal/domain"
)

// Report holds performance metrics derived from closed trade pairs.
type Report struct {
	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	WinRate       float64 `json:"winRate"` // 0..1
	TotalProfit   float64 `json:"totalProfit"`
	AverageWin    float64 `json:"averageWin"`
	AverageLoss   float64 `json:"averageLoss"`
	ProfitFactor  float64 `json:"profitFactor"`
	Expectancy    float64 `json:"expectancy"`
	MaxDrawdown   float64 `json:"maxDrawdown"` // Fraction of peak cumulative PnL given up

	MaxConsecutiveWins   int           `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int           `json:"maxConsecutiveLosses"`
	AverageHoldDuration  time.Duration `json:"averageHoldDuration"`

	EquityCurve []EquityPoint `json:"equityCurve"`
}

// EquityPoint is one point on the cumulative realized-PnL curve.
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// AnalyzeClosed computes performance metrics over the closed pairs in the
// given set, processed in entry-time order. Open pairs are ignored; their
// mark-to-market PnL belongs in the aggregate summary, not the realized
// performance record.
func AnalyzeClosed(pairs []*domain.TradePair) *Report {
	report := &Report{EquityCurve: make([]EquityPoint, 0)}

	closed := make([]*domain.TradePair, 0, len(pairs))
	for _, p := range pairs {
		if p.Status == domain.PairClosed {
			closed = append(closed, p)
		}
	}
	if len(closed) == 0 {
		return report
	}

	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].Open.CreatedAt.Before(closed[j].Open.CreatedAt)
	})

	var equity, peak float64
	var consecutiveWins, consecutiveLosses int
	var totalHold time.Duration

	for _, p := range closed {
		report.TotalTrades++
		if p.PnL > 0 {
			report.WinningTrades++
			consecutiveWins++
			consecutiveLosses = 0
			report.AverageWin = (report.AverageWin*float64(report.WinningTrades-1) + p.PnL) / float64(report.WinningTrades)
		} else {
			report.LosingTrades++
			consecutiveLosses++
			consecutiveWins = 0
			report.AverageLoss = (report.AverageLoss*float64(report.LosingTrades-1) + p.PnL) / float64(report.LosingTrades)
		}
		if consecutiveWins > report.MaxConsecutiveWins {
			report.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > report.MaxConsecutiveLosses {
			report.MaxConsecutiveLosses = consecutiveLosses
		}

		equity += p.PnL
		report.TotalProfit += p.PnL
		totalHold += p.HoldDuration

		if equity > peak {
			peak = equity
		}
		var drawdown float64
		if peak > 0 {
			drawdown = (peak - equity) / peak
		}
		report.MaxDrawdown = math.Max(report.MaxDrawdown, drawdown)

		exitTime := p.Open.CreatedAt
		if p.Close != nil {
			exitTime = p.Close.CreatedAt
		}
		report.EquityCurve = append(report.EquityCurve, EquityPoint{
			Time:     exitTime,
			Value:    equity,
			Drawdown: drawdown,
		})
	}

	report.WinRate = float64(report.WinningTrades) / float64(report.TotalTrades)
	if report.AverageLoss != 0 {
		report.ProfitFactor = report.AverageWin / -report.AverageLoss
	}
	report.Expectancy = report.WinRate*report.AverageWin + (1-report.WinRate)*report.AverageLoss
	report.AverageHoldDuration = totalHold / time.Duration(len(closed))

	return report
}
