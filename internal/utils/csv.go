package utils

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"pairWatch/internal/domain"
)

var pairCSVHeader = []string{
	"symbol", "direction", "status", "entry_price", "exit_price", "quantity",
	"leverage", "pnl", "pnl_pct", "opened_at", "closed_at", "hold_duration",
}

// WritePairsToCSV streams reconstructed trade pairs as CSV rows.
func WritePairsToCSV(pairs []*domain.TradePair, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write(pairCSVHeader)

	for _, p := range pairs {
		openedAt := ""
		if p.Open != nil {
			openedAt = p.Open.CreatedAt.Format(time.RFC3339)
		}
		closedAt := ""
		if p.Close != nil {
			closedAt = p.Close.CreatedAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			p.Symbol,
			string(p.Direction),
			string(p.Status),
			strconv.FormatFloat(p.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(p.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(p.Quantity, 'f', -1, 64),
			strconv.Itoa(p.Leverage),
			strconv.FormatFloat(p.PnL, 'f', -1, 64),
			strconv.FormatFloat(p.PnLPct, 'f', -1, 64),
			openedAt,
			closedAt,
			p.HoldDuration.String(),
		})
	}
	return writer.Error()
}

// WritePairsToCSVFile writes the pairs to a new file at filename.
func WritePairsToCSVFile(pairs []*domain.TradePair, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WritePairsToCSV(pairs, file)
}
