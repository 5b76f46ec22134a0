package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"pairWatch/internal/adapters/logger"
	"pairWatch/internal/adapters/sqlite"
	"pairWatch/internal/domain"
	"pairWatch/internal/pairing"
	"pairWatch/internal/utils"
)

// One-shot reconstruction: read the bot's order log, pair it up, and dump
// the result as CSV. No live prices are fetched; open pairs are reported
// flat at their entry price.
func main() {
	dbPath := flag.String("db", "trading_bot.db", "path to the bot's SQLite database")
	out := flag.String("out", "", "output CSV file (default trade_pairs_<date>.csv)")
	mode := flag.String("mode", string(domain.ModeLive), "trading mode to reconstruct (paper or live)")
	market := flag.String("market", string(domain.MarketSpot), "market type to reconstruct (spot or futures)")
	limit := flag.Int("limit", 500, "maximum number of recent orders to load")
	flag.Parse()

	if *limit <= 0 {
		log.Fatalf("FATAL: -limit must be positive, got %d", *limit)
	}

	appLogger, err := logger.NewZapLogger(logger.ParseLevel("WARN"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: *dbPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to open database %q: %v", *dbPath, err)
	}
	defer repo.Close()

	ctx := context.Background()

	orders, err := repo.FindRecent(ctx, *limit)
	if err != nil {
		log.Fatalf("FATAL: Failed to load orders: %v", err)
	}

	filtered := pairing.Normalize(orders, domain.TradingMode(*mode), domain.MarketType(*market))
	fmt.Printf("Loaded %d orders, %d after filtering (mode=%s market=%s)\n",
		len(orders), len(filtered), *mode, *market)

	opts := pairing.MatchOptions{Now: time.Now()}
	if positions, err := repo.FindOpenPositions(ctx); err == nil {
		held := make(map[string]*domain.HeldPosition, len(positions))
		for _, p := range positions {
			held[p.Symbol] = p
		}
		opts.SpotPositions = held
	}

	pairs, dropped := pairing.Match(filtered, opts)
	for _, p := range pairs {
		pairing.ComputePnL(p, func(symbol string, fallback float64) float64 {
			return fallback
		})
	}
	fmt.Printf("Reconstructed %d trade pairs (%d unmatched closers dropped)\n", len(pairs), len(dropped))

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("trade_pairs_%s.csv", time.Now().Format("20060102"))
	}
	if err := utils.WritePairsToCSVFile(pairs, filename); err != nil {
		log.Fatalf("FATAL: Failed to write CSV: %v", err)
	}
	fmt.Printf("Saved to %s\n", filename)
}
