package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pairWatch/internal/domain"
	"pairWatch/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.OrderRepository, ports.DecisionRepository
// and ports.PositionFeed interfaces over the bot's SQLite database. The bot
// owns these tables and appends to them; the monitor only ever reads.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens the bot's database read side.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trading_bot.db" // Default path
	}

	// Create data directory if it doesn't exist (fresh deployments start the
	// monitor before the bot has written anything).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode lets the monitor read while the bot writes.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, but the Go driver benefits from
	// limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	// The bot normally creates the schema; doing it here too lets the monitor
	// come up first on a fresh deployment instead of failing its queries.
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist. Mirrors the schema the
// bot writes; kept in sync manually.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		position_side TEXT DEFAULT NULL,
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		status TEXT NOT NULL,
		reduce_only INTEGER NOT NULL DEFAULT 0,
		leverage INTEGER NOT NULL DEFAULT 1,
		mode TEXT DEFAULT NULL,
		market_type TEXT DEFAULT NULL,
		cycle_id TEXT DEFAULT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cycle_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		action TEXT NOT NULL,
		reasoning TEXT DEFAULT NULL,
		confidence REAL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS positions (
		symbol TEXT PRIMARY KEY,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		leverage INTEGER NOT NULL DEFAULT 1,
		mark_price REAL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_orders_symbol_created_at ON orders (symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_cycle_symbol ON decisions (cycle_id, symbol);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

const orderColumns = `id, symbol, side, COALESCE(position_side, ''), quantity, price, status,
	       reduce_only, leverage, COALESCE(mode, ''), COALESCE(market_type, ''),
	       COALESCE(cycle_id, ''), created_at`

// --- OrderRepository Implementation ---

// FindRecent retrieves the most recent orders across all symbols, up to a limit.
// Results come back newest first; the matcher re-derives time ordering per group.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// FindBySymbol retrieves the most recent orders for a given symbol, up to a limit.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE symbol = ? ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders for symbol %s: %w", symbol, err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// --- DecisionRepository Implementation ---

// FindDecision retrieves the decision recorded for a (cycle, symbol) pair.
func (r *Repository) FindDecision(ctx context.Context, cycleID, symbol string) (*domain.Decision, error) {
	const query = `
	SELECT id, cycle_id, symbol, action, COALESCE(reasoning, ''), COALESCE(confidence, 0), created_at
	FROM decisions
	WHERE cycle_id = ? AND symbol = ?
	ORDER BY created_at DESC LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, cycleID, symbol)
	d := &domain.Decision{}
	err := row.Scan(&d.ID, &d.CycleID, &d.Symbol, &d.Action, &d.Reasoning, &d.Confidence, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug(ctx, "No decision found", map[string]interface{}{"cycleID": cycleID, "symbol": symbol})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query decision for cycle %s symbol %s: %w", cycleID, symbol, err)
	}
	return d, nil
}

// FindRecentDecisions retrieves the most recent decisions, up to a limit.
func (r *Repository) FindRecentDecisions(ctx context.Context, limit int) ([]*domain.Decision, error) {
	const query = `
	SELECT id, cycle_id, symbol, action, COALESCE(reasoning, ''), COALESCE(confidence, 0), created_at
	FROM decisions
	ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions: %w", err)
	}
	defer rows.Close()

	decisions := make([]*domain.Decision, 0)
	for rows.Next() {
		d := &domain.Decision{}
		if err := rows.Scan(&d.ID, &d.CycleID, &d.Symbol, &d.Action, &d.Reasoning, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision during FindRecentDecisions: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows: %w", err)
	}
	return decisions, nil
}

// --- PositionFeed Implementation ---

// FindOpenPositions retrieves all positions the bot currently reports as held.
func (r *Repository) FindOpenPositions(ctx context.Context) ([]*domain.HeldPosition, error) {
	const query = `
	SELECT symbol, quantity, entry_price, leverage, COALESCE(mark_price, 0), updated_at
	FROM positions
	WHERE quantity > 0`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	positions := make([]*domain.HeldPosition, 0)
	for rows.Next() {
		p := &domain.HeldPosition{}
		if err := rows.Scan(&p.Symbol, &p.Quantity, &p.EntryPrice, &p.Leverage, &p.MarkPrice, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan position during FindOpenPositions: %w", err)
		}
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position rows: %w", err)
	}
	return positions, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// collectOrders drains a result set into a slice of orders.
func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// scanOrder scans a row into a domain.Order struct.
func scanOrder(s scanner) (*domain.Order, error) {
	o := &domain.Order{}
	var side, positionSide, status, mode, marketType string
	err := s.Scan(
		&o.ID, &o.Symbol, &side, &positionSide, &o.Quantity, &o.Price, &status,
		&o.ReduceOnly, &o.Leverage, &mode, &marketType, &o.CycleID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Side = domain.OrderSide(side)
	o.PositionSide = domain.PositionSide(positionSide)
	o.Status = domain.OrderStatus(status)
	o.Mode = domain.TradingMode(mode)
	o.MarketType = domain.MarketType(marketType)
	return o, nil
}
