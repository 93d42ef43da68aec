package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.CalculationRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (and creates if needed) the calculation store.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/tradecalc.db"
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
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

	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Calculation store ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS calculations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		take_profit_price REAL NOT NULL,
		stop_loss_price REAL NOT NULL,
		leverage REAL NOT NULL,
		bet_amount REAL NOT NULL,
		position_size REAL NOT NULL,
		price_move_fraction REAL NOT NULL,
		take_profit_fraction REAL NOT NULL,
		stop_loss_fraction REAL NOT NULL,
		profit REAL NOT NULL,
		profit_at_take_profit REAL NOT NULL,
		loss_at_stop_loss REAL NOT NULL,
		final_balance REAL NOT NULL,
		risk_reward_ratio REAL NOT NULL,
		liquidation_price REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_calculations_symbol_created ON calculations (symbol, created_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores calc and sets its ID.
func (r *Repository) Save(ctx context.Context, calc *domain.Calculation) (int64, error) {
	const query = `
	INSERT INTO calculations (symbol, source, direction, entry_price, exit_price, take_profit_price,
	                          stop_loss_price, leverage, bet_amount, position_size, price_move_fraction,
	                          take_profit_fraction, stop_loss_fraction, profit, profit_at_take_profit,
	                          loss_at_stop_loss, final_balance, risk_reward_ratio, liquidation_price, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now()
	}
	var exitPrice sql.NullFloat64
	if calc.Setup.ExitPrice != nil {
		exitPrice = sql.NullFloat64{Float64: *calc.Setup.ExitPrice, Valid: true}
	}

	s, m := calc.Setup, calc.Metrics
	result, err := r.db.ExecContext(ctx, query,
		calc.Symbol, calc.Source, s.Direction, s.EntryPrice, exitPrice, s.TakeProfitPrice,
		s.StopLossPrice, s.Leverage, s.BetAmount, m.PositionSize, m.PriceMoveFraction,
		m.TakeProfitFraction, m.StopLossFraction, m.Profit, m.ProfitAtTakeProfit,
		m.LossAtStopLoss, m.FinalBalance, m.RiskRewardRatio, calc.LiquidationPrice, calc.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert calculation for symbol %q: %w", calc.Symbol, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for calculation %q: %w", calc.Symbol, err)
	}
	calc.ID = id
	r.logger.Debug(ctx, "Calculation saved", map[string]interface{}{"calculationID": id, "symbol": calc.Symbol})
	return id, nil
}

const selectColumns = `
	SELECT id, symbol, source, direction, entry_price, exit_price, take_profit_price, stop_loss_price,
	       leverage, bet_amount, position_size, price_move_fraction, take_profit_fraction,
	       stop_loss_fraction, profit, profit_at_take_profit, loss_at_stop_loss, final_balance,
	       risk_reward_ratio, liquidation_price, created_at
	FROM calculations`

// FindByID retrieves a calculation by ID. Returns nil, nil if not found.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Calculation, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	calc, err := scanCalculation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query calculation by ID %d: %w", id, err)
	}
	return calc, nil
}

// FindLatest returns the most recent calculation. Returns nil, nil on an empty store.
func (r *Repository) FindLatest(ctx context.Context) (*domain.Calculation, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT 1`)
	calc, err := scanCalculation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest calculation: %w", err)
	}
	return calc, nil
}

// FindRecent retrieves up to limit calculations, newest first.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*domain.Calculation, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent calculations: %w", err)
	}
	return collect(rows)
}

// FindBySymbol retrieves up to limit calculations for symbol, newest first.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Calculation, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE symbol = ? ORDER BY created_at DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations for symbol %q: %w", symbol, err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]*domain.Calculation, error) {
	defer rows.Close()

	calcs := make([]*domain.Calculation, 0)
	for rows.Next() {
		calc, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		calcs = append(calcs, calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calculation rows: %w", err)
	}
	return calcs, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCalculation(s scanner) (*domain.Calculation, error) {
	c := &domain.Calculation{}
	var source, direction string
	var exitPrice sql.NullFloat64
	err := s.Scan(
		&c.ID, &c.Symbol, &source, &direction, &c.Setup.EntryPrice, &exitPrice,
		&c.Setup.TakeProfitPrice, &c.Setup.StopLossPrice, &c.Setup.Leverage, &c.Setup.BetAmount,
		&c.Metrics.PositionSize, &c.Metrics.PriceMoveFraction, &c.Metrics.TakeProfitFraction,
		&c.Metrics.StopLossFraction, &c.Metrics.Profit, &c.Metrics.ProfitAtTakeProfit,
		&c.Metrics.LossAtStopLoss, &c.Metrics.FinalBalance, &c.Metrics.RiskRewardRatio,
		&c.LiquidationPrice, &c.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	c.Source = domain.Source(source)
	c.Setup.Direction = domain.Direction(direction)
	if exitPrice.Valid {
		c.Setup.ExitPrice = domain.Price(exitPrice.Float64)
		c.Metrics.Realized = true
	}
	return c, nil
}
