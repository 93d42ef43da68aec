package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log" // Use standard log only for errors before or after the logger's lifetime
	"os"
	"strings"

	"tradecalc/config"
	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/adapters/sqlite"
	"tradecalc/internal/app"
	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/report"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run executes one calculation. Deferred cleanups always complete before it returns.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tradecalc", flag.ContinueOnError)
	direction := fs.String("direction", "", "Trade direction: long or short")
	entry := fs.Float64("entry", 0, "Entry price")
	exit := fs.Float64("exit", 0, "Exit price")
	noExit := fs.Bool("no-exit", false, "Skip the realized profit at an exit price")
	tp := fs.Float64("tp", 0, "Take profit price")
	sl := fs.Float64("sl", 0, "Stop loss price")
	leverage := fs.Float64("leverage", 0, "Leverage multiplier")
	bet := fs.Float64("bet", 0, "Bet amount (margin)")
	symbol := fs.String("symbol", "", "Symbol recorded with the calculation")
	strict := fs.Bool("strict", false, "Reject incoherent trade plans (overrides STRICT_VALIDATION)")
	last := fs.Bool("last", false, "Start from the most recently stored calculation instead of the defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *strict {
		cfg.StrictValidation = true
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer syncLogger(appLogger)
	appLogger.Debug(ctx, "Logger initialized", ports.Fields{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	// 4. Initialize Application Service
	svc, err := app.NewCalculatorService(cfg, appLogger, repo)
	if err != nil {
		return fmt.Errorf("failed to initialize calculator service: %w", err)
	}

	// 5. Build the setup: defaults (or last run), then explicit flags
	sym := cfg.Defaults.Symbol
	setup, err := cfg.Defaults.Setup()
	if *last {
		sym, setup, err = svc.LastSetup(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare trade setup: %w", err)
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "direction":
			dir, err := domain.ParseDirection(*direction)
			if err != nil {
				flagErr = err
				return
			}
			setup.Direction = dir
		case "entry":
			setup.EntryPrice = *entry
		case "exit":
			setup.ExitPrice = domain.Price(*exit)
		case "tp":
			setup.TakeProfitPrice = *tp
		case "sl":
			setup.StopLossPrice = *sl
		case "leverage":
			setup.Leverage = *leverage
		case "bet":
			setup.BetAmount = *bet
		case "symbol":
			sym = strings.ToUpper(strings.TrimSpace(*symbol))
		}
	})
	if flagErr != nil {
		return fmt.Errorf("invalid flags: %w", flagErr)
	}
	if *noExit {
		setup.ExitPrice = nil
	}

	// 6. Calculate and report
	calc, err := svc.Calculate(ctx, sym, domain.SourceManual, setup)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}
	return report.WriteCalculation(stdout, calc, cfg.CurrencySymbol)
}

func syncLogger(l ports.Logger) {
	if s, ok := l.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
