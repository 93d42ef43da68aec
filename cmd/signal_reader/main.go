package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"tradecalc/config"
	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/adapters/sqlite"
	"tradecalc/internal/adapters/telegram"
	"tradecalc/internal/analytics"
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

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("signal_reader", flag.ContinueOnError)
	all := fs.Bool("all", false, "Evaluate every recent signal instead of only the newest")
	notify := fs.Bool("notify", false, "Post the results back to TELEGRAM_CHAT_ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 3. Connect to Telegram
	bot, err := telegram.NewBot(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	source, err := telegram.NewSource(bot, telegram.Config{
		ChatID: cfg.TelegramChatID,
		Limit:  cfg.TelegramFetchLimit,
		Logger: appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize signal source: %w", err)
	}

	var notifier ports.Notifier
	if *notify {
		notifier, err = telegram.NewNotifier(bot, cfg.TelegramChatID, appLogger)
		if err != nil {
			return fmt.Errorf("failed to initialize notifier: %w", err)
		}
	}

	// 4. Initialize Repository and Service
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	defer repo.Close()

	svc, err := app.NewCalculatorService(cfg, appLogger, repo)
	if err != nil {
		return fmt.Errorf("failed to initialize calculator service: %w", err)
	}

	// 5. Fetch and evaluate
	signals, err := source.FetchSignals(ctx)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		_, err := fmt.Fprintln(stdout, "No trade signals found in recent messages.")
		return err
	}
	if !*all {
		signals = signals[:1]
	}

	evals := svc.EvaluateSignals(ctx, signals, nil)

	// 6. Report
	if len(evals) == 1 && evals[0].Calculation != nil {
		err = report.WriteCalculation(stdout, evals[0].Calculation, cfg.CurrencySymbol)
	} else {
		err = report.WriteBatch(stdout, evals, analytics.Summarize(evals), cfg.CurrencySymbol)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if notifier != nil {
		return notifier.Notify(ctx, messages(evals, cfg.CurrencySymbol))
	}
	return nil
}

func messages(evals []domain.Evaluation, currency string) string {
	parts := make([]string, 0, len(evals))
	for _, e := range evals {
		if e.Calculation == nil {
			continue
		}
		parts = append(parts, report.Message(e.Calculation, currency))
	}
	return strings.Join(parts, "\n\n")
}
