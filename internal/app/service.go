package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tradecalc/config"
	"tradecalc/internal/calculator"
	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/risk"
)

const defaultHistoryLimit = 20

// CalculatorService turns trade setups and signals into stored calculations.
type CalculatorService struct {
	cfg    *config.Config
	logger ports.Logger
	repo   ports.CalculationRepository
	plan   risk.PlanConfig
	opts   calculator.Options
}

// NewCalculatorService creates a new application service instance.
func NewCalculatorService(
	cfg *config.Config,
	logger ports.Logger,
	repo ports.CalculationRepository,
) (*CalculatorService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for CalculatorService")
	}

	if cfg.BatchWorkers <= 0 {
		return nil, fmt.Errorf("configuration BatchWorkers must be positive")
	}
	if cfg.DefaultStopLossPct < 0 || cfg.DefaultStopLossPct >= 1 {
		return nil, fmt.Errorf("configuration DefaultStopLossPct must be between 0 and 1")
	}
	if cfg.DefaultTakeProfitPct < 0 {
		return nil, fmt.Errorf("configuration DefaultTakeProfitPct cannot be negative")
	}

	return &CalculatorService{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		plan: risk.PlanConfig{
			StopLossPercent:   cfg.DefaultStopLossPct,
			TakeProfitPercent: cfg.DefaultTakeProfitPct,
		},
		opts: calculator.Options{StrictValidation: cfg.StrictValidation},
	}, nil
}

// Calculate computes the metrics for setup, estimates the liquidation price and
// stores the result.
func (s *CalculatorService) Calculate(ctx context.Context, symbol string, source domain.Source, setup domain.TradeSetup) (*domain.Calculation, error) {
	calc, err := s.compute(ctx, symbol, source, setup)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Save(ctx, calc)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to save calculation", ports.Fields{"symbol": symbol})
		return nil, fmt.Errorf("failed to save calculation: %w", err)
	}
	calc.ID = id

	s.logger.Info(ctx, "Calculation stored", ports.Fields{
		"id":            id,
		"symbol":        symbol,
		"direction":     setup.Direction,
		"position_size": calc.Metrics.PositionSize,
		"risk_reward":   calc.Metrics.RiskRewardRatio,
	})
	return calc, nil
}

func (s *CalculatorService) compute(ctx context.Context, symbol string, source domain.Source, setup domain.TradeSetup) (*domain.Calculation, error) {
	metrics, err := calculator.Compute(setup, s.opts)
	if err != nil {
		s.logger.Warn(ctx, "Trade setup rejected", ports.Fields{"symbol": symbol, "error": err.Error()})
		return nil, err
	}

	calc := &domain.Calculation{
		Symbol:  symbol,
		Source:  source,
		Setup:   setup,
		Metrics: metrics,
	}

	liq, err := calculator.EstimateLiquidationPrice(setup.EntryPrice, setup.Leverage, setup.Direction)
	if err != nil {
		s.logger.Debug(ctx, "Liquidation price not estimated", ports.Fields{"symbol": symbol, "error": err.Error()})
	} else {
		calc.LiquidationPrice = liq
	}
	return calc, nil
}

// SignalSetup completes a signal with the configured defaults and converts it
// into a trade setup.
func (s *CalculatorService) SignalSetup(sig domain.Signal, exit *float64) (domain.Signal, domain.TradeSetup) {
	if sig.Leverage == 0 {
		sig.Leverage = s.cfg.Defaults.Leverage
	}
	sig = s.plan.FillLevels(sig)
	return sig, sig.Setup(s.cfg.Defaults.BetAmount, exit)
}

// EvaluateSignals calculates every signal using a bounded pool of workers.
// Results keep the order of signals. A failing signal does not stop the batch;
// its error is reported in the matching Evaluation.
func (s *CalculatorService) EvaluateSignals(ctx context.Context, signals []domain.Signal, exit *float64) []domain.Evaluation {
	results := make([]domain.Evaluation, len(signals))
	if len(signals) == 0 {
		return results
	}

	workers := s.cfg.BatchWorkers
	if workers > len(signals) {
		workers = len(signals)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.evaluate(ctx, signals[i], exit)
			}
		}()
	}

	// Feed jobs until done or cancelled; unfed signals get the context error.
	next := 0
feed:
	for ; next < len(signals); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(signals); i++ {
		results[i] = domain.Evaluation{Signal: signals[i], Err: ctx.Err()}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "Signal batch evaluated", ports.Fields{
		"signals": len(signals),
		"failed":  failed,
		"workers": workers,
	})
	return results
}

func (s *CalculatorService) evaluate(ctx context.Context, sig domain.Signal, exit *float64) domain.Evaluation {
	if err := ctx.Err(); err != nil {
		return domain.Evaluation{Signal: sig, Err: err}
	}

	sig, setup := s.SignalSetup(sig, exit)
	source := sig.Source
	if source == "" {
		source = domain.SourceManual
	}

	calc, err := s.Calculate(ctx, sig.Token, source, setup)
	if err != nil {
		return domain.Evaluation{Signal: sig, Err: err}
	}
	return domain.Evaluation{Signal: sig, Calculation: calc}
}

// History returns the most recent stored calculations, newest first.
// A non-positive limit uses the default.
func (s *CalculatorService) History(ctx context.Context, limit int) ([]*domain.Calculation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	calcs, err := s.repo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return calcs, nil
}

// SymbolHistory returns the most recent calculations for one symbol.
func (s *CalculatorService) SymbolHistory(ctx context.Context, symbol string, limit int) ([]*domain.Calculation, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	calcs, err := s.repo.FindBySymbol(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", symbol, err)
	}
	return calcs, nil
}

// Calculation returns one stored calculation.
func (s *CalculatorService) Calculation(ctx context.Context, id int64) (*domain.Calculation, error) {
	calc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load calculation %d: %w", id, err)
	}
	if calc == nil {
		return nil, fmt.Errorf("calculation %d: %w", id, ports.ErrNotFound)
	}
	return calc, nil
}

// LastSetup returns the symbol and setup of the latest stored calculation so a
// new run can start from the previous inputs. When nothing is stored yet it
// falls back to the configured defaults.
func (s *CalculatorService) LastSetup(ctx context.Context) (string, domain.TradeSetup, error) {
	latest, err := s.repo.FindLatest(ctx)
	if err != nil {
		return "", domain.TradeSetup{}, fmt.Errorf("failed to load latest calculation: %w", err)
	}
	if latest != nil {
		return latest.Symbol, latest.Setup, nil
	}

	setup, err := s.cfg.Defaults.Setup()
	if err != nil {
		return "", domain.TradeSetup{}, errors.Join(ports.ErrConfigurationError, err)
	}
	s.logger.Debug(ctx, "No stored calculation, using defaults")
	return s.cfg.Defaults.Symbol, setup, nil
}
