// Package calculator turns a trade setup into profit, loss and risk metrics.
// Every function here is pure: no I/O, no shared state, no retries.
package calculator

import (
	"fmt"
	"math"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/risk"
)

// Options tunes Compute. The zero value only rejects a zero entry price and
// lets every other input through unchecked.
type Options struct {
	// StrictValidation additionally rejects setups that are not a coherent
	// trade plan (see risk.ValidatePlan).
	StrictValidation bool
}

// Compute derives TradeMetrics from setup.
//
// Price moves are signed per direction: for a Long a level above entry is a
// positive fraction, for a Short a level below entry is. A stop loss placed on
// the profitable side therefore yields a positive LossAtStopLoss; this is
// passed through as-is unless opts.StrictValidation is set.
func Compute(setup domain.TradeSetup, opts Options) (domain.TradeMetrics, error) {
	if setup.EntryPrice == 0 {
		return domain.TradeMetrics{}, fmt.Errorf("%w: entry price must be nonzero", ports.ErrInvalidInput)
	}
	if !setup.Direction.IsValid() {
		return domain.TradeMetrics{}, fmt.Errorf("%w: unknown direction %q", ports.ErrInvalidInput, setup.Direction)
	}
	if opts.StrictValidation {
		if err := risk.ValidatePlan(setup); err != nil {
			return domain.TradeMetrics{}, err
		}
	}

	m := domain.TradeMetrics{
		PositionSize:       setup.BetAmount * setup.Leverage,
		TakeProfitFraction: moveFraction(setup.Direction, setup.EntryPrice, setup.TakeProfitPrice),
		StopLossFraction:   moveFraction(setup.Direction, setup.EntryPrice, setup.StopLossPrice),
	}
	if setup.ExitPrice != nil {
		m.Realized = true
		m.PriceMoveFraction = moveFraction(setup.Direction, setup.EntryPrice, *setup.ExitPrice)
	}

	m.Profit = m.PriceMoveFraction * m.PositionSize
	m.ProfitAtTakeProfit = m.TakeProfitFraction * m.PositionSize
	m.LossAtStopLoss = m.StopLossFraction * m.PositionSize
	m.FinalBalance = setup.BetAmount + m.Profit
	m.RiskRewardRatio = riskReward(m.ProfitAtTakeProfit, m.LossAtStopLoss)

	return m, nil
}

// EstimateLiquidationPrice returns the price at which a position opened at
// entryPrice with the given leverage loses all its margin. Here leverage is a
// divisor of the distance to liquidation, not a position multiplier.
func EstimateLiquidationPrice(entryPrice, leverage float64, direction domain.Direction) (float64, error) {
	if leverage == 0 {
		return 0, fmt.Errorf("%w: leverage must be nonzero to estimate liquidation", ports.ErrInvalidInput)
	}
	distance := entryPrice / leverage
	switch direction {
	case domain.Long:
		return entryPrice - distance, nil
	case domain.Short:
		return entryPrice + distance, nil
	default:
		return 0, fmt.Errorf("%w: unknown direction %q", ports.ErrInvalidInput, direction)
	}
}

// moveFraction is the signed fractional move from entry to level; positive
// means the level is profitable for direction.
func moveFraction(direction domain.Direction, entry, level float64) float64 {
	if direction == domain.Short {
		return (entry - level) / entry
	}
	return (level - entry) / entry
}

func riskReward(profitAtTakeProfit, lossAtStopLoss float64) float64 {
	atRisk := math.Abs(lossAtStopLoss)
	if atRisk == 0 {
		return 0
	}
	return math.Abs(profitAtTakeProfit) / atRisk
}
