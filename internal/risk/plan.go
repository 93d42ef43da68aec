package risk

import (
	"fmt"
	"strings"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

// PlanConfig holds the percentages used to derive protective levels that a
// signal did not state.
type PlanConfig struct {
	StopLossPercent   float64 // e.g. 0.03 for 3%; 0 leaves a missing stop loss untouched
	TakeProfitPercent float64 // e.g. 0.05 for 5%; 0 leaves a missing take profit untouched
}

// StopLossPrice returns the stop loss level pct away from entry on the losing side.
func StopLossPrice(entryPrice, pct float64, direction domain.Direction) float64 {
	if direction == domain.Long {
		return entryPrice * (1 - pct)
	}
	return entryPrice * (1 + pct)
}

// TakeProfitPrice returns the take profit level pct away from entry on the winning side.
func TakeProfitPrice(entryPrice, pct float64, direction domain.Direction) float64 {
	if direction == domain.Long {
		return entryPrice * (1 + pct)
	}
	return entryPrice * (1 - pct)
}

// FillLevels returns sig with a zero stop loss or take profit replaced by the
// percentage-derived level. Stated levels are never changed.
func (c PlanConfig) FillLevels(sig domain.Signal) domain.Signal {
	if !sig.Direction.IsValid() || sig.Entry == 0 {
		return sig
	}
	if sig.StopLoss == 0 && c.StopLossPercent > 0 {
		sig.StopLoss = StopLossPrice(sig.Entry, c.StopLossPercent, sig.Direction)
	}
	if sig.TakeProfit == 0 && c.TakeProfitPercent > 0 {
		sig.TakeProfit = TakeProfitPrice(sig.Entry, c.TakeProfitPercent, sig.Direction)
	}
	return sig
}

// ValidatePlan checks that a setup describes a coherent trade plan: positive
// entry, leverage of at least 1, a non-negative bet, and stop loss / take
// profit levels on the losing / winning side of entry for its direction.
// All problems are reported together.
func ValidatePlan(setup domain.TradeSetup) error {
	var errs []string

	entry := setup.EntryPrice
	if entry <= 0 {
		errs = append(errs, fmt.Sprintf("entry price %g must be positive", entry))
	}
	if setup.Leverage < 1 {
		errs = append(errs, fmt.Sprintf("leverage %g is below 1", setup.Leverage))
	}
	if setup.BetAmount < 0 {
		errs = append(errs, fmt.Sprintf("bet amount %g cannot be negative", setup.BetAmount))
	}
	if setup.ExitPrice != nil && *setup.ExitPrice < 0 {
		errs = append(errs, fmt.Sprintf("exit price %g cannot be negative", *setup.ExitPrice))
	}

	switch setup.Direction {
	case domain.Long:
		if setup.StopLossPrice >= entry {
			errs = append(errs, fmt.Sprintf("stop loss %g is not below entry %g for a long", setup.StopLossPrice, entry))
		}
		if setup.TakeProfitPrice <= entry {
			errs = append(errs, fmt.Sprintf("take profit %g is not above entry %g for a long", setup.TakeProfitPrice, entry))
		}
	case domain.Short:
		if setup.StopLossPrice <= entry {
			errs = append(errs, fmt.Sprintf("stop loss %g is not above entry %g for a short", setup.StopLossPrice, entry))
		}
		if setup.TakeProfitPrice >= entry {
			errs = append(errs, fmt.Sprintf("take profit %g is not below entry %g for a short", setup.TakeProfitPrice, entry))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown direction %q", setup.Direction))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: trade plan rejected: %s", ports.ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}
