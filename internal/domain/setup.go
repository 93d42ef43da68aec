package domain

// TradeSetup is the complete input of a single calculation.
// It is built fresh for every input event and never mutated by the calculator.
type TradeSetup struct {
	Direction       Direction
	EntryPrice      float64  // Must be nonzero
	ExitPrice       *float64 // Realized exit; nil when only the planned levels are evaluated
	TakeProfitPrice float64
	StopLossPrice   float64
	Leverage        float64 // Position multiplier
	BetAmount       float64 // Own capital committed, in account currency
}

// Price returns a pointer to p, for filling TradeSetup.ExitPrice inline.
func Price(p float64) *float64 {
	return &p
}

// HasExit reports whether the setup carries a realized exit price.
func (s TradeSetup) HasExit() bool {
	return s.ExitPrice != nil
}
