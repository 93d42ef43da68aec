package domain

import "time"

// TradeMetrics is the derived output of a calculation. All monetary fields are
// in the bet's currency, all fractions are signed (positive = profitable for the
// setup's direction).
type TradeMetrics struct {
	PositionSize       float64 // BetAmount × Leverage
	PriceMoveFraction  float64 // Entry -> exit move, 0 when not Realized
	TakeProfitFraction float64
	StopLossFraction   float64
	Profit             float64 // At the exit price, 0 when not Realized
	ProfitAtTakeProfit float64
	LossAtStopLoss     float64
	FinalBalance       float64 // BetAmount + Profit
	RiskRewardRatio    float64 // |ProfitAtTakeProfit| / |LossAtStopLoss|, 0 when the stop risks nothing
	Realized           bool    // Whether an exit price was supplied
}

// Calculation is the flat record kept for a computed setup.
type Calculation struct {
	ID               int64
	Symbol           string
	Source           Source
	Setup            TradeSetup
	Metrics          TradeMetrics
	LiquidationPrice float64 // 0 when it could not be estimated (e.g. zero leverage)
	CreatedAt        time.Time
}
