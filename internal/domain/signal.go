package domain

import "time"

// Signal is a trade idea read from a signal file or a message channel.
type Signal struct {
	ID         string
	Token      string
	Direction  Direction
	Entry      float64
	TakeProfit float64
	StopLoss   float64
	Leverage   float64 // 0 when the source did not state one
	Confidence float64 // Percent, 0 when unknown
	Duration   string
	Source     Source
	RawText    string
	ReceivedAt time.Time
}

// Setup builds a TradeSetup from the signal's numeric fields.
// exit may be nil to evaluate only the planned take profit and stop loss.
func (s Signal) Setup(bet float64, exit *float64) TradeSetup {
	return TradeSetup{
		Direction:       s.Direction,
		EntryPrice:      s.Entry,
		ExitPrice:       exit,
		TakeProfitPrice: s.TakeProfit,
		StopLossPrice:   s.StopLoss,
		Leverage:        s.Leverage,
		BetAmount:       bet,
	}
}

// Evaluation is the outcome of calculating one signal in a batch.
// Exactly one of Calculation and Err is set.
type Evaluation struct {
	Signal      Signal
	Calculation *Calculation
	Err         error
}
