package analytics

import (
	"sort"

	"tradecalc/internal/domain"
)

// Summary aggregates a batch of evaluated signals.
type Summary struct {
	TotalSignals int
	Evaluated    int
	Failed       int

	// Favourable counts setups whose take profit is actually profitable for
	// their direction; Misconfigured counts setups whose stop loss is.
	Favourable    int
	Misconfigured int

	TotalPotentialProfit float64 // Sum of ProfitAtTakeProfit
	TotalPotentialLoss   float64 // Sum of LossAtStopLoss
	TotalExposure        float64 // Sum of PositionSize

	AverageRiskReward float64 // Over setups with a nonzero ratio
	BestRiskReward    float64
	BestToken         string

	// Ranked lists evaluated setups by risk/reward, best first.
	Ranked []*domain.Calculation
}

// Summarize calculates batch statistics. Failed evaluations are only counted.
func Summarize(evals []domain.Evaluation) *Summary {
	s := &Summary{TotalSignals: len(evals)}

	var rrSum float64
	var rrCount int
	for _, e := range evals {
		if e.Err != nil || e.Calculation == nil {
			s.Failed++
			continue
		}
		s.Evaluated++

		m := e.Calculation.Metrics
		if m.ProfitAtTakeProfit > 0 {
			s.Favourable++
		}
		if m.LossAtStopLoss > 0 {
			s.Misconfigured++
		}
		s.TotalPotentialProfit += m.ProfitAtTakeProfit
		s.TotalPotentialLoss += m.LossAtStopLoss
		s.TotalExposure += m.PositionSize

		if m.RiskRewardRatio != 0 {
			rrSum += m.RiskRewardRatio
			rrCount++
		}
		if m.RiskRewardRatio > s.BestRiskReward {
			s.BestRiskReward = m.RiskRewardRatio
			s.BestToken = e.Calculation.Symbol
		}
		s.Ranked = append(s.Ranked, e.Calculation)
	}

	if rrCount > 0 {
		s.AverageRiskReward = rrSum / float64(rrCount)
	}

	sort.SliceStable(s.Ranked, func(i, j int) bool {
		return s.Ranked[i].Metrics.RiskRewardRatio > s.Ranked[j].Metrics.RiskRewardRatio
	})

	return s
}
