package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tradecalc/internal/analytics"
	"tradecalc/internal/domain"
)

// WriteCalculation prints a full breakdown of one calculation.
func WriteCalculation(w io.Writer, calc *domain.Calculation, currency string) error {
	s, m := calc.Setup, calc.Metrics

	var b strings.Builder
	title := s.Direction.String()
	if calc.Symbol != "" {
		title = calc.Symbol + " " + title
	}
	fmt.Fprintf(&b, "%s @ %s (%sx, bet %s)\n", title, Price(s.EntryPrice), Price(s.Leverage), Money(s.BetAmount, currency))
	fmt.Fprintf(&b, "Position size:        %s (bet × leverage)\n", Money(m.PositionSize, currency))

	if m.Realized {
		fmt.Fprintf(&b, "\nMain exit result (exit %s)\n", Price(*s.ExitPrice))
		fmt.Fprintf(&b, "  Price move:         %s\n", Percent(m.PriceMoveFraction))
		fmt.Fprintf(&b, "  Estimated profit:   %s\n", Money(m.Profit, currency))
		fmt.Fprintf(&b, "  Final balance:      %s\n", Money(m.FinalBalance, currency))
	}

	fmt.Fprintf(&b, "\nStop loss / take profit\n")
	fmt.Fprintf(&b, "  Loss at stop loss:  %s (%s at %s)\n", Money(m.LossAtStopLoss, currency), Percent(m.StopLossFraction), Price(s.StopLossPrice))
	fmt.Fprintf(&b, "  Profit at target:   %s (%s at %s)\n", Money(m.ProfitAtTakeProfit, currency), Percent(m.TakeProfitFraction), Price(s.TakeProfitPrice))
	fmt.Fprintf(&b, "  Risk/reward ratio:  %s\n", Ratio(m.RiskRewardRatio))
	if calc.LiquidationPrice != 0 {
		fmt.Fprintf(&b, "  Liquidation price:  %s\n", Price(calc.LiquidationPrice))
	}

	if warnings := Warnings(m); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(&b, "\n! %s", warning)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Warnings explains metrics whose sign contradicts the level's label.
func Warnings(m domain.TradeMetrics) []string {
	var out []string
	if m.ProfitAtTakeProfit < 0 {
		out = append(out, "take profit is on the losing side of entry for this direction")
	}
	if m.LossAtStopLoss > 0 {
		out = append(out, "stop loss is on the winning side of entry for this direction")
	}
	return out
}

// WriteBatch prints one row per evaluated signal followed by the batch summary.
func WriteBatch(w io.Writer, evals []domain.Evaluation, summary *analytics.Summary, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Token\tSide\tEntry\tTP\tSL\tLev\tSize\tAt TP\tAt SL\tR/R\tLiq\t")

	for _, e := range evals {
		sig := e.Signal
		if e.Calculation == nil {
			msg := "not evaluated"
			if e.Err != nil {
				msg = e.Err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\terror: %s\t\t\t\t\t\n",
				sig.Token, sig.Direction.String(), Price(sig.Entry), Price(sig.TakeProfit), Price(sig.StopLoss), Price(sig.Leverage), msg)
			continue
		}
		c := e.Calculation
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			sig.Token, c.Setup.Direction.String(),
			Price(c.Setup.EntryPrice), Price(c.Setup.TakeProfitPrice), Price(c.Setup.StopLossPrice), Price(c.Setup.Leverage),
			Money(c.Metrics.PositionSize, currency),
			Money(c.Metrics.ProfitAtTakeProfit, currency),
			Money(c.Metrics.LossAtStopLoss, currency),
			Ratio(c.Metrics.RiskRewardRatio),
			Price(c.LiquidationPrice),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if summary == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%d signals: %d evaluated, %d failed, %d favourable, %d with stop on the winning side\n"+
		"Potential profit %s, potential loss %s, exposure %s\n"+
		"Average R/R %s, best %s (%s)\n",
		summary.TotalSignals, summary.Evaluated, summary.Failed, summary.Favourable, summary.Misconfigured,
		Money(summary.TotalPotentialProfit, currency), Money(summary.TotalPotentialLoss, currency), Money(summary.TotalExposure, currency),
		Ratio(summary.AverageRiskReward), Ratio(summary.BestRiskReward), summary.BestToken)
	return err
}

// WriteHistory prints stored calculations as a table, newest first.
func WriteHistory(w io.Writer, calcs []*domain.Calculation, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWhen\tSource\tSymbol\tSide\tEntry\tExit\tLev\tBet\tProfit\tR/R\t")
	for _, c := range calcs {
		exit := "-"
		profit := "-"
		if c.Setup.ExitPrice != nil {
			exit = Price(*c.Setup.ExitPrice)
			profit = Money(c.Metrics.Profit, currency)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Source, c.Symbol, c.Setup.Direction.String(),
			Price(c.Setup.EntryPrice), exit, Price(c.Setup.Leverage), Money(c.Setup.BetAmount, currency),
			profit, Ratio(c.Metrics.RiskRewardRatio))
	}
	return tw.Flush()
}

// Message renders a compact, chat-friendly summary of a calculation.
func Message(calc *domain.Calculation, currency string) string {
	s, m := calc.Setup, calc.Metrics

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s @ %s, %sx\n", strings.TrimSpace(calc.Symbol), s.Direction.String(), Price(s.EntryPrice), Price(s.Leverage))
	fmt.Fprintf(&b, "Size %s\n", Money(m.PositionSize, currency))
	fmt.Fprintf(&b, "TP %s -> %s\n", Price(s.TakeProfitPrice), Money(m.ProfitAtTakeProfit, currency))
	fmt.Fprintf(&b, "SL %s -> %s\n", Price(s.StopLossPrice), Money(m.LossAtStopLoss, currency))
	fmt.Fprintf(&b, "R/R %s", Ratio(m.RiskRewardRatio))
	if calc.LiquidationPrice != 0 {
		fmt.Fprintf(&b, ", liq %s", Price(calc.LiquidationPrice))
	}
	return strings.TrimSpace(b.String())
}
