package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/signal"
)

// columnAliases maps accepted header names to the canonical column.
var columnAliases = map[string]string{
	"token":       "token",
	"symbol":      "token",
	"asset":       "token",
	"direction":   "direction",
	"side":        "direction",
	"entry":       "entry",
	"entry_price": "entry",
	"take_profit": "take_profit",
	"tp":          "take_profit",
	"stop_loss":   "stop_loss",
	"sl":          "stop_loss",
	"leverage":    "leverage",
	"confidence":  "confidence",
	"duration":    "duration",
}

// ReadSignalsFromCSV loads signals from a headed CSV file.
func ReadSignalsFromCSV(filename string) ([]domain.Signal, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSignals(file)
}

// ReadSignals parses signals from CSV data. Header names are matched
// case-insensitively; only an entry column is mandatory. A blank direction is
// inferred from the take profit.
func ReadSignals(r io.Reader) ([]domain.Signal, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty signal file", ports.ErrMalformedInput)
		}
		return nil, err
	}

	index := make(map[string]int)
	for i, name := range header {
		if col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			index[col] = i
		}
	}
	if _, ok := index["entry"]; !ok {
		return nil, fmt.Errorf("%w: header has no entry column", ports.ErrMalformedInput)
	}

	now := time.Now()
	var signals []domain.Signal
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		sig, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sig.ID = uuid.NewString()
		sig.Source = domain.SourceCSV
		sig.RawText = strings.Join(record, ",")
		sig.ReceivedAt = now
		signals = append(signals, sig)
	}
	return signals, nil
}

func parseRecord(record []string, index map[string]int) (domain.Signal, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var sig domain.Signal
	var err error

	sig.Token = strings.ToUpper(cell("token"))
	sig.Duration = cell("duration")

	if sig.Entry, err = parseNumber(cell("entry"), ""); err != nil {
		return sig, fmt.Errorf("entry: %w", err)
	}
	if sig.Entry == 0 {
		return sig, fmt.Errorf("%w: entry is missing or zero", ports.ErrMalformedInput)
	}
	if sig.TakeProfit, err = parseNumber(cell("take_profit"), ""); err != nil {
		return sig, fmt.Errorf("take_profit: %w", err)
	}
	if sig.StopLoss, err = parseNumber(cell("stop_loss"), ""); err != nil {
		return sig, fmt.Errorf("stop_loss: %w", err)
	}
	if sig.Leverage, err = parseNumber(cell("leverage"), "x"); err != nil {
		return sig, fmt.Errorf("leverage: %w", err)
	}
	if sig.Confidence, err = parseNumber(cell("confidence"), "%"); err != nil {
		return sig, fmt.Errorf("confidence: %w", err)
	}

	if raw := cell("direction"); raw != "" {
		if sig.Direction, err = domain.ParseDirection(raw); err != nil {
			return sig, fmt.Errorf("%w: %v", ports.ErrMalformedInput, err)
		}
	} else if dir, ok := signal.InferDirection(sig.Entry, sig.TakeProfit); ok {
		sig.Direction = dir
	} else {
		return sig, fmt.Errorf("%w: no direction and none inferable from take_profit", ports.ErrMalformedInput)
	}

	return sig, nil
}

// parseNumber reads a float, tolerating an optional unit suffix and a leading "$".
// Blank cells are zero.
func parseNumber(raw, suffix string) (float64, error) {
	raw = strings.TrimPrefix(raw, "$")
	if suffix != "" {
		raw = strings.TrimSuffix(strings.TrimSuffix(raw, strings.ToUpper(suffix)), suffix)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ports.ErrMalformedInput, raw)
	}
	return v, nil
}

// WriteEvaluationsToCSV exports batch results, one row per signal.
func WriteEvaluationsToCSV(evals []domain.Evaluation, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteEvaluations(file, evals)
}

// WriteEvaluations writes batch results as CSV to w.
func WriteEvaluations(w io.Writer, evals []domain.Evaluation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{
		"token", "direction", "entry", "take_profit", "stop_loss", "leverage",
		"position_size", "profit_at_take_profit", "loss_at_stop_loss", "risk_reward_ratio",
		"liquidation_price", "error",
	}); err != nil {
		return err
	}

	for _, e := range evals {
		row := []string{
			e.Signal.Token,
			string(e.Signal.Direction),
			formatFloat(e.Signal.Entry),
			formatFloat(e.Signal.TakeProfit),
			formatFloat(e.Signal.StopLoss),
			formatFloat(e.Signal.Leverage),
		}
		if e.Calculation != nil {
			m := e.Calculation.Metrics
			row = append(row,
				formatFloat(m.PositionSize),
				formatFloat(m.ProfitAtTakeProfit),
				formatFloat(m.LossAtStopLoss),
				formatFloat(m.RiskRewardRatio),
				formatFloat(e.Calculation.LiquidationPrice),
				"",
			)
		} else {
			msg := ""
			if e.Err != nil {
				msg = e.Err.Error()
			}
			row = append(row, "", "", "", "", "", msg)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
