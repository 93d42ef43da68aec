package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

func TestReadSignals(t *testing.T) {
	data := `Token,Direction,Entry,Take_Profit,Stop_Loss,Leverage,Confidence,Duration
xrp,short,2.17,2.05,2.24,3x,80%,2 days
BNB,,594,620,580,5,,
SOL,long,$142.5,160,135,,65,intraday
`
	signals, err := ReadSignals(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, signals, 3)

	xrp := signals[0]
	assert.Equal(t, "XRP", xrp.Token)
	assert.Equal(t, domain.Short, xrp.Direction)
	assert.Equal(t, 2.17, xrp.Entry)
	assert.Equal(t, 2.05, xrp.TakeProfit)
	assert.Equal(t, 2.24, xrp.StopLoss)
	assert.Equal(t, 3.0, xrp.Leverage)
	assert.Equal(t, 80.0, xrp.Confidence)
	assert.Equal(t, "2 days", xrp.Duration)
	assert.Equal(t, domain.SourceCSV, xrp.Source)
	assert.NotEmpty(t, xrp.ID)

	// Direction inferred from a take profit above entry.
	assert.Equal(t, domain.Long, signals[1].Direction)
	assert.Equal(t, 0.0, signals[1].Confidence)

	assert.Equal(t, 142.5, signals[2].Entry)
	assert.Equal(t, 0.0, signals[2].Leverage)
	assert.NotEqual(t, signals[0].ID, signals[2].ID)
}

func TestReadSignals_Aliases(t *testing.T) {
	data := "symbol,side,entry_price,tp,sl\nETH,sell,3500,3300,3600\n"
	signals, err := ReadSignals(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "ETH", signals[0].Token)
	assert.Equal(t, domain.Short, signals[0].Direction)
	assert.Equal(t, 3300.0, signals[0].TakeProfit)
}

func TestReadSignals_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "empty", data: "", wantMsg: "empty signal file"},
		{name: "no entry column", data: "token,tp\nXRP,2\n", wantMsg: "no entry column"},
		{name: "zero entry", data: "token,entry,tp\nXRP,0,2\n", wantMsg: "line 2: "},
		{name: "bad number", data: "token,entry,tp\nXRP,2.17,abc\n", wantMsg: `take_profit: malformed signal record: "abc" is not a number`},
		{name: "bad direction", data: "token,direction,entry\nXRP,up,2.17\n", wantMsg: "unknown trade direction"},
		{name: "direction not inferable", data: "token,entry,tp\nXRP,1,2\nBNB,5,\n", wantMsg: "line 3: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSignals(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ports.ErrMalformedInput), "want ErrMalformedInput, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadSignalsFromCSV_MissingFile(t *testing.T) {
	_, err := ReadSignalsFromCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteEvaluations(t *testing.T) {
	evals := []domain.Evaluation{
		{
			Signal: domain.Signal{Token: "XRP", Direction: domain.Short, Entry: 2.17, TakeProfit: 2.05, StopLoss: 2.24, Leverage: 3},
			Calculation: &domain.Calculation{
				Metrics:          domain.TradeMetrics{PositionSize: 300, ProfitAtTakeProfit: 16.5, LossAtStopLoss: -9.5, RiskRewardRatio: 1.75},
				LiquidationPrice: 2.9,
			},
		},
		{
			Signal: domain.Signal{Token: "BAD", Direction: domain.Long},
			Err:    errors.New("invalid input: entry price must be nonzero"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvaluations(&buf, evals))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "token,direction,entry,take_profit,stop_loss,leverage,position_size,profit_at_take_profit,loss_at_stop_loss,risk_reward_ratio,liquidation_price,error", lines[0])
	assert.Equal(t, "XRP,SHORT,2.17,2.05,2.24,3,300,16.5,-9.5,1.75,2.9,", lines[1])
	assert.Equal(t, "BAD,LONG,0,0,0,0,,,,,,invalid input: entry price must be nonzero", lines[2])
}

func TestWriteEvaluationsToCSV_RoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteEvaluationsToCSV(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "token,direction,entry"))
}
