package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Signal
	}{
		{
			name: "full signal",
			text: "🚨 XRP/USDT SHORT\nEntry: 2.17\nTP: 2.05\nSL: 2.24\nLeverage: 3x\nConfidence: 80%\nDuration: 1-2 days",
			want: domain.Signal{Token: "XRP", Direction: domain.Short, Entry: 2.17, TakeProfit: 2.05, StopLoss: 2.24, Leverage: 3, Confidence: 80, Duration: "1-2 days"},
		},
		{
			name: "compact upper case",
			text: "BNBUSDT LONG ENTRY=594 TP1=620 SL=580 10X",
			want: domain.Signal{Token: "BNB", Direction: domain.Long, Entry: 594, TakeProfit: 620, StopLoss: 580, Leverage: 10},
		},
		{
			name: "ticker with dollar prices",
			text: "$SOL entry zone $142.5 take profit $160 stop loss $135",
			want: domain.Signal{Token: "SOL", Direction: domain.Long, Entry: 142.5, TakeProfit: 160, StopLoss: 135},
		},
		{
			name: "direction inferred as short",
			text: "#ETH entry 3500 tp 3300 sl 3600",
			want: domain.Signal{Token: "ETH", Direction: domain.Short, Entry: 3500, TakeProfit: 3300, StopLoss: 3600},
		},
		{
			name: "grouped thousands",
			text: "BTC/USDT LONG Entry: 65,000 TP: 68,500.5 SL: 63,000",
			want: domain.Signal{Token: "BTC", Direction: domain.Long, Entry: 65000, TakeProfit: 68500.5, StopLoss: 63000},
		},
		{
			name: "labelled leverage wins over a multiplier in prose",
			text: "SOL LONG up 2x this week. Entry 140 TP 150 SL 135 Leverage 5",
			want: domain.Signal{Token: "SOL", Direction: domain.Long, Entry: 140, TakeProfit: 150, StopLoss: 135, Leverage: 5},
		},
		{
			name: "hyphenated short is not a direction",
			text: "ETH short-term idea, going LONG. Entry 3500 TP 3700",
			want: domain.Signal{Token: "ETH", Direction: domain.Long, Entry: 3500, TakeProfit: 3700},
		},
		{
			name: "bare ticker",
			text: "NEW SIGNAL: XRP SHORT entry 2.17 tp 2.05 sl 2.24",
			want: domain.Signal{Token: "XRP", Direction: domain.Short, Entry: 2.17, TakeProfit: 2.05, StopLoss: 2.24},
		},
		{
			name: "only entry and direction",
			text: "long entry: 0.5",
			want: domain.Signal{Direction: domain.Long, Entry: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)

			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.text, got.RawText)
			got.ID, got.RawText = "", ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "chatter", text: "gm everyone, market looks spicy", wantErr: ports.ErrNotASignal},
		{name: "entry without price", text: "SHORT XRP, entry soon", wantErr: ports.ErrNotASignal},
		{name: "no direction and no target", text: "ENTRY: 2.17 SL: 2.24", wantErr: ports.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_UniqueIDs(t *testing.T) {
	a, err := Parse("LONG ENTRY 1 TP 2")
	require.NoError(t, err)
	b, err := Parse("LONG ENTRY 1 TP 2")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestInferDirection(t *testing.T) {
	dir, ok := InferDirection(2.17, 2.5)
	assert.True(t, ok)
	assert.Equal(t, domain.Long, dir)

	dir, ok = InferDirection(2.17, 2.05)
	assert.True(t, ok)
	assert.Equal(t, domain.Short, dir)

	_, ok = InferDirection(2.17, 0)
	assert.False(t, ok)

	_, ok = InferDirection(2.17, 2.17)
	assert.False(t, ok)
}
