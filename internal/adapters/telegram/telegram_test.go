package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
)

type mockLogger struct {
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockBot struct {
	updates    []tgbotapi.Update
	updatesErr error
	lastConfig tgbotapi.UpdateConfig
	sent       []tgbotapi.Chattable
	sendErr    error
}

func (m *mockBot) GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	m.lastConfig = config
	return m.updates, m.updatesErr
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	m.sent = append(m.sent, c)
	return tgbotapi.Message{MessageID: len(m.sent)}, nil
}

func post(id int, chatID int64, date time.Time, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		ChannelPost: &tgbotapi.Message{
			MessageID: id,
			Date:      int(date.Unix()),
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func TestFetchSignals(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bot := &mockBot{updates: []tgbotapi.Update{
		post(1, -100, base, "XRP/USDT SHORT\nEntry: 2.17\nTP: 2.05\nSL: 2.24\nLeverage: 3x"),
		post(2, -100, base.Add(time.Minute), "gm everyone"),
		post(3, -200, base.Add(2*time.Minute), "BNBUSDT LONG ENTRY=594 TP1=620 SL=580 10X"),
		post(4, -100, base.Add(3*time.Minute), "ENTRY: 2.17 SL: 2.24"),
		{UpdateID: 5, Message: &tgbotapi.Message{
			MessageID: 5,
			Date:      int(base.Add(4 * time.Minute).Unix()),
			Chat:      &tgbotapi.Chat{ID: -100},
			Caption:   "#ETH entry 3500 tp 3300 sl 3600",
		}},
		{UpdateID: 6},
	}}
	logger := &mockLogger{}

	src, err := NewSource(bot, Config{ChatID: -100, Limit: 50, Logger: logger})
	require.NoError(t, err)

	signals, err := src.FetchSignals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, bot.lastConfig.Limit)
	assert.Equal(t, -50, bot.lastConfig.Offset, "reads the newest updates")
	require.Len(t, signals, 2)

	assert.Equal(t, "ETH", signals[0].Token)
	assert.Equal(t, domain.Short, signals[0].Direction)
	assert.Equal(t, domain.SourceTelegram, signals[0].Source)
	assert.True(t, signals[0].ReceivedAt.Equal(base.Add(4*time.Minute)))

	assert.Equal(t, "XRP", signals[1].Token)
	assert.Equal(t, 3.0, signals[1].Leverage)

	assert.Len(t, logger.warnMsgs, 1, "malformed signal is reported, chatter is not")
}

func TestFetchSignalsAnyChat(t *testing.T) {
	now := time.Now()
	bot := &mockBot{updates: []tgbotapi.Update{
		post(1, -100, now, "long entry: 0.5 tp 0.6"),
		post(2, -200, now, "short entry: 0.5 tp 0.4"),
	}}

	src, err := NewSource(bot, Config{Logger: &mockLogger{}})
	require.NoError(t, err)

	signals, err := src.FetchSignals(context.Background())
	require.NoError(t, err)
	assert.Len(t, signals, 2)
	assert.Equal(t, 20, bot.lastConfig.Limit)
	assert.Equal(t, -20, bot.lastConfig.Offset)
}

func TestFetchSignalsError(t *testing.T) {
	bot := &mockBot{updatesErr: errors.New("conflict")}
	logger := &mockLogger{}
	src, err := NewSource(bot, Config{Logger: logger})
	require.NoError(t, err)

	_, err = src.FetchSignals(context.Background())
	assert.Error(t, err)
	assert.Len(t, logger.errorMsgs, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchSignals(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSourceValidation(t *testing.T) {
	_, err := NewSource(nil, Config{Logger: &mockLogger{}})
	assert.Error(t, err)
	_, err = NewSource(&mockBot{}, Config{})
	assert.Error(t, err)
}

func TestNotifier(t *testing.T) {
	bot := &mockBot{}
	logger := &mockLogger{}

	n, err := NewNotifier(bot, -100, logger)
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), "  XRP Short @ 2.17  "))
	require.NoError(t, n.Notify(context.Background(), "   "))
	require.Len(t, bot.sent, 1)

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), msg.ChatID)
	assert.Equal(t, "XRP Short @ 2.17", msg.Text)

	bot.sendErr = errors.New("forbidden")
	assert.Error(t, n.Notify(context.Background(), "hello"))
	assert.Len(t, logger.errorMsgs, 1)
}

func TestNewNotifierValidation(t *testing.T) {
	_, err := NewNotifier(&mockBot{}, 0, &mockLogger{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	_, err = NewNotifier(nil, 1, &mockLogger{})
	assert.Error(t, err)
}

func TestNewBotRequiresToken(t *testing.T) {
	_, err := NewBot("")
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
