// Package telegram reads trade signals from, and posts reports to, a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/signal"
)

// Bot is the subset of *tgbotapi.BotAPI used here.
type Bot interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Config holds the Telegram connection settings.
type Config struct {
	Token  string
	ChatID int64 // 0 accepts any chat
	Limit  int   // Max updates per fetch (1-100)
	Logger ports.Logger
}

// NewBot connects to the Bot API with token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: telegram bot token is empty", ports.ErrConfigurationError)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	return bot, nil
}

// Source implements ports.SignalSource over recent bot updates.
type Source struct {
	bot    Bot
	chatID int64
	limit  int
	logger ports.Logger
}

var _ ports.SignalSource = (*Source)(nil)

// NewSource creates a signal source reading updates through bot.
func NewSource(bot Bot, cfg Config) (*Source, error) {
	if bot == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for telegram Source")
	}
	limit := cfg.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return &Source{bot: bot, chatID: cfg.ChatID, limit: limit, logger: cfg.Logger}, nil
}

// FetchSignals returns the signals found in the most recent messages and
// channel posts, newest first. Messages that are not signals are skipped.
func (s *Source) FetchSignals(ctx context.Context) ([]domain.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A negative offset returns the last -offset updates without confirming any.
	u := tgbotapi.NewUpdate(-s.limit)
	u.Limit = s.limit
	u.AllowedUpdates = []string{"message", "channel_post"}

	updates, err := s.bot.GetUpdates(u)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch telegram updates")
		return nil, fmt.Errorf("failed to fetch telegram updates: %w", err)
	}

	msgs := make([]*tgbotapi.Message, 0, len(updates))
	for _, upd := range updates {
		msg := upd.ChannelPost
		if msg == nil {
			msg = upd.Message
		}
		if msg == nil || msg.Chat == nil {
			continue
		}
		if s.chatID != 0 && msg.Chat.ID != s.chatID {
			continue
		}
		msgs = append(msgs, msg)
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Date > msgs[j].Date })

	var signals []domain.Signal
	for _, msg := range msgs {
		text := messageText(msg)
		if !signal.IsCandidate(text) {
			continue
		}
		sig, err := signal.Parse(text)
		if err != nil {
			if !errors.Is(err, ports.ErrNotASignal) {
				s.logger.Warn(ctx, "Skipping malformed signal", ports.Fields{
					"chat_id":    msg.Chat.ID,
					"message_id": msg.MessageID,
					"error":      err.Error(),
				})
			}
			continue
		}
		sig.Source = domain.SourceTelegram
		sig.ReceivedAt = msg.Time()
		signals = append(signals, sig)
	}

	s.logger.Info(ctx, "Telegram signals fetched", ports.Fields{
		"updates": len(updates),
		"signals": len(signals),
	})
	return signals, nil
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// Notifier implements ports.Notifier by sending plain text messages to one chat.
type Notifier struct {
	bot    Bot
	chatID int64
	logger ports.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier posting to chatID.
func NewNotifier(bot Bot, chatID int64, logger ports.Logger) (*Notifier, error) {
	if bot == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for telegram Notifier")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("%w: telegram chat id is required to send notifications", ports.ErrConfigurationError)
	}
	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Notify sends text to the configured chat.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.logger.Error(ctx, err, "Failed to send telegram message", ports.Fields{"chat_id": n.chatID})
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	n.logger.Debug(ctx, "Telegram message sent", ports.Fields{"chat_id": n.chatID})
	return nil
}
