package ports

import (
	"context"

	"tradecalc/internal/domain"
)

// SignalSource supplies trade signals from an external channel.
type SignalSource interface {
	// FetchSignals returns the signals found in recent messages, newest first.
	FetchSignals(ctx context.Context) ([]domain.Signal, error)
}

// Notifier posts formatted text back to a channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
