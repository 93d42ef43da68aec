package ports

import (
	"context"

	"tradecalc/internal/domain"
)

// CalculationRepository stores flat records of computed trade setups.
type CalculationRepository interface {
	// Save stores a calculation and returns its assigned ID.
	Save(ctx context.Context, calc *domain.Calculation) (int64, error)
	// FindByID retrieves a calculation by its ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, id int64) (*domain.Calculation, error)
	// FindRecent retrieves the most recent calculations, newest first.
	FindRecent(ctx context.Context, limit int) ([]*domain.Calculation, error)
	// FindBySymbol retrieves the most recent calculations for a symbol, newest first.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Calculation, error)
	// FindLatest returns the most recently stored calculation.
	// Returns nil, nil if the store is empty.
	FindLatest(ctx context.Context) (*domain.Calculation, error)
}
