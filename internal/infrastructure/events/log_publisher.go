package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher publicador sin broker: deja cada evento en el log a nivel debug.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher crea el publicador.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "event_log").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, events ...ports.StockEvent) error {
	for _, e := range events {
		p.logger.Debug().
			Str("type", e.Type).
			Str("company_id", e.CompanyID).
			Str("branch_id", e.BranchID).
			Str("product_id", e.ProductID).
			Str("reference_id", e.ReferenceID).
			Msg("evento de stock")
	}
	return nil
}
