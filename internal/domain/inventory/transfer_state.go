package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Acciones del ciclo de vida de un traslado.
const (
	ActionSend     = "send"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
)

// transitions pending →send→ in_transit →complete→ completed; pending|in_transit →cancel→ cancelled.
var transitions = map[entity.TransferStatus]map[string]entity.TransferStatus{
	entity.TransferPending: {
		ActionSend:   entity.TransferInTransit,
		ActionCancel: entity.TransferCancelled,
	},
	entity.TransferInTransit: {
		ActionComplete: entity.TransferCompleted,
		ActionCancel:   entity.TransferCancelled,
	},
}

// NextStatus devuelve el estado destino o ErrInvalidState si la acción no aplica.
func NextStatus(current entity.TransferStatus, action string) (entity.TransferStatus, error) {
	next, ok := transitions[current][action]
	if !ok {
		return "", fmt.Errorf("%s desde %s: %w", action, current, domain.ErrInvalidState)
	}
	return next, nil
}

// IsTerminal completed y cancelled no admiten más transiciones.
func IsTerminal(s entity.TransferStatus) bool {
	return len(transitions[s]) == 0
}
