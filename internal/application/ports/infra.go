package ports

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Tipos de evento publicados tras el commit.
const (
	EventMovementRecorded = "movement.recorded"
	EventTransferPrefix   = "transfer."
)

// StockEvent notificación de un cambio ya confirmado en la base de datos.
type StockEvent struct {
	Type        string    `json:"type"`
	CompanyID   string    `json:"company_id"`
	BranchID    string    `json:"branch_id,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	ReferenceID string    `json:"reference_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Payload     any       `json:"payload,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de stock. Los fallos no revierten el trabajo confirmado.
type EventPublisher interface {
	Publish(ctx context.Context, events ...StockEvent) error
}

// IdempotencyStore reserva claves de idempotencia para operaciones de creación.
type IdempotencyStore interface {
	// Begin reserva la clave. Si ya existe devuelve el resultado guardado (fresh=false);
	// resultado vacío con fresh=false significa que otra petición sigue en curso.
	Begin(ctx context.Context, key string, ttl time.Duration) (result string, fresh bool, err error)
	// Complete asocia el resultado (ID creado) a la clave.
	Complete(ctx context.Context, key, result string, ttl time.Duration) error
	// Abort libera la clave tras un fallo para permitir reintentos.
	Abort(ctx context.Context, key string) error
}

// MovementExporter serializa movimientos a un documento descargable.
type MovementExporter interface {
	ExportMovements(movements []*entity.StockMovement) ([]byte, error)
	ContentType() string
}
