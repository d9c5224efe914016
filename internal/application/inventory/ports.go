package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o al pool para lecturas).
type Repos struct {
	Inventory repository.InventoryRepository
	Movements repository.StockMovementRepository
	Transfers repository.StockTransferRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda nada aplicado.
// Las implementaciones pueden reintentar fn ante conflictos transitorios, por lo que fn debe
// poder ejecutarse de nuevo desde cero.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Metrics contadores de negocio del motor de inventario.
type Metrics interface {
	MovementRecorded(t entity.MovementType)
	TransferTransition(from, to entity.TransferStatus)
}

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(entity.MovementType) {}
func (noopMetrics) TransferTransition(entity.TransferStatus, entity.TransferStatus) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...ports.StockEvent) error { return nil }

// Actor usuario autenticado que invoca la operación.
type Actor struct {
	UserID    string
	CompanyID string
}

// Deps dependencias compartidas por los casos de uso de inventario.
// Reader son los repositorios atados al pool para lecturas sin bloqueo.
type Deps struct {
	TxRunner  TxRunner
	Reader    Repos
	Catalog   ports.ProductCatalog
	Branches  ports.BranchDirectory
	Access    ports.AccessControl
	Users     ports.UserDirectory
	Publisher ports.EventPublisher
	Metrics   Metrics
	Logger    zerolog.Logger
	Clock     func() time.Time
	NewID     func() string
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = noopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = noopMetrics{}
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.NewID == nil {
		d.NewID = func() string { return uuid.New().String() }
	}
	return d
}
