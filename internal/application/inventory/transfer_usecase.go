package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DefaultIdempotencyTTL vigencia de una clave de idempotencia si no se configura otra.
const DefaultIdempotencyTTL = 24 * time.Hour

// TransferUseCase orquesta traslados entre sucursales: reserva al crear, salida al enviar,
// entrada al recibir y compensación al cancelar. Cada paso es una sola transacción.
type TransferUseCase struct {
	deps   Deps
	idem   ports.IdempotencyStore
	idemTT time.Duration
}

// NewTransferUseCase construye el orquestador. idem puede ser nil (sin idempotencia).
func NewTransferUseCase(deps Deps, idem ports.IdempotencyStore, idemTTL time.Duration) *TransferUseCase {
	if idemTTL <= 0 {
		idemTTL = DefaultIdempotencyTTL
	}
	return &TransferUseCase{deps: deps.withDefaults(), idem: idem, idemTT: idemTTL}
}

// Create valida sucursales y productos, y en una transacción reserva cada ítem en origen
// y persiste el traslado en pending. Si un ítem no alcanza, no queda nada persistido.
func (uc *TransferUseCase) Create(ctx context.Context, actor Actor, in dto.CreateTransferRequest, idempotencyKey string) (_ *dto.TransferResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.CreateTransfer",
		attribute.String("from_branch_id", in.FromBranchID),
		attribute.String("to_branch_id", in.ToBranchID),
		attribute.Int("items", len(in.Items)))
	defer func() { endSpan(span, err) }()

	if err := validateTransferItems(in); err != nil {
		return nil, err
	}
	from, err := uc.deps.branch(ctx, in.FromBranchID)
	if err != nil {
		return nil, err
	}
	if err := uc.deps.authorize(ctx, actor, from.CompanyID, entity.RolesStockManagers); err != nil {
		return nil, err
	}
	to, err := uc.deps.branch(ctx, in.ToBranchID)
	if err != nil {
		return nil, err
	}
	if from.CompanyID != to.CompanyID {
		return nil, fmt.Errorf("sucursales de empresas distintas: %w", domain.ErrInvalidInput)
	}
	if !from.IsActive || !to.IsActive {
		return nil, fmt.Errorf("sucursal inactiva en el traslado: %w", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if _, err := uc.deps.product(ctx, from.CompanyID, it.ProductID); err != nil {
			return nil, err
		}
	}

	idemKey := ""
	if idempotencyKey != "" && uc.idem != nil {
		idemKey = from.CompanyID + ":" + idempotencyKey
		prev, fresh, err := uc.idem.Begin(ctx, idemKey, uc.idemTT)
		if err != nil {
			return nil, fmt.Errorf("idempotencia: %w", err)
		}
		if !fresh {
			if prev == "" {
				return nil, fmt.Errorf("traslado con la misma clave en curso: %w", domain.ErrConflict)
			}
			uc.deps.Logger.Info().Str("transfer_id", prev).Str("idempotency_key", idempotencyKey).Msg("traslado repetido, se devuelve el existente")
			return uc.Get(ctx, actor, prev)
		}
	}

	now := uc.deps.Clock()
	transferDate := now
	if in.TransferDate != nil {
		transferDate = in.TransferDate.UTC()
	}
	items := append([]dto.TransferItemRequest(nil), in.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	var created *entity.StockTransfer
	err = uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		s := uc.deps.bind(repos)
		t := &entity.StockTransfer{
			ID:           uc.deps.NewID(),
			CompanyID:    from.CompanyID,
			FromBranchID: from.ID,
			ToBranchID:   to.ID,
			UserID:       actor.UserID,
			Status:       entity.TransferPending,
			TransferDate: transferDate,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, it := range items {
			qty := domaininv.RoundQty(it.Quantity)
			rec, err := s.store.Reserve(ctx, from.ID, it.ProductID, qty)
			if err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
			unitCost := rec.AverageCost
			if it.UnitCost != nil {
				unitCost = domaininv.RoundCost(*it.UnitCost)
			}
			t.Items = append(t.Items, entity.StockTransferItem{
				ID:         uc.deps.NewID(),
				TransferID: t.ID,
				ProductID:  it.ProductID,
				Quantity:   qty,
				UnitCost:   unitCost,
			})
		}
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		if idemKey != "" {
			if aerr := uc.idem.Abort(ctx, idemKey); aerr != nil {
				uc.deps.Logger.Warn().Err(aerr).Str("idempotency_key", idempotencyKey).Msg("liberar clave de idempotencia")
			}
		}
		return nil, err
	}
	if idemKey != "" {
		if cerr := uc.idem.Complete(ctx, idemKey, created.ID, uc.idemTT); cerr != nil {
			uc.deps.Logger.Warn().Err(cerr).Str("idempotency_key", idempotencyKey).Msg("guardar resultado de idempotencia")
		}
	}

	uc.deps.Metrics.TransferTransition("", entity.TransferPending)
	uc.deps.Logger.Info().
		Str("transfer_id", created.ID).
		Str("from_branch_id", created.FromBranchID).
		Str("to_branch_id", created.ToBranchID).
		Str("user_id", actor.UserID).
		Int("items", len(created.Items)).
		Msg("traslado creado")
	uc.deps.publish(ctx, uc.transferEvent(created, actor.UserID))
	return toTransferResponse(created), nil
}

func validateTransferItems(in dto.CreateTransferRequest) error {
	if in.FromBranchID == "" || in.ToBranchID == "" {
		return fmt.Errorf("sucursales de origen y destino requeridas: %w", domain.ErrInvalidInput)
	}
	if in.FromBranchID == in.ToBranchID {
		return fmt.Errorf("origen y destino son la misma sucursal: %w", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("traslado sin ítems: %w", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("product_id requerido: %w", domain.ErrInvalidInput)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("producto %s repetido en el traslado: %w", it.ProductID, domain.ErrInvalidInput)
		}
		seen[it.ProductID] = struct{}{}
		if err := validatePositiveQty(it.Quantity); err != nil {
			return fmt.Errorf("producto %s: %w", it.ProductID, err)
		}
		if it.UnitCost != nil {
			if err := domaininv.ValidateCost(*it.UnitCost); err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
		}
	}
	return nil
}

// Send descuenta en origen cada ítem reservado y registra su transfer_out.
func (uc *TransferUseCase) Send(ctx context.Context, actor Actor, transferID string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, actor, transferID, domaininv.ActionSend, "", func(ctx context.Context, s *scope, t *entity.StockTransfer) error {
		for _, it := range sortedItems(t) {
			if _, err := s.store.Release(ctx, t.FromBranchID, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
			cost := it.UnitCost
			if _, err := s.ledger.Record(ctx, RecordInput{
				BranchID:    t.FromBranchID,
				ProductID:   it.ProductID,
				UserID:      actor.UserID,
				Delta:       it.Quantity.Neg(),
				Type:        entity.MovementTransferOut,
				ReferenceID: t.ID,
				Notes:       "traslado a " + t.ToBranchID,
				CostPerUnit: &cost,
			}); err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
		}
		return nil
	})
}

// Complete ingresa cada ítem en destino al costo del traslado y registra su transfer_in.
func (uc *TransferUseCase) Complete(ctx context.Context, actor Actor, transferID string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, actor, transferID, domaininv.ActionComplete, "", func(ctx context.Context, s *scope, t *entity.StockTransfer) error {
		for _, it := range sortedItems(t) {
			cost := it.UnitCost
			if _, err := s.ledger.Record(ctx, RecordInput{
				BranchID:    t.ToBranchID,
				ProductID:   it.ProductID,
				UserID:      actor.UserID,
				Delta:       it.Quantity,
				Type:        entity.MovementTransferIn,
				ReferenceID: t.ID,
				Notes:       "traslado desde " + t.FromBranchID,
				CostPerUnit: &cost,
			}); err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
		}
		now := uc.deps.Clock()
		t.CompletedDate = &now
		t.CompletedBy = actor.UserID
		return nil
	})
}

// Cancel en pending libera las reservas; en in_transit devuelve el stock al origen con
// un adjustment positivo por ítem que referencia el traslado.
func (uc *TransferUseCase) Cancel(ctx context.Context, actor Actor, transferID, reason string) (*dto.TransferResponse, error) {
	return uc.transition(ctx, actor, transferID, domaininv.ActionCancel, reason, func(ctx context.Context, s *scope, t *entity.StockTransfer) error {
		wasInTransit := t.Status == entity.TransferInTransit
		for _, it := range sortedItems(t) {
			if !wasInTransit {
				if _, err := s.store.Release(ctx, t.FromBranchID, it.ProductID, it.Quantity); err != nil {
					return fmt.Errorf("producto %s: %w", it.ProductID, err)
				}
				continue
			}
			cost := it.UnitCost
			notes := "reverso por cancelación de traslado"
			if reason != "" {
				notes += ": " + reason
			}
			if _, err := s.ledger.Record(ctx, RecordInput{
				BranchID:    t.FromBranchID,
				ProductID:   it.ProductID,
				UserID:      actor.UserID,
				Delta:       it.Quantity,
				Type:        entity.MovementAdjustment,
				ReferenceID: t.ID,
				Notes:       notes,
				CostPerUnit: &cost,
			}); err != nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, err)
			}
		}
		return nil
	})
}

type transitionStep func(ctx context.Context, s *scope, t *entity.StockTransfer) error

// transition autoriza contra la empresa del traslado, bloquea su fila, valida la acción
// y aplica step sobre los ítems antes de persistir el nuevo estado.
func (uc *TransferUseCase) transition(ctx context.Context, actor Actor, transferID, action, reason string, step transitionStep) (_ *dto.TransferResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.TransferTransition",
		attribute.String("transfer_id", transferID),
		attribute.String("action", action))
	defer func() { endSpan(span, err) }()

	current, err := uc.deps.Reader.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
	}
	if err := uc.deps.authorize(ctx, actor, current.CompanyID, entity.RolesStockManagers); err != nil {
		return nil, err
	}

	var (
		updated *entity.StockTransfer
		from    entity.TransferStatus
		moved   []*entity.StockMovement
	)
	err = uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		t, err := repos.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
		}
		next, err := domaininv.NextStatus(t.Status, action)
		if err != nil {
			return err
		}
		from = t.Status
		s := uc.deps.bind(repos)
		recorder := &movementCollector{base: repos.Movements}
		s.ledger.movements = recorder
		if err := step(ctx, s, t); err != nil {
			return err
		}
		t.Status = next
		t.UpdatedAt = uc.deps.Clock()
		if reason != "" {
			t.Notes = appendNote(t.Notes, "cancelado: "+reason)
		}
		if err := repos.Transfers.UpdateStatus(ctx, t); err != nil {
			return err
		}
		moved = recorder.created
		updated = t
		return nil
	})
	if err != nil {
		uc.deps.Logger.Debug().Err(err).Str("transfer_id", transferID).Str("action", action).Msg("transición rechazada")
		return nil, err
	}

	events := make([]ports.StockEvent, 0, len(moved)+1)
	for _, m := range moved {
		uc.deps.Metrics.MovementRecorded(m.Type)
		events = append(events, uc.deps.movementEvent(updated.CompanyID, m))
	}
	uc.deps.Metrics.TransferTransition(from, updated.Status)
	uc.deps.Logger.Info().
		Str("transfer_id", updated.ID).
		Str("from_status", string(from)).
		Str("status", string(updated.Status)).
		Str("user_id", actor.UserID).
		Msg("traslado actualizado")
	events = append(events, uc.transferEvent(updated, actor.UserID))
	uc.deps.publish(ctx, events...)
	return toTransferResponse(updated), nil
}

// movementCollector registra los movimientos creados dentro de la transacción en curso.
type movementCollector struct {
	base    repository.StockMovementRepository
	created []*entity.StockMovement
}

func (c *movementCollector) Create(ctx context.Context, m *entity.StockMovement) error {
	if err := c.base.Create(ctx, m); err != nil {
		return err
	}
	c.created = append(c.created, m)
	return nil
}

func (c *movementCollector) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	return c.base.List(ctx, f)
}

func (c *movementCollector) Stats(ctx context.Context, companyID string, since time.Time, topN int) (*repository.MovementStats, error) {
	return c.base.Stats(ctx, companyID, since, topN)
}

func (c *movementCollector) SumQuantity(ctx context.Context, branchID, productID string) (decimal.Decimal, error) {
	return c.base.SumQuantity(ctx, branchID, productID)
}

func sortedItems(t *entity.StockTransfer) []entity.StockTransferItem {
	items := append([]entity.StockTransferItem(nil), t.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

func appendNote(notes, extra string) string {
	if notes == "" {
		return extra
	}
	return notes + "\n" + extra
}

func (uc *TransferUseCase) transferEvent(t *entity.StockTransfer, userID string) ports.StockEvent {
	return ports.StockEvent{
		Type:        ports.EventTransferPrefix + string(t.Status),
		CompanyID:   t.CompanyID,
		BranchID:    t.FromBranchID,
		ReferenceID: t.ID,
		UserID:      userID,
		Payload:     toTransferResponse(t),
		OccurredAt:  t.UpdatedAt,
	}
}

// Get devuelve un traslado de la empresa del actor.
func (uc *TransferUseCase) Get(ctx context.Context, actor Actor, transferID string) (*dto.TransferResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	t, err := uc.deps.Reader.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.CompanyID != actor.CompanyID {
		return nil, fmt.Errorf("traslado %s: %w", transferID, domain.ErrNotFound)
	}
	return toTransferResponse(t), nil
}

// List traslados de la empresa del actor; BranchID filtra por origen o destino.
func (uc *TransferUseCase) List(ctx context.Context, actor Actor, filter repository.TransferFilter) (*dto.TransferListResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("estado %q: %w", filter.Status, domain.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}
	filter.CompanyID = actor.CompanyID
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	list, total, err := uc.deps.Reader.Transfers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// Stats agregados de traslados de los últimos windowDays días.
func (uc *TransferUseCase) Stats(ctx context.Context, actor Actor, windowDays int) (*dto.TransferStatsResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	windowDays = clampWindow(windowDays)
	since := uc.deps.Clock().AddDate(0, 0, -windowDays)
	st, err := uc.deps.Reader.Transfers.Stats(ctx, actor.CompanyID, since)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int, len(entity.TransferStatuses))
	for _, s := range entity.TransferStatuses {
		byStatus[string(s)] = st.ByStatus[s]
	}
	return &dto.TransferStatsResponse{
		WindowDays:         windowDays,
		Total:              st.Total,
		ByStatus:           byStatus,
		UnitsMoved:         st.UnitsMoved,
		AvgCompletionHours: st.AvgCompletionHours.Round(2),
	}, nil
}
