package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// StockUseCase ajustes a cantidad absoluta y reservas sobre el agregado de inventario.
type StockUseCase struct {
	deps Deps
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(deps Deps) *StockUseCase {
	return &StockUseCase{deps: deps.withDefaults()}
}

// AdjustStock fija la cantidad a NewQuantity registrando un movimiento adjustment por la diferencia.
// Si la cantidad no cambia no se escribe nada y Changed=false.
func (uc *StockUseCase) AdjustStock(ctx context.Context, actor Actor, in dto.AdjustStockRequest) (_ *dto.AdjustStockResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.AdjustStock",
		attribute.String("branch_id", in.BranchID),
		attribute.String("product_id", in.ProductID))
	defer func() { endSpan(span, err) }()

	branch, _, err := uc.deps.resolveWrite(ctx, actor, in.BranchID, in.ProductID, entity.RolesStockManagers)
	if err != nil {
		return nil, err
	}
	mov, err := uc.adjust(ctx, actor, in.BranchID, in.ProductID, in.NewQuantity, in.Reason, in.CostPerUnit)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return &dto.AdjustStockResponse{Changed: false}, nil
	}
	uc.afterAdjust(ctx, branch.CompanyID, mov)
	return &dto.AdjustStockResponse{Changed: true, Movement: toMovementResponse(mov)}, nil
}

// BulkAdjustStock aplica cada ajuste en su propia transacción: un fallo no revierte los demás.
func (uc *StockUseCase) BulkAdjustStock(ctx context.Context, actor Actor, in dto.BulkAdjustStockRequest) (_ *dto.BulkAdjustStockResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.BulkAdjustStock",
		attribute.String("branch_id", in.BranchID),
		attribute.Int("items", len(in.Adjustments)))
	defer func() { endSpan(span, err) }()

	if len(in.Adjustments) == 0 {
		return nil, fmt.Errorf("adjustments vacío: %w", domain.ErrInvalidInput)
	}
	branch, err := uc.deps.branch(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if err := uc.deps.authorize(ctx, actor, branch.CompanyID, entity.RolesStockManagers); err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, fmt.Errorf("sucursal %s inactiva: %w", in.BranchID, domain.ErrInvalidInput)
	}

	out := &dto.BulkAdjustStockResponse{BranchID: in.BranchID, Results: make([]dto.BulkAdjustResult, 0, len(in.Adjustments))}
	for _, item := range in.Adjustments {
		res := dto.BulkAdjustResult{ProductID: item.ProductID}
		mov, err := uc.adjustItem(ctx, actor, branch.CompanyID, in.BranchID, item)
		if err != nil {
			res.Code = ErrorCode(err)
			res.Error = err.Error()
			if res.Code == "INTERNAL" {
				uc.deps.Logger.Error().Err(err).
					Str("branch_id", in.BranchID).
					Str("product_id", item.ProductID).
					Msg("ajuste masivo: fallo interno")
				res.Error = "error interno"
			}
			out.Failed++
		} else {
			res.Success = true
			res.Changed = mov != nil
			if mov != nil {
				res.Movement = toMovementResponse(mov)
				uc.afterAdjust(ctx, branch.CompanyID, mov)
			}
			out.Succeeded++
		}
		out.Results = append(out.Results, res)
	}
	uc.deps.Logger.Info().
		Str("branch_id", in.BranchID).
		Str("user_id", actor.UserID).
		Int("succeeded", out.Succeeded).
		Int("failed", out.Failed).
		Msg("ajuste masivo aplicado")
	return out, nil
}

func (uc *StockUseCase) adjustItem(ctx context.Context, actor Actor, companyID, branchID string, item dto.BulkAdjustItem) (*entity.StockMovement, error) {
	if _, err := uc.deps.product(ctx, companyID, item.ProductID); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, actor, branchID, item.ProductID, item.NewQuantity, item.Reason, item.CostPerUnit)
}

func (uc *StockUseCase) adjust(ctx context.Context, actor Actor, branchID, productID string, newQty decimal.Decimal, reason string, cost *decimal.Decimal) (*entity.StockMovement, error) {
	if newQty.IsNegative() {
		return nil, fmt.Errorf("new_quantity %s negativa: %w", newQty, domain.ErrInvalidInput)
	}
	if err := domaininv.ValidateQuantity(newQty); err != nil {
		return nil, fmt.Errorf("new_quantity: %w", err)
	}
	var mov *entity.StockMovement
	err := uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		mov = nil
		s := uc.deps.bind(repos)
		rec, err := s.store.GetOrCreate(ctx, branchID, productID)
		if err != nil {
			return err
		}
		delta := newQty.Sub(rec.Quantity)
		if delta.IsZero() {
			return nil
		}
		m, err := s.ledger.Record(ctx, RecordInput{
			BranchID:    branchID,
			ProductID:   productID,
			UserID:      actor.UserID,
			Delta:       delta,
			Type:        entity.MovementAdjustment,
			Notes:       reason,
			CostPerUnit: cost,
		})
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

func (uc *StockUseCase) afterAdjust(ctx context.Context, companyID string, mov *entity.StockMovement) {
	uc.deps.Metrics.MovementRecorded(mov.Type)
	uc.deps.Logger.Info().
		Str("movement_id", mov.ID).
		Str("branch_id", mov.BranchID).
		Str("product_id", mov.ProductID).
		Str("previous_quantity", mov.PreviousQuantity.String()).
		Str("new_quantity", mov.NewQuantity.String()).
		Msg("stock ajustado")
	uc.deps.publish(ctx, uc.deps.movementEvent(companyID, mov))
}

// ReserveStock aparta unidades disponibles sin moverlas.
func (uc *StockUseCase) ReserveStock(ctx context.Context, actor Actor, in dto.ReservationRequest) (_ *dto.InventoryRecordResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.ReserveStock",
		attribute.String("branch_id", in.BranchID),
		attribute.String("product_id", in.ProductID))
	defer func() { endSpan(span, err) }()

	if err := validatePositiveQty(in.Quantity); err != nil {
		return nil, err
	}
	if _, _, err := uc.deps.resolveWrite(ctx, actor, in.BranchID, in.ProductID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	err = uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		r, err := uc.deps.bind(repos).store.Reserve(ctx, in.BranchID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.deps.Logger.Info().Str("branch_id", in.BranchID).Str("product_id", in.ProductID).
		Str("quantity", in.Quantity.String()).Str("reserved", rec.ReservedQuantity.String()).Msg("stock reservado")
	return toRecordResponse(rec), nil
}

// ReleaseReservation devuelve unidades reservadas al disponible (sin bajar de cero).
func (uc *StockUseCase) ReleaseReservation(ctx context.Context, actor Actor, in dto.ReservationRequest) (_ *dto.InventoryRecordResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.ReleaseReservation",
		attribute.String("branch_id", in.BranchID),
		attribute.String("product_id", in.ProductID))
	defer func() { endSpan(span, err) }()

	if err := validatePositiveQty(in.Quantity); err != nil {
		return nil, err
	}
	if _, _, err := uc.deps.resolveWrite(ctx, actor, in.BranchID, in.ProductID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	err = uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		r, err := uc.deps.bind(repos).store.Release(ctx, in.BranchID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.deps.Logger.Info().Str("branch_id", in.BranchID).Str("product_id", in.ProductID).
		Str("quantity", in.Quantity.String()).Str("reserved", rec.ReservedQuantity.String()).Msg("reserva liberada")
	return toRecordResponse(rec), nil
}

// ErrorCode código estable de error para respuestas con éxito parcial y para HTTP.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, domain.ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}
