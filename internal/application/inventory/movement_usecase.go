package inventory

import (
	"context"
	"fmt"
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

// Ventanas de estadísticas y límites de exportación.
const (
	DefaultStatsWindowDays = 30
	MaxStatsWindowDays     = 365
	topProductsLimit       = 10
	MaxExportRows          = 5000
)

// MovementUseCase entradas directas al libro (compra, venta, stock inicial, otros tipos)
// y lecturas del libro.
type MovementUseCase struct {
	deps     Deps
	exporter ports.MovementExporter
}

// NewMovementUseCase construye el caso de uso. exporter puede ser nil si no se exporta.
func NewMovementUseCase(deps Deps, exporter ports.MovementExporter) *MovementUseCase {
	return &MovementUseCase{deps: deps.withDefaults(), exporter: exporter}
}

// MovementRequest entrada genérica: Quantity con signo salvo en los atajos.
type MovementRequest struct {
	BranchID    string
	ProductID   string
	Quantity    decimal.Decimal
	Type        entity.MovementType
	CostPerUnit *decimal.Decimal
	ReferenceID string
	Notes       string
}

// RecordPurchase entrada por compra (cantidad forzada positiva, recalcula costo promedio).
func (uc *MovementUseCase) RecordPurchase(ctx context.Context, actor Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
	return uc.recordShortcut(ctx, actor, entity.MovementPurchase, entity.RolesStockManagers, in)
}

// RecordSale salida por venta (cantidad forzada negativa).
func (uc *MovementUseCase) RecordSale(ctx context.Context, actor Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
	return uc.recordShortcut(ctx, actor, entity.MovementSale, entity.RolesStockUsers, in)
}

// RecordInitialStock carga de stock inicial (cantidad forzada positiva).
func (uc *MovementUseCase) RecordInitialStock(ctx context.Context, actor Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
	return uc.recordShortcut(ctx, actor, entity.MovementInitial, entity.RolesStockManagers, in)
}

func (uc *MovementUseCase) recordShortcut(ctx context.Context, actor Actor, t entity.MovementType, roles []string, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
	req := MovementRequest{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Quantity:    domaininv.ForceSign(t, in.Quantity),
		Type:        t,
		CostPerUnit: in.CostPerUnit,
		ReferenceID: in.ReferenceID,
		Notes:       in.Notes,
	}
	return uc.record(ctx, actor, req, roles)
}

// RecordMovement registra un movimiento de cualquier tipo (devolución, merma, hallazgo...).
// El signo de Quantity debe coincidir con el tipo.
// Los tipos de traslado solo los genera TransferUseCase.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, actor Actor, in MovementRequest) (*dto.StockMovementResponse, error) {
	if in.Type == entity.MovementTransferIn || in.Type == entity.MovementTransferOut {
		return nil, fmt.Errorf("%s solo se registra desde un traslado: %w", in.Type, domain.ErrInvalidInput)
	}
	return uc.record(ctx, actor, in, entity.RolesStockManagers)
}

func (uc *MovementUseCase) record(ctx context.Context, actor Actor, in MovementRequest, roles []string) (_ *dto.StockMovementResponse, err error) {
	ctx, span := startSpan(ctx, "inventory.RecordMovement",
		attribute.String("branch_id", in.BranchID),
		attribute.String("product_id", in.ProductID),
		attribute.String("type", string(in.Type)))
	defer func() { endSpan(span, err) }()

	if err := domaininv.ValidateMovement(in.Type, in.Quantity); err != nil {
		return nil, err
	}
	branch, _, err := uc.deps.resolveWrite(ctx, actor, in.BranchID, in.ProductID, roles)
	if err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err = uc.deps.TxRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		s := uc.deps.bind(repos)
		m, err := s.ledger.Record(ctx, RecordInput{
			BranchID:    in.BranchID,
			ProductID:   in.ProductID,
			UserID:      actor.UserID,
			Delta:       in.Quantity,
			Type:        in.Type,
			ReferenceID: in.ReferenceID,
			Notes:       in.Notes,
			CostPerUnit: in.CostPerUnit,
		})
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		uc.deps.Logger.Debug().Err(err).Str("branch_id", in.BranchID).Str("product_id", in.ProductID).
			Str("type", string(in.Type)).Msg("movimiento rechazado")
		return nil, err
	}

	uc.deps.Metrics.MovementRecorded(mov.Type)
	uc.deps.Logger.Info().
		Str("movement_id", mov.ID).
		Str("branch_id", mov.BranchID).
		Str("product_id", mov.ProductID).
		Str("user_id", mov.UserID).
		Str("type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Str("new_quantity", mov.NewQuantity.String()).
		Msg("movimiento registrado")
	uc.deps.publish(ctx, uc.deps.movementEvent(branch.CompanyID, mov))
	return toMovementResponse(mov), nil
}

// QueryMovements lista movimientos de la empresa del actor con filtros y paginación.
func (uc *MovementUseCase) QueryMovements(ctx context.Context, actor Actor, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	filter, err := uc.normalizeFilter(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.deps.Reader.Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

func (uc *MovementUseCase) normalizeFilter(ctx context.Context, actor Actor, filter repository.MovementFilter) (repository.MovementFilter, error) {
	filter.CompanyID = actor.CompanyID
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, fmt.Errorf("tipo %q: %w", filter.Type, domain.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}
	if filter.UserID != "" && uc.deps.Users != nil {
		ok, err := uc.deps.Users.Exists(ctx, filter.UserID)
		if err != nil {
			return filter, err
		}
		if !ok {
			return filter, fmt.Errorf("usuario %s: %w", filter.UserID, domain.ErrNotFound)
		}
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	return filter, nil
}

// MovementStats agregados del libro para la empresa en los últimos windowDays días.
func (uc *MovementUseCase) MovementStats(ctx context.Context, actor Actor, windowDays int) (*dto.MovementStatsResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	windowDays = clampWindow(windowDays)
	since := uc.deps.Clock().AddDate(0, 0, -windowDays)
	stats, err := uc.deps.Reader.Movements.Stats(ctx, actor.CompanyID, since, topProductsLimit)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementStatsResponse{
		WindowDays:         windowDays,
		TotalMovements:     stats.TotalMovements,
		ByType:             make([]dto.MovementTypeStatDTO, 0, len(stats.ByType)),
		ByDay:              make([]dto.MovementDayStatDTO, 0, len(stats.ByDay)),
		TopProductsByCount: make([]dto.ProductMovementStatDTO, 0, len(stats.TopProductsByCount)),
	}
	for _, t := range stats.ByType {
		out.ByType = append(out.ByType, dto.MovementTypeStatDTO{Type: string(t.Type), Count: t.Count, Quantity: t.Quantity})
	}
	for _, day := range stats.ByDay {
		out.ByDay = append(out.ByDay, dto.MovementDayStatDTO{Day: day.Day.Format(time.DateOnly), Count: day.Count})
	}
	for _, p := range stats.TopProductsByCount {
		out.TopProductsByCount = append(out.TopProductsByCount, dto.ProductMovementStatDTO{ProductID: p.ProductID, Count: p.Count})
	}
	return out, nil
}

// ExportMovements genera el documento de exportación con los filtros dados (máximo MaxExportRows).
func (uc *MovementUseCase) ExportMovements(ctx context.Context, actor Actor, filter repository.MovementFilter) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", fmt.Errorf("exportación no configurada: %w", domain.ErrInvalidInput)
	}
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, "", err
	}
	filter, err := uc.normalizeFilter(ctx, actor, filter)
	if err != nil {
		return nil, "", err
	}
	filter.Limit, filter.Offset = MaxExportRows, 0
	list, _, err := uc.deps.Reader.Movements.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportMovements(list)
	if err != nil {
		return nil, "", fmt.Errorf("exportar movimientos: %w", err)
	}
	return data, uc.exporter.ContentType(), nil
}

func clampWindow(days int) int {
	if days <= 0 {
		return DefaultStatsWindowDays
	}
	if days > MaxStatsWindowDays {
		return MaxStatsWindowDays
	}
	return days
}
