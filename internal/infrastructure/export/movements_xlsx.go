// Package export serializa páginas del libro de movimientos a documentos descargables.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ ports.MovementExporter = (*MovementsXLSX)(nil)

// ContentTypeXLSX tipo MIME de un libro de Excel.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName hoja única del documento.
const SheetName = "Movimientos"

var movementHeader = []interface{}{
	"fecha", "id", "sucursal", "producto", "tipo", "cantidad",
	"costo_unitario", "costo_total", "cantidad_anterior", "cantidad_nueva",
	"referencia", "usuario", "notas",
}

// MovementsXLSX exportador de movimientos a XLSX con excelize.
type MovementsXLSX struct{}

// NewMovementsXLSX construye el exportador.
func NewMovementsXLSX() *MovementsXLSX { return &MovementsXLSX{} }

// ContentType tipo MIME del documento generado.
func (MovementsXLSX) ContentType() string { return ContentTypeXLSX }

// ExportMovements una fila por movimiento, en el orden recibido. Las cifras van como
// número (cantidad y costos con 2 decimales).
func (MovementsXLSX) ExportMovements(movements []*entity.StockMovement) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx hoja: %w", err)
	}
	header := movementHeader
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx encabezado: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(SheetName, 1, 1, style)
	}

	for i, m := range movements {
		row := []interface{}{
			m.CreatedAt.UTC().Format(time.RFC3339),
			m.ID,
			m.BranchID,
			m.ProductID,
			string(m.Type),
			m.Quantity.InexactFloat64(),
			m.CostPerUnit.InexactFloat64(),
			m.TotalCost.InexactFloat64(),
			m.PreviousQuantity.InexactFloat64(),
			m.NewQuantity.InexactFloat64(),
			m.ReferenceID,
			m.UserID,
			m.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx celda: %w", err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx fila %d: %w", i+2, err)
		}
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx escritura: %w", err)
	}
	return buf.Bytes(), nil
}
