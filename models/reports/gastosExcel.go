package reports

import (
	"context"
	"io"

	"github.com/ucond/ucond_backend/models"
	"github.com/xuri/excelize/v2"
)

const (
	SheetGastos = "Gastos"
	SheetDeudas = "Deudas"
)

type ExcelExporter interface {
	GetCellValues() []interface{}
}

type gastoRow struct {
	gasto *models.Gasto
}

func (r gastoRow) GetCellValues() []interface{} {
	g := r.gasto
	return []interface{}{
		g.ID,
		g.Concepto,
		g.Monto.InexactFloat64(),
		g.MontoPagado.InexactFloat64(),
		g.FechaLimite.Format("2006-01-02"),
		estado(g.Activo),
	}
}

type deudaRow struct {
	gasto *models.Gasto
	deuda *models.Deuda
}

func (r deudaRow) GetCellValues() []interface{} {
	d := r.deuda
	var vivienda, cedula string
	if d.Vivienda != nil {
		vivienda = d.Vivienda.Nombre
		cedula = d.Vivienda.CedulaPropietario
	}
	return []interface{}{
		r.gasto.ID,
		r.gasto.Concepto,
		vivienda,
		cedula,
		d.MontoUsuario.InexactFloat64(),
		models.AmountPaidForDeuda(d).InexactFloat64(),
		models.AmountPendingForDeuda(d).InexactFloat64(),
		estado(d.Activa),
	}
}

func estado(activo bool) string {
	if activo {
		return "Pendiente"
	}
	return "Pagado"
}

// GastosWorkbook builds a workbook with one sheet of expenses and one of their debts.
// Deudas and their Vivienda and Pagos must be loaded.
func GastosWorkbook(gastos []*models.Gasto) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetGastos)
	if _, err := f.NewSheet(SheetDeudas); err != nil {
		return nil, err
	}

	gastoRows := make([]ExcelExporter, 0, len(gastos))
	deudaRows := make([]ExcelExporter, 0)
	for _, g := range gastos {
		gastoRows = append(gastoRows, gastoRow{gasto: g})
		for i := range g.Deudas {
			deudaRows = append(deudaRows, deudaRow{gasto: g, deuda: &g.Deudas[i]})
		}
	}

	err := writeSheet(f, SheetGastos, gastoRows,
		"ID", "Concepto", "Monto", "Monto pagado", "Fecha límite", "Estado")
	if err != nil {
		return nil, err
	}
	err = writeSheet(f, SheetDeudas, deudaRows,
		"ID gasto", "Concepto", "Vivienda", "Cédula propietario", "Monto", "Pagado", "Por confirmar", "Estado")
	if err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheetName string, data []ExcelExporter, headings ...string) error {
	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	for rowNo, d := range data {
		for col, value := range d.GetCellValues() {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNo+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportGastos writes the expenses workbook of a condominium to w.
func ExportGastos(ctx context.Context, idCondominio int, w io.Writer) error {
	gastos, err := models.GetGastosForExport(ctx, idCondominio)
	if err != nil {
		return err
	}
	f, err := GastosWorkbook(gastos)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
