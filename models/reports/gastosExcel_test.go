package reports_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/models/reports"
	"github.com/xuri/excelize/v2"
)

func TestGastosWorkbook(t *testing.T) {
	gastos := []*models.Gasto{
		{
			ID:          7,
			Concepto:    "Vigilancia",
			Monto:       decimal.NewFromInt(1000),
			MontoPagado: decimal.NewFromInt(600),
			FechaLimite: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			Activo:      true,
			Deudas: []models.Deuda{
				{
					ID:           1,
					MontoUsuario: decimal.NewFromInt(600),
					Vivienda:     &models.Vivienda{Nombre: "Apto 1", CedulaPropietario: "V1"},
					Pagos:        []models.Pago{{MontoPagado: decimal.NewFromInt(600), Confirmado: true}},
				},
				{
					ID:           2,
					MontoUsuario: decimal.NewFromInt(400),
					Activa:       true,
					Vivienda:     &models.Vivienda{Nombre: "Apto 2", CedulaPropietario: "V2"},
					Pagos:        []models.Pago{{MontoPagado: decimal.NewFromInt(50)}},
				},
			},
		},
	}

	f, err := reports.GastosWorkbook(gastos)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(reports.SheetGastos)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Concepto", rows[0][1])
	assert.Equal(t, "Vigilancia", rows[1][1])
	assert.Equal(t, "2026-11-01", rows[1][4])
	assert.Equal(t, "Pendiente", rows[1][5])

	rows, err = book.GetRows(reports.SheetDeudas)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Apto 1", rows[1][2])
	assert.Equal(t, "Pagado", rows[1][7])
	assert.Equal(t, "Apto 2", rows[2][2])
	assert.Equal(t, "50", rows[2][6])
	assert.Equal(t, "Pendiente", rows[2][7])
}
