package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

type ResumenFinanciero struct {
	SaldoConfirmado   decimal.Decimal `json:"saldoConfirmado"`
	SaldoPorConfirmar decimal.Decimal `json:"saldoPorConfirmar"`
	DeudaPendiente    decimal.Decimal `json:"deudaPendiente"`
}

// FinancialSummary totals the payments and the pending debt of a condominium over the
// debts whose expense is still active or was created this month (UTC, relative to now).
func FinancialSummary(ctx context.Context, idCondominio int, now time.Time) (*ResumenFinanciero, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	var deudas []*Deuda
	err := config.GetDB().WithContext(ctx).
		Joins("JOIN gastos ON gastos.id = deudas.id_gasto").
		Where("gastos.id_condominio = ?", idCondominio).
		Where("(gastos.activo = ? OR gastos.fecha_creado >= ?)", true, utils.StartOfMonth(now.UTC())).
		Select("deudas.*").
		Preload("Pagos").
		Find(&deudas).Error
	if err != nil {
		return nil, err
	}
	return summarize(deudas), nil
}

func summarize(deudas []*Deuda) *ResumenFinanciero {
	resumen := &ResumenFinanciero{
		SaldoConfirmado:   decimal.Zero,
		SaldoPorConfirmar: decimal.Zero,
		DeudaPendiente:    decimal.Zero,
	}
	for _, d := range deudas {
		paid := AmountPaidForDeuda(d)
		resumen.SaldoConfirmado = resumen.SaldoConfirmado.Add(paid)
		resumen.SaldoPorConfirmar = resumen.SaldoPorConfirmar.Add(AmountPendingForDeuda(d))
		if d.Activa {
			resumen.DeudaPendiente = resumen.DeudaPendiente.Add(d.MontoUsuario.Sub(paid))
		}
	}
	return resumen
}
