package models

import "github.com/shopspring/decimal"

// AmountPaidForDeuda sums the confirmed payments of d. Pagos must be loaded.
func AmountPaidForDeuda(d *Deuda) decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Pagos {
		if p.Confirmado {
			total = total.Add(p.MontoPagado)
		}
	}
	return total
}

// AmountPaidForGasto sums AmountPaidForDeuda over the debts of g. Deudas and their Pagos
// must be loaded.
func AmountPaidForGasto(g *Gasto) decimal.Decimal {
	total := decimal.Zero
	for i := range g.Deudas {
		total = total.Add(AmountPaidForDeuda(&g.Deudas[i]))
	}
	return total
}

// AmountPendingForDeuda sums the payments of d still waiting for confirmation.
func AmountPendingForDeuda(d *Deuda) decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Pagos {
		if !p.Confirmado {
			total = total.Add(p.MontoPagado)
		}
	}
	return total
}

// OutstandingForDeuda is what is left to confirm before d is settled.
func OutstandingForDeuda(d *Deuda) decimal.Decimal {
	return d.MontoUsuario.Sub(AmountPaidForDeuda(d))
}
