package models_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

func TestConfirmPagoSettlesDebtThenExpense(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")

	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")
	require.Len(t, gasto.Deudas, 2)
	deudaA, deudaB := gasto.Deudas[0], gasto.Deudas[1]
	assertDecimal(t, "600", deudaA.MontoUsuario)
	assertDecimal(t, "400", deudaB.MontoUsuario)

	pagoA := createPago(t, ctx, deudaA, "600")
	assert.False(t, pagoA.Confirmado)
	assert.True(t, loadDeuda(t, db, deudaA.ID).Activa, "creating a payment leaves the debt untouched")

	confirmed, err := models.ConfirmPago(ctx, pagoA.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmado)

	a := loadDeuda(t, db, deudaA.ID)
	assert.False(t, a.Activa)
	assertDecimal(t, "600", a.MontoPagado)
	g := loadGasto(t, db, gasto.ID)
	assert.True(t, g.Activo)
	assertDecimal(t, "600", g.MontoPagado)

	pagoB := createPago(t, ctx, deudaB, "400")
	_, err = models.ConfirmPago(ctx, pagoB.ID)
	require.NoError(t, err)

	b := loadDeuda(t, db, deudaB.ID)
	assert.False(t, b.Activa)
	assertDecimal(t, "400", b.MontoPagado)
	g = loadGasto(t, db, gasto.ID)
	assert.False(t, g.Activo)
	assertDecimal(t, "1000", g.MontoPagado)
}

func TestConfirmPagoTwiceDoesNotDoubleCount(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")
	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")

	pago := createPago(t, ctx, gasto.Deudas[0], "300")
	for i := 0; i < 2; i++ {
		confirmed, err := models.ConfirmPago(ctx, pago.ID)
		require.NoError(t, err)
		assert.True(t, confirmed.Confirmado)
	}

	deuda := loadDeuda(t, db, gasto.Deudas[0].ID)
	assert.True(t, deuda.Activa)
	assertDecimal(t, "300", deuda.MontoPagado)
	assertDecimal(t, "300", loadGasto(t, db, gasto.ID).MontoPagado)
}

func TestConfirmPagoRejectsOverpayment(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")
	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")
	deuda := gasto.Deudas[0]

	first := createPago(t, ctx, deuda, "400")
	// registered before pending payments counted against the balance
	second := models.Pago{
		IdDeuda:     deuda.ID,
		IdVivienda:  deuda.IdVivienda,
		MontoPagado: decimal.NewFromInt(400),
		MetodoPago:  "Transferencia",
	}
	require.NoError(t, db.Create(&second).Error)

	_, err := models.ConfirmPago(ctx, first.ID)
	require.NoError(t, err)
	_, err = models.ConfirmPago(ctx, second.ID)
	assertStatus(t, http.StatusBadRequest, err)
	assert.Equal(t, "El pago excede el monto pendiente de la deuda", err.Error())

	var reloaded models.Pago
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.False(t, reloaded.Confirmado)
	assertDecimal(t, "400", loadDeuda(t, db, deuda.ID).MontoPagado)
}

func TestCreatePagoCountsPendingPayments(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")
	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")
	deuda := gasto.Deudas[0]

	createPago(t, ctx, deuda, "400")
	_, err := models.CreatePago(ctx, &models.NewPago{
		IdVivienda:  deuda.IdVivienda,
		IdDeuda:     deuda.ID,
		MontoPagado: decimal.NewFromInt(300),
		MetodoPago:  "Transferencia",
	})
	assertStatus(t, http.StatusBadRequest, err)
	assert.Equal(t, "El monto pagado excede el monto pendiente de la deuda", err.Error())

	rest := createPago(t, ctx, deuda, "200")
	_, err = models.ConfirmPago(ctx, rest.ID)
	require.NoError(t, err)

	var pagos []models.Pago
	require.NoError(t, db.Where("id_deuda = ?", deuda.ID).Find(&pagos).Error)
	assert.Len(t, pagos, 2)
}

func TestCreateValidatedPagoSkipsUserLookup(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	owner := createUser(t, ctx, "V20000002")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, owner.Cedula, "50")
	gasto := createGasto(t, ctx, condominio.ID, "120.50", "2026-11-01")

	userQueries := 0
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:user_queries", func(tx *gorm.DB) {
		if tx.Statement.Table == "users" {
			userQueries++
		}
	}))
	input := func() *models.NewPago {
		return &models.NewPago{
			IdUsuario:   owner.ID,
			IdVivienda:  gasto.Deudas[0].IdVivienda,
			IdDeuda:     gasto.Deudas[0].ID,
			MontoPagado: decimal.NewFromInt(10),
			MetodoPago:  "Zelle",
		}
	}

	_, err := models.CreatePago(ctx, input())
	require.NoError(t, err)
	assert.Equal(t, 1, userQueries)

	pago, err := models.CreateValidatedPago(ctx, input())
	require.NoError(t, err)
	assert.Equal(t, 1, userQueries)
	require.NotNil(t, pago.IdUsuario)
	assert.Equal(t, owner.ID, *pago.IdUsuario)
}

func TestConfirmPagoNotFound(t *testing.T) {
	setupDB(t)
	_, err := models.ConfirmPago(context.Background(), 999)
	assertStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "Pago no encontrado", err.Error())
}

func TestCreatePagoRejections(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	viviendas := registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")
	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")
	deudaA, deudaB := gasto.Deudas[0], gasto.Deudas[1]

	newPago := func(idVivienda, idDeuda int, monto string) *models.NewPago {
		return &models.NewPago{
			IdVivienda:  idVivienda,
			IdDeuda:     idDeuda,
			MontoPagado: decimal.RequireFromString(monto),
			MetodoPago:  "Pago móvil",
		}
	}

	_, err := models.CreatePago(ctx, newPago(deudaA.IdVivienda, deudaA.ID, "0"))
	var vErr *utils.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "monto_pagado", vErr.Issues[0].Campo)

	_, err = models.CreatePago(ctx, newPago(999, deudaA.ID, "10"))
	assertStatus(t, http.StatusNotFound, err)

	_, err = models.CreatePago(ctx, newPago(deudaA.IdVivienda, 999, "10"))
	assertStatus(t, http.StatusNotFound, err)

	_, err = models.CreatePago(ctx, newPago(viviendas[1].ID, deudaA.ID, "10"))
	assertStatus(t, http.StatusBadRequest, err)

	_, err = models.CreatePago(ctx, newPago(deudaA.IdVivienda, deudaA.ID, "600.01"))
	assertStatus(t, http.StatusBadRequest, err)
	assert.Equal(t, "El monto pagado excede el monto pendiente de la deuda", err.Error())

	pago := createPago(t, ctx, deudaB, "400")
	_, err = models.ConfirmPago(ctx, pago.ID)
	require.NoError(t, err)
	_, err = models.CreatePago(ctx, newPago(deudaB.IdVivienda, deudaB.ID, "1"))
	assertStatus(t, http.StatusBadRequest, err)
	assert.Equal(t, "La deuda ya fue pagada", err.Error())
}

func TestCreatePagoLinksUser(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	owner := createUser(t, ctx, "V20000002")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, owner.Cedula, "50")
	gasto := createGasto(t, ctx, condominio.ID, "120.50", "2026-11-01")

	pago, err := models.CreatePago(ctx, &models.NewPago{
		IdUsuario:   owner.ID,
		IdVivienda:  gasto.Deudas[0].IdVivienda,
		IdDeuda:     gasto.Deudas[0].ID,
		MontoPagado: decimal.RequireFromString("20.50"),
		MetodoPago:  "Zelle",
	})
	require.NoError(t, err)
	require.NotNil(t, pago.IdUsuario)
	assert.Equal(t, owner.ID, *pago.IdUsuario)

	pagos, err := models.GetPagosForUser(ctx, owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, pagos, 1)
	assert.Equal(t, "Mantenimiento ascensor", pagos[0].Concepto)

	_, err = models.CreatePago(ctx, &models.NewPago{
		IdUsuario:   999,
		IdVivienda:  gasto.Deudas[0].IdVivienda,
		IdDeuda:     gasto.Deudas[0].ID,
		MontoPagado: decimal.RequireFromString("1"),
		MetodoPago:  "Zelle",
	})
	assertStatus(t, http.StatusBadRequest, err)
}

func TestPagoListings(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, "V20000002", "60", "40")
	gasto := createGasto(t, ctx, condominio.ID, "1000", "2026-11-01")

	confirmed := createPago(t, ctx, gasto.Deudas[0], "100")
	_, err := models.ConfirmPago(ctx, confirmed.ID)
	require.NoError(t, err)
	createPago(t, ctx, gasto.Deudas[0], "50")
	createPago(t, ctx, gasto.Deudas[1], "25")

	byCondominio, err := models.GetPagosByCondominio(ctx, condominio.ID)
	require.NoError(t, err)
	assert.Len(t, byCondominio.Confirmados, 1)
	assert.Len(t, byCondominio.PorConfirmar, 2)
	require.NotNil(t, byCondominio.Confirmados[0].Deuda)
	assert.NotNil(t, byCondominio.Confirmados[0].Deuda.Vivienda)

	byVivienda, err := models.GetPagosForVivienda(ctx, gasto.Deudas[0].IdVivienda)
	require.NoError(t, err)
	assert.Len(t, byVivienda, 2)
	for _, p := range byVivienda {
		assert.Equal(t, "Mantenimiento ascensor", p.Concepto)
	}

	_, err = models.GetPagosForVivienda(ctx, 999)
	assertStatus(t, http.StatusNotFound, err)
}
