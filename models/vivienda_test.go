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
)

func sumDecimals(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func TestComputeAlicuotas(t *testing.T) {
	tests := []struct {
		name       string
		dimensions []string
		want       []string
	}{
		{"proportional", []string{"60", "40"}, []string{"0.6", "0.4"}},
		{"remainder on last unit", []string{"1", "1", "1"}, []string{"0.33333333", "0.33333333", "0.33333334"}},
		{"zero total", []string{"0", "0"}, []string{"0", "0"}},
		{"remainder skips units without area", []string{"1", "1", "1", "0"}, []string{"0.33333333", "0.33333333", "0.33333334", "0"}},
		{"single unit", []string{"75.5"}, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := make([]decimal.Decimal, len(tt.dimensions))
			for i, d := range tt.dimensions {
				dims[i] = decimal.RequireFromString(d)
			}
			got := models.ComputeAlicuotas(dims)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assertDecimal(t, w, got[i])
			}
		})
	}
	assert.Empty(t, models.ComputeAlicuotas(nil))
}

func TestRegisterViviendasRecomputesWholeCondominio(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)

	first := registerViviendas(t, ctx, condominio.ID, "", "1", "1", "1")
	alicuotas := make([]decimal.Decimal, 0, len(first))
	for _, v := range first {
		alicuotas = append(alicuotas, v.Alicuota)
	}
	assertDecimal(t, "1", sumDecimals(alicuotas))

	all := registerViviendas(t, ctx, condominio.ID, "", "1")
	require.Len(t, all, 4)

	stored, err := models.GetViviendasByCondominio(ctx, condominio.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	for _, v := range stored {
		assertDecimal(t, "0.25", v.Alicuota)
	}
}

func TestRegisterViviendasValidation(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)

	_, err := models.RegisterViviendas(ctx, condominio.ID, &models.NewViviendas{})
	var vErr *utils.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = models.RegisterViviendas(ctx, condominio.ID, &models.NewViviendas{
		Viviendas: []models.NewVivienda{{Nombre: "A", Dimension: decimal.NewFromInt(-1)}},
	})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "viviendas[0].dimension", vErr.Issues[0].Campo)

	_, err = models.RegisterViviendas(ctx, 999, &models.NewViviendas{
		Viviendas: []models.NewVivienda{{Nombre: "A", Dimension: decimal.NewFromInt(10)}},
	})
	assertStatus(t, http.StatusNotFound, err)
}

func TestViviendaOwnership(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	owner := createUser(t, ctx, "V20000002")
	condominio := createCondominio(t, ctx, admin)
	registerViviendas(t, ctx, condominio.ID, owner.Cedula, "80", "20")

	viviendas, err := models.GetViviendasForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, viviendas, 2)
	require.NotNil(t, viviendas[0].Condominio)
	assert.Equal(t, condominio.ID, viviendas[0].Condominio.ID)

	alicuotas, err := models.GetAlicuotasForUser(ctx, condominio.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, alicuotas, 2)
	assertDecimal(t, "0.8", alicuotas[0].Alicuota)

	_, err = models.GetAlicuotasForUser(ctx, condominio.ID, admin.ID)
	assertStatus(t, http.StatusNotFound, err)

	ocupada := false
	updated, err := models.UpdateViviendaById(ctx, viviendas[0].ID, &models.UpdateVivienda{
		CedulaPropietario: admin.Cedula,
		Ocupada:           &ocupada,
	})
	require.NoError(t, err)
	assert.Equal(t, admin.Cedula, updated.CedulaPropietario)
	assert.False(t, updated.Ocupada)
	assert.Nil(t, updated.IdPropietario)

	condominios, err := models.GetCondominiosForUser(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, condominios, 1, "owned and administered condominium is listed once")
}

func TestGetDeudasActivasForViviendaWithoutDebts(t *testing.T) {
	setupDB(t)
	ctx := context.Background()
	admin := createUser(t, ctx, "V10000001")
	condominio := createCondominio(t, ctx, admin)
	viviendas := registerViviendas(t, ctx, condominio.ID, "", "10")

	deudas, err := models.GetDeudasActivasForVivienda(ctx, viviendas[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, deudas)
	assert.Empty(t, deudas)

	_, err = models.GetDeudasActivasForVivienda(ctx, 999)
	assertStatus(t, http.StatusNotFound, err)
}
