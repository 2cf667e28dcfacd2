package models_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ucond.db")), config.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps sqlite transactions from locking each other out
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		config.SetDB(nil)
		_ = sqlDB.Close()
	})
	config.SetDB(db)
	require.NoError(t, models.Migrate(db))
	return db
}

var userSeq int

func createUser(t *testing.T, ctx context.Context, cedula string) *models.User {
	t.Helper()
	userSeq++
	user, err := models.CreateUser(ctx, &models.NewUser{
		Cedula:   cedula,
		Nombre:   "Ana",
		Apellido: "Pérez",
		Correo:   fmt.Sprintf("user%d@ucond.test", userSeq),
		Password: "secreto123",
	})
	require.NoError(t, err)
	return user
}

func createCondominio(t *testing.T, ctx context.Context, admin *models.User) *models.Condominio {
	t.Helper()
	condominio, err := models.CreateCondominio(ctx, &models.NewCondominio{
		IdAdministrador:    admin.ID,
		Nombre:             "Residencias El Parque",
		Tipo:               "Edificio",
		Direccion:          "Av. Principal, Caracas",
		UrlPaginaActuarial: "/public/paginas_actuariales/doc.pdf",
	})
	require.NoError(t, err)
	return condominio
}

// registerViviendas adds one unit per dimension, owned by the given cédula.
func registerViviendas(t *testing.T, ctx context.Context, idCondominio int, cedula string, dimensions ...string) []*models.Vivienda {
	t.Helper()
	input := &models.NewViviendas{}
	for i, d := range dimensions {
		input.Viviendas = append(input.Viviendas, models.NewVivienda{
			Nombre:            fmt.Sprintf("Apto %d", i+1),
			Dimension:         decimal.RequireFromString(d),
			CedulaPropietario: cedula,
			Ocupada:           true,
		})
	}
	viviendas, err := models.RegisterViviendas(ctx, idCondominio, input)
	require.NoError(t, err)
	return viviendas
}

func createGasto(t *testing.T, ctx context.Context, idCondominio int, monto string, fechaLimite string) *models.Gasto {
	t.Helper()
	gasto, err := models.CreateGasto(ctx, idCondominio, &models.NewGasto{
		Concepto:    "Mantenimiento ascensor",
		Monto:       decimal.RequireFromString(monto),
		FechaLimite: fechaLimite,
	})
	require.NoError(t, err)
	return gasto
}

func createPago(t *testing.T, ctx context.Context, deuda models.Deuda, monto string) *models.Pago {
	t.Helper()
	pago, err := models.CreatePago(ctx, &models.NewPago{
		IdVivienda:  deuda.IdVivienda,
		IdDeuda:     deuda.ID,
		MontoPagado: decimal.RequireFromString(monto),
		MetodoPago:  "Transferencia",
	})
	require.NoError(t, err)
	return pago
}

func loadDeuda(t *testing.T, db *gorm.DB, id int) models.Deuda {
	t.Helper()
	var deuda models.Deuda
	require.NoError(t, db.First(&deuda, id).Error)
	return deuda
}

func loadGasto(t *testing.T, db *gorm.DB, id int) models.Gasto {
	t.Helper()
	var gasto models.Gasto
	require.NoError(t, db.First(&gasto, id).Error)
	return gasto
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, utils.StatusOf(err), err.Error())
}
