package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

// MoneyPlaces is the number of decimal places monetary amounts are stored with.
const MoneyPlaces = 2

type Gasto struct {
	ID           int             `gorm:"primary_key" json:"id"`
	IdCondominio int             `gorm:"not null;index" json:"id_condominio"`
	Concepto     string          `gorm:"size:255;not null" json:"concepto"`
	Monto        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monto"`
	MontoPagado  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monto_pagado"`
	FechaLimite  time.Time       `gorm:"not null;index" json:"fecha_limite"`
	FechaCreado  time.Time       `gorm:"autoCreateTime" json:"fecha_creado"`
	Activo       bool            `gorm:"not null;index" json:"activo"`
	Condominio   *Condominio     `gorm:"foreignKey:IdCondominio" json:"condominio,omitempty"`
	Deudas       []Deuda         `gorm:"foreignKey:IdGasto" json:"deudas,omitempty"`
}

type NewGasto struct {
	Concepto    string          `json:"concepto" validate:"min=1,max=255" msg:"El concepto no puede estar vacío"`
	Monto       decimal.Decimal `json:"monto" validate:"gt=0" msg:"El monto debe ser mayor a 0"`
	FechaLimite string          `json:"fecha_limite" validate:"required" msg:"La fecha límite es requerida"`
}

// DeudaGasto is the debt row shown inside an expense listing.
type DeudaGasto struct {
	ID             int             `json:"id"`
	MontoUsuario   decimal.Decimal `json:"monto_usuario"`
	NombreVivienda string          `json:"nombre_vivienda"`
	CedulaUsuario  string          `json:"cedula_usuario"`
}

type GastoConDeudas struct {
	Gasto
	Deudas []DeudaGasto `json:"deudas"`
}

type GastosCondominio struct {
	Pagados  []*GastoConDeudas `json:"pagados"`
	PorPagar []*GastoConDeudas `json:"por_pagar"`
}

var ErrNoViviendas = errors.New("no units to apportion")

// ApportionGasto splits monto among units proportionally to their alícuotas. Every share
// but the last is truncated to MoneyPlaces and the last takes the remainder, so shares
// always add up to monto. When every alícuota is 0 the split is even.
func ApportionGasto(monto decimal.Decimal, alicuotas []decimal.Decimal) ([]decimal.Decimal, error) {
	n := len(alicuotas)
	if n == 0 {
		return nil, ErrNoViviendas
	}
	weights := make([]decimal.Decimal, n)
	total := decimal.Zero
	for i, a := range alicuotas {
		weights[i] = a
		total = total.Add(a)
	}
	if !total.IsPositive() {
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		total = decimal.NewFromInt(int64(n))
	}

	shares := make([]decimal.Decimal, n)
	last := lastPositive(weights)
	assigned := decimal.Zero
	for i := range weights {
		if i == last {
			continue
		}
		shares[i] = monto.Mul(weights[i]).Div(total).Truncate(MoneyPlaces)
		assigned = assigned.Add(shares[i])
	}
	shares[last] = monto.Sub(assigned)
	return shares, nil
}

// CreateGasto stores an expense and apportions it into one debt per unit of the
// condominium, in one transaction.
func CreateGasto(ctx context.Context, idCondominio int, input *NewGasto) (*Gasto, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	fechaLimite, err := utils.ParseDate(input.FechaLimite)
	if err != nil {
		return nil, utils.NewValidationError("fecha_limite", "La fecha límite no es válida")
	}
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	monto := input.Monto.Round(MoneyPlaces)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	var viviendas []*Vivienda
	if err := tx.Where("id_condominio = ?", idCondominio).Order("id").Find(&viviendas).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	alicuotas := make([]decimal.Decimal, len(viviendas))
	for i, v := range viviendas {
		alicuotas[i] = v.Alicuota
	}
	shares, err := ApportionGasto(monto, alicuotas)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, ErrNoViviendas) {
			return nil, utils.NewBadRequestError("El condominio no tiene viviendas registradas")
		}
		return nil, err
	}

	owners, err := resolveOwnerIds(tx, viviendas)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	gasto := Gasto{
		IdCondominio: idCondominio,
		Concepto:     input.Concepto,
		Monto:        monto,
		MontoPagado:  decimal.Zero,
		FechaLimite:  fechaLimite.UTC(),
		Activo:       true,
	}
	for i, v := range viviendas {
		gasto.Deudas = append(gasto.Deudas, Deuda{
			IdVivienda:   v.ID,
			IdUsuario:    owners[v.ID],
			MontoUsuario: shares[i],
			MontoPagado:  decimal.Zero,
			Activa:       shares[i].IsPositive(),
		})
	}
	if err := tx.Create(&gasto).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &gasto, nil
}

func GetGastosByCondominio(ctx context.Context, idCondominio int) (*GastosCondominio, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	var gastos []*Gasto
	err := config.GetDB().WithContext(ctx).
		Preload("Deudas", func(db *gorm.DB) *gorm.DB { return db.Order("deudas.id") }).
		Preload("Deudas.Vivienda").
		Where("id_condominio = ?", idCondominio).
		Order("fecha_limite").Find(&gastos).Error
	if err != nil {
		return nil, err
	}

	result := &GastosCondominio{
		Pagados:  make([]*GastoConDeudas, 0),
		PorPagar: make([]*GastoConDeudas, 0),
	}
	for _, g := range gastos {
		row := &GastoConDeudas{Gasto: *g, Deudas: make([]DeudaGasto, 0, len(g.Deudas))}
		row.Gasto.Deudas = nil
		for _, d := range g.Deudas {
			item := DeudaGasto{ID: d.ID, MontoUsuario: d.MontoUsuario}
			if d.Vivienda != nil {
				item.NombreVivienda = d.Vivienda.Nombre
				item.CedulaUsuario = d.Vivienda.CedulaPropietario
			}
			row.Deudas = append(row.Deudas, item)
		}
		if g.Activo {
			result.PorPagar = append(result.PorPagar, row)
		} else {
			result.Pagados = append(result.Pagados, row)
		}
	}
	return result, nil
}

// GetGastosForExport loads every expense of a condominium with its debts and payments.
func GetGastosForExport(ctx context.Context, idCondominio int) ([]*Gasto, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	var gastos []*Gasto
	err := config.GetDB().WithContext(ctx).
		Preload("Deudas", func(db *gorm.DB) *gorm.DB { return db.Order("deudas.id") }).
		Preload("Deudas.Vivienda").
		Preload("Deudas.Pagos").
		Where("id_condominio = ?", idCondominio).
		Order("fecha_limite").Find(&gastos).Error
	if err != nil {
		return nil, err
	}
	return gastos, nil
}
