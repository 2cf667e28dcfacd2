package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

type Deuda struct {
	ID           int             `gorm:"primary_key" json:"id"`
	IdGasto      int             `gorm:"not null;index" json:"id_gasto"`
	IdVivienda   int             `gorm:"not null;index" json:"id_vivienda"`
	IdUsuario    *int            `gorm:"index" json:"id_usuario"`
	MontoUsuario decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monto_usuario"`
	MontoPagado  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monto_pagado"`
	Activa       bool            `gorm:"not null;index" json:"activa"`
	Gasto        *Gasto          `gorm:"foreignKey:IdGasto" json:"gasto,omitempty"`
	Vivienda     *Vivienda       `gorm:"foreignKey:IdVivienda" json:"vivienda,omitempty"`
	Pagos        []Pago          `gorm:"foreignKey:IdDeuda" json:"pagos,omitempty"`
}

// DeudaVivienda is an active debt of a unit with its confirmed and pending totals.
type DeudaVivienda struct {
	ID                int             `json:"id"`
	Gasto             *Gasto          `json:"gasto"`
	MontoOriginal     decimal.Decimal `json:"monto_original"`
	MontoPagado       decimal.Decimal `json:"monto_pagado"`
	MontoPorConfirmar decimal.Decimal `json:"monto_por_confirmar"`
}

// resolveOwnerIds maps every unit to the account of its owner, by id when linked or by
// cédula otherwise. Units without an account map to nil.
func resolveOwnerIds(db *gorm.DB, viviendas []*Vivienda) (map[int]*int, error) {
	owners := make(map[int]*int, len(viviendas))
	var cedulas []string
	for _, v := range viviendas {
		if v.IdPropietario != nil {
			owners[v.ID] = v.IdPropietario
		} else if v.CedulaPropietario != "" {
			cedulas = append(cedulas, v.CedulaPropietario)
		}
	}
	if len(cedulas) == 0 {
		return owners, nil
	}
	var users []*User
	if err := db.Where("cedula IN ?", utils.UniqueSlice(cedulas)).Find(&users).Error; err != nil {
		return nil, err
	}
	byCedula := make(map[string]int, len(users))
	for _, u := range users {
		byCedula[u.Cedula] = u.ID
	}
	for _, v := range viviendas {
		if _, ok := owners[v.ID]; ok {
			continue
		}
		if id, ok := byCedula[v.CedulaPropietario]; ok {
			owners[v.ID] = &id
		}
	}
	return owners, nil
}

// GetDeudasActivasForVivienda lists the active debts of a unit. A unit without debts
// yields an empty list.
func GetDeudasActivasForVivienda(ctx context.Context, idVivienda int) ([]*DeudaVivienda, error) {
	db := config.GetDB()
	exists, err := utils.ExistsByID[Vivienda](ctx, db, idVivienda)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewNotFoundError("Vivienda no encontrada")
	}

	var deudas []*Deuda
	err = db.WithContext(ctx).Preload("Gasto").Preload("Pagos").
		Where("id_vivienda = ? AND activa = ?", idVivienda, true).
		Order("id").Find(&deudas).Error
	if err != nil {
		return nil, err
	}
	results := make([]*DeudaVivienda, 0, len(deudas))
	for _, d := range deudas {
		results = append(results, &DeudaVivienda{
			ID:                d.ID,
			Gasto:             d.Gasto,
			MontoOriginal:     d.MontoUsuario,
			MontoPagado:       AmountPaidForDeuda(d),
			MontoPorConfirmar: AmountPendingForDeuda(d),
		})
	}
	return results, nil
}

// GetDeudasActivasForUser lists the active debts of the units a user owns, optionally
// restricted to one condominium.
func GetDeudasActivasForUser(ctx context.Context, userId int, idCondominio *int) ([]*Deuda, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, userId, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}
	if idCondominio != nil {
		if err := condominioExists(ctx, *idCondominio); err != nil {
			return nil, err
		}
	}

	query := db.WithContext(ctx).
		Joins("JOIN viviendas ON viviendas.id = deudas.id_vivienda").
		Joins("JOIN gastos ON gastos.id = deudas.id_gasto").
		Where("deudas.activa = ?", true).
		Where("(deudas.id_usuario = ? OR viviendas.id_propietario = ? OR viviendas.cedula_propietario = ?)", user.ID, user.ID, user.Cedula)
	if idCondominio != nil {
		query = query.Where("gastos.id_condominio = ?", *idCondominio)
	}

	results := make([]*Deuda, 0)
	err = query.Select("deudas.*").Preload("Gasto").Order("gastos.fecha_limite, deudas.id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindDeudasToNotify returns active debts whose expense is due within [from, to], with
// the expense, its condominium and the unit loaded.
func FindDeudasToNotify(ctx context.Context, from, to time.Time) ([]*Deuda, error) {
	results := make([]*Deuda, 0)
	err := config.GetDB().WithContext(ctx).
		Joins("JOIN gastos ON gastos.id = deudas.id_gasto").
		Where("deudas.activa = ?", true).
		Where("gastos.fecha_limite >= ? AND gastos.fecha_limite <= ?", from.UTC(), to.UTC()).
		Select("deudas.*").
		Preload("Gasto.Condominio").
		Preload("Vivienda").
		Order("deudas.id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
