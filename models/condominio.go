package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

type Condominio struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	IdAdministrador    int             `gorm:"not null;index" json:"id_administrador"`
	Nombre             string          `gorm:"size:255;not null" json:"nombre"`
	Tipo               string          `gorm:"size:255;not null" json:"tipo"`
	Direccion          string          `gorm:"size:255;not null" json:"direccion"`
	UrlPaginaActuarial string          `gorm:"size:512;not null" json:"url_pagina_actuarial"`
	UrlComprobantePlan *string         `gorm:"size:512" json:"url_comprobante_plan"`
	EstadoPago         bool            `gorm:"not null" json:"estado_pago"`
	Reserva            decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"reserva"`
	FechaCreado        time.Time       `gorm:"autoCreateTime" json:"fecha_creado"`
	Administrador      *User           `gorm:"foreignKey:IdAdministrador" json:"-"`
	MetodosPago        []MetodoPago    `gorm:"foreignKey:IdCondominio" json:"metodos_pago,omitempty"`
}

type MetodoPago struct {
	ID           int    `gorm:"primary_key" json:"id"`
	IdCondominio int    `gorm:"not null;index" json:"id_condominio"`
	Tipo         string `gorm:"size:255;not null" json:"tipo"`
}

func (MetodoPago) TableName() string {
	return "metodos_pago"
}

type NewCondominio struct {
	IdAdministrador    int    `form:"id_administrador" json:"id_administrador" validate:"min=1" msg:"Se debe especificar un id de administrador válido"`
	Nombre             string `form:"nombre" json:"nombre" validate:"min=1,max=255" msg:"El nombre no puede estar vacío"`
	Tipo               string `form:"tipo" json:"tipo" validate:"min=1,max=255" msg:"El tipo no puede estar vacío"`
	Direccion          string `form:"direccion" json:"direccion" validate:"min=1,max=255" msg:"La dirección no puede estar vacía"`
	UrlPaginaActuarial string `form:"-" json:"-"`
}

type NewMetodosPago struct {
	MetodosPago []string `json:"metodos_pago" validate:"required,dive,min=1,max=255" msg:"Los métodos de pago no pueden estar vacíos"`
}

// Validate checks the fields and that the administrator exists. Handlers call it before
// storing the uploaded document.
func (input *NewCondominio) Validate(ctx context.Context) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	exists, err := utils.ExistsByID[User](ctx, config.GetDB(), input.IdAdministrador)
	if err != nil {
		return err
	}
	if !exists {
		return utils.NewBadRequestError("El id de administrador no existe")
	}
	return nil
}

func CreateCondominio(ctx context.Context, input *NewCondominio) (*Condominio, error) {
	if err := input.Validate(ctx); err != nil {
		return nil, err
	}
	condominio := Condominio{
		IdAdministrador:    input.IdAdministrador,
		Nombre:             input.Nombre,
		Tipo:               input.Tipo,
		Direccion:          input.Direccion,
		UrlPaginaActuarial: input.UrlPaginaActuarial,
		Reserva:            decimal.Zero,
	}
	if err := config.GetDB().WithContext(ctx).Create(&condominio).Error; err != nil {
		return nil, err
	}
	return &condominio, nil
}

func GetCondominio(ctx context.Context, id int) (*Condominio, error) {
	return utils.FetchModel[Condominio](ctx, config.GetDB(), id, "El condominio no existe", "MetodosPago")
}

func condominioExists(ctx context.Context, id int) error {
	exists, err := utils.ExistsByID[Condominio](ctx, config.GetDB(), id)
	if err != nil {
		return err
	}
	if !exists {
		return utils.NewNotFoundError("Condominio no encontrado")
	}
	return nil
}

// MarkPlanPaid records the proof of payment of the service plan and flags the
// condominium as paid.
func MarkPlanPaid(ctx context.Context, id int, urlComprobante string) (*Condominio, error) {
	db := config.GetDB()
	condominio, err := utils.FetchModel[Condominio](ctx, db, id, "Condominio no encontrado")
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(condominio).Updates(map[string]interface{}{
		"estado_pago":          true,
		"url_comprobante_plan": urlComprobante,
	}).Error
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Condominio](ctx, db, id, "Condominio no encontrado")
}

func GetMetodosPago(ctx context.Context, idCondominio int) ([]string, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	tipos := make([]string, 0)
	err := config.GetDB().WithContext(ctx).Model(&MetodoPago{}).
		Where("id_condominio = ?", idCondominio).Order("id").Pluck("tipo", &tipos).Error
	if err != nil {
		return nil, err
	}
	return tipos, nil
}

// ReplaceMetodosPago swaps the whole set of payment methods of a condominium.
func ReplaceMetodosPago(ctx context.Context, idCondominio int, input *NewMetodosPago) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := condominioExists(ctx, idCondominio); err != nil {
		return err
	}

	metodos := make([]MetodoPago, 0, len(input.MetodosPago))
	for _, tipo := range utils.UniqueSlice(input.MetodosPago) {
		metodos = append(metodos, MetodoPago{IdCondominio: idCondominio, Tipo: tipo})
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Where("id_condominio = ?", idCondominio).Delete(&MetodoPago{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(metodos) > 0 {
		if err := tx.Create(&metodos).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// GetCondominiosForUser lists the condominiums where the user owns a unit followed by
// the ones it administers, without repetitions.
func GetCondominiosForUser(ctx context.Context, userId int) ([]*Condominio, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, userId, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}

	var owned []*Condominio
	subQuery := ownsVivienda(db.Model(&Vivienda{}).Select("viviendas.id_condominio"), user)
	if err := db.WithContext(ctx).Where("id IN (?)", subQuery).Order("id").Find(&owned).Error; err != nil {
		return nil, err
	}
	var administered []*Condominio
	if err := db.WithContext(ctx).Where("id_administrador = ?", userId).Order("id").Find(&administered).Error; err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(owned)+len(administered))
	results := make([]*Condominio, 0, len(owned)+len(administered))
	for _, c := range append(owned, administered...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		results = append(results, c)
	}
	return results, nil
}

// DeleteCondominio removes the condominium and everything hanging from it in one
// transaction, children first.
func DeleteCondominio(ctx context.Context, id int) error {
	db := config.GetDB()
	exists, err := utils.ExistsByID[Condominio](ctx, db, id)
	if err != nil {
		return err
	}
	if !exists {
		return utils.NewNotFoundError("El condominio no existe")
	}

	tx := db.WithContext(ctx).Begin()

	var gastoIds []int
	if err := tx.Model(&Gasto{}).Where("id_condominio = ?", id).Pluck("id", &gastoIds).Error; err != nil {
		tx.Rollback()
		return err
	}
	if len(gastoIds) > 0 {
		var deudaIds []int
		if err := tx.Model(&Deuda{}).Where("id_gasto IN ?", gastoIds).Pluck("id", &deudaIds).Error; err != nil {
			tx.Rollback()
			return err
		}
		if len(deudaIds) > 0 {
			if err := tx.Where("id_deuda IN ?", deudaIds).Delete(&Pago{}).Error; err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.Where("id IN ?", deudaIds).Delete(&Deuda{}).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	for _, model := range []interface{}{&Gasto{}, &Vivienda{}, &Reporte{}, &Anuncio{}, &MetodoPago{}} {
		if err := tx.Where("id_condominio = ?", id).Delete(model).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Where("id = ?", id).Delete(&Condominio{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
