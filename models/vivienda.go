package models

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

// AlicuotaPlaces is the number of decimal places alícuotas are stored with.
const AlicuotaPlaces = 8

type Vivienda struct {
	ID                int             `gorm:"primary_key" json:"id"`
	IdCondominio      int             `gorm:"not null;index" json:"id_condominio"`
	Nombre            string          `gorm:"size:255;not null" json:"nombre"`
	Dimension         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"dimension"`
	Alicuota          decimal.Decimal `gorm:"type:decimal(12,8);not null" json:"alicuota"`
	IdPropietario     *int            `gorm:"index" json:"id_propietario"`
	CedulaPropietario string          `gorm:"size:15;index" json:"cedula_propietario"`
	Ocupada           bool            `gorm:"not null" json:"ocupada"`
	Condominio        *Condominio     `gorm:"foreignKey:IdCondominio" json:"condominio,omitempty"`
	Propietario       *User           `gorm:"foreignKey:IdPropietario" json:"propietario,omitempty"`
}

type NewVivienda struct {
	Nombre            string          `json:"nombre" validate:"min=1,max=255" msg:"El nombre de la vivienda no puede estar vacío"`
	Dimension         decimal.Decimal `json:"dimension" validate:"gte=0" msg:"La dimensión no puede ser negativa"`
	CedulaPropietario string          `json:"cedula_propietario" validate:"max=15" msg:"La cédula del propietario no puede superar 15 caracteres"`
	Ocupada           bool            `json:"ocupada"`
}

type NewViviendas struct {
	Viviendas []NewVivienda `json:"viviendas" validate:"min=1,dive" msg:"Debe enviar al menos una vivienda"`
}

type UpdateVivienda struct {
	CedulaPropietario string `json:"cedula_propietario" validate:"min=1,max=15" msg:"La cédula del propietario no puede estar vacía"`
	Ocupada           *bool  `json:"ocupada" validate:"required" msg:"El campo ocupada es requerido"`
}

type AlicuotaVivienda struct {
	ID        int             `json:"id"`
	Nombre    string          `json:"nombre"`
	Alicuota  decimal.Decimal `json:"alicuota"`
	Dimension decimal.Decimal `json:"dimension"`
}

// ComputeAlicuotas returns each dimension's share of the total. Every share but the last
// is truncated to AlicuotaPlaces; the last one takes the remainder so the shares add up
// to exactly 1. With a zero total every share is 0.
func ComputeAlicuotas(dimensions []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(dimensions))
	total := decimal.Zero
	for _, d := range dimensions {
		total = total.Add(d)
	}
	if len(dimensions) == 0 || !total.IsPositive() {
		for i := range shares {
			shares[i] = decimal.Zero
		}
		return shares
	}

	last := lastPositive(dimensions)
	assigned := decimal.Zero
	for i, d := range dimensions {
		if i == last {
			continue
		}
		shares[i] = d.Div(total).Truncate(AlicuotaPlaces)
		assigned = assigned.Add(shares[i])
	}
	shares[last] = decimal.NewFromInt(1).Sub(assigned)
	return shares
}

// lastPositive returns the index of the last positive weight, the one that absorbs the
// rounding remainder. Units without weight keep an exact zero.
func lastPositive(weights []decimal.Decimal) int {
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i].IsPositive() {
			return i
		}
	}
	return len(weights) - 1
}

// RegisterViviendas adds units to a condominium and recomputes the alícuota of every
// unit in it, so the shares keep adding up to 1.
func RegisterViviendas(ctx context.Context, idCondominio int, input *NewViviendas) ([]*Vivienda, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}

	nuevas := make([]*Vivienda, 0, len(input.Viviendas))
	for _, v := range input.Viviendas {
		nuevas = append(nuevas, &Vivienda{
			IdCondominio:      idCondominio,
			Nombre:            v.Nombre,
			Dimension:         v.Dimension,
			Alicuota:          decimal.Zero,
			CedulaPropietario: v.CedulaPropietario,
			Ocupada:           v.Ocupada,
		})
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&nuevas).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	var viviendas []*Vivienda
	if err := tx.Where("id_condominio = ?", idCondominio).Order("id").Find(&viviendas).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	dimensions := make([]decimal.Decimal, len(viviendas))
	for i, v := range viviendas {
		dimensions[i] = v.Dimension
	}
	for i, alicuota := range ComputeAlicuotas(dimensions) {
		viviendas[i].Alicuota = alicuota
		if err := tx.Model(&Vivienda{}).Where("id = ?", viviendas[i].ID).Update("alicuota", alicuota).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return viviendas, nil
}

func GetVivienda(ctx context.Context, id int) (*Vivienda, error) {
	return utils.FetchModel[Vivienda](ctx, config.GetDB(), id, "Vivienda no encontrada", "Condominio")
}

// UpdateViviendaById changes the owner (by cédula) and occupancy of a unit. The owner
// id link is cleared since it may point to the previous owner.
func UpdateViviendaById(ctx context.Context, id int, input *UpdateVivienda) (*Vivienda, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	db := config.GetDB()
	vivienda, err := utils.FetchModel[Vivienda](ctx, db, id, "Vivienda no encontrada")
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Model(vivienda).Updates(map[string]interface{}{
		"id_propietario":     nil,
		"cedula_propietario": input.CedulaPropietario,
		"ocupada":            *input.Ocupada,
	}).Error
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Vivienda](ctx, db, id, "Vivienda no encontrada")
}

func GetViviendasByCondominio(ctx context.Context, idCondominio int) ([]*Vivienda, error) {
	results := make([]*Vivienda, 0)
	err := config.GetDB().WithContext(ctx).Where("id_condominio = ?", idCondominio).Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetViviendasForUser(ctx context.Context, userId int) ([]*Vivienda, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, userId, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}
	results := make([]*Vivienda, 0)
	err = ownsVivienda(db.WithContext(ctx), user).Preload("Condominio").Order("viviendas.id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetAlicuotasForUser(ctx context.Context, idCondominio int, userId int) ([]*AlicuotaVivienda, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, userId, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}
	var viviendas []*Vivienda
	err = ownsVivienda(db.WithContext(ctx).Where("viviendas.id_condominio = ?", idCondominio), user).
		Order("viviendas.id").Find(&viviendas).Error
	if err != nil {
		return nil, err
	}
	if len(viviendas) == 0 {
		return nil, utils.NewNotFoundError("Usuario sin viviendas en el condominio")
	}
	results := make([]*AlicuotaVivienda, 0, len(viviendas))
	for _, v := range viviendas {
		results = append(results, &AlicuotaVivienda{
			ID:        v.ID,
			Nombre:    v.Nombre,
			Alicuota:  v.Alicuota,
			Dimension: v.Dimension,
		})
	}
	return results, nil
}
