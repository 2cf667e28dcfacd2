package models

import (
	"context"
	"time"

	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

type Anuncio struct {
	ID           int       `gorm:"primary_key" json:"id"`
	IdCondominio int       `gorm:"not null;index" json:"id_condominio"`
	Titulo       string    `gorm:"size:255;not null" json:"titulo"`
	Descripcion  string    `gorm:"type:text;not null" json:"descripcion"`
	Fecha        time.Time `gorm:"autoCreateTime;index" json:"fecha"`
}

type NewAnuncio struct {
	Titulo      string `json:"titulo" validate:"min=1,max=255" msg:"El título no puede estar vacío"`
	Descripcion string `json:"descripcion" validate:"min=1,max=5000" msg:"La descripción no puede estar vacía"`
}

func CreateAnuncio(ctx context.Context, idCondominio int, input *NewAnuncio) (*Anuncio, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	anuncio := Anuncio{
		IdCondominio: idCondominio,
		Titulo:       input.Titulo,
		Descripcion:  input.Descripcion,
	}
	if err := config.GetDB().WithContext(ctx).Create(&anuncio).Error; err != nil {
		return nil, err
	}
	return &anuncio, nil
}

// GetAnunciosByCondominio lists announcements, newest first.
func GetAnunciosByCondominio(ctx context.Context, idCondominio int) ([]*Anuncio, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	results := make([]*Anuncio, 0)
	err := config.GetDB().WithContext(ctx).
		Where("id_condominio = ?", idCondominio).
		Order("fecha DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
