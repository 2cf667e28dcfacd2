package models

import (
	"context"
	"time"

	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

// Reporte is an incident a resident raises in a condominium. It stays active until an
// administrator closes it.
type Reporte struct {
	ID           int        `gorm:"primary_key" json:"id"`
	IdCondominio int        `gorm:"not null;index" json:"id_condominio"`
	IdUsuario    int        `gorm:"not null;index" json:"id_usuario"`
	Titulo       string     `gorm:"size:255;not null" json:"titulo"`
	Descripcion  string     `gorm:"type:text;not null" json:"descripcion"`
	Activo       bool       `gorm:"not null;index" json:"activo"`
	Fecha        time.Time  `gorm:"autoCreateTime" json:"fecha"`
	FechaCierre  *time.Time `json:"fecha_cierre"`
	Usuario      *User      `gorm:"foreignKey:IdUsuario" json:"usuario,omitempty"`
}

type NewReporte struct {
	IdUsuario   int    `json:"id_usuario" validate:"min=1" msg:"Se debe especificar un id de usuario válido"`
	Titulo      string `json:"titulo" validate:"min=1,max=255" msg:"El título no puede estar vacío"`
	Descripcion string `json:"descripcion" validate:"min=1,max=5000" msg:"La descripción no puede estar vacía"`
}

func CreateReporte(ctx context.Context, idCondominio int, input *NewReporte) (*Reporte, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	exists, err := utils.ExistsByID[User](ctx, db, input.IdUsuario)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewBadRequestError("El usuario no existe")
	}

	reporte := Reporte{
		IdCondominio: idCondominio,
		IdUsuario:    input.IdUsuario,
		Titulo:       input.Titulo,
		Descripcion:  input.Descripcion,
		Activo:       true,
	}
	if err := db.WithContext(ctx).Create(&reporte).Error; err != nil {
		return nil, err
	}
	return &reporte, nil
}

// GetReportesByCondominio lists the reports of a condominium in the given state with
// the user who raised each one.
func GetReportesByCondominio(ctx context.Context, idCondominio int, activo bool) ([]*Reporte, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	results := make([]*Reporte, 0)
	err := config.GetDB().WithContext(ctx).Preload("Usuario").
		Where("id_condominio = ? AND activo = ?", idCondominio, activo).
		Order("fecha DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CerrarReporte marks a report as closed. Closing a closed report keeps its first
// closing date.
func CerrarReporte(ctx context.Context, id int) (*Reporte, error) {
	db := config.GetDB()
	reporte, err := utils.FetchModel[Reporte](ctx, db, id, "Reporte no encontrado")
	if err != nil {
		return nil, err
	}
	if !reporte.Activo {
		return reporte, nil
	}
	now := time.Now().UTC()
	err = db.WithContext(ctx).Model(&Reporte{}).Where("id = ?", id).Updates(map[string]interface{}{
		"activo":       false,
		"fecha_cierre": now,
	}).Error
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Reporte](ctx, db, id, "Reporte no encontrado")
}
