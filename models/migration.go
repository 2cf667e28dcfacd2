package models

import (
	"log"

	"github.com/ucond/ucond_backend/config"
	"gorm.io/gorm"
)

// Migrate creates or updates every table of the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Condominio{}, &MetodoPago{},
		&Vivienda{},
		&Gasto{}, &Deuda{}, &Pago{},
		&Anuncio{}, &Reporte{},
	)
}

func MigrateTable() {
	if err := Migrate(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}
