// seed-admin creates the administrator account condominiums are registered under, or
// resets its password when the cédula or correo already exists.
//
// Usage:
//
//	ADMIN_CEDULA=V-1 ADMIN_CORREO=admin@ucond.app ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultNombre   = "Administrador"
	defaultApellido = "UCond"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	cedula := envOr("ADMIN_CEDULA", "")
	correo := strings.ToLower(envOr("ADMIN_CORREO", ""))
	password := os.Getenv("ADMIN_PASSWORD")
	if cedula == "" || correo == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_CEDULA, ADMIN_CORREO and ADMIN_PASSWORD are required")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	defer func() { _ = config.CloseDB() }()
	if err := models.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err := db.WithContext(ctx).Where("cedula = ? OR correo = ?", cedula, correo).Take(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user, err := models.CreateUser(ctx, &models.NewUser{
			Cedula:   cedula,
			Nombre:   envOr("ADMIN_NOMBRE", defaultNombre),
			Apellido: envOr("ADMIN_APELLIDO", defaultApellido),
			Correo:   correo,
			Password: password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: id=%d cedula=%q\n", user.ID, user.Cedula)
		return
	}

	if err := utils.ValidateVar(password, "min=8,max=72", "password", "La contraseña debe tener entre 8 y 72 caracteres"); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Model(&existing).Update("password", string(hashed)).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: id=%d cedula=%q\n", existing.ID, existing.Cedula)
}
