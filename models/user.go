package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Cedula    string    `gorm:"size:15;not null;uniqueIndex" json:"cedula"`
	Nombre    string    `gorm:"size:255;not null" json:"nombre"`
	Apellido  string    `gorm:"size:255;not null" json:"apellido"`
	Correo    string    `gorm:"size:255;not null;uniqueIndex" json:"correo"`
	Telefono  string    `gorm:"size:20" json:"telefono"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Cedula   string `json:"cedula" validate:"min=1,max=15" msg:"La cédula no puede estar vacía"`
	Nombre   string `json:"nombre" validate:"min=1,max=255" msg:"El nombre no puede estar vacío"`
	Apellido string `json:"apellido" validate:"min=1,max=255" msg:"El apellido no puede estar vacío"`
	Correo   string `json:"correo" validate:"required,email,max=255" msg:"El correo no es válido"`
	Telefono string `json:"telefono" validate:"omitempty,telefono" msg:"El teléfono no es válido"`
	Password string `json:"password" validate:"min=8,max=72" msg:"La contraseña debe tener entre 8 y 72 caracteres"`
}

type UpdateUser struct {
	Nombre   *string `json:"nombre" validate:"omitempty,min=1,max=255" msg:"El nombre no puede estar vacío"`
	Apellido *string `json:"apellido" validate:"omitempty,min=1,max=255" msg:"El apellido no puede estar vacío"`
	Correo   *string `json:"correo" validate:"omitempty,email,max=255" msg:"El correo no es válido"`
	Telefono *string `json:"telefono" validate:"omitempty,telefono" msg:"El teléfono no es válido"`
}

type LoginInfo struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		Cedula:   input.Cedula,
		Nombre:   input.Nombre,
		Apellido: input.Apellido,
		Correo:   strings.ToLower(input.Correo),
		Password: string(hashed),
	}
	if input.Telefono != "" {
		user.Telefono = utils.FormatPhoneE164(input.Telefono)
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).
		Where("cedula = ? OR correo = ?", user.Cedula, user.Correo).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewBadRequestError("La cédula o el correo ya están registrados")
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsDuplicateEntry(err) {
			return nil, utils.NewBadRequestError("La cédula o el correo ya están registrados")
		}
		return nil, err
	}
	return &user, nil
}

// Login accepts either the cédula or the correo as identifier.
func Login(ctx context.Context, identifier string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	identifier = strings.TrimSpace(identifier)

	var user User
	err := db.WithContext(ctx).
		Where("cedula = ? OR correo = ?", identifier, strings.ToLower(identifier)).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &utils.AppError{Status: 401, Message: "Credenciales inválidas"}
	} else if err != nil {
		return nil, err
	}

	err = utils.ComparePassword(user.Password, password)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, &utils.AppError{Status: 401, Message: "Credenciales inválidas"}
	} else if err != nil {
		return nil, err
	}

	token, err := utils.JwtGenerate(user.ID, user.Cedula)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, User: &user}, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, config.GetDB(), id, "Usuario no encontrado")
}

func GetUsersByIds(ctx context.Context, ids []int) ([]*User, error) {
	var results []*User
	if len(ids) == 0 {
		return results, nil
	}
	err := config.GetDB().WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	return results, err
}

func GetUsersByCedulas(ctx context.Context, cedulas []string) ([]*User, error) {
	var results []*User
	if len(cedulas) == 0 {
		return results, nil
	}
	err := config.GetDB().WithContext(ctx).Where("cedula IN ?", cedulas).Find(&results).Error
	return results, err
}

func UpdateUserById(ctx context.Context, id int, input *UpdateUser) (*User, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, id, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Nombre != nil {
		updates["nombre"] = *input.Nombre
	}
	if input.Apellido != nil {
		updates["apellido"] = *input.Apellido
	}
	if input.Correo != nil {
		updates["correo"] = strings.ToLower(*input.Correo)
	}
	if input.Telefono != nil {
		updates["telefono"] = utils.FormatPhoneE164(*input.Telefono)
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if utils.IsDuplicateEntry(err) {
			return nil, utils.NewBadRequestError("El correo ya está registrado")
		}
		return nil, err
	}
	return utils.FetchModel[User](ctx, db, id, "Usuario no encontrado")
}

func DeleteUser(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	user, err := utils.FetchModel[User](ctx, db, id, "Usuario no encontrado")
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(user).Error; err != nil {
		if utils.IsForeignKeyViolation(err) {
			return nil, utils.NewBadRequestError("El usuario tiene registros asociados")
		}
		return nil, err
	}
	return user, nil
}

// ownsVivienda is the ownership filter shared by the per-user queries. It expects the
// viviendas table to be joined.
func ownsVivienda(db *gorm.DB, user *User) *gorm.DB {
	return db.Where("(viviendas.id_propietario = ? OR viviendas.cedula_propietario = ?)", user.ID, user.Cedula)
}
