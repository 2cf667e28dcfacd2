package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/ucond/ucond_backend/models")

type Pago struct {
	ID             int             `gorm:"primary_key" json:"id"`
	IdDeuda        int             `gorm:"not null;index" json:"id_deuda"`
	IdVivienda     int             `gorm:"not null;index" json:"id_vivienda"`
	IdUsuario      *int            `gorm:"index" json:"id_usuario"`
	MontoPagado    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"monto_pagado"`
	MetodoPago     string          `gorm:"size:255;not null" json:"metodo_pago"`
	UrlComprobante *string         `gorm:"size:512" json:"url_comprobante"`
	Notas          *string         `gorm:"size:255" json:"notas"`
	NroReferencia  *string         `gorm:"size:255" json:"nro_referencia"`
	Confirmado     bool            `gorm:"not null;index" json:"confirmado"`
	FechaPago      time.Time       `gorm:"autoCreateTime" json:"fecha_pago"`
	Deuda          *Deuda          `gorm:"foreignKey:IdDeuda" json:"deuda,omitempty"`
}

type NewPago struct {
	IdUsuario      int             `form:"-" json:"-"`
	IdVivienda     int             `form:"id_vivienda" json:"id_vivienda" validate:"min=1" msg:"El id de vivienda debe ser positivo"`
	IdDeuda        int             `form:"id_deuda" json:"id_deuda" validate:"min=1" msg:"El id de deuda debe ser positivo"`
	MontoPagado    decimal.Decimal `form:"monto_pagado" json:"monto_pagado" validate:"gte=1" msg:"El monto pagado debe ser mayor o igual a 1"`
	MetodoPago     string          `form:"metodo_pago" json:"metodo_pago" validate:"min=1,max=255" msg:"El metodo de pago no puede estar vacio"`
	UrlComprobante *string         `form:"-" json:"url_comprobante" validate:"omitempty,max=255"`
	Notas          *string         `form:"notas" json:"notas" validate:"omitempty,max=255"`
	NroReferencia  *string         `form:"nro_referencia" json:"nro_referencia" validate:"omitempty,max=255"`
}

type PagosCondominio struct {
	Confirmados  []*Pago `json:"confirmados"`
	PorConfirmar []*Pago `json:"por_confirmar"`
}

type PagoVivienda struct {
	ID         int             `json:"id"`
	Fecha      time.Time       `json:"fecha"`
	Monto      decimal.Decimal `json:"monto"`
	MetodoPago string          `json:"metodo_pago"`
	Confirmado bool            `json:"confirmado"`
	Concepto   string          `json:"concepto"`
}

type PagoConConcepto struct {
	Pago
	Concepto string `json:"concepto"`
}

// Validate checks the fields and, when the payment is submitted on behalf of a user,
// that the user exists. Handlers call it before storing the proof of payment.
func (input *NewPago) Validate(ctx context.Context) error {
	if input.IdUsuario > 0 {
		exists, err := utils.ExistsByID[User](ctx, config.GetDB(), input.IdUsuario)
		if err != nil {
			return err
		}
		if !exists {
			return utils.NewBadRequestError("El usuario no existe")
		}
	}
	return utils.ValidateStruct(input)
}

// CreatePago registers an unconfirmed payment against an active debt. Payments still
// waiting for confirmation count against the balance, so the pending ones can never add
// up to more than is owed. Debt and expense totals are left untouched until the payment
// is confirmed.
func CreatePago(ctx context.Context, input *NewPago) (*Pago, error) {
	if err := input.Validate(ctx); err != nil {
		return nil, err
	}
	return CreateValidatedPago(ctx, input)
}

// CreateValidatedPago is CreatePago for input that already passed Validate.
func CreateValidatedPago(ctx context.Context, input *NewPago) (*Pago, error) {
	monto := input.MontoPagado.Round(MoneyPlaces)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	// serializes payments registered against the same debt
	if err := tx.Exec("UPDATE deudas SET monto_pagado = monto_pagado WHERE id = ?", input.IdDeuda).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	var vivienda Vivienda
	if err := tx.First(&vivienda, input.IdVivienda).Error; err != nil {
		tx.Rollback()
		return nil, utils.NotFoundOr(err, "Vivienda no encontrada")
	}
	var deuda Deuda
	if err := tx.Preload("Gasto").Preload("Pagos").First(&deuda, input.IdDeuda).Error; err != nil {
		tx.Rollback()
		return nil, utils.NotFoundOr(err, "Deuda no encontrada")
	}
	if deuda.IdVivienda != vivienda.ID {
		tx.Rollback()
		return nil, utils.NewBadRequestError("La deuda no corresponde a la vivienda")
	}
	if !deuda.Activa {
		tx.Rollback()
		return nil, utils.NewBadRequestError("La deuda ya fue pagada")
	}
	if deuda.Gasto == nil || !deuda.Gasto.Activo {
		tx.Rollback()
		return nil, utils.NewBadRequestError("El gasto ya fue pagado")
	}
	if monto.GreaterThan(OutstandingForDeuda(&deuda).Sub(AmountPendingForDeuda(&deuda))) {
		tx.Rollback()
		return nil, utils.NewBadRequestError("El monto pagado excede el monto pendiente de la deuda")
	}

	pago := Pago{
		IdDeuda:        deuda.ID,
		IdVivienda:     vivienda.ID,
		MontoPagado:    monto,
		MetodoPago:     input.MetodoPago,
		UrlComprobante: input.UrlComprobante,
		Notas:          input.Notas,
		NroReferencia:  input.NroReferencia,
		Confirmado:     false,
	}
	if input.IdUsuario > 0 {
		idUsuario := input.IdUsuario
		pago.IdUsuario = &idUsuario
	}
	if err := tx.Create(&pago).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	publishPagoEvent(ctx, EventPagoRegistrado, &pago)
	return &pago, nil
}

// ConfirmPago flips a payment to confirmed and recomputes the paid totals and active
// flags of its debt and expense, all in one transaction. Confirming an already
// confirmed payment changes nothing.
func ConfirmPago(ctx context.Context, id int) (*Pago, error) {
	ctx, span := tracer.Start(ctx, "models.ConfirmPago", trace.WithAttributes(attribute.Int("pago.id", id)))
	defer span.End()

	pago, changed, err := confirmPago(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("pago.changed", changed))
	if changed {
		publishPagoEvent(ctx, EventPagoConfirmado, pago)
	}
	return pago, nil
}

func confirmPago(ctx context.Context, id int) (*Pago, bool, error) {
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()

	// serializes confirmations touching the same expense
	err := tx.Exec(`UPDATE gastos SET monto_pagado = monto_pagado WHERE id = (
		SELECT deudas.id_gasto FROM deudas JOIN pagos ON pagos.id_deuda = deudas.id WHERE pagos.id = ?)`, id).Error
	if err != nil {
		tx.Rollback()
		return nil, false, err
	}

	var pago Pago
	if err := tx.First(&pago, id).Error; err != nil {
		tx.Rollback()
		return nil, false, utils.NotFoundOr(err, "Pago no encontrado")
	}
	if pago.Confirmado {
		tx.Rollback()
		return &pago, false, nil
	}

	var deuda Deuda
	if err := tx.Preload("Pagos").First(&deuda, pago.IdDeuda).Error; err != nil {
		tx.Rollback()
		return nil, false, utils.NotFoundOr(err, "Deuda no encontrada")
	}
	if AmountPaidForDeuda(&deuda).Add(pago.MontoPagado).GreaterThan(deuda.MontoUsuario) {
		tx.Rollback()
		return nil, false, utils.NewBadRequestError("El pago excede el monto pendiente de la deuda")
	}

	result := tx.Model(&Pago{}).Where("id = ? AND confirmado = ?", id, false).Update("confirmado", true)
	if result.Error != nil {
		tx.Rollback()
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		// confirmed by someone else in the meantime
		tx.Rollback()
		pago.Confirmado = true
		return &pago, false, nil
	}

	if err := applyConfirmedTotals(tx, deuda.ID); err != nil {
		tx.Rollback()
		return nil, false, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, false, err
	}
	pago.Confirmado = true
	return &pago, true, nil
}

// applyConfirmedTotals stores the confirmed totals of a debt and of its expense and
// derives their active flags from them.
func applyConfirmedTotals(tx *gorm.DB, idDeuda int) error {
	var deuda Deuda
	if err := tx.Preload("Pagos").First(&deuda, idDeuda).Error; err != nil {
		return utils.NotFoundOr(err, "Deuda no encontrada")
	}
	paid := AmountPaidForDeuda(&deuda)
	err := tx.Model(&Deuda{}).Where("id = ?", deuda.ID).Updates(map[string]interface{}{
		"monto_pagado": paid,
		"activa":       paid.LessThan(deuda.MontoUsuario),
	}).Error
	if err != nil {
		return err
	}

	var gasto Gasto
	if err := tx.Preload("Deudas.Pagos").First(&gasto, deuda.IdGasto).Error; err != nil {
		return utils.NotFoundOr(err, "Gasto no encontrado")
	}
	gastoPaid := AmountPaidForGasto(&gasto)
	return tx.Model(&Gasto{}).Where("id = ?", gasto.ID).Updates(map[string]interface{}{
		"monto_pagado": gastoPaid,
		"activo":       gastoPaid.LessThan(gasto.Monto),
	}).Error
}

func GetPago(ctx context.Context, id int) (*Pago, error) {
	return utils.FetchModel[Pago](ctx, config.GetDB(), id, "Pago no encontrado")
}

// GetPagosByCondominio splits the payments of a condominium by confirmation state.
// Every payment comes with its debt, expense and unit.
func GetPagosByCondominio(ctx context.Context, idCondominio int) (*PagosCondominio, error) {
	if err := condominioExists(ctx, idCondominio); err != nil {
		return nil, err
	}
	var pagos []*Pago
	err := config.GetDB().WithContext(ctx).
		Joins("JOIN deudas ON deudas.id = pagos.id_deuda").
		Joins("JOIN gastos ON gastos.id = deudas.id_gasto").
		Where("gastos.id_condominio = ?", idCondominio).
		Select("pagos.*").
		Preload("Deuda.Gasto").
		Preload("Deuda.Vivienda").
		Order("pagos.fecha_pago DESC, pagos.id DESC").
		Find(&pagos).Error
	if err != nil {
		return nil, err
	}
	result := &PagosCondominio{Confirmados: make([]*Pago, 0), PorConfirmar: make([]*Pago, 0)}
	for _, p := range pagos {
		if p.Confirmado {
			result.Confirmados = append(result.Confirmados, p)
		} else {
			result.PorConfirmar = append(result.PorConfirmar, p)
		}
	}
	return result, nil
}

// GetPagosForVivienda returns the latest 50 payments of a unit.
func GetPagosForVivienda(ctx context.Context, idVivienda int) ([]*PagoVivienda, error) {
	db := config.GetDB()
	exists, err := utils.ExistsByID[Vivienda](ctx, db, idVivienda)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NewNotFoundError("Vivienda no encontrada")
	}
	var pagos []*Pago
	err = db.WithContext(ctx).Preload("Deuda.Gasto").
		Where("id_vivienda = ?", idVivienda).
		Order("fecha_pago DESC, id DESC").Limit(50).Find(&pagos).Error
	if err != nil {
		return nil, err
	}
	results := make([]*PagoVivienda, 0, len(pagos))
	for _, p := range pagos {
		item := &PagoVivienda{
			ID:         p.ID,
			Fecha:      p.FechaPago,
			Monto:      p.MontoPagado,
			MetodoPago: p.MetodoPago,
			Confirmado: p.Confirmado,
		}
		if p.Deuda != nil && p.Deuda.Gasto != nil {
			item.Concepto = p.Deuda.Gasto.Concepto
		}
		results = append(results, item)
	}
	return results, nil
}

// GetPagosForUser returns the payment history of a user, optionally restricted to one
// condominium, each payment labelled with the concept of its expense.
func GetPagosForUser(ctx context.Context, userId int, idCondominio *int) ([]*PagoConConcepto, error) {
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
		Joins("JOIN deudas ON deudas.id = pagos.id_deuda").
		Joins("JOIN gastos ON gastos.id = deudas.id_gasto").
		Joins("JOIN viviendas ON viviendas.id = deudas.id_vivienda").
		Where("(pagos.id_usuario = ? OR deudas.id_usuario = ? OR viviendas.id_propietario = ? OR viviendas.cedula_propietario = ?)",
			user.ID, user.ID, user.ID, user.Cedula)
	if idCondominio != nil {
		query = query.Where("gastos.id_condominio = ?", *idCondominio)
	}
	var pagos []*Pago
	err = query.Select("pagos.*").Preload("Deuda.Gasto").
		Order("pagos.fecha_pago DESC, pagos.id DESC").Find(&pagos).Error
	if err != nil {
		return nil, err
	}

	results := make([]*PagoConConcepto, 0, len(pagos))
	for _, p := range pagos {
		item := &PagoConConcepto{Pago: *p}
		if p.Deuda != nil && p.Deuda.Gasto != nil {
			item.Concepto = p.Deuda.Gasto.Concepto
		}
		item.Pago.Deuda = nil
		results = append(results, item)
	}
	return results, nil
}
