package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
)

// createPagoHandler registers an unconfirmed payment with its proof. prepare fills the
// identifiers the route carries in its path.
func createPagoHandler(store utils.ContentStore, prepare func(c *gin.Context, input *models.NewPago) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		up, err := readUpload(c, comprobantePagoUpload)
		if err != nil {
			respondError(c, err, "Error al registrar el pago")
			return
		}
		var input models.NewPago
		if !bindForm(c, &input) {
			return
		}
		if !prepare(c, &input) {
			return
		}
		if err := input.Validate(ctx); err != nil {
			respondError(c, err, "Error al registrar el pago")
			return
		}

		url, err := storeUpload(ctx, store, utils.FolderComprobantesPago, up)
		if err != nil {
			respondError(c, err, "Error al guardar el comprobante")
			return
		}
		input.UrlComprobante = &url
		pago, err := models.CreateValidatedPago(ctx, &input)
		if err != nil {
			discardUpload(ctx, store, url)
			respondError(c, err, "Error al registrar el pago")
			return
		}
		c.JSON(http.StatusOK, gin.H{"pago": pago})
	}
}

// pagoForUsuario takes the paying user from the path.
func pagoForUsuario(c *gin.Context, input *models.NewPago) bool {
	id, ok := paramID(c, "id")
	if !ok {
		return false
	}
	input.IdUsuario = id
	return true
}

// pagoForVivienda takes the unit from the path and the paying user from the token, when
// there is one.
func pagoForVivienda(c *gin.Context, input *models.NewPago) bool {
	id, ok := paramID(c, "id")
	if !ok {
		return false
	}
	input.IdVivienda = id
	if userId, ok := utils.GetUserIdFromContext(c.Request.Context()); ok {
		input.IdUsuario = userId
	}
	return true
}

func confirmPagoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		pago, err := models.ConfirmPago(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al confirmar el pago")
			return
		}
		c.JSON(http.StatusOK, gin.H{"pago": pago})
	}
}
