package main

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/middlewares"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/models/reports"
	"github.com/ucond/ucond_backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func createCondominioHandler(store utils.ContentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		up, err := readUpload(c, paginaActuarialUpload)
		if err != nil {
			respondError(c, err, "Error al crear el condominio")
			return
		}
		var input models.NewCondominio
		if !bindForm(c, &input) {
			return
		}
		if err := input.Validate(ctx); err != nil {
			respondError(c, err, "Error al crear el condominio")
			return
		}

		url, err := storeUpload(ctx, store, utils.FolderPaginasActuariales, up)
		if err != nil {
			respondError(c, err, "Error al guardar la página actuarial")
			return
		}
		input.UrlPaginaActuarial = url
		condominio, err := models.CreateCondominio(ctx, &input)
		if err != nil {
			discardUpload(ctx, store, url)
			respondError(c, err, "Error al crear el condominio")
			return
		}
		c.JSON(http.StatusOK, gin.H{"condominio": condominio})
	}
}

func getCondominioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		condominio, err := models.GetCondominio(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener el condominio")
			return
		}
		c.JSON(http.StatusOK, condominio)
	}
}

func deleteCondominioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteCondominio(c.Request.Context(), id); err != nil {
			respondError(c, err, "Error al eliminar el condominio")
			return
		}
		c.Status(http.StatusOK)
	}
}

func registerViviendasHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.NewViviendas
		if !bindJSON(c, &input) {
			return
		}
		viviendas, err := models.RegisterViviendas(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al registrar las viviendas")
			return
		}
		c.JSON(http.StatusOK, gin.H{"viviendas": viviendas})
	}
}

func getMetodosPagoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		metodos, err := models.GetMetodosPago(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener los métodos de pago")
			return
		}
		c.JSON(http.StatusOK, gin.H{"metodos": metodos})
	}
}

func replaceMetodosPagoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.NewMetodosPago
		if !bindJSON(c, &input) {
			return
		}
		if err := models.ReplaceMetodosPago(c.Request.Context(), id, &input); err != nil {
			respondError(c, err, "Error al guardar los métodos de pago")
			return
		}
		c.Status(http.StatusOK)
	}
}

func comprobantePlanHandler(store utils.ContentStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		up, err := readUpload(c, comprobantePlanUpload)
		if err != nil {
			respondError(c, err, "Error al registrar el comprobante")
			return
		}
		if _, err := models.GetCondominio(ctx, id); err != nil {
			respondError(c, err, "Error al registrar el comprobante")
			return
		}

		url, err := storeUpload(ctx, store, utils.FolderComprobantesPlan, up)
		if err != nil {
			respondError(c, err, "Error al guardar el comprobante")
			return
		}
		condominio, err := models.MarkPlanPaid(ctx, id, url)
		if err != nil {
			discardUpload(ctx, store, url)
			respondError(c, err, "Error al registrar el comprobante")
			return
		}
		c.JSON(http.StatusOK, gin.H{"condominio": condominio})
	}
}

// inquilinosHandler lists the units of a condominium with their owner account, resolved
// through the request loaders by id when linked and by cédula otherwise.
func inquilinosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		viviendas, err := models.GetViviendasByCondominio(ctx, id)
		if err != nil {
			respondError(c, err, "Error al obtener los inquilinos")
			return
		}

		var ids []int
		var cedulas []string
		for _, v := range viviendas {
			if v.IdPropietario != nil {
				ids = append(ids, *v.IdPropietario)
			} else if v.CedulaPropietario != "" {
				cedulas = append(cedulas, v.CedulaPropietario)
			}
		}
		byID := make(map[int]*models.User, len(ids))
		if len(ids) > 0 {
			users, errs := middlewares.GetUsers(ctx, utils.UniqueSlice(ids))
			if err := middlewares.FirstError(errs); err != nil {
				respondError(c, err, "Error al obtener los inquilinos")
				return
			}
			for _, u := range users {
				if u != nil {
					byID[u.ID] = u
				}
			}
		}
		byCedula := make(map[string]*models.User, len(cedulas))
		if len(cedulas) > 0 {
			users, errs := middlewares.GetUsersByCedula(ctx, utils.UniqueSlice(cedulas))
			if err := middlewares.FirstError(errs); err != nil {
				respondError(c, err, "Error al obtener los inquilinos")
				return
			}
			for _, u := range users {
				if u != nil {
					byCedula[u.Cedula] = u
				}
			}
		}
		for _, v := range viviendas {
			if v.IdPropietario != nil {
				v.Propietario = byID[*v.IdPropietario]
			} else {
				v.Propietario = byCedula[v.CedulaPropietario]
			}
		}
		c.JSON(http.StatusOK, gin.H{"viviendas": viviendas})
	}
}

func alicuotasUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		userId, ok := paramID(c, "userId")
		if !ok {
			return
		}
		alicuotas, err := models.GetAlicuotasForUser(c.Request.Context(), id, userId)
		if err != nil {
			respondError(c, err, "Error al obtener las alicuotas")
			return
		}
		c.JSON(http.StatusOK, gin.H{"alicuotas": alicuotas})
	}
}

func getGastosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		gastos, err := models.GetGastosByCondominio(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener los gastos del condominio")
			return
		}
		c.JSON(http.StatusOK, gastos)
	}
}

func createGastoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.NewGasto
		if !bindJSON(c, &input) {
			return
		}
		gasto, err := models.CreateGasto(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al crear el gasto")
			return
		}
		c.JSON(http.StatusOK, gin.H{"gasto": gasto})
	}
}

func exportGastosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := reports.ExportGastos(c.Request.Context(), id, &buf); err != nil {
			respondError(c, err, "Error al exportar los gastos del condominio")
			return
		}
		filename := fmt.Sprintf("gastos_%d_%s.xlsx", id, time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func getPagosCondominioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		pagos, err := models.GetPagosByCondominio(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener los pagos del condominio")
			return
		}
		c.JSON(http.StatusOK, pagos)
	}
}

func resumenFinancieroHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		resumen, err := models.FinancialSummary(c.Request.Context(), id, time.Now())
		if err != nil {
			respondError(c, err, "Error al obtener el resumen financiero")
			return
		}
		c.JSON(http.StatusOK, resumen)
	}
}

func getReportesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		activo := true
		if raw := c.Query("activo"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				respondError(c, utils.NewValidationError("activo", "El filtro activo debe ser true o false"), "")
				return
			}
			activo = parsed
		}
		reportes, err := models.GetReportesByCondominio(c.Request.Context(), id, activo)
		if err != nil {
			respondError(c, err, "Error al obtener los reportes del condominio")
			return
		}
		c.JSON(http.StatusOK, gin.H{"reportes": reportes})
	}
}

func createReporteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.NewReporte
		if !bindJSON(c, &input) {
			return
		}
		reporte, err := models.CreateReporte(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al crear el reporte")
			return
		}
		c.JSON(http.StatusOK, gin.H{"reporte": reporte})
	}
}

func getAnunciosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		anuncios, err := models.GetAnunciosByCondominio(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener los anuncios del condominio")
			return
		}
		c.JSON(http.StatusOK, gin.H{"anuncios": anuncios})
	}
}

func createAnuncioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.NewAnuncio
		if !bindJSON(c, &input) {
			return
		}
		anuncio, err := models.CreateAnuncio(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al crear el anuncio")
			return
		}
		c.JSON(http.StatusOK, gin.H{"anuncio": anuncio})
	}
}
