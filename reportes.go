package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/models"
)

func cerrarReporteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		reporte, err := models.CerrarReporte(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al cerrar el reporte")
			return
		}
		c.JSON(http.StatusOK, gin.H{"reporte": reporte})
	}
}
