package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/models"
)

func getViviendaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		vivienda, err := models.GetVivienda(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener la vivienda")
			return
		}
		c.JSON(http.StatusOK, gin.H{"vivienda": vivienda})
	}
}

func updateViviendaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.UpdateVivienda
		if !bindJSON(c, &input) {
			return
		}
		vivienda, err := models.UpdateViviendaById(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al modificar la vivienda")
			return
		}
		c.JSON(http.StatusOK, gin.H{"vivienda": vivienda})
	}
}

func deudasViviendaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		deudas, err := models.GetDeudasActivasForVivienda(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener las deudas de la vivienda")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deudas": deudas})
	}
}

func pagosViviendaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		pagos, err := models.GetPagosForVivienda(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al obtener los pagos de la vivienda")
			return
		}
		c.JSON(http.StatusOK, gin.H{"pagos": pagos})
	}
}
