package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/models"
)

func getUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al buscar el usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func updateUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input models.UpdateUser
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.UpdateUserById(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err, "Error al modificar el usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func deleteUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		user, err := models.DeleteUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al eliminar el usuario")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func condominiosUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		condominios, err := models.GetCondominiosForUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al buscar los condominios del usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"condominios": condominios})
	}
}

func deudasUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		idCondominio, ok := optionalQueryID(c, "idCondominio")
		if !ok {
			return
		}
		deudas, err := models.GetDeudasActivasForUser(c.Request.Context(), id, idCondominio)
		if err != nil {
			respondError(c, err, "Error al buscar las deudas del usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"deudas": deudas})
	}
}

func pagosUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		idCondominio, ok := optionalQueryID(c, "idCondominio")
		if !ok {
			return
		}
		pagos, err := models.GetPagosForUser(c.Request.Context(), id, idCondominio)
		if err != nil {
			respondError(c, err, "Error al buscar los pagos del usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"pagos": pagos})
	}
}

func viviendasUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		viviendas, err := models.GetViviendasForUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, "Error al buscar las viviendas del usuario")
			return
		}
		c.JSON(http.StatusOK, gin.H{"viviendas": viviendas})
	}
}
