package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/utils"
)

type loginRequest struct {
	Identificador string `json:"identificador" validate:"min=1" msg:"Debe indicar la cédula o el correo"`
	Password      string `json:"password" validate:"min=1" msg:"Debe indicar la contraseña"`
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err, "Error al registrar el usuario")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginRequest
		if !bindJSON(c, &input) {
			return
		}
		if err := utils.ValidateStruct(&input); err != nil {
			respondError(c, err, "")
			return
		}
		info, err := models.Login(c.Request.Context(), input.Identificador, input.Password)
		if err != nil {
			respondError(c, err, "Error al iniciar sesión")
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
