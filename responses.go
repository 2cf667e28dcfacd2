package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ucond/ucond_backend/utils"
)

const invalidDataMessage = "Datos inválidos"

// respondError renders err with the status its type carries. Unexpected errors are
// attached to the context for the logger middleware and answered with message.
func respondError(c *gin.Context, err error, message string) {
	var vErr *utils.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidDataMessage, "mensajes": vErr.Issues})
		return
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}
	switch {
	case utils.IsDuplicateEntry(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "El registro ya existe"})
		return
	case utils.IsForeignKeyViolation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "El registro tiene datos asociados"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// bindJSON decodes the body into obj and answers 400 when it is not valid JSON for it.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, utils.NewValidationError("body", "El cuerpo de la solicitud no es válido"), "")
		return false
	}
	utils.TrimStrings(obj)
	return true
}

// bindForm decodes the multipart fields into obj.
func bindForm(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		respondError(c, utils.NewValidationError("body", "Los campos del formulario no son válidos"), "")
		return false
	}
	utils.TrimStrings(obj)
	return true
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		respondError(c, utils.NewValidationError(name, "El id debe ser un número entero positivo"), "")
		return 0, false
	}
	return id, true
}

// optionalQueryID reads an optional positive integer query parameter.
func optionalQueryID(c *gin.Context, name string) (*int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		respondError(c, utils.NewValidationError(name, "El id debe ser un número entero positivo"), "")
		return nil, false
	}
	return &id, true
}
