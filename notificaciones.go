package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/notifications"
	"github.com/ucond/ucond_backend/utils"
)

// sweeperFactory builds the notification sweeper for one run.
type sweeperFactory func() (*notifications.Sweeper, error)

// notificacionesHandler runs one reminder sweep and reports what it sent. Delivery
// failures do not stop the run; they turn the answer into a 500 listing the counts.
func notificacionesHandler(newSweeper sweeperFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		sweeper, err := newSweeper()
		if err != nil {
			respondError(c, err, "Error al configurar el envío de correos")
			return
		}
		report, err := notifications.RunExclusive(c.Request.Context(), sweeper)
		if errors.Is(err, utils.ErrLockNotObtained) {
			c.JSON(http.StatusConflict, gin.H{"error": "Ya hay un envío de notificaciones en curso"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			body := gin.H{"error": "Error enviando correos"}
			if report != nil {
				body["resultado"] = report
				body["fallidos"] = len(report.Failures)
			}
			c.JSON(http.StatusInternalServerError, body)
			return
		}
		c.JSON(http.StatusOK, gin.H{"resultado": report})
	}
}

// notificacionesPubSubHandler is the push endpoint of the scheduled sweep topic. Every
// outcome is acknowledged; a redelivery would remind owners twice.
func notificacionesPubSubHandler(newSweeper sweeperFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "notificaciones.go", "notificacionesPubSubHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}
		var envelope config.PushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			config.LogError(logger, "notificaciones.go", "notificacionesPubSubHandler", "Unmarshal body", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}

		sweeper, err := newSweeper()
		if err != nil {
			config.LogError(logger, "notificaciones.go", "notificacionesPubSubHandler", "newSweeper", envelope.Message.ID, err)
			c.Status(http.StatusNoContent)
			return
		}
		report, err := notifications.RunExclusive(c.Request.Context(), sweeper)
		switch {
		case errors.Is(err, utils.ErrLockNotObtained):
			logger.WithFields(logrus.Fields{"message_id": envelope.Message.ID}).Info("[notificaciones.skipped] sweep already running")
		case err != nil:
			config.LogError(logger, "notificaciones.go", "notificacionesPubSubHandler", "Run", envelope.Message.ID, err)
		default:
			logger.WithFields(logrus.Fields{
				"message_id": envelope.Message.ID,
				"found":      report.Found,
				"sent":       report.Sent,
				"skipped":    report.Skipped,
			}).Info("[notificaciones.done]")
		}
		c.Status(http.StatusNoContent)
	}
}
