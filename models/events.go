package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

const (
	EventPagoRegistrado = "pago.registrado"
	EventPagoConfirmado = "pago.confirmado"
)

const publishTimeout = 10 * time.Second

// publishPagoEvent sends a payment event to the events topic once the transaction that
// produced it has committed. Publishing never fails the request; errors are logged.
func publishPagoEvent(ctx context.Context, eventType string, pago *Pago) {
	topic := config.EventsTopic()
	if topic == "" {
		return
	}
	logger := config.GetLogger()
	data, err := json.Marshal(pago)
	if err != nil {
		config.LogError(logger, "Events", "publishPagoEvent", "Marshal pago", pago.ID, err)
		return
	}
	event := config.Event{
		Type:     eventType,
		EntityId: pago.ID,
		Data:     data,
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		event.CorrelationId = correlationId
	}

	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if _, err := config.PublishJSON(ctx, topic, event, map[string]string{"type": eventType}); err != nil {
			config.LogError(logger, "Events", "publishPagoEvent", "Publish "+eventType, pago.ID, err)
		}
	}(ctx)
}
