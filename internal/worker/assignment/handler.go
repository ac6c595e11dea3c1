// Package assignment consumes purchase events from the bus and forwards
// buyer assignments to the notifier.
package assignment

import (
	"context"
	"encoding/json"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
	"github.com/edusupply/compras/internal/messaging"
	"github.com/edusupply/compras/internal/notifier"
	requestsvc "github.com/edusupply/compras/internal/service/request"
	"github.com/edusupply/compras/internal/worker"
)

var workerTracer = otel.Tracer("github.com/edusupply/compras/worker/assignment")

// Handler reacts to purchase events.
type Handler struct {
	notifier notifier.Notifier
	logger   *zap.Logger
}

// NewHandler constructs the assignment handler.
func NewHandler(n notifier.Notifier, logger *zap.Logger) *Handler {
	return &Handler{notifier: n, logger: logger}
}

// Registration binds the handler to the purchase events topic.
func Registration(h *Handler, cfg config.Config) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: h.Handle,
	}
}

// Handle decodes a purchase event and dispatches on its type. Unknown
// event types are acknowledged and dropped.
func (h *Handler) Handle(ctx context.Context, msg messaging.Message) error {
	ctx, span := workerTracer.Start(ctx, "worker.compras.process", trace.WithAttributes(
		attribute.String("messaging.topic", msg.Topic),
	))
	defer span.End()

	var event requestsvc.AssignmentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Warn("dropping undecodable purchase event",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	switch event.Tipo {
	case requestsvc.EventRequestAssigned:
		return h.notifier.NotifyAssignment(ctx, notifier.Assignment{
			CompraID:        event.CompraID,
			NumeroOrdinario: strconv.Itoa(event.NumeroOrdinario),
			Descripcion:     event.Descripcion,
			Unidad:          event.Unidad,
			Comprador:       event.Comprador,
			Email:           event.Email,
		})
	default:
		h.logger.Debug("ignoring purchase event", zap.String("tipo", event.Tipo))
		return nil
	}
}

// Module registers the assignment worker handler.
var Module = fx.Module("worker_assignment",
	fx.Provide(
		NewHandler,
		fx.Annotate(
			Registration,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)
