package procurement

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procura/internal/cache"
	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/messaging"
	procurementsvc "github.com/Additional-Code/procura/internal/service/procurement"
	"github.com/Additional-Code/procura/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/procura/worker/procurement")

// Module registers procurement worker handlers.
var Module = fx.Module("worker_procurement",
	fx.Provide(
		fx.Annotate(
			NewEventHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewEventHandler logs lifecycle events and drops the cached copy of any request that changed.
func NewEventHandler(logger *zap.Logger, cfg config.Config, store cache.Store) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.procurement.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event procurementsvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode procurement event", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(attribute.String("procurement.event", string(event.Type)), attribute.Int64("procurement.id", event.ID))

		if event.Type != procurementsvc.EventCreated && store != nil {
			if err := store.Delete(ctx, procurementsvc.CacheKey(event.ID)); err != nil {
				logger.Warn("procurement cache invalidation failed", zap.Int64("id", event.ID), zap.Error(err))
			}
		}

		logger.Info("procurement event processed",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.ID),
			zap.String("venue", event.VenueName),
			zap.String("status", string(event.Status)),
		)
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
