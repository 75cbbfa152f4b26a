package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("Chest/internal/service")

// startSpan открывает span операции сервиса. Без настроенного провайдера это no-op.
func startSpan(ctx context.Context, name, ownerID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("owner.id", ownerID)))
}

// endSpan фиксирует ошибку в span и закрывает его.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
