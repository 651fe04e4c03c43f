package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"codgoo/client/internal/telemetry"
)

// recordLogger is the slice of otellog.Logger the emitter needs; narrowed
// so tests can capture records.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends session events as OTel
// log records via the given LoggerProvider. If provider is nil, returns a
// no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("codgoo.client.session")}
}

// NewEventEmitterWithLogger returns an emitter over the given logger.
func NewEventEmitterWithLogger(logger recordLogger) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.SessionEvent) error { return nil }

type otelEmitter struct {
	logger recordLogger
}

// Emit converts the session event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.SessionEvent) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetBody(otellog.StringValue(event.Type))
	rec.AddAttributes(otellog.String("event_type", event.Type))
	if event.UserID != "" {
		rec.AddAttributes(otellog.String("user_id", event.UserID))
	}
	if event.Email != "" {
		rec.AddAttributes(otellog.String("email", event.Email))
	}
	if event.Path != "" {
		rec.AddAttributes(otellog.String("path", event.Path))
	}
	if event.Reason != "" {
		rec.AddAttributes(otellog.String("reason", event.Reason))
	}
	if !event.At.IsZero() {
		rec.SetTimestamp(event.At)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}
