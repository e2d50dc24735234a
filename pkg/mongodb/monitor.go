package mongodb

import (
	"context"
	"errors"
	"sync"

	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// handshake and auth traffic is not worth a span per call
var ignoredCommands = map[string]bool{
	"hello":        true,
	"isMaster":     true,
	"ismaster":     true,
	"saslStart":    true,
	"saslContinue": true,
	"buildInfo":    true,
	"endSessions":  true,
}

type inflightCommand struct {
	ctx        context.Context
	span       trace.Span
	collection string
}

// commandMonitor turns driver command events into spans, metrics and debug logs.
type commandMonitor struct {
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
	inflight sync.Map
}

// NewCommandMonitor returns a driver monitor that records every command.
// Either m or logger may be nil.
func NewCommandMonitor(m *metrics.Metrics, logger *logging.Logger) *event.CommandMonitor {
	cm := &commandMonitor{
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("mongodb"),
	}
	return &event.CommandMonitor{
		Started:   cm.started,
		Succeeded: cm.succeeded,
		Failed:    cm.failed,
	}
}

func (cm *commandMonitor) started(ctx context.Context, evt *event.CommandStartedEvent) {
	if ignoredCommands[evt.CommandName] {
		return
	}

	collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
	spanCtx, span := cm.tracer.Start(ctx, "mongodb."+evt.CommandName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBNameKey.String(evt.DatabaseName),
			semconv.DBOperationKey.String(evt.CommandName),
			attribute.String("db.collection", collection),
		),
	)
	cm.inflight.Store(evt.RequestID, &inflightCommand{ctx: spanCtx, span: span, collection: collection})
}

func (cm *commandMonitor) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	cm.finish(evt.CommandFinishedEvent, nil)
}

func (cm *commandMonitor) failed(_ context.Context, evt *event.CommandFailedEvent) {
	cm.finish(evt.CommandFinishedEvent, errors.New(evt.Failure))
}

func (cm *commandMonitor) finish(evt event.CommandFinishedEvent, cmdErr error) {
	value, ok := cm.inflight.LoadAndDelete(evt.RequestID)
	if !ok {
		return
	}
	cmd := value.(*inflightCommand)
	success := cmdErr == nil

	if success {
		cmd.span.SetStatus(codes.Ok, "")
	} else {
		cmd.span.RecordError(cmdErr)
		cmd.span.SetStatus(codes.Error, cmdErr.Error())
	}
	cmd.span.End()

	if cm.metrics != nil {
		cm.metrics.RecordMongoDBOperation(cmd.collection, evt.CommandName, success, evt.Duration)
	}
	if cm.logger != nil {
		cm.logger.DatabaseQuery(cmd.ctx, cmd.collection, evt.CommandName, evt.Duration, success)
	}
}
