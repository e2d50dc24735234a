package application

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
	"github.com/wms-platform/consignment-service/pkg/tracing"
)

// Derivation steps of a consignment creation, in execution order
const (
	StepCustomerLookup         = "customer_lookup"
	StepPricing                = "pricing"
	StepShipment               = "shipment"
	StepShipmentLink           = "consignment_shipment_link"
	StepInvoice                = "invoice"
	StepShipmentInvoiceLink    = "shipment_invoice_link"
	StepConsignmentInvoiceLink = "consignment_invoice_link"
	StepPublish                = "publish_event"
)

// skipError ends a step without counting it as a failure
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

func skip(reason string) error {
	return &skipError{reason: reason}
}

// saga runs the best-effort steps that follow the consignment write. Every step
// leaves exactly one StepOutcome; a failure is logged and counted, never returned.
type saga struct {
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	logger   *logging.Logger
	outcomes []StepOutcome
}

func newSaga(tracer trace.Tracer, m *metrics.Metrics, logger *logging.Logger) *saga {
	return &saga{tracer: tracer, metrics: m, logger: logger}
}

// run executes fn as step and records its outcome. fn returns the id of the
// record it produced.
func (s *saga) run(ctx context.Context, step string, fn func(ctx context.Context) (string, error)) StepOutcome {
	ctx, span := s.tracer.Start(ctx, "consignment.step."+step, trace.WithAttributes(
		attribute.String("saga.step", step),
	))
	start := time.Now()
	id, err := fn(ctx)
	duration := time.Since(start)

	var outcome StepOutcome
	var skipped *skipError
	switch {
	case errors.As(err, &skipped):
		outcome = StepOutcome{Step: step, Status: StepSkipped, Reason: skipped.reason}
		tracing.EndSpan(span, nil)
	case err != nil:
		outcome = StepOutcome{Step: step, Status: StepFailed, Reason: err.Error()}
		tracing.EndSpan(span, err)
		s.metrics.RecordDerivationWarning(step)
		s.logger.WithContext(ctx).WithStep(step).WithError(err).Warn("Derivation step failed")
	default:
		outcome = StepOutcome{Step: step, Status: StepSucceeded, ID: id}
		span.SetAttributes(attribute.String("saga.record_id", id))
		tracing.EndSpan(span, nil)
	}

	s.metrics.RecordSagaStep(step, string(outcome.Status), duration)
	s.outcomes = append(s.outcomes, outcome)
	return outcome
}

// skip records step as not attempted
func (s *saga) skip(step, reason string) {
	s.metrics.RecordSagaStep(step, string(StepSkipped), 0)
	s.outcomes = append(s.outcomes, StepOutcome{Step: step, Status: StepSkipped, Reason: reason})
}
