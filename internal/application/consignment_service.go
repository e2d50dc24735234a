package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/errors"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
	"github.com/wms-platform/consignment-service/pkg/mongodb"
	"github.com/wms-platform/consignment-service/pkg/tracing"
)

const tracerName = "consignment-service/application"

// EventPublisher announces consignment lifecycle changes
type EventPublisher interface {
	ConsignmentCreated(ctx context.Context, consignment *domain.Consignment) error
	ConsignmentUpdated(ctx context.Context, consignment *domain.Consignment) error
	ConsignmentDeleted(ctx context.Context, consignmentID, actorID string) error
}

// Repositories groups the stores the consignment service writes to and reads from
type Repositories struct {
	Consignments domain.ConsignmentRepository
	Shipments    domain.ShipmentRepository
	Invoices     domain.InvoiceRepository
	Customers    domain.CustomerRepository
	Policies     domain.PricingPolicyRepository
}

// Option configures a ConsignmentService
type Option func(*ConsignmentService)

// WithClock overrides the time source used for codes and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ConsignmentService) { s.now = now }
}

// WithEventPublisher enables lifecycle events
func WithEventPublisher(p EventPublisher) Option {
	return func(s *ConsignmentService) { s.publisher = p }
}

// ConsignmentService handles consignment use cases
type ConsignmentService struct {
	repos          Repositories
	sequence       *SequenceAllocator
	pricing        *PricingResolver
	invoiceNumbers domain.InvoiceNumberGenerator
	publisher      EventPublisher
	metrics        *metrics.Metrics
	logger         *logging.Logger
	tracer         trace.Tracer
	now            func() time.Time
}

// NewConsignmentService creates a new ConsignmentService
func NewConsignmentService(
	repos Repositories,
	invoiceNumbers domain.InvoiceNumberGenerator,
	m *metrics.Metrics,
	logger *logging.Logger,
	opts ...Option,
) *ConsignmentService {
	s := &ConsignmentService{
		repos:          repos,
		sequence:       NewSequenceAllocator(repos.Consignments),
		pricing:        NewPricingResolver(repos.Customers, repos.Policies, m, logger),
		invoiceNumbers: invoiceNumbers,
		metrics:        m,
		logger:         logger.WithComponent("consignment-service"),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateConsignment books a consignment and derives its shipment and invoice.
//
// Only normalisation, serial allocation and the consignment insert can fail
// the call. Everything after the insert is best-effort and reported through
// the returned step outcomes.
func (s *ConsignmentService) CreateConsignment(ctx context.Context, cmd CreateConsignmentCommand, actor domain.Actor) (result *ConsignmentResult, err error) {
	ctx, span := s.tracer.Start(ctx, "consignment.create")
	defer func() { tracing.EndSpan(span, err) }()

	c, err := cmd.toConsignment()
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	logger := s.logger.WithContext(ctx)
	sg := newSaga(s.tracer, s.metrics, logger)

	// 1. customer, soft failure
	var customer *domain.Customer
	if c.CustomerID != "" {
		sg.run(ctx, StepCustomerLookup, func(ctx context.Context) (string, error) {
			found, err := s.repos.Customers.FindByID(ctx, c.CustomerID)
			switch {
			case stderrors.Is(err, domain.ErrInvalidID):
				return "", skip("malformed customer id")
			case err != nil:
				return "", err
			case found == nil:
				return "", skip("customer not found")
			}
			customer = found
			return found.ID.Hex(), nil
		})
	}

	// 2. consignee name
	if customer != nil && c.Name == "" {
		c.Name = customer.FullName
	}

	// 3. automatic pricing
	switch {
	case customer == nil:
		sg.skip(StepPricing, "no linked customer")
	case c.BaseRate != 0:
		sg.skip(StepPricing, "manual base rate")
	default:
		sg.run(ctx, StepPricing, func(ctx context.Context) (string, error) {
			policy, err := s.pricing.ResolveForCustomer(ctx, customer, c.Zone)
			if err != nil {
				return "", err
			}
			if policy == nil {
				return "", skip("no active pricing policy")
			}
			c.BaseRate = domain.ApplyPricing(c.BaseRate, c.Weight, policy)
			return policy.ID.Hex(), nil
		})
	}

	// 4. serial and code
	srNo, err := s.sequence.Next(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to allocate serial number")
		return nil, err
	}
	now := s.now().UTC()
	c.SrNo = srNo
	c.ConsignmentNo = domain.ConsignmentNumber(now)
	if c.Date == "" {
		c.Date = now.Format(domain.BookingDateLayout)
	}
	c.CreatedBy = actor.ID
	c.UpdatedBy = actor.ID
	c.CreatedAt = now
	c.UpdatedAt = now

	// 5. the only load-bearing write
	c.RecalculateTotal()
	if err := s.repos.Consignments.Insert(ctx, c); err != nil {
		logger.WithError(err).Error("Failed to save consignment", "srNo", c.SrNo)
		return nil, errors.ErrStorage("save consignment", err)
	}
	consignmentID := c.ID.Hex()
	span.SetAttributes(
		attribute.String("consignment.id", consignmentID),
		attribute.Int64("consignment.sr_no", c.SrNo),
	)

	// 6. shipment
	var shipment *domain.Shipment
	if customer != nil {
		sg.run(ctx, StepShipment, func(ctx context.Context) (string, error) {
			sh := domain.NewShipmentFromConsignment(c, customer, domain.TrackingNumber(now), actor.ID, now)
			if err := s.repos.Shipments.Insert(ctx, sh); err != nil {
				return "", err
			}
			shipment = sh
			return sh.ID.Hex(), nil
		})
	} else {
		sg.skip(StepShipment, "no linked customer")
	}

	// 7. consignment -> shipment
	if shipment != nil {
		sg.run(ctx, StepShipmentLink, func(ctx context.Context) (string, error) {
			shipmentID := shipment.ID.Hex()
			if err := s.repos.Consignments.SetShipmentLink(ctx, consignmentID, shipmentID, shipment.TrackingNumber); err != nil {
				return "", err
			}
			c.ShipmentID = shipmentID
			c.TrackingNumber = shipment.TrackingNumber
			return shipmentID, nil
		})
	}

	// 8. invoice, attempted with or without a shipment
	var invoice *domain.Invoice
	if customer != nil {
		sg.run(ctx, StepInvoice, func(ctx context.Context) (string, error) {
			number, err := s.invoiceNumbers.Next(ctx)
			if err != nil {
				return "", fmt.Errorf("failed to generate invoice number: %w", err)
			}
			var shipmentID, trackingNumber string
			if shipment != nil {
				shipmentID, trackingNumber = shipment.ID.Hex(), shipment.TrackingNumber
			}
			inv := domain.NewInvoiceForConsignment(number, c, customer, shipmentID, trackingNumber, actor.ID, now)
			if err := s.repos.Invoices.Insert(ctx, inv); err != nil {
				return "", err
			}
			invoice = inv
			return inv.ID.Hex(), nil
		})
	} else {
		sg.skip(StepInvoice, "no linked customer")
	}

	// 9. shipment -> invoice, consignment -> invoice
	if invoice != nil {
		invoiceID := invoice.ID.Hex()
		if shipment != nil {
			sg.run(ctx, StepShipmentInvoiceLink, func(ctx context.Context) (string, error) {
				return shipment.ID.Hex(), s.repos.Shipments.SetInvoiceID(ctx, shipment.ID.Hex(), invoiceID)
			})
		}
		sg.run(ctx, StepConsignmentInvoiceLink, func(ctx context.Context) (string, error) {
			if err := s.repos.Consignments.SetInvoiceLink(ctx, consignmentID, invoiceID, invoice.InvoiceNumber); err != nil {
				return "", err
			}
			c.InvoiceID = invoiceID
			c.InvoiceNo = invoice.InvoiceNumber
			return invoiceID, nil
		})
	}

	// 11. lifecycle event
	if s.publisher != nil {
		sg.run(ctx, StepPublish, func(ctx context.Context) (string, error) {
			return consignmentID, s.publisher.ConsignmentCreated(ctx, c)
		})
	}

	var billed float64
	if invoice != nil {
		billed = invoice.TotalAmount
	}
	s.metrics.RecordConsignmentCreated(c.PricingZone(), billed)

	result = &ConsignmentResult{Consignment: ToConsignmentDTO(c), Steps: sg.outcomes}
	warnings := result.Warnings()
	span.SetAttributes(attribute.Int("consignment.derivation_warnings", len(warnings)))

	logger.Audit(ctx, "create", "consignment", consignmentID, actor.ID, map[string]any{
		"srNo":          c.SrNo,
		"consignmentNo": c.ConsignmentNo,
		"total":         c.Total,
		"shipmentId":    c.ShipmentID,
		"invoiceId":     c.InvoiceID,
		"warnings":      len(warnings),
	})

	return result, nil
}

// GetConsignment retrieves a consignment by ID
func (s *ConsignmentService) GetConsignment(ctx context.Context, id string) (*ConsignmentDTO, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToConsignmentDTO(c), nil
}

// ListConsignments lists consignments, newest serial first
func (s *ConsignmentService) ListConsignments(ctx context.Context, query ListConsignmentsQuery) (*ConsignmentListResponse, error) {
	pagination := mongodb.NewPagination(query.Page, query.PageSize)
	filter := domain.ConsignmentFilter{
		Zone:       normalizeZoneFilter(query.Zone),
		CustomerID: strings.TrimSpace(query.CustomerID),
		InvoiceID:  strings.TrimSpace(query.InvoiceID),
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
	}

	consignments, err := s.repos.Consignments.List(ctx, filter)
	if err != nil {
		return nil, storageError("list consignments", err)
	}
	total, err := s.repos.Consignments.Count(ctx, filter)
	if err != nil {
		return nil, storageError("count consignments", err)
	}

	dtos := make([]ConsignmentDTO, len(consignments))
	for i, c := range consignments {
		dtos[i] = *ToConsignmentDTO(c)
	}

	return &ConsignmentListResponse{
		Data:     dtos,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// ListByCustomer lists the consignments booked for a customer
func (s *ConsignmentService) ListByCustomer(ctx context.Context, customerID string, query ListConsignmentsQuery) (*ConsignmentListResponse, error) {
	query.CustomerID = customerID
	return s.ListConsignments(ctx, query)
}

// ListByInvoice lists the consignments billed on an invoice
func (s *ConsignmentService) ListByInvoice(ctx context.Context, invoiceID string, query ListConsignmentsQuery) (*ConsignmentListResponse, error) {
	query.InvoiceID = invoiceID
	return s.ListConsignments(ctx, query)
}

// UpdateConsignment applies a partial update. The total is recomputed from
// the charge fields on every update.
func (s *ConsignmentService) UpdateConsignment(ctx context.Context, id string, cmd UpdateConsignmentCommand, actor domain.Actor) (*ConsignmentDTO, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := cmd.toPatch()
	if patch.IsEmpty() {
		return ToConsignmentDTO(c), nil
	}
	if err := patch.Apply(c, actor.ID, s.now().UTC()); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.repos.Consignments.Update(ctx, c); err != nil {
		if stderrors.Is(err, domain.ErrConsignmentNotFound) {
			return nil, errors.ErrNotFoundWithID("consignment", id)
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to update consignment", "consignmentId", id)
		return nil, storageError("update consignment", err)
	}

	if s.publisher != nil {
		if err := s.publisher.ConsignmentUpdated(ctx, c); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish consignment update", "consignmentId", id)
		}
	}

	s.logger.Audit(ctx, "update", "consignment", id, actor.ID, map[string]any{"total": c.Total})
	return ToConsignmentDTO(c), nil
}

// DeleteConsignment removes a consignment. Derived shipments and invoices are kept.
func (s *ConsignmentService) DeleteConsignment(ctx context.Context, id string, actor domain.Actor) error {
	err := s.repos.Consignments.Delete(ctx, id)
	switch {
	case stderrors.Is(err, domain.ErrInvalidID), stderrors.Is(err, domain.ErrConsignmentNotFound):
		return errors.ErrNotFoundWithID("consignment", id)
	case err != nil:
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete consignment", "consignmentId", id)
		return storageError("delete consignment", err)
	}

	if s.publisher != nil {
		if err := s.publisher.ConsignmentDeleted(ctx, id, actor.ID); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to publish consignment deletion", "consignmentId", id)
		}
	}

	s.logger.Audit(ctx, "delete", "consignment", id, actor.ID, nil)
	return nil
}

// Quote previews the charges of a consignment without storing anything.
// Automatic pricing applies whenever the base rate is zero, with or without a customer.
func (s *ConsignmentService) Quote(ctx context.Context, cmd QuoteCommand) (*QuoteDTO, error) {
	charges := domain.ChargeInput{
		BaseRate:          cmd.BaseRate,
		DocketCharges:     cmd.DocketCharges,
		ODACharge:         cmd.ODACharge,
		FOV:               cmd.FOV,
		FuelChargePercent: cmd.FuelChargePercent,
		GSTPercent:        cmd.GSTPercent,
	}
	if cmd.Weight < 0 {
		return nil, errors.ErrValidation(domain.ErrNegativeWeight.Error())
	}
	if err := charges.Validate(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	quote := &QuoteDTO{
		PricingSource: PricingSourceManual,
		ShipmentType:  domain.ClassifyShipment(cmd.Weight),
	}

	if charges.BaseRate == 0 {
		var customer *domain.Customer
		if cmd.CustomerID != "" {
			found, err := s.repos.Customers.FindByID(ctx, cmd.CustomerID)
			if err != nil && !stderrors.Is(err, domain.ErrInvalidID) {
				return nil, storageError("get customer", err)
			}
			customer = found
		}

		policy, source, err := s.pricing.resolve(ctx, customer, cmd.Zone)
		if err != nil {
			return nil, storageError("resolve pricing", err)
		}
		if policy != nil {
			charges.BaseRate = domain.ApplyPricing(charges.BaseRate, cmd.Weight, policy)
			quote.PolicyID = policy.ID.Hex()
			quote.PolicyName = policy.Name
		}
		quote.PricingSource = source
	}

	quote.BaseRate = charges.BaseRate
	quote.Total = charges.Total()
	quote.Invoice = domain.ComputeInvoice(charges)
	return quote, nil
}

func (s *ConsignmentService) load(ctx context.Context, id string) (*domain.Consignment, error) {
	c, err := s.repos.Consignments.FindByID(ctx, id)
	switch {
	case stderrors.Is(err, domain.ErrInvalidID):
		return nil, errors.ErrNotFoundWithID("consignment", id)
	case err != nil:
		return nil, storageError("get consignment", err)
	case c == nil:
		return nil, errors.ErrNotFoundWithID("consignment", id)
	}
	return c, nil
}

// normalizeZoneFilter matches the lower-cased form zones are stored in.
// A blank filter stays blank so that every zone is listed.
func normalizeZoneFilter(zone string) string {
	if strings.TrimSpace(zone) == "" {
		return ""
	}
	return domain.NormalizeZone(zone)
}

// storageError maps a repository failure to 504 when the request deadline ran
// out, 503 when the store is unreachable, else 500.
func storageError(operation string, err error) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrTimeout(operation).Wrap(err)
	}
	if mongodb.IsUnavailable(err) {
		return errors.ErrStorageUnavailable(operation, err)
	}
	return errors.ErrStorage(operation, err)
}
