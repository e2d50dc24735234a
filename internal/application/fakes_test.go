package application

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
)

type fakeConsignmentRepo struct {
	insertFn          func(context.Context, *domain.Consignment) error
	findByIDFn        func(context.Context, string) (*domain.Consignment, error)
	findLatestFn      func(context.Context) (*domain.Consignment, error)
	listFn            func(context.Context, domain.ConsignmentFilter) ([]*domain.Consignment, error)
	countFn           func(context.Context, domain.ConsignmentFilter) (int64, error)
	updateFn          func(context.Context, *domain.Consignment) error
	setShipmentLinkFn func(context.Context, string, string, string) error
	setInvoiceLinkFn  func(context.Context, string, string, string) error
	deleteFn          func(context.Context, string) error

	inserted []*domain.Consignment
}

func (f *fakeConsignmentRepo) Insert(ctx context.Context, c *domain.Consignment) error {
	if f.insertFn != nil {
		if err := f.insertFn(ctx, c); err != nil {
			return err
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	f.inserted = append(f.inserted, &stored)
	return nil
}

func (f *fakeConsignmentRepo) FindByID(ctx context.Context, id string) (*domain.Consignment, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeConsignmentRepo) FindLatestBySerial(ctx context.Context) (*domain.Consignment, error) {
	if f.findLatestFn != nil {
		return f.findLatestFn(ctx)
	}
	var latest *domain.Consignment
	for _, c := range f.inserted {
		if latest == nil || c.SrNo > latest.SrNo {
			latest = c
		}
	}
	return latest, nil
}

func (f *fakeConsignmentRepo) List(ctx context.Context, filter domain.ConsignmentFilter) ([]*domain.Consignment, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeConsignmentRepo) Count(ctx context.Context, filter domain.ConsignmentFilter) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, filter)
	}
	return 0, nil
}

func (f *fakeConsignmentRepo) Update(ctx context.Context, c *domain.Consignment) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return nil
}

func (f *fakeConsignmentRepo) SetShipmentLink(ctx context.Context, id, shipmentID, trackingNumber string) error {
	if f.setShipmentLinkFn != nil {
		return f.setShipmentLinkFn(ctx, id, shipmentID, trackingNumber)
	}
	return nil
}

func (f *fakeConsignmentRepo) SetInvoiceLink(ctx context.Context, id, invoiceID, invoiceNo string) error {
	if f.setInvoiceLinkFn != nil {
		return f.setInvoiceLinkFn(ctx, id, invoiceID, invoiceNo)
	}
	return nil
}

func (f *fakeConsignmentRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeShipmentRepo struct {
	insertFn       func(context.Context, *domain.Shipment) error
	setInvoiceIDFn func(context.Context, string, string) error

	inserted []*domain.Shipment
}

func (f *fakeShipmentRepo) Insert(ctx context.Context, s *domain.Shipment) error {
	if f.insertFn != nil {
		if err := f.insertFn(ctx, s); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, s)
	return nil
}

func (f *fakeShipmentRepo) SetInvoiceID(ctx context.Context, id, invoiceID string) error {
	if f.setInvoiceIDFn != nil {
		return f.setInvoiceIDFn(ctx, id, invoiceID)
	}
	return nil
}

type fakeInvoiceRepo struct {
	insertFn func(context.Context, *domain.Invoice) error

	inserted []*domain.Invoice
}

func (f *fakeInvoiceRepo) Insert(ctx context.Context, inv *domain.Invoice) error {
	if f.insertFn != nil {
		if err := f.insertFn(ctx, inv); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, inv)
	return nil
}

type fakeCustomerRepo struct {
	findByIDFn func(context.Context, string) (*domain.Customer, error)
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

type fakePolicyRepo struct {
	findByIDFn     func(context.Context, string) (*domain.PricingPolicy, error)
	findByZoneFn   func(context.Context, string) (*domain.PricingPolicy, error)
	requestedZones []string
}

func (f *fakePolicyRepo) FindByID(ctx context.Context, id string) (*domain.PricingPolicy, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakePolicyRepo) FindActiveByZone(ctx context.Context, zone string) (*domain.PricingPolicy, error) {
	f.requestedZones = append(f.requestedZones, zone)
	if f.findByZoneFn != nil {
		return f.findByZoneFn(ctx, zone)
	}
	return nil, nil
}

type fakeInvoiceNumbers struct {
	nextFn func(context.Context) (string, error)
}

func (f *fakeInvoiceNumbers) Next(ctx context.Context) (string, error) {
	if f.nextFn != nil {
		return f.nextFn(ctx)
	}
	return "INV-202403-A1B2C3", nil
}

type fakePublisher struct {
	createdFn func(context.Context, *domain.Consignment) error

	created []*domain.Consignment
	updated []*domain.Consignment
	deleted []string
}

func (f *fakePublisher) ConsignmentCreated(ctx context.Context, c *domain.Consignment) error {
	f.created = append(f.created, c)
	if f.createdFn != nil {
		return f.createdFn(ctx, c)
	}
	return nil
}

func (f *fakePublisher) ConsignmentUpdated(_ context.Context, c *domain.Consignment) error {
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakePublisher) ConsignmentDeleted(_ context.Context, id, _ string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("test")
	cfg.Output = io.Discard
	return logging.New(cfg)
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("test"))
}

func float(v float64) *float64 { return &v }

func boolean(v bool) *bool { return &v }
