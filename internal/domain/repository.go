package domain

import (
	"context"
)

// ConsignmentRepository defines the interface for consignment persistence
type ConsignmentRepository interface {
	// Insert stores a new consignment and assigns its ID
	Insert(ctx context.Context, consignment *Consignment) error

	// FindByID returns nil when no consignment matches
	FindByID(ctx context.Context, id string) (*Consignment, error)

	// FindLatestBySerial returns the consignment with the greatest serial, or nil
	FindLatestBySerial(ctx context.Context) (*Consignment, error)

	// List returns consignments matching filter, newest serial first
	List(ctx context.Context, filter ConsignmentFilter) ([]*Consignment, error)

	// Count returns the number of consignments matching filter
	Count(ctx context.Context, filter ConsignmentFilter) (int64, error)

	// Update replaces a stored consignment
	Update(ctx context.Context, consignment *Consignment) error

	// SetShipmentLink records the derived shipment on a consignment
	SetShipmentLink(ctx context.Context, id, shipmentID, trackingNumber string) error

	// SetInvoiceLink records the derived invoice on a consignment
	SetInvoiceLink(ctx context.Context, id, invoiceID, invoiceNo string) error

	// Delete removes a consignment
	Delete(ctx context.Context, id string) error
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	Insert(ctx context.Context, shipment *Shipment) error
	SetInvoiceID(ctx context.Context, id, invoiceID string) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	Insert(ctx context.Context, invoice *Invoice) error
}

// CustomerRepository reads customer accounts
type CustomerRepository interface {
	// FindByID returns nil when no customer matches and ErrInvalidID for a malformed id
	FindByID(ctx context.Context, id string) (*Customer, error)
}

// PricingPolicyRepository reads rate cards
type PricingPolicyRepository interface {
	// FindByID returns nil when no policy matches and ErrInvalidID for a malformed id
	FindByID(ctx context.Context, id string) (*PricingPolicy, error)

	// FindActiveByZone returns the first active policy for a lower-cased zone, or nil
	FindActiveByZone(ctx context.Context, zone string) (*PricingPolicy, error)
}

// ConsignmentFilter represents filter options for listing consignments
type ConsignmentFilter struct {
	Zone       string
	CustomerID string
	InvoiceID  string
	// StartDate and EndDate bound the booking date, inclusive, as YYYY-MM-DD
	StartDate string
	EndDate   string
	Page      int64
	PageSize  int64
}
