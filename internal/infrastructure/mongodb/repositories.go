package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/consignment-service/internal/domain"
	sharedMongo "github.com/wms-platform/consignment-service/pkg/mongodb"
)

// Collection names shared with the rest of the courier platform
const (
	shipmentsCollection    = "shipments"
	invoicesCollection     = "invoices"
	customersCollection    = "users"
	pricingRulesCollection = "pricing_rules"
)

// ShipmentRepository implements domain.ShipmentRepository
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository creates a new ShipmentRepository
func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{collection: db.Collection(shipmentsCollection)}
}

// EnsureIndexes creates the shipment indexes
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trackingNumber", Value: 1}}},
		{Keys: bson.D{{Key: "consignmentId", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create shipment indexes: %w", err)
	}
	return nil
}

// Insert stores a new shipment
func (r *ShipmentRepository) Insert(ctx context.Context, shipment *domain.Shipment) error {
	if _, err := r.collection.InsertOne(ctx, shipment); err != nil {
		return fmt.Errorf("failed to insert shipment: %w", err)
	}
	return nil
}

// SetInvoiceID back-references the invoice that bills a shipment
func (r *ShipmentRepository) SetInvoiceID(ctx context.Context, id, invoiceID string) error {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	update := sharedMongo.BuildUpdateWithTimestamp(bson.M{"invoiceId": invoiceID})
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to link shipment to invoice: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

// InvoiceRepository implements domain.InvoiceRepository
type InvoiceRepository struct {
	collection *mongo.Collection
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{collection: db.Collection(invoicesCollection)}
}

// EnsureIndexes creates the invoice indexes
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "paymentStatus", Value: 1},
			},
		},
		{Keys: bson.D{{Key: "consignmentId", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create invoice indexes: %w", err)
	}
	return nil
}

// Insert stores a new invoice
func (r *InvoiceRepository) Insert(ctx context.Context, invoice *domain.Invoice) error {
	if _, err := r.collection.InsertOne(ctx, invoice); err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// CustomerRepository implements domain.CustomerRepository over the users collection
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{collection: db.Collection(customersCollection)}
}

// FindByID retrieves a customer account
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var customer domain.Customer
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

// PricingPolicyRepository implements domain.PricingPolicyRepository
type PricingPolicyRepository struct {
	collection *mongo.Collection
}

// NewPricingPolicyRepository creates a new PricingPolicyRepository
func NewPricingPolicyRepository(db *mongo.Database) *PricingPolicyRepository {
	return &PricingPolicyRepository{collection: db.Collection(pricingRulesCollection)}
}

// FindByID retrieves a pricing policy regardless of its active flag
func (r *PricingPolicyRepository) FindByID(ctx context.Context, id string) (*domain.PricingPolicy, error) {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindActiveByZone returns the first policy for zone whose isActive is explicitly true
func (r *PricingPolicyRepository) FindActiveByZone(ctx context.Context, zone string) (*domain.PricingPolicy, error) {
	return r.findOne(ctx, bson.M{"zone": zone, "isActive": true})
}

func (r *PricingPolicyRepository) findOne(ctx context.Context, filter bson.M) (*domain.PricingPolicy, error) {
	var policy domain.PricingPolicy
	err := r.collection.FindOne(ctx, filter).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pricing rule: %w", err)
	}
	return &policy, nil
}
