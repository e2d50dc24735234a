package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/consignment-service/internal/domain"
	sharedMongo "github.com/wms-platform/consignment-service/pkg/mongodb"
)

const consignmentsCollection = "consignments"

// ConsignmentRepository implements domain.ConsignmentRepository
type ConsignmentRepository struct {
	collection *mongo.Collection
}

// NewConsignmentRepository creates a new ConsignmentRepository
func NewConsignmentRepository(db *mongo.Database) *ConsignmentRepository {
	return &ConsignmentRepository{collection: db.Collection(consignmentsCollection)}
}

// EnsureIndexes creates the consignment indexes. The unique srNo index turns
// two concurrent creations that read the same latest serial into one failed insert.
func (r *ConsignmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "srNo", Value: -1}},
			Options: options.Index().SetUnique(true).SetName("srNo_unique"),
		},
		{
			Keys: bson.D{{Key: "consignmentNo", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "srNo", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "invoiceId", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "zone", Value: 1},
				{Key: "date", Value: 1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create consignment indexes: %w", err)
	}
	return nil
}

// Insert stores a new consignment and assigns its ID
func (r *ConsignmentRepository) Insert(ctx context.Context, consignment *domain.Consignment) error {
	if consignment.ID.IsZero() {
		consignment.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, consignment); err != nil {
		return fmt.Errorf("failed to insert consignment: %w", err)
	}
	return nil
}

// FindByID retrieves a consignment by its ObjectID hex
func (r *ConsignmentRepository) FindByID(ctx context.Context, id string) (*domain.Consignment, error) {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var consignment domain.Consignment
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&consignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find consignment: %w", err)
	}
	return &consignment, nil
}

// FindLatestBySerial returns the consignment with the greatest srNo
func (r *ConsignmentRepository) FindLatestBySerial(ctx context.Context) (*domain.Consignment, error) {
	opts := options.FindOne().
		SetSort(sharedMongo.SortDescending("srNo")).
		SetProjection(bson.M{"srNo": 1})

	var consignment domain.Consignment
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&consignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read latest serial: %w", err)
	}
	return &consignment, nil
}

// List returns consignments matching filter, newest serial first
func (r *ConsignmentRepository) List(ctx context.Context, filter domain.ConsignmentFilter) ([]*domain.Consignment, error) {
	pagination := sharedMongo.NewPagination(filter.Page, filter.PageSize)
	opts := options.Find().
		SetSort(sharedMongo.SortDescending("srNo")).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list consignments: %w", err)
	}
	defer cursor.Close(ctx)

	consignments := make([]*domain.Consignment, 0)
	if err := cursor.All(ctx, &consignments); err != nil {
		return nil, fmt.Errorf("failed to decode consignments: %w", err)
	}
	return consignments, nil
}

// Count returns the number of consignments matching filter
func (r *ConsignmentRepository) Count(ctx context.Context, filter domain.ConsignmentFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count consignments: %w", err)
	}
	return n, nil
}

// Update replaces the stored consignment
func (r *ConsignmentRepository) Update(ctx context.Context, consignment *domain.Consignment) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": consignment.ID}, consignment)
	if err != nil {
		return fmt.Errorf("failed to update consignment: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrConsignmentNotFound
	}
	return nil
}

// SetShipmentLink records the derived shipment on a consignment
func (r *ConsignmentRepository) SetShipmentLink(ctx context.Context, id, shipmentID, trackingNumber string) error {
	return r.setFields(ctx, id, bson.M{
		"shipmentId":     shipmentID,
		"trackingNumber": trackingNumber,
	})
}

// SetInvoiceLink records the derived invoice on a consignment
func (r *ConsignmentRepository) SetInvoiceLink(ctx context.Context, id, invoiceID, invoiceNo string) error {
	return r.setFields(ctx, id, bson.M{
		"invoiceId": invoiceID,
		"invoiceNo": invoiceNo,
	})
}

// Delete removes a consignment
func (r *ConsignmentRepository) Delete(ctx context.Context, id string) error {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete consignment: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrConsignmentNotFound
	}
	return nil
}

func (r *ConsignmentRepository) setFields(ctx context.Context, id string, set bson.M) error {
	oid, err := sharedMongo.ParseID(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, sharedMongo.BuildUpdateWithTimestamp(set))
	if err != nil {
		return fmt.Errorf("failed to update consignment links: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrConsignmentNotFound
	}
	return nil
}

func buildFilter(filter domain.ConsignmentFilter) bson.M {
	mongoFilter := bson.M{}
	if filter.Zone != "" {
		mongoFilter["zone"] = filter.Zone
	}
	if filter.CustomerID != "" {
		mongoFilter["customerId"] = filter.CustomerID
	}
	if filter.InvoiceID != "" {
		mongoFilter["invoiceId"] = filter.InvoiceID
	}

	// booking dates are YYYY-MM-DD strings, so lexical order is date order
	date := bson.M{}
	if filter.StartDate != "" {
		date["$gte"] = filter.StartDate
	}
	if filter.EndDate != "" {
		date["$lte"] = filter.EndDate
	}
	if len(date) > 0 {
		mongoFilter["date"] = date
	}
	return mongoFilter
}
