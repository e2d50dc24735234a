package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/wms-platform/consignment-service/internal/domain"
	sharedMongo "github.com/wms-platform/consignment-service/pkg/mongodb"
)

func namespace(mt *mtest.T, collection string) string {
	return mt.DB.Name() + "." + collection
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)
		ctx := context.Background()
		require.NoError(t, NewConsignmentRepository(mt.DB).EnsureIndexes(ctx))
		require.NoError(t, NewShipmentRepository(mt.DB).EnsureIndexes(ctx))
		require.NoError(t, NewInvoiceRepository(mt.DB).EnsureIndexes(ctx))
	})

	mt.Run("failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index exists with different options",
		}))
		err := NewConsignmentRepository(mt.DB).EnsureIndexes(context.Background())
		assert.ErrorContains(t, err, "consignment indexes")
	})
}

func TestConsignmentRepository_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns id", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &domain.Consignment{SrNo: 1, Destination: "Mumbai"}
		require.NoError(t, repo.Insert(context.Background(), c))
		assert.False(t, c.ID.IsZero())
	})

	mt.Run("insert duplicate serial", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: courier.consignments index: srNo_unique",
		}))

		err := repo.Insert(context.Background(), &domain.Consignment{SrNo: 1})
		assert.ErrorContains(t, err, "failed to insert consignment")
		assert.False(t, sharedMongo.IsUnavailable(err))
	})

	mt.Run("find by id", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, consignmentsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "srNo", Value: int64(7)},
			{Key: "consignmentNo", Value: "DXOO0503240337"},
			{Key: "total", Value: 110.0},
		}))
		got, err := repo.FindByID(ctx, id.Hex())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, int64(7), got.SrNo)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, consignmentsCollection), mtest.FirstBatch))
		got, err = repo.FindByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = repo.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	mt.Run("latest serial", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, consignmentsCollection), mtest.FirstBatch))
		latest, err := repo.FindLatestBySerial(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, consignmentsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "srNo", Value: int64(41)},
		}))
		latest, err = repo.FindLatestBySerial(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, int64(41), latest.SrNo)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		sort := started.Command.Lookup("sort").Document()
		assert.Equal(t, int64(-1), sort.Lookup("srNo").AsInt64())
	})

	mt.Run("list and count", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()
		ns := namespace(mt, consignmentsCollection)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "srNo", Value: int64(2)}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "srNo", Value: int64(1)}},
		))
		list, err := repo.List(ctx, domain.ConsignmentFilter{Zone: "local", Page: 2, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(2), list[0].SrNo)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.Equal(t, int64(10), started.Command.Lookup("skip").AsInt64())
		assert.Equal(t, int64(10), started.Command.Lookup("limit").AsInt64())
		assert.Equal(t, "local", started.Command.Lookup("filter", "zone").StringValue())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		list, err = repo.List(ctx, domain.ConsignmentFilter{})
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "n", Value: int64(3)},
		}))
		count, err := repo.Count(ctx, domain.ConsignmentFilter{CustomerID: "cust-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	mt.Run("update", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()
		c := &domain.Consignment{ID: primitive.NewObjectID(), Total: 10}

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		require.NoError(t, repo.Update(ctx, c))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.Update(ctx, c), domain.ErrConsignmentNotFound)
	})

	mt.Run("links", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()
		id := primitive.NewObjectID().Hex()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(t, repo.SetShipmentLink(ctx, id, "shp-1", "RR20240305033703"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.SetInvoiceLink(ctx, id, "inv-1", "INV-202403-1A2B3C"), domain.ErrConsignmentNotFound)

		assert.ErrorIs(t, repo.SetInvoiceLink(ctx, "bad", "inv-1", "INV-1"), domain.ErrInvalidID)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewConsignmentRepository(mt.DB)
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(t, repo.Delete(ctx, primitive.NewObjectID().Hex()))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.Delete(ctx, primitive.NewObjectID().Hex()), domain.ErrConsignmentNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, "xyz"), domain.ErrInvalidID)
	})
}

func TestDerivedRepositories_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("shipment", func(mt *mtest.T) {
		repo := NewShipmentRepository(mt.DB)
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(t, repo.Insert(ctx, &domain.Shipment{ID: primitive.NewObjectID()}))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		require.NoError(t, repo.SetInvoiceID(ctx, primitive.NewObjectID().Hex(), "inv-1"))

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.ErrorIs(t, repo.SetInvoiceID(ctx, primitive.NewObjectID().Hex(), "inv-1"), domain.ErrShipmentNotFound)
	})

	mt.Run("invoice", func(mt *mtest.T) {
		repo := NewInvoiceRepository(mt.DB)
		ctx := context.Background()

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(t, repo.Insert(ctx, &domain.Invoice{ID: primitive.NewObjectID(), InvoiceNumber: "INV-202403-1A2B3C"}))

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate invoiceNumber"}))
		assert.ErrorContains(t, repo.Insert(ctx, &domain.Invoice{ID: primitive.NewObjectID()}), "failed to insert invoice")
	})
}

func TestReferenceRepositories_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("customer", func(mt *mtest.T) {
		repo := NewCustomerRepository(mt.DB)
		ctx := context.Background()
		id := primitive.NewObjectID()
		ruleID := primitive.NewObjectID().Hex()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, customersCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "fullName", Value: "Asha Traders"},
			{Key: "city", Value: "Pune"},
			{Key: "pricingRuleId", Value: ruleID},
		}))
		customer, err := repo.FindByID(ctx, id.Hex())
		require.NoError(t, err)
		require.NotNil(t, customer)
		assert.Equal(t, "Asha Traders", customer.FullName)
		assert.Equal(t, ruleID, customer.PricingRuleID)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt, customersCollection), mtest.FirstBatch))
		customer, err = repo.FindByID(ctx, id.Hex())
		require.NoError(t, err)
		assert.Nil(t, customer)

		_, err = repo.FindByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	mt.Run("pricing policy", func(mt *mtest.T) {
		repo := NewPricingPolicyRepository(mt.DB)
		ctx := context.Background()
		ns := namespace(mt, pricingRulesCollection)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "zone", Value: "local"},
			{Key: "baseRate", Value: 50.0},
			{Key: "perKgRate", Value: 20.0},
			{Key: "isActive", Value: true},
		}))
		policy, err := repo.FindActiveByZone(ctx, "local")
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Equal(t, 50.0, policy.BaseRate)
		assert.True(t, policy.Active())
		assert.Equal(t, domain.DefaultMinWeightKg, policy.MinWeight())

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		assert.True(t, started.Command.Lookup("filter", "isActive").Boolean())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "baseRate", Value: 80.0},
		}))
		policy, err = repo.FindByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		require.NotNil(t, policy)
		assert.Nil(t, policy.IsActive)
		assert.True(t, policy.Active())

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))
		_, err = repo.FindActiveByZone(ctx, "metro")
		assert.ErrorContains(t, err, "failed to find pricing rule")
	})
}

func TestBuildFilter(t *testing.T) {
	filter := buildFilter(domain.ConsignmentFilter{
		Zone:       "local",
		CustomerID: "cust-1",
		InvoiceID:  "inv-1",
		StartDate:  "2024-03-01",
		EndDate:    "2024-03-31",
	})

	assert.Equal(t, bson.M{
		"zone":       "local",
		"customerId": "cust-1",
		"invoiceId":  "inv-1",
		"date":       bson.M{"$gte": "2024-03-01", "$lte": "2024-03-31"},
	}, filter)

	assert.Equal(t, bson.M{}, buildFilter(domain.ConsignmentFilter{}))
	assert.Equal(t, bson.M{"date": bson.M{"$lte": "2024-03-31"}}, buildFilter(domain.ConsignmentFilter{EndDate: "2024-03-31"}))
}
