package application

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wms-platform/consignment-service/internal/domain"
)

func TestPricingResolverResolve(t *testing.T) {
	ctx := context.Background()
	customerID := primitive.NewObjectID()
	ruleID := primitive.NewObjectID()
	zonePolicy := &domain.PricingPolicy{ID: primitive.NewObjectID(), Zone: "local", BaseRate: 50, PerKgRate: 20}

	customerWithRule := func(context.Context, string) (*domain.Customer, error) {
		return &domain.Customer{ID: customerID, PricingRuleID: ruleID.Hex()}, nil
	}
	zoneLookup := func(_ context.Context, zone string) (*domain.PricingPolicy, error) {
		if zone == "local" {
			return zonePolicy, nil
		}
		return nil, nil
	}

	t.Run("active customer policy wins", func(t *testing.T) {
		customerPolicy := &domain.PricingPolicy{ID: ruleID, BaseRate: 80, IsActive: boolean(true)}
		policies := &fakePolicyRepo{
			findByIDFn: func(context.Context, string) (*domain.PricingPolicy, error) {
				return customerPolicy, nil
			},
			findByZoneFn: zoneLookup,
		}
		m := testMetrics()
		r := NewPricingResolver(&fakeCustomerRepo{findByIDFn: customerWithRule}, policies, m, testLogger())

		got, err := r.Resolve(ctx, customerID.Hex(), "LOCAL")
		require.NoError(t, err)
		assert.Same(t, customerPolicy, got)
		assert.Empty(t, policies.requestedZones)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PricingResolutions.WithLabelValues("test", PricingSourceCustomer)))
	})

	t.Run("inactive customer policy falls back to zone", func(t *testing.T) {
		policies := &fakePolicyRepo{
			findByIDFn: func(context.Context, string) (*domain.PricingPolicy, error) {
				return &domain.PricingPolicy{ID: ruleID, IsActive: boolean(false)}, nil
			},
			findByZoneFn: zoneLookup,
		}
		r := NewPricingResolver(&fakeCustomerRepo{findByIDFn: customerWithRule}, policies, testMetrics(), testLogger())

		got, err := r.Resolve(ctx, customerID.Hex(), "Local")
		require.NoError(t, err)
		assert.Same(t, zonePolicy, got)
		assert.Equal(t, []string{"local"}, policies.requestedZones)
	})

	t.Run("empty zone defaults to local", func(t *testing.T) {
		policies := &fakePolicyRepo{findByZoneFn: zoneLookup}
		r := NewPricingResolver(&fakeCustomerRepo{}, policies, testMetrics(), testLogger())

		got, err := r.Resolve(ctx, "", "")
		require.NoError(t, err)
		assert.Same(t, zonePolicy, got)
		assert.Equal(t, []string{"local"}, policies.requestedZones)
	})

	t.Run("malformed ids are treated as absent", func(t *testing.T) {
		policies := &fakePolicyRepo{
			findByIDFn: func(context.Context, string) (*domain.PricingPolicy, error) {
				return nil, domain.ErrInvalidID
			},
			findByZoneFn: zoneLookup,
		}
		customers := &fakeCustomerRepo{findByIDFn: func(_ context.Context, id string) (*domain.Customer, error) {
			if id == "bad" {
				return nil, domain.ErrInvalidID
			}
			return &domain.Customer{ID: customerID, PricingRuleID: "not-an-id"}, nil
		}}
		r := NewPricingResolver(customers, policies, testMetrics(), testLogger())

		got, err := r.Resolve(ctx, "bad", "local")
		require.NoError(t, err)
		assert.Same(t, zonePolicy, got)

		got, err = r.Resolve(ctx, customerID.Hex(), "local")
		require.NoError(t, err)
		assert.Same(t, zonePolicy, got)
	})

	t.Run("nothing applies", func(t *testing.T) {
		m := testMetrics()
		r := NewPricingResolver(&fakeCustomerRepo{}, &fakePolicyRepo{findByZoneFn: zoneLookup}, m, testLogger())

		got, err := r.Resolve(ctx, customerID.Hex(), "metro")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PricingResolutions.WithLabelValues("test", PricingSourceNone)))
	})

	t.Run("storage failures are returned", func(t *testing.T) {
		policies := &fakePolicyRepo{findByZoneFn: func(context.Context, string) (*domain.PricingPolicy, error) {
			return nil, errors.New("timeout")
		}}
		r := NewPricingResolver(&fakeCustomerRepo{}, policies, testMetrics(), testLogger())

		_, err := r.Resolve(ctx, "", "local")
		assert.Error(t, err)
	})
}
