package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/logging"
	"github.com/wms-platform/consignment-service/pkg/metrics"
)

// Sources a pricing policy can be resolved from
const (
	PricingSourceCustomer = "customer"
	PricingSourceZone     = "zone"
	PricingSourceNone     = "none"
	PricingSourceManual   = "manual"
)

// PricingResolver picks the rate card for a consignment: the customer's
// assigned policy when it is active, else the active policy of the zone.
type PricingResolver struct {
	customers domain.CustomerRepository
	policies  domain.PricingPolicyRepository
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

// NewPricingResolver creates a new PricingResolver
func NewPricingResolver(
	customers domain.CustomerRepository,
	policies domain.PricingPolicyRepository,
	m *metrics.Metrics,
	logger *logging.Logger,
) *PricingResolver {
	return &PricingResolver{
		customers: customers,
		policies:  policies,
		metrics:   m,
		logger:    logger.WithComponent("pricing-resolver"),
	}
}

// Resolve returns the applicable policy, or nil when none applies. Missing or
// malformed customer and policy references are not errors; only storage
// failures are.
func (r *PricingResolver) Resolve(ctx context.Context, customerID, zone string) (*domain.PricingPolicy, error) {
	var customer *domain.Customer
	if customerID != "" {
		found, err := r.customers.FindByID(ctx, customerID)
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			// same as an unknown customer
		case err != nil:
			return nil, fmt.Errorf("failed to get customer: %w", err)
		default:
			customer = found
		}
	}

	policy, _, err := r.resolve(ctx, customer, zone)
	return policy, err
}

// ResolveForCustomer is Resolve for a customer that has already been loaded. customer may be nil.
func (r *PricingResolver) ResolveForCustomer(ctx context.Context, customer *domain.Customer, zone string) (*domain.PricingPolicy, error) {
	policy, _, err := r.resolve(ctx, customer, zone)
	return policy, err
}

func (r *PricingResolver) resolve(ctx context.Context, customer *domain.Customer, zone string) (*domain.PricingPolicy, string, error) {
	if customer != nil && customer.PricingRuleID != "" {
		policy, err := r.policies.FindByID(ctx, customer.PricingRuleID)
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			r.logger.WithContext(ctx).Warn("Customer references a malformed pricing rule",
				"customerId", customer.ID.Hex(),
				"pricingRuleId", customer.PricingRuleID,
			)
		case err != nil:
			return nil, "", fmt.Errorf("failed to get pricing rule: %w", err)
		case policy != nil && policy.Active():
			r.metrics.RecordPricingResolution(PricingSourceCustomer)
			return policy, PricingSourceCustomer, nil
		}
	}

	policy, err := r.policies.FindActiveByZone(ctx, domain.NormalizeZone(zone))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get zone pricing rule: %w", err)
	}
	if policy != nil {
		r.metrics.RecordPricingResolution(PricingSourceZone)
		return policy, PricingSourceZone, nil
	}

	r.metrics.RecordPricingResolution(PricingSourceNone)
	return nil, PricingSourceNone, nil
}
