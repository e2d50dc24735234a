package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultMinWeightKg applies when a policy stores no minimum chargeable weight.
const DefaultMinWeightKg = 0.5

// PricingPolicy is a rate card bound to a zone, or to customers that reference it.
type PricingPolicy struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Zone        string             `bson:"zone,omitempty" json:"zone,omitempty"`
	BaseRate    float64            `bson:"baseRate" json:"baseRate"`
	PerKgRate   float64            `bson:"perKgRate" json:"perKgRate"`
	MinWeightKg *float64           `bson:"minWeightKg,omitempty" json:"minWeightKg,omitempty"`
	IsActive    *bool              `bson:"isActive,omitempty" json:"isActive,omitempty"`
}

// MinWeight returns the minimum chargeable weight in kg.
func (p *PricingPolicy) MinWeight() float64 {
	if p.MinWeightKg == nil {
		return DefaultMinWeightKg
	}
	return *p.MinWeightKg
}

// Active reports whether the policy may be applied. A policy without the flag counts as active.
func (p *PricingPolicy) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// ChargeableWeight is the greater of the actual weight and the policy minimum.
func (p *PricingPolicy) ChargeableWeight(weightKg float64) float64 {
	return max(weightKg, p.MinWeight())
}

// ApplyPricing returns the base rate for a consignment. A nonzero manual rate,
// or the absence of a policy, passes through unchanged.
func ApplyPricing(manualBaseRate, weightKg float64, policy *PricingPolicy) float64 {
	if manualBaseRate != 0 || policy == nil {
		return manualBaseRate
	}
	return policy.BaseRate + policy.PerKgRate*policy.ChargeableWeight(weightKg)
}
