package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func float(v float64) *float64 { return &v }

func boolean(v bool) *bool { return &v }

func TestApplyPricing(t *testing.T) {
	policy := &PricingPolicy{BaseRate: 50, PerKgRate: 20, MinWeightKg: float(0.5)}

	tests := []struct {
		name     string
		manual   float64
		weight   float64
		policy   *PricingPolicy
		expected float64
	}{
		{"policy over actual weight", 0, 3, policy, 110},
		{"minimum chargeable weight", 0, 0.2, policy, 60},
		{"manual rate wins over policy", 75, 3, policy, 75},
		{"manual rate without policy", 75, 3, nil, 75},
		{"no policy keeps zero", 0, 3, nil, 0},
		{"default minimum weight", 0, 0.1, &PricingPolicy{BaseRate: 10, PerKgRate: 10}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyPricing(tt.manual, tt.weight, tt.policy))
		})
	}
}

func TestPricingPolicyActive(t *testing.T) {
	assert.True(t, (&PricingPolicy{}).Active())
	assert.True(t, (&PricingPolicy{IsActive: boolean(true)}).Active())
	assert.False(t, (&PricingPolicy{IsActive: boolean(false)}).Active())
}

func TestNormalizeZone(t *testing.T) {
	assert.Equal(t, "local", NormalizeZone(""))
	assert.Equal(t, "local", NormalizeZone("  "))
	assert.Equal(t, "metro", NormalizeZone("METRO"))
	assert.Equal(t, "north east", NormalizeZone(" North East "))
}
