package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is the read-only view of a user account that books consignments.
type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName      string             `bson:"fullName" json:"fullName"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	Address       string             `bson:"address" json:"address"`
	City          string             `bson:"city" json:"city"`
	State         string             `bson:"state" json:"state"`
	Pincode       string             `bson:"pincode" json:"pincode"`
	PricingRuleID string             `bson:"pricingRuleId,omitempty" json:"pricingRuleId,omitempty"`
}

// BillingAddress formats the address printed on invoices.
func (c *Customer) BillingAddress() string {
	return fmt.Sprintf("%s, %s, %s - %s", c.Address, c.City, c.State, c.Pincode)
}
