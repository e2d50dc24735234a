package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentType buckets a shipment by weight
type ShipmentType string

const (
	ShipmentTypeDocument ShipmentType = "document"
	ShipmentTypeParcel   ShipmentType = "parcel"
	ShipmentTypeFreight  ShipmentType = "freight"
)

// Weight limits of the shipment classes, inclusive
const (
	DocumentMaxWeightKg = 0.5
	ParcelMaxWeightKg   = 5.0
)

// ClassifyShipment returns the shipment class for a weight in kg.
func ClassifyShipment(weightKg float64) ShipmentType {
	switch {
	case weightKg <= DocumentMaxWeightKg:
		return ShipmentTypeDocument
	case weightKg <= ParcelMaxWeightKg:
		return ShipmentTypeParcel
	default:
		return ShipmentTypeFreight
	}
}

// ShipmentStatus represents the movement state of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusPickedUp  ShipmentStatus = "picked_up"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// DefaultCountry of derived shipment addresses
const DefaultCountry = "India"

// Address is a postal address snapshot
type Address struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Pincode      string `bson:"pincode" json:"pincode"`
	Country      string `bson:"country" json:"country"`
}

// TrackingEvent is an entry of a shipment's history
type TrackingEvent struct {
	Status      ShipmentStatus `bson:"status" json:"status"`
	Location    string         `bson:"location" json:"location"`
	Timestamp   time.Time      `bson:"timestamp" json:"timestamp"`
	Description string         `bson:"description" json:"description"`
	UpdatedBy   string         `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
}

// PricingSnapshot copies the consignment charges at shipment creation
type PricingSnapshot struct {
	BaseRate      float64 `bson:"baseRate" json:"baseRate"`
	DocketCharges float64 `bson:"docketCharges" json:"docketCharges"`
	ODACharge     float64 `bson:"odaCharge" json:"odaCharge"`
	FOV           float64 `bson:"fov" json:"fov"`
	Total         float64 `bson:"total" json:"total"`
}

// Shipment is the physical movement record derived from a consignment
type Shipment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingNumber  string             `bson:"trackingNumber" json:"trackingNumber"`
	CustomerID      string             `bson:"customerId" json:"customerId"`
	ShipmentType    ShipmentType       `bson:"shipmentType" json:"shipmentType"`
	Origin          Address            `bson:"origin" json:"origin"`
	Destination     Address            `bson:"destination" json:"destination"`
	WeightKg        float64            `bson:"weightKg" json:"weightKg"`
	DeclaredValue   float64            `bson:"declaredValue" json:"declaredValue"`
	Description     string             `bson:"description" json:"description"`
	Status          ShipmentStatus     `bson:"status" json:"status"`
	TrackingHistory []TrackingEvent    `bson:"trackingHistory" json:"trackingHistory"`
	Pricing         PricingSnapshot    `bson:"pricing" json:"pricing"`

	// Empty until linked; readers treat a missing reference as not yet linked
	ConsignmentID string `bson:"consignmentId,omitempty" json:"consignmentId,omitempty"`
	InvoiceID     string `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`

	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewShipmentFromConsignment derives a pending shipment from a stored consignment.
// The origin is the customer's address, the destination comes from the consignment.
func NewShipmentFromConsignment(c *Consignment, customer *Customer, trackingNumber, actorID string, now time.Time) *Shipment {
	return &Shipment{
		ID:             primitive.NewObjectID(),
		TrackingNumber: trackingNumber,
		CustomerID:     c.CustomerID,
		ShipmentType:   ClassifyShipment(c.Weight),
		Origin: Address{
			Name:         customer.FullName,
			Phone:        customer.Phone,
			AddressLine1: customer.Address,
			City:         customer.City,
			State:        customer.State,
			Pincode:      customer.Pincode,
			Country:      DefaultCountry,
		},
		Destination: Address{
			Name:         orDefault(c.Name, "Consignee"),
			AddressLine1: c.Destination,
			City:         orDefault(c.DestinationCity, c.Destination),
			State:        c.DestinationState,
			Pincode:      c.DestinationPincode,
			Country:      DefaultCountry,
		},
		WeightKg:      c.Weight,
		DeclaredValue: c.Value,
		Description:   c.ProductName,
		Status:        ShipmentStatusPending,
		TrackingHistory: []TrackingEvent{{
			Status:      ShipmentStatusPending,
			Location:    orDefault(customer.City, "Origin"),
			Timestamp:   now,
			Description: "Shipment created from consignment",
			UpdatedBy:   actorID,
		}},
		Pricing: PricingSnapshot{
			BaseRate:      c.BaseRate,
			DocketCharges: c.DocketCharges,
			ODACharge:     c.ODACharge,
			FOV:           c.FOV,
			Total:         c.Total,
		},
		ConsignmentID: c.ID.Hex(),
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
