package domain

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for the consignment domain
var (
	ErrInvalidID           = errors.New("invalid id")
	ErrConsignmentNotFound = errors.New("consignment not found")
	ErrShipmentNotFound    = errors.New("shipment not found")
	ErrNegativeCharge      = errors.New("charges must not be negative")
	ErrNegativeWeight      = errors.New("weight must not be negative")
	ErrInvalidPercent      = errors.New("percentage must be between 0 and 100")
	ErrDestinationRequired = errors.New("destination is required")
	ErrInvalidBookingDate  = errors.New("date must be formatted as YYYY-MM-DD")
)

// DefaultZone is used when a consignment carries no zone
const DefaultZone = "local"

// BookingDateLayout is the layout of Consignment.Date
const BookingDateLayout = "2006-01-02"

// Consignment is a customer's logistics booking
type Consignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SrNo          int64              `bson:"srNo" json:"srNo"`
	ConsignmentNo string             `bson:"consignmentNo" json:"consignmentNo"`
	Date          string             `bson:"date" json:"date"`

	// Consignee and destination
	Name               string `bson:"name" json:"name"`
	CustomerID         string `bson:"customerId,omitempty" json:"customerId,omitempty"`
	Destination        string `bson:"destination" json:"destination"`
	DestinationCity    string `bson:"destinationCity,omitempty" json:"destinationCity,omitempty"`
	DestinationState   string `bson:"destinationState,omitempty" json:"destinationState,omitempty"`
	DestinationPincode string `bson:"destinationPincode,omitempty" json:"destinationPincode,omitempty"`

	// Package
	Pieces         int     `bson:"pieces" json:"pieces"`
	Weight         float64 `bson:"weight" json:"weight"`
	ProductName    string  `bson:"productName,omitempty" json:"productName,omitempty"`
	Value          float64 `bson:"value" json:"value"`
	Box1Dimensions string  `bson:"box1Dimensions,omitempty" json:"box1Dimensions,omitempty"`
	Box2Dimensions string  `bson:"box2Dimensions,omitempty" json:"box2Dimensions,omitempty"`
	Box3Dimensions string  `bson:"box3Dimensions,omitempty" json:"box3Dimensions,omitempty"`

	// Charges
	Zone              string   `bson:"zone" json:"zone"`
	BaseRate          float64  `bson:"baseRate" json:"baseRate"`
	DocketCharges     float64  `bson:"docketCharges" json:"docketCharges"`
	ODACharge         float64  `bson:"odaCharge" json:"odaCharge"`
	FOV               float64  `bson:"fov" json:"fov"`
	Total             float64  `bson:"total" json:"total"`
	FuelChargePercent *float64 `bson:"fuelChargePercent,omitempty" json:"fuelChargePercent,omitempty"`
	GSTPercent        *float64 `bson:"gstPercent,omitempty" json:"gstPercent,omitempty"`

	// Derived record links, empty until attached
	ShipmentID     string `bson:"shipmentId,omitempty" json:"shipmentId,omitempty"`
	TrackingNumber string `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	InvoiceID      string `bson:"invoiceId,omitempty" json:"invoiceId,omitempty"`
	InvoiceNo      string `bson:"invoiceNo,omitempty" json:"invoiceNo,omitempty"`

	CreatedBy string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	UpdatedBy string    `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RecalculateTotal sets Total to the sum of the four charge fields.
func (c *Consignment) RecalculateTotal() {
	c.Total = c.Charges().Total()
}

// Charges returns the invoice computer input for this consignment.
func (c *Consignment) Charges() ChargeInput {
	return ChargeInput{
		BaseRate:          c.BaseRate,
		DocketCharges:     c.DocketCharges,
		ODACharge:         c.ODACharge,
		FOV:               c.FOV,
		FuelChargePercent: c.FuelChargePercent,
		GSTPercent:        c.GSTPercent,
	}
}

// PricingZone returns the lower-cased zone used for policy lookup.
func (c *Consignment) PricingZone() string {
	return NormalizeZone(c.Zone)
}

// NormalizeZone lower-cases zone and falls back to DefaultZone.
func NormalizeZone(zone string) string {
	z := strings.ToLower(strings.TrimSpace(zone))
	if z == "" {
		return DefaultZone
	}
	return z
}

// Validate checks the invariants a consignment must hold before it is stored.
func (c *Consignment) Validate() error {
	if strings.TrimSpace(c.Destination) == "" {
		return ErrDestinationRequired
	}
	if c.Weight < 0 {
		return ErrNegativeWeight
	}
	if c.Value < 0 {
		return ErrNegativeCharge
	}
	if err := c.Charges().Validate(); err != nil {
		return err
	}
	if c.Date != "" {
		if _, err := time.Parse(BookingDateLayout, c.Date); err != nil {
			return ErrInvalidBookingDate
		}
	}
	return nil
}

// ConsignmentPatch lists every updatable consignment attribute. Nil fields are left untouched.
type ConsignmentPatch struct {
	Date               *string
	Name               *string
	CustomerID         *string
	Destination        *string
	DestinationCity    *string
	DestinationState   *string
	DestinationPincode *string
	Pieces             *int
	Weight             *float64
	ProductName        *string
	Value              *float64
	Zone               *string
	BaseRate           *float64
	DocketCharges      *float64
	ODACharge          *float64
	FOV                *float64
	FuelChargePercent  *float64
	GSTPercent         *float64
	Box1Dimensions     *string
	Box2Dimensions     *string
	Box3Dimensions     *string
}

// IsEmpty reports whether the patch carries no field.
func (p ConsignmentPatch) IsEmpty() bool {
	return p == ConsignmentPatch{}
}

// Apply overwrites the present fields, recomputes the total and stamps the update.
// The consignment is left unchanged when the result would be invalid.
func (p ConsignmentPatch) Apply(c *Consignment, actorID string, now time.Time) error {
	next := *c

	setString(&next.Date, p.Date)
	setString(&next.Name, p.Name)
	setString(&next.CustomerID, p.CustomerID)
	setString(&next.Destination, p.Destination)
	setString(&next.DestinationCity, p.DestinationCity)
	setString(&next.DestinationState, p.DestinationState)
	setString(&next.DestinationPincode, p.DestinationPincode)
	setString(&next.ProductName, p.ProductName)
	if p.Zone != nil {
		next.Zone = NormalizeZone(*p.Zone)
	}
	setString(&next.Box1Dimensions, p.Box1Dimensions)
	setString(&next.Box2Dimensions, p.Box2Dimensions)
	setString(&next.Box3Dimensions, p.Box3Dimensions)
	if p.Pieces != nil {
		next.Pieces = *p.Pieces
	}
	setFloat(&next.Weight, p.Weight)
	setFloat(&next.Value, p.Value)
	setFloat(&next.BaseRate, p.BaseRate)
	setFloat(&next.DocketCharges, p.DocketCharges)
	setFloat(&next.ODACharge, p.ODACharge)
	setFloat(&next.FOV, p.FOV)
	if p.FuelChargePercent != nil {
		v := *p.FuelChargePercent
		next.FuelChargePercent = &v
	}
	if p.GSTPercent != nil {
		v := *p.GSTPercent
		next.GSTPercent = &v
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.RecalculateTotal()
	next.UpdatedBy = actorID
	next.UpdatedAt = now
	*c = next
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
