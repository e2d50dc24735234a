package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultGSTPercent applies when the consignment carries no GST rate
const DefaultGSTPercent = 18.0

// InvoiceDueDays is the payment term of derived invoices
const InvoiceDueDays = 30

// ChargeInput holds the values the invoice computer works on
type ChargeInput struct {
	BaseRate          float64
	DocketCharges     float64
	ODACharge         float64
	FOV               float64
	FuelChargePercent *float64
	GSTPercent        *float64
}

// Validate rejects negative charges and percentages outside [0, 100].
func (in ChargeInput) Validate() error {
	if in.BaseRate < 0 || in.DocketCharges < 0 || in.ODACharge < 0 || in.FOV < 0 {
		return ErrNegativeCharge
	}
	if !validPercent(in.FuelChargePercent) || !validPercent(in.GSTPercent) {
		return ErrInvalidPercent
	}
	return nil
}

// Total is the sum of the four charge fields
func (in ChargeInput) Total() float64 {
	return in.BaseRate + in.DocketCharges + in.ODACharge + in.FOV
}

func validPercent(p *float64) bool {
	return p == nil || (*p >= 0 && *p <= 100)
}

// InvoiceComputation is the result of ComputeInvoice
type InvoiceComputation struct {
	Subtotal         float64 `json:"subtotal"`
	FuelAmount       float64 `json:"fuelAmount"`
	SubtotalWithFuel float64 `json:"subtotalWithFuel"`
	GSTAmount        float64 `json:"gstAmount"`
	Total            float64 `json:"total"`
}

var hundred = decimal.NewFromInt(100)

// ComputeInvoice applies the fuel surcharge and GST to the four charge fields.
// The raw charge sum feeds the surcharge unrounded. Every derived amount is
// rounded half away from zero to two places before it feeds the next step.
func ComputeInvoice(in ChargeInput) InvoiceComputation {
	subtotal := decimal.NewFromFloat(in.BaseRate).
		Add(decimal.NewFromFloat(in.DocketCharges)).
		Add(decimal.NewFromFloat(in.ODACharge)).
		Add(decimal.NewFromFloat(in.FOV))

	fuelAmount := decimal.Zero
	if in.FuelChargePercent != nil && *in.FuelChargePercent != 0 {
		fuelAmount = subtotal.Mul(decimal.NewFromFloat(*in.FuelChargePercent)).Div(hundred).Round(2)
	}
	subtotalWithFuel := subtotal.Add(fuelAmount).Round(2)

	gstPercent := DefaultGSTPercent
	if in.GSTPercent != nil {
		gstPercent = *in.GSTPercent
	}
	gstAmount := subtotalWithFuel.Mul(decimal.NewFromFloat(gstPercent)).Div(hundred).Round(2)
	total := subtotalWithFuel.Add(gstAmount).Round(2)

	return InvoiceComputation{
		Subtotal:         subtotal.Round(2).InexactFloat64(),
		FuelAmount:       fuelAmount.InexactFloat64(),
		SubtotalWithFuel: subtotalWithFuel.InexactFloat64(),
		GSTAmount:        gstAmount.InexactFloat64(),
		Total:            total.InexactFloat64(),
	}
}

// PaymentStatus of an invoice
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Invoice is the billing document derived from a consignment
type Invoice struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InvoiceNumber  string             `bson:"invoiceNumber" json:"invoiceNumber"`
	CustomerID     string             `bson:"customerId" json:"customerId"`
	CustomerName   string             `bson:"customerName" json:"customerName"`
	CustomerEmail  string             `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	BillingAddress string             `bson:"billingAddress" json:"billingAddress"`
	ShipmentIDs    []string           `bson:"shipmentIds" json:"shipmentIds"`
	Items          []InvoiceItem      `bson:"items" json:"items"`

	// Subtotal is pre-tax and includes the fuel surcharge
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	FuelAmount  float64 `bson:"fuelAmount" json:"fuelAmount"`
	GSTAmount   float64 `bson:"gstAmount" json:"gstAmount"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`

	AmountPaid    float64       `bson:"amountPaid" json:"amountPaid"`
	BalanceDue    float64       `bson:"balanceDue" json:"balanceDue"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	Payments      []Payment     `bson:"payments" json:"payments"`
	DueDate       time.Time     `bson:"dueDate" json:"dueDate"`

	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ConsignmentID string    `bson:"consignmentId,omitempty" json:"consignmentId,omitempty"`
	CreatedBy     string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// InvoiceItem is a line of an invoice, one per shipment
type InvoiceItem struct {
	ShipmentID     string  `bson:"shipmentId" json:"shipmentId"`
	TrackingNumber string  `bson:"trackingNumber" json:"trackingNumber"`
	Description    string  `bson:"description" json:"description"`
	WeightKg       float64 `bson:"weightKg" json:"weightKg"`
	Amount         float64 `bson:"amount" json:"amount"`
}

// Payment records money received against an invoice
type Payment struct {
	Amount    float64   `bson:"amount" json:"amount"`
	Method    string    `bson:"method" json:"method"`
	Reference string    `bson:"reference,omitempty" json:"reference,omitempty"`
	PaidAt    time.Time `bson:"paidAt" json:"paidAt"`
}

// NewInvoiceForConsignment derives a pending invoice from a stored consignment.
// shipmentID and trackingNumber may be empty when no shipment was created.
func NewInvoiceForConsignment(
	invoiceNumber string,
	c *Consignment,
	customer *Customer,
	shipmentID, trackingNumber string,
	actorID string,
	now time.Time,
) *Invoice {
	amounts := ComputeInvoice(c.Charges())

	customerName := customer.FullName
	if customerName == "" {
		customerName = orDefault(c.Name, "Customer")
	}

	shipmentIDs := []string{}
	if shipmentID != "" {
		shipmentIDs = append(shipmentIDs, shipmentID)
	}

	return &Invoice{
		ID:             primitive.NewObjectID(),
		InvoiceNumber:  invoiceNumber,
		CustomerID:     c.CustomerID,
		CustomerName:   customerName,
		CustomerEmail:  customer.Email,
		BillingAddress: customer.BillingAddress(),
		ShipmentIDs:    shipmentIDs,
		Items: []InvoiceItem{{
			ShipmentID:     shipmentID,
			TrackingNumber: trackingNumber,
			Description: fmt.Sprintf("Consignment - %s to %s",
				orDefault(c.ProductName, "Package"), orDefault(c.Destination, "Destination")),
			WeightKg: c.Weight,
			Amount:   amounts.SubtotalWithFuel,
		}},
		Subtotal:      amounts.SubtotalWithFuel,
		FuelAmount:    amounts.FuelAmount,
		GSTAmount:     amounts.GSTAmount,
		TotalAmount:   amounts.Total,
		AmountPaid:    0,
		BalanceDue:    amounts.Total,
		PaymentStatus: PaymentStatusPending,
		Payments:      []Payment{},
		DueDate:       now.AddDate(0, 0, InvoiceDueDays),
		Notes:         "Auto-generated invoice for consignment " + c.ConsignmentNo,
		ConsignmentID: c.ID.Hex(),
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
