package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeInvoice(t *testing.T) {
	got := ComputeInvoice(ChargeInput{
		BaseRate:          1000,
		DocketCharges:     100,
		ODACharge:         50,
		FOV:               0,
		FuelChargePercent: float(5),
		GSTPercent:        float(18),
	})

	assert.Equal(t, InvoiceComputation{
		Subtotal:         1150,
		FuelAmount:       57.5,
		SubtotalWithFuel: 1207.5,
		GSTAmount:        217.35,
		Total:            1424.85,
	}, got)
}

func TestComputeInvoiceDefaults(t *testing.T) {
	got := ComputeInvoice(ChargeInput{BaseRate: 100})

	assert.Equal(t, 0.0, got.FuelAmount)
	assert.Equal(t, 100.0, got.SubtotalWithFuel)
	assert.Equal(t, 18.0, got.GSTAmount)
	assert.Equal(t, 118.0, got.Total)
}

func TestComputeInvoiceRounding(t *testing.T) {
	got := ComputeInvoice(ChargeInput{
		BaseRate:          33.33,
		FuelChargePercent: float(7.5),
		GSTPercent:        float(0),
	})

	// 33.33 * 7.5% = 2.49975
	assert.Equal(t, 2.5, got.FuelAmount)
	assert.Equal(t, 35.83, got.SubtotalWithFuel)
	assert.Equal(t, 0.0, got.GSTAmount)
	assert.Equal(t, 35.83, got.Total)
}

func TestComputeInvoiceSurchargeUsesUnroundedSubtotal(t *testing.T) {
	got := ComputeInvoice(ChargeInput{
		BaseRate:          0.005,
		DocketCharges:     0.004,
		FuelChargePercent: float(50),
		GSTPercent:        float(0),
	})

	// 0.009 * 50% = 0.0045; a pre-rounded 0.01 would give 0.005 -> 0.01
	assert.Equal(t, 0.01, got.Subtotal)
	assert.Equal(t, 0.0, got.FuelAmount)
	assert.Equal(t, 0.01, got.SubtotalWithFuel)
	assert.Equal(t, 0.01, got.Total)
}

func TestComputeInvoiceZeroInput(t *testing.T) {
	assert.Equal(t, InvoiceComputation{}, ComputeInvoice(ChargeInput{}))
}

func TestNewInvoiceForConsignment(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	c := &Consignment{
		ID:                primitive.NewObjectID(),
		ConsignmentNo:     "DXOO1503241030",
		CustomerID:        "cust-1",
		Destination:       "Pune",
		ProductName:       "Books",
		Weight:            3,
		BaseRate:          1000,
		DocketCharges:     100,
		ODACharge:         50,
		FuelChargePercent: float(5),
	}
	customer := &Customer{
		FullName: "Acme Traders",
		Email:    "billing@acme.test",
		Address:  "12 MG Road",
		City:     "Mumbai",
		State:    "MH",
		Pincode:  "400001",
	}

	inv := NewInvoiceForConsignment("INV-202403-ABC123", c, customer, "ship-1", "RR20240315103000", "admin-1", now)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Consignment - Books to Pune", inv.Items[0].Description)
	assert.Equal(t, "ship-1", inv.Items[0].ShipmentID)
	assert.Equal(t, 1207.5, inv.Items[0].Amount)
	assert.Equal(t, []string{"ship-1"}, inv.ShipmentIDs)
	assert.Equal(t, 1207.5, inv.Subtotal)
	assert.Equal(t, 57.5, inv.FuelAmount)
	assert.Equal(t, 217.35, inv.GSTAmount)
	assert.Equal(t, 1424.85, inv.TotalAmount)
	assert.Equal(t, 1424.85, inv.BalanceDue)
	assert.Equal(t, 0.0, inv.AmountPaid)
	assert.Equal(t, PaymentStatusPending, inv.PaymentStatus)
	assert.Empty(t, inv.Payments)
	assert.Equal(t, now.AddDate(0, 0, 30), inv.DueDate)
	assert.Equal(t, "12 MG Road, Mumbai, MH - 400001", inv.BillingAddress)
	assert.Equal(t, "Acme Traders", inv.CustomerName)
	assert.Equal(t, "Auto-generated invoice for consignment DXOO1503241030", inv.Notes)
	assert.Equal(t, c.ID.Hex(), inv.ConsignmentID)
	assert.Equal(t, "admin-1", inv.CreatedBy)
}

func TestNewInvoiceForConsignmentWithoutShipment(t *testing.T) {
	c := &Consignment{ID: primitive.NewObjectID(), Name: "Ravi"}

	inv := NewInvoiceForConsignment("INV-1", c, &Customer{}, "", "", "admin-1", time.Now())

	assert.Empty(t, inv.ShipmentIDs)
	assert.NotNil(t, inv.ShipmentIDs)
	assert.Equal(t, "", inv.Items[0].ShipmentID)
	assert.Equal(t, "Consignment - Package to Destination", inv.Items[0].Description)
	assert.Equal(t, "Ravi", inv.CustomerName)
}
