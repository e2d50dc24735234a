package domain

import (
	"context"
	"time"
)

// Codes are derived from the UTC clock. Two creations within the same minute
// share a consignment number, and within the same second a tracking number.
const (
	consignmentNumberPrefix = "DXOO"
	consignmentNumberLayout = "0201061504" // ddmmyyHHMM
	trackingNumberPrefix    = "RR"
	trackingNumberLayout    = "20060102150405"
)

// ConsignmentNumber formats the human-readable consignment code for t.
func ConsignmentNumber(t time.Time) string {
	return consignmentNumberPrefix + t.UTC().Format(consignmentNumberLayout)
}

// TrackingNumber formats the shipment tracking code for t.
func TrackingNumber(t time.Time) string {
	return trackingNumberPrefix + t.UTC().Format(trackingNumberLayout)
}

// InvoiceNumberGenerator issues unique invoice numbers
type InvoiceNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// Actor is the authenticated caller a write is attributed to
type Actor struct {
	ID   string
	Role string
}
