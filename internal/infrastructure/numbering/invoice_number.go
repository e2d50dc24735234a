// Package numbering issues invoice numbers.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const invoicePrefix = "INV"

// InvoiceNumberGenerator issues numbers shaped INV-YYYYMM-XXXXXX, where the
// suffix is six hex digits of a random UUID. Uniqueness is enforced by the
// unique index on invoices.invoiceNumber.
type InvoiceNumberGenerator struct {
	now     func() time.Time
	newUUID func() (uuid.UUID, error)
}

// NewInvoiceNumberGenerator creates a generator on the wall clock
func NewInvoiceNumberGenerator() *InvoiceNumberGenerator {
	return &InvoiceNumberGenerator{now: time.Now, newUUID: uuid.NewRandom}
}

// Next returns a fresh invoice number
func (g *InvoiceNumberGenerator) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := g.newUUID()
	if err != nil {
		return "", fmt.Errorf("failed to generate invoice suffix: %w", err)
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", invoicePrefix, g.now().UTC().Format("200601"), suffix), nil
}
