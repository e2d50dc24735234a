package numbering

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumberGeneratorNext(t *testing.T) {
	g := NewInvoiceNumberGenerator()
	g.now = func() time.Time { return time.Date(2024, 3, 31, 22, 0, 0, 0, time.UTC) }
	g.newUUID = func() (uuid.UUID, error) {
		return uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000000"), nil
	}

	got, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-202403-1A2B3C", got)
}

func TestInvoiceNumberGeneratorShape(t *testing.T) {
	g := NewInvoiceNumberGenerator()
	pattern := regexp.MustCompile(`^INV-\d{6}-[0-9A-F]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		got, err := g.Next(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, got)
		seen[got] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestInvoiceNumberGeneratorErrors(t *testing.T) {
	g := NewInvoiceNumberGenerator()
	g.newUUID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("no entropy") }

	_, err := g.Next(context.Background())
	assert.ErrorContains(t, err, "no entropy")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewInvoiceNumberGenerator().Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
