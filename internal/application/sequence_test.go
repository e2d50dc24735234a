package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/consignment-service/internal/domain"
	sharedErrors "github.com/wms-platform/consignment-service/pkg/errors"
)

func TestSequenceAllocatorNext(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store starts at one", func(t *testing.T) {
		alloc := NewSequenceAllocator(&fakeConsignmentRepo{})
		next, err := alloc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)
	})

	t.Run("increments the latest serial", func(t *testing.T) {
		alloc := NewSequenceAllocator(&fakeConsignmentRepo{
			findLatestFn: func(context.Context) (*domain.Consignment, error) {
				return &domain.Consignment{SrNo: 7}, nil
			},
		})
		next, err := alloc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(8), next)
	})

	t.Run("store failure is storage unavailable", func(t *testing.T) {
		alloc := NewSequenceAllocator(&fakeConsignmentRepo{
			findLatestFn: func(context.Context) (*domain.Consignment, error) {
				return nil, errors.New("connection refused")
			},
		})
		_, err := alloc.Next(ctx)
		require.Error(t, err)
		assert.True(t, sharedErrors.HasCode(err, sharedErrors.CodeStorageUnavailable))
	})
}
