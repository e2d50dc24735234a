package application

import (
	"context"

	"github.com/wms-platform/consignment-service/internal/domain"
	"github.com/wms-platform/consignment-service/pkg/errors"
)

// SequenceAllocator hands out consignment serial numbers.
//
// It reads the current maximum and adds one, so two concurrent creations can
// read the same maximum. The unique index on srNo makes the losing insert fail
// instead of storing a duplicate; no lock or counter document is used.
type SequenceAllocator struct {
	consignments domain.ConsignmentRepository
}

// NewSequenceAllocator creates a new SequenceAllocator
func NewSequenceAllocator(consignments domain.ConsignmentRepository) *SequenceAllocator {
	return &SequenceAllocator{consignments: consignments}
}

// Next returns the serial for the next consignment, 1 for an empty store.
func (a *SequenceAllocator) Next(ctx context.Context) (int64, error) {
	latest, err := a.consignments.FindLatestBySerial(ctx)
	if err != nil {
		return 0, errors.ErrStorageUnavailable("allocate serial number", err)
	}
	if latest == nil {
		return 1, nil
	}
	return latest.SrNo + 1, nil
}
