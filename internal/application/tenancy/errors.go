package tenancy

import (
	"errors"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
)

// isMiss reports whether err is a plain lookup miss
func isMiss(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// storeFailure keeps DataStoreFailure errors as they are and wraps anything else
func storeFailure(op string, err error) error {
	if errors.Is(err, shared.ErrDataStoreFailure) {
		return err
	}
	return shared.NewDataStoreFailure(op, err)
}
