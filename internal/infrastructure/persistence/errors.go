package persistence

import (
	"errors"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps GORM errors onto domain errors.
// Anything that is not a miss or a duplicate is a data store failure for op.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists.Wrap(err)
	default:
		return shared.NewDataStoreFailure(op, err)
	}
}
