package persistence

import (
	"errors"

	"github.com/hermes/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM errors to domain errors so callers never depend
// on the storage driver.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}
