package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist within the caller's
// tenant scope. A row owned by another tenant surfaces the same way.
var ErrNotFound = errors.New("record not found")

// IsNotFound reports whether an error means "no such row in this tenant's
// scope", regardless of which layer produced it
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
