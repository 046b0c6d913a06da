package shared

import (
	"errors"
	"fmt"
)

// ErrStoreFailure marks an error from the underlying store (connection,
// query or commit failure) as opposed to a domain rule violation.
var ErrStoreFailure = errors.New("store failure")

// StoreError wraps err as a store failure for operation op.
// errors.Is matches both ErrStoreFailure and err.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}
