package upload

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed caller input. Nothing is
	// mutated when it is returned.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when the referenced asset does not exist
	ErrNotFound = errors.New("file asset not found")

	// ErrPersistence wraps metadata store failures. The manager does not
	// retry them.
	ErrPersistence = errors.New("metadata store failure")
)

// VariantError reports a failed resize. The asset is left in status
// "failed" with the variants that completed before the failure intact.
type VariantError struct {
	Variant VariantName
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %q generation failed: %v", e.Variant, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}
