package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a malformed argument: empty batches,
	// whitespace-only text, mismatched id/text counts, an embedder that
	// returned the wrong count, a zero-norm or non-finite vector, or an
	// internal matrix-size assertion.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDimensionMismatch signals a vector whose length differs from
	// the database dimension. Use AsDimensionMismatch to recover the
	// expected/got pair.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDocumentNotFound signals that updateDocument targeted an
	// absent id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrLoadFailed signals a storage read failure, including the
	// batched candidate loader exhausting all batches.
	ErrLoadFailed = errors.New("load failed")
	// ErrStorage is an opaque wrapper for storage-provider-specific
	// failures that don't fit the other kinds.
	ErrStorage = errors.New("storage error")
)

// DimensionMismatchError carries the expected and actual vector
// lengths for a failed dimension check.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a DimensionMismatchError.
func NewDimensionMismatch(expected, got int) error {
	return &DimensionMismatchError{Expected: expected, Got: got}
}

// AsDimensionMismatch extracts the expected/got pair from err, if any.
func AsDimensionMismatch(err error) (*DimensionMismatchError, bool) {
	var dm *DimensionMismatchError
	if errors.As(err, &dm) {
		return dm, true
	}
	return nil, false
}

// DocumentNotFoundError names the missing document id.
type DocumentNotFoundError struct {
	ID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

func (e *DocumentNotFoundError) Unwrap() error { return ErrDocumentNotFound }

// NewDocumentNotFound creates a DocumentNotFoundError.
func NewDocumentNotFound(id string) error {
	return &DocumentNotFoundError{ID: id}
}

// Invalid wraps a reason as ErrInvalidInput.
func Invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}

// LoadFailed wraps a reason as ErrLoadFailed.
func LoadFailed(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrLoadFailed)
}

// Storage wraps an underlying storage-provider error as ErrStorage.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, err, ErrStorage)
}
