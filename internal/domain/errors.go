package domain

import "errors"

var (
	// ErrValidation marks a caller-supplied value that violates a precondition
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that clashes with existing data
	ErrConflict = errors.New("conflict")
	// ErrStorage marks an unclassified failure of the storage engine
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a driver error with the operation that produced it.
// errors.Is(err, ErrStorage) reports true for it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError returns nil when err is nil
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
