package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is matched by every *InvalidRangeError.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidBase is matched by every *InvalidBaseError.
	ErrInvalidBase = errors.New("invalid base")

	// ErrOverflow is returned when a value would not fit in a uint64.
	ErrOverflow = errors.New("integer overflow")
)

// InvalidRangeError reports a scan range whose start is not below its end.
type InvalidRangeError struct {
	Start uint64
	End   uint64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range [%d, %d): start must be below end", e.Start, e.End)
}

// Is lets callers test with errors.Is(err, ErrInvalidRange).
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// InvalidBaseError reports a numeral base below 2.
type InvalidBaseError struct {
	Base uint64
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %d: base must be at least 2", e.Base)
}

func (e *InvalidBaseError) Is(target error) bool {
	return target == ErrInvalidBase
}

// ValidateBase returns an *InvalidBaseError for bases that cannot carry digits.
func ValidateBase(base uint64) error {
	if base < 2 {
		return &InvalidBaseError{Base: base}
	}
	return nil
}
