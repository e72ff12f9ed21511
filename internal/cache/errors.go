package cache

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package wraps exactly one of them.
var (
	// ErrOpen is returned when a cache file cannot be created or opened
	ErrOpen = errors.New("cannot open cache file")

	// ErrWrite is returned when a cache file cannot be fully written
	ErrWrite = errors.New("failed to write cache file")

	// ErrCorrupt is returned when a cache file does not decode to a valid record
	ErrCorrupt = errors.New("failed to read cache file")

	// ErrIdentityMismatch is returned when a C cache is loaded by a C++ run or vice versa
	ErrIdentityMismatch = errors.New("invalid cache file (CC and CXX cache mixed?)")
)

var errEmptyArgs = errors.New("empty argument vector")

func checkLength(field string, n int) error {
	if n > MaxFieldLength {
		return fmt.Errorf("%s length %d exceeds maximum of %d", field, n, MaxFieldLength)
	}

	return nil
}
