package codes

import (
	"errors"

	"github.com/Norgate-AV/wclang/internal/cache"
)

// Exit statuses used by wclang itself. A compiler's own exit status is
// passed through unchanged.
const (
	Success          = 0
	Failure          = 1
	Usage            = 2
	OpenFailure      = 3
	WriteFailure     = 4
	CorruptRecord    = 5
	IdentityMismatch = 6
)

// ErrorCodes maps wclang exit codes to their descriptions
var ErrorCodes = map[int]string{
	Success:          "Success",
	Failure:          "General failure",
	Usage:            "Invalid invocation",
	OpenFailure:      "Cannot open cache file",
	WriteFailure:     "Cannot write cache file",
	CorruptRecord:    "Corrupt cache file",
	IdentityMismatch: "C and C++ cache files mixed",
}

// UsageError marks errors caused by how wclang was invoked
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// FromError returns the exit code for err
func FromError(err error) int {
	var usage *UsageError

	switch {
	case err == nil:
		return Success
	case errors.As(err, &usage):
		return Usage
	case errors.Is(err, cache.ErrOpen):
		return OpenFailure
	case errors.Is(err, cache.ErrWrite):
		return WriteFailure
	case errors.Is(err, cache.ErrCorrupt):
		return CorruptRecord
	case errors.Is(err, cache.ErrIdentityMismatch):
		return IdentityMismatch
	default:
		return Failure
	}
}

// IsSuccess returns true if the exit code indicates success
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
