package cli

import (
	"errors"

	"semsearch/internal/domain"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitNoInput           = 2
	ExitEmptyExtraction   = 3
	ExitEmbedding         = 4
	ExitDimensionMismatch = 5
	ExitCorruptIndex      = 6
	ExitIO                = 7
	ExitIndexUnavailable  = 8
)

// loadError marks a failure to open the persisted index for querying.
type loadError struct{ err error }

func (e *loadError) Error() string { return "load index: " + e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var le *loadError
	switch {
	case errors.As(err, &le):
		return ExitIndexUnavailable
	case errors.Is(err, domain.ErrInputNotFound):
		return ExitNoInput
	case errors.Is(err, domain.ErrEmptyExtraction):
		return ExitEmptyExtraction
	case errors.Is(err, domain.ErrEmbedding):
		return ExitEmbedding
	case errors.Is(err, domain.ErrDimensionMismatch):
		return ExitDimensionMismatch
	case errors.Is(err, domain.ErrCorruptIndex):
		return ExitCorruptIndex
	case errors.Is(err, domain.ErrIO):
		return ExitIO
	}
	return ExitFailure
}
