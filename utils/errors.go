package utils

import (
	"fmt"

	"github.com/ugparu/kahawai"
)

// InvalidArgumentError represents malformed input rejected before any work is done.
type InvalidArgumentError struct {
	Field  string
	Value  string
	Reason string
}

// Error returns the error message for InvalidArgumentError.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// LogicError represents a caller accounting bug such as a release without a matching acquire.
type LogicError struct {
	Op     string
	Reason string
}

// Error returns the error message for LogicError.
func (e *LogicError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// UnsupportedRateError represents a well-formed frame rate outside of every supported band.
type UnsupportedRateError struct {
	Rate       kahawai.Rational
	Hundredths int64
}

// Error returns the error message for UnsupportedRateError.
func (e *UnsupportedRateError) Error() string {
	return fmt.Sprintf("unsupported frame rate %v (%d.%02d fps)", e.Rate, e.Hundredths/100, abs(e.Hundredths%100))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
