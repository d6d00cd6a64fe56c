// Package series reshapes flat device events into typed per-signal time series.
package series

import (
	"errors"
	"fmt"
	"time"
)

type Kind int

const (
	Integer Kind = iota
	Boolean
)

func (kind Kind) String() string {
	switch kind {
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	}
	return "Out of range"
}

// Control-type codes that are never charted.
var DefaultSkipCodes = []string{"switch_1", "countdown_1", "switch"}

const DefaultDisplayTimezone = "Australia/Perth"

var ErrMixedSeries = errors.New("series mixes boolean and non-boolean values")

// A value of a series that is neither a boolean string nor an integer.
type ParseError struct {
	Code  string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing value %q of %v as an integer: %v", e.Value, e.Code, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// One signal's samples. Exactly one of Ints or Bools is populated, depending on Kind.
// Index holds the sample times, aligned with the values.
type Series struct {
	Code  string
	Kind  Kind
	Ints  []int64
	Bools []bool
	Index []time.Time
}

func (s Series) Len() int {
	return len(s.Index)
}

// The i-th sample as a plottable number. Booleans are 1 or 0.
func (s Series) Float(i int) float64 {
	if s.Kind == Boolean {
		if s.Bools[i] {
			return 1
		}
		return 0
	}
	return float64(s.Ints[i])
}

// Series keyed by signal code.
type Set map[string]Series
