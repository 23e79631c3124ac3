package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedEvent marks a raw event that lacks a known type or a start
// time. Such events are dropped without touching the trace model.
var ErrMalformedEvent = errors.New("malformed event")

// Validate checks the fields every raw event must carry. Nested children are
// validated by the builder as it reaches them.
func Validate(e *RawEvent) error {
	if e == nil {
		return fmt.Errorf("%w: nil event", ErrMalformedEvent)
	}
	if e.Type == RecordUnknown {
		return fmt.Errorf("%w: missing or unknown type", ErrMalformedEvent)
	}
	if e.StartTime == nil {
		return fmt.Errorf("%w: %s without startTime", ErrMalformedEvent, e.Type)
	}
	if math.IsNaN(*e.StartTime) || math.IsInf(*e.StartTime, 0) {
		return fmt.Errorf("%w: %s with non-finite startTime", ErrMalformedEvent, e.Type)
	}
	if e.EndTime != nil && (math.IsNaN(*e.EndTime) || math.IsInf(*e.EndTime, 0)) {
		return fmt.Errorf("%w: %s with non-finite endTime", ErrMalformedEvent, e.Type)
	}
	return nil
}
