package timedataset

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrColumnExists       = errors.New("column already exists in frame")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from less than 2 time points")
	ErrSliceOutOfBounds   = errors.New("slice bounds out of range")
)

// DataShapeError is returned when a frame does not carry a column an operation
// requires, e.g. the designated time or value column.
type DataShapeError struct {
	Op        string
	Column    string
	Available []string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s: column %q not found in frame, available columns are [%s]",
		e.Op, e.Column, strings.Join(e.Available, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DataShapeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Strs("available", e.Available).
		Str("type", "DataShapeError")
}

// NewDataShapeError creates a DataShapeError with a stack trace attached.
func NewDataShapeError(op, column string, available []string) error {
	return errors.WithStack(&DataShapeError{Op: op, Column: column, Available: available})
}
