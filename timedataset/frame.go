package timedataset

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Frame represents a time series table with a designated time column and any number of
// named value columns. Column order is preserved and is part of the frame's identity when
// comparing frames.
type Frame struct {
	TimeCol string
	T       []time.Time

	names []string
	cols  map[string][]float64
}

// NewFrame returns an empty frame over the provided time points. Values are added with
// AddColumn. The time slice is copied.
func NewFrame(timeCol string, t []time.Time) *Frame {
	tSeries := make([]time.Time, len(t))
	copy(tSeries, t)
	return &Frame{
		TimeCol: timeCol,
		T:       tSeries,
		cols:    make(map[string][]float64),
	}
}

// NewUnivariateFrame returns a frame with a single value column.
func NewUnivariateFrame(timeCol, valueCol string, t []time.Time, y []float64) (*Frame, error) {
	f := NewFrame(timeCol, t)
	if err := f.AddColumn(valueCol, y); err != nil {
		return nil, err
	}
	return f, nil
}

// AddColumn appends a copy of the values as a new column.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.T) {
		return fmt.Errorf(
			"column %s has length of %d, but time has a length of %d, %w",
			name, len(values), len(f.T), ErrDatasetLenMismatch,
		)
	}
	if _, exists := f.cols[name]; exists || name == f.TimeCol {
		return fmt.Errorf("column %s, %w", name, ErrColumnExists)
	}
	if f.cols == nil {
		f.cols = make(map[string][]float64)
	}
	v := make([]float64, len(values))
	copy(v, values)
	f.names = append(f.names, name)
	f.cols[name] = v
	return nil
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.T)
}

// Columns returns the value column names in order. The time column is not included.
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.names)
}

// HasColumn reports if the name refers to the time column or a value column.
func (f *Frame) HasColumn(name string) bool {
	if f == nil {
		return false
	}
	if name == f.TimeCol {
		return true
	}
	_, exists := f.cols[name]
	return exists
}

// Column returns the values stored under name. The returned slice is shared with the frame.
func (f *Frame) Column(name string) ([]float64, error) {
	if f == nil {
		return nil, NewDataShapeError("column", name, nil)
	}
	v, exists := f.cols[name]
	if !exists {
		return nil, NewDataShapeError("column", name, f.allColumns())
	}
	return v, nil
}

// Time returns the time points if name is the designated time column.
func (f *Frame) Time(name string) ([]time.Time, error) {
	if f == nil || name != f.TimeCol {
		var available []string
		if f != nil {
			available = f.allColumns()
		}
		return nil, NewDataShapeError("time", name, available)
	}
	return f.T, nil
}

func (f *Frame) allColumns() []string {
	all := make([]string, 0, len(f.names)+1)
	if f.TimeCol != "" {
		all = append(all, f.TimeCol)
	}
	return append(all, f.names...)
}

// Monotonic reports whether the time points are strictly increasing.
func (f *Frame) Monotonic() bool {
	if f == nil {
		return true
	}
	for i := 1; i < len(f.T); i++ {
		if !f.T[i].After(f.T[i-1]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	if f == nil {
		return nil
	}
	next := NewFrame(f.TimeCol, f.T)
	for _, name := range f.names {
		v := make([]float64, len(f.cols[name]))
		copy(v, f.cols[name])
		next.names = append(next.names, name)
		next.cols[name] = v
	}
	return next
}

// Select returns a copy of the frame only containing the named value columns in the
// order requested.
func (f *Frame) Select(names ...string) (*Frame, error) {
	next := NewFrame(f.TimeCol, f.T)
	for _, name := range names {
		v, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if err := next.AddColumn(name, v); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Slice returns a copy of rows [start, end).
func (f *Frame) Slice(start, end int) (*Frame, error) {
	if start < 0 || end > f.Len() || start > end {
		return nil, fmt.Errorf("[%d:%d] with length %d, %w", start, end, f.Len(), ErrSliceOutOfBounds)
	}
	next := NewFrame(f.TimeCol, f.T[start:end])
	for _, name := range f.names {
		if err := next.AddColumn(name, f.cols[name][start:end]); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// Equal compares two frames by value. Frames are equal when they share the time column
// name, the same time points, the same value columns in the same order and the same values.
// NaNs in the same location are considered equal. Frames of different shapes are simply
// not equal.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f == other {
		return true
	}
	if f.TimeCol != other.TimeCol || len(f.T) != len(other.T) || len(f.names) != len(other.names) {
		return false
	}
	for i := range f.T {
		if !f.T[i].Equal(other.T[i]) {
			return false
		}
	}
	for i, name := range f.names {
		if other.names[i] != name {
			return false
		}
		if !valuesEqual(f.cols[name], other.cols[name]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		return false
	}
	return true
}
