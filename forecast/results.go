// Package forecast contains the prediction result produced by every forecast estimator along
// with the canonical column names shared by frames and results.
package forecast

import (
	"fmt"
	"io"
	"math"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

const (
	TimeCol           = "ts"
	ValueCol          = "y"
	PredictedCol      = "forecast"
	PredictedLowerCol = "forecast_lower"
	PredictedUpperCol = "forecast_upper"
)

var (
	ErrResultsLenMismatch = errors.New("result column has a different length than time")
	ErrUnknownColumn      = errors.New("unknown result column")
	ErrReservedColumn     = errors.New("extra column uses a reserved name")
)

// Results holds the forecast for a set of time points. Lower and Upper are only populated
// when the estimator was configured with a coverage.
type Results struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Lower    []float64   `json:"lower,omitempty"`
	Upper    []float64   `json:"upper,omitempty"`
	Extra    []Column    `json:"extra,omitempty"`
}

// Column is a model specific named output column.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// NewResults returns a result over t with the provided point forecast. Both slices are copied.
func NewResults(t []time.Time, fcst []float64) (*Results, error) {
	if len(t) != len(fcst) {
		return nil, fmt.Errorf("forecast has length of %d, but time has a length of %d, %w",
			len(fcst), len(t), ErrResultsLenMismatch)
	}
	return &Results{
		T:        slices.Clone(t),
		Forecast: slices.Clone(fcst),
	}, nil
}

// SetBands sets the lower and upper prediction band.
func (r *Results) SetBands(lower, upper []float64) error {
	if len(lower) != len(r.T) || len(upper) != len(r.T) {
		return fmt.Errorf("bands have length of %d and %d, but time has a length of %d, %w",
			len(lower), len(upper), len(r.T), ErrResultsLenMismatch)
	}
	r.Lower = slices.Clone(lower)
	r.Upper = slices.Clone(upper)
	return nil
}

// ClearBands drops the prediction band columns.
func (r *Results) ClearBands() {
	r.Lower = nil
	r.Upper = nil
}

// AddColumn appends a model specific column.
func (r *Results) AddColumn(name string, values []float64) error {
	if len(values) != len(r.T) {
		return fmt.Errorf("column %s has length of %d, but time has a length of %d, %w",
			name, len(values), len(r.T), ErrResultsLenMismatch)
	}
	switch name {
	case TimeCol, PredictedCol, PredictedLowerCol, PredictedUpperCol:
		return fmt.Errorf("%s, %w", name, ErrReservedColumn)
	}
	for _, c := range r.Extra {
		if c.Name == name {
			return fmt.Errorf("%s, %w", name, timedataset.ErrColumnExists)
		}
	}
	r.Extra = append(r.Extra, Column{Name: name, Values: slices.Clone(values)})
	return nil
}

// Len returns the number of forecasted time points.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.T)
}

// HasBands reports whether both prediction band columns are present.
func (r *Results) HasBands() bool {
	return r != nil && r.Lower != nil && r.Upper != nil
}

// Columns returns the value columns of the result in order, excluding time.
func (r *Results) Columns() []string {
	if r == nil {
		return nil
	}
	cols := []string{PredictedCol}
	if r.HasBands() {
		cols = append(cols, PredictedLowerCol, PredictedUpperCol)
	}
	for _, c := range r.Extra {
		cols = append(cols, c.Name)
	}
	return cols
}

// Column returns the values of a result column by name.
func (r *Results) Column(name string) ([]float64, error) {
	if r == nil {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	switch name {
	case PredictedCol:
		return r.Forecast, nil
	case PredictedLowerCol:
		if r.Lower != nil {
			return r.Lower, nil
		}
	case PredictedUpperCol:
		if r.Upper != nil {
			return r.Upper, nil
		}
	default:
		for _, c := range r.Extra {
			if c.Name == name {
				return c.Values, nil
			}
		}
	}
	return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
}

// Frame converts the result into a frame keyed by the provided time column.
func (r *Results) Frame(timeCol string) (*timedataset.Frame, error) {
	f := timedataset.NewFrame(timeCol, r.T)
	for _, name := range r.Columns() {
		vals, err := r.Column(name)
		if err != nil {
			return nil, err
		}
		if err := f.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Copy returns a deep copy of the result.
func (r *Results) Copy() *Results {
	if r == nil {
		return nil
	}
	next := &Results{
		T:        slices.Clone(r.T),
		Forecast: slices.Clone(r.Forecast),
		Lower:    slices.Clone(r.Lower),
		Upper:    slices.Clone(r.Upper),
	}
	for _, c := range r.Extra {
		next.Extra = append(next.Extra, Column{Name: c.Name, Values: slices.Clone(c.Values)})
	}
	return next
}

// Equal compares two results by value treating NaNs in the same location as equal.
func (r *Results) Equal(other *Results) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.T) != len(other.T) || len(r.Extra) != len(other.Extra) {
		return false
	}
	for i := range r.T {
		if !r.T[i].Equal(other.T[i]) {
			return false
		}
	}
	if !nanEqual(r.Forecast, other.Forecast) ||
		!nanEqual(r.Lower, other.Lower) ||
		!nanEqual(r.Upper, other.Upper) {
		return false
	}
	if (r.Lower == nil) != (other.Lower == nil) || (r.Upper == nil) != (other.Upper == nil) {
		return false
	}
	for i, c := range r.Extra {
		if other.Extra[i].Name != c.Name || !nanEqual(c.Values, other.Extra[i].Values) {
			return false
		}
	}
	return true
}

func nanEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

// MarshalIndent serializes the result to indented JSON.
func (r *Results) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteJSON writes the JSON encoding of the result to w.
func (r *Results) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// TablePrint renders the result as an aligned table, one row per time point.
func (r *Results) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sResults:\n", prefix, IndentExpand(indent, 0)); err != nil {
		return err
	}
	cols := r.Columns()
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	header := TimeCol + "\t"
	for _, c := range cols {
		header += c + "\t"
	}
	if _, err := fmt.Fprintf(tbl, "%s%s%s\n", prefix, IndentExpand(indent, 1), header); err != nil {
		return err
	}

	colVals := make([][]float64, 0, len(cols))
	for _, c := range cols {
		vals, err := r.Column(c)
		if err != nil {
			return err
		}
		colVals = append(colVals, vals)
	}

	for i, t := range r.T {
		row := t.Format(time.RFC3339) + "\t"
		for _, vals := range colVals {
			row += fmt.Sprintf("%.3f\t", vals[i])
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\n", prefix, IndentExpand(indent, 1), row); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// IndentExpand repeats indent growth times.
func IndentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}
