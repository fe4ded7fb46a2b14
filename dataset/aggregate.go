package dataset

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

type AggFunc string

const (
	AggSum    AggFunc = "sum"
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
)

// Aggregation resamples a frame to Freq, reducing each listed column with its function.
type Aggregation struct {
	Freq  Frequency
	Funcs map[string]AggFunc
}

// bucket returns the label of the bin holding t. Daily and monthly bins are labeled by
// their first day, weekly bins by the Sunday that closes them.
func (f Frequency) bucket(t time.Time) (time.Time, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch f {
	case FreqDaily:
		return day, nil
	case FreqWeekly:
		return day.AddDate(0, 0, (7-int(day.Weekday()))%7), nil
	case FreqMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%q, %w", string(f), ErrUnknownFrequency)
}

func (f Frequency) next(label time.Time) time.Time {
	switch f {
	case FreqWeekly:
		return label.AddDate(0, 0, 7)
	case FreqMonthly:
		return label.AddDate(0, 1, 0)
	}
	return label.AddDate(0, 0, 1)
}

// reduce applies the aggregation to the non-NaN values. An empty bin sums to zero and is
// NaN for every other function.
func (a AggFunc) reduce(vals []float64) float64 {
	if len(vals) == 0 {
		if a == AggSum {
			return 0
		}
		return math.NaN()
	}
	switch a {
	case AggSum:
		return floats.Sum(vals)
	case AggMean:
		return stat.Mean(vals, nil)
	case AggMedian:
		return metrics.Median(vals)
	case AggMin:
		return floats.Min(vals)
	case AggMax:
		return floats.Max(vals)
	}
	return math.NaN()
}

func (a AggFunc) valid() bool {
	switch a {
	case AggSum, AggMean, AggMedian, AggMin, AggMax:
		return true
	}
	return false
}

// Aggregate resamples frame to freq. Bins are laid out in the location of the first time
// point and every other time point is converted into it. Every bin between the first and
// last observation is emitted, and the output columns are the keys of aggFunc in sorted
// order.
func Aggregate(frame *timedataset.Frame, freq Frequency, aggFunc map[string]AggFunc) (*timedataset.Frame, error) {
	if frame == nil || frame.TimeCol == "" {
		return nil, timedataset.NewDataShapeError("aggregate", "time", nil)
	}
	names := slices.Sorted(maps.Keys(aggFunc))
	cols := make([][]float64, len(names))
	for i, name := range names {
		if !aggFunc[name].valid() {
			return nil, fmt.Errorf("%q for column %s, %w", string(aggFunc[name]), name, ErrUnknownAggFunc)
		}
		vals, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}
	if _, err := freq.bucket(time.Time{}); err != nil {
		return nil, err
	}
	if frame.Len() == 0 {
		out := timedataset.NewFrame(frame.TimeCol, nil)
		for _, name := range names {
			if err := out.AddColumn(name, nil); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	// bins follow the calendar of the first observation so mixed offsets land in one grid
	loc := frame.T[0].Location()
	first, _ := freq.bucket(slices.MinFunc(frame.T, time.Time.Compare).In(loc))
	last, _ := freq.bucket(slices.MaxFunc(frame.T, time.Time.Compare).In(loc))
	var labels []time.Time
	binIdx := make(map[int64]int)
	for label := first; !label.After(last); label = freq.next(label) {
		binIdx[label.Unix()] = len(labels)
		labels = append(labels, label)
	}

	bins := make([][][]float64, len(names))
	for j := range names {
		bins[j] = make([][]float64, len(labels))
	}
	for i, t := range frame.T {
		label, _ := freq.bucket(t.In(loc))
		b, exists := binIdx[label.Unix()]
		if !exists {
			return nil, fmt.Errorf("time %s falls in bin %s outside [%s, %s], %w",
				t.Format(time.RFC3339), label.Format(time.RFC3339),
				first.Format(time.RFC3339), last.Format(time.RFC3339), ErrBinOutOfRange)
		}
		for j, col := range cols {
			if !math.IsNaN(col[i]) {
				bins[j][b] = append(bins[j][b], col[i])
			}
		}
	}

	out := timedataset.NewFrame(frame.TimeCol, labels)
	for j, name := range names {
		vals := make([]float64, len(labels))
		for b := range labels {
			vals[b] = aggFunc[name].reduce(bins[j][b])
		}
		if err := out.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
