// Package outlier flags residuals far outside their inner percentile range using Tukey fences.
package outlier

import (
	"math"
	"slices"
)

// Options configures outlier removal. Passes is the number of refits after removing the
// detected outliers, 0 disables removal.
type Options struct {
	Passes          int
	LowerPercentile float64
	UpperPercentile float64
	TukeyFactor     float64
}

// NewDefaultOptions flags residuals beyond one inner decile range of the 10th to 90th
// percentiles over three passes.
func NewDefaultOptions() Options {
	return Options{
		Passes:          3,
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     1.0,
	}
}

// Detect returns the indices of the values of y strictly outside the range between the
// lower and upper percentile, widened on both ends by TukeyFactor times its width. NaNs
// are ignored.
func (o Options) Detect(y []float64) []int {
	lowerPerc := math.Max(o.LowerPercentile, 0.0)
	upperPerc := math.Min(o.UpperPercentile, 1.0)
	factor := math.Max(o.TukeyFactor, 0.0)

	sorted := slices.DeleteFunc(slices.Clone(y), math.IsNaN)
	if len(sorted) == 0 {
		return nil
	}
	slices.Sort(sorted)

	n := float64(len(sorted))
	lo := sorted[min(int(math.Floor(n*lowerPerc)), len(sorted)-1)]
	hi := sorted[min(int(math.Ceil(n*upperPerc)), len(sorted)-1)]
	width := hi - lo
	lo -= width * factor
	hi += width * factor

	var idxs []int
	for i, v := range y {
		if v < lo || v > hi {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
