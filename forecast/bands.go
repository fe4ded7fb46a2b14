package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalQuantile returns the two sided standard normal quantile for the coverage, e.g.
// 1.96 for 0.95.
func NormalQuantile(coverage float64) float64 {
	if coverage >= 1 {
		return math.Inf(1)
	}
	return distuv.UnitNormal.Quantile((1 + coverage) / 2)
}

// SetNormalBands sets symmetric bands of fcst +/- z * sigma where z is the normal quantile
// of the coverage. A NaN sigma is treated as zero, and a zero sigma gives zero width bands
// even for full coverage.
func (r *Results) SetNormalBands(sigma, coverage float64) error {
	width := 0.0
	if !math.IsNaN(sigma) && sigma != 0 {
		width = NormalQuantile(coverage) * sigma
	}
	lower := make([]float64, len(r.Forecast))
	upper := make([]float64, len(r.Forecast))
	for i, f := range r.Forecast {
		lower[i] = f - width
		upper[i] = f + width
	}
	return r.SetBands(lower, upper)
}
