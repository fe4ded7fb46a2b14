// Package changepoint generates trend shift features. A changepoint contributes a bias
// step starting at its time and, with growth enabled, a ramp that reaches 1 at the end of
// the training window.
package changepoint

import (
	"fmt"
	"time"
)

type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func New(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

func (c Changepoint) label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("chpt_%d", i)
}

// Auto evenly places n changepoints strictly inside the window spanned by t.
func Auto(t []time.Time, n int) []Changepoint {
	if n <= 0 || len(t) < 2 {
		return nil
	}
	var minTime, maxTime time.Time
	for _, tPnt := range t {
		if minTime.IsZero() || tPnt.Before(minTime) {
			minTime = tPnt
		}
		if maxTime.IsZero() || tPnt.After(maxTime) {
			maxTime = tPnt
		}
	}

	step := maxTime.Sub(minTime) / time.Duration(n+1)
	if step <= 0 {
		return nil
	}
	chpts := make([]Changepoint, 0, n)
	for i := 1; i <= n; i++ {
		chpts = append(chpts, New(fmt.Sprintf("auto_%d", i-1), minTime.Add(step*time.Duration(i))))
	}
	return chpts
}

// Active returns the changepoints strictly inside (start, trainEnd). Changepoints at or
// before the start of training would duplicate the intercept and trend, and later ones
// could not have been fit.
func Active(chpts []Changepoint, start, trainEnd time.Time) []Changepoint {
	active := make([]Changepoint, 0, len(chpts))
	for _, c := range chpts {
		if c.T.After(start) && c.T.Before(trainEnd) {
			active = append(active, c)
		}
	}
	return active
}

// Features returns the named bias and, if growth is set, slope columns of each changepoint
// evaluated at t. The slope is scaled by the span between the changepoint and trainEnd.
func Features(chpts []Changepoint, t []time.Time, trainEnd time.Time, growth bool) ([]string, [][]float64) {
	var (
		names []string
		cols  [][]float64
	)
	for i, c := range chpts {
		bias := make([]float64, len(t))
		var slope []float64
		if growth {
			slope = make([]float64, len(t))
		}
		delta := trainEnd.Sub(c.T).Seconds()
		for j, tPnt := range t {
			if tPnt.Before(c.T) {
				continue
			}
			bias[j] = 1.0
			if growth {
				slope[j] = tPnt.Sub(c.T).Seconds() / delta
			}
		}

		label := c.label(i)
		names = append(names, label+"_bias")
		cols = append(cols, bias)
		if growth {
			names = append(names, label+"_slope")
			cols = append(cols, slope)
		}
	}
	return names, cols
}
