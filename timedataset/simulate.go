package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Series is a synthetic set of observations built up from simple components.
type Series []float64

// Add sums each of the series into s in place.
func (s Series) Add(others ...Series) Series {
	for _, o := range others {
		floats.Add(s, o)
	}
	return s
}

// Times returns n evenly spaced points beginning at start.
func Times(start time.Time, n int, step time.Duration) []time.Time {
	t := make([]time.Time, n)
	for i := range t {
		t[i] = start.Add(time.Duration(i) * step)
	}
	return t
}

// Const returns n copies of val.
func Const(n int, val float64) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = val
	}
	return s
}

// Trend returns a line through bias at t[0] rising by slopePerDay every 24 hours.
func Trend(t []time.Time, bias, slopePerDay float64) Series {
	s := make(Series, len(t))
	for i, tPnt := range t {
		s[i] = bias + slopePerDay*tPnt.Sub(t[0]).Hours()/24.0
	}
	return s
}

// Sine returns the order-th harmonic of a wave with the given period, in phase with
// the unix epoch.
func Sine(t []time.Time, amp float64, period time.Duration, order int) Series {
	s := make(Series, len(t))
	for i, tPnt := range t {
		cycles := float64(order) * float64(tPnt.UnixNano()) / float64(period)
		s[i] = amp * math.Sin(2.0*math.Pi*cycles)
	}
	return s
}

// Noise returns n gaussian draws with standard deviation std from a generator seeded
// with seed.
func Noise(n int, std float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed))
	s := make(Series, n)
	for i := range s {
		s[i] = std * rng.NormFloat64()
	}
	return s
}

// Frame wraps the series into a univariate frame over t.
func (s Series) Frame(timeCol, valueCol string, t []time.Time) (*Frame, error) {
	return NewUnivariateFrame(timeCol, valueCol, t, s)
}
