package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestTimes(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []time.Time{
		start,
		start.Add(time.Hour),
		start.Add(2 * time.Hour),
	}, Times(start, 3, time.Hour))
	assert.Empty(t, Times(start, 0, time.Hour))
}

func TestSeriesComponents(t *testing.T) {
	tSeries := Times(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 5, 6*time.Hour)

	testData := map[string]struct {
		s        Series
		expected Series
	}{
		"constant": {
			s:        Const(3, 1.5),
			expected: Series{1.5, 1.5, 1.5},
		},
		"sum of constants": {
			s:        Const(3, 1).Add(Const(3, 2), Const(3, -0.5)),
			expected: Series{2.5, 2.5, 2.5},
		},
		"trend": {
			s:        Trend(tSeries, 1, 2),
			expected: Series{1, 1.5, 2, 2.5, 3},
		},
		"daily sine": {
			s:        Sine(tSeries, 2, 24*time.Hour, 1),
			expected: Series{0, 2, 0, -2, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			require.Len(t, td.s, len(td.expected))
			assert.InDeltaSlice(t, td.expected, td.s, 1e-9)
		})
	}
}

func TestNoise(t *testing.T) {
	a := Noise(5000, 2, 7)
	assert.Equal(t, a, Noise(5000, 2, 7))
	assert.NotEqual(t, a, Noise(5000, 2, 8))
	assert.InDelta(t, 0, stat.Mean(a, nil), 0.15)
	assert.InDelta(t, 2, stat.StdDev(a, nil), 0.15)
}

func TestSeriesFrame(t *testing.T) {
	tSeries := Times(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 4, 24*time.Hour)
	f, err := Const(4, 2).Frame("ts", "y", tSeries)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())

	y, err := f.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2}, y)

	_, err = Const(3, 2).Frame("ts", "y", tSeries)
	require.ErrorIs(t, err, ErrDatasetLenMismatch)
}
