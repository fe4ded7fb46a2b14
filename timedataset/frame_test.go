package timedataset

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTimes(n int) []time.Time {
	return Times(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), n, 24*time.Hour)
}

func TestNewUnivariateFrame(t *testing.T) {
	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"length mismatch": {
			t:   testTimes(2),
			y:   []float64{1},
			err: ErrDatasetLenMismatch,
		},
		"value column named like time column": {
			t:   testTimes(1),
			y:   []float64{1},
			err: ErrColumnExists,
		},
		"valid": {
			t: testTimes(2),
			y: []float64{1, 2},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			valueCol := "y"
			if name == "value column named like time column" {
				valueCol = "ts"
			}
			f, err := NewUnivariateFrame("ts", valueCol, td.t, td.y)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(td.y), f.Len())
			assert.Equal(t, []string{"y"}, f.Columns())

			y, err := f.Column("y")
			require.NoError(t, err)
			assert.Equal(t, td.y, y)
		})
	}
}

func TestFrameColumn(t *testing.T) {
	f, err := NewUnivariateFrame("ts", "y", testTimes(2), []float64{1, 2})
	require.NoError(t, err)

	assert.True(t, f.HasColumn("ts"))
	assert.True(t, f.HasColumn("y"))
	assert.False(t, f.HasColumn("x"))

	_, err = f.Column("x")
	var shapeErr *DataShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "x", shapeErr.Column)
	assert.Equal(t, []string{"ts", "y"}, shapeErr.Available)

	tSeries, err := f.Time("ts")
	require.NoError(t, err)
	assert.Equal(t, testTimes(2), tSeries)

	_, err = f.Time("date")
	require.True(t, errors.As(err, &shapeErr))

	var nilFrame *Frame
	_, err = nilFrame.Column("y")
	assert.Error(t, err)
}

func TestFrameAddColumnDuplicate(t *testing.T) {
	f := NewFrame("ts", testTimes(2))
	require.NoError(t, f.AddColumn("y", []float64{1, 2}))
	err := f.AddColumn("y", []float64{3, 4})
	assert.ErrorIs(t, err, ErrColumnExists)
}

func TestFrameCopy(t *testing.T) {
	f, err := NewUnivariateFrame("ts", "y", testTimes(2), []float64{0, 1})
	require.NoError(t, err)

	next := f.Copy()
	require.True(t, f.Equal(next))

	y, err := f.Column("y")
	require.NoError(t, err)
	y[0] = 10
	assert.False(t, f.Equal(next))

	f.T[1] = time.Date(1970, 1, 4, 0, 0, 0, 0, time.UTC)
	nextT, err := next.Time("ts")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), nextT[1])
}

func TestFrameEqual(t *testing.T) {
	build := func(timeCol string, tSeries []time.Time, cols ...string) *Frame {
		f := NewFrame(timeCol, tSeries)
		for i, c := range cols {
			vals := make([]float64, len(tSeries))
			for j := range vals {
				vals[j] = float64(i*10 + j)
			}
			require.NoError(t, f.AddColumn(c, vals))
		}
		return f
	}

	base := build("ts", testTimes(3), "y", "x")

	withNaN := func() *Frame {
		f := build("ts", testTimes(3), "y", "x")
		y, _ := f.Column("y")
		y[1] = math.NaN()
		return f
	}

	oneCell := build("ts", testTimes(3), "y", "x")
	x, _ := oneCell.Column("x")
	x[2] = -1

	shifted := Times(time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), 3, 24*time.Hour)

	testData := map[string]struct {
		a, b     *Frame
		expected bool
	}{
		"same values different object": {base, build("ts", testTimes(3), "y", "x"), true},
		"same object":                  {base, base, true},
		"nan in same location":         {withNaN(), withNaN(), true},
		"nan against value":            {withNaN(), base, false},
		"one cell differs":             {base, oneCell, false},
		"column order differs":         {base, build("ts", testTimes(3), "x", "y"), false},
		"fewer rows":                   {base, build("ts", testTimes(2), "y", "x"), false},
		"fewer columns":                {base, build("ts", testTimes(3), "y"), false},
		"different time column name":   {base, build("date", testTimes(3), "y", "x"), false},
		"different time points":        {base, build("ts", shifted, "y", "x"), false},
		"nil against frame":            {nil, base, false},
		"nil against nil":              {nil, nil, true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, td.a.Equal(td.b))
		})
	}
}

func TestFrameSelectAndSlice(t *testing.T) {
	f := NewFrame("ts", testTimes(4))
	require.NoError(t, f.AddColumn("y", []float64{1, 2, 3, 4}))
	require.NoError(t, f.AddColumn("x", []float64{5, 6, 7, 8}))

	sel, err := f.Select("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, sel.Columns())

	_, err = f.Select("z")
	assert.Error(t, err)

	sl, err := f.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, sl.Len())
	y, err := sl.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, y)

	_, err = f.Slice(3, 5)
	assert.ErrorIs(t, err, ErrSliceOutOfBounds)
}

func TestFrameMonotonic(t *testing.T) {
	f := NewFrame("ts", testTimes(3))
	assert.True(t, f.Monotonic())

	tSeries := testTimes(3)
	tSeries[2] = tSeries[1]
	f = NewFrame("ts", tSeries)
	assert.False(t, f.Monotonic())
}
