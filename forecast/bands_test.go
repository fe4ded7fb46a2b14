package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 1.959964, NormalQuantile(0.95), 1e-5)
	assert.InDelta(t, 1.644854, NormalQuantile(0.90), 1e-5)
	assert.InDelta(t, 0.0, NormalQuantile(0), 1e-9)
	assert.True(t, math.IsInf(NormalQuantile(1), 1))
}

func TestSetNormalBands(t *testing.T) {
	tSeries := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	res, err := NewResults(tSeries, []float64{10, 20})
	require.NoError(t, err)

	require.NoError(t, res.SetNormalBands(2, 0.95))
	assert.InDeltaSlice(t, []float64{10 - 3.919928, 20 - 3.919928}, res.Lower, 1e-5)
	assert.InDeltaSlice(t, []float64{10 + 3.919928, 20 + 3.919928}, res.Upper, 1e-5)

	require.NoError(t, res.SetNormalBands(math.NaN(), 0.95))
	assert.Equal(t, res.Forecast, res.Lower)
	assert.Equal(t, res.Forecast, res.Upper)

	require.NoError(t, res.SetNormalBands(2, 0))
	assert.Equal(t, res.Forecast, res.Lower)
	assert.Equal(t, res.Forecast, res.Upper)

	require.NoError(t, res.SetNormalBands(2, 1))
	assert.Equal(t, []float64{math.Inf(-1), math.Inf(-1)}, res.Lower)
	assert.Equal(t, []float64{math.Inf(1), math.Inf(1)}, res.Upper)

	require.NoError(t, res.SetNormalBands(0, 1))
	assert.Equal(t, res.Forecast, res.Lower)
	assert.Equal(t, res.Forecast, res.Upper)
}
