package nullmodel

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func testFrame(t *testing.T, y []float64) *timedataset.Frame {
	tSeries := timedataset.Times(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), len(y), 24*time.Hour)
	f, err := timedataset.NewUnivariateFrame("ts", "y", tSeries, y)
	require.NoError(t, err)
	return f
}

func TestParseParams(t *testing.T) {
	testData := map[string]struct {
		in       map[string]any
		expected Params
		errParam string
	}{
		"nil map defaults to mean": {
			in:       nil,
			expected: Params{Strategy: StrategyMean},
		},
		"quantile with int": {
			in:       map[string]any{"strategy": "quantile", "quantile": 1},
			expected: Params{Strategy: StrategyQuantile, Quantile: ptr(1)},
		},
		"constant": {
			in:       map[string]any{"strategy": "constant", "constant": 2.5},
			expected: Params{Strategy: StrategyConstant, Constant: ptr(2.5)},
		},
		"explicit nil constant": {
			in:       map[string]any{"strategy": "median", "constant": nil},
			expected: Params{Strategy: StrategyMedian},
		},
		"unrecognized key": {
			in:       map[string]any{"bogus": 1},
			errParam: "bogus",
		},
		"strategy not a string": {
			in:       map[string]any{"strategy": 1},
			errParam: ParamStrategy,
		},
		"quantile not numeric": {
			in:       map[string]any{"quantile": "high"},
			errParam: ParamQuantile,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			p, err := ParseParams(td.in)
			if td.errParam != "" {
				var cfgErr *ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, td.errParam, cfgErr.Param)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, p)
			assert.Equal(t, p, mustParse(t, p.Map()))
		})
	}
}

func mustParse(t *testing.T, m map[string]any) Params {
	p, err := ParseParams(m)
	require.NoError(t, err)
	return p
}

func TestParamsValidate(t *testing.T) {
	testData := map[string]struct {
		params   Params
		errParam string
	}{
		"mean":                 {Params{Strategy: StrategyMean}, ""},
		"unknown strategy":     {Params{Strategy: "mode"}, ParamStrategy},
		"constant missing":     {Params{Strategy: StrategyConstant}, ParamConstant},
		"quantile missing":     {Params{Strategy: StrategyQuantile}, ParamQuantile},
		"quantile above range": {Params{Strategy: StrategyQuantile, Quantile: ptr(1.5)}, ParamQuantile},
		"quantile valid":       {Params{Strategy: StrategyQuantile, Quantile: ptr(0.9)}, ""},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := td.params.Validate()
			if td.errParam == "" {
				require.NoError(t, err)
				return
			}
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, td.errParam, cfgErr.Param)
		})
	}
}

func TestNullModelFit(t *testing.T) {
	y := []float64{1, 2, math.NaN(), 3, 10}

	testData := map[string]struct {
		params   Params
		weights  []float64
		expected float64
	}{
		"mean":              {Params{Strategy: StrategyMean}, nil, 4.0},
		"weighted mean":     {Params{Strategy: StrategyMean}, []float64{1, 1, 5, 1, 0}, 2.0},
		"median":            {Params{Strategy: StrategyMedian}, nil, 2.5},
		"weighted median":   {Params{Strategy: StrategyMedian}, []float64{0, 0, 1, 1, 5}, 10.0},
		"quantile":          {Params{Strategy: StrategyQuantile, Quantile: ptr(0.0)}, nil, 1.0},
		"upper quantile":    {Params{Strategy: StrategyQuantile, Quantile: ptr(1.0)}, nil, 10.0},
		"interpolated":      {Params{Strategy: StrategyQuantile, Quantile: ptr(0.25)}, nil, 1.75},
		"constant":          {Params{Strategy: StrategyConstant, Constant: ptr(-1)}, nil, -1.0},
		"constant weighted": {Params{Strategy: StrategyConstant, Constant: ptr(7)}, []float64{1, 1, 1, 1, 1}, 7.0},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			n, err := New(td.params, nil)
			require.NoError(t, err)
			require.NoError(t, n.Fit(testFrame(t, y), "ts", "y", td.weights))
			assert.True(t, n.IsTrained())
			assert.InDelta(t, td.expected, n.Level(), 1e-9)
		})
	}
}

func TestNullModelFitErrors(t *testing.T) {
	n, err := New(NewDefaultParams(), nil)
	require.NoError(t, err)

	f := testFrame(t, []float64{1, 2})

	var shapeErr *timedataset.DataShapeError
	err = n.Fit(f, "ts", "value", nil)
	assert.True(t, errors.As(err, &shapeErr))

	err = n.Fit(f, "date", "y", nil)
	assert.True(t, errors.As(err, &shapeErr))

	err = n.Fit(f, "ts", "y", []float64{1})
	assert.ErrorIs(t, err, ErrSampleWeightMismatch)

	err = n.Fit(f, "ts", "y", []float64{1, -1})
	assert.ErrorIs(t, err, ErrInvalidSampleWeight)

	for _, strategy := range []string{StrategyMean, StrategyMedian, StrategyQuantile} {
		params := NewDefaultParams()
		params.Strategy = strategy
		if strategy == StrategyQuantile {
			q := 0.25
			params.Quantile = &q
		}
		zn, err := New(params, nil)
		require.NoError(t, err)
		err = zn.Fit(testFrame(t, []float64{1, 2, 3}), "ts", "y", []float64{0, 0, 0})
		assert.ErrorIs(t, err, ErrZeroSampleWeight, strategy)
		err = zn.Fit(testFrame(t, []float64{1, math.NaN()}), "ts", "y", []float64{0, 5})
		assert.ErrorIs(t, err, ErrZeroSampleWeight, strategy)
		assert.False(t, zn.IsTrained(), strategy)
	}

	err = n.Fit(testFrame(t, []float64{math.NaN()}), "ts", "y", nil)
	assert.ErrorIs(t, err, ErrInsufficientTraining)
	assert.False(t, n.IsTrained())
}

func TestNullModelPredictScore(t *testing.T) {
	n, err := NewFromMap(map[string]any{"strategy": "mean"}, metrics.MAE)
	require.NoError(t, err)

	f := testFrame(t, []float64{1, 2, 3})
	_, err = n.Predict(f)
	assert.ErrorIs(t, err, ErrUntrainedModel)

	require.NoError(t, n.Fit(f, "ts", "y", nil))

	res, err := n.Predict(f)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, res.Forecast)
	assert.Equal(t, f.T, res.T)
	assert.False(t, res.HasBands())

	score, err := n.Score(f, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)

	_, err = NewFromMap(map[string]any{"bogus": 1}, nil)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
