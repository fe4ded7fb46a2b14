// Package nullmodel implements the baseline forecaster used to normalize the error of a
// forecast into a relative skill score. The baseline predicts a single level for every
// time point, computed from the training values with a mean, median, quantile or constant
// strategy.
package nullmodel

import (
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUntrainedModel       = errors.New("null model has not been trained yet")
	ErrSampleWeightMismatch = errors.New("sample weight has a different length than observations")
	ErrInvalidSampleWeight  = errors.New("sample weight must be finite and non-negative")
	ErrInsufficientTraining = errors.New("no non-NaN training values")
	ErrZeroSampleWeight     = errors.New("sample weights sum to zero")
)

// NullModel predicts a constant level learned from the training data.
type NullModel struct {
	params    Params
	scoreFunc metrics.ScoreFunc

	timeCol  string
	valueCol string
	level    float64
	trained  bool
}

// New validates the parameters and returns an untrained baseline. The score function is
// used by Score and defaults to mean squared error.
func New(params Params, scoreFunc metrics.ScoreFunc) (*NullModel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if scoreFunc == nil {
		scoreFunc = metrics.MSE
	}
	return &NullModel{
		params:    params,
		scoreFunc: scoreFunc,
	}, nil
}

// NewFromMap parses a loosely typed parameter mapping and returns an untrained baseline.
func NewFromMap(m map[string]any, scoreFunc metrics.ScoreFunc) (*NullModel, error) {
	params, err := ParseParams(m)
	if err != nil {
		return nil, err
	}
	return New(params, scoreFunc)
}

// Fit learns the baseline level from the value column. NaN values are ignored along with
// their sample weights, and the remaining weights must not sum to zero.
func (n *NullModel) Fit(X *timedataset.Frame, timeCol, valueCol string, sampleWeight []float64) error {
	if _, err := X.Time(timeCol); err != nil {
		return err
	}
	y, err := X.Column(valueCol)
	if err != nil {
		return err
	}
	if sampleWeight != nil && len(sampleWeight) != len(y) {
		return fmt.Errorf("sample weight has length of %d, but values has a length of %d, %w",
			len(sampleWeight), len(y), ErrSampleWeightMismatch)
	}

	values := make([]float64, 0, len(y))
	var weights []float64
	if sampleWeight != nil {
		weights = make([]float64, 0, len(y))
	}
	for i, v := range y {
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
		if sampleWeight != nil {
			w := sampleWeight[i]
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("at index %d got %f, %w", i, w, ErrInvalidSampleWeight)
			}
			weights = append(weights, w)
		}
	}

	level, err := n.computeLevel(values, weights)
	if err != nil {
		return err
	}

	n.timeCol = timeCol
	n.valueCol = valueCol
	n.level = level
	n.trained = true
	return nil
}

func (n *NullModel) computeLevel(values, weights []float64) (float64, error) {
	if n.params.Strategy == StrategyConstant {
		return *n.params.Constant, nil
	}
	if len(values) == 0 {
		return 0, ErrInsufficientTraining
	}
	if weights != nil && floats.Sum(weights) == 0 {
		return 0, fmt.Errorf("weights of the %d non-NaN values sum to zero, %w", len(values), ErrZeroSampleWeight)
	}

	switch n.params.Strategy {
	case StrategyMean:
		return stat.Mean(values, weights), nil
	case StrategyMedian:
		return quantile(0.5, values, weights), nil
	case StrategyQuantile:
		return quantile(*n.params.Quantile, values, weights), nil
	}
	return 0, NewConfigurationError(ParamStrategy, "unknown strategy", n.params.Strategy)
}

// quantile computes the p-quantile using linear interpolation between closest ranks when
// unweighted, and the weighted empirical quantile otherwise.
func quantile(p float64, values, weights []float64) float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })

	sorted := make([]float64, len(values))
	for i, j := range idx {
		sorted[i] = values[j]
	}

	if weights == nil {
		if len(sorted) == 1 {
			return sorted[0]
		}
		h := p * float64(len(sorted)-1)
		lo := int(math.Floor(h))
		if lo >= len(sorted)-1 {
			return sorted[len(sorted)-1]
		}
		return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
	}

	sortedWeights := make([]float64, len(weights))
	for i, j := range idx {
		sortedWeights[i] = weights[j]
	}
	return stat.Quantile(p, stat.Empirical, sorted, sortedWeights)
}

// Predict forecasts the learned level for every time point in X. The baseline never
// produces prediction bands.
func (n *NullModel) Predict(X *timedataset.Frame) (*forecast.Results, error) {
	if !n.trained {
		return nil, ErrUntrainedModel
	}
	t, err := X.Time(n.timeCol)
	if err != nil {
		return nil, err
	}
	fcst := make([]float64, len(t))
	for i := range fcst {
		fcst[i] = n.level
	}
	return forecast.NewResults(t, fcst)
}

// Score returns the baseline loss against the actual values y under the configured score
// function.
func (n *NullModel) Score(X *timedataset.Frame, y []float64) (float64, error) {
	res, err := n.Predict(X)
	if err != nil {
		return 0, err
	}
	return n.scoreFunc(y, res.Forecast)
}

// Level returns the learned constant forecast.
func (n *NullModel) Level() float64 {
	return n.level
}

// Params returns the baseline configuration.
func (n *NullModel) Params() Params {
	return n.params
}

// IsTrained reports whether Fit has completed.
func (n *NullModel) IsTrained() bool {
	return n.trained
}
