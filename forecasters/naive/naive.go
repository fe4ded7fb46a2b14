// Package naive implements a forecaster that predicts a single level learned from the
// training values, with prediction bands derived from the spread of the training values
// around that level.
package naive

import (
	"fmt"
	"maps"
	"math"

	"github.com/aouyang1/go-tsestimator/estimator"
	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"gonum.org/v1/gonum/stat"
)

const (
	Name = "naive"

	// ResidualStdCol is the extra result column holding the training residual standard deviation.
	ResidualStdCol = "residual_std"
)

// Naive forecasts a constant level computed with one of the null model strategies.
type Naive struct {
	params nullmodel.Params

	level       float64
	residualStd float64
	trained     bool
}

// New returns an untrained naive forecaster.
func New(params nullmodel.Params) (*Naive, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Naive{params: params}, nil
}

// NewFromMap returns an untrained naive forecaster from a loosely typed parameter mapping
// using the same keys as the null model.
func NewFromMap(m map[string]any) (*Naive, error) {
	params, err := nullmodel.ParseParams(m)
	if err != nil {
		return nil, err
	}
	return New(params)
}

// NewEstimator wraps a naive forecaster with the estimator lifecycle.
func NewEstimator(params nullmodel.Params, opts ...estimator.Option) (*estimator.Estimator, error) {
	n, err := New(params)
	if err != nil {
		return nil, err
	}
	return estimator.New(n, opts...), nil
}

func (n *Naive) Name() string {
	return Name
}

func (n *Naive) FitModel(X *timedataset.Frame, cols estimator.Columns, params estimator.FitParams) error {
	n.trained = false
	if X.Len() == 0 {
		return timedataset.ErrNoTrainingData
	}

	nm, err := nullmodel.New(n.params, nil)
	if err != nil {
		return err
	}
	if err := nm.Fit(X, cols.Time, cols.Value, params.SampleWeight); err != nil {
		return fmt.Errorf("unable to compute level, %w", err)
	}

	y, err := X.Column(cols.Value)
	if err != nil {
		return err
	}
	residuals := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			residuals = append(residuals, v-nm.Level())
		}
	}

	n.level = nm.Level()
	n.residualStd = 0
	if len(residuals) > 1 {
		n.residualStd = math.Sqrt(stat.Mean(square(residuals), nil))
	}
	n.trained = true
	return nil
}

func square(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v * v
	}
	return out
}

func (n *Naive) PredictModel(X *timedataset.Frame, cols estimator.Columns, coverage *float64) (*forecast.Results, error) {
	if !n.trained {
		return nil, nullmodel.ErrUntrainedModel
	}
	t, err := X.Time(cols.Time)
	if err != nil {
		return nil, err
	}

	fcst := make([]float64, len(t))
	std := make([]float64, len(t))
	for i := range fcst {
		fcst[i] = n.level
		std[i] = n.residualStd
	}
	res, err := forecast.NewResults(t, fcst)
	if err != nil {
		return nil, err
	}
	if coverage != nil {
		if err := res.SetNormalBands(n.residualStd, *coverage); err != nil {
			return nil, err
		}
	}
	if err := res.AddColumn(ResidualStdCol, std); err != nil {
		return nil, err
	}
	return res, nil
}

func (n *Naive) Params() map[string]any {
	return n.params.Map()
}

// SetParams merges the parameters into the current configuration and discards the fit.
func (n *Naive) SetParams(params map[string]any) error {
	merged := n.params.Map()
	maps.Copy(merged, params)
	next, err := nullmodel.ParseParams(merged)
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	n.params = next
	n.trained = false
	return nil
}

func (n *Naive) Clone() estimator.Model {
	return &Naive{params: n.params}
}

func (n *Naive) Summary() map[string]any {
	return map[string]any{
		"level":        n.level,
		ResidualStdCol: n.residualStd,
	}
}

// Level returns the fitted constant forecast.
func (n *Naive) Level() float64 {
	return n.level
}

// ResidualStd returns the root mean squared deviation of the training values from the level.
func (n *Naive) ResidualStd() float64 {
	return n.residualStd
}
