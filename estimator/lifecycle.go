package estimator

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-tsestimator/forecast"
	tslog "github.com/aouyang1/go-tsestimator/log"
	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
)

const paramCoverage = "coverage"

// Fit trains the estimator on X. Any previous fit along with the prediction cache is
// discarded first. If null model parameters are configured the null model is built and
// fit before the model hooks run, so a bad null model configuration fails without any
// model fitting taking place. On failure the estimator is left unfit.
func (e *Estimator) Fit(X *timedataset.Frame, params FitParams) (*Estimator, error) {
	if e.model == nil {
		return e, ErrNoModel
	}

	e.reset()
	e.state = StateFitting
	if err := e.fit(X, params); err != nil {
		e.reset()
		return e, err
	}
	e.state = StateFit

	e.logger.Debug("fit estimator",
		tslog.OperationKey, tslog.OperationFit,
		tslog.SamplesKey, X.Len(),
		tslog.FeaturesKey, len(X.Columns()),
	)
	return e, nil
}

func (e *Estimator) fit(X *timedataset.Frame, params FitParams) error {
	if X == nil {
		return timedataset.ErrNoTrainingData
	}
	if c := e.cfg.Coverage; c != nil && (*c < 0 || *c > 1 || math.IsNaN(*c)) {
		return nullmodel.NewConfigurationError(paramCoverage, "must be in [0, 1]", *c)
	}

	cols := Columns{Time: params.TimeCol, Value: params.ValueCol}
	if cols.Time == "" {
		cols.Time = forecast.TimeCol
	}
	if cols.Value == "" {
		cols.Value = forecast.ValueCol
	}
	e.timeCol = cols.Time
	e.valueCol = cols.Value

	if e.cfg.NullModelParams != nil {
		nm, err := nullmodel.NewFromMap(e.cfg.NullModelParams, e.lossFunc())
		if err != nil {
			return fmt.Errorf("unable to create null model, %w", err)
		}
		if err := nm.Fit(X, cols.Time, cols.Value, params.SampleWeight); err != nil {
			return fmt.Errorf("unable to fit null model, %w", err)
		}
		e.nullModel = nm
	}

	e.cache = nil

	modelParams := FitParams{
		TimeCol:      cols.Time,
		ValueCol:     cols.Value,
		SampleWeight: params.SampleWeight,
	}
	if err := e.model.FitModel(X, cols, modelParams); err != nil {
		return fmt.Errorf("unable to fit %s, %w", e.model.Name(), err)
	}
	return nil
}

// Predict forecasts the time points in X. When X equals, by value, the frame of the
// previous call the cached result is returned without invoking the model. The returned
// result is shared with the cache and must not be modified. Prediction bands are present
// if and only if a coverage is configured.
func (e *Estimator) Predict(X *timedataset.Frame) (*forecast.Results, error) {
	if e.state != StateFit {
		return nil, NewNotFittedError(e.Name(), "Predict")
	}

	if e.cache != nil && X.Equal(e.cache.X) {
		e.logger.Debug("returning cached predictions",
			tslog.OperationKey, tslog.OperationPredict,
			tslog.CacheHitKey, true,
		)
		return e.cache.predictions, nil
	}

	cols := Columns{Time: e.timeCol, Value: e.valueCol}
	res, err := e.model.PredictModel(X, cols, e.cfg.Coverage)
	if err != nil {
		return nil, fmt.Errorf("unable to predict with %s, %w", e.model.Name(), err)
	}
	if res == nil {
		return nil, ErrNilPredictions
	}

	if e.cfg.Coverage != nil {
		if !res.HasBands() {
			return nil, ErrMissingBands
		}
		if len(res.Lower) != res.Len() || len(res.Upper) != res.Len() {
			return nil, fmt.Errorf("bands have length of %d and %d, but forecast has a length of %d, %w",
				len(res.Lower), len(res.Upper), res.Len(), forecast.ErrResultsLenMismatch)
		}
	} else {
		res.ClearBands()
	}

	e.cache = &cacheEntry{X: X.Copy(), predictions: res}
	attrs := []any{
		tslog.OperationKey, tslog.OperationPredict,
		tslog.CacheHitKey, false,
		tslog.SamplesKey, res.Len(),
	}
	if e.cfg.Coverage != nil {
		attrs = append(attrs, tslog.CoverageKey, *e.cfg.Coverage)
	}
	e.logger.Debug("predicted", attrs...)
	return res, nil
}

// Score evaluates the forecast of X against the actual values y. With a null model the
// score is the relative skill 1 - loss(model) / loss(null model), where 1 is a perfect
// forecast and 0 is no better than the null model. Without a null model the configured
// loss is returned as is. If the null model loss is zero the relative skill is undefined
// and NaN is returned with a warning logged.
func (e *Estimator) Score(X *timedataset.Frame, y []float64) (float64, error) {
	pred, err := e.Predict(X)
	if err != nil {
		return 0, err
	}
	loss := e.lossFunc()

	if e.nullModel == nil {
		score, err := loss(y, pred.Forecast)
		if err != nil {
			return 0, fmt.Errorf("unable to score %s, %w", e.model.Name(), err)
		}
		return score, nil
	}

	nullPred, err := e.nullModel.Predict(X)
	if err != nil {
		return 0, fmt.Errorf("unable to predict with null model, %w", err)
	}
	score, err := metrics.RelativeSkill(y, pred.Forecast, nullPred.Forecast, loss)
	if errors.Is(err, metrics.ErrZeroNullLoss) {
		e.logger.Warn("relative skill is ill-defined and being set to NaN due to zero null model loss",
			tslog.OperationKey, tslog.OperationScore,
			tslog.NullLossKey, 0.0,
			tslog.ErrAttr(errors.WithStack(err)),
		)
		return math.NaN(), nil
	}
	if err != nil {
		return 0, fmt.Errorf("unable to compute relative skill, %w", err)
	}

	e.logger.Debug("scored",
		tslog.OperationKey, tslog.OperationScore,
		tslog.ScoreKey, score,
	)
	return score, nil
}

func (e *Estimator) lossFunc() metrics.ScoreFunc {
	if e.cfg.ScoreFunc == nil {
		return metrics.MSE
	}
	return e.cfg.ScoreFunc
}
