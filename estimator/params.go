package estimator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/nullmodel"
)

const (
	ParamScoreFunc       = "score_func"
	ParamCoverage        = paramCoverage
	ParamNullModelParams = "null_model_params"

	// ModelParamPrefix prefixes model parameters in GetParams(true) and SetParams.
	ModelParamPrefix = "model__"
)

// GetParams returns the estimator configuration keyed by parameter name. With deep set
// the model parameters are included, prefixed by ModelParamPrefix.
func (e *Estimator) GetParams(deep bool) map[string]any {
	params := map[string]any{
		ParamScoreFunc:       e.cfg.ScoreFunc,
		ParamCoverage:        e.cfg.Coverage,
		ParamNullModelParams: e.cfg.NullModelParams,
	}
	if deep && e.model != nil {
		for k, v := range e.model.Params() {
			params[ModelParamPrefix+k] = v
		}
	}
	return params
}

// SetParams updates the configuration. score_func accepts a metrics.ScoreFunc or the name
// of a loss known to metrics.LossByName, coverage accepts a number or nil, and
// null_model_params accepts a map or nil. Keys prefixed with ModelParamPrefix are passed
// to the model. Any change discards the current fit. Unrecognized keys return a
// ConfigurationError and leave the estimator untouched.
func (e *Estimator) SetParams(params map[string]any) error {
	cfg := e.cfg
	modelParams := make(map[string]any)

	keys := slices.Sorted(maps.Keys(params))
	for _, k := range keys {
		v := params[k]
		switch {
		case k == ParamScoreFunc:
			f, err := toScoreFunc(v)
			if err != nil {
				return err
			}
			cfg.ScoreFunc = f
		case k == ParamCoverage:
			c, err := toCoverage(v)
			if err != nil {
				return err
			}
			cfg.Coverage = c
		case k == ParamNullModelParams:
			switch m := v.(type) {
			case nil:
				cfg.NullModelParams = nil
			case map[string]any:
				cfg.NullModelParams = m
			default:
				return nullmodel.NewConfigurationError(k, "must be a map or nil", v)
			}
		case strings.HasPrefix(k, ModelParamPrefix):
			modelParams[strings.TrimPrefix(k, ModelParamPrefix)] = v
		default:
			return nullmodel.NewConfigurationError(k,
				fmt.Sprintf("unrecognized key, must be one of [%s, %s, %s] or prefixed by %s",
					ParamScoreFunc, ParamCoverage, ParamNullModelParams, ModelParamPrefix), v)
		}
	}

	if len(modelParams) > 0 {
		if e.model == nil {
			return ErrNoModel
		}
		if err := e.model.SetParams(modelParams); err != nil {
			return fmt.Errorf("unable to set %s parameters, %w", e.model.Name(), err)
		}
	}
	e.cfg = cfg
	e.reset()
	return nil
}

func toScoreFunc(v any) (metrics.ScoreFunc, error) {
	switch f := v.(type) {
	case metrics.ScoreFunc:
		return f, nil
	case func(actual, predicted []float64) (float64, error):
		return f, nil
	case string:
		loss, err := metrics.LossByName(f)
		if err != nil {
			return nil, nullmodel.NewConfigurationError(ParamScoreFunc, err.Error(), v)
		}
		return loss, nil
	}
	return nil, nullmodel.NewConfigurationError(ParamScoreFunc, "must be a score function or loss name", v)
}

func toCoverage(v any) (*float64, error) {
	var c float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case *float64:
		if n == nil {
			return nil, nil
		}
		c = *n
	case float64:
		c = n
	case float32:
		c = float64(n)
	case int:
		c = float64(n)
	default:
		return nil, nullmodel.NewConfigurationError(ParamCoverage, "must be numeric or nil", v)
	}
	return &c, nil
}

// Clone returns an unfit estimator with the same configuration and a clone of the model.
// The clone receives a new id.
func (e *Estimator) Clone() *Estimator {
	var model Model
	if e.model != nil {
		model = e.model.Clone()
	}
	cfg := e.cfg
	if cfg.Coverage != nil {
		c := *cfg.Coverage
		cfg.Coverage = &c
	}
	if cfg.NullModelParams != nil {
		cfg.NullModelParams = maps.Clone(cfg.NullModelParams)
	}

	opts := []Option{func(next *Estimator) {
		next.cfg = cfg
	}}
	if e.baseLogger != nil {
		opts = append(opts, WithLogger(e.baseLogger))
	}
	return New(model, opts...)
}
