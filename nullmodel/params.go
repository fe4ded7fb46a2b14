package nullmodel

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	ParamStrategy = "strategy"
	ParamConstant = "constant"
	ParamQuantile = "quantile"

	StrategyMean     = "mean"
	StrategyMedian   = "median"
	StrategyQuantile = "quantile"
	StrategyConstant = "constant"
)

var (
	recognizedParams = []string{ParamStrategy, ParamConstant, ParamQuantile}
	strategies       = []string{StrategyMean, StrategyMedian, StrategyQuantile, StrategyConstant}
)

// ConfigurationError is returned when baseline parameters are unrecognized or inconsistent.
type ConfigurationError struct {
	Param  string
	Reason string
	Value  any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for parameter %q: %s (got: %v)", e.Param, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a ConfigurationError with a stack trace attached.
func NewConfigurationError(param, reason string, value any) error {
	return errors.WithStack(&ConfigurationError{Param: param, Reason: reason, Value: value})
}

// Params configures the baseline. Constant and Quantile are only consulted by the
// strategies of the same name.
type Params struct {
	Strategy string   `json:"strategy"`
	Constant *float64 `json:"constant,omitempty"`
	Quantile *float64 `json:"quantile,omitempty"`
}

// NewDefaultParams returns a mean baseline.
func NewDefaultParams() Params {
	return Params{Strategy: StrategyMean}
}

// ParseParams converts a loosely typed parameter mapping into Params. Only the keys
// "strategy", "constant" and "quantile" are recognized. A missing strategy defaults to mean.
func ParseParams(m map[string]any) (Params, error) {
	p := NewDefaultParams()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		switch k {
		case ParamStrategy:
			s, ok := v.(string)
			if !ok {
				return Params{}, NewConfigurationError(k, "must be a string", v)
			}
			p.Strategy = s
		case ParamConstant:
			if v == nil {
				continue
			}
			f, ok := toFloat(v)
			if !ok {
				return Params{}, NewConfigurationError(k, "must be numeric", v)
			}
			p.Constant = &f
		case ParamQuantile:
			if v == nil {
				continue
			}
			f, ok := toFloat(v)
			if !ok {
				return Params{}, NewConfigurationError(k, "must be numeric", v)
			}
			p.Quantile = &f
		default:
			return Params{}, NewConfigurationError(k,
				fmt.Sprintf("unrecognized key, must be one of [%s]", strings.Join(recognizedParams, ", ")), v)
		}
	}
	return p, nil
}

// Validate checks the strategy is known and its required parameter is set.
func (p Params) Validate() error {
	if !slices.Contains(strategies, p.Strategy) {
		return NewConfigurationError(ParamStrategy,
			fmt.Sprintf("unknown strategy, must be one of [%s]", strings.Join(strategies, ", ")), p.Strategy)
	}
	switch p.Strategy {
	case StrategyConstant:
		if p.Constant == nil {
			return NewConfigurationError(ParamConstant, "required by the constant strategy", nil)
		}
	case StrategyQuantile:
		if p.Quantile == nil {
			return NewConfigurationError(ParamQuantile, "required by the quantile strategy", nil)
		}
		if *p.Quantile < 0 || *p.Quantile > 1 {
			return NewConfigurationError(ParamQuantile, "must be in [0, 1]", *p.Quantile)
		}
	}
	return nil
}

// Map returns the parameters as a loosely typed mapping accepted by ParseParams.
func (p Params) Map() map[string]any {
	m := map[string]any{ParamStrategy: p.Strategy}
	if p.Constant != nil {
		m[ParamConstant] = *p.Constant
	}
	if p.Quantile != nil {
		m[ParamQuantile] = *p.Quantile
	}
	return m
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
