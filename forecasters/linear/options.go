package linear

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/go-tsestimator/changepoint"
	"github.com/aouyang1/go-tsestimator/estimator"
	"github.com/aouyang1/go-tsestimator/event"
)

const (
	ParamWeeklyOrders = "weekly_orders"
	ParamYearlyOrders = "yearly_orders"
	ParamHolidays     = "holidays"
	ParamRegressors   = "regressors"

	ParamChangepoints      = "changepoints"
	ParamAutoChangepoints  = "auto_changepoints"
	ParamChangepointGrowth = "changepoint_growth"
	ParamOutlierPasses     = "outlier_passes"

	// maxOrders caps the number of Fourier harmonics per seasonality
	maxOrders = 50

	maxAutoChangepoints = 100
	maxOutlierPasses    = 10
)

var recognizedParams = []string{
	ParamAutoChangepoints, ParamChangepointGrowth, ParamChangepoints,
	ParamHolidays, ParamOutlierPasses, ParamRegressors, ParamWeeklyOrders, ParamYearlyOrders,
}

// Options configures the features of the linear forecaster
type Options struct {
	// WeeklyOrders is the number of Fourier harmonics of the weekly seasonality
	WeeklyOrders int

	// YearlyOrders is the number of Fourier harmonics of the yearly seasonality
	YearlyOrders int

	// Holidays are short names from event.USHolidays, or "all", modeled with a single
	// indicator feature
	Holidays []string

	// Regressors are additional frame columns used as features
	Regressors []string

	// Changepoints shift the trend level at known times
	Changepoints []changepoint.Changepoint

	// AutoChangepoints evenly places this many additional changepoints in the training window
	AutoChangepoints int

	// ChangepointGrowth also lets every changepoint shift the trend slope
	ChangepointGrowth bool

	// OutlierPasses is the number of refits after dropping rows with outlying residuals
	OutlierPasses int
}

// NewDefaultOptions returns a weekly seasonality of 3 orders with a linear trend
func NewDefaultOptions() *Options {
	return &Options{
		WeeklyOrders: 3,
	}
}

// Validate checks the seasonality orders and holiday names, defaulting a nil Options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.WeeklyOrders < 0 || o.WeeklyOrders > maxOrders {
		return nil, estimator.NewConfigurationError(ParamWeeklyOrders, fmt.Sprintf("must be in [0, %d]", maxOrders), o.WeeklyOrders)
	}
	if o.YearlyOrders < 0 || o.YearlyOrders > maxOrders {
		return nil, estimator.NewConfigurationError(ParamYearlyOrders, fmt.Sprintf("must be in [0, %d]", maxOrders), o.YearlyOrders)
	}
	if _, err := event.LookupHolidays(o.Holidays); err != nil {
		return nil, estimator.NewConfigurationError(ParamHolidays, err.Error(), o.Holidays)
	}
	for i, r := range o.Regressors {
		if r == "" || slices.Contains(o.Regressors[:i], r) {
			return nil, estimator.NewConfigurationError(ParamRegressors, "names must be non-empty and unique", o.Regressors)
		}
	}
	if o.AutoChangepoints < 0 || o.AutoChangepoints > maxAutoChangepoints {
		return nil, estimator.NewConfigurationError(ParamAutoChangepoints, fmt.Sprintf("must be in [0, %d]", maxAutoChangepoints), o.AutoChangepoints)
	}
	if o.OutlierPasses < 0 || o.OutlierPasses > maxOutlierPasses {
		return nil, estimator.NewConfigurationError(ParamOutlierPasses, fmt.Sprintf("must be in [0, %d]", maxOutlierPasses), o.OutlierPasses)
	}
	for _, c := range o.Changepoints {
		if c.T.IsZero() {
			return nil, estimator.NewConfigurationError(ParamChangepoints, "times must be set", o.Changepoints)
		}
	}
	return o, nil
}

func (o *Options) copy() *Options {
	return &Options{
		WeeklyOrders: o.WeeklyOrders,
		YearlyOrders: o.YearlyOrders,
		Holidays:     slices.Clone(o.Holidays),
		Regressors:   slices.Clone(o.Regressors),

		Changepoints:      slices.Clone(o.Changepoints),
		AutoChangepoints:  o.AutoChangepoints,
		ChangepointGrowth: o.ChangepointGrowth,
		OutlierPasses:     o.OutlierPasses,
	}
}

func (o *Options) params() map[string]any {
	return map[string]any{
		ParamWeeklyOrders: o.WeeklyOrders,
		ParamYearlyOrders: o.YearlyOrders,
		ParamHolidays:     slices.Clone(o.Holidays),
		ParamRegressors:   slices.Clone(o.Regressors),

		ParamChangepoints:      slices.Clone(o.Changepoints),
		ParamAutoChangepoints:  o.AutoChangepoints,
		ParamChangepointGrowth: o.ChangepointGrowth,
		ParamOutlierPasses:     o.OutlierPasses,
	}
}

// apply returns a copy of the options updated with the loosely typed parameters.
func (o *Options) apply(params map[string]any) (*Options, error) {
	next := o.copy()
	for k, v := range params {
		var err error
		switch k {
		case ParamWeeklyOrders:
			next.WeeklyOrders, err = toInt(k, v)
		case ParamYearlyOrders:
			next.YearlyOrders, err = toInt(k, v)
		case ParamHolidays:
			next.Holidays, err = toStrings(k, v)
		case ParamRegressors:
			next.Regressors, err = toStrings(k, v)
		case ParamChangepoints:
			next.Changepoints, err = toChangepoints(k, v)
		case ParamAutoChangepoints:
			next.AutoChangepoints, err = toInt(k, v)
		case ParamOutlierPasses:
			next.OutlierPasses, err = toInt(k, v)
		case ParamChangepointGrowth:
			growth, ok := v.(bool)
			if !ok {
				err = estimator.NewConfigurationError(k, "must be a bool", v)
			}
			next.ChangepointGrowth = growth
		default:
			err = estimator.NewConfigurationError(k,
				fmt.Sprintf("unrecognized key, must be one of [%s]", strings.Join(recognizedParams, ", ")), v)
		}
		if err != nil {
			return nil, err
		}
	}
	return next.Validate()
}

func toInt(param string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, estimator.NewConfigurationError(param, "must be an integer", v)
}

func toStrings(param string, v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(s), nil
	case string:
		return []string{s}, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, estimator.NewConfigurationError(param, "must be a list of strings", v)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, estimator.NewConfigurationError(param, "must be a list of strings", v)
}

// toChangepoints accepts changepoints, times or RFC3339 strings.
func toChangepoints(param string, v any) ([]changepoint.Changepoint, error) {
	var raw []any
	switch c := v.(type) {
	case nil:
		return nil, nil
	case []changepoint.Changepoint:
		return slices.Clone(c), nil
	case []time.Time:
		for _, t := range c {
			raw = append(raw, t)
		}
	case []string:
		for _, t := range c {
			raw = append(raw, t)
		}
	case []any:
		raw = c
	default:
		return nil, estimator.NewConfigurationError(param, "must be a list of times", v)
	}

	chpts := make([]changepoint.Changepoint, 0, len(raw))
	for _, r := range raw {
		switch t := r.(type) {
		case time.Time:
			chpts = append(chpts, changepoint.New("", t))
		case changepoint.Changepoint:
			chpts = append(chpts, t)
		case string:
			parsed, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return nil, estimator.NewConfigurationError(param, "times must be RFC3339 formatted", v)
			}
			chpts = append(chpts, changepoint.New("", parsed))
		default:
			return nil, estimator.NewConfigurationError(param, "must be a list of times", v)
		}
	}
	return chpts, nil
}
