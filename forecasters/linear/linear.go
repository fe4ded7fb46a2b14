// Package linear implements a forecaster fitting ordinary least squares on a piecewise
// linear trend, Fourier terms for weekly and yearly seasonality, an optional US holiday
// indicator and any additional regressor columns of the frame.
package linear

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-tsestimator/changepoint"
	"github.com/aouyang1/go-tsestimator/estimator"
	"github.com/aouyang1/go-tsestimator/event"
	"github.com/aouyang1/go-tsestimator/forecast"
	"github.com/aouyang1/go-tsestimator/models"
	"github.com/aouyang1/go-tsestimator/outlier"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/cockroachdb/errors"
	"github.com/rickar/cal/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	Name = "linear"

	TrendCol       = "trend"
	SeasonalityCol = "seasonality"
	HolidayCol     = "holiday"

	weeklyPeriodDays = 7.0
	yearlyPeriodDays = 365.25
)

var (
	ErrNoValidRows    = errors.New("no training rows without NaN values")
	ErrUntrainedModel = errors.New("linear model has not been trained yet")
)

// Linear is an OLS forecaster over trend, seasonality, holiday and regressor features.
type Linear struct {
	opt  *Options
	hols []*cal.Holiday

	start        time.Time
	trainEnd     time.Time
	chpts        []changepoint.Changepoint
	model        *models.OLS
	featureNames []string
	residualStd  float64
	r2           float64
	outliers     int
}

// New returns an untrained linear forecaster.
func New(opt *Options) (*Linear, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	hols, err := event.LookupHolidays(opt.Holidays)
	if err != nil {
		return nil, err
	}
	return &Linear{opt: opt.copy(), hols: hols}, nil
}

// NewEstimator wraps a linear forecaster with the estimator lifecycle.
func NewEstimator(opt *Options, opts ...estimator.Option) (*estimator.Estimator, error) {
	l, err := New(opt)
	if err != nil {
		return nil, err
	}
	return estimator.New(l, opts...), nil
}

func (l *Linear) Name() string {
	return Name
}

// design holds the feature columns in model order. Trend columns come first followed by
// the seasonality columns.
type design struct {
	names        []string
	cols         [][]float64
	nTrend       int
	nSeasonality int
}

func (d *design) add(name string, col []float64) {
	d.names = append(d.names, name)
	d.cols = append(d.cols, col)
}

// features builds the design matrix columns for t.
func (l *Linear) features(X *timedataset.Frame, t []time.Time) (*design, error) {
	d := &design{}
	trend := make([]float64, len(t))
	for i, tPnt := range t {
		trend[i] = tPnt.Sub(l.start).Hours() / 24.0
	}
	d.add(TrendCol, trend)

	chptNames, chptCols := changepoint.Features(l.chpts, t, l.trainEnd, l.opt.ChangepointGrowth)
	for i, name := range chptNames {
		d.add(name, chptCols[i])
	}
	d.nTrend = len(d.cols)

	for _, s := range []struct {
		label  string
		period float64
		orders int
	}{
		{"weekly", weeklyPeriodDays, l.opt.WeeklyOrders},
		{"yearly", yearlyPeriodDays, l.opt.YearlyOrders},
	} {
		for k := 1; k <= s.orders; k++ {
			sinCol := make([]float64, len(t))
			cosCol := make([]float64, len(t))
			for i, tPnt := range t {
				days := float64(tPnt.UnixNano()) / float64(24*time.Hour)
				rad := 2.0 * math.Pi * float64(k) * days / s.period
				sinCol[i] = math.Sin(rad)
				cosCol[i] = math.Cos(rad)
			}
			d.add(fmt.Sprintf("%s_sin_%d", s.label, k), sinCol)
			d.add(fmt.Sprintf("%s_cos_%d", s.label, k), cosCol)
			d.nSeasonality += 2
		}
	}

	if len(l.hols) > 0 {
		d.add(HolidayCol, event.HolidayMask(t, l.hols))
	}

	for _, r := range l.opt.Regressors {
		vals, err := X.Column(r)
		if err != nil {
			return nil, err
		}
		d.add(r, vals)
	}
	return d, nil
}

// trainRows are the frame rows used for fitting with their target and weight. weight is
// nil when no sample weights are given.
type trainRows struct {
	idx    []int
	target []float64
	weight []float64
}

// drop removes the positions idxs, sorted ascending.
func (r *trainRows) drop(idxs []int) {
	kept := &trainRows{
		idx:    make([]int, 0, len(r.idx)-len(idxs)),
		target: make([]float64, 0, len(r.idx)-len(idxs)),
	}
	if r.weight != nil {
		kept.weight = make([]float64, 0, len(r.idx)-len(idxs))
	}
	next := 0
	for i := range r.idx {
		if next < len(idxs) && idxs[next] == i {
			next++
			continue
		}
		kept.idx = append(kept.idx, r.idx[i])
		kept.target = append(kept.target, r.target[i])
		if r.weight != nil {
			kept.weight = append(kept.weight, r.weight[i])
		}
	}
	*r = *kept
}

func (l *Linear) FitModel(X *timedataset.Frame, cols estimator.Columns, params estimator.FitParams) error {
	l.model = nil
	if X.Len() == 0 {
		return timedataset.ErrNoTrainingData
	}
	if !X.Monotonic() {
		return timedataset.ErrNonMontonic
	}
	t, err := X.Time(cols.Time)
	if err != nil {
		return err
	}
	y, err := X.Column(cols.Value)
	if err != nil {
		return err
	}
	sw := params.SampleWeight
	if sw != nil && len(sw) != len(y) {
		return fmt.Errorf("got %d sample weights for %d observations, %w", len(sw), len(y), models.ErrWeightLenMismatch)
	}

	l.start = t[0]
	l.trainEnd = t[len(t)-1]
	chpts := append(slices.Clone(l.opt.Changepoints), changepoint.Auto(t, l.opt.AutoChangepoints)...)
	l.chpts = changepoint.Active(chpts, l.start, l.trainEnd)

	d, err := l.features(X, t)
	if err != nil {
		return err
	}
	featCols := d.cols

	rows := &trainRows{}
	if sw != nil {
		rows.weight = []float64{}
	}
	for i := range t {
		if math.IsNaN(y[i]) {
			continue
		}
		if sw != nil {
			if math.IsNaN(sw[i]) || math.IsInf(sw[i], 0) || sw[i] < 0 {
				return fmt.Errorf("at index %d got %f, %w", i, sw[i], models.ErrInvalidWeight)
			}
			// zero weight rows carry no information for the fit or outlier detection
			if sw[i] == 0 {
				continue
			}
		}
		valid := true
		for _, col := range featCols {
			if math.IsNaN(col[i]) {
				valid = false
				break
			}
		}
		if valid {
			rows.idx = append(rows.idx, i)
			rows.target = append(rows.target, y[i])
			if sw != nil {
				rows.weight = append(rows.weight, sw[i])
			}
		}
	}
	if len(rows.idx) == 0 {
		return ErrNoValidRows
	}

	outlierOpt := outlier.NewDefaultOptions()
	outlierOpt.Passes = l.opt.OutlierPasses
	var (
		model    *models.OLS
		x        *mat.Dense
		pred     []float64
		outliers int
	)
	for pass := 0; ; pass++ {
		x, err = models.DenseFromColumns(featCols, rows.idx)
		if err != nil {
			return err
		}
		model = models.NewOLS(true)
		if err := model.FitWeighted(x, rows.target, rows.weight); err != nil {
			return fmt.Errorf("unable to fit ordinary least squares, %w", err)
		}
		pred, err = model.Predict(x)
		if err != nil {
			return err
		}
		if pass >= outlierOpt.Passes {
			break
		}

		residuals := make([]float64, len(pred))
		for i, p := range pred {
			residuals[i] = rows.target[i] - p
		}
		idxs := outlierOpt.Detect(residuals)
		// keep enough rows to determine every coefficient
		if len(idxs) == 0 || len(rows.idx)-len(idxs) <= len(featCols) {
			break
		}
		rows.drop(idxs)
		outliers += len(idxs)
	}

	sqErr := make([]float64, len(pred))
	for i, p := range pred {
		sqErr[i] = (rows.target[i] - p) * (rows.target[i] - p)
	}
	l.residualStd = 0
	if len(pred) > 1 {
		l.residualStd = math.Sqrt(stat.Mean(sqErr, rows.weight))
	}
	l.r2, err = model.R2(x, rows.target, rows.weight)
	if err != nil {
		return err
	}

	l.outliers = outliers
	l.model = model
	l.featureNames = d.names
	return nil
}

func (l *Linear) PredictModel(X *timedataset.Frame, cols estimator.Columns, coverage *float64) (*forecast.Results, error) {
	if l.model == nil {
		return nil, ErrUntrainedModel
	}
	t, err := X.Time(cols.Time)
	if err != nil {
		return nil, err
	}

	fcst := make([]float64, len(t))
	trend := make([]float64, len(t))
	seasonality := make([]float64, len(t))
	if len(t) > 0 {
		d, err := l.features(X, t)
		if err != nil {
			return nil, err
		}
		x, err := models.DenseFromColumns(d.cols, nil)
		if err != nil {
			return nil, err
		}
		fcst, err = l.model.Predict(x)
		if err != nil {
			return nil, err
		}

		coef := l.model.Coef()
		for i := range t {
			trend[i] = l.model.Intercept()
			for j := 0; j < d.nTrend; j++ {
				trend[i] += coef[j] * d.cols[j][i]
			}
			for j := d.nTrend; j < d.nTrend+d.nSeasonality; j++ {
				seasonality[i] += coef[j] * d.cols[j][i]
			}
		}
	}

	res, err := forecast.NewResults(t, fcst)
	if err != nil {
		return nil, err
	}
	if coverage != nil {
		if err := res.SetNormalBands(l.residualStd, *coverage); err != nil {
			return nil, err
		}
	}
	if err := res.AddColumn(TrendCol, trend); err != nil {
		return nil, err
	}
	if err := res.AddColumn(SeasonalityCol, seasonality); err != nil {
		return nil, err
	}
	return res, nil
}

func (l *Linear) Params() map[string]any {
	return l.opt.params()
}

// SetParams updates the feature options and discards the fit.
func (l *Linear) SetParams(params map[string]any) error {
	opt, err := l.opt.apply(params)
	if err != nil {
		return err
	}
	hols, err := event.LookupHolidays(opt.Holidays)
	if err != nil {
		return err
	}
	l.opt = opt
	l.hols = hols
	l.model = nil
	return nil
}

func (l *Linear) Clone() estimator.Model {
	return &Linear{opt: l.opt.copy(), hols: l.hols}
}

func (l *Linear) Summary() map[string]any {
	if l.model == nil {
		return nil
	}
	return map[string]any{
		"intercept":    l.model.Intercept(),
		"coefficients": l.Coefficients(),
		"residual_std": l.residualStd,
		"train_r2":     l.r2,
		"changepoints": slices.Clone(l.chpts),
		"outliers":     l.outliers,
	}
}

// Coefficients returns the fitted coefficient of each feature by name, or nil if untrained.
func (l *Linear) Coefficients() map[string]float64 {
	if l.model == nil {
		return nil
	}
	coef := make(map[string]float64, len(l.featureNames))
	for i, c := range l.model.Coef() {
		coef[l.featureNames[i]] = c
	}
	return coef
}

// Intercept returns the fitted constant term.
func (l *Linear) Intercept() float64 {
	if l.model == nil {
		return 0
	}
	return l.model.Intercept()
}

// ResidualStd returns the root mean squared training residual.
func (l *Linear) ResidualStd() float64 {
	return l.residualStd
}
