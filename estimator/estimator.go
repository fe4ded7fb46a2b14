// Package estimator implements the base forecast estimator. An Estimator owns the
// fit, predict and score lifecycle shared by every forecaster: it fits an optional null
// model used as a scoring baseline, caches the most recent predictions, and enforces that
// prediction bands are present exactly when a coverage is configured. Concrete forecasters
// only supply the Model hooks.
package estimator

import (
	"log/slog"

	"github.com/aouyang1/go-tsestimator/forecast"
	tslog "github.com/aouyang1/go-tsestimator/log"
	"github.com/aouyang1/go-tsestimator/metrics"
	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/aouyang1/go-tsestimator/timedataset"
	"github.com/google/uuid"
)

// DefaultCoverage is the intended coverage of prediction bands when none is configured.
const DefaultCoverage = 0.95

// Columns names the time and value columns of the training frame.
type Columns struct {
	Time  string
	Value string
}

// FitParams are the per call arguments to Fit. Empty column names default to
// forecast.TimeCol and forecast.ValueCol. SampleWeight is forwarded to the null model
// and the model.
type FitParams struct {
	TimeCol      string
	ValueCol     string
	SampleWeight []float64
}

// Model is implemented by concrete forecasters. The Estimator calls FitModel after the
// shared fit steps have run, and PredictModel on every cache miss. PredictModel must return
// bands when coverage is non-nil.
type Model interface {
	Name() string
	FitModel(X *timedataset.Frame, cols Columns, params FitParams) error
	PredictModel(X *timedataset.Frame, cols Columns, coverage *float64) (*forecast.Results, error)
	Params() map[string]any
	SetParams(params map[string]any) error
	Clone() Model
}

// Summarizer is optionally implemented by a Model to report fitted diagnostics.
type Summarizer interface {
	Summary() map[string]any
}

// Config holds the estimator configuration. It is stored as given and never modified by
// fitting. A nil Coverage disables prediction bands and a nil NullModelParams disables
// the null model.
type Config struct {
	ScoreFunc       metrics.ScoreFunc
	Coverage        *float64
	NullModelParams map[string]any
}

// NewDefaultConfig returns a config scoring with mean squared error at 95% coverage and
// no null model.
func NewDefaultConfig() Config {
	coverage := DefaultCoverage
	return Config{
		ScoreFunc: metrics.MSE,
		Coverage:  &coverage,
	}
}

// Option configures an Estimator.
type Option func(e *Estimator)

// WithScoreFunc sets the loss used by Score and by the null model.
func WithScoreFunc(f metrics.ScoreFunc) Option {
	return func(e *Estimator) {
		e.cfg.ScoreFunc = f
	}
}

// WithCoverage sets the intended coverage of the prediction bands. Fit rejects values
// outside [0, 1]; 0 gives bands equal to the forecast and 1 gives unbounded bands.
func WithCoverage(coverage float64) Option {
	return func(e *Estimator) {
		e.cfg.Coverage = &coverage
	}
}

// WithoutCoverage disables prediction bands.
func WithoutCoverage() Option {
	return func(e *Estimator) {
		e.cfg.Coverage = nil
	}
}

// WithNullModelParams enables the null model with the given parameters, e.g.
// {"strategy": "quantile", "quantile": 0.8}.
func WithNullModelParams(params map[string]any) Option {
	return func(e *Estimator) {
		e.cfg.NullModelParams = params
	}
}

// WithLogger sets the logger. Model and estimator attributes are added to it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		e.baseLogger = logger
	}
}

// State is the lifecycle state of an Estimator.
type State int

const (
	StateUnfit State = iota
	StateFitting
	StateFit
)

func (s State) String() string {
	switch s {
	case StateUnfit:
		return "unfit"
	case StateFitting:
		return "fitting"
	case StateFit:
		return "fit"
	}
	return "unknown"
}

// cacheEntry pairs the last predicted frame with its predictions and is always replaced as
// a whole.
type cacheEntry struct {
	X           *timedataset.Frame
	predictions *forecast.Results
}

// Estimator wraps a Model with the shared forecasting lifecycle. An Estimator is not safe
// for concurrent use; use Clone to give each goroutine its own copy.
type Estimator struct {
	id         string
	model      Model
	cfg        Config
	baseLogger *slog.Logger
	logger     *slog.Logger

	state     State
	timeCol   string
	valueCol  string
	nullModel *nullmodel.NullModel
	cache     *cacheEntry
}

// New returns an unfit estimator over the model.
func New(model Model, opts ...Option) *Estimator {
	e := &Estimator{
		id:    uuid.NewString(),
		model: model,
		cfg:   NewDefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.initLogger()
	return e
}

func (e *Estimator) initLogger() {
	base := e.baseLogger
	if base == nil {
		base = slog.Default()
	}
	name := ""
	if e.model != nil {
		name = e.model.Name()
	}
	e.logger = base.With(tslog.ModelNameKey, name, tslog.EstimatorIDKey, e.id)
}

// ID returns the unique identifier assigned to this estimator.
func (e *Estimator) ID() string {
	return e.id
}

// Name returns the underlying model name.
func (e *Estimator) Name() string {
	if e.model == nil {
		return ""
	}
	return e.model.Name()
}

// Model returns the underlying model.
func (e *Estimator) Model() Model {
	return e.model
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// State returns the lifecycle state.
func (e *Estimator) State() State {
	return e.state
}

// IsFitted reports whether Fit has completed successfully.
func (e *Estimator) IsFitted() bool {
	return e.state == StateFit
}

// TimeCol returns the time column recorded by the last fit.
func (e *Estimator) TimeCol() string {
	return e.timeCol
}

// ValueCol returns the value column recorded by the last fit.
func (e *Estimator) ValueCol() string {
	return e.valueCol
}

// NullModel returns the fitted null model, or nil if none is configured.
func (e *Estimator) NullModel() *nullmodel.NullModel {
	return e.nullModel
}

// Coverage returns the configured band coverage, or nil if bands are disabled.
func (e *Estimator) Coverage() *float64 {
	return e.cfg.Coverage
}

// CachedPredictions returns the predictions of the most recent Predict call since the last
// fit, or nil.
func (e *Estimator) CachedPredictions() *forecast.Results {
	if e.cache == nil {
		return nil
	}
	return e.cache.predictions
}

// LastPredictedX returns a copy of the frame the cached predictions were computed from,
// or nil.
func (e *Estimator) LastPredictedX() *timedataset.Frame {
	if e.cache == nil {
		return nil
	}
	return e.cache.X.Copy()
}

func (e *Estimator) reset() {
	e.state = StateUnfit
	e.timeCol = ""
	e.valueCol = ""
	e.nullModel = nil
	e.cache = nil
}
