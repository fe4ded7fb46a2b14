// Package metrics contains loss functions used to score forecasts along with the relative
// skill score used to compare a forecast against a baseline. Every loss takes the actual
// values first and the predicted values second, ignores pairs where either side is NaN,
// and follows a lower is better convention.
package metrics

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValidValues  = errors.New("no pairs of non-NaN actual and predicted values")
	ErrZeroNullLoss   = errors.New("null model loss is zero, relative skill is undefined")
	ErrNoLossFunc     = errors.New("no loss function provided")
	ErrUnknownLoss    = errors.New("unknown loss function")
)

var lossFuncs = map[string]ScoreFunc{
	"mse":       MSE,
	"rmse":      RMSE,
	"mae":       MAE,
	"median_ae": MedianAE,
	"mape":      MAPE,
}

// ScoreFunc computes a loss between the actual and predicted values where lower is better.
type ScoreFunc func(actual, predicted []float64) (float64, error)

// LossByName looks up a loss function by its short name, e.g. mse or mae.
func LossByName(name string) (ScoreFunc, error) {
	f, exists := lossFuncs[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("got %q, must be one of [%s], %w", name, strings.Join(LossNames(), ", "), ErrUnknownLoss)
	}
	return f, nil
}

// LossNames returns the sorted names accepted by LossByName.
func LossNames() []string {
	names := make([]string, 0, len(lossFuncs))
	for name := range lossFuncs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Scores tracks the fit scores
type Scores struct {
	MSE  float64 `json:"mean_squared_error"`
	RMSE float64 `json:"root_mean_squared_error"`
	MAE  float64 `json:"mean_absolute_error"`
	MAPE float64 `json:"mean_average_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the actual and predicted input slice values
func NewScores(actual, predicted []float64) (*Scores, error) {
	mse, err := MSE(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mae, err := MAE(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	mape, err := MAPE(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(actual, predicted)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  mae,
		MAPE: mape,
		R2:   rs,
	}, nil
}

// validPairs returns copies of actual and predicted where neither value is NaN.
func validPairs(actual, predicted []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	a := make([]float64, 0, len(actual))
	p := make([]float64, 0, len(predicted))
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		a = append(a, actual[i])
		p = append(p, predicted[i])
	}
	if len(a) == 0 {
		return nil, nil, ErrNoValidValues
	}
	return a, p, nil
}

// MSE computes the mean squared error. This is the same as mean((y-yhat)^2).
// A score of 0 means a perfect match with no errors.
func MSE(actual, predicted []float64) (float64, error) {
	a, p, err := validPairs(actual, predicted)
	if err != nil {
		return 0, err
	}

	mse := 0.0
	for i := 0; i < len(a); i++ {
		mse += math.Pow(a[i]-p[i], 2.0)
	}
	mse /= float64(len(a))
	return mse, nil
}

// RMSE computes the root mean squared error.
func RMSE(actual, predicted []float64) (float64, error) {
	mse, err := MSE(actual, predicted)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(actual, predicted []float64) (float64, error) {
	a, p, err := validPairs(actual, predicted)
	if err != nil {
		return 0, err
	}

	mae := 0.0
	for i := 0; i < len(a); i++ {
		mae += math.Abs(a[i] - p[i])
	}
	mae /= float64(len(a))
	return mae, nil
}

// MedianAE computes the median absolute error, which is robust to outliers.
func MedianAE(actual, predicted []float64) (float64, error) {
	a, p, err := validPairs(actual, predicted)
	if err != nil {
		return 0, err
	}

	absErr := make([]float64, len(a))
	for i := 0; i < len(a); i++ {
		absErr[i] = math.Abs(a[i] - p[i])
	}
	return Median(absErr), nil
}

// Median returns the median of the values, averaging the two middle values for an even count.
// The input is not modified. NaN is returned for an empty slice.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// MAPE calculates the mean average percent error. This is the same as mean(abs((y-yhat)/y)).
// Zero actual values are skipped. A score of 0 means a perfect match with no errors.
func MAPE(actual, predicted []float64) (float64, error) {
	a, p, err := validPairs(actual, predicted)
	if err != nil {
		return 0, err
	}

	mape := 0.0
	for i := 0; i < len(a); i++ {
		if a[i] == 0 {
			continue
		}
		mape += math.Abs((a[i] - p[i]) / a[i])
	}
	mape /= float64(len(a))
	return mape, nil
}

// RSquared computes the r squared value between the actual and predicted where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(actual, predicted []float64) (float64, error) {
	a, p, err := validPairs(actual, predicted)
	if err != nil {
		return 0, err
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

// RelativeSkill compares the loss of a forecast against the loss of a baseline forecast on the
// same actual values, 1 - loss(actual, predicted) / loss(actual, nullPredicted). A score of 1
// is a perfect forecast, 0 is parity with the baseline and negative values are worse than the
// baseline. Only positions where all three inputs are non-NaN are evaluated. When the baseline
// loss is zero the score is NaN and ErrZeroNullLoss is returned.
func RelativeSkill(actual, predicted, nullPredicted []float64, loss ScoreFunc) (float64, error) {
	if loss == nil {
		return 0, ErrNoLossFunc
	}
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("predicted expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(nullPredicted) != len(actual) {
		return 0, fmt.Errorf("null predicted expected %d, but got %d, %w", len(actual), len(nullPredicted), ErrResLenMismatch)
	}

	a := make([]float64, 0, len(actual))
	p := make([]float64, 0, len(actual))
	n := make([]float64, 0, len(actual))
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || math.IsNaN(nullPredicted[i]) {
			continue
		}
		a = append(a, actual[i])
		p = append(p, predicted[i])
		n = append(n, nullPredicted[i])
	}
	if len(a) == 0 {
		return 0, ErrNoValidValues
	}

	modelLoss, err := loss(a, p)
	if err != nil {
		return 0, fmt.Errorf("unable to compute model loss, %w", err)
	}
	nullLoss, err := loss(a, n)
	if err != nil {
		return 0, fmt.Errorf("unable to compute null model loss, %w", err)
	}
	if nullLoss == 0 {
		return math.NaN(), ErrZeroNullLoss
	}
	return 1.0 - modelLoss/nullLoss, nil
}
