// Package models contains the regression solvers used by the linear forecaster.
package models

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTol is the smallest column norm or diagonal entry of R treated as non-zero.
const rankTol = 1e-10

// OLS fits ordinary least squares through a QR factorization. Features that are
// linearly dependent on earlier features receive a zero coefficient.
type OLS struct {
	// FitIntercept solves for a constant term alongside the coefficients
	FitIntercept bool

	fitted    bool
	intercept float64
	coef      []float64
}

// NewOLS returns an unfitted regression.
func NewOLS(fitIntercept bool) *OLS {
	return &OLS{FitIntercept: fitIntercept}
}

// Fit solves for the coefficients minimizing the squared error of x against y.
func (o *OLS) Fit(x mat.Matrix, y []float64) error {
	return o.FitWeighted(x, y, nil)
}

// FitWeighted solves for the coefficients minimizing the weighted squared error of x
// against y. A nil weights weighs every row equally. Rows with zero weight do not
// influence the fit.
func (o *OLS) FitWeighted(x mat.Matrix, y, weights []float64) error {
	o.fitted = false
	if x == nil {
		return ErrNoDesignMatrix
	}
	m, p := x.Dims()
	if len(y) != m {
		return fmt.Errorf("design matrix has %d rows and target has %d values, %w", m, len(y), ErrTargetLenMismatch)
	}
	if weights != nil && len(weights) != m {
		return fmt.Errorf("design matrix has %d rows and weights has %d values, %w", m, len(weights), ErrWeightLenMismatch)
	}
	offset := 0
	if o.FitIntercept {
		offset = 1
	}
	n := p + offset

	// rows are scaled by the square root of their weight
	scale := make([]float64, m)
	observed := m
	if weights == nil {
		floats.AddConst(1.0, scale)
	} else {
		observed = 0
		for i, w := range weights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return fmt.Errorf("at index %d got %f, %w", i, w, ErrInvalidWeight)
			}
			if w > 0 {
				observed++
			}
			scale[i] = math.Sqrt(w)
		}
	}
	if observed < n {
		return fmt.Errorf("got %d observations for %d features, %w", observed, n, ErrUnderdetermined)
	}

	col := func(j int) []float64 {
		if j < offset {
			return slices.Clone(scale)
		}
		c := mat.Col(nil, j-offset, x)
		floats.Mul(c, scale)
		return c
	}
	ys := slices.Clone(y)
	floats.Mul(ys, scale)

	// all zero columns carry no information and are left with a zero coefficient
	var keep []int
	for j := 0; j < n; j++ {
		if floats.Norm(col(j), 2) > rankTol {
			keep = append(keep, j)
		}
	}
	k := len(keep)

	// factorizing [x | y] leaves Q^T y in the last column of R so Q is never formed
	aug := mat.NewDense(max(m, k+1), k+1, nil)
	for jj, j := range keep {
		aug.Slice(0, m, jj, jj+1).(*mat.Dense).SetCol(0, col(j))
	}
	aug.Slice(0, m, k, k+1).(*mat.Dense).SetCol(0, ys)

	var qr mat.QR
	qr.Factorize(aug)
	var r mat.Dense
	qr.RTo(&r)

	sol := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		rii := r.At(i, i)
		if math.Abs(rii) < rankTol {
			continue
		}
		acc := r.At(i, k)
		for j := i + 1; j < k; j++ {
			acc -= sol[j] * r.At(i, j)
		}
		sol[i] = acc / rii
	}

	beta := make([]float64, n)
	for jj, j := range keep {
		beta[j] = sol[jj]
	}
	o.intercept = 0
	if o.FitIntercept {
		o.intercept = beta[0]
	}
	o.coef = beta[offset:]
	o.fitted = true
	return nil
}

// Predict evaluates the fitted regression on each row of x.
func (o *OLS) Predict(x mat.Matrix) ([]float64, error) {
	if !o.fitted {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	m, p := x.Dims()
	if p != len(o.coef) {
		return nil, fmt.Errorf("design matrix has %d columns for %d coefficients, %w", p, len(o.coef), ErrFeatureLenMismatch)
	}

	out := make([]float64, m)
	if m == 0 {
		return out, nil
	}
	fx := mat.NewVecDense(m, out)
	fx.MulVec(x, mat.NewVecDense(p, o.coef))
	floats.AddConst(o.intercept, out)
	return out, nil
}

// R2 returns the coefficient of determination of the predictions of x against y, with
// optional per row weights.
func (o *OLS) R2(x mat.Matrix, y, weights []float64) (float64, error) {
	pred, err := o.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, fmt.Errorf("design matrix has %d rows and target has %d values, %w", len(pred), len(y), ErrTargetLenMismatch)
	}
	if weights != nil && len(weights) != len(y) {
		return 0, fmt.Errorf("target has %d values and weights has %d values, %w", len(y), len(weights), ErrWeightLenMismatch)
	}
	return stat.RSquaredFrom(pred, y, weights), nil
}

// Intercept returns the fitted constant term.
func (o *OLS) Intercept() float64 {
	return o.intercept
}

// Coef returns a copy of the fitted feature coefficients.
func (o *OLS) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// DenseFromColumns builds a matrix whose i-th row holds cols[j][rows[i]] for every column j.
// A nil rows selects every row.
func DenseFromColumns(cols [][]float64, rows []int) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, ErrNoDesignMatrix
	}
	n := len(cols[0])
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("column %d has %d values, expected %d, %w", j, len(c), n, ErrColumnLenMismatch)
		}
	}
	if rows == nil {
		rows = make([]int, n)
		for i := range rows {
			rows[i] = i
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoDesignMatrix
	}
	x := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, c := range cols {
			x.Set(i, j, c[r])
		}
	}
	return x, nil
}
