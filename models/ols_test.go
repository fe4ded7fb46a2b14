package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestOLS(t *testing.T) {
	tol := 1e-6
	testData := map[string]struct {
		cols         [][]float64
		y            []float64
		fitIntercept bool
		intercept    float64
		coef         []float64
	}{
		"with intercept": {
			cols: [][]float64{
				{0, 3, 9, 12, 15},
				{0, 5, 20, 6, 10},
			},
			y:            []float64{2, 31, 109, 62, 87},
			fitIntercept: true,
			intercept:    2,
			coef:         []float64{3, 4},
		},
		"constant column instead of intercept": {
			cols: [][]float64{
				{1, 1, 1, 1, 1},
				{0, 3, 9, 12, 15},
				{0, 5, 20, 6, 10},
			},
			y:    []float64{2, 31, 109, 62, 87},
			coef: []float64{2, 3, 4},
		},
		"zero column gets zero coefficient": {
			cols: [][]float64{
				{0, 3, 9, 12},
				{0, 0, 0, 0},
			},
			y:            []float64{1, 7, 19, 25},
			fitIntercept: true,
			intercept:    1,
			coef:         []float64{2, 0},
		},
		"duplicated column": {
			cols: [][]float64{
				{1, 2, 3, 4, 5},
				{1, 2, 3, 4, 5},
			},
			y:            []float64{-1, 1, 3, 5, 7},
			fitIntercept: true,
			intercept:    -3,
			coef:         []float64{2, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			x, err := DenseFromColumns(td.cols, nil)
			require.NoError(t, err)

			o := NewOLS(td.fitIntercept)
			require.NoError(t, o.Fit(x, td.y))
			assert.InDelta(t, td.intercept, o.Intercept(), tol)
			assert.InDeltaSlice(t, td.coef, o.Coef(), tol)

			pred, err := o.Predict(x)
			require.NoError(t, err)
			assert.InDeltaSlice(t, td.y, pred, tol)

			r2, err := o.R2(x, td.y, nil)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, r2, tol)
		})
	}
}

func TestOLSFitWeighted(t *testing.T) {
	tol := 1e-6
	x, err := DenseFromColumns([][]float64{{0, 1, 2, 3, 4}}, nil)
	require.NoError(t, err)
	y := []float64{1, 3, 50, 7, 9}

	testData := map[string]struct {
		weights   []float64
		intercept float64
		coef      []float64
		r2        float64
	}{
		"zero weight row is ignored": {
			weights:   []float64{1, 1, 0, 1, 1},
			intercept: 1,
			coef:      []float64{2},
			r2:        1,
		},
		"fractional weights on exact rows": {
			weights:   []float64{0.5, 3, 0, 0.25, 1},
			intercept: 1,
			coef:      []float64{2},
			r2:        1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			o := NewOLS(true)
			require.NoError(t, o.FitWeighted(x, y, td.weights))
			assert.InDelta(t, td.intercept, o.Intercept(), tol)
			assert.InDeltaSlice(t, td.coef, o.Coef(), tol)

			r2, err := o.R2(x, y, td.weights)
			require.NoError(t, err)
			assert.InDelta(t, td.r2, r2, tol)
		})
	}

	// scaling every weight equally matches the unweighted fit
	unweighted := NewOLS(true)
	require.NoError(t, unweighted.Fit(x, y))
	scaled := NewOLS(true)
	require.NoError(t, scaled.FitWeighted(x, y, []float64{3, 3, 3, 3, 3}))
	assert.InDelta(t, unweighted.Intercept(), scaled.Intercept(), tol)
	assert.InDeltaSlice(t, unweighted.Coef(), scaled.Coef(), tol)
}

func TestOLSErrors(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	testData := map[string]struct {
		run func(o *OLS) error
		err error
	}{
		"predict before fit": {
			run: func(o *OLS) error {
				_, err := o.Predict(x)
				return err
			},
			err: ErrNotFitted,
		},
		"nil design": {
			run: func(o *OLS) error { return o.Fit(nil, []float64{1, 2}) },
			err: ErrNoDesignMatrix,
		},
		"target length": {
			run: func(o *OLS) error { return o.Fit(x, []float64{1, 2, 3}) },
			err: ErrTargetLenMismatch,
		},
		"underdetermined": {
			run: func(o *OLS) error { return o.Fit(x, []float64{1, 2}) },
			err: ErrUnderdetermined,
		},
		"weights length": {
			run: func(o *OLS) error { return o.FitWeighted(x, []float64{1, 2}, []float64{1}) },
			err: ErrWeightLenMismatch,
		},
		"negative weight": {
			run: func(o *OLS) error {
				return o.FitWeighted(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{2, 4, 6}, []float64{1, -1, 1})
			},
			err: ErrInvalidWeight,
		},
		"zero weights leave too few rows": {
			run: func(o *OLS) error {
				return o.FitWeighted(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{2, 4, 6}, []float64{1, 0, 0})
			},
			err: ErrUnderdetermined,
		},
		"r2 weights length": {
			run: func(o *OLS) error {
				x3 := mat.NewDense(3, 1, []float64{1, 2, 3})
				if err := o.Fit(x3, []float64{2, 4, 6}); err != nil {
					return err
				}
				_, err := o.R2(x3, []float64{2, 4, 6}, []float64{1})
				return err
			},
			err: ErrWeightLenMismatch,
		},
		"feature count": {
			run: func(o *OLS) error {
				if err := o.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{2, 4, 6}); err != nil {
					return err
				}
				_, err := o.Predict(x)
				return err
			},
			err: ErrFeatureLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, td.run(NewOLS(true)), td.err)
		})
	}
}

func TestDenseFromColumns(t *testing.T) {
	cols := [][]float64{{1, 2, 3}, {4, 5, 6}}

	x, err := DenseFromColumns(cols, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6, 1, 4}, x.RawMatrix().Data)

	_, err = DenseFromColumns([][]float64{{1, 2}, {3}}, nil)
	assert.ErrorIs(t, err, ErrColumnLenMismatch)
	_, err = DenseFromColumns(nil, nil)
	assert.ErrorIs(t, err, ErrNoDesignMatrix)
	_, err = DenseFromColumns(cols, []int{})
	assert.ErrorIs(t, err, ErrNoDesignMatrix)
}

func BenchmarkOLSFit(b *testing.B) {
	nObs, nFeat := 1000, 100
	cols := make([][]float64, nFeat)
	for j := range cols {
		cols[j] = make([]float64, nObs)
		for i := range cols[j] {
			cols[j][i] = float64((i*(j+3))%97) / 97.0
		}
	}
	y := make([]float64, nObs)
	for i := range y {
		y[i] = float64(i)
	}
	x, err := DenseFromColumns(cols, nil)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		if err := NewOLS(true).Fit(x, y); err != nil {
			b.Fatal(err)
		}
	}
}
