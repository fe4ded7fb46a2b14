package models

import "github.com/cockroachdb/errors"

var (
	ErrNotFitted          = errors.New("regression has not been fit")
	ErrNoDesignMatrix     = errors.New("design matrix is nil")
	ErrTargetLenMismatch  = errors.New("target length differs from design matrix rows")
	ErrFeatureLenMismatch = errors.New("design matrix columns differ from fitted coefficients")
	ErrUnderdetermined    = errors.New("fewer observations than features")
	ErrColumnLenMismatch  = errors.New("columns have different lengths")
	ErrWeightLenMismatch  = errors.New("weights length differs from design matrix rows")
	ErrInvalidWeight      = errors.New("weights must be finite and non-negative")
)
