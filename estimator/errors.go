package estimator

import (
	"fmt"

	"github.com/aouyang1/go-tsestimator/nullmodel"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNoModel        = errors.New("no model provided")
	ErrNilPredictions = errors.New("model returned nil predictions")
	ErrMissingBands   = errors.New("coverage is set but model did not return prediction bands")
)

// ConfigurationError is returned when estimator or null model parameters are unrecognized
// or inconsistent.
type ConfigurationError = nullmodel.ConfigurationError

// NotFittedError is returned when an operation requiring a fitted estimator is called on
// an unfit one.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: this estimator is not fitted yet, call Fit before using %s", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// NewConfigurationError creates a ConfigurationError with a stack trace attached. Models use
// it to reject parameters passed through SetParams.
func NewConfigurationError(param, reason string, value any) error {
	return nullmodel.NewConfigurationError(param, reason, value)
}
