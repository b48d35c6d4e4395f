package crossval

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

var (
	// ErrConfiguration matches a *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")
	// ErrTrainingFailure matches a *FoldError raised while training.
	ErrTrainingFailure = errors.New("training failure")
	// ErrAggregation matches an *AggregationError.
	ErrAggregation = errors.New("aggregation error")
	// ErrLockUnsupported is the warning recorded when autolock is requested for a model that cannot be locked.
	ErrLockUnsupported = errors.New("model is not lockable")
	// ErrEvaluating is returned when Evaluate is called on an engine that is already evaluating.
	ErrEvaluating = errors.New("evaluation already in progress")
)

// ConfigurationError lists every setting that is missing or invalid. No work is
// done when an evaluation is misconfigured.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, "; "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// Stage is the step of a fold that failed.
type Stage uint8

const (
	// Train is training the model on the train set.
	Train Stage = iota
	// Predict is predicting the test set.
	Predict
)

func (s Stage) String() string {
	switch s {
	case Train:
		return "train"
	case Predict:
		return "predict"
	}
	return fmt.Sprintf("stage(%d)", s)
}

// FoldError is a fold that could not be evaluated.
type FoldError struct {
	Run   int
	Fold  int
	Stage Stage
	Err   error
}

func (e *FoldError) Error() string {
	return fmt.Sprintf("run %d fold %d: %s: %v", e.Run, e.Fold, e.Stage, e.Err)
}

func (e *FoldError) Unwrap() error {
	return e.Err
}

// Is reports a training failure when the fold failed during training.
func (e *FoldError) Is(target error) bool {
	return target == ErrTrainingFailure && e.Stage == Train
}

// RunError is a run that was aborted, along with the reason.
type RunError struct {
	Run int
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d failed: %v", e.Run, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// AggregationError is returned when there are no scores to merge, e.g. every fold of a run failed.
// Run is -1 when the run scores themselves could not be merged.
type AggregationError struct {
	Run int
	Err error
}

func (e *AggregationError) Error() string {
	if e.Run < 0 {
		return fmt.Sprintf("aggregation error: %v", e.Err)
	}
	return fmt.Sprintf("aggregation error in run %d: %v", e.Run, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

func (e *AggregationError) Is(target error) bool {
	return target == ErrAggregation
}
