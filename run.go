package crossval

import (
	"context"
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/eval"
	"github.com/hscells/crossval/learning"
	"github.com/hscells/crossval/split"
	"github.com/hscells/crossval/stats"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"sync"
)

// RunResult is the outcome of evaluating every fold of one split.
type RunResult struct {
	Run   int
	Score float64
	// Outcomes of the folds that completed, in fold order.
	Outcomes []eval.Outcome
	// Failures of the folds that were skipped.
	Failures []error
	// Complete is false when the run was interrupted before every fold was evaluated.
	Complete bool
}

// Run evaluates a model on each fold of a split and merges the fold scores into a run score.
//
// When Lock is set the model must be lockable, and folds train and predict against the
// locked state, which they share. Otherwise each fold trains on a clone of the model
// when it is a learning.Cloner, and folds are evaluated one at a time when it is not.
type Run struct {
	Index      int
	Split      split.Split
	Data       dataset.Provider
	Model      learning.Model
	Lock       learning.Locked
	Criterion  eval.Evaluator
	Aggregator stats.Aggregator
	Policy     FailurePolicy
	// Slots bounds how many folds are evaluated at once, across every run sharing it.
	// Nil evaluates one fold at a time.
	Slots    *semaphore.Weighted
	Observer Observer

	// serial guards models that are neither locked nor cloneable.
	serial *sync.Mutex
}

// Evaluate scores every fold. Cancelling ctx stops new folds from starting; folds
// that are already running finish. An interrupted run is merged from the folds that
// completed and reported incomplete, or returns the context error when none did.
func (r *Run) Evaluate(ctx context.Context) (RunResult, error) {
	res := RunResult{Run: r.Index}

	var lockable learning.Lockable
	if r.Lock != nil {
		l, ok := r.Model.(learning.Lockable)
		if !ok {
			return res, errors.Wrapf(ErrLockUnsupported, "run %d: %s", r.Index, r.Model.Name())
		}
		lockable = l
	}
	slots := r.Slots
	if slots == nil {
		slots = semaphore.NewWeighted(1)
	}
	if r.serial == nil {
		r.serial = new(sync.Mutex)
	}
	notify := r.Observer
	if notify == nil {
		notify = func(Event) {}
	}
	if r.Aggregator == nil {
		r.Aggregator = stats.Arithmetic
	}

	var (
		outcomes = make([]*eval.Outcome, len(r.Split))
		failures = make([]error, len(r.Split))
	)
	g, gctx := errgroup.WithContext(ctx)
	launched := 0
	for i := range r.Split {
		// Folds only start between other folds; nothing running is interrupted.
		if gctx.Err() != nil {
			break
		}
		if err := slots.Acquire(gctx, 1); err != nil {
			break
		}
		if gctx.Err() != nil {
			slots.Release(1)
			break
		}
		launched++
		i := i
		g.Go(func() error {
			defer slots.Release(1)
			o, err := r.fold(lockable, i)
			if err != nil {
				notify(Event{Type: FoldFailed, Run: r.Index, Fold: i, Err: err})
				if r.Policy == Abort {
					return err
				}
				failures[i] = err
				return nil
			}
			outcomes[i] = &o
			notify(Event{Type: FoldCompleted, Run: r.Index, Fold: i, Score: o.Score})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	for i := range r.Split {
		if outcomes[i] != nil {
			res.Outcomes = append(res.Outcomes, *outcomes[i])
		}
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
		}
	}
	res.Complete = launched == len(r.Split)

	if len(res.Outcomes) == 0 {
		if !res.Complete {
			return res, ctx.Err()
		}
		return res, &AggregationError{Run: r.Index, Err: errors.New("every fold failed")}
	}

	if m, ok := r.Criterion.(eval.FoldMerger); ok {
		res.Score = m.MergeFolds(res.Outcomes)
		return res, nil
	}
	scores := make([]float64, len(res.Outcomes))
	for i, o := range res.Outcomes {
		scores[i] = o.Score
	}
	score, err := r.Aggregator.MergeFolds(scores)
	if err != nil {
		return res, &AggregationError{Run: r.Index, Err: err}
	}
	res.Score = score
	return res, nil
}

// fold trains and predicts one fold. A panicking model fails the fold rather than the process.
func (r *Run) fold(lockable learning.Lockable, i int) (o eval.Outcome, err error) {
	f := r.Split[i]
	stage := Train
	defer func() {
		if p := recover(); p != nil {
			err = &FoldError{Run: r.Index, Fold: i, Stage: stage, Err: errors.Errorf("panic: %v", p)}
		}
	}()

	var predicted []float64
	if lockable != nil {
		st, err := lockable.TrainLocked(r.Lock, f.Train)
		if err != nil {
			return o, &FoldError{Run: r.Index, Fold: i, Stage: stage, Err: err}
		}
		stage = Predict
		predicted, err = lockable.PredictLocked(r.Lock, st, f.Test)
		if err != nil {
			return o, &FoldError{Run: r.Index, Fold: i, Stage: stage, Err: err}
		}
	} else {
		model := r.Model
		if c, ok := model.(learning.Cloner); ok {
			model = c.Clone()
		} else {
			r.serial.Lock()
			defer r.serial.Unlock()
		}
		st, err := model.Train(r.Data, f.Train)
		if err != nil {
			return o, &FoldError{Run: r.Index, Fold: i, Stage: stage, Err: err}
		}
		stage = Predict
		predicted, err = model.Predict(st, r.Data, f.Test)
		if err != nil {
			return o, &FoldError{Run: r.Index, Fold: i, Stage: stage, Err: err}
		}
	}
	if len(predicted) != len(f.Test) {
		return o, &FoldError{Run: r.Index, Fold: i, Stage: stage,
			Err: errors.Errorf("%d predictions for %d examples", len(predicted), len(f.Test))}
	}

	actual := make([]float64, len(f.Test))
	for j, idx := range f.Test {
		actual[j] = r.Data.Label(idx)
	}
	return eval.Outcome{
		Fold:      i,
		Predicted: predicted,
		Actual:    actual,
		Score:     r.Criterion.Score(predicted, actual),
	}, nil
}
