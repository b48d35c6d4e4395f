package crossval

import (
	"context"
	"fmt"
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/eval"
	"github.com/hscells/crossval/learning"
	"github.com/hscells/crossval/split"
	"github.com/hscells/crossval/stats"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"log"
	"sync"
	"time"
)

// State is where an engine is in its lifecycle.
type State uint8

const (
	// Unconfigured engines are missing a required setting.
	Unconfigured State = iota
	// Configured engines can be evaluated.
	Configured
	// Evaluating engines are running an evaluation.
	Evaluating
	// Completed engines hold the result of their last evaluation.
	Completed
	// Failed engines hold the error of their last evaluation.
	Failed
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Evaluating:
		return "evaluating"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", s)
}

// Engine cross-validates a model: it splits a dataset into folds, trains and scores the
// model on each fold, and repeats this for a number of runs. An engine is configured
// through its setters (or the options to New) and can be evaluated any number of times;
// changing a setting after an evaluation prepares the engine for the next one.
type Engine struct {
	mu    sync.Mutex
	state State

	model     learning.Model
	features  [][]float64
	labels    []float64
	data      dataset.Provider
	strategy  split.Strategy
	cache     split.Cacher
	criterion eval.Evaluator

	autolock    bool
	runs        int
	folds       int
	seed        *int64
	splits      SplitPolicy
	failures    FailurePolicy
	parallelism int
	budget      time.Duration
	aggregator  stats.Aggregator
	observer    Observer
	logger      *log.Logger

	result *Result
	err    error
}

// NewEngine creates an engine with the default settings: autolock on, one run,
// abort on failure, automatic split reuse, a parallelism of one, no budget and
// arithmetic aggregation. Options are applied in order.
func NewEngine(options ...func(*Engine)) *Engine {
	e := &Engine{
		autolock:    true,
		runs:        1,
		parallelism: 1,
		aggregator:  stats.Arithmetic,
		logger:      log.Default(),
	}
	for _, option := range options {
		option(e)
	}
	e.refresh()
	return e
}

// New creates an engine for a model, dataset, splitting strategy and criterion.
// The number of folds must still be set, e.g. with the NumFolds option.
func New(model learning.Model, data dataset.Provider, strategy split.Strategy, criterion eval.Evaluator, options ...func(*Engine)) *Engine {
	return NewEngine(append([]func(*Engine){
		Model(model),
		Data(data),
		Strategy(strategy),
		Criterion(criterion),
	}, options...)...)
}

// Model sets the model to evaluate.
func Model(m learning.Model) func(*Engine) {
	return func(e *Engine) {
		e.model = m
	}
}

// Data sets the dataset the model is evaluated on.
func Data(p dataset.Provider) func(*Engine) {
	return func(e *Engine) {
		e.data = p
		e.features, e.labels = nil, nil
	}
}

// Strategy sets how the dataset is split into folds.
func Strategy(s split.Strategy) func(*Engine) {
	return func(e *Engine) {
		e.strategy = s
	}
}

// SplitCache caches seeded splits.
func SplitCache(c split.Cacher) func(*Engine) {
	return func(e *Engine) {
		e.cache = c
	}
}

// Criterion sets how the predictions of a fold are scored.
func Criterion(c eval.Evaluator) func(*Engine) {
	return func(e *Engine) {
		e.criterion = c
	}
}

// Autolock sets whether lockable models are locked for the evaluation.
func Autolock(b bool) func(*Engine) {
	return func(e *Engine) {
		e.autolock = b
	}
}

// NumRuns sets how many times the cross-validation is repeated.
func NumRuns(n int) func(*Engine) {
	return func(e *Engine) {
		e.runs = n
	}
}

// NumFolds sets the number of folds of each run.
func NumFolds(k int) func(*Engine) {
	return func(e *Engine) {
		e.folds = k
	}
}

// Seed makes splitting reproducible.
func Seed(s int64) func(*Engine) {
	return func(e *Engine) {
		e.seed = &s
	}
}

// Splits sets whether runs share a split.
func Splits(p SplitPolicy) func(*Engine) {
	return func(e *Engine) {
		e.splits = p
	}
}

// Failures sets what happens when a fold fails.
func Failures(p FailurePolicy) func(*Engine) {
	return func(e *Engine) {
		e.failures = p
	}
}

// Parallelism sets how many runs, and how many folds across those runs, are evaluated at once.
func Parallelism(n int) func(*Engine) {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// Budget bounds the wall clock time of an evaluation. Zero means no bound.
func Budget(d time.Duration) func(*Engine) {
	return func(e *Engine) {
		e.budget = d
	}
}

// Aggregate sets how fold and run scores are merged.
func Aggregate(a stats.Aggregator) func(*Engine) {
	return func(e *Engine) {
		e.aggregator = a
	}
}

// Observe sets an observer for the events of an evaluation.
func Observe(o Observer) func(*Engine) {
	return func(e *Engine) {
		e.observer = o
	}
}

// Logger sets where warnings and progress are logged.
func Logger(l *log.Logger) func(*Engine) {
	return func(e *Engine) {
		e.logger = l
	}
}

func (e *Engine) set(option func(*Engine)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	option(e)
	e.refresh()
}

// refresh recomputes the state after a setting changed. A running evaluation works on
// a copy of the settings, so its state is left alone.
func (e *Engine) refresh() {
	if e.state == Evaluating {
		return
	}
	if len(e.missing()) == 0 {
		e.state = Configured
	} else {
		e.state = Unconfigured
	}
}

// SetModel sets the model to evaluate.
func (e *Engine) SetModel(m learning.Model) { e.set(Model(m)) }

// SetFeatures sets the feature vectors of the dataset. It replaces any dataset set with SetDataset.
func (e *Engine) SetFeatures(features [][]float64) {
	e.set(func(e *Engine) {
		e.features = features
		e.data = nil
	})
}

// SetLabels sets the labels of the dataset. It replaces any dataset set with SetDataset.
func (e *Engine) SetLabels(labels []float64) {
	e.set(func(e *Engine) {
		e.labels = labels
		e.data = nil
	})
}

// SetDataset sets the dataset, replacing any features and labels.
func (e *Engine) SetDataset(p dataset.Provider) { e.set(Data(p)) }

// SetSplittingStrategy sets how the dataset is split into folds.
func (e *Engine) SetSplittingStrategy(s split.Strategy) { e.set(Strategy(s)) }

// SetSplitCache caches seeded splits.
func (e *Engine) SetSplitCache(c split.Cacher) { e.set(SplitCache(c)) }

// SetCriterion sets how the predictions of a fold are scored.
func (e *Engine) SetCriterion(c eval.Evaluator) { e.set(Criterion(c)) }

// SetAutolock sets whether lockable models are locked. It defaults to true.
func (e *Engine) SetAutolock(b bool) { e.set(Autolock(b)) }

// SetNumRuns sets how many times the cross-validation is repeated. It defaults to one.
func (e *Engine) SetNumRuns(n int) { e.set(NumRuns(n)) }

// SetNumFolds sets the number of folds, between two and the number of examples.
func (e *Engine) SetNumFolds(k int) { e.set(NumFolds(k)) }

// SetSeed makes splitting reproducible.
func (e *Engine) SetSeed(s int64) { e.set(Seed(s)) }

// ClearSeed makes splitting draw from the global random source.
func (e *Engine) ClearSeed() {
	e.set(func(e *Engine) {
		e.seed = nil
	})
}

// SetSplitPolicy sets whether runs share a split.
func (e *Engine) SetSplitPolicy(p SplitPolicy) { e.set(Splits(p)) }

// SetFailurePolicy sets what happens when a fold fails.
func (e *Engine) SetFailurePolicy(p FailurePolicy) { e.set(Failures(p)) }

// SetParallelism sets how many runs and folds are evaluated at once.
func (e *Engine) SetParallelism(n int) { e.set(Parallelism(n)) }

// SetBudget bounds the wall clock time of an evaluation.
func (e *Engine) SetBudget(d time.Duration) { e.set(Budget(d)) }

// SetAggregator sets how fold and run scores are merged.
func (e *Engine) SetAggregator(a stats.Aggregator) { e.set(Aggregate(a)) }

// SetObserver sets an observer for the events of an evaluation.
func (e *Engine) SetObserver(o Observer) { e.set(Observe(o)) }

// SetLogger sets where warnings and progress are logged.
func (e *Engine) SetLogger(l *log.Logger) { e.set(Logger(l)) }

// State is where the engine is in its lifecycle.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result is the result of the last evaluation, if it completed.
func (e *Engine) Result() (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.err
}

func (e *Engine) missing() []string {
	var m []string
	if e.model == nil {
		m = append(m, "model")
	}
	if e.data == nil {
		if e.features == nil {
			m = append(m, "features")
		}
		if e.labels == nil {
			m = append(m, "labels")
		}
	}
	if e.strategy == nil {
		m = append(m, "splitting strategy")
	}
	if e.criterion == nil {
		m = append(m, "criterion")
	}
	if e.folds == 0 {
		m = append(m, "number of folds")
	}
	return m
}

// snapshot validates the settings and copies them for an evaluation.
func (e *Engine) snapshot() (*evaluation, error) {
	cerr := &ConfigurationError{Missing: e.missing()}

	data := e.data
	if data == nil && e.features != nil && e.labels != nil {
		d, err := dataset.New(e.features, e.labels)
		if err != nil {
			cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("dataset: %v", err))
		} else {
			data = d
		}
	}
	if e.runs < 1 {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("number of runs %d, must be at least 1", e.runs))
	}
	if e.folds != 0 && e.folds < 2 {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("number of folds %d, must be at least 2", e.folds))
	}
	if e.parallelism < 1 {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("parallelism %d, must be at least 1", e.parallelism))
	}
	if e.budget < 0 {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("budget %v, must not be negative", e.budget))
	}
	if e.aggregator == nil {
		cerr.Invalid = append(cerr.Invalid, "no aggregator")
	}
	if !cerr.empty() {
		return nil, cerr
	}

	strategy := e.strategy
	if e.cache != nil {
		strategy = split.Cached(strategy, e.cache)
	}
	var seed *int64
	if e.seed != nil {
		s := *e.seed
		seed = &s
	}
	logger := e.logger
	if logger == nil {
		logger = log.Default()
	}
	return &evaluation{
		model:       e.model,
		data:        data,
		strategy:    strategy,
		criterion:   e.criterion,
		autolock:    e.autolock,
		runs:        e.runs,
		folds:       e.folds,
		seed:        seed,
		splits:      e.splits,
		failures:    e.failures,
		parallelism: e.parallelism,
		budget:      e.budget,
		aggregator:  e.aggregator,
		notify:      e.observer.serialised(),
		logger:      logger,
	}, nil
}

// Evaluate cross-validates the model.
//
// Misconfiguration and splitting errors are returned before any fold is evaluated.
// A lockable model is locked once for the whole evaluation when autolock is set, and
// unlocked before Evaluate returns, however it returns. Under the Abort policy the first
// failed fold ends the evaluation with a *RunError. When ctx is cancelled or the budget
// runs out, no new folds or runs are started and the completed ones are returned as a
// partial result.
func (e *Engine) Evaluate(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	if e.state == Evaluating {
		e.mu.Unlock()
		return nil, ErrEvaluating
	}
	ev, err := e.snapshot()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.state = Evaluating
	e.mu.Unlock()

	res, err := ev.safely(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.result, e.err = res, err
	if err != nil {
		e.state = Failed
	} else {
		e.state = Completed
	}
	return res, err
}

// evaluation is a snapshot of the settings of an engine.
type evaluation struct {
	model       learning.Model
	data        dataset.Provider
	strategy    split.Strategy
	criterion   eval.Evaluator
	autolock    bool
	runs        int
	folds       int
	seed        *int64
	splits      SplitPolicy
	failures    FailurePolicy
	parallelism int
	budget      time.Duration
	aggregator  stats.Aggregator
	notify      Observer
	logger      *log.Logger
}

// safely evaluates, turning a panic in a strategy, criterion or aggregator into an error
// so the engine never stays in the Evaluating state.
func (ev *evaluation) safely(ctx context.Context) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, errors.Errorf("evaluation panicked: %v", p)
		}
	}()
	return ev.evaluate(ctx)
}

// lock locks the model, turning a panic into an error.
func (ev *evaluation) lock(lockable learning.Lockable) (locked learning.Locked, err error) {
	defer func() {
		if p := recover(); p != nil {
			locked, err = nil, errors.Errorf("panic: %v", p)
		}
	}()
	return lockable.Lock(ev.data)
}

// split builds the split of every run up front, so that a strategy that cannot
// split the dataset fails before any work is done.
func (ev *evaluation) split() ([]split.Split, error) {
	n := ev.data.Len()
	reuse := ev.splits.reuse(ev.seed != nil)
	splits := make([]split.Split, ev.runs)
	for r := range splits {
		if reuse && r > 0 {
			splits[r] = splits[0]
			continue
		}
		seed := ev.seed
		if seed != nil && r > 0 {
			s := *seed + int64(r)
			seed = &s
		}
		s, err := ev.strategy.Build(n, ev.folds, seed)
		if err != nil {
			return nil, errors.Wrapf(err, "run %d", r)
		}
		if len(s) != ev.folds {
			return nil, &split.Error{Strategy: ev.strategy.Name(), N: n, K: ev.folds, Reason: fmt.Sprintf("built %d folds", len(s))}
		}
		if err := split.Check(s, n); err != nil {
			return nil, &split.Error{Strategy: ev.strategy.Name(), N: n, K: ev.folds, Reason: err.Error()}
		}
		splits[r] = s
	}
	return splits, nil
}

func (ev *evaluation) evaluate(parent context.Context) (res *Result, err error) {
	splits, err := ev.split()
	if err != nil {
		return nil, err
	}

	ctx := parent
	if ev.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, ev.budget)
		defer cancel()
	}

	var (
		locked   learning.Locked
		warnings []string
	)
	if ev.autolock {
		if lockable, ok := learning.IsLockable(ev.model); ok {
			locked, err = ev.lock(lockable)
			if err != nil {
				return nil, errors.Wrapf(err, "locking %s", ev.model.Name())
			}
			ev.notify(Event{Type: LockAcquired, Run: -1, Fold: -1})
			defer func() {
				uerr := lockable.Unlock(locked)
				ev.notify(Event{Type: LockReleased, Run: -1, Fold: -1, Err: uerr})
				if uerr != nil {
					ev.logger.Printf("unlocking %s: %v", ev.model.Name(), uerr)
					if err == nil {
						res, err = nil, errors.Wrapf(uerr, "unlocking %s", ev.model.Name())
					}
				}
			}()
		} else {
			w := errors.Wrap(ErrLockUnsupported, ev.model.Name())
			ev.logger.Printf("%v, evaluating unlocked", w)
			warnings = append(warnings, w.Error())
			ev.notify(Event{Type: LockUnsupported, Run: -1, Fold: -1, Err: w})
		}
	}

	var (
		slots   = semaphore.NewWeighted(int64(ev.parallelism))
		serial  = new(sync.Mutex)
		results = make([]*RunResult, ev.runs)
		skipped = make([]bool, ev.runs)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ev.parallelism)
	for i := 0; i < ev.runs; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = &RunError{Run: i, Err: errors.Errorf("panic: %v", p)}
				}
			}()
			// Runs only start between other runs.
			if gctx.Err() != nil {
				return nil
			}
			ev.notify(Event{Type: RunStarted, Run: i, Fold: -1})
			run := &Run{
				Index:      i,
				Split:      splits[i],
				Data:       ev.data,
				Model:      ev.model,
				Lock:       locked,
				Criterion:  ev.criterion,
				Aggregator: ev.aggregator,
				Policy:     ev.failures,
				Slots:      slots,
				Observer:   ev.notify,
				serial:     serial,
			}
			rr, err := run.Evaluate(gctx)
			if err != nil {
				if gctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
					return nil
				}
				if errors.Is(err, ErrAggregation) && ev.failures == SkipFold {
					ev.logger.Printf("run %d: %v, skipping run", i, err)
					ev.notify(Event{Type: RunSkipped, Run: i, Fold: -1, Err: err})
					results[i] = &rr
					skipped[i] = true
					return nil
				}
				return &RunError{Run: i, Err: err}
			}
			for _, f := range rr.Failures {
				ev.logger.Printf("skipping %v", f)
			}
			results[i] = &rr
			ev.notify(Event{Type: RunCompleted, Run: i, Fold: -1, Score: rr.Score})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res = &Result{
		model:     ev.model.Name(),
		criterion: ev.criterion.Name(),
		folds:     ev.folds,
		runs:      ev.runs,
		warnings:  warnings,
	}
	var scores []float64
	for i, rr := range results {
		if rr == nil {
			res.partial = true
			continue
		}
		res.skippedFolds += len(rr.Failures)
		if skipped[i] {
			res.skippedRuns++
			continue
		}
		if !rr.Complete {
			res.partial = true
		}
		scores = append(scores, rr.Score)
	}
	res.degraded = res.skippedFolds > 0 || res.skippedRuns > 0
	res.runScores = scores
	if res.partial {
		res.budget = parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded)
	}

	if len(scores) == 0 {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "evaluation stopped before any fold completed")
		}
		return nil, &AggregationError{Run: -1, Err: errors.Wrap(stats.ErrNoScores, "every run failed")}
	}
	res.mean, res.stdDev, err = ev.aggregator.MergeRuns(scores)
	if err != nil {
		return nil, &AggregationError{Run: -1, Err: err}
	}
	if res.partial {
		ev.logger.Printf("partial result from %d of %d runs: %s", len(scores), ev.runs, res)
	}
	return res, nil
}
