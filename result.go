package crossval

import (
	"fmt"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"github.com/pkg/errors"
	"io"
	"os"
)

// ResultVersion is the version of the serialised form of a Result.
const ResultVersion = 1

// Result is the summary of an evaluation. It cannot be modified once Evaluate returns it.
type Result struct {
	model        string
	criterion    string
	folds        int
	runs         int
	mean         float64
	stdDev       float64
	runScores    []float64
	partial      bool
	budget       bool
	degraded     bool
	skippedFolds int
	skippedRuns  int
	warnings     []string
}

// Mean is the mean of the run scores.
func (r *Result) Mean() float64 { return r.mean }

// StdDev is the sample standard deviation of the run scores, or zero for a single run.
func (r *Result) StdDev() float64 { return r.stdDev }

// RunScores is the score of each run that contributed, in run order.
func (r *Result) RunScores() []float64 {
	return append([]float64(nil), r.runScores...)
}

// Partial reports whether the evaluation was stopped before every run completed.
func (r *Result) Partial() bool { return r.partial }

// BudgetExceeded reports whether the evaluation was stopped by its wall clock budget.
func (r *Result) BudgetExceeded() bool { return r.budget }

// Degraded reports whether any folds or runs were skipped after failing.
func (r *Result) Degraded() bool { return r.degraded }

// SkippedFolds is the number of failed folds left out of the result.
func (r *Result) SkippedFolds() int { return r.skippedFolds }

// SkippedRuns is the number of runs left out of the result because every one of their folds failed.
func (r *Result) SkippedRuns() int { return r.skippedRuns }

// Warnings are the non-fatal problems met during the evaluation.
func (r *Result) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// Model is the name of the evaluated model.
func (r *Result) Model() string { return r.model }

// Criterion is the name of the scoring criterion.
func (r *Result) Criterion() string { return r.criterion }

// Folds is the number of folds per run.
func (r *Result) Folds() int { return r.folds }

// Runs is the number of runs that were requested.
func (r *Result) Runs() int { return r.runs }

// String formats the result as <mean>+-<std dev>.
func (r *Result) String() string {
	return fmt.Sprintf("%f+-%f", r.mean, r.stdDev)
}

// Fprint writes the formatted result and a newline to w.
func (r *Result) Fprint(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.String())
	return err
}

// PrintResult writes the formatted result to standard output.
func (r *Result) PrintResult() {
	_ = r.Fprint(os.Stdout)
}

// MarshalEasyJSON writes the fields of a result in a fixed order, tagged with ResultVersion.
func (r *Result) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"version":`)
	w.Int(ResultVersion)
	w.RawString(`,"model":`)
	w.String(r.model)
	w.RawString(`,"criterion":`)
	w.String(r.criterion)
	w.RawString(`,"folds":`)
	w.Int(r.folds)
	w.RawString(`,"runs":`)
	w.Int(r.runs)
	w.RawString(`,"mean":`)
	w.Float64(r.mean)
	w.RawString(`,"std_dev":`)
	w.Float64(r.stdDev)
	w.RawString(`,"run_scores":[`)
	for i, s := range r.runScores {
		if i > 0 {
			w.RawByte(',')
		}
		w.Float64(s)
	}
	w.RawString(`],"partial":`)
	w.Bool(r.partial)
	w.RawString(`,"budget_exceeded":`)
	w.Bool(r.budget)
	w.RawString(`,"degraded":`)
	w.Bool(r.degraded)
	w.RawString(`,"skipped_folds":`)
	w.Int(r.skippedFolds)
	w.RawString(`,"skipped_runs":`)
	w.Int(r.skippedRuns)
	w.RawString(`,"warnings":[`)
	for i, s := range r.warnings {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(s)
	}
	w.RawString(`]}`)
}

// UnmarshalEasyJSON reads a result written by MarshalEasyJSON. Unknown fields are
// ignored; a missing or unknown version is an error.
func (r *Result) UnmarshalEasyJSON(l *jlexer.Lexer) {
	var version int
	*r = Result{}
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeString()
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		switch key {
		case "version":
			version = l.Int()
		case "model":
			r.model = l.String()
		case "criterion":
			r.criterion = l.String()
		case "folds":
			r.folds = l.Int()
		case "runs":
			r.runs = l.Int()
		case "mean":
			r.mean = l.Float64()
		case "std_dev":
			r.stdDev = l.Float64()
		case "run_scores":
			l.Delim('[')
			r.runScores = []float64{}
			for !l.IsDelim(']') {
				r.runScores = append(r.runScores, l.Float64())
				l.WantComma()
			}
			l.Delim(']')
		case "partial":
			r.partial = l.Bool()
		case "budget_exceeded":
			r.budget = l.Bool()
		case "degraded":
			r.degraded = l.Bool()
		case "skipped_folds":
			r.skippedFolds = l.Int()
		case "skipped_runs":
			r.skippedRuns = l.Int()
		case "warnings":
			l.Delim('[')
			for !l.IsDelim(']') {
				r.warnings = append(r.warnings, l.String())
				l.WantComma()
			}
			l.Delim(']')
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
	if l.Ok() && version != ResultVersion {
		l.AddError(errors.Errorf("unsupported result version %d", version))
	}
}

// MarshalJSON supports json.Marshaler interface.
func (r *Result) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	r.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

// UnmarshalJSON supports json.Unmarshaler interface.
func (r *Result) UnmarshalJSON(data []byte) error {
	l := jlexer.Lexer{Data: data}
	r.UnmarshalEasyJSON(&l)
	l.Consumed()
	return l.Error()
}
