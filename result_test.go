package crossval_test

import (
	"bytes"
	"github.com/hscells/crossval"
	"github.com/mailru/easyjson"
	"reflect"
	"testing"
)

const stored = `{"version":1,"model":"centroid(linear)","criterion":"F1Measure","folds":5,"runs":3,
"mean":0.75,"std_dev":0.125,"run_scores":[0.625,0.75,0.875],"partial":true,"budget_exceeded":true,
"degraded":false,"skipped_folds":0,"skipped_runs":0,"warnings":["slow"],"comment":{"ignored":[1,2]}}`

func TestResultJSON(t *testing.T) {
	var r crossval.Result
	if err := easyjson.Unmarshal([]byte(stored), &r); err != nil {
		t.Fatal(err)
	}
	if r.Mean() != 0.75 || r.StdDev() != 0.125 || !r.Partial() || !r.BudgetExceeded() || r.Degraded() {
		t.Fatalf("got %s partial=%v", r.String(), r.Partial())
	}
	if r.Model() != "centroid(linear)" || r.Criterion() != "F1Measure" || r.Folds() != 5 || r.Runs() != 3 {
		t.Fatalf("got %s %s %d %d", r.Model(), r.Criterion(), r.Folds(), r.Runs())
	}

	b, err := easyjson.Marshal(&r)
	if err != nil {
		t.Fatal(err)
	}
	var again crossval.Result
	if err := easyjson.Unmarshal(b, &again); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, again) {
		t.Fatalf("%s did not survive a round trip", b)
	}
}

func TestResultVersion(t *testing.T) {
	var r crossval.Result
	if err := easyjson.Unmarshal([]byte(`{"version":2,"mean":1}`), &r); err == nil {
		t.Fatal("expected unknown version to be rejected")
	}
	if err := easyjson.Unmarshal([]byte(`{"mean":1}`), &r); err == nil {
		t.Fatal("expected missing version to be rejected")
	}
}

func TestResultPrint(t *testing.T) {
	var r crossval.Result
	if err := easyjson.Unmarshal([]byte(stored), &r); err != nil {
		t.Fatal(err)
	}
	var buff bytes.Buffer
	if err := r.Fprint(&buff); err != nil {
		t.Fatal(err)
	}
	if buff.String() != "0.750000+-0.125000\n" {
		t.Fatalf("got %q", buff.String())
	}

	scores := r.RunScores()
	scores[0] = 100
	if r.RunScores()[0] != 0.625 {
		t.Fatal("run scores can be modified through the accessor")
	}
}
