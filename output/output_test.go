package output_test

import (
	"context"
	"github.com/hscells/crossval"
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/eval"
	"github.com/hscells/crossval/learning"
	"github.com/hscells/crossval/output"
	"github.com/hscells/crossval/split"
	"github.com/pkg/errors"
	"io"
	"log"
	"strings"
	"testing"
)

func result(t *testing.T) *crossval.Result {
	labels := []float64{0, 1, 0, 0, 1, 0, 1, 0, 0, 1}
	features := make([][]float64, len(labels))
	for i := range features {
		features[i] = []float64{float64(i)}
	}
	d, err := dataset.New(features, labels)
	if err != nil {
		t.Fatal(err)
	}
	e := crossval.New(learning.MajorityClass{}, d, split.KFold, eval.Accuracy,
		crossval.NumFolds(5),
		crossval.NumRuns(2),
		crossval.Seed(42),
		crossval.Logger(log.New(io.Discard, "", 0)))
	r, err := e.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFormatters(t *testing.T) {
	r := result(t)

	s, err := output.PlainFormatter(r)
	if err != nil || s != "0.600000+-0.000000" {
		t.Fatalf("plain %q %v", s, err)
	}

	s, err = output.CsvFormatter(r)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) != 5 || lines[0] != "Run,Accuracy" || lines[1] != "0,0.6" || lines[3] != "Mean,0.6" {
		t.Fatalf("csv %q", s)
	}

	s, err = output.JsonFormatter(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s, `{"version":1,`) {
		t.Fatalf("json %s", s)
	}

	if _, err := output.LookupFormatter("xml"); err == nil {
		t.Fatal("expected unknown format")
	}
	for name := range output.Formatters {
		if _, err := output.LookupFormatter(name); err != nil {
			t.Fatal(err)
		}
	}
}

func TestStore(t *testing.T) {
	r := result(t)
	s := output.NewStore(t.TempDir())

	id, err := s.Put(r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != r.String() || len(got.RunScores()) != 2 || got.Criterion() != "Accuracy" {
		t.Fatalf("got %s", got)
	}

	if ids := s.IDs(); len(ids) != 1 || ids[0] != id {
		t.Fatalf("got ids %v", ids)
	}
	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(id); !errors.Is(err, output.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, output.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
