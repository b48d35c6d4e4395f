package stats_test

import (
	"github.com/hscells/crossval/stats"
	"github.com/pkg/errors"
	"math"
	"math/rand"
	"testing"
)

func TestMergeFolds(t *testing.T) {
	m, err := stats.Arithmetic.MergeFolds([]float64{0.5, 0.75, 1})
	if err != nil {
		t.Fatal(err)
	}
	if m != 0.75 {
		t.Fatalf("got %v", m)
	}
	if _, err := stats.Arithmetic.MergeFolds(nil); !errors.Is(err, stats.ErrNoScores) {
		t.Fatalf("expected no scores, got %v", err)
	}
}

func TestMergeRuns(t *testing.T) {
	mean, std, err := stats.Arithmetic.MergeRuns([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatal(err)
	}
	if mean != 5 {
		t.Fatalf("mean %v", mean)
	}
	// Sample standard deviation divides by n-1.
	if math.Abs(std-math.Sqrt(32.0/7.0)) > 1e-12 {
		t.Fatalf("std %v", std)
	}
}

func TestMergeSingleRun(t *testing.T) {
	mean, std, err := stats.Arithmetic.MergeRuns([]float64{0.3})
	if err != nil {
		t.Fatal(err)
	}
	if mean != 0.3 || std != 0 {
		t.Fatalf("got %v %v", mean, std)
	}
	if _, _, err := stats.Arithmetic.MergeRuns(nil); !errors.Is(err, stats.ErrNoScores) {
		t.Fatalf("expected no scores, got %v", err)
	}
}

func TestMeanBounds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		scores := make([]float64, 1+r.Intn(20))
		for j := range scores {
			scores[j] = 0.1 + r.Float64()*1e-9
		}
		mean, _, err := stats.Arithmetic.MergeRuns(scores)
		if err != nil {
			t.Fatal(err)
		}
		min, max := scores[0], scores[0]
		for _, s := range scores {
			min = math.Min(min, s)
			max = math.Max(max, s)
		}
		if mean < min || mean > max {
			t.Fatalf("mean %v outside [%v, %v]", mean, min, max)
		}
	}
}
