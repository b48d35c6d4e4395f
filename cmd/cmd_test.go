package cmd_test

import (
	"context"
	"github.com/hscells/crossval/cmd"
	"github.com/hscells/crossval/learning"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadToml(t *testing.T) {
	c, err := cmd.LoadConfig(write(t, "eval.toml", `
folds = 3
runs = 4
seed = 7
model = "majority"
budget = "2s"

[elasticsearch]
hosts = ["http://localhost:9200"]
index = "examples"
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Folds != 3 || c.Runs != 4 || !c.Seeded || c.Seed != 7 || c.Model != "majority" {
		t.Fatalf("got %+v", c)
	}
	if c.Thresholded || !c.Autolock || c.Criterion != "Accuracy" {
		t.Fatalf("defaults lost: %+v", c)
	}
	if c.Elasticsearch.Index != "examples" || len(c.Elasticsearch.Hosts) != 1 || c.Elasticsearch.LabelField != "label" {
		t.Fatalf("got %+v", c.Elasticsearch)
	}
	if d, err := c.BudgetDuration(); err != nil || d != 2*time.Second {
		t.Fatalf("got %v %v", d, err)
	}
}

func TestLoadProperties(t *testing.T) {
	c, err := cmd.LoadConfig(write(t, "eval.properties", `
folds = 2
threshold = 0.5
criterion = F1Measure
autolock = false
budget = 1m
elasticsearch.hosts = http://a:9200, http://b:9200
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Folds != 2 || c.Runs != 1 || c.Seeded || !c.Thresholded || c.Threshold != 0.5 || c.Autolock {
		t.Fatalf("got %+v", c)
	}
	if c.Budget != "1m0s" || len(c.Elasticsearch.Hosts) != 2 || c.Elasticsearch.Hosts[1] != "http://b:9200" {
		t.Fatalf("got %+v", c)
	}
	e, err := cmd.NewCriterion(c)
	if err != nil || e.Name() != "F1Measure@0.5" {
		t.Fatalf("got %v %v", e, err)
	}
}

func TestLoadConfigUnknown(t *testing.T) {
	if _, err := cmd.LoadConfig(write(t, "eval.yaml", "folds: 2")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewModel(t *testing.T) {
	c := cmd.DefaultConfig()
	m, err := cmd.NewModel(c)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := learning.IsLockable(m); !ok {
		t.Fatalf("%s should be lockable", m.Name())
	}

	c.Model = "majority"
	if m, err = cmd.NewModel(c); err != nil || m.Name() != "majority" {
		t.Fatalf("got %v %v", m, err)
	}

	c.Model = "centroid"
	c.Kernel = "gaussian"
	c.KernelParam = -1
	if _, err := cmd.NewModel(c); err == nil {
		t.Fatal("expected an invalid kernel")
	}
	c.Model = "forest"
	if _, err := cmd.NewModel(c); err == nil {
		t.Fatal("expected an unknown model")
	}
}

func TestRunFromConfig(t *testing.T) {
	path := write(t, "data.libsvm", `0 1:0
1 1:1
0 1:2
0 1:3
1 1:4
0 1:5
1 1:6
0 1:7
0 1:8
1 1:9
`)
	c := cmd.DefaultConfig()
	c.Model = "majority"
	c.Seed, c.Seeded = 42, true
	c.Runs = 2
	c.Stratified = true
	c.SplitCache = filepath.Join(t.TempDir(), "splits")

	d, err := cmd.LoadDataset(context.Background(), c, path)
	if err != nil {
		t.Fatal(err)
	}
	e, err := cmd.NewEngine(c, d)
	if err != nil {
		t.Fatal(err)
	}
	r, err := e.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.Mean() != 0.6 || r.Partial() || len(r.RunScores()) != 2 {
		t.Fatalf("got %s", r)
	}

	c.Failures = "sometimes"
	if _, err := cmd.NewEngine(c, d); err == nil {
		t.Fatal("expected an unknown policy")
	}
}

func TestLoadDatasetMissing(t *testing.T) {
	if _, err := cmd.LoadDataset(context.Background(), cmd.DefaultConfig(), ""); err == nil {
		t.Fatal("expected an error without a dataset")
	}
}
