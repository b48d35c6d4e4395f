package cmd

import (
	"context"
	"github.com/hscells/crossval"
	"github.com/hscells/crossval/dataset"
	"github.com/hscells/crossval/eval"
	"github.com/hscells/crossval/learning"
	"github.com/hscells/crossval/split"
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
	"os"
	"strings"
)

// Models are the names of the models a configuration may ask for.
var Models = []string{"majority", "centroid", "centroid-margin"}

// NewModel creates a model by name.
func NewModel(c Config) (learning.Model, error) {
	switch c.Model {
	case "majority":
		return learning.MajorityClass{}, nil
	case "centroid", "centroid-margin":
		k, err := learning.NewKernel(c.Kernel, c.KernelParam)
		if err != nil {
			return nil, err
		}
		m := learning.NewKernelNearestCentroid(k)
		m.Margin = c.Model == "centroid-margin"
		return m, nil
	}
	return nil, errors.Errorf("unknown model %q, expected one of %s", c.Model, strings.Join(Models, ", "))
}

// NewCriterion looks up the scoring criterion, thresholding it if asked to.
func NewCriterion(c Config) (eval.Evaluator, error) {
	e, ok := eval.Lookup(c.Criterion)
	if !ok {
		return nil, errors.Errorf("unknown criterion %q, expected one of %s", c.Criterion, strings.Join(eval.Names(), ", "))
	}
	if c.Thresholded {
		return eval.NewThresholdEvaluator(e, c.Threshold), nil
	}
	return e, nil
}

// NewStrategy picks k-fold or stratified splitting over the labels of d.
func NewStrategy(c Config, d dataset.Provider) (split.Strategy, error) {
	var s split.Strategy = split.KFold
	if c.Stratified {
		s = split.NewStratified(dataset.Labels(d))
	}
	if len(c.SplitCache) > 0 {
		if err := os.MkdirAll(c.SplitCache, 0755); err != nil {
			return nil, err
		}
		s = split.Cached(s, split.NewDiskvCache(diskv.New(diskv.Options{
			BasePath:     c.SplitCache,
			Transform:    split.BlockTransform(8),
			CacheSizeMax: 1 << 24,
		})))
	}
	return s, nil
}

// LoadDataset reads the dataset from a libsvm file, or from Elasticsearch when no file is given.
func LoadDataset(ctx context.Context, c Config, path string) (*dataset.Dataset, error) {
	if len(path) > 0 {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dataset.ReadLibSVM(f)
	}
	es := c.Elasticsearch
	if len(es.Index) == 0 {
		return nil, errors.New("no dataset file or elasticsearch index")
	}
	options := []func(*dataset.ElasticsearchSource){
		dataset.ElasticsearchIndex(es.Index),
		dataset.ElasticsearchFields(es.FeatureField, es.LabelField),
	}
	if len(es.Hosts) > 0 {
		options = append(options, dataset.ElasticsearchHosts(es.Hosts...))
	}
	return dataset.NewElasticsearchSource(options...).Load(ctx)
}

// Options are the engine options for everything in c except the model, data, strategy and criterion.
func (c Config) Options() ([]func(*crossval.Engine), error) {
	failures, err := crossval.ParseFailurePolicy(c.Failures)
	if err != nil {
		return nil, err
	}
	splits, err := crossval.ParseSplitPolicy(c.Splits)
	if err != nil {
		return nil, err
	}
	budget, err := c.BudgetDuration()
	if err != nil {
		return nil, err
	}
	options := []func(*crossval.Engine){
		crossval.NumFolds(c.Folds),
		crossval.NumRuns(c.Runs),
		crossval.Autolock(c.Autolock),
		crossval.Parallelism(c.Parallelism),
		crossval.Failures(failures),
		crossval.Splits(splits),
		crossval.Budget(budget),
	}
	if c.Seeded {
		options = append(options, crossval.Seed(c.Seed))
	}
	return options, nil
}

// NewEngine creates an engine for everything c describes over the dataset d.
func NewEngine(c Config, d dataset.Provider, options ...func(*crossval.Engine)) (*crossval.Engine, error) {
	model, err := NewModel(c)
	if err != nil {
		return nil, err
	}
	criterion, err := NewCriterion(c)
	if err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(c, d)
	if err != nil {
		return nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return crossval.New(model, d, strategy, criterion, append(opts, options...)...), nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); len(item) > 0 {
			items = append(items, item)
		}
	}
	return items
}
