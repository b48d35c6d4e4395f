package cmd

import (
	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"path/filepath"
	"time"
)

// Config is the evaluation described by a configuration file.
type Config struct {
	Folds       int     `toml:"folds"`
	Runs        int     `toml:"runs"`
	Seed        int64   `toml:"seed"`
	Seeded      bool    `toml:"-"`
	Model       string  `toml:"model"`
	Kernel      string  `toml:"kernel"`
	KernelParam float64 `toml:"kernel_param"`
	Criterion   string  `toml:"criterion"`
	Threshold   float64 `toml:"threshold"`
	Thresholded bool    `toml:"-"`
	Stratified  bool    `toml:"stratified"`
	Autolock    bool    `toml:"autolock"`
	Parallelism int     `toml:"parallelism"`
	Budget      string  `toml:"budget"`
	Failures    string  `toml:"failures"`
	Splits      string  `toml:"splits"`
	SplitCache  string  `toml:"split_cache"`
	Store       string  `toml:"store"`

	Elasticsearch struct {
		Hosts        []string `toml:"hosts"`
		Index        string   `toml:"index"`
		FeatureField string   `toml:"feature_field"`
		LabelField   string   `toml:"label_field"`
	} `toml:"elasticsearch"`
}

// DefaultConfig is used for anything a configuration file leaves out.
func DefaultConfig() Config {
	c := Config{
		Folds:       5,
		Runs:        1,
		Model:       "centroid",
		Kernel:      "gaussian",
		KernelParam: 1,
		Criterion:   "Accuracy",
		Autolock:    true,
		Parallelism: 1,
		Failures:    "abort",
		Splits:      "auto",
	}
	c.Elasticsearch.FeatureField = "features"
	c.Elasticsearch.LabelField = "label"
	return c
}

// BudgetDuration parses the budget; an empty budget is no budget.
func (c Config) BudgetDuration() (time.Duration, error) {
	if len(c.Budget) == 0 {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Budget)
	if err != nil {
		return 0, errors.Wrap(err, "budget")
	}
	return d, nil
}

// LoadConfig reads a .toml or .properties file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return loadToml(path)
	case ".properties":
		return loadProperties(path)
	}
	return Config{}, errors.Errorf("unknown configuration format %q", path)
}

func loadToml(path string) (Config, error) {
	c := DefaultConfig()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, errors.Wrapf(err, "reading %s", path)
	}
	c.Seeded = md.IsDefined("seed")
	c.Thresholded = md.IsDefined("threshold")
	return c, nil
}

func loadProperties(path string) (Config, error) {
	c := DefaultConfig()
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return c, errors.Wrapf(err, "reading %s", path)
	}
	c.Folds = p.GetInt("folds", c.Folds)
	c.Runs = p.GetInt("runs", c.Runs)
	if _, ok := p.Get("seed"); ok {
		c.Seed = p.GetInt64("seed", 0)
		c.Seeded = true
	}
	c.Model = p.GetString("model", c.Model)
	c.Kernel = p.GetString("kernel", c.Kernel)
	c.KernelParam = p.GetFloat64("kernel_param", c.KernelParam)
	c.Criterion = p.GetString("criterion", c.Criterion)
	if _, ok := p.Get("threshold"); ok {
		c.Threshold = p.GetFloat64("threshold", 0)
		c.Thresholded = true
	}
	c.Stratified = p.GetBool("stratified", c.Stratified)
	c.Autolock = p.GetBool("autolock", c.Autolock)
	c.Parallelism = p.GetInt("parallelism", c.Parallelism)
	if d := p.GetParsedDuration("budget", 0); d > 0 {
		c.Budget = d.String()
	}
	c.Failures = p.GetString("failures", c.Failures)
	c.Splits = p.GetString("splits", c.Splits)
	c.SplitCache = p.GetString("split_cache", c.SplitCache)
	c.Store = p.GetString("store", c.Store)
	if hosts := p.GetString("elasticsearch.hosts", ""); len(hosts) > 0 {
		c.Elasticsearch.Hosts = splitList(hosts)
	}
	c.Elasticsearch.Index = p.GetString("elasticsearch.index", c.Elasticsearch.Index)
	c.Elasticsearch.FeatureField = p.GetString("elasticsearch.feature_field", c.Elasticsearch.FeatureField)
	c.Elasticsearch.LabelField = p.GetString("elasticsearch.label_field", c.Elasticsearch.LabelField)
	return c, nil
}
