package main

import (
	"context"
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/go-errors/errors"
	"github.com/hscells/crossval"
	"github.com/hscells/crossval/cmd"
	"github.com/hscells/crossval/output"
	"github.com/hscells/headway"
	"gopkg.in/cheggaaa/pb.v1"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"
)

var (
	name    = "crossval"
	version = "15.Oct.2026"
	author  = "hscells"
)

type args struct {
	Config      string        `help:"Path to a .toml or .properties configuration file" arg:"-c"`
	Folds       int           `help:"Number of folds" arg:"-k"`
	Runs        int           `help:"Number of runs" arg:"-r"`
	Seed        string        `help:"Seed that makes splitting reproducible" arg:"-s"`
	Model       string        `help:"Model to evaluate (majority/centroid/centroid-margin)" arg:"-m"`
	Kernel      string        `help:"Kernel of the centroid models (linear/gaussian/polynomial)"`
	KernelParam float64       `help:"Gaussian width or polynomial degree"`
	Criterion   string        `help:"Scoring criterion" arg:"-e"`
	Threshold   string        `help:"Threshold predictions before scoring"`
	Stratified  bool          `help:"Keep class proportions in every fold"`
	NoAutolock  bool          `help:"Never lock the dataset in the model"`
	Parallelism int           `help:"Number of runs and folds evaluated at once" arg:"-p"`
	Budget      time.Duration `help:"Wall clock budget of the evaluation" arg:"-b"`
	Failures    string        `help:"What to do with failed folds (abort/skip)"`
	Splits      string        `help:"Whether runs share a split (auto/fresh/reuse)"`
	SplitCache  string        `help:"Directory to cache seeded splits in"`
	Index       string        `help:"Elasticsearch index to load the dataset from"`
	Hosts       []string      `help:"Elasticsearch hosts" arg:"separate"`
	Format      string        `help:"Output format (plain/json/csv)" arg:"-f"`
	Output      string        `help:"File to write the result to" arg:"-o"`
	Store       string        `help:"Directory to store the result in"`
	Headway     string        `help:"Headway server to report progress to"`
	Secret      string        `help:"Secret of the headway server"`
	Progress    bool          `help:"Show a progress bar"`
	Verbose     bool          `help:"Log every run and print error stacks" arg:"-v"`
	Dataset     string        `help:"Path to a libsvm dataset" arg:"positional"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
@ %s
# %s`, name, author, version)
}

// configure reads the configuration file and lets the flags override it.
func configure(a args) (cmd.Config, error) {
	c := cmd.DefaultConfig()
	if len(a.Config) > 0 {
		var err error
		c, err = cmd.LoadConfig(a.Config)
		if err != nil {
			return c, err
		}
	}
	if a.Folds != 0 {
		c.Folds = a.Folds
	}
	if a.Runs != 0 {
		c.Runs = a.Runs
	}
	if len(a.Seed) > 0 {
		seed, err := strconv.ParseInt(a.Seed, 10, 64)
		if err != nil {
			return c, err
		}
		c.Seed, c.Seeded = seed, true
	}
	if len(a.Model) > 0 {
		c.Model = a.Model
	}
	if len(a.Kernel) > 0 {
		c.Kernel = a.Kernel
	}
	if a.KernelParam != 0 {
		c.KernelParam = a.KernelParam
	}
	if len(a.Criterion) > 0 {
		c.Criterion = a.Criterion
	}
	if len(a.Threshold) > 0 {
		threshold, err := strconv.ParseFloat(a.Threshold, 64)
		if err != nil {
			return c, err
		}
		c.Threshold, c.Thresholded = threshold, true
	}
	if a.Stratified {
		c.Stratified = true
	}
	if a.NoAutolock {
		c.Autolock = false
	}
	if a.Parallelism != 0 {
		c.Parallelism = a.Parallelism
	}
	if a.Budget != 0 {
		c.Budget = a.Budget.String()
	}
	if len(a.Failures) > 0 {
		c.Failures = a.Failures
	}
	if len(a.Splits) > 0 {
		c.Splits = a.Splits
	}
	if len(a.SplitCache) > 0 {
		c.SplitCache = a.SplitCache
	}
	if len(a.Store) > 0 {
		c.Store = a.Store
	}
	if len(a.Index) > 0 {
		c.Elasticsearch.Index = a.Index
	}
	if len(a.Hosts) > 0 {
		c.Elasticsearch.Hosts = a.Hosts
	}
	return c, nil
}

// observer reports progress to a progress bar and a headway server, when there are any.
func observer(a args, c cmd.Config) (crossval.Observer, func()) {
	var bar *pb.ProgressBar
	if a.Progress {
		bar = pb.New(c.Runs * c.Folds)
		bar.Prefix("folds")
		bar.Start()
	}

	var hw *headway.Client
	title := fmt.Sprintf("%s %s [#%d]", name, c.Model, time.Now().Unix())
	if len(a.Headway) > 0 {
		hw = headway.NewClient(a.Headway, a.Secret)
	}

	done := 0
	o := func(e crossval.Event) {
		switch e.Type {
		case crossval.FoldCompleted, crossval.FoldFailed:
			if bar != nil {
				bar.Increment()
			}
		case crossval.RunCompleted, crossval.RunSkipped:
			done++
			if a.Verbose {
				log.Printf("%s run %d %f\n", e.Type, e.Run, e.Score)
			}
			if hw != nil {
				msg := fmt.Sprintf("[crossval] run %d %f", e.Run, e.Score)
				if e.Err != nil {
					msg = e.Err.Error()
				}
				if err := hw.Send(float64(done), float64(c.Runs), title, msg); err != nil {
					log.Println(err)
				}
			}
		case crossval.LockUnsupported:
			if a.Verbose {
				log.Println("model does not support locking")
			}
		}
	}
	return o, func() {
		if bar != nil {
			bar.Finish()
		}
		if hw != nil {
			_ = hw.Send(float64(c.Runs), float64(c.Runs), title, "[crossval] done!")
		}
	}
}

func run(ctx context.Context, a args) error {
	c, err := configure(a)
	if err != nil {
		return err
	}

	format := a.Format
	if len(format) == 0 {
		format = "plain"
	}
	formatter, err := output.LookupFormatter(format)
	if err != nil {
		return err
	}

	d, err := cmd.LoadDataset(ctx, c, a.Dataset)
	if err != nil {
		return err
	}
	log.Printf("loaded %d examples of %d features\n", d.Len(), d.Dim())

	o, finish := observer(a, c)
	e, err := cmd.NewEngine(c, d, crossval.Observe(o))
	if err != nil {
		return err
	}

	r, err := e.Evaluate(ctx)
	finish()
	if err != nil {
		return err
	}
	for _, w := range r.Warnings() {
		log.Println(w)
	}
	if r.Partial() {
		log.Printf("partial result over %d of %d runs\n", len(r.RunScores()), c.Runs)
	}

	s, err := formatter(r)
	if err != nil {
		return err
	}
	if len(a.Output) > 0 {
		err = os.WriteFile(a.Output, []byte(s), 0644)
	} else {
		_, err = fmt.Fprintln(os.Stdout, s)
	}
	if err != nil {
		return err
	}

	if len(c.Store) > 0 {
		id, err := output.NewStore(c.Store).Put(r)
		if err != nil {
			return err
		}
		log.Printf("stored result %s\n", id)
	}
	return nil
}

func main() {
	var a args
	arg.MustParse(&a)

	// An interrupt stops the evaluation, which still reports what it completed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, a); err != nil {
		if a.Verbose {
			log.Println(errors.Wrap(err, 0).ErrorStack())
		}
		stop()
		log.Fatalln(err)
	}
}
