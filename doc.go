// Package crossval provides repeated k-fold cross-validation of trainable models.
//
// An Engine splits a dataset into folds with a split.Strategy, trains and scores a
// learning.Model on each fold with an eval.Evaluator, merges the fold scores of each
// run, and summarises the runs as a mean and sample standard deviation:
//
//	e := crossval.New(learning.MajorityClass{}, data, split.KFold, eval.Accuracy,
//		crossval.NumFolds(5), crossval.NumRuns(3), crossval.Seed(42))
//	res, err := e.Evaluate(context.Background())
//	if err != nil {
//		log.Fatalln(err)
//	}
//	res.PrintResult() // 0.600000+-0.000000
//
// Fold scores are merged with the aggregator of the engine (the arithmetic mean by
// default), unless the evaluator is an eval.FoldMerger, in which case it merges the
// fold outcomes itself. Measures such as f-measure are biased when averaged per fold,
// and pool their statistics instead.
//
// Runs share one split when a seed is set and draw a fresh split each otherwise; see
// SplitPolicy. A failed fold aborts the evaluation unless the SkipFold policy was chosen.
package crossval
