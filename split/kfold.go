package split

// KFold deals a random permutation of the examples round-robin into k folds,
// so fold sizes differ by at most one. It makes no attempt to balance classes.
var KFold = kFold{}

type kFold struct{}

func (kFold) Name() string {
	return "kfold"
}

func (s kFold) Build(n, k int, seed *int64) (Split, error) {
	if err := validate(s.Name(), n, k); err != nil {
		return nil, err
	}
	tests := make([][]int, k)
	for i, idx := range permutation(source(seed), n) {
		tests[i%k] = append(tests[i%k], idx)
	}
	return fromTests(n, tests), nil
}
