package crossval

import (
	"fmt"
	"github.com/pkg/errors"
)

// FailurePolicy decides what happens to a run when one of its folds fails.
type FailurePolicy uint8

const (
	// Abort stops the evaluation at the first failed fold and returns the failure. It is the default.
	Abort FailurePolicy = iota
	// SkipFold drops failed folds from their run and marks the result degraded. A run
	// whose folds all fail is dropped too. Skipping can bias results, so it must be asked for.
	SkipFold
)

func (p FailurePolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case SkipFold:
		return "skip"
	}
	return fmt.Sprintf("FailurePolicy(%d)", p)
}

// ParseFailurePolicy reads a policy from its name.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "abort", "":
		return Abort, nil
	case "skip":
		return SkipFold, nil
	}
	return Abort, errors.Errorf("unknown failure policy %q", s)
}

// SplitPolicy decides whether the runs of an evaluation share a split.
//
// Reusing a split makes runs differ only through the model itself; a deterministic
// model then scores every run the same. Fresh splits make runs independent samples
// of the partitioning.
type SplitPolicy uint8

const (
	// SplitAuto reuses one split for every run when a seed is set, since a seeded
	// strategy reproduces the same split anyway, and draws a fresh split per run otherwise.
	// It is the default.
	SplitAuto SplitPolicy = iota
	// SplitFresh draws a new split for every run. With a seed, run r is split with seed+r,
	// so evaluations stay reproducible.
	SplitFresh
	// SplitReuse builds one split and evaluates it in every run.
	SplitReuse
)

func (p SplitPolicy) String() string {
	switch p {
	case SplitAuto:
		return "auto"
	case SplitFresh:
		return "fresh"
	case SplitReuse:
		return "reuse"
	}
	return fmt.Sprintf("SplitPolicy(%d)", p)
}

// ParseSplitPolicy reads a policy from its name.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	switch s {
	case "auto", "":
		return SplitAuto, nil
	case "fresh":
		return SplitFresh, nil
	case "reuse":
		return SplitReuse, nil
	}
	return SplitAuto, errors.Errorf("unknown split policy %q", s)
}

func (p SplitPolicy) reuse(seeded bool) bool {
	return p == SplitReuse || (p == SplitAuto && seeded)
}
