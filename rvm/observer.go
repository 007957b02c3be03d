package rvm

import "time"

// BasisAction is the decision the fast variant takes for one visited basis.
type BasisAction int

const (
	ActionNone BasisAction = iota
	ActionAdd
	ActionReestimate
	ActionDelete
)

func (a BasisAction) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionReestimate:
		return "reestimate"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// IterationStats summarizes one outer iteration, or one full pass of the
// fast variant.
type IterationStats struct {
	Task      Task
	Iteration int
	// Retained is the number of basis columns in the model after the
	// iteration, the bias column included.
	Retained int
	// Pruned is the number of columns removed during the iteration.
	Pruned           int
	MaxDeltaLogAlpha float64
	// Beta is zero for classification.
	Beta float64
	// NewtonSteps is the number of inner steps of the last mode search
	// (classification only).
	NewtonSteps int
}

// BasisEvent reports one add, re-estimate or delete of the fast variant.
type BasisEvent struct {
	Task Task
	Pass int
	// Column is the design-matrix column; Basis is the training index of
	// that column, or errors.NoBasis for the bias column.
	Column int
	Basis  int
	Action BasisAction
	// Alpha is the precision after the action; zero for deletions.
	Alpha float64
}

// FitSummary is delivered once per successful Fit.
type FitSummary struct {
	Task             Task
	Iterations       int
	RelevanceVectors int
	Converged        bool
	Duration         time.Duration
}

// Observer receives progress from a running Fit. Calls happen on the fitting
// goroutine, in order.
type Observer interface {
	OnIteration(IterationStats)
	OnBasisEvent(BasisEvent)
	OnFitComplete(FitSummary)
}

type nopObserver struct{}

func (nopObserver) OnIteration(IterationStats) {}
func (nopObserver) OnBasisEvent(BasisEvent)    {}
func (nopObserver) OnFitComplete(FitSummary)   {}
