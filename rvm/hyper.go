package rvm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gammaFloor is the smallest well-determinedness γ that still yields an
// α update; below it the basis is treated as irrelevant.
const gammaFloor = 1e-12

// activeSet is the list of design-matrix columns currently in the model
// together with their precisions. Both slices are kept aligned and compact.
type activeSet struct {
	cols  []int
	alpha []float64
}

func fullSet(m int, alpha float64) *activeSet {
	s := &activeSet{cols: make([]int, m), alpha: make([]float64, m)}
	for j := range s.cols {
		s.cols[j] = j
		s.alpha[j] = alpha
	}
	return s
}

func (s *activeSet) len() int { return len(s.cols) }

func (s *activeSet) position(col int) int {
	for j, c := range s.cols {
		if c == col {
			return j
		}
	}
	return -1
}

func (s *activeSet) add(col int, alpha float64) {
	s.cols = append(s.cols, col)
	s.alpha = append(s.alpha, alpha)
}

func (s *activeSet) removeAt(j int) {
	s.cols = append(s.cols[:j], s.cols[j+1:]...)
	s.alpha = append(s.alpha[:j], s.alpha[j+1:]...)
}

// hyperStep is the outcome of one simultaneous α update.
type hyperStep struct {
	gammaSum float64
	maxDelta float64
	pruned   []int
}

// reestimate applies α ← γ/μ² with γ = 1 - αΣⱼⱼ to every active column,
// then removes columns whose precision reached threshold. protected columns
// are capped at threshold instead of being removed. maxDelta is the largest
// |Δ log α| among the columns that remain.
func (s *activeSet) reestimate(mu *mat.VecDense, sigma *mat.SymDense, threshold float64, protected func(col int) bool) hyperStep {
	var step hyperStep
	cols := s.cols[:0]
	alpha := s.alpha[:0]

	for j, col := range s.cols {
		old := s.alpha[j]
		gamma := 1 - old*sigma.At(j, j)
		w := mu.AtVec(j)

		next := threshold
		if gamma > gammaFloor {
			next = gamma / (w * w)
		}
		if gamma > 0 {
			step.gammaSum += gamma
		}

		// also catches +Inf and NaN from μ ≈ 0
		if !(next < threshold) {
			if !protected(col) {
				step.pruned = append(step.pruned, col)
				continue
			}
			next = threshold
		}

		if d := math.Abs(math.Log(next) - math.Log(old)); d > step.maxDelta {
			step.maxDelta = d
		}
		cols = append(cols, col)
		alpha = append(alpha, next)
	}

	s.cols = cols
	s.alpha = alpha
	return step
}

// onlyBias reports whether the bias column is all that is left.
func (s *activeSet) onlyBias(bias bool) bool {
	return bias && len(s.cols) == 1 && s.cols[0] == 0
}
