// Package predict finds satellite passes by sampling elevation curves and
// refining threshold crossings and culminations with root-finding passes.
// Detection per (station, satellite) pair is pure given its inputs, so the
// catalog stage fans pairs out over a bounded worker pool and merges the
// results into one deterministically ordered sequence.
package predict

import (
	"iter"
	"log"
	"math"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/orbit"
)

const (
	defaultStep      = 30 * time.Second
	defaultTolerance = time.Second

	// Iteration cap for the refinement loops. A 30 s bracket narrowed to
	// 1 s needs 5 bisection steps; the cap only guards degenerate input.
	maxRefineIters = 50
)

// Sample is one point on a satellite's elevation curve.
type Sample struct {
	Time      time.Time
	Elevation float64
}

// Sampler walks an elevation curve at a coarse step and narrows event
// times down to a configured tolerance.
type Sampler struct {
	fn   orbit.ElevationFunc
	step time.Duration
	tol  time.Duration
	log  *log.Logger
}

func NewSampler(fn orbit.ElevationFunc, step, tol time.Duration, logger *log.Logger) *Sampler {
	if step <= 0 {
		step = defaultStep
	}
	if tol <= 0 {
		tol = defaultTolerance
	}
	return &Sampler{fn: fn, step: step, tol: tol, log: logger}
}

// Points yields elevation samples over [start, end] at the coarse step.
// Samples where the provider fails or returns a non-finite value are
// logged and dropped; detection proceeds on the surviving points.
func (s *Sampler) Points(start, end time.Time) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for t := start; !t.After(end); t = t.Add(s.step) {
			el, err := s.fn(t)
			if err != nil {
				s.log.Printf("predict: dropping sample at %s: %v", t.Format(time.RFC3339), err)
				continue
			}
			if math.IsNaN(el) || math.IsInf(el, 0) {
				s.log.Printf("predict: dropping sample at %s: non-finite elevation", t.Format(time.RFC3339))
				continue
			}
			if !yield(Sample{Time: t, Elevation: el}) {
				return
			}
		}
	}
}

// RefineCrossing narrows a threshold crossing known to lie inside
// (lo, hi) and returns the midpoint of the final bracket. rising selects
// the upward crossing direction.
func (s *Sampler) RefineCrossing(lo, hi time.Time, threshold float64, rising bool) time.Time {
	for i := 0; i < maxRefineIters && hi.Sub(lo) > s.tol; i++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		el, err := s.fn(mid)
		if err != nil {
			s.log.Printf("predict: refine at %s aborted: %v", mid.Format(time.RFC3339), err)
			break
		}
		below := el < threshold
		if below == rising {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2)
}

// RefineMaximum locates the culmination inside [lo, hi] by ternary search,
// which needs only unimodality of the curve across the bracket. Returns
// the peak time and the elevation there. If the provider fails during
// refinement the reported elevation is -Inf, which downstream threshold
// checks reject.
func (s *Sampler) RefineMaximum(lo, hi time.Time) (time.Time, float64) {
	for i := 0; i < maxRefineIters && hi.Sub(lo) > s.tol; i++ {
		third := hi.Sub(lo) / 3
		m1 := lo.Add(third)
		m2 := hi.Add(-third)

		e1, err1 := s.fn(m1)
		e2, err2 := s.fn(m2)
		if err1 != nil || err2 != nil {
			s.log.Printf("predict: peak refine aborted between %s and %s",
				lo.Format(time.RFC3339), hi.Format(time.RFC3339))
			break
		}

		if e1 < e2 {
			lo = m1
		} else {
			hi = m2
		}
	}

	peak := lo.Add(hi.Sub(lo) / 2)
	el, err := s.fn(peak)
	if err != nil {
		s.log.Printf("predict: peak evaluation at %s failed: %v", peak.Format(time.RFC3339), err)
		return peak, math.Inf(-1)
	}
	return peak, el
}
