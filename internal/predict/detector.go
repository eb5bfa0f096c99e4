package predict

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// EventKind labels a detected elevation event.
type EventKind int

const (
	Rise EventKind = iota
	Culminate
	Set
)

func (k EventKind) String() string {
	switch k {
	case Rise:
		return "rise"
	case Culminate:
		return "culminate"
	case Set:
		return "set"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one refined elevation event. For Rise and Set the elevation is
// the crossing threshold itself; for Culminate it is the refined peak.
type Event struct {
	Kind      EventKind
	Time      time.Time
	Elevation float64
}

// Detector scans a sampled elevation curve for threshold crossings and
// local maxima, refining each to the sampler's tolerance.
type Detector struct {
	sampler      *Sampler
	minElevation float64
}

func NewDetector(sampler *Sampler, minElevation float64) *Detector {
	return &Detector{sampler: sampler, minElevation: minElevation}
}

// Events walks [start, end] and returns the refined events ordered by
// time. A crossing is detected between consecutive samples straddling the
// threshold; a culmination is a sample strictly higher than both of its
// neighbors, refined over the surrounding two-step bracket.
//
// Cancelling ctx stops the scan early and returns what was found so far.
func (d *Detector) Events(ctx context.Context, start, end time.Time) []Event {
	var events []Event

	var prev, prev2 Sample
	seen := 0

	for s := range d.sampler.Points(start, end) {
		if ctx.Err() != nil {
			return events
		}

		if seen >= 1 {
			switch {
			case prev.Elevation < d.minElevation && s.Elevation >= d.minElevation:
				at := d.sampler.RefineCrossing(prev.Time, s.Time, d.minElevation, true)
				events = append(events, Event{Kind: Rise, Time: at, Elevation: d.minElevation})
			case prev.Elevation >= d.minElevation && s.Elevation < d.minElevation:
				at := d.sampler.RefineCrossing(prev.Time, s.Time, d.minElevation, false)
				events = append(events, Event{Kind: Set, Time: at, Elevation: d.minElevation})
			}
		}
		if seen >= 2 && prev.Elevation > prev2.Elevation && prev.Elevation > s.Elevation {
			at, el := d.sampler.RefineMaximum(prev2.Time, s.Time)
			events = append(events, Event{Kind: Culminate, Time: at, Elevation: el})
		}

		prev2 = prev
		prev = s
		if seen < 2 {
			seen++
		}
	}

	// Refinement can land a culmination a hair before the rise it follows
	// on the coarse grid; a stable sort by time keeps the stream ordered
	// for the assembler, with kind order breaking exact ties.
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Time.Equal(events[j].Time) {
			return events[i].Time.Before(events[j].Time)
		}
		return events[i].Kind < events[j].Kind
	})

	return events
}
