package predict

import (
	"math"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

// Window is a validated, complete pass: rise, culmination and set in
// order, with the culmination at or above the station's threshold.
type Window struct {
	Satellite    string               `json:"satellite"`
	NoradID      int                  `json:"norad_id"`
	FrequencyMHz float64              `json:"frequency_mhz"`
	Station      config.GroundStation `json:"station"`

	Start        time.Time `json:"start"`
	Culmination  time.Time `json:"culmination"`
	End          time.Time `json:"end"`
	MaxElevation float64   `json:"max_elevation"`
	// DurationSeconds is round(End - Start).
	DurationSeconds int `json:"duration_seconds"`
}

type assemblerState int

const (
	awaitingRise assemblerState = iota
	awaitingCulmination
	awaitingSet
)

// Assemble walks an ordered event stream and emits every complete
// rise/culmination/set triple as a Window.
//
// The walk keeps the first unmatched rise: a later Rise before the triple
// completes abandons any recorded culmination but holds on to the original
// start time. A Set arriving before any culmination is skipped, so the
// search continues with the first culmination after the rise and the first
// set after that. A second culmination before the set is ignored. Whatever
// state remains when the stream ends is dropped.
func Assemble(events []Event, sat config.Satellite, st config.GroundStation) []Window {
	var windows []Window

	state := awaitingRise
	var start, culmination time.Time
	maxElevation := math.Inf(-1)

	for _, ev := range events {
		switch state {
		case awaitingRise:
			if ev.Kind == Rise {
				start = ev.Time
				state = awaitingCulmination
			}

		case awaitingCulmination:
			if ev.Kind == Culminate {
				culmination = ev.Time
				maxElevation = ev.Elevation
				state = awaitingSet
			}

		case awaitingSet:
			switch ev.Kind {
			case Set:
				if maxElevation >= st.MinElevation && start.Before(culmination) && culmination.Before(ev.Time) {
					windows = append(windows, Window{
						Satellite:       sat.Name,
						NoradID:         sat.NoradID,
						FrequencyMHz:    sat.FrequencyMHz,
						Station:         st,
						Start:           start,
						Culmination:     culmination,
						End:             ev.Time,
						MaxElevation:    maxElevation,
						DurationSeconds: int(math.Round(ev.Time.Sub(start).Seconds())),
					})
				}
				state = awaitingRise
			case Rise:
				state = awaitingCulmination
			}
		}
	}

	return windows
}
