package orbit

import "time"

// ElevationFunc reports the elevation in degrees of one satellite as seen
// from one ground station at time t. Implementations must be safe for
// repeated calls with arbitrary, non-monotonic times.
type ElevationFunc func(t time.Time) (float64, error)

// ElevationFunc binds the propagator to a fixed observer. The pass
// detection pipeline evaluates this closure many thousands of times per
// (station, satellite) pair.
func (p *Propagator) ElevationFunc(obs Observer) ElevationFunc {
	return func(t time.Time) (float64, error) {
		la, err := p.LookAngles(obs, t)
		if err != nil {
			return 0, err
		}
		return la.ElevationDeg, nil
	}
}
