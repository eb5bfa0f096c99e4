package orbit

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Propagate() in go-satellite takes the Satellite record by value, so SGP4
// error codes raised during propagation never reach the caller. Failures
// are detected instead by checking the output for NaN/Inf and for position
// magnitudes outside the plausible orbital band.
const (
	minPositionKm = 6200.0
	maxPositionKm = 50000.0
)

// Propagator wraps an SGP4-initialized satellite record for one object.
type Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewPropagator initializes the SGP4 model from a pair of TLE lines.
//
// Lines are validated up front because go-satellite calls log.Fatal on
// malformed input, which would kill the process.
func NewPropagator(line1, line2 string, noradID int) (*Propagator, error) {
	if err := validateTLE(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &Propagator{sat: sat, noradID: noradID}, nil
}

func validateTLE(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got %q", line2[0])
	}
	return nil
}

// positionTEME propagates to t and returns the TEME position in km.
func (p *Propagator) positionTEME(t time.Time) (x, y, z float64, err error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat,
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return 0, 0, 0, fmt.Errorf("sgp4 propagation failed for NORAD %d at %s: output is NaN/Inf",
			p.noradID, t.Format(time.RFC3339))
	}

	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < minPositionKm || mag > maxPositionKm {
		return 0, 0, 0, fmt.Errorf("sgp4 propagation failed for NORAD %d at %s: position magnitude %.1f km",
			p.noradID, t.Format(time.RFC3339), mag)
	}

	return pos.X, pos.Y, pos.Z, nil
}

// LookAngles computes the topocentric direction from obs to the satellite
// at time t.
func (p *Propagator) LookAngles(obs Observer, t time.Time) (LookAngles, error) {
	x, y, z, err := p.positionTEME(t)
	if err != nil {
		return LookAngles{}, err
	}
	ex, ey, ez := temeToECEF(x, y, z, gmst(t))
	return obs.lookAngles(ex, ey, ez), nil
}
