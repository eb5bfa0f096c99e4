// Package orbit turns SGP4 propagator output into topocentric look angles.
//
// The propagator emits positions in the TEME frame. A rotation by Greenwich
// Mean Sidereal Time brings them into Earth-fixed ECEF coordinates, and a
// final rotation into the observer's SEZ frame yields azimuth, elevation and
// range (Vallado, "Fundamentals of Astrodynamics", section 4.4).
package orbit

import (
	"math"
	"time"
)

// WGS-84 ellipsoid.
const (
	wgs84A = 6378137.0           // semi-major axis, meters
	wgs84F = 1.0 / 298.257223563 // flattening
)

var wgs84E2 = wgs84F * (2.0 - wgs84F) // eccentricity squared

// Observer is a ground station prepared for repeated look-angle
// computations: geodetic coordinates plus the equivalent ECEF vector,
// converted once up front.
type Observer struct {
	latRad float64
	lonRad float64
	altM   float64

	// geodetic position on the WGS-84 ellipsoid, meters
	ecefX float64
	ecefY float64
	ecefZ float64
}

// NewObserver builds an Observer from geodetic coordinates in degrees and
// altitude in meters above the WGS-84 ellipsoid.
func NewObserver(latDeg, lonDeg, altMeters float64) Observer {
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// prime vertical radius of curvature
	n := wgs84A / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)

	return Observer{
		latRad: lat,
		lonRad: lon,
		altM:   altMeters,
		ecefX:  (n + altMeters) * cosLat * math.Cos(lon),
		ecefY:  (n + altMeters) * cosLat * math.Sin(lon),
		ecefZ:  (n*(1.0-wgs84E2) + altMeters) * sinLat,
	}
}

// LookAngles is the topocentric direction from an observer to a satellite.
// Azimuth is measured clockwise from true north in [0, 360).
type LookAngles struct {
	AzimuthDeg   float64
	ElevationDeg float64
	RangeKm      float64
}

// julianDate converts t to a Julian Date. Valid for Gregorian calendar
// dates, which covers every epoch a TLE can encode.
func julianDate(t time.Time) float64 {
	t = t.UTC()

	year := float64(t.Year())
	month := float64(t.Month())
	day := float64(t.Day())
	if month <= 2 {
		year--
		month += 12
	}

	a := math.Floor(year / 100.0)
	b := 2.0 - a + math.Floor(a/4.0)
	jd := math.Floor(365.25*(year+4716.0)) + math.Floor(30.6001*(month+1.0)) + day + b - 1524.5

	dayFraction := (float64(t.Hour()) +
		float64(t.Minute())/60.0 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600.0) / 24.0

	return jd + dayFraction
}

// gmst returns Greenwich Mean Sidereal Time at t in radians, using the
// IAU-82 expression with UT1 approximated by UTC. The sub-second UT1-UTC
// offset moves look angles far less than TLE element error does.
func gmst(t time.Time) float64 {
	jd := julianDate(t)
	tUT1 := (jd - 2451545.0) / 36525.0

	gmstSec := 67310.54841 +
		(876600.0*3600.0+8640184.812866)*tUT1 +
		0.093104*tUT1*tUT1 -
		6.2e-6*tUT1*tUT1*tUT1

	gmstSec = math.Mod(gmstSec, 86400.0)
	if gmstSec < 0 {
		gmstSec += 86400.0
	}

	return gmstSec * (2.0 * math.Pi / 86400.0)
}

// temeToECEF rotates a TEME position (km) about the Earth's spin axis by
// theta radians of sidereal time, returning ECEF coordinates in meters.
func temeToECEF(xKm, yKm, zKm, theta float64) (x, y, z float64) {
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	x = (cosT*xKm + sinT*yKm) * 1000.0
	y = (-sinT*xKm + cosT*yKm) * 1000.0
	z = zKm * 1000.0
	return x, y, z
}

// lookAngles resolves a satellite ECEF position (meters) into the
// observer's SEZ frame.
func (o Observer) lookAngles(satX, satY, satZ float64) LookAngles {
	rx := satX - o.ecefX
	ry := satY - o.ecefY
	rz := satZ - o.ecefZ

	sinLat := math.Sin(o.latRad)
	cosLat := math.Cos(o.latRad)
	sinLon := math.Sin(o.lonRad)
	cosLon := math.Cos(o.lonRad)

	south := sinLat*cosLon*rx + sinLat*sinLon*ry - cosLat*rz
	east := -sinLon*rx + cosLon*ry
	zenith := cosLat*cosLon*rx + cosLat*sinLon*ry + sinLat*rz

	rng := math.Sqrt(south*south + east*east + zenith*zenith)

	elevation := math.Asin(zenith/rng) * 180.0 / math.Pi
	azimuth := math.Atan2(east, -south) * 180.0 / math.Pi
	if azimuth < 0 {
		azimuth += 360.0
	}

	return LookAngles{
		AzimuthDeg:   azimuth,
		ElevationDeg: elevation,
		RangeKm:      rng / 1000.0,
	}
}
