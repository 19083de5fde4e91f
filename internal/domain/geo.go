package domain

import (
	"math"

	"github.com/jftuga/geodist"
)

// Coordinate is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Validate reports an InvalidQueryError if the coordinate is not a finite
// point inside [-90,90] x [-180,180].
func (c Coordinate) Validate() error {
	switch {
	case math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0):
		return &InvalidQueryError{Coordinate: c, Reason: "latitude is not a finite number"}
	case math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0):
		return &InvalidQueryError{Coordinate: c, Reason: "longitude is not a finite number"}
	case c.Lat < -90 || c.Lat > 90:
		return &InvalidQueryError{Coordinate: c, Reason: "latitude out of range [-90, 90]"}
	case c.Lon < -180 || c.Lon > 180:
		return &InvalidQueryError{Coordinate: c, Reason: "longitude out of range [-180, 180]"}
	}
	return nil
}

// SamePoint reports whether c and o name the same place on the globe. The
// meridians -180 and 180 coincide, and every longitude names the same point
// at a pole.
func (c Coordinate) SamePoint(o Coordinate) bool {
	return c.canonical() == o.canonical()
}

// canonical picks one representation per point: longitude -180 for the
// antimeridian and longitude 0 at either pole.
func (c Coordinate) canonical() Coordinate {
	switch {
	case c.Lat == 90 || c.Lat == -90:
		c.Lon = 0
	case c.Lon == 180:
		c.Lon = -180
	}
	return c
}

// DistanceKM returns the geodesic distance between a and b in kilometers. It
// is zero exactly when a and b are the same point; see SamePoint. Both points
// must already be valid; see Coordinate.Validate.
//
// The pair is put in a fixed order before computing so the result is
// bit-for-bit symmetric. Vincenty's iteration does not converge for nearly
// antipodal points; those fall back to the spherical distance.
func DistanceKM(a, b Coordinate) float64 {
	a, b = a.canonical(), b.canonical()
	if a == b {
		return 0
	}
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lon < a.Lon) {
		a, b = b, a
	}

	p := geodist.Coord{Lat: a.Lat, Lon: a.Lon}
	q := geodist.Coord{Lat: b.Lat, Lon: b.Lon}

	_, km, err := geodist.VincentyDistance(p, q)
	if err != nil || math.IsNaN(km) {
		_, km = geodist.HaversineDistance(p, q)
	}
	return km
}
