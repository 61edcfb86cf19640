// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geo computes distance and bearing between two fixes using the
// fixed point CORDIC helpers, so results do not depend on float rounding of
// the decoded coordinates.
package geo

import (
	"github.com/relabs-tech/gnss_decoder/internal/fixed"
	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

// EarthRadiusM is the mean Earth radius in metres.
const EarthRadiusM = 6371000

// workPlaces keeps squares of sub-kilometre displacements (~1e-8 rad²)
// well above the truncation step.
const workPlaces = 20

var (
	earthRadius = fixed.FromInt(EarthRadiusM)
	deg180      = fixed.FromInt(180)
	deg360      = fixed.FromInt(360)
)

// Point is a position in signed decimal degrees.
type Point struct {
	Lat fixed.Decimal `json:"lat"`
	Lon fixed.Decimal `json:"lon"`
}

// ParsePoint reads a point from two decimal strings such as "55.7799".
func ParsePoint(lat, lon string) (Point, error) {
	la, err := fixed.Parse(lat)
	if err != nil {
		return Point{}, err
	}
	lo, err := fixed.Parse(lon)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: la, Lon: lo}, nil
}

// PointFromState returns the decoded position, if there is one.
func PointFromState(s gps.State) (Point, bool) {
	if !s.HasPosition() {
		return Point{}, false
	}
	return Point{Lat: *s.LatDegrees, Lon: *s.LonDegrees}, true
}

// Vector is the distance and initial bearing from one point to another.
type Vector struct {
	DistanceM  float64 `json:"distance_m"`
	BearingDeg float64 `json:"bearing_deg"`
}

// Between returns the vector pointing from 'from' to 'to'.
func Between(from, to Point) (Vector, error) {
	d, err := Distance(from, to)
	if err != nil {
		return Vector{}, err
	}
	return Vector{
		DistanceM:  d.Round(2).Float64(),
		BearingDeg: Bearing(from, to).Round(4).Float64(),
	}, nil
}

// planar projects the displacement onto a local plane, in radians:
//
//	x = Δλ·cos(φm)   (east)
//	y = Δφ           (north)
func planar(from, to Point) (x, y fixed.Decimal, err error) {
	phi1 := fixed.Radians(from.Lat.WithPlaces(workPlaces))
	phi2 := fixed.Radians(to.Lat.WithPlaces(workPlaces))
	dLambda := fixed.Radians(lonDelta(from.Lon, to.Lon).WithPlaces(workPlaces))

	mid, err := phi1.Add(phi2).Div(fixed.FromInt(2))
	if err != nil {
		return fixed.Decimal{}, fixed.Decimal{}, err
	}
	return dLambda.Mul(fixed.Cos(mid)), phi2.Sub(phi1), nil
}

// Distance uses the equirectangular approximation d = R·sqrt(x² + y²).
// It stays well under a metre of the great circle distance for the short
// ranges a receiver reports against its home point.
func Distance(from, to Point) (fixed.Decimal, error) {
	x, y, err := planar(from, to)
	if err != nil {
		return fixed.Decimal{}, err
	}
	h, err := x.Mul(x).Add(y.Mul(y)).Sqrt()
	if err != nil {
		return fixed.Decimal{}, err
	}
	return h.Mul(earthRadius), nil
}

// Bearing returns the bearing in degrees clockwise from north, [0, 360).
// Coincident points give 0.
func Bearing(from, to Point) fixed.Decimal {
	x, y, err := planar(from, to)
	if err != nil {
		return fixed.Decimal{}
	}
	deg := fixed.Degrees(fixed.Atan2(x, y))
	if deg.Sign() < 0 {
		deg = deg.Add(deg360)
	}
	if deg.Cmp(deg360) >= 0 {
		deg = deg.Sub(deg360)
	}
	return deg
}

// lonDelta returns to-from folded into [-180, 180].
func lonDelta(from, to fixed.Decimal) fixed.Decimal {
	d := to.Sub(from)
	if d.Cmp(deg180) > 0 {
		d = d.Sub(deg360)
	}
	if d.Cmp(deg180.Neg()) < 0 {
		d = d.Add(deg360)
	}
	return d
}
