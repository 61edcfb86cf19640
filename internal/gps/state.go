// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bytes"
	"maps"
	"slices"
	"strconv"

	"github.com/relabs-tech/gnss_decoder/internal/fixed"
)

// Measure is a bounded satellite reading (elevation, azimuth or SNR).
// Unknown marks a field the receiver left empty; it is distinct from 0.
type Measure int

const Unknown Measure = -1

func (m Measure) Known() bool { return m != Unknown }

func (m Measure) String() string {
	if !m.Known() {
		return "NA"
	}
	return strconv.Itoa(int(m))
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Known() {
		return []byte(`"NA"`), nil
	}
	return strconv.AppendInt(nil, int64(m), 10), nil
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte(`"NA"`)) || bytes.Equal(b, []byte("null")) {
		*m = Unknown
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*m = Measure(v)
	return nil
}

// SatelliteInfo is one satellite of a satellites-in-view report.
type SatelliteInfo struct {
	Elevation Measure `json:"elevation"` // degrees, 0-90
	Azimuth   Measure `json:"azimuth"`   // degrees, 0-359
	SNR       Measure `json:"snr"`       // dB-Hz, 0-99
}

// SatelliteView is the complete satellites-in-view list of one talker.
type SatelliteView struct {
	InView     int                   `json:"in_view"`
	Signal     string                `json:"signal,omitempty"`
	Satellites map[int]SatelliteInfo `json:"satellites"`
}

func (v SatelliteView) Clone() SatelliteView {
	v.Satellites = maps.Clone(v.Satellites)
	if v.Satellites == nil {
		v.Satellites = map[int]SatelliteInfo{}
	}
	return v
}

// State is the latest decoded navigation snapshot of a receiver.
// Optional numeric attributes are nil until a sentence reports them.
//
// Latitude and Longitude hold either the raw ddmm.mmmm token or the signed
// decimal degrees, depending on the decoder's coordinate format.
// LatDegrees and LonDegrees are always signed decimal degrees.
type State struct {
	Time string `json:"time,omitempty"` // "215230.000" or "21:52:30.000"
	Date string `json:"date,omitempty"` // "080225" or "2025-02-08"

	Latitude      string         `json:"lat,omitempty"`
	LatHemisphere string         `json:"lat_hemisphere,omitempty"`
	LatDegrees    *fixed.Decimal `json:"lat_deg,omitempty"`
	Longitude     string         `json:"lon,omitempty"`
	LonHemisphere string         `json:"lon_hemisphere,omitempty"`
	LonDegrees    *fixed.Decimal `json:"lon_deg,omitempty"`

	Altitude          *float64 `json:"alt_m,omitempty"`
	GeoidalSeparation *float64 `json:"geoid_sep_m,omitempty"`

	Quality   string `json:"quality,omitempty"`
	Mode      string `json:"mode,omitempty"`
	FixType   string `json:"fix_type,omitempty"`
	NavStatus string `json:"nav_status,omitempty"`

	SatellitesUsed *int                `json:"satellites_used,omitempty"`
	SatelliteIDs   map[string][]string `json:"satellite_ids,omitempty"` // per constellation
	PDOP           *float64            `json:"pdop,omitempty"`
	HDOP           *float64            `json:"hdop,omitempty"`
	VDOP           *float64            `json:"vdop,omitempty"`

	DGPSAge       *float64 `json:"dgps_age_s,omitempty"`
	DGPSStationID *int     `json:"dgps_station_id,omitempty"`

	Speed             *float64 `json:"speed,omitempty"`
	SpeedUnit         string   `json:"speed_unit,omitempty"` // "kn" or "km/h"
	Course            *float64 `json:"course_deg,omitempty"`
	MagneticVariation *float64 `json:"mag_var_deg,omitempty"` // west negative

	Heading     *float64 `json:"heading_deg,omitempty"`
	HeadingMode string   `json:"heading_mode,omitempty"`

	EastVelocity  *float64 `json:"east_velocity,omitempty"`
	NorthVelocity *float64 `json:"north_velocity,omitempty"`
	UpVelocity    *float64 `json:"up_velocity,omitempty"`

	RTKAge   *float64  `json:"rtk_age_s,omitempty"`
	RTKRatio *float64  `json:"rtk_ratio,omitempty"`
	Baseline *Baseline `json:"baseline,omitempty"`

	// Satellites holds the last complete satellites-in-view report per talker.
	Satellites map[string]SatelliteView `json:"satellites_in_view,omitempty"`
}

// Baseline is an RTK baseline between the base station and the rover, in metres
// (course in degrees).
type Baseline struct {
	East   *float64 `json:"east,omitempty"`
	North  *float64 `json:"north,omitempty"`
	Up     *float64 `json:"up,omitempty"`
	Length *float64 `json:"length,omitempty"`
	Course *float64 `json:"course,omitempty"`
}

// Clone returns a copy that shares nothing mutable with s.
// Scalar pointers are replaced, never written through, so they are shared.
func (s *State) Clone() State {
	out := *s
	if s.SatelliteIDs != nil {
		out.SatelliteIDs = make(map[string][]string, len(s.SatelliteIDs))
		for k, v := range s.SatelliteIDs {
			out.SatelliteIDs[k] = slices.Clone(v)
		}
	}
	if s.Satellites != nil {
		out.Satellites = make(map[string]SatelliteView, len(s.Satellites))
		for k, v := range s.Satellites {
			out.Satellites[k] = v.Clone()
		}
	}
	if s.Baseline != nil {
		b := *s.Baseline
		out.Baseline = &b
	}
	return out
}

// HasPosition reports whether both coordinates have been decoded.
func (s *State) HasPosition() bool {
	return s.LatDegrees != nil && s.LonDegrees != nil
}
