// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/relabs-tech/gnss_decoder/internal/geo"
	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

// StateMessage is the JSON payload published on TOPIC_GPS_STATE.
type StateMessage struct {
	Session string      `json:"session"`
	Seq     uint64      `json:"seq"`
	State   gps.State   `json:"state"`
	Home    *geo.Vector `json:"home,omitempty"` // from the configured home point
}

// SatellitesMessage is the JSON payload published on TOPIC_GPS_SATELLITES
// each time a talker completes a satellites-in-view report.
type SatellitesMessage struct {
	Session    string                       `json:"session"`
	Epoch      uint64                       `json:"epoch"`
	Satellites map[string]gps.SatelliteView `json:"satellites"`
}

func optFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// stateSummary formats one console line for a snapshot.
func stateSummary(s gps.State, home *geo.Vector) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[GPS ]  time=%s date=%s lat=%s%s lon=%s%s alt=%sm sats=%s hdop=%s",
		orDash(s.Time), orDash(s.Date),
		orDash(s.Latitude), s.LatHemisphere, orDash(s.Longitude), s.LonHemisphere,
		optFloat(s.Altitude, 1), optInt(s.SatellitesUsed), optFloat(s.HDOP, 1))
	if s.Speed != nil {
		fmt.Fprintf(&b, " speed=%s%s", optFloat(s.Speed, 2), s.SpeedUnit)
	}
	if s.Course != nil {
		fmt.Fprintf(&b, " course=%s°", optFloat(s.Course, 1))
	}
	fmt.Fprintf(&b, " quality=%q mode=%q", s.Quality, s.Mode)
	if home != nil {
		fmt.Fprintf(&b, " home=%.1fm@%.1f°", home.DistanceM, home.BearingDeg)
	}
	return b.String()
}

// satellitesSummary lists in-view counts per talker in a stable order.
func satellitesSummary(sats map[string]gps.SatelliteView) string {
	talkers := make([]string, 0, len(sats))
	for t := range sats {
		talkers = append(talkers, t)
	}
	sort.Strings(talkers)

	parts := make([]string, 0, len(talkers))
	for _, t := range talkers {
		v := sats[t]
		tracked := 0
		for _, s := range v.Satellites {
			if s.SNR.Known() {
				tracked++
			}
		}
		parts = append(parts, fmt.Sprintf("%s=%d/%d", t, tracked, v.InView))
	}
	return "[SATS]  " + strings.Join(parts, " ")
}
