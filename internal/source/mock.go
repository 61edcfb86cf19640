// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/relabs-tech/gnss_decoder/internal/nmea"
)

const (
	earthRadiusM = 6371000.0
	knotInMPS    = 0.514444
)

// MockConfig describes the synthetic receiver's circular track.
type MockConfig struct {
	CenterLat float64
	CenterLon float64
	RadiusM   float64
	// Period is the number of one second epochs per lap.
	Period int
	Start  time.Time
}

// DefaultMockConfig circles 50 m around a point in Roskilde once per minute.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		CenterLat: 55.7799,
		CenterLon: 11.4226,
		RadiusM:   50,
		Period:    60,
		Start:     time.Date(2025, 2, 8, 21, 52, 30, 0, time.UTC),
	}
}

type mockSat struct {
	id        int
	elevation int
	azimuth   int
	snr       int
}

var mockSats = []mockSat{
	{1, 81, 167, 33}, {2, 73, 168, 18}, {3, 63, 271, 30}, {4, 20, 202, 32},
	{17, 37, 296, 49}, {21, 52, 147, 0}, {28, 27, 92, 34},
}

type mockSource struct {
	cfg   MockConfig
	epoch int
	queue []string
}

// NewMockSource returns an endless, deterministic stream of checksummed
// GGA, RMC, GSA and GSV sentences, one group per simulated second.
func NewMockSource(cfg MockConfig) Source {
	if cfg.Period <= 0 {
		cfg.Period = 60
	}
	if cfg.Start.IsZero() {
		cfg.Start = DefaultMockConfig().Start
	}
	return &mockSource{cfg: cfg}
}

func (m *mockSource) Next() (string, error) {
	if len(m.queue) == 0 {
		m.queue = m.epochSentences(m.epoch)
		m.epoch++
	}
	line := m.queue[0]
	m.queue = m.queue[1:]
	return line, nil
}

func (m *mockSource) Close() error { return nil }

func (m *mockSource) epochSentences(epoch int) []string {
	ts := m.cfg.Start.Add(time.Duration(epoch) * time.Second)
	hms := ts.Format("150405") + ".00"
	dmy := ts.Format("020106")

	a := 2 * math.Pi * float64(epoch%m.cfg.Period) / float64(m.cfg.Period)
	north := m.cfg.RadiusM * math.Cos(a)
	east := m.cfg.RadiusM * math.Sin(a)
	lat := m.cfg.CenterLat + north/earthRadiusM*180/math.Pi
	lon := m.cfg.CenterLon + east/(earthRadiusM*math.Cos(m.cfg.CenterLat*math.Pi/180))*180/math.Pi
	latTok, latHemi := sexagesimal(lat, 2, "N", "S")
	lonTok, lonHemi := sexagesimal(lon, 3, "E", "W")

	speedKn := 2 * math.Pi * m.cfg.RadiusM / float64(m.cfg.Period) / knotInMPS
	course := math.Mod(a*180/math.Pi+90, 360)

	ids := make([]string, 12)
	for i, s := range mockSats {
		ids[i] = fmt.Sprintf("%02d", s.id)
	}

	out := []string{
		nmea.AppendChecksum(fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,1,%02d,0.9,42.5,M,36.9,M,,0000",
			hms, latTok, latHemi, lonTok, lonHemi, len(mockSats))),
		nmea.AppendChecksum(fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,,A,S",
			hms, latTok, latHemi, lonTok, lonHemi, speedKn, course, dmy)),
		nmea.AppendChecksum(fmt.Sprintf("GPGSA,A,3,%s,1.6,0.9,1.3,1", strings.Join(ids, ","))),
	}
	return append(out, m.gsv(epoch)...)
}

// gsv splits the constellation into four-satellite messages. Azimuths drift
// by one degree per epoch; an SNR of 0 is sent as an empty field.
func (m *mockSource) gsv(epoch int) []string {
	total := (len(mockSats) + 3) / 4
	var out []string
	for n := 0; n < total; n++ {
		var b strings.Builder
		fmt.Fprintf(&b, "GPGSV,%d,%d,%02d", total, n+1, len(mockSats))
		for _, s := range mockSats[n*4 : min(n*4+4, len(mockSats))] {
			fmt.Fprintf(&b, ",%02d,%02d,%03d,", s.id, s.elevation, (s.azimuth+epoch)%360)
			if s.snr > 0 {
				fmt.Fprintf(&b, "%02d", s.snr)
			}
		}
		b.WriteString(",1")
		out = append(out, nmea.AppendChecksum(b.String()))
	}
	return out
}

// sexagesimal formats decimal degrees as "ddmm.mmmmmmm" with degDigits
// degree digits.
func sexagesimal(v float64, degDigits int, pos, neg string) (string, string) {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	deg := math.Floor(v)
	minutes := (v - deg) * 60
	// 59.99999999 would round up to "60.0000000"
	if math.Round(minutes*1e7) >= 60e7 {
		deg++
		minutes = 0
	}
	return fmt.Sprintf("%0*d%010.7f", degDigits, int(deg), minutes), hemi
}
