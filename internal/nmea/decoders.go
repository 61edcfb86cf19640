// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/gnss_decoder/internal/fixed"
	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

const statusValid = "A"

var knotsToKmh = fixed.MustParse("1.852")

// Decoders write fields in sentence order and return at the first field that
// cannot be decoded. Fields written before that point are kept.

// GGA: Global Positioning System Fix Data
//
//	1: time        2/3: latitude, N/S    4/5: longitude, E/W
//	6: quality     7: satellites used    8: HDOP
//	9: altitude   11: geoidal separation
//
// 13: DGPS age   14: DGPS station id
func decodeGGA(d *Decoder, f Fields) error {
	if err := f.need(15); err != nil {
		return err
	}
	if err := d.setTime(f.At(1)); err != nil {
		return err
	}
	if err := d.setLatitude(f.At(2), f.At(3)); err != nil {
		return err
	}
	if err := d.setLongitude(f.At(4), f.At(5)); err != nil {
		return err
	}
	if err := d.setQuality(f.At(6)); err != nil {
		return err
	}
	if err := setInt(&d.state.SatellitesUsed, f.At(7)); err != nil {
		return err
	}
	if err := setDOP(&d.state.HDOP, f.At(8)); err != nil {
		return err
	}
	if err := setFloat(&d.state.Altitude, f.At(9)); err != nil {
		return err
	}
	if err := setFloat(&d.state.GeoidalSeparation, f.At(11)); err != nil {
		return err
	}
	if err := setFloat(&d.state.DGPSAge, f.At(13)); err != nil {
		return err
	}
	return setInt(&d.state.DGPSStationID, f.At(14))
}

// GLL: Geographic Position
//
//	1/2: latitude, N/S   3/4: longitude, E/W   5: time   6: status   7: mode
func decodeGLL(d *Decoder, f Fields) error {
	if err := f.need(7); err != nil {
		return err
	}
	if !statusOK(f.At(6)) || !modeOK(f.At(7)) {
		return nil
	}
	if err := d.setLatitude(f.At(1), f.At(2)); err != nil {
		return err
	}
	if err := d.setLongitude(f.At(3), f.At(4)); err != nil {
		return err
	}
	if err := d.setTime(f.At(5)); err != nil {
		return err
	}
	d.setMode(f.At(7))
	return nil
}

// GSA: GNSS DOP and Active Satellites
//
//	1: selection mode   2: fix type   3-14: satellite ids
//
// 15: PDOP  16: HDOP  17: VDOP  18: GNSS system id (NMEA 4.1+)
func decodeGSA(d *Decoder, f Fields) error {
	if err := f.need(18); err != nil {
		return err
	}
	if ft := lookup(fixTypeNames, f.At(2)); ft != "" {
		d.state.FixType = ft
	}
	c, ok, err := gsaConstellation(f)
	if err != nil {
		return err
	}
	if ok {
		if d.state.SatelliteIDs == nil {
			d.state.SatelliteIDs = map[string][]string{}
		}
		d.state.SatelliteIDs[c.system] = f.Slice(3, 15)
	}
	if err := setDOP(&d.state.PDOP, f.At(15)); err != nil {
		return err
	}
	if err := setDOP(&d.state.HDOP, f.At(16)); err != nil {
		return err
	}
	return setDOP(&d.state.VDOP, f.At(17))
}

// gsaConstellation resolves the system id field, falling back to the talker
// for receivers that predate it. "GN" sentences without an id resolve to
// nothing.
func gsaConstellation(f Fields) (constellation, bool, error) {
	id, err := parseInt(f.At(18))
	if err != nil {
		return constellation{}, false, err
	}
	if id != nil {
		c, ok := constellations[*id]
		return c, ok, nil
	}
	c, ok := constellationByTalker(talkerID(f))
	return c, ok, nil
}

// RMC: Recommended Minimum Specific GNSS Data
//
//	1: time   2: status   3/4: latitude   5/6: longitude   7: speed (knots)
//	8: course   9: date   10/11: magnetic variation, E/W
//
// 12: mode (NMEA 2.3+)  13: navigational status (NMEA 4.1+)
func decodeRMC(d *Decoder, f Fields) error {
	if err := f.need(10); err != nil {
		return err
	}
	if !statusOK(f.At(2)) || !modeOK(f.At(12)) || !navStatusOK(f.At(13)) {
		return nil
	}
	if err := d.setTime(f.At(1)); err != nil {
		return err
	}
	if err := d.setLatitude(f.At(3), f.At(4)); err != nil {
		return err
	}
	if err := d.setLongitude(f.At(5), f.At(6)); err != nil {
		return err
	}
	if err := d.setSpeedKnots(f.At(7)); err != nil {
		return err
	}
	if err := setFloat(&d.state.Course, f.At(8)); err != nil {
		return err
	}
	if err := d.setDate(f.At(9)); err != nil {
		return err
	}
	if err := d.setMagneticVariation(f.At(10), f.At(11)); err != nil {
		return err
	}
	d.setMode(f.At(12))
	if ns := lookup(navStatusNames, f.At(13)); ns != "" {
		d.state.NavStatus = ns
	}
	return nil
}

// VTG: Course Over Ground and Ground Speed
//
//	1: course true   3: course magnetic   5: speed (knots)   7: speed (km/h)
//	9: mode
func decodeVTG(d *Decoder, f Fields) error {
	if err := f.need(9); err != nil {
		return err
	}
	if !modeOK(f.At(9)) {
		return nil
	}
	if err := setFloat(&d.state.Course, f.At(1)); err != nil {
		return err
	}
	var err error
	if f.At(5) != "" {
		err = d.setSpeedKnots(f.At(5))
	} else {
		err = d.setSpeedKmh(f.At(7))
	}
	if err != nil {
		return err
	}
	d.setMode(f.At(9))
	return nil
}

// ZDA: Time and Date
//
//	1: time   2: day   3: month   4: year   5/6: local zone hours, minutes
func decodeZDA(d *Decoder, f Fields) error {
	if err := f.need(5); err != nil {
		return err
	}
	if err := d.setTime(f.At(1)); err != nil {
		return err
	}
	return d.setDateParts(f.At(2), f.At(3), f.At(4))
}

// THS: True Heading and Status
//
//	1: heading (degrees true)   2: mode
func decodeTHS(d *Decoder, f Fields) error {
	if err := f.need(3); err != nil {
		return err
	}
	if !modeOK(f.At(2)) {
		return nil
	}
	if err := setFloat(&d.state.Heading, f.At(1)); err != nil {
		return err
	}
	if m := lookup(modeNames, f.At(2)); m != "" {
		d.state.HeadingMode = m
	}
	return nil
}

// PSTI,005: Time Stamp Output
//
//	2: time   3: day   4: month   5: year
func decodeSTI005(d *Decoder, f Fields) error {
	if err := f.need(6); err != nil {
		return err
	}
	if err := d.setTime(f.At(2)); err != nil {
		return err
	}
	return d.setDateParts(f.At(3), f.At(4), f.At(5))
}

// PSTI,030: Recommended Minimum 3D GNSS Data
//
//	2: time   3: status   4/5: latitude   6/7: longitude   8: altitude
//	9/10/11: east, north, up velocity (m/s)   12: date   13: mode
//
// 14: RTK age   15: RTK ratio
func decodeSTI030(d *Decoder, f Fields) error {
	if err := f.need(16); err != nil {
		return err
	}
	if !statusOK(f.At(3)) || !modeOK(f.At(13)) {
		return nil
	}
	if err := d.setTime(f.At(2)); err != nil {
		return err
	}
	if err := d.setLatitude(f.At(4), f.At(5)); err != nil {
		return err
	}
	if err := d.setLongitude(f.At(6), f.At(7)); err != nil {
		return err
	}
	if err := setFloat(&d.state.Altitude, f.At(8)); err != nil {
		return err
	}
	if err := setFloat(&d.state.EastVelocity, f.At(9)); err != nil {
		return err
	}
	if err := setFloat(&d.state.NorthVelocity, f.At(10)); err != nil {
		return err
	}
	if err := setFloat(&d.state.UpVelocity, f.At(11)); err != nil {
		return err
	}
	if err := d.setDate(f.At(12)); err != nil {
		return err
	}
	d.setMode(f.At(13))
	if err := setFloat(&d.state.RTKAge, f.At(14)); err != nil {
		return err
	}
	return setFloat(&d.state.RTKRatio, f.At(15))
}

// PSTI,032: RTK Baseline Data
//
//	2: time   3: date   4: status   5: mode
//	6/7/8: east, north, up projection of the baseline (m)
//	9: baseline length (m)   10: baseline course (degrees)
func decodeSTI032(d *Decoder, f Fields) error {
	if err := f.need(11); err != nil {
		return err
	}
	if !statusOK(f.At(4)) || !modeOK(f.At(5)) {
		return nil
	}
	if err := d.setTime(f.At(2)); err != nil {
		return err
	}
	if err := d.setDate(f.At(3)); err != nil {
		return err
	}
	d.setMode(f.At(5))

	var b gps.Baseline
	for i, dst := range []**float64{&b.East, &b.North, &b.Up, &b.Length, &b.Course} {
		if err := setFloat(dst, f.At(6+i)); err != nil {
			return err
		}
	}
	d.state.Baseline = &b
	return nil
}

// PSTI,035 carries the baseline of a moving-base rover. Its layout is not
// decoded; the sentence is reported as unsupported.
func decodeSTI035(_ *Decoder, _ Fields) error {
	return fmt.Errorf("%w: %q is not implemented", ErrUnsupportedSentence, TypeSTI035.String())
}

func statusOK(status string) bool {
	return strings.EqualFold(status, statusValid)
}

// modeOK rejects the "data not valid" mode indicators; an absent mode passes.
func modeOK(mode string) bool {
	m := strings.ToUpper(mode)
	return m != "N" && m != "V"
}

// navStatusOK rejects unsafe and not-valid navigational status; absent passes.
func navStatusOK(status string) bool {
	s := strings.ToUpper(status)
	return s != "U" && s != "V"
}

func setFloat(dst **float64, tok string) error {
	v, err := parseFloat(tok)
	if err != nil {
		return err
	}
	if v != nil {
		*dst = v
	}
	return nil
}

func setInt(dst **int, tok string) error {
	v, err := parseInt(tok)
	if err != nil {
		return err
	}
	if v != nil {
		*dst = v
	}
	return nil
}

func setDOP(dst **float64, tok string) error {
	v, err := parseDOP(tok)
	if err != nil {
		return err
	}
	if v != nil {
		*dst = v
	}
	return nil
}

func (d *Decoder) setTime(tok string) error {
	if tok == "" {
		return nil
	}
	v, err := formatTime(tok, d.human())
	if err != nil {
		return err
	}
	d.state.Time = v
	return nil
}

func (d *Decoder) setDate(tok string) error {
	if tok == "" {
		return nil
	}
	v, err := formatDate(tok, d.human())
	if err != nil {
		return err
	}
	d.state.Date = v
	return nil
}

func (d *Decoder) setDateParts(day, month, year string) error {
	if day == "" || month == "" || year == "" {
		return nil
	}
	v, err := formatDateParts(day, month, year, d.human())
	if err != nil {
		return err
	}
	d.state.Date = v
	return nil
}

func (d *Decoder) setLatitude(tok, hemi string) error {
	v, ok, err := parseCoordinate(tok, hemi, 2, d.opts.Places, "NS")
	if err != nil || !ok {
		return err
	}
	d.state.LatDegrees = &v
	d.state.LatHemisphere = strings.ToUpper(hemi)
	d.state.Latitude = d.formatCoordinate(tok, v)
	return nil
}

func (d *Decoder) setLongitude(tok, hemi string) error {
	v, ok, err := parseCoordinate(tok, hemi, 3, d.opts.Places, "EW")
	if err != nil || !ok {
		return err
	}
	d.state.LonDegrees = &v
	d.state.LonHemisphere = strings.ToUpper(hemi)
	d.state.Longitude = d.formatCoordinate(tok, v)
	return nil
}

func (d *Decoder) formatCoordinate(raw string, v fixed.Decimal) string {
	if d.opts.Coordinates == CoordRaw {
		return raw
	}
	return v.String()
}

func (d *Decoder) setQuality(tok string) error {
	q, err := parseInt(tok)
	if err != nil || q == nil {
		return err
	}
	if *q >= 0 && *q < len(qualityNames) {
		d.state.Quality = qualityNames[*q]
	}
	return nil
}

func (d *Decoder) setMode(tok string) {
	if m := lookup(modeNames, tok); m != "" {
		d.state.Mode = m
	}
}

// setSpeedKnots stores knots as reported, or km/h rounded to 0.01 in human
// units.
func (d *Decoder) setSpeedKnots(tok string) error {
	if tok == "" {
		return nil
	}
	kn, err := fixed.ParsePlaces(tok, d.opts.Places)
	if err != nil {
		return fmt.Errorf("bad speed %q", tok)
	}
	if d.human() {
		d.storeSpeed(kn.Mul(knotsToKmh).Round(2), "km/h")
	} else {
		d.storeSpeed(kn, "kn")
	}
	return nil
}

func (d *Decoder) setSpeedKmh(tok string) error {
	if tok == "" {
		return nil
	}
	kmh, err := fixed.ParsePlaces(tok, d.opts.Places)
	if err != nil {
		return fmt.Errorf("bad speed %q", tok)
	}
	if d.human() {
		d.storeSpeed(kmh.Round(2), "km/h")
		return nil
	}
	kn, err := kmh.Div(knotsToKmh)
	if err != nil {
		return err
	}
	d.storeSpeed(kn.Round(2), "kn")
	return nil
}

func (d *Decoder) storeSpeed(v fixed.Decimal, unit string) {
	f := v.Float64()
	d.state.Speed = &f
	d.state.SpeedUnit = unit
}

func (d *Decoder) setMagneticVariation(tok, dir string) error {
	v, err := parseFloat(tok)
	if err != nil || v == nil {
		return err
	}
	if strings.EqualFold(dir, "W") {
		*v = -*v
	}
	d.state.MagneticVariation = v
	return nil
}
