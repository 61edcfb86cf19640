// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"fmt"

	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

// satAssembler collects GSV fragments per talker until a full report is in.
type satAssembler struct {
	pendingByTalker map[string]*pendingView
}

// pendingView merges fragments by satellite id. seen holds the ids reported
// since the last message 1, so satellites that left the sky can be pruned.
type pendingView struct {
	view gps.SatelliteView
	seen map[int]bool
}

func newSatAssembler() satAssembler {
	return satAssembler{pendingByTalker: map[string]*pendingView{}}
}

func (a *satAssembler) pending(talker string) (gps.SatelliteView, bool) {
	p, ok := a.pendingByTalker[talker]
	if !ok {
		return gps.SatelliteView{}, false
	}
	return p.view.Clone(), true
}

// complete reports whether p holds exactly the declared satellites, dropping
// ids not seen in the current cycle when there are too many.
func (p *pendingView) complete() bool {
	sats := p.view.Satellites
	if len(sats) > p.view.InView {
		for id := range sats {
			if !p.seen[id] {
				delete(sats, id)
			}
		}
	}
	return len(sats) == p.view.InView
}

// GSV: Satellites in View
//
//	1: total messages   2: message number   3: satellites in view
//	4..: groups of (id, elevation, azimuth, SNR)
//
// An odd trailing field is the signal id (NMEA 4.1+).
func decodeGSV(d *Decoder, f Fields) error {
	if err := f.need(4); err != nil {
		return err
	}
	talker := talkerID(f)
	c, ok := constellationByTalker(talker)
	if !ok {
		return nil
	}

	total, err := parseInt(f.At(1))
	if err != nil {
		return err
	}
	number, err := parseInt(f.At(2))
	if err != nil {
		return err
	}
	inView, err := parseInt(f.At(3))
	if err != nil {
		return err
	}
	if total == nil || number == nil || inView == nil {
		return nil
	}

	a := &d.sats
	p, ok := a.pendingByTalker[talker]
	if !ok {
		p = &pendingView{
			view: gps.SatelliteView{Satellites: map[int]gps.SatelliteInfo{}},
			seen: map[int]bool{},
		}
		a.pendingByTalker[talker] = p
	}
	if *number == 1 {
		clear(p.seen)
	}
	view := &p.view
	view.InView = *inView

	off := 4
	for ; off+4 <= f.Len(); off += 4 {
		if f.At(off) == "" {
			continue
		}
		id, info, err := parseSatellite(f.Slice(off, off+4))
		if err != nil {
			return err
		}
		view.Satellites[id] = info
		p.seen[id] = true
	}
	if off < f.Len() {
		if sig, ok := c.signals[f.At(off)]; ok {
			view.Signal = sig
		}
	}

	if *number == *total && p.complete() {
		if d.state.Satellites == nil {
			d.state.Satellites = map[string]gps.SatelliteView{}
		}
		d.state.Satellites[talker] = view.Clone()
		d.epochs++
	}
	return nil
}

func parseSatellite(group []string) (int, gps.SatelliteInfo, error) {
	id, err := parseInt(group[0])
	if err != nil {
		return 0, gps.SatelliteInfo{}, fmt.Errorf("satellite id: %w", err)
	}
	elev, err := parseMeasure(group[1], 0, 90)
	if err != nil {
		return 0, gps.SatelliteInfo{}, fmt.Errorf("satellite %d elevation: %w", *id, err)
	}
	azim, err := parseMeasure(group[2], 0, 359)
	if err != nil {
		return 0, gps.SatelliteInfo{}, fmt.Errorf("satellite %d azimuth: %w", *id, err)
	}
	snr, err := parseMeasure(group[3], 0, 99)
	if err != nil {
		return 0, gps.SatelliteInfo{}, fmt.Errorf("satellite %d snr: %w", *id, err)
	}
	return *id, gps.SatelliteInfo{Elevation: elev, Azimuth: azim, SNR: snr}, nil
}
