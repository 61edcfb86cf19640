// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package nmea decodes NMEA 0183 sentences into a gps.State.
//
// A Decoder holds one receiver session: the latest state plus the partial
// satellites-in-view reports still being assembled. It is not safe for
// concurrent use; feed it from a single goroutine and hand out State()
// snapshots to everyone else.
package nmea

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/gnss_decoder/internal/fixed"
	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

// Units selects how time, date and speed are reported.
type Units int

const (
	// UnitsRaw passes time and date through and reports speed in knots.
	UnitsRaw Units = iota
	// UnitsHuman formats "hh:mm:ss", "yyyy-mm-dd" and km/h.
	UnitsHuman
)

// CoordFormat selects how Latitude and Longitude strings are reported.
type CoordFormat int

const (
	// CoordDecimal reports signed decimal degrees ("-55.77994325").
	CoordDecimal CoordFormat = iota
	// CoordRaw keeps the receiver's ddmm.mmmm token.
	CoordRaw
)

// Observer is told about every sentence handed to Decode.
type Observer interface {
	ObserveSentence(t SentenceType, err error)
}

// Options are fixed for the lifetime of a Decoder.
type Options struct {
	Units        Units
	Coordinates  CoordFormat
	SkipChecksum bool
	// Places is the number of fractional digits used for coordinate math.
	// Zero means fixed.DefaultPlaces.
	Places   int
	Observer Observer
}

type decodeFunc func(d *Decoder, f Fields) error

// decoders is the dispatch table; every registered SentenceType has an entry.
var decoders = map[SentenceType]decodeFunc{
	TypeGGA:    decodeGGA,
	TypeGLL:    decodeGLL,
	TypeGSA:    decodeGSA,
	TypeGSV:    decodeGSV,
	TypeRMC:    decodeRMC,
	TypeVTG:    decodeVTG,
	TypeZDA:    decodeZDA,
	TypeTHS:    decodeTHS,
	TypeSTI005: decodeSTI005,
	TypeSTI030: decodeSTI030,
	TypeSTI032: decodeSTI032,
	TypeSTI035: decodeSTI035,
}

type Decoder struct {
	opts   Options
	state  gps.State
	sats   satAssembler
	epochs uint64
}

func NewDecoder(opts Options) *Decoder {
	if opts.Places <= 0 {
		opts.Places = fixed.DefaultPlaces
	}
	return &Decoder{opts: opts, sats: newSatAssembler()}
}

// Decode frames, validates and decodes one raw line into the state.
//
// The returned error is nil, or matches one of ErrMalformedSentence,
// ErrChecksumMismatch, ErrUnsupportedSentence or ErrDecodeFailure. The
// decoder stays usable after any error.
func (d *Decoder) Decode(line string) (err error) {
	t := TypeUnknown
	if d.opts.Observer != nil {
		defer func() { d.opts.Observer.ObserveSentence(t, err) }()
	}

	fr, err := ParseFrame(line, !d.opts.SkipChecksum)
	if err != nil {
		return err
	}
	f := splitFields(fr.Body)
	key := sentenceKey(f)
	t = LookupType(key)
	fn, ok := decoders[t]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedSentence, key)
	}
	if err := fn(d, f); err != nil {
		if errors.Is(err, ErrUnsupportedSentence) {
			return err
		}
		return &DecodeError{Type: t, Err: err}
	}
	return nil
}

// State returns a snapshot of the decoded state.
func (d *Decoder) State() gps.State {
	return d.state.Clone()
}

// PendingSatellites returns a copy of the satellites-in-view report still
// being assembled for a talker ("GP", "GL", ...).
func (d *Decoder) PendingSatellites(talker string) (gps.SatelliteView, bool) {
	return d.sats.pending(talker)
}

// SatelliteEpoch counts completed satellites-in-view reports. It changes
// whenever State().Satellites has been replaced.
func (d *Decoder) SatelliteEpoch() uint64 {
	return d.epochs
}

func (d *Decoder) human() bool { return d.opts.Units == UnitsHuman }
