// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import "strings"

// SentenceType identifies the payload layout of a sentence.
type SentenceType int

const (
	TypeUnknown SentenceType = iota
	TypeGGA                  // fix data
	TypeGLL                  // geographic position
	TypeGSA                  // DOP and active satellites
	TypeGSV                  // satellites in view
	TypeRMC                  // recommended minimum data
	TypeVTG                  // course and speed over ground
	TypeZDA                  // time and date
	TypeTHS                  // true heading and status
	TypeSTI005               // SkyTraq time stamp
	TypeSTI030               // SkyTraq recommended minimum 3D data
	TypeSTI032               // SkyTraq RTK baseline data
	TypeSTI035               // SkyTraq RTK baseline of a moving base
)

var typeNames = map[SentenceType]string{
	TypeUnknown: "unknown",
	TypeGGA:     "GGA",
	TypeGLL:     "GLL",
	TypeGSA:     "GSA",
	TypeGSV:     "GSV",
	TypeRMC:     "RMC",
	TypeVTG:     "VTG",
	TypeZDA:     "ZDA",
	TypeTHS:     "THS",
	TypeSTI005:  "STI005",
	TypeSTI030:  "STI030",
	TypeSTI032:  "STI032",
	TypeSTI035:  "STI035",
}

// typesByKey is built once from typeNames.
var typesByKey = func() map[string]SentenceType {
	m := make(map[string]SentenceType, len(typeNames))
	for t, name := range typeNames {
		if t != TypeUnknown {
			m[name] = t
		}
	}
	return m
}()

func (t SentenceType) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// LookupType returns the sentence type registered for a key such as "gga"
// or "STI030". Lookup ignores case.
func LookupType(key string) SentenceType {
	return typesByKey[strings.ToUpper(key)]
}

// sentenceKey derives the lookup key from the address field and, for
// proprietary sentences, the sub-id in field 1.
//
//	$GPGGA,...    -> "GGA"
//	$PSTI,030,... -> "STI030"
func sentenceKey(f Fields) string {
	addr := f.At(0)
	if len(addr) < 2 || addr[0] != startMarker {
		return ""
	}
	if addr[1] == 'P' || addr[1] == 'p' {
		code := addr[2:]
		if len(code) > 3 {
			code = code[:3]
		}
		return strings.ToUpper(code + strings.TrimSpace(f.At(1)))
	}
	if len(addr) < 6 {
		return ""
	}
	return strings.ToUpper(addr[3:6])
}

// talkerID returns the two letter talker of a standard sentence ("GP").
func talkerID(f Fields) string {
	addr := f.At(0)
	if len(addr) < 3 {
		return ""
	}
	return strings.ToUpper(addr[1:3])
}
