// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"fmt"
	"strings"
)

const (
	startMarker    = '$'
	checksumMarker = '*'
	fieldSeparator = ","
)

// Frame is a sentence split at its checksum marker.
type Frame struct {
	// Body runs from '$' up to, not including, '*'.
	Body string
	// Expected is the two hex digits declared after '*'.
	Expected string
}

// ParseFrame validates the framing of a raw line and, when verify is set,
// its checksum.
func ParseFrame(line string, verify bool) (Frame, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Frame{}, fmt.Errorf("%w: empty line", ErrMalformedSentence)
	}
	if line[0] != startMarker {
		return Frame{}, fmt.Errorf("%w: missing '$'", ErrMalformedSentence)
	}
	if n := strings.Count(line, string(checksumMarker)); n != 1 {
		return Frame{}, fmt.Errorf("%w: want one '*', found %d", ErrMalformedSentence, n)
	}
	star := strings.IndexByte(line, checksumMarker)
	ck := line[star+1:]
	if len(ck) < 2 {
		return Frame{}, fmt.Errorf("%w: short checksum %q", ErrMalformedSentence, ck)
	}
	fr := Frame{Body: line[:star], Expected: ck[:2]}
	if verify {
		if got := Checksum(fr.Body); !strings.EqualFold(got, fr.Expected) {
			return Frame{}, fmt.Errorf("%w: computed %s, declared %s", ErrChecksumMismatch, got, fr.Expected)
		}
	}
	return fr, nil
}

// Checksum XORs every byte of body after the leading '$' and formats the
// result as two lowercase hex digits.
func Checksum(body string) string {
	body = strings.TrimPrefix(body, string(startMarker))
	ck := byte(0)
	for i := 0; i < len(body); i++ {
		ck ^= body[i]
	}
	return fmt.Sprintf("%02x", ck)
}

// AppendChecksum turns a payload such as "GPGGA,..." into a complete
// "$GPGGA,...*hh" sentence.
func AppendChecksum(payload string) string {
	payload = strings.TrimPrefix(payload, string(startMarker))
	return fmt.Sprintf("%c%s%c%s", startMarker, payload, checksumMarker, strings.ToUpper(Checksum(payload)))
}
