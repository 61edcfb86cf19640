// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSentence covers empty lines and missing '$' or '*' markers.
	ErrMalformedSentence = errors.New("nmea: malformed sentence")
	// ErrChecksumMismatch means the XOR checksum does not match the declared one.
	ErrChecksumMismatch = errors.New("nmea: checksum mismatch")
	// ErrUnsupportedSentence means no decoder is registered for the sentence key.
	ErrUnsupportedSentence = errors.New("nmea: unsupported sentence")
	// ErrDecodeFailure matches every *DecodeError.
	ErrDecodeFailure = errors.New("nmea: decode failure")
)

// DecodeError reports a field that could not be decoded. Fields written by
// the same sentence before the failing one stay applied.
type DecodeError struct {
	Type SentenceType
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("nmea: decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecodeFailure }

// Outcome maps a Decode result to a short label for logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedSentence):
		return "malformed"
	case errors.Is(err, ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, ErrUnsupportedSentence):
		return "unsupported"
	case errors.Is(err, ErrDecodeFailure):
		return "decode_error"
	default:
		return "error"
	}
}
