// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relabs-tech/gnss_decoder/internal/fixed"
	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

// Fields is the comma-split body of a sentence; field 0 is the "$TTSSS"
// address. Out of range positions read as empty.
type Fields struct {
	tokens []string
}

func splitFields(body string) Fields {
	return Fields{tokens: strings.Split(body, fieldSeparator)}
}

func (f Fields) Len() int { return len(f.tokens) }

func (f Fields) At(i int) string {
	if i < 0 || i >= len(f.tokens) {
		return ""
	}
	return strings.TrimSpace(f.tokens[i])
}

// Slice copies the tokens in [from, to), stopping early at the last field.
func (f Fields) Slice(from, to int) []string {
	out := make([]string, 0, max(to-from, 0))
	for i := from; i < to && i < len(f.tokens); i++ {
		out = append(out, f.At(i))
	}
	return out
}

func (f Fields) need(n int) error {
	if len(f.tokens) < n {
		return fmt.Errorf("want at least %d fields, got %d", n, len(f.tokens))
	}
	return nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseFloat(tok string) (*float64, error) {
	if tok == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("bad number %q", tok)
	}
	return &v, nil
}

func parseInt(tok string) (*int, error) {
	if tok == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return nil, fmt.Errorf("bad integer %q", tok)
	}
	return &v, nil
}

// parseDOP accepts dilution of precision values in (0, 100).
func parseDOP(tok string) (*float64, error) {
	v, err := parseFloat(tok)
	if err != nil || v == nil {
		return nil, err
	}
	if *v <= 0 || *v >= 100 {
		return nil, nil
	}
	return v, nil
}

// parseMeasure reads a satellite reading in [lo, hi]. Empty and out of range
// values become gps.Unknown.
func parseMeasure(tok string, lo, hi int) (gps.Measure, error) {
	v, err := parseInt(tok)
	if err != nil {
		return gps.Unknown, err
	}
	if v == nil || *v < lo || *v > hi {
		return gps.Unknown, nil
	}
	return gps.Measure(*v), nil
}

func lookup(table map[string]string, code string) string {
	return table[strings.ToUpper(code)]
}

// parseCoordinate converts a sexagesimal "ddmm.mmmm" (degDigits=2) or
// "dddmm.mmmm" (degDigits=3) token to signed decimal degrees. ok is false
// when the token is empty or the hemisphere is not one of allowed.
func parseCoordinate(tok, hemi string, degDigits, places int, allowed string) (v fixed.Decimal, ok bool, err error) {
	hemi = strings.ToUpper(hemi)
	if tok == "" || len(hemi) != 1 || !strings.Contains(allowed, hemi) {
		return fixed.Decimal{}, false, nil
	}
	if len(tok) <= degDigits || !digitsOnly(tok[:degDigits]) || !digitsOnly(tok[degDigits:degDigits+1]) {
		return fixed.Decimal{}, false, fmt.Errorf("bad coordinate %q", tok)
	}
	deg, err := fixed.ParsePlaces(tok[:degDigits], places)
	if err != nil {
		return fixed.Decimal{}, false, fmt.Errorf("bad coordinate %q: %w", tok, err)
	}
	minutes, err := fixed.ParsePlaces(tok[degDigits:], places)
	if err != nil {
		return fixed.Decimal{}, false, fmt.Errorf("bad coordinate %q: %w", tok, err)
	}
	sixty := fixed.FromInt(60).WithPlaces(places)
	if minutes.Cmp(sixty) >= 0 {
		return fixed.Decimal{}, false, fmt.Errorf("bad coordinate %q: minutes out of range", tok)
	}
	frac, err := minutes.Div(sixty)
	if err != nil {
		return fixed.Decimal{}, false, err
	}
	v = deg.Add(frac)
	if hemi == "S" || hemi == "W" {
		v = v.Neg()
	}
	return v, true, nil
}

// formatTime validates "hhmmss[.sss]" and reformats it as "hh:mm:ss[.sss]"
// when human is set.
func formatTime(tok string, human bool) (string, error) {
	if len(tok) < 6 || !digitsOnly(tok[:6]) {
		return "", fmt.Errorf("bad time %q", tok)
	}
	if rest := tok[6:]; rest != "" && (rest[0] != '.' || !digitsOnly(rest[1:])) {
		return "", fmt.Errorf("bad time %q", tok)
	}
	hh, _ := strconv.Atoi(tok[0:2])
	mm, _ := strconv.Atoi(tok[2:4])
	ss, _ := strconv.Atoi(tok[4:6])
	if hh > 23 || mm > 59 || ss > 60 {
		return "", fmt.Errorf("bad time %q", tok)
	}
	if !human {
		return tok, nil
	}
	return tok[0:2] + ":" + tok[2:4] + ":" + tok[4:], nil
}

// formatDate validates "ddmmyy" and expands it to "20yy-mm-dd" when human is
// set.
func formatDate(tok string, human bool) (string, error) {
	if len(tok) != 6 || !digitsOnly(tok) {
		return "", fmt.Errorf("bad date %q", tok)
	}
	day, _ := strconv.Atoi(tok[0:2])
	month, _ := strconv.Atoi(tok[2:4])
	year, _ := strconv.Atoi(tok[4:6])
	return formatDMY(day, month, 2000+year, human)
}

// formatDateParts handles dates sent as separate day, month and 4-digit year
// fields.
func formatDateParts(day, month, year string, human bool) (string, error) {
	if len(year) != 4 || !digitsOnly(year) || !digitsOnly(day) || !digitsOnly(month) ||
		len(day) == 0 || len(day) > 2 || len(month) == 0 || len(month) > 2 {
		return "", fmt.Errorf("bad date %q/%q/%q", day, month, year)
	}
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	return formatDMY(d, m, y, human)
}

func formatDMY(day, month, year int, human bool) (string, error) {
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", fmt.Errorf("bad date %02d-%02d-%04d", day, month, year)
	}
	if human {
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
	}
	return fmt.Sprintf("%02d%02d%02d", day, month, year%100), nil
}
