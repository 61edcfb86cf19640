// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fixed implements an exact decimal number with a fixed number of
// fractional digits. Values are immutable: every operation returns a new
// Decimal.
//
// Multiplication and division truncate toward zero at the configured
// number of places, so results never carry binary floating point noise.
package fixed

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DefaultPlaces is the number of fractional digits used by Parse and FromInt.
const DefaultPlaces = 10

var (
	ErrSyntax           = errors.New("fixed: invalid decimal syntax")
	ErrDivisionByZero   = errors.New("fixed: division by zero")
	ErrNegativeRadicand = errors.New("fixed: square root of negative value")
)

// Decimal is a signed integer magnitude scaled by 10^places.
// The zero value is 0 with no fractional digits.
type Decimal struct {
	n      *big.Int
	places int
}

var pow10Cache [64]*big.Int

func init() {
	v := big.NewInt(1)
	for i := range pow10Cache {
		pow10Cache[i] = new(big.Int).Set(v)
		v.Mul(v, big.NewInt(10))
	}
}

func pow10(p int) *big.Int {
	if p < len(pow10Cache) {
		return pow10Cache[p]
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p)), nil)
}

// Parse reads a decimal string such as "-12.5" at DefaultPlaces.
func Parse(s string) (Decimal, error) {
	return ParsePlaces(s, DefaultPlaces)
}

// MustParse is Parse for constants; it panics on bad input.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParsePlaces reads a decimal string keeping the given number of fractional
// digits. Extra digits are truncated, missing ones are zero padded.
func ParsePlaces(s string, places int) (Decimal, error) {
	if places < 0 {
		return Decimal{}, fmt.Errorf("%w: negative places %d", ErrSyntax, places)
	}
	raw := s
	s = strings.TrimSpace(s)
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, raw)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, raw)
	}

	if len(frac) > places {
		frac = frac[:places]
	} else {
		frac += strings.Repeat("0", places-len(frac))
	}

	digits := whole + frac
	if digits == "" {
		digits = "0"
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("%w: %q", ErrSyntax, raw)
	}
	if neg {
		n.Neg(n)
	}
	return Decimal{n: n, places: places}, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FromInt returns v at DefaultPlaces.
func FromInt(v int64) Decimal {
	return fromBig(big.NewInt(v), 0).rescale(DefaultPlaces)
}

// Number lists the inputs accepted by Of.
type Number interface {
	string | int | int64 | Decimal
}

// Of normalises a decimal string, an integer or an existing Decimal into a
// Decimal, so helpers can accept any of them.
func Of[T Number](v T) (Decimal, error) {
	switch x := any(v).(type) {
	case Decimal:
		return x, nil
	case string:
		return Parse(x)
	case int:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	}
	return Decimal{}, ErrSyntax
}

func fromBig(n *big.Int, places int) Decimal {
	return Decimal{n: n, places: places}
}

func (d Decimal) int() *big.Int {
	if d.n == nil {
		return new(big.Int)
	}
	return d.n
}

// Places reports the number of fractional digits.
func (d Decimal) Places() int { return d.places }

// rescale returns d with p fractional digits, truncating when p shrinks.
func (d Decimal) rescale(p int) Decimal {
	switch {
	case p == d.places:
		return fromBig(new(big.Int).Set(d.int()), p)
	case p > d.places:
		return fromBig(new(big.Int).Mul(d.int(), pow10(p-d.places)), p)
	default:
		return fromBig(new(big.Int).Quo(d.int(), pow10(d.places-p)), p)
	}
}

// WithPlaces returns d rescaled to p fractional digits.
func (d Decimal) WithPlaces(p int) Decimal {
	if p < 0 {
		p = 0
	}
	return d.rescale(p)
}

func align(a, b Decimal) (x, y *big.Int, p int) {
	p = max(a.places, b.places)
	return a.rescale(p).n, b.rescale(p).n, p
}

func (d Decimal) Add(o Decimal) Decimal {
	x, y, p := align(d, o)
	return fromBig(x.Add(x, y), p)
}

func (d Decimal) Sub(o Decimal) Decimal {
	x, y, p := align(d, o)
	return fromBig(x.Sub(x, y), p)
}

// Mul multiplies and renormalises, dropping digits past the scale.
func (d Decimal) Mul(o Decimal) Decimal {
	x, y, p := align(d, o)
	x.Mul(x, y)
	return fromBig(x.Quo(x, pow10(p)), p)
}

// Div divides keeping the configured fractional digits.
func (d Decimal) Div(o Decimal) (Decimal, error) {
	x, y, p := align(d, o)
	if y.Sign() == 0 {
		return Decimal{}, ErrDivisionByZero
	}
	x.Mul(x, pow10(p))
	return fromBig(x.Quo(x, y), p), nil
}

// Pow raises d to an integer power by repeated squaring. Negative exponents
// return the reciprocal of the positive power.
func (d Decimal) Pow(e int) (Decimal, error) {
	p := d.places
	result := fromBig(new(big.Int).Set(pow10(p)), p)
	base := d
	k := e
	if k < 0 {
		k = -k
	}
	for k > 0 {
		if k&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		k >>= 1
	}
	if e < 0 {
		one := fromBig(new(big.Int).Set(pow10(p)), p)
		return one.Div(result)
	}
	return result, nil
}

const sqrtMaxIterations = 30

// Sqrt computes the square root with Newton's method on the scaled integer.
func (d Decimal) Sqrt() (Decimal, error) {
	n := d.int()
	if n.Sign() < 0 {
		return Decimal{}, ErrNegativeRadicand
	}
	p := d.places
	if n.Sign() == 0 {
		return fromBig(new(big.Int), p), nil
	}
	scale := pow10(p)

	// sqrt(n/scale) * scale == sqrt(n*scale)
	target := new(big.Int).Mul(n, scale)

	var x *big.Int
	if n.Cmp(scale) < 0 {
		x = new(big.Int).Set(scale)
	} else {
		x = new(big.Int).Rsh(n, 1)
	}
	if x.Sign() == 0 {
		x.SetInt64(1)
	}

	next := new(big.Int)
	diff := new(big.Int)
	for i := 0; i < sqrtMaxIterations; i++ {
		next.Quo(target, x)
		next.Add(next, x)
		next.Rsh(next, 1)
		diff.Sub(next, x)
		x.Set(next)
		if diff.CmpAbs(big.NewInt(1)) <= 0 {
			break
		}
	}
	return fromBig(x, p), nil
}

func (d Decimal) Neg() Decimal {
	return fromBig(new(big.Int).Neg(d.int()), d.places)
}

func (d Decimal) Abs() Decimal {
	return fromBig(new(big.Int).Abs(d.int()), d.places)
}

// Sign returns -1, 0 or +1.
func (d Decimal) Sign() int { return d.int().Sign() }

func (d Decimal) IsZero() bool { return d.Sign() == 0 }

// Cmp compares d and o and returns -1, 0 or +1.
func (d Decimal) Cmp(o Decimal) int {
	x, y, _ := align(d, o)
	return x.Cmp(y)
}

// Equal reports numeric equality regardless of places.
func (d Decimal) Equal(o Decimal) bool { return d.Cmp(o) == 0 }

// Truncate drops digits past q fractional places, keeping d's scale.
func (d Decimal) Truncate(q int) Decimal {
	if q >= d.places || q < 0 {
		return d
	}
	f := pow10(d.places - q)
	n := new(big.Int).Quo(d.int(), f)
	return fromBig(n.Mul(n, f), d.places)
}

// Round rounds half away from zero at q fractional places, keeping d's scale.
func (d Decimal) Round(q int) Decimal {
	if q >= d.places || q < 0 {
		return d
	}
	f := pow10(d.places - q)
	quo, rem := new(big.Int).QuoRem(d.int(), f, new(big.Int))
	rem.Abs(rem).Lsh(rem, 1)
	if rem.Cmp(f) >= 0 {
		if d.Sign() < 0 {
			quo.Sub(quo, big.NewInt(1))
		} else {
			quo.Add(quo, big.NewInt(1))
		}
	}
	return fromBig(quo.Mul(quo, f), d.places)
}

// Int64 truncates toward zero.
func (d Decimal) Int64() int64 {
	return new(big.Int).Quo(d.int(), pow10(d.places)).Int64()
}

func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

// String formats d with trailing fractional zeros removed ("2", "-5.25").
func (d Decimal) String() string {
	n := d.int()
	abs := new(big.Int).Abs(n)
	digits := abs.String()
	if d.places > 0 {
		if len(digits) <= d.places {
			digits = strings.Repeat("0", d.places-len(digits)+1) + digits
		}
		cut := len(digits) - d.places
		whole, frac := digits[:cut], strings.TrimRight(digits[cut:], "0")
		digits = whole
		if frac != "" {
			digits += "." + frac
		}
	}
	if n.Sign() < 0 {
		return "-" + digits
	}
	return digits
}

func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Decimal) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
