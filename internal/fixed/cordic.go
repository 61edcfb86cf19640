// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fixed

import (
	"math/big"
	"sync"
)

// atan(2^-i) for i = 0..15, in radians.
var atanTable = [...]string{
	"0.7853981633974483096156",
	"0.4636476090008061162142",
	"0.2449786631268641541720",
	"0.1243549945467614350313",
	"0.0624188099959573484739",
	"0.0312398334302682762537",
	"0.0156237286204768308028",
	"0.0078123410601011112964",
	"0.0039062301319669718276",
	"0.0019531225164788186851",
	"0.0009765621895593194304",
	"0.0004882812111948982754",
	"0.0002441406201493617640",
	"0.0001220703118936702042",
	"0.0000610351561742087750",
	"0.0000305175781155260968",
}

const (
	piDigits   = "3.1415926535897932384626433832795028841971"
	cordicGain = "0.6072529350088812561694467525049282631123"
)

type cordicConsts struct {
	atan   []*big.Int
	pi     *big.Int
	halfPi *big.Int
	twoPi  *big.Int
	gain   *big.Int
}

var (
	constsMu    sync.Mutex
	constsCache = map[int]*cordicConsts{}
)

// constsFor returns the CORDIC table and angle constants at p places.
// The returned values are shared and must not be modified.
func constsFor(p int) *cordicConsts {
	constsMu.Lock()
	defer constsMu.Unlock()
	if c, ok := constsCache[p]; ok {
		return c
	}
	c := &cordicConsts{
		pi:   mustPlaces(piDigits, p),
		gain: mustPlaces(cordicGain, p),
	}
	c.halfPi = new(big.Int).Rsh(c.pi, 1)
	c.twoPi = new(big.Int).Lsh(c.pi, 1)
	for _, s := range atanTable {
		c.atan = append(c.atan, mustPlaces(s, p))
	}
	constsCache[p] = c
	return c
}

func mustPlaces(s string, p int) *big.Int {
	d, err := ParsePlaces(s, p)
	if err != nil {
		panic(err)
	}
	return d.n
}

func cordicPlaces(p int) int {
	if p == 0 {
		return DefaultPlaces
	}
	return p
}

// Pi returns π at DefaultPlaces.
func Pi() Decimal {
	return fromBig(new(big.Int).Set(constsFor(DefaultPlaces).pi), DefaultPlaces)
}

// TwoPi returns 2π at DefaultPlaces.
func TwoPi() Decimal {
	return fromBig(new(big.Int).Set(constsFor(DefaultPlaces).twoPi), DefaultPlaces)
}

// HalfPi returns π/2 at DefaultPlaces.
func HalfPi() Decimal {
	return fromBig(new(big.Int).Set(constsFor(DefaultPlaces).halfPi), DefaultPlaces)
}

// Radians converts degrees to radians.
func Radians(deg Decimal) Decimal {
	p := cordicPlaces(deg.places)
	pi := fromBig(new(big.Int).Set(constsFor(p).pi), p)
	r, _ := deg.rescale(p).Mul(pi).Div(FromInt(180).rescale(p))
	return r
}

// Degrees converts radians to degrees.
func Degrees(rad Decimal) Decimal {
	p := cordicPlaces(rad.places)
	pi := fromBig(new(big.Int).Set(constsFor(p).pi), p)
	r, _ := rad.rescale(p).Mul(FromInt(180).rescale(p)).Div(pi)
	return r
}

// Atan2 returns the angle of (x, y) in radians, in (-π, π], using 16 CORDIC
// vectoring iterations.
func Atan2(y, x Decimal) Decimal {
	p := cordicPlaces(max(x.places, y.places))
	xi, yi := x.rescale(p).n, y.rescale(p).n
	c := constsFor(p)

	z := new(big.Int)
	if xi.Sign() == 0 && yi.Sign() == 0 {
		return fromBig(z, p)
	}
	if xi.Sign() < 0 {
		if yi.Sign() >= 0 {
			z.Set(c.pi)
		} else {
			z.Neg(c.pi)
		}
		xi.Neg(xi)
		yi.Neg(yi)
	}

	dx, dy := new(big.Int), new(big.Int)
	for i, a := range c.atan {
		dx.Rsh(yi, uint(i))
		dy.Rsh(xi, uint(i))
		if yi.Sign() > 0 {
			xi.Add(xi, dx)
			yi.Sub(yi, dy)
			z.Add(z, a)
		} else {
			xi.Sub(xi, dx)
			yi.Add(yi, dy)
			z.Sub(z, a)
		}
	}
	return fromBig(z, p)
}

// SinCos returns sin(a) and cos(a) for an angle in radians.
func SinCos(a Decimal) (sin, cos Decimal) {
	p := cordicPlaces(a.places)
	c := constsFor(p)
	z := a.rescale(p).n

	for z.Cmp(c.pi) > 0 {
		z.Sub(z, c.twoPi)
	}
	negPi := new(big.Int).Neg(c.pi)
	for z.Cmp(negPi) < 0 {
		z.Add(z, c.twoPi)
	}

	// sin is odd, cos is even.
	negSin := z.Sign() < 0
	z.Abs(z)
	negCos := false
	if z.Cmp(c.halfPi) > 0 {
		z.Sub(c.pi, z)
		negCos = true
	}

	x := new(big.Int).Set(pow10(p))
	y := new(big.Int)
	dx, dy := new(big.Int), new(big.Int)
	for i, at := range c.atan {
		dx.Rsh(y, uint(i))
		dy.Rsh(x, uint(i))
		if z.Sign() >= 0 {
			x.Sub(x, dx)
			y.Add(y, dy)
			z.Sub(z, at)
		} else {
			x.Add(x, dx)
			y.Sub(y, dy)
			z.Add(z, at)
		}
	}

	gain := fromBig(c.gain, p)
	cos = fromBig(x, p).Mul(gain)
	sin = fromBig(y, p).Mul(gain)
	if negCos {
		cos = cos.Neg()
	}
	if negSin {
		sin = sin.Neg()
	}
	return sin, cos
}

// Cos returns the cosine of an angle in radians.
func Cos(a Decimal) Decimal {
	_, c := SinCos(a)
	return c
}

// Sin returns the sine of an angle in radians.
func Sin(a Decimal) Decimal {
	s, _ := SinCos(a)
	return s
}
