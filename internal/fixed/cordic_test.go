package fixed

import (
	"math"
	"strconv"
	"testing"
)

// 16 CORDIC iterations resolve angles to about atan(2^-15).
const cordicTolerance = 5e-5

func dec(v float64) Decimal {
	d, err := Parse(strconv.FormatFloat(v, 'f', 12, 64))
	if err != nil {
		panic(err)
	}
	return d
}

func TestAtan2AllQuadrants(t *testing.T) {
	cases := [][2]float64{
		{1, 1}, {1, -1}, {-1, -1}, {-1, 1},
		{0, 1}, {0, -1}, {1, 0}, {-1, 0},
		{0.3, 4.2}, {-2.5, 0.01}, {3, -0.2}, {-0.7, -3.3},
	}
	for _, c := range cases {
		y, x := c[0], c[1]
		got := Atan2(dec(y), dec(x)).Float64()
		want := math.Atan2(y, x)
		if math.Abs(got-want) > cordicTolerance {
			t.Fatalf("atan2(%v, %v): expected %v, got %v", y, x, want, got)
		}
	}
}

func TestAtan2Origin(t *testing.T) {
	if got := Atan2(FromInt(0), FromInt(0)); !got.IsZero() {
		t.Fatalf("atan2(0, 0): expected 0, got %s", got)
	}
}

func TestCosAndSin(t *testing.T) {
	for _, a := range []float64{0, 0.5, 1, math.Pi / 2, 2, math.Pi, -0.75, -3, 4, 7.5, -12.1} {
		s, c := SinCos(dec(a))
		if math.Abs(c.Float64()-math.Cos(a)) > cordicTolerance {
			t.Fatalf("cos(%v): expected %v, got %s", a, math.Cos(a), c)
		}
		if math.Abs(s.Float64()-math.Sin(a)) > cordicTolerance {
			t.Fatalf("sin(%v): expected %v, got %s", a, math.Sin(a), s)
		}
		if !Cos(dec(a)).Equal(c) || !Sin(dec(a)).Equal(s) {
			t.Fatalf("Cos/Sin disagree with SinCos at %v", a)
		}
	}
}

func TestRadiansDegrees(t *testing.T) {
	r := Radians(FromInt(180))
	if math.Abs(r.Float64()-math.Pi) > 1e-9 {
		t.Fatalf("expected pi, got %s", r)
	}
	d := Degrees(Pi())
	if math.Abs(d.Float64()-180) > 1e-7 {
		t.Fatalf("expected 180, got %s", d)
	}
	if got := Pi().String(); got != "3.1415926535" {
		t.Fatalf("expected 3.1415926535, got %s", got)
	}
	if got := TwoPi().String(); got != "6.283185307" {
		t.Fatalf("expected 6.283185307, got %s", got)
	}
	if got := HalfPi().String(); got != "1.5707963267" {
		t.Fatalf("expected 1.5707963267, got %s", got)
	}
}

func TestCordicHonoursPlaces(t *testing.T) {
	a, err := ParsePlaces("0.5", 20)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := Cos(a)
	if c.Places() != 20 {
		t.Fatalf("expected 20 places, got %d", c.Places())
	}
	if math.Abs(c.Float64()-math.Cos(0.5)) > cordicTolerance {
		t.Fatalf("cos(0.5): expected %v, got %s", math.Cos(0.5), c)
	}
}
