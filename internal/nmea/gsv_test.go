package nmea

import (
	"testing"

	"github.com/relabs-tech/gnss_decoder/internal/gps"
)

var gsvFragments = []string{
	"$GPGSV,3,1,10,01,81,167,33,02,73,168,18,03,63,271,30,21,52,147,,1*68",
	"$GPGSV,3,2,10,17,37,296,49,32,29,051,33,28,27,092,34,04,20,202,32,1*6C",
	"$GPGSV,3,3,10,31,18,118,09,19,17,322,41,1*67",
}

func sat(elev, azim, snr gps.Measure) gps.SatelliteInfo {
	return gps.SatelliteInfo{Elevation: elev, Azimuth: azim, SNR: snr}
}

func checkSatellites(t *testing.T, got map[int]gps.SatelliteInfo, want map[int]gps.SatelliteInfo) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d satellites, got %d: %v", len(want), len(got), got)
	}
	for id, w := range want {
		if g, ok := got[id]; !ok || g != w {
			t.Fatalf("satellite %d: expected %+v, got %+v", id, w, g)
		}
	}
}

func TestSatellitesInViewAssembly(t *testing.T) {
	d := NewDecoder(Options{})

	decodeAll(t, d, gsvFragments[0])
	pending, ok := d.PendingSatellites("GP")
	if !ok || pending.InView != 10 {
		t.Fatalf("expected a pending GP report of 10, got %+v", pending)
	}
	checkSatellites(t, pending.Satellites, map[int]gps.SatelliteInfo{
		1: sat(81, 167, 33), 2: sat(73, 168, 18), 3: sat(63, 271, 30), 21: sat(52, 147, gps.Unknown),
	})
	if s := d.State(); len(s.Satellites) != 0 {
		t.Fatalf("published view must stay empty after fragment 1, got %v", s.Satellites)
	}

	decodeAll(t, d, gsvFragments[1])
	pending, _ = d.PendingSatellites("GP")
	if len(pending.Satellites) != 8 {
		t.Fatalf("expected 8 pending satellites, got %d", len(pending.Satellites))
	}
	if pending.Satellites[32] != sat(29, 51, 33) {
		t.Fatalf("satellite 32: unexpected %+v", pending.Satellites[32])
	}
	if s := d.State(); len(s.Satellites) != 0 {
		t.Fatalf("published view must stay empty after fragment 2, got %v", s.Satellites)
	}
	if d.SatelliteEpoch() != 0 {
		t.Fatalf("expected epoch 0, got %d", d.SatelliteEpoch())
	}

	decodeAll(t, d, gsvFragments[2])
	view, ok := d.State().Satellites["GP"]
	if !ok {
		t.Fatalf("expected a published GP report")
	}
	if view.InView != 10 || view.Signal != "L1 C/A" {
		t.Fatalf("unexpected view header %d %q", view.InView, view.Signal)
	}
	checkSatellites(t, view.Satellites, map[int]gps.SatelliteInfo{
		1: sat(81, 167, 33), 2: sat(73, 168, 18), 3: sat(63, 271, 30), 21: sat(52, 147, gps.Unknown),
		17: sat(37, 296, 49), 32: sat(29, 51, 33), 28: sat(27, 92, 34), 4: sat(20, 202, 32),
		31: sat(18, 118, 9), 19: sat(17, 322, 41),
	})
	if d.SatelliteEpoch() != 1 {
		t.Fatalf("expected epoch 1, got %d", d.SatelliteEpoch())
	}
}

func TestSatellitesPublishedViewIsACopy(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, gsvFragments...)

	// a new cycle must not disturb the published report until it completes
	decodeAll(t, d, gsvFragments[0])
	view := d.State().Satellites["GP"]
	if len(view.Satellites) != 10 {
		t.Fatalf("expected the previous report to stay published, got %d satellites", len(view.Satellites))
	}
	pending, _ := d.PendingSatellites("GP")
	if len(pending.Satellites) != 10 {
		t.Fatalf("fragment 1 must merge into the accumulator, got %d pending", len(pending.Satellites))
	}

	delete(view.Satellites, 1)
	if _, ok := d.State().Satellites["GP"].Satellites[1]; !ok {
		t.Fatalf("mutating a snapshot leaked into the decoder")
	}
}

func TestSatellitesRedeliveryIsIdempotent(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, gsvFragments[0], gsvFragments[1], gsvFragments[1], gsvFragments[2])
	if view := d.State().Satellites["GP"]; len(view.Satellites) != 10 {
		t.Fatalf("expected 10 satellites, got %d", len(view.Satellites))
	}
}

func TestSatellitesFirstFragmentRedelivery(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, gsvFragments[0], gsvFragments[1], gsvFragments[0], gsvFragments[2])
	if view := d.State().Satellites["GP"]; len(view.Satellites) != 10 {
		t.Fatalf("expected 10 satellites, got %d", len(view.Satellites))
	}
	if d.SatelliteEpoch() != 1 {
		t.Fatalf("expected epoch 1, got %d", d.SatelliteEpoch())
	}
}

func TestSatellitesDepartedArePruned(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, gsvFragments...)

	// next cycle: only two satellites left in view, one of them new
	decodeAll(t, d, AppendChecksum("GPGSV,1,1,02,01,80,170,35,40,05,010,12,1"))
	view := d.State().Satellites["GP"]
	checkSatellites(t, view.Satellites, map[int]gps.SatelliteInfo{
		1:  sat(80, 170, 35),
		40: sat(5, 10, 12),
	})
	if d.SatelliteEpoch() != 2 {
		t.Fatalf("expected epoch 2, got %d", d.SatelliteEpoch())
	}
	pending, _ := d.PendingSatellites("GP")
	if len(pending.Satellites) != 2 {
		t.Fatalf("expected the accumulator pruned to 2, got %d", len(pending.Satellites))
	}
}

func TestSatellitesIncompleteIsNotPublished(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, gsvFragments[0], gsvFragments[2])
	if s := d.State(); len(s.Satellites) != 0 {
		t.Fatalf("expected nothing published with a missing fragment, got %v", s.Satellites)
	}
}

func TestSatellitesUnsupportedTalkerIgnored(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, AppendChecksum("GNGSV,1,1,01,05,10,100,20"))
	if _, ok := d.PendingSatellites("GN"); ok {
		t.Fatalf("expected no accumulator for GN")
	}
	if s := d.State(); len(s.Satellites) != 0 {
		t.Fatalf("expected nothing published, got %v", s.Satellites)
	}
}

func TestSatellitesOutOfRangeAndEmpty(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GPGSV,1,1,02,05,,,,07,45,400,120*7F")
	view := d.State().Satellites["GP"]
	checkSatellites(t, view.Satellites, map[int]gps.SatelliteInfo{
		5: sat(gps.Unknown, gps.Unknown, gps.Unknown),
		7: sat(45, gps.Unknown, gps.Unknown),
	})
	if view.Signal != "" {
		t.Fatalf("expected no signal, got %q", view.Signal)
	}
}

func TestSatellitesBDSAlias(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, AppendChecksum("BDGSV,1,1,01,14,40,120,38,1"))
	view, ok := d.State().Satellites["BD"]
	if !ok || view.Signal != "B1" || view.Satellites[14] != sat(40, 120, 38) {
		t.Fatalf("unexpected BD report %+v", view)
	}
}
