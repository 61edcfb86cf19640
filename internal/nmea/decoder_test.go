package nmea

import (
	"errors"
	"math"
	"strings"
	"testing"

	gonmea "github.com/adrianmo/go-nmea"
)

const ggaLine = "$GPGGA,215230.000,5546.7965950,N,01125.3586740,E,1,19,0.7,225.278,M,36.900,M,,0000*5f"

func decodeAll(t *testing.T, d *Decoder, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := d.Decode(line); err != nil {
			t.Fatalf("decode %s: %v", line, err)
		}
	}
}

func TestDecodeGGA(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, ggaLine)
	s := d.State()

	if s.Time != "215230.000" {
		t.Fatalf("time: expected 215230.000, got %q", s.Time)
	}
	if s.Latitude != "55.77994325" || s.LatHemisphere != "N" {
		t.Fatalf("latitude: expected 55.77994325 N, got %q %q", s.Latitude, s.LatHemisphere)
	}
	if s.Longitude != "11.4226445666" || s.LonHemisphere != "E" {
		t.Fatalf("longitude: expected 11.4226445666 E, got %q %q", s.Longitude, s.LonHemisphere)
	}
	if s.Quality != "SPS Fix" {
		t.Fatalf("quality: expected SPS Fix, got %q", s.Quality)
	}
	if s.SatellitesUsed == nil || *s.SatellitesUsed != 19 {
		t.Fatalf("satellites used: expected 19, got %v", s.SatellitesUsed)
	}
	if s.HDOP == nil || *s.HDOP != 0.7 {
		t.Fatalf("hdop: expected 0.7, got %v", s.HDOP)
	}
	if s.Altitude == nil || *s.Altitude != 225.278 {
		t.Fatalf("altitude: expected 225.278, got %v", s.Altitude)
	}
	if s.GeoidalSeparation == nil || *s.GeoidalSeparation != 36.9 {
		t.Fatalf("geoidal separation: expected 36.9, got %v", s.GeoidalSeparation)
	}
	if s.DGPSAge != nil {
		t.Fatalf("dgps age: expected unset, got %v", *s.DGPSAge)
	}
	if s.DGPSStationID == nil || *s.DGPSStationID != 0 {
		t.Fatalf("dgps station: expected 0, got %v", s.DGPSStationID)
	}
	if s.Mode != "" {
		t.Fatalf("mode: expected unset, got %q", s.Mode)
	}
	if !s.HasPosition() {
		t.Fatalf("expected a position")
	}
}

func TestDecodeGGAAgreesWithGoNMEA(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, ggaLine)
	s := d.State()

	// go-nmea expects an upper case checksum
	sent, err := gonmea.Parse(strings.TrimSuffix(ggaLine, "5f") + "5F")
	if err != nil {
		t.Fatalf("go-nmea: %v", err)
	}
	gga, ok := sent.(gonmea.GGA)
	if !ok {
		t.Fatalf("go-nmea: unexpected type %T", sent)
	}
	if math.Abs(s.LatDegrees.Float64()-gga.Latitude) > 1e-8 {
		t.Fatalf("latitude: go-nmea %v, got %s", gga.Latitude, s.LatDegrees)
	}
	if math.Abs(s.LonDegrees.Float64()-gga.Longitude) > 1e-8 {
		t.Fatalf("longitude: go-nmea %v, got %s", gga.Longitude, s.LonDegrees)
	}
	if int64(*s.SatellitesUsed) != gga.NumSatellites || *s.Altitude != gga.Altitude {
		t.Fatalf("go-nmea disagrees: %+v", gga)
	}
}

func TestDecodeGGASouthWest(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GPGGA,215230.000,5546.7965950,S,01125.3586740,W,1,19,0.7,225.278,M,36.900,M,,0000*50")
	s := d.State()
	if s.Latitude != "-55.77994325" || s.Longitude != "-11.4226445666" {
		t.Fatalf("expected negated coordinates, got %q %q", s.Latitude, s.Longitude)
	}
}

func TestDecodeGGAHemisphereOnWrongAxis(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GPGGA,215230.000,5546.7965950,E,01125.3586740,N,1,19,0.7,225.278,M,36.900,M,,0000*5F")
	s := d.State()
	if s.Latitude != "" || s.Longitude != "" || s.LatDegrees != nil || s.LonDegrees != nil {
		t.Fatalf("expected coordinates unset, got %q %q", s.Latitude, s.Longitude)
	}
	if s.Quality != "SPS Fix" {
		t.Fatalf("expected the rest of the sentence decoded, got quality %q", s.Quality)
	}
}

func TestQualityOutOfRangeIsUnset(t *testing.T) {
	d := NewDecoder(Options{})
	if err := d.Decode("$GPGGA,215230.000,5546.7965950,N,01125.3586740,E,9,19,0.7,225.278,M,36.900,M,,0000*57"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	s := d.State()
	if s.Quality != "" {
		t.Fatalf("expected quality unset, got %q", s.Quality)
	}
	if s.SatellitesUsed == nil || *s.SatellitesUsed != 19 {
		t.Fatalf("expected decoding to continue past quality")
	}
}

func TestRawCoordinates(t *testing.T) {
	d := NewDecoder(Options{Coordinates: CoordRaw})
	decodeAll(t, d, ggaLine)
	s := d.State()
	if s.Latitude != "5546.7965950" || s.Longitude != "01125.3586740" {
		t.Fatalf("expected raw tokens, got %q %q", s.Latitude, s.Longitude)
	}
	if s.LatDegrees == nil || s.LatDegrees.String() != "55.77994325" {
		t.Fatalf("expected decimal degrees alongside raw tokens, got %v", s.LatDegrees)
	}
}

func TestDecodeGLL(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNGLL,5546.7965950,N,01125.3586740,E,215230.000,A,A*4f")
	s := d.State()
	if s.Time != "215230.000" || s.Latitude != "55.77994325" || s.Longitude != "11.4226445666" {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.Mode != "Autonomous Mode" {
		t.Fatalf("mode: expected Autonomous Mode, got %q", s.Mode)
	}
}

func TestDecodeGLLInvalidIsIgnored(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GPGLL,5546.7965950,N,01125.3586740,E,215230.000,V,N*49")
	if s := d.State(); s.HasPosition() || s.Time != "" || s.Mode != "" {
		t.Fatalf("expected nothing written, got %+v", s)
	}
}

func TestDecodeGSA(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d,
		"$GNGSA,A,3,06,11,16,21,22,,,,,,,,1.2,0.7,1.0,4*33",
		"$GNGSA,A,3,01,02,03,04,17,19,32,,,,,,1.2,0.7,1.0,1*3F",
		"$GNGSA,A,3,67,68,69,84,,,,,,,,,1.2,0.7,1.0,2*3B",
		"$GNGSA,A,3,05,13,15,,,,,,,,,,1.2,0.7,1.0,3*35",
	)
	s := d.State()
	if *s.PDOP != 1.2 || *s.HDOP != 0.7 || *s.VDOP != 1.0 {
		t.Fatalf("unexpected DOP %v %v %v", *s.PDOP, *s.HDOP, *s.VDOP)
	}
	if s.FixType != "3D" {
		t.Fatalf("fix type: expected 3D, got %q", s.FixType)
	}
	want := map[string][]string{
		"BDS":     {"06", "11", "16", "21", "22", "", "", "", "", "", "", ""},
		"GPS":     {"01", "02", "03", "04", "17", "19", "32", "", "", "", "", ""},
		"GLONASS": {"67", "68", "69", "84", "", "", "", "", "", "", "", ""},
		"GALILEO": {"05", "13", "15", "", "", "", "", "", "", "", "", ""},
	}
	if len(s.SatelliteIDs) != len(want) {
		t.Fatalf("expected %d constellations, got %d", len(want), len(s.SatelliteIDs))
	}
	for system, ids := range want {
		got := s.SatelliteIDs[system]
		if len(got) != len(ids) {
			t.Fatalf("%s: expected %q, got %q", system, ids, got)
		}
		for i := range ids {
			if got[i] != ids[i] {
				t.Fatalf("%s: expected %q, got %q", system, ids, got)
			}
		}
	}
}

func TestDecodeGSADOPOutOfRange(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNGSA,A,3,05,13,15,,,,,,,,,,0.0,150,1.0,3*2B")
	s := d.State()
	if s.PDOP != nil || s.HDOP != nil {
		t.Fatalf("expected PDOP and HDOP unset, got %v %v", s.PDOP, s.HDOP)
	}
	if s.VDOP == nil || *s.VDOP != 1.0 {
		t.Fatalf("expected VDOP 1.0, got %v", s.VDOP)
	}
}

func TestDecodeRMC(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNRMC,215744.000,A,5546.7893300,N,01125.3576699,E,012.5,054.7,080225,003.1,W,A,S*7A")
	s := d.State()
	if s.Time != "215744.000" || s.Date != "080225" {
		t.Fatalf("unexpected time/date %q %q", s.Time, s.Date)
	}
	if s.Latitude != "55.7798221666" || s.Longitude != "11.4226278316" {
		t.Fatalf("unexpected position %q %q", s.Latitude, s.Longitude)
	}
	if *s.Speed != 12.5 || s.SpeedUnit != "kn" || *s.Course != 54.7 {
		t.Fatalf("unexpected speed/course %v %s %v", *s.Speed, s.SpeedUnit, *s.Course)
	}
	if *s.MagneticVariation != -3.1 {
		t.Fatalf("magnetic variation: expected -3.1, got %v", *s.MagneticVariation)
	}
	if s.Mode != "Autonomous Mode" || s.NavStatus != "Safe" {
		t.Fatalf("unexpected mode/nav status %q %q", s.Mode, s.NavStatus)
	}
}

func TestDecodeRMCHumanUnits(t *testing.T) {
	d := NewDecoder(Options{Units: UnitsHuman})
	decodeAll(t, d, "$GNRMC,215744.000,A,5546.7893300,N,01125.3576699,E,012.5,054.7,080225,003.1,W,A,S*7A")
	s := d.State()
	if s.Date != "2025-02-08" || s.Time != "21:57:44.000" {
		t.Fatalf("unexpected time/date %q %q", s.Time, s.Date)
	}
	if *s.Speed != 23.15 || s.SpeedUnit != "km/h" {
		t.Fatalf("speed: expected 23.15 km/h, got %v %s", *s.Speed, s.SpeedUnit)
	}
}

func TestDecodeRMCNavStatusNotValid(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNRMC,215744.000,A,5546.7893300,N,01125.3576699,E,000.0,000.0,080225,,,A,V*04")
	if s := d.State(); s.HasPosition() || s.Date != "" {
		t.Fatalf("expected nothing written, got %+v", s)
	}
}

func TestDecodeVTG(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNVTG,122.7,T,,M,015.1,N,000.0,K,A*10")
	s := d.State()
	if *s.Course != 122.7 {
		t.Fatalf("course: expected 122.7, got %v", *s.Course)
	}
	if *s.Speed != 15.1 || s.SpeedUnit != "kn" {
		t.Fatalf("speed: expected 15.1 kn, got %v %s", *s.Speed, s.SpeedUnit)
	}
	if s.Mode != "Autonomous Mode" {
		t.Fatalf("mode: expected Autonomous Mode, got %q", s.Mode)
	}

	h := NewDecoder(Options{Units: UnitsHuman})
	decodeAll(t, h, "$GNVTG,122.7,T,,M,015.1,N,000.0,K,A*10")
	if hs := h.State(); *hs.Speed != 27.97 || hs.SpeedUnit != "km/h" {
		t.Fatalf("speed: expected 27.97 km/h, got %v %s", *hs.Speed, hs.SpeedUnit)
	}
}

func TestDecodeZDA(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNZDA,215744.000,08,02,2025,00,00*46")
	if s := d.State(); s.Time != "215744.000" || s.Date != "080225" {
		t.Fatalf("unexpected time/date %q %q", s.Time, s.Date)
	}
}

func TestDecodeTHS(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNTHS,121.15,A*1F")
	s := d.State()
	if s.Heading == nil || *s.Heading != 121.15 || s.HeadingMode != "Autonomous Mode" {
		t.Fatalf("unexpected heading %v %q", s.Heading, s.HeadingMode)
	}

	decodeAll(t, d, "$GNTHS,121.15,V*08")
	if s := d.State(); s.HeadingMode != "Autonomous Mode" {
		t.Fatalf("invalid heading must not overwrite, got %q", s.HeadingMode)
	}
}

func TestDecodeSTI005(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$PSTI,005,121959.0000003,20,07,2020,,,,,*34")
	if s := d.State(); s.Time != "121959.0000003" || s.Date != "200720" {
		t.Fatalf("unexpected time/date %q %q", s.Time, s.Date)
	}

	h := NewDecoder(Options{Units: UnitsHuman})
	decodeAll(t, h, "$PSTI,005,121959.0000003,20,07,2020,,,,,*34")
	if s := h.State(); s.Date != "2020-07-20" {
		t.Fatalf("date: expected 2020-07-20, got %q", s.Date)
	}
}

func TestDecodeSTI030(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$PSTI,030,033010.000,A,2447.0895508,N,12100.5234656,E,94.615,0.00,-0.01,0.04,111219,R,0.999,3.724*1A")
	s := d.State()
	if s.Time != "033010.000" || s.Date != "111219" {
		t.Fatalf("unexpected time/date %q %q", s.Time, s.Date)
	}
	if s.Latitude != "24.7848258466" || s.Longitude != "121.0087244266" {
		t.Fatalf("unexpected position %q %q", s.Latitude, s.Longitude)
	}
	if s.Mode != "RTK Fix" || *s.Altitude != 94.615 {
		t.Fatalf("unexpected mode/altitude %q %v", s.Mode, *s.Altitude)
	}
	if *s.NorthVelocity != -0.01 || *s.UpVelocity != 0.04 {
		t.Fatalf("unexpected velocity %v %v", *s.NorthVelocity, *s.UpVelocity)
	}
	if *s.RTKAge != 0.999 || *s.RTKRatio != 3.724 {
		t.Fatalf("unexpected RTK age/ratio %v %v", *s.RTKAge, *s.RTKRatio)
	}
}

func TestDecodeSTI032(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$PSTI,032,041457.000,170316,A,R,0.603,-0.837,-0.089,1.036,144.22,,,,,*1C")
	s := d.State()
	if s.Baseline == nil {
		t.Fatalf("expected a baseline")
	}
	b := s.Baseline
	if *b.East != 0.603 || *b.North != -0.837 || *b.Up != -0.089 || *b.Length != 1.036 || *b.Course != 144.22 {
		t.Fatalf("unexpected baseline %v %v %v %v %v", *b.East, *b.North, *b.Up, *b.Length, *b.Course)
	}
	if s.Date != "170316" || s.Mode != "RTK Fix" {
		t.Fatalf("unexpected date/mode %q %q", s.Date, s.Mode)
	}
}

func TestDecodeSTI035IsUnsupported(t *testing.T) {
	d := NewDecoder(Options{})
	err := d.Decode("$PSTI,035,041457.000,170316,A,R,0.603,-0.837,-0.089,1.036,144.22,,,,,*1B")
	if !errors.Is(err, ErrUnsupportedSentence) {
		t.Fatalf("expected ErrUnsupportedSentence, got %v", err)
	}
	if errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("unsupported must not be reported as a decode failure")
	}
}

func TestDecodeRejections(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"", ErrMalformedSentence},
		{"GPGGA,no,marker", ErrMalformedSentence},
		{"$GNTHS,121.15,A*00", ErrChecksumMismatch},
		{"$GPXYZ,1,2,3*50", ErrUnsupportedSentence},
		{"$GNTHS*00", ErrChecksumMismatch},
	}
	for _, tc := range cases {
		d := NewDecoder(Options{})
		if err := d.Decode(tc.line); !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.line, tc.want, err)
		}
		if s := d.State(); s.HasPosition() || s.Time != "" {
			t.Fatalf("%q: state must be unchanged", tc.line)
		}
	}
}

func TestSkipChecksum(t *testing.T) {
	d := NewDecoder(Options{SkipChecksum: true})
	decodeAll(t, d, "$GNTHS,121.15,A*00")
	if s := d.State(); s.Heading == nil {
		t.Fatalf("expected heading decoded without checksum verification")
	}
}

func TestDecodeFailureKeepsEarlierFields(t *testing.T) {
	d := NewDecoder(Options{})
	err := d.Decode("$GPGGA,215230.000,5546.7965950,N,01125.3586740,E,1,xx,0.7,225.278,M,36.900,M,,0000*57")
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Type != TypeGGA {
		t.Fatalf("expected a GGA DecodeError, got %v", err)
	}
	s := d.State()
	if s.Time != "215230.000" || s.Latitude != "55.77994325" || s.Quality != "SPS Fix" {
		t.Fatalf("fields before the failure must stay applied, got %+v", s)
	}
	if s.SatellitesUsed != nil || s.Altitude != nil {
		t.Fatalf("fields after the failure must not be written")
	}

	// the decoder stays usable
	decodeAll(t, d, ggaLine)
	if s := d.State(); s.Altitude == nil || *s.Altitude != 225.278 {
		t.Fatalf("expected altitude after recovery")
	}
}

func TestDecodeFailureOnBadTime(t *testing.T) {
	d := NewDecoder(Options{})
	err := d.Decode("$GPGGA,25x230.000,5546.7965950,N,01125.3586740,E,1,19,0.7,225.278,M,36.900,M,,0000*16")
	if !errors.Is(err, ErrDecodeFailure) {
		t.Fatalf("expected ErrDecodeFailure, got %v", err)
	}
	if Outcome(err) != "decode_error" {
		t.Fatalf("expected outcome decode_error, got %s", Outcome(err))
	}
}

func TestStateIsSnapshot(t *testing.T) {
	d := NewDecoder(Options{})
	decodeAll(t, d, "$GNGSA,A,3,01,02,03,04,17,19,32,,,,,,1.2,0.7,1.0,1*3F")
	s := d.State()
	s.SatelliteIDs["GPS"][0] = "99"
	delete(s.SatelliteIDs, "GPS")
	again := d.State()
	if len(again.SatelliteIDs["GPS"]) != 12 || again.SatelliteIDs["GPS"][0] != "01" {
		t.Fatalf("snapshot mutation leaked into the decoder")
	}
}

type recordingObserver struct {
	types    []SentenceType
	outcomes []string
}

func (r *recordingObserver) ObserveSentence(t SentenceType, err error) {
	r.types = append(r.types, t)
	r.outcomes = append(r.outcomes, Outcome(err))
}

func TestObserverSeesEverySentence(t *testing.T) {
	obs := &recordingObserver{}
	d := NewDecoder(Options{Observer: obs})
	_ = d.Decode(ggaLine)
	_ = d.Decode("$GNTHS,121.15,A*00")
	_ = d.Decode("$GPXYZ,1,2,3*50")
	_ = d.Decode("$PSTI,035,041457.000,170316,A,R,0.603,-0.837,-0.089,1.036,144.22,,,,,*1B")

	wantTypes := []SentenceType{TypeGGA, TypeUnknown, TypeUnknown, TypeSTI035}
	wantOutcomes := []string{"ok", "checksum", "unsupported", "unsupported"}
	for i := range wantTypes {
		if obs.types[i] != wantTypes[i] || obs.outcomes[i] != wantOutcomes[i] {
			t.Fatalf("sentence %d: expected %s/%s, got %s/%s", i, wantTypes[i], wantOutcomes[i], obs.types[i], obs.outcomes[i])
		}
	}
}

func TestLookupType(t *testing.T) {
	if LookupType("gga") != TypeGGA || LookupType("STI030") != TypeSTI030 || LookupType("XYZ") != TypeUnknown {
		t.Fatalf("unexpected lookup results")
	}
	if TypeSTI032.String() != "STI032" || SentenceType(99).String() != "unknown" {
		t.Fatalf("unexpected type names")
	}
}
