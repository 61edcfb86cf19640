// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nmea

// qualityNames is indexed by the GGA fix quality digit.
var qualityNames = [...]string{
	"Fix Unavailable",
	"SPS Fix",
	"DGPS Fix",
	"PPS Fix",
	"RTK Fix",
	"RTK Float",
	"Estimated (dead reckoning) Mode",
	"Manual Input Mode",
	"Simulator Mode",
}

var modeNames = map[string]string{
	"A": "Autonomous Mode",
	"D": "Differential Mode",
	"E": "Estimated (dead reckoning) Mode",
	"M": "Manual Mode",
	"S": "Simulator Mode",
	"N": "Data Not Valid",
	"V": "Data Not Valid",
	"R": "RTK Fix",
	"F": "RTK Float",
	"P": "Precise",
}

var navStatusNames = map[string]string{
	"S": "Safe",
	"C": "Caution",
	"U": "Unsafe",
	"V": "Not Valid",
}

var fixTypeNames = map[string]string{
	"1": "No Fix",
	"2": "2D",
	"3": "3D",
}

type constellation struct {
	system  string
	talkers []string
	signals map[string]string
}

// constellations is keyed by the NMEA 4.11 GNSS system id.
var constellations = map[int]constellation{
	1: {system: "GPS", talkers: []string{"GP"}, signals: map[string]string{
		"0": "All signals", "1": "L1 C/A", "2": "L1 P(Y)", "3": "L1C", "4": "L2 P(Y)",
		"5": "L2C-M", "6": "L2C-L", "7": "L5-I", "8": "L5-Q",
	}},
	2: {system: "GLONASS", talkers: []string{"GL"}, signals: map[string]string{
		"0": "All signals", "1": "G1 C/A", "2": "G1P", "3": "G2 C/A", "4": "GLONASS (M) G2P",
	}},
	3: {system: "GALILEO", talkers: []string{"GA"}, signals: map[string]string{
		"0": "All signals", "1": "E5a", "2": "E5b", "3": "E5 a+b", "4": "E6-A",
		"5": "E6-BC", "6": "L1-A", "7": "L1-BC",
	}},
	4: {system: "BDS", talkers: []string{"GB", "BD"}, signals: map[string]string{
		"0": "All signals", "1": "B1", "5": "B2A", "B": "B2", "8": "B3", "3": "B1C",
	}},
	5: {system: "IRNSS", talkers: []string{"GI"}, signals: map[string]string{
		"0": "All signals", "4": "L2 P(Y)",
	}},
}

func constellationByTalker(talker string) (constellation, bool) {
	for _, c := range constellations {
		for _, t := range c.talkers {
			if t == talker {
				return c, true
			}
		}
	}
	return constellation{}, false
}
