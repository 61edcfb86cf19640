// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"time"

	"github.com/spf13/pflag"

	"github.com/relabs-tech/gnss_decoder/internal/app"
	"github.com/relabs-tech/gnss_decoder/internal/nmea"
)

func main() {
	var (
		human    = pflag.BoolP("human", "u", false, "Report hh:mm:ss times, ISO dates and km/h")
		rawCoord = pflag.Bool("raw-coordinates", false, "Keep the receiver's ddmm.mmmm coordinate tokens")
		places   = pflag.Int("places", 10, "Fractional digits for coordinate math")
		interval = pflag.DurationP("interval", "i", time.Second, "Pause between printed epochs")
	)
	pflag.Parse()

	opts := nmea.Options{Places: *places}
	if *human {
		opts.Units = nmea.UnitsHuman
	}
	if *rawCoord {
		opts.Coordinates = nmea.CoordRaw
	}

	log.Println("starting gnss-decoder (mock console)")

	if err := app.RunMockConsole(opts, *interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
