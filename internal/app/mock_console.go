// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/relabs-tech/gnss_decoder/internal/nmea"
	"github.com/relabs-tech/gnss_decoder/internal/source"
)

// maxLinesPerEpoch bounds the sentences read while waiting for a
// satellites-in-view report to complete.
const maxLinesPerEpoch = 64

// advanceEpoch feeds d from src until a new satellites-in-view report is
// published or maxLinesPerEpoch lines were read.
func advanceEpoch(d *nmea.Decoder, src source.Source) error {
	start := d.SatelliteEpoch()
	for i := 0; i < maxLinesPerEpoch; i++ {
		line, err := src.Next()
		if err != nil {
			return err
		}
		if err := d.Decode(line); errors.Is(err, nmea.ErrDecodeFailure) {
			log.Printf("console: %v (line: %q)", err, line)
		}
		if d.SatelliteEpoch() != start {
			return nil
		}
	}
	return nil
}

// RunMockConsole decodes the built-in mock receiver and prints one summary
// per epoch.
func RunMockConsole(opts nmea.Options, interval time.Duration) error {
	src := source.NewMockSource(source.DefaultMockConfig())
	defer src.Close()
	d := nmea.NewDecoder(opts)

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := advanceEpoch(d, src); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		s := d.State()
		fmt.Println(stateSummary(s, nil))
		fmt.Println(satellitesSummary(s.Satellites))
	}
	return nil
}
