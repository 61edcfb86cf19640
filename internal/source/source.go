// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package source provides raw NMEA lines from a serial receiver, a replay
// file or a synthetic generator.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacobsa/go-serial/serial"
	"github.com/klauspost/compress/gzip"
)

// Source is anything that can provide NMEA lines over time.
// Next returns io.EOF once a finite source is exhausted.
type Source interface {
	Next() (string, error)
	Close() error
}

type readerSource struct {
	r      *bufio.Reader
	closer io.Closer
}

// NewReaderSource reads newline separated sentences from r. Blank lines are
// skipped. If r is an io.Closer it is closed by Close.
func NewReaderSource(r io.Reader) Source {
	s := &readerSource{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *readerSource) Next() (string, error) {
	for {
		line, err := s.r.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (s *readerSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// SerialConfig describes the receiver's UART.
type SerialConfig struct {
	Port     string
	BaudRate uint
}

// OpenSerial opens the GPS serial port as 8N1.
func OpenSerial(cfg SerialConfig) (Source, error) {
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return NewReaderSource(port), nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gerr
}

// OpenFile replays a recorded NMEA log. Files ending in ".gz" are
// decompressed on the fly.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return NewReaderSource(f), nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return NewReaderSource(&gzipFile{Reader: zr, f: f}), nil
}
